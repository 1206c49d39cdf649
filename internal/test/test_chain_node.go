package test

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

// ChainNode is an in-process JSON-RPC node answering the account state reads
// the service performs, from fixture values instead of contract storage.
type ChainNode struct {
	ChainID         *big.Int
	Owners          []common.Address
	Threshold       *big.Int
	AccountVersion  string
	ModuleEnabled   bool
	FallbackHandler common.Address
	Nonce           *big.Int

	server *httptest.Server
}

var (
	nodeTypeAddress, _      = abi.NewType("address", "", nil)
	nodeTypeAddressSlice, _ = abi.NewType("address[]", "", nil)
	nodeTypeUint256, _      = abi.NewType("uint256", "", nil)
	nodeTypeString, _       = abi.NewType("string", "", nil)
	nodeTypeBool, _         = abi.NewType("bool", "", nil)
)

func selector(signature string) string {
	return hexutil.Encode(crypto.Keccak256([]byte(signature))[:4])
}

// NewChainNode starts the stub node. Callers close it via Close, usually
// through t.Cleanup.
func NewChainNode(t *testing.T) *ChainNode {
	t.Helper()

	node := &ChainNode{
		ChainID:        big.NewInt(11155111),
		Threshold:      big.NewInt(1),
		AccountVersion: "1.4.1",
		ModuleEnabled:  true,
		Nonce:          big.NewInt(5),
	}

	node.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&call))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      call.ID,
			"result":  node.respond(t, call.Method, call.Params),
		}))
	}))

	return node
}

// URL returns the node's RPC endpoint.
func (n *ChainNode) URL() string {
	return n.server.URL
}

// Close shuts the stub down.
func (n *ChainNode) Close() {
	n.server.Close()
}

func (n *ChainNode) respond(t *testing.T, method string, params []json.RawMessage) interface{} {
	t.Helper()

	switch method {
	case "eth_chainId":
		return hexutil.EncodeBig(n.ChainID)

	case "eth_getCode":
		// every queried account counts as deployed
		return "0x6080"

	case "eth_getStorageAt":
		return hexutil.Encode(common.LeftPadBytes(n.FallbackHandler.Bytes(), 32))

	case "eth_call":
		var msg struct {
			Input hexutil.Bytes `json:"input"`
			Data  hexutil.Bytes `json:"data"`
		}
		require.NotEmpty(t, params)
		require.NoError(t, json.Unmarshal(params[0], &msg))

		data := msg.Input
		if len(data) == 0 {
			data = msg.Data
		}
		require.GreaterOrEqual(t, len(data), 4)

		return n.answerCall(t, hexutil.Encode(data[:4]))

	default:
		t.Fatalf("chain node stub: unexpected method %s", method)
		return nil
	}
}

func (n *ChainNode) answerCall(t *testing.T, sel string) string {
	t.Helper()

	pack := func(args abi.Arguments, values ...interface{}) string {
		packed, err := args.Pack(values...)
		require.NoError(t, err)
		return hexutil.Encode(packed)
	}

	switch sel {
	case selector("VERSION()"):
		return pack(abi.Arguments{{Type: nodeTypeString}}, n.AccountVersion)
	case selector("getOwners()"):
		return pack(abi.Arguments{{Type: nodeTypeAddressSlice}}, n.Owners)
	case selector("getThreshold()"):
		return pack(abi.Arguments{{Type: nodeTypeUint256}}, n.Threshold)
	case selector("isModuleEnabled(address)"):
		return pack(abi.Arguments{{Type: nodeTypeBool}}, n.ModuleEnabled)
	case selector("getNonce(address,uint192)"):
		return pack(abi.Arguments{{Type: nodeTypeUint256}}, n.Nonce)
	default:
		t.Fatalf("chain node stub: unexpected call selector %s", sel)
		return ""
	}
}
