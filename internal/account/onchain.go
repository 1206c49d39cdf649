package account

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// fallbackHandlerSlot is the storage slot the account keeps its fallback
// handler in: keccak256("fallback_manager.handler.address").
var fallbackHandlerSlot = common.HexToHash("0x6c9a6c4a39284e37ed1cf53d337577d14212a4870fb976a4366c693b939918d5")

const (
	getOwnersSignature       = "getOwners()"
	getThresholdSignature    = "getThreshold()"
	versionSignature         = "VERSION()"
	isModuleEnabledSignature = "isModuleEnabled(address)"
	getNonceSignature        = "getNonce(address,uint192)"
)

var (
	typeBool, _    = abi.NewType("bool", "", nil)
	typeString, _  = abi.NewType("string", "", nil)
	typeUint192, _ = abi.NewType("uint192", "", nil)
)

// OnchainAccount reads account state over an RPC node. For an address that
// is not deployed yet it answers from the pending bootstrap configuration
// instead of contract state.
type OnchainAccount struct {
	client     *ethclient.Client
	address    common.Address
	entryPoint common.Address

	// pending is the bootstrap configuration of a counterfactual account.
	pending *Config
}

// NewOnchainAccount wraps a deployed or counterfactual account address.
// The pending config may be nil for an account known to be deployed.
func NewOnchainAccount(client *ethclient.Client, address, entryPoint common.Address, pending *Config) *OnchainAccount {
	return &OnchainAccount{
		client:     client,
		address:    address,
		entryPoint: entryPoint,
		pending:    pending,
	}
}

func (a *OnchainAccount) Address() common.Address {
	return a.address
}

func (a *OnchainAccount) IsDeployed(ctx context.Context) (bool, error) {
	code, err := a.client.CodeAt(ctx, a.address, nil)
	if err != nil {
		return false, errors.Wrap(err, "failed to read account code")
	}

	return len(code) > 0, nil
}

func (a *OnchainAccount) Owners(ctx context.Context) ([]common.Address, error) {
	deployed, err := a.IsDeployed(ctx)
	if err != nil {
		return nil, err
	}
	if !deployed {
		if a.pending == nil {
			return nil, errors.New("undeployed account has no pending configuration")
		}
		return a.pending.Owners, nil
	}

	raw, err := a.call(ctx, a.address, getOwnersSignature)
	if err != nil {
		return nil, err
	}

	values, err := abi.Arguments{{Type: typeAddressSlice}}.Unpack(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode owner set")
	}

	owners, ok := values[0].([]common.Address)
	if !ok {
		return nil, errors.New("unexpected owner set encoding")
	}

	return owners, nil
}

func (a *OnchainAccount) Threshold(ctx context.Context) (int, error) {
	deployed, err := a.IsDeployed(ctx)
	if err != nil {
		return 0, err
	}
	if !deployed {
		if a.pending == nil {
			return 0, errors.New("undeployed account has no pending configuration")
		}
		return a.pending.Threshold, nil
	}

	raw, err := a.call(ctx, a.address, getThresholdSignature)
	if err != nil {
		return 0, err
	}

	values, err := abi.Arguments{{Type: typeUint256}}.Unpack(raw)
	if err != nil {
		return 0, errors.Wrap(err, "failed to decode threshold")
	}

	threshold, ok := values[0].(*big.Int)
	if !ok {
		return 0, errors.New("unexpected threshold encoding")
	}

	return int(threshold.Int64()), nil
}

func (a *OnchainAccount) Version(ctx context.Context) (string, error) {
	raw, err := a.call(ctx, a.address, versionSignature)
	if err != nil {
		return "", err
	}

	values, err := abi.Arguments{{Type: typeString}}.Unpack(raw)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode account version")
	}

	version, ok := values[0].(string)
	if !ok {
		return "", errors.New("unexpected version encoding")
	}

	return strings.TrimSpace(version), nil
}

func (a *OnchainAccount) IsModuleEnabled(ctx context.Context, module common.Address) (bool, error) {
	packed, err := abi.Arguments{{Type: typeAddress}}.Pack(module)
	if err != nil {
		return false, errors.Wrap(err, "failed to pack module address")
	}

	raw, err := a.callData(ctx, a.address, isModuleEnabledSignature, packed)
	if err != nil {
		return false, err
	}

	values, err := abi.Arguments{{Type: typeBool}}.Unpack(raw)
	if err != nil {
		return false, errors.Wrap(err, "failed to decode module flag")
	}

	enabled, ok := values[0].(bool)
	if !ok {
		return false, errors.New("unexpected module flag encoding")
	}

	return enabled, nil
}

func (a *OnchainAccount) FallbackHandler(ctx context.Context) (common.Address, error) {
	raw, err := a.client.StorageAt(ctx, a.address, fallbackHandlerSlot, nil)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to read fallback handler slot")
	}

	return common.BytesToAddress(raw), nil
}

// Nonce reads the account's operation nonce from the entry point. A
// counterfactual account always starts at nonce zero.
func (a *OnchainAccount) Nonce(ctx context.Context) (*big.Int, error) {
	deployed, err := a.IsDeployed(ctx)
	if err != nil {
		return nil, err
	}
	if !deployed {
		return new(big.Int), nil
	}

	packed, err := abi.Arguments{{Type: typeAddress}, {Type: typeUint192}}.Pack(a.address, new(big.Int))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack nonce query")
	}

	raw, err := a.callData(ctx, a.entryPoint, getNonceSignature, packed)
	if err != nil {
		return nil, err
	}

	values, err := abi.Arguments{{Type: typeUint256}}.Unpack(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode nonce")
	}

	nonce, ok := values[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected nonce encoding")
	}

	return nonce, nil
}

func (a *OnchainAccount) ChainID(ctx context.Context) (*big.Int, error) {
	chainID, err := a.client.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain id")
	}

	return chainID, nil
}

func (a *OnchainAccount) call(ctx context.Context, to common.Address, signature string) ([]byte, error) {
	return a.callData(ctx, to, signature, nil)
}

func (a *OnchainAccount) callData(ctx context.Context, to common.Address, signature string, packed []byte) ([]byte, error) {
	data := make([]byte, 0, selectorLength+len(packed))
	data = append(data, crypto.Keccak256([]byte(signature))[:selectorLength]...)
	data = append(data, packed...)

	raw, err := a.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to call %s", signature)
	}

	return raw, nil
}
