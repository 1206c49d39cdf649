package bundler

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github/chapool/go-relayer/internal/operation"
)

// Service is the remote relayer procedure interface. It is a pass-through:
// responses are surfaced as-is and a null result for a not-yet-included
// operation is a valid answer, not a failure.
type Service interface {
	// ChainID queries the bundler's chain identifier.
	ChainID(ctx context.Context) (*big.Int, error)

	// SupportedEntryPoints returns the verifier entry points the bundler
	// accepts, preferred first.
	SupportedEntryPoints(ctx context.Context) ([]common.Address, error)

	// Submit sends a finished operation and returns its hash.
	Submit(ctx context.Context, op *operation.Operation, entryPoint common.Address) (common.Hash, error)

	// GetOperationByHash fetches a submitted operation, nil when unknown or
	// not yet included.
	GetOperationByHash(ctx context.Context, hash common.Hash) (*OperationResult, error)

	// GetOperationReceipt fetches the inclusion receipt, nil while pending.
	GetOperationReceipt(ctx context.Context, hash common.Hash) (*Receipt, error)
}

// rpcOperation is the wire form of an operation: fixed-width integers as
// 0x-prefixed hex, byte strings as 0x-prefixed lowercase hex.
type rpcOperation struct {
	Sender               common.Address `json:"sender"`
	Nonce                *hexutil.Big   `json:"nonce"`
	InitCode             hexutil.Bytes  `json:"initCode"`
	CallData             hexutil.Bytes  `json:"callData"`
	CallGasLimit         *hexutil.Big   `json:"callGasLimit"`
	VerificationGasLimit *hexutil.Big   `json:"verificationGasLimit"`
	PreVerificationGas   *hexutil.Big   `json:"preVerificationGas"`
	MaxFeePerGas         *hexutil.Big   `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big   `json:"maxPriorityFeePerGas"`
	PaymasterAndData     hexutil.Bytes  `json:"paymasterAndData"`
	Signature            hexutil.Bytes  `json:"signature"`
}

func toRPCOperation(op *operation.Operation) *rpcOperation {
	return &rpcOperation{
		Sender:               op.Sender,
		Nonce:                bigToHex(op.Nonce),
		InitCode:             emptyIfNil(op.InitCode),
		CallData:             emptyIfNil(op.CallData),
		CallGasLimit:         bigToHex(op.CallGasLimit),
		VerificationGasLimit: bigToHex(op.VerificationGasLimit),
		PreVerificationGas:   bigToHex(op.PreVerificationGas),
		MaxFeePerGas:         bigToHex(op.MaxFeePerGas),
		MaxPriorityFeePerGas: bigToHex(op.MaxPriorityFeePerGas),
		PaymasterAndData:     emptyIfNil(op.PaymasterAndData),
		Signature:            op.EncodedSignatures(),
	}
}

func bigToHex(v *big.Int) *hexutil.Big {
	if v == nil {
		v = new(big.Int)
	}
	return (*hexutil.Big)(v)
}

func emptyIfNil(b []byte) hexutil.Bytes {
	if b == nil {
		return hexutil.Bytes{}
	}
	return b
}

// gasEstimateResult is the bundler's answer to a gas estimation query.
// Optional fields stay nil when the bundler does not report them.
type gasEstimateResult struct {
	CallGasLimit         *hexutil.Big `json:"callGasLimit"`
	VerificationGasLimit *hexutil.Big `json:"verificationGasLimit"`
	PreVerificationGas   *hexutil.Big `json:"preVerificationGas"`
	MaxFeePerGas         *hexutil.Big `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big `json:"maxPriorityFeePerGas"`
}

// OperationResult is a submitted operation as the bundler reports it.
type OperationResult struct {
	UserOperation   json.RawMessage `json:"userOperation"`
	EntryPoint      common.Address  `json:"entryPoint"`
	BlockNumber     *hexutil.Big    `json:"blockNumber"`
	BlockHash       common.Hash     `json:"blockHash"`
	TransactionHash common.Hash     `json:"transactionHash"`
}

// Receipt is the inclusion receipt of an operation.
type Receipt struct {
	UserOpHash    common.Hash     `json:"userOpHash"`
	EntryPoint    common.Address  `json:"entryPoint"`
	Sender        common.Address  `json:"sender"`
	Nonce         *hexutil.Big    `json:"nonce"`
	Paymaster     common.Address  `json:"paymaster"`
	ActualGasCost *hexutil.Big    `json:"actualGasCost"`
	ActualGasUsed *hexutil.Big    `json:"actualGasUsed"`
	Success       bool            `json:"success"`
	Reason        string          `json:"reason"`
	Logs          json.RawMessage `json:"logs"`
	Receipt       json.RawMessage `json:"receipt"`
}
