package signing

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
	"github/chapool/go-relayer/internal/operation"
)

// OperationTypedData mirrors the operation as the EIP-712 structure the
// module contract verifies, bound to the chain id and the module address as
// the verifying domain.
func OperationTypedData(op *operation.Operation, chainID *big.Int, module, entryPoint common.Address) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"SafeOp": {
				{Name: "safe", Type: "address"},
				{Name: "nonce", Type: "uint256"},
				{Name: "initCode", Type: "bytes"},
				{Name: "callData", Type: "bytes"},
				{Name: "callGasLimit", Type: "uint256"},
				{Name: "verificationGasLimit", Type: "uint256"},
				{Name: "preVerificationGas", Type: "uint256"},
				{Name: "maxFeePerGas", Type: "uint256"},
				{Name: "maxPriorityFeePerGas", Type: "uint256"},
				{Name: "paymasterAndData", Type: "bytes"},
				{Name: "validAfter", Type: "uint48"},
				{Name: "validUntil", Type: "uint48"},
				{Name: "entryPoint", Type: "address"},
			},
		},
		PrimaryType: "SafeOp",
		Domain: apitypes.TypedDataDomain{
			ChainId:           (*math.HexOrDecimal256)(chainID),
			VerifyingContract: module.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"safe":                 op.Sender.Hex(),
			"nonce":                hexutil.EncodeBig(bigOrZero(op.Nonce)),
			"initCode":             hexutil.Encode(bytesOrEmpty(op.InitCode)),
			"callData":             hexutil.Encode(bytesOrEmpty(op.CallData)),
			"callGasLimit":         hexutil.EncodeBig(bigOrZero(op.CallGasLimit)),
			"verificationGasLimit": hexutil.EncodeBig(bigOrZero(op.VerificationGasLimit)),
			"preVerificationGas":   hexutil.EncodeBig(bigOrZero(op.PreVerificationGas)),
			"maxFeePerGas":         hexutil.EncodeBig(bigOrZero(op.MaxFeePerGas)),
			"maxPriorityFeePerGas": hexutil.EncodeBig(bigOrZero(op.MaxPriorityFeePerGas)),
			"paymasterAndData":     hexutil.Encode(bytesOrEmpty(op.PaymasterAndData)),
			"validAfter":           hexutil.EncodeBig(bigOrZero(op.ValidAfter)),
			"validUntil":           hexutil.EncodeBig(bigOrZero(op.ValidUntil)),
			"entryPoint":           entryPoint.Hex(),
		},
	}
}

// OperationHash computes the canonical hash of the operation, i.e. the
// EIP-712 digest of its typed-data structure.
func OperationHash(op *operation.Operation, chainID *big.Int, module, entryPoint common.Address) (common.Hash, error) {
	hash, _, err := apitypes.TypedDataAndHash(OperationTypedData(op, chainID, module, entryPoint))
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to hash operation typed data")
	}

	return common.BytesToHash(hash), nil
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func bytesOrEmpty(v []byte) []byte {
	if v == nil {
		return []byte{}
	}
	return v
}
