package operations

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github/chapool/go-relayer/internal/operation"
)

// OperationPayload is the JSON form of an operation: integers as 0x-prefixed
// hex, byte strings as 0x-prefixed lowercase hex.
type OperationPayload struct {
	Sender               string             `json:"sender"`
	Nonce                *hexutil.Big       `json:"nonce"`
	InitCode             hexutil.Bytes      `json:"initCode"`
	CallData             hexutil.Bytes      `json:"callData"`
	CallGasLimit         *hexutil.Big       `json:"callGasLimit"`
	VerificationGasLimit *hexutil.Big       `json:"verificationGasLimit"`
	PreVerificationGas   *hexutil.Big       `json:"preVerificationGas"`
	MaxFeePerGas         *hexutil.Big       `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big       `json:"maxPriorityFeePerGas"`
	PaymasterAndData     hexutil.Bytes      `json:"paymasterAndData"`
	ValidAfter           *hexutil.Big       `json:"validAfter,omitempty"`
	ValidUntil           *hexutil.Big       `json:"validUntil,omitempty"`
	Signatures           []SignaturePayload `json:"signatures,omitempty"`
}

// SignaturePayload is one collected owner signature.
type SignaturePayload struct {
	Signer              string        `json:"signer"`
	Data                hexutil.Bytes `json:"data"`
	IsContractSignature bool          `json:"isContractSignature,omitempty"`
}

func toPayload(op *operation.Operation) *OperationPayload {
	payload := &OperationPayload{
		Sender:               op.Sender.Hex(),
		Nonce:                bigToHex(op.Nonce),
		InitCode:             bytesOrDefault(op.InitCode),
		CallData:             bytesOrDefault(op.CallData),
		CallGasLimit:         bigToHex(op.CallGasLimit),
		VerificationGasLimit: bigToHex(op.VerificationGasLimit),
		PreVerificationGas:   bigToHex(op.PreVerificationGas),
		MaxFeePerGas:         bigToHex(op.MaxFeePerGas),
		MaxPriorityFeePerGas: bigToHex(op.MaxPriorityFeePerGas),
		PaymasterAndData:     bytesOrDefault(op.PaymasterAndData),
		ValidAfter:           (*hexutil.Big)(op.ValidAfter),
		ValidUntil:           (*hexutil.Big)(op.ValidUntil),
	}

	for _, entry := range op.Signatures() {
		payload.Signatures = append(payload.Signatures, SignaturePayload{
			Signer:              entry.Signer.Hex(),
			Data:                entry.Data,
			IsContractSignature: entry.IsContractSignature,
		})
	}

	return payload
}

func fromPayload(payload *OperationPayload) *operation.Operation {
	op := &operation.Operation{
		Sender:               common.HexToAddress(payload.Sender),
		Nonce:                hexToBig(payload.Nonce),
		InitCode:             payload.InitCode,
		CallData:             payload.CallData,
		CallGasLimit:         hexToBig(payload.CallGasLimit),
		VerificationGasLimit: hexToBig(payload.VerificationGasLimit),
		PreVerificationGas:   hexToBig(payload.PreVerificationGas),
		MaxFeePerGas:         hexToBig(payload.MaxFeePerGas),
		MaxPriorityFeePerGas: hexToBig(payload.MaxPriorityFeePerGas),
		PaymasterAndData:     payload.PaymasterAndData,
		ValidAfter:           hexToBig(payload.ValidAfter),
		ValidUntil:           hexToBig(payload.ValidUntil),
	}

	for _, sig := range payload.Signatures {
		op.AddSignature(operation.SignatureEntry{
			Signer:              common.HexToAddress(sig.Signer),
			Data:                sig.Data,
			IsContractSignature: sig.IsContractSignature,
		})
	}

	return op
}

func bigToHex(v *big.Int) *hexutil.Big {
	if v == nil {
		v = new(big.Int)
	}
	return (*hexutil.Big)(v)
}

func hexToBig(v *hexutil.Big) *big.Int {
	if v == nil {
		return nil
	}
	return (*big.Int)(v)
}

func bytesOrDefault(b []byte) hexutil.Bytes {
	if b == nil {
		return hexutil.Bytes{}
	}
	return b
}
