package test

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github/chapool/go-relayer/internal/bundler"
	"github/chapool/go-relayer/internal/operation"
	"github/chapool/go-relayer/internal/operation/estimate"
)

// BundlerStub is an in-memory bundler recording submissions and answering
// from fixture values.
type BundlerStub struct {
	ChainIDValue *big.Int
	EntryPoints  []common.Address
	GasEstimate  *estimate.GasEstimate
	SubmitHash   common.Hash

	Submitted []*operation.Operation
}

// NewBundlerStub returns a stub with one supported entry point and a full
// gas answer.
func NewBundlerStub() *BundlerStub {
	return &BundlerStub{
		ChainIDValue: big.NewInt(11155111),
		EntryPoints:  []common.Address{common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032")},
		GasEstimate: &estimate.GasEstimate{
			CallGasLimit:         big.NewInt(100000),
			VerificationGasLimit: big.NewInt(100000),
			PreVerificationGas:   big.NewInt(50000),
			MaxFeePerGas:         big.NewInt(20),
			MaxPriorityFeePerGas: big.NewInt(2),
		},
		SubmitHash: common.HexToHash("0x01"),
	}
}

func (b *BundlerStub) ChainID(context.Context) (*big.Int, error) {
	return b.ChainIDValue, nil
}

func (b *BundlerStub) SupportedEntryPoints(context.Context) ([]common.Address, error) {
	return b.EntryPoints, nil
}

func (b *BundlerStub) Submit(_ context.Context, op *operation.Operation, _ common.Address) (common.Hash, error) {
	b.Submitted = append(b.Submitted, op)
	return b.SubmitHash, nil
}

func (b *BundlerStub) GetOperationByHash(context.Context, common.Hash) (*bundler.OperationResult, error) {
	return nil, nil
}

func (b *BundlerStub) GetOperationReceipt(context.Context, common.Hash) (*bundler.Receipt, error) {
	return nil, nil
}

func (b *BundlerStub) EstimateOperationGas(context.Context, *operation.Operation, common.Address) (*estimate.GasEstimate, error) {
	return b.GasEstimate, nil
}
