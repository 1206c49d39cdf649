package estimate

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github/chapool/go-relayer/internal/operation"
)

// GasEstimate is the remote estimator's answer. Nil fields mean "no answer"
// and never overwrite values the operation already carries.
type GasEstimate struct {
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// RemoteEstimator is the bundler-side gas estimation call.
type RemoteEstimator interface {
	EstimateOperationGas(ctx context.Context, op *operation.Operation, entryPoint common.Address) (*GasEstimate, error)
}

// Estimator is the optional-capability hook set around the remote phase.
// Implementations opt into either phase by implementing the corresponding
// interface; the pipeline skips phases an estimator does not provide.
type Estimator interface {
	Name() string
}

// PreEstimator runs before the remote call, e.g. to attach precomputed
// sponsorship data the remote estimate should account for.
type PreEstimator interface {
	BeforeGasEstimation(ctx context.Context, op *operation.Operation) error
}

// PostEstimator runs after the remote call, e.g. to apply a safety margin on
// top of the remote numbers.
type PostEstimator interface {
	AfterGasEstimation(ctx context.Context, op *operation.Operation) error
}

// NoopEstimator implements neither phase.
type NoopEstimator struct{}

func (NoopEstimator) Name() string { return "noop" }
