package estimate

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"github/chapool/go-relayer/internal/operation"
)

const percentBase = 100

// EstimatorFor selects the estimator matching the operation's fee
// arrangement: a paymaster-backed operation gets the paymaster estimator,
// everything else runs the bare remote estimate.
//
//nolint:ireturn
func EstimatorFor(paymaster *operation.PaymasterConfig, marginPercent int64) Estimator {
	if paymaster == nil {
		return NoopEstimator{}
	}

	return &PaymasterEstimator{
		SponsorshipData:           paymaster.Data,
		VerificationMarginPercent: marginPercent,
	}
}

// PaymasterEstimator attaches precomputed sponsorship data before the remote
// estimate and applies a verification-gas safety margin after it, covering
// the extra validation work the paymaster contract performs.
type PaymasterEstimator struct {
	// SponsorshipData is installed as paymasterAndData before the remote
	// call when the operation does not carry any yet.
	SponsorshipData []byte

	// VerificationMarginPercent is added on top of the remote verification
	// gas limit, e.g. 20 for a 20% margin.
	VerificationMarginPercent int64
}

func (e *PaymasterEstimator) Name() string { return "paymaster" }

// BeforeGasEstimation installs the sponsorship data so the remote estimate
// accounts for its calldata and validation cost.
func (e *PaymasterEstimator) BeforeGasEstimation(_ context.Context, op *operation.Operation) error {
	if len(e.SponsorshipData) > 0 && len(op.PaymasterAndData) == 0 {
		op.PaymasterAndData = e.SponsorshipData
	}
	return nil
}

// AfterGasEstimation widens the verification gas limit by the configured
// margin. It needs the remote numbers, so it must run last.
func (e *PaymasterEstimator) AfterGasEstimation(_ context.Context, op *operation.Operation) error {
	if e.VerificationMarginPercent < 0 {
		return errors.Errorf("invalid verification margin %d%%", e.VerificationMarginPercent)
	}

	if e.VerificationMarginPercent == 0 || op.VerificationGasLimit == nil {
		return nil
	}

	margin := new(big.Int).Mul(op.VerificationGasLimit, big.NewInt(e.VerificationMarginPercent))
	margin.Div(margin, big.NewInt(percentBase))
	op.VerificationGasLimit = new(big.Int).Add(op.VerificationGasLimit, margin)

	return nil
}
