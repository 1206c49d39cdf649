package estimate

import (
	"bytes"
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-relayer/internal/operation"
)

// ecdsaSignatureLength is the per-owner byte length of an encoded signature.
const ecdsaSignatureLength = 65

// Pipeline runs the three-phase fee estimation: estimator pre-phase, remote
// bundler estimate, estimator post-phase. Phases are best-effort in the sense
// that a missing capability or an empty remote answer skips cleanly, but any
// phase that runs and fails surfaces its error.
type Pipeline struct {
	remote RemoteEstimator
}

// NewPipeline creates a pipeline backed by the given remote estimator.
func NewPipeline(remote RemoteEstimator) *Pipeline {
	return &Pipeline{remote: remote}
}

// Estimate fills the operation's gas fields in place. The threshold sizes the
// placeholder signature so estimated calldata matches the eventual real one.
func (p *Pipeline) Estimate(ctx context.Context, op *operation.Operation, est Estimator, entryPoint common.Address, threshold int) error {
	if est == nil {
		est = NoopEstimator{}
	}

	logger := log.With().Str("component", "fee_estimation").Str("estimator", est.Name()).Logger()

	if pre, ok := est.(PreEstimator); ok {
		if err := pre.BeforeGasEstimation(ctx, op); err != nil {
			return errors.Wrap(err, "pre-estimation phase failed")
		}
	}

	if p.remote != nil {
		if op.SignatureCount() == 0 {
			// The remote estimate sees a placeholder signature of the final
			// byte length; it is cleared again below.
			op.AddSignature(operation.SignatureEntry{Data: PlaceholderSignature(threshold)})
			defer op.ClearSignatures()
		}

		result, err := p.remote.EstimateOperationGas(ctx, op, entryPoint)
		if err != nil {
			return errors.Wrap(err, "remote gas estimation failed")
		}

		if result != nil {
			mergeEstimate(op, result)
			logger.Debug().Msg("Merged remote gas estimate")
		}
	}

	if post, ok := est.(PostEstimator); ok {
		if err := post.AfterGasEstimation(ctx, op); err != nil {
			return errors.Wrap(err, "post-estimation phase failed")
		}
	}

	return nil
}

// mergeEstimate applies remote values over the operation. Remote answers are
// authoritative, but a missing remote field never regresses an existing
// value back to unset.
func mergeEstimate(op *operation.Operation, result *GasEstimate) {
	if result.CallGasLimit != nil {
		op.CallGasLimit = result.CallGasLimit
	}
	if result.VerificationGasLimit != nil {
		op.VerificationGasLimit = result.VerificationGasLimit
	}
	if result.PreVerificationGas != nil {
		op.PreVerificationGas = result.PreVerificationGas
	}
	if result.MaxFeePerGas != nil {
		op.MaxFeePerGas = result.MaxFeePerGas
	}
	if result.MaxPriorityFeePerGas != nil {
		op.MaxPriorityFeePerGas = result.MaxPriorityFeePerGas
	}
}

// PlaceholderSignature returns a dummy signature with the byte length of
// threshold real owner signatures. Only the length matters to the bundler's
// calldata cost model.
func PlaceholderSignature(threshold int) []byte {
	if threshold < 1 {
		threshold = 1
	}

	entry := bytes.Repeat([]byte{0xec}, ecdsaSignatureLength-1)
	entry = append(entry, 0x1c)

	return bytes.Repeat(entry, threshold)
}
