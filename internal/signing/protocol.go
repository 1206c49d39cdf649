package signing

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-relayer/internal/account"
	"github/chapool/go-relayer/internal/operation"
)

// State describes how far signature collection has progressed. Transitions
// only ever add signatures.
type State int

const (
	NotSigned State = iota
	PartiallySigned
	ReadyToSubmit
)

func (s State) String() string {
	switch s {
	case NotSigned:
		return "not_signed"
	case PartiallySigned:
		return "partially_signed"
	case ReadyToSubmit:
		return "ready_to_submit"
	default:
		return "unknown"
	}
}

// Signing-precondition failures, raised before any signature is produced so
// no remote signer call is wasted on a signature the verifier would reject.
var (
	ErrSignerUnresolved = errors.New("signer does not resolve to an address")
	ErrSignerNotOwner   = errors.New("signer is not an owner of the account")
)

// SignParams are the inputs for one signing call.
type SignParams struct {
	Operation  *operation.Operation
	Account    account.Account
	Signer     Signer
	Method     Method
	Module     common.Address
	EntryPoint common.Address

	// ProspectiveOwners is the owner set the deployment will establish; it
	// gates signing for accounts that do not exist on chain yet.
	ProspectiveOwners []common.Address
}

// Protocol selects the signature scheme, produces the scheme-specific
// preimage and accumulates owner signatures on the operation.
type Protocol struct{}

// NewProtocol creates a signing protocol.
func NewProtocol() *Protocol {
	return &Protocol{}
}

// SignOperation adds one owner signature to the operation.
func (p *Protocol) SignOperation(ctx context.Context, params SignParams) error {
	if params.Operation == nil {
		return errors.New("signing requires an operation")
	}
	if params.Signer == nil || params.Signer.Address() == (common.Address{}) {
		return ErrSignerUnresolved
	}

	resolved := resolveSigner(params.Signer, params.Method)

	deployed, err := params.Account.IsDeployed(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read account deployment state")
	}

	attributed, err := p.checkAuthorization(ctx, params, resolved, deployed)
	if err != nil {
		return err
	}

	chainID, err := params.Account.ChainID(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read account chain id")
	}

	var entry operation.SignatureEntry

	switch resolved.kind {
	case KindPasskey:
		hash, err := OperationHash(params.Operation, chainID, params.Module, params.EntryPoint)
		if err != nil {
			return err
		}

		data, err := resolved.signer.SignHash(ctx, hash)
		if err != nil {
			return errors.Wrap(err, "passkey signer failed")
		}

		// The entry is attributed to whichever address actually holds
		// ownership. When that is the shared signer contract the verifier
		// must treat the signature as contract-verified.
		entry = operation.SignatureEntry{
			Signer:              attributed,
			Data:                data,
			IsContractSignature: attributed == resolved.passkey.SharedSignerAddress(),
		}

	case KindTypedData:
		typedData := OperationTypedData(params.Operation, chainID, params.Module, params.EntryPoint)

		data, err := resolved.typed.SignTypedData(ctx, typedData)
		if err != nil {
			return errors.Wrap(err, "typed-data signer failed")
		}

		entry = operation.SignatureEntry{Signer: attributed, Data: data}

	default:
		hash, err := OperationHash(params.Operation, chainID, params.Module, params.EntryPoint)
		if err != nil {
			return err
		}

		data, err := resolved.signer.SignHash(ctx, hash)
		if err != nil {
			return errors.Wrap(err, "hash signer failed")
		}

		entry = operation.SignatureEntry{Signer: attributed, Data: data}
	}

	params.Operation.AddSignature(entry)

	log.Debug().
		Str("component", "signing_protocol").
		Str("signer", entry.Signer.Hex()).
		Bool("contract_signature", entry.IsContractSignature).
		Int("collected", params.Operation.SignatureCount()).
		Msg("Added operation signature")

	return nil
}

// State reports signature-collection progress against the threshold.
func (p *Protocol) State(op *operation.Operation, threshold int) State {
	switch count := op.SignatureCount(); {
	case count == 0:
		return NotSigned
	case count < threshold:
		return PartiallySigned
	default:
		return ReadyToSubmit
	}
}

// checkAuthorization verifies the signer may sign for the account's current
// deployment state and returns the owner address the signature must be
// attributed to.
func (p *Protocol) checkAuthorization(ctx context.Context, params SignParams, resolved resolvedSigner, deployed bool) (common.Address, error) {
	signerAddress := resolved.signer.Address()

	if deployed {
		owners, err := params.Account.Owners(ctx)
		if err != nil {
			return common.Address{}, errors.Wrap(err, "failed to read account owners")
		}

		candidates := []common.Address{signerAddress}
		if resolved.kind == KindPasskey {
			candidates = append(candidates, resolved.passkey.SharedSignerAddress())
		}

		for _, candidate := range candidates {
			for _, owner := range owners {
				if owner == candidate {
					return candidate, nil
				}
			}
		}

		return common.Address{}, errors.Wrapf(ErrSignerNotOwner, "signer %s", signerAddress.Hex())
	}

	// Undeployed: a passkey credential is authorized through the shared
	// signer it will configure; anyone else must be a prospective owner.
	if resolved.kind == KindPasskey {
		return resolved.passkey.SharedSignerAddress(), nil
	}

	for _, owner := range params.ProspectiveOwners {
		if owner == signerAddress {
			return signerAddress, nil
		}
	}

	return common.Address{}, errors.Wrapf(ErrSignerNotOwner, "signer %s is not a prospective owner", signerAddress.Hex())
}
