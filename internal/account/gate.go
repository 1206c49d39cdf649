package account

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-relayer/internal/contracts"
)

// MinModuleCompatibleVersion is the lowest account version the 4337 module
// supports as its verifier.
const MinModuleCompatibleVersion = "1.4.1"

// Each compatibility failure carries its own sentinel so callers can
// remediate the specific cause instead of guessing.
var (
	ErrVersionTooOld        = errors.New("account version is below the minimum module-compatible version")
	ErrModuleNotEnabled     = errors.New("4337 module is not enabled on the account")
	ErrWrongFallbackHandler = errors.New("account fallback handler is not the 4337 module")
)

// CheckModuleCompatibility verifies that a deployed account can validate
// operations through the given module. It must pass before any remote
// estimation or signing is attempted.
func CheckModuleCompatibility(ctx context.Context, acc Account, module common.Address) error {
	version, err := acc.Version(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read account version")
	}

	cmp, err := contracts.CompareVersions(version, MinModuleCompatibleVersion)
	if err != nil {
		return errors.Wrap(err, "failed to compare account version")
	}
	if cmp < 0 {
		return errors.Wrapf(ErrVersionTooOld, "account version %s, minimum %s", version, MinModuleCompatibleVersion)
	}

	enabled, err := acc.IsModuleEnabled(ctx, module)
	if err != nil {
		return errors.Wrap(err, "failed to read enabled modules")
	}
	if !enabled {
		return errors.Wrapf(ErrModuleNotEnabled, "module %s", module.Hex())
	}

	handler, err := acc.FallbackHandler(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read fallback handler")
	}
	if handler != module {
		return errors.Wrapf(ErrWrongFallbackHandler, "handler %s, expected %s", handler.Hex(), module.Hex())
	}

	return nil
}
