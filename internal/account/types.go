package account

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Config is the bootstrap configuration of a smart-contract account. It is
// what the setup initializer encodes and what address prediction hashes.
type Config struct {
	Owners          []common.Address
	Threshold       int
	To              common.Address // optional bootstrap call target
	Data            []byte         // optional bootstrap calldata
	FallbackHandler common.Address
	PaymentToken    common.Address
	Payment         *big.Int
	PaymentReceiver common.Address
}

// Validate checks the structural invariants of the configuration.
func (c *Config) Validate() error {
	if len(c.Owners) == 0 {
		return errors.New("account config requires at least one owner")
	}

	if c.Threshold < 1 {
		return errors.New("account config threshold must be at least 1")
	}

	if c.Threshold > len(c.Owners) {
		return errors.Errorf("account config threshold %d exceeds owner count %d", c.Threshold, len(c.Owners))
	}

	return nil
}

// HasOwner reports whether the address is part of the owner set.
func (c *Config) HasOwner(address common.Address) bool {
	for _, owner := range c.Owners {
		if owner == address {
			return true
		}
	}
	return false
}

// Account is the live smart-contract account capability. The core only reads
// this state; execution and on-chain verification semantics stay with the
// account itself.
type Account interface {
	// Address returns the account address (predicted or deployed).
	Address() common.Address

	// IsDeployed reports whether the account contract exists on chain.
	IsDeployed(ctx context.Context) (bool, error)

	// Owners returns the current owner set.
	Owners(ctx context.Context) ([]common.Address, error)

	// Threshold returns the current signing threshold.
	Threshold(ctx context.Context) (int, error)

	// Version returns the account contract version, e.g. "1.4.1".
	Version(ctx context.Context) (string, error)

	// IsModuleEnabled reports whether the given module is enabled.
	IsModuleEnabled(ctx context.Context, module common.Address) (bool, error)

	// FallbackHandler returns the currently configured fallback handler.
	FallbackHandler(ctx context.Context) (common.Address, error)

	// Nonce returns the account's operation nonce at the entry point.
	Nonce(ctx context.Context) (*big.Int, error)

	// ChainID returns the chain the account lives on.
	ChainID(ctx context.Context) (*big.Int, error)
}
