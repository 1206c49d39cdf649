package account

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-relayer/internal/contracts"
)

// Setup calldata layouts. Version 1.0.x predates the fallback handler and
// uses a seven-field setup signature; every later version uses eight fields.
const (
	setupSignatureLegacy  = "setup(address[],uint256,address,bytes,address,uint256,address)"
	setupSignatureCurrent = "setup(address[],uint256,address,bytes,address,address,uint256,address)"
)

const selectorLength = 4

var (
	typeAddress, _      = abi.NewType("address", "", nil)
	typeAddressSlice, _ = abi.NewType("address[]", "", nil)
	typeUint256, _      = abi.NewType("uint256", "", nil)
	typeBytes, _        = abi.NewType("bytes", "", nil)
)

// EncodeSetup serializes the account configuration into the setup initializer
// calldata for the given account version. This is a closed-form serializer:
// no I/O, no contract state.
func EncodeSetup(cfg *Config, accountVersion string) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	legacy, err := usesLegacySetup(accountVersion)
	if err != nil {
		return nil, err
	}

	payment := cfg.Payment
	if payment == nil {
		payment = new(big.Int)
	}

	data := cfg.Data
	if data == nil {
		data = []byte{}
	}

	var (
		signature string
		args      abi.Arguments
		values    []interface{}
	)

	if legacy {
		signature = setupSignatureLegacy
		args = abi.Arguments{
			{Type: typeAddressSlice},
			{Type: typeUint256},
			{Type: typeAddress},
			{Type: typeBytes},
			{Type: typeAddress},
			{Type: typeUint256},
			{Type: typeAddress},
		}
		values = []interface{}{
			cfg.Owners,
			big.NewInt(int64(cfg.Threshold)),
			cfg.To,
			data,
			cfg.PaymentToken,
			payment,
			cfg.PaymentReceiver,
		}
	} else {
		signature = setupSignatureCurrent
		args = abi.Arguments{
			{Type: typeAddressSlice},
			{Type: typeUint256},
			{Type: typeAddress},
			{Type: typeBytes},
			{Type: typeAddress},
			{Type: typeAddress},
			{Type: typeUint256},
			{Type: typeAddress},
		}
		values = []interface{}{
			cfg.Owners,
			big.NewInt(int64(cfg.Threshold)),
			cfg.To,
			data,
			cfg.FallbackHandler,
			cfg.PaymentToken,
			payment,
			cfg.PaymentReceiver,
		}
	}

	packed, err := args.Pack(values...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack setup arguments")
	}

	calldata := make([]byte, 0, selectorLength+len(packed))
	calldata = append(calldata, crypto.Keccak256([]byte(signature))[:selectorLength]...)
	calldata = append(calldata, packed...)

	return calldata, nil
}

// usesLegacySetup reports whether the version predates the fallback handler
// field in the setup signature.
func usesLegacySetup(accountVersion string) (bool, error) {
	major, minor, err := contracts.ParseMajorMinor(accountVersion)
	if err != nil {
		return false, err
	}

	if major != 1 {
		return false, errors.Errorf("unsupported account version %s", accountVersion)
	}

	return minor == 0, nil
}
