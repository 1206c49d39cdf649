package operation

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

const selectorLength = 4

var (
	typeAddress, _      = abi.NewType("address", "", nil)
	typeAddressSlice, _ = abi.NewType("address[]", "", nil)
	typeUint256, _      = abi.NewType("uint256", "", nil)
	typeUint176, _      = abi.NewType("uint176", "", nil)
	typeBytes, _        = abi.NewType("bytes", "", nil)
	typeUint8, _        = abi.NewType("uint8", "", nil)
)

// encodeCall packs values and prepends the 4-byte selector of the signature.
func encodeCall(signature string, args abi.Arguments, values ...interface{}) ([]byte, error) {
	packed, err := args.Pack(values...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pack arguments for %s", signature)
	}

	calldata := make([]byte, 0, selectorLength+len(packed))
	calldata = append(calldata, crypto.Keccak256([]byte(signature))[:selectorLength]...)
	calldata = append(calldata, packed...)

	return calldata, nil
}
