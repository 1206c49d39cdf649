package operation

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// CallKind distinguishes plain calls from delegate calls in a batch.
type CallKind uint8

const (
	Call         CallKind = 0
	DelegateCall CallKind = 1
)

// BatchTx is one transaction of a batch.
type BatchTx struct {
	Kind  CallKind
	To    common.Address
	Value *big.Int
	Data  []byte
}

const multiSendSignature = "multiSend(bytes)"

const (
	packedAddressLength = 20
	packedWordLength    = 32
)

// EncodeBatch packs the batch into the MultiSend wire layout: for each
// transaction one operation byte, 20 address bytes, a 32-byte value, a
// 32-byte data length and the raw data. The layout is a strict contract with
// the MultiSend implementation.
func EncodeBatch(txs []BatchTx) []byte {
	size := 0
	for _, tx := range txs {
		size += 1 + packedAddressLength + 2*packedWordLength + len(tx.Data)
	}

	packed := make([]byte, 0, size)
	for _, tx := range txs {
		value := tx.Value
		if value == nil {
			value = new(big.Int)
		}

		packed = append(packed, byte(tx.Kind))
		packed = append(packed, tx.To.Bytes()...)
		packed = append(packed, common.LeftPadBytes(value.Bytes(), packedWordLength)...)
		packed = append(packed, common.LeftPadBytes(big.NewInt(int64(len(tx.Data))).Bytes(), packedWordLength)...)
		packed = append(packed, tx.Data...)
	}

	return packed
}

// EncodeMultiSendCall wraps a packed batch into multiSend(bytes) calldata.
func EncodeMultiSendCall(txs []BatchTx) ([]byte, error) {
	return encodeCall(multiSendSignature, abi.Arguments{{Type: typeBytes}}, EncodeBatch(txs))
}
