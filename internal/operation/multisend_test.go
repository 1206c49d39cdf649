package operation_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-relayer/internal/operation"
)

func TestEncodeBatchPackedLayout(t *testing.T) {
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	data := []byte{0xde, 0xad, 0xbe, 0xef}

	packed := operation.EncodeBatch([]operation.BatchTx{
		{Kind: operation.DelegateCall, To: to, Value: big.NewInt(7), Data: data},
	})

	// 1 op byte + 20 address bytes + 32 value bytes + 32 length bytes + data
	require.Len(t, packed, 1+20+32+32+len(data))

	assert.Equal(t, byte(operation.DelegateCall), packed[0])
	assert.Equal(t, to.Bytes(), packed[1:21])
	assert.Equal(t, common.LeftPadBytes(big.NewInt(7).Bytes(), 32), packed[21:53])
	assert.Equal(t, common.LeftPadBytes(big.NewInt(int64(len(data))).Bytes(), 32), packed[53:85])
	assert.Equal(t, data, packed[85:])
}

func TestEncodeBatchConcatenatesTransactions(t *testing.T) {
	txA := operation.BatchTx{Kind: operation.Call, To: common.HexToAddress("0x01"), Data: []byte{0x01}}
	txB := operation.BatchTx{Kind: operation.Call, To: common.HexToAddress("0x02"), Data: []byte{0x02, 0x03}}

	packed := operation.EncodeBatch([]operation.BatchTx{txA, txB})
	individual := append(operation.EncodeBatch([]operation.BatchTx{txA}), operation.EncodeBatch([]operation.BatchTx{txB})...)

	assert.Equal(t, individual, packed)
}

func TestEncodeMultiSendCallSelector(t *testing.T) {
	calldata, err := operation.EncodeMultiSendCall([]operation.BatchTx{
		{Kind: operation.Call, To: common.HexToAddress("0x01"), Data: []byte{0x01}},
	})
	require.NoError(t, err)

	expectedSelector := crypto.Keccak256([]byte("multiSend(bytes)"))[:4]
	assert.Equal(t, expectedSelector, calldata[:4])
	assert.Greater(t, len(calldata), 4)
}
