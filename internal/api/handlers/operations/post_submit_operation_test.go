package operations_test

import (
	"math/big"
	"net/http"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-relayer/internal/api"
	"github/chapool/go-relayer/internal/api/handlers/operations"
	"github/chapool/go-relayer/internal/test"
)

func signedOperationPayload() *operations.OperationPayload {
	return &operations.OperationPayload{
		Sender:               "0xCcC0000000000000000000000000000000000ccC",
		Nonce:                (*hexutil.Big)(big.NewInt(5)),
		CallData:             hexutil.Bytes{0xab, 0xcd},
		CallGasLimit:         (*hexutil.Big)(big.NewInt(100000)),
		VerificationGasLimit: (*hexutil.Big)(big.NewInt(100000)),
		PreVerificationGas:   (*hexutil.Big)(big.NewInt(50000)),
		MaxFeePerGas:         (*hexutil.Big)(big.NewInt(20)),
		MaxPriorityFeePerGas: (*hexutil.Big)(big.NewInt(2)),
		Signatures: []operations.SignaturePayload{
			{Signer: "0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1", Data: make(hexutil.Bytes, 65)},
		},
	}
}

func TestPostSubmitOperation(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, node *test.ChainNode) {
		body := operations.SubmitOperationRequest{
			Operation: signedOperationPayload(),
			Threshold: 1,
		}

		rec := test.PerformRequest(t, s, "POST", "/api/v1/operations", body)
		require.Equal(t, http.StatusOK, rec.Result().StatusCode, rec.Body.String())

		var response operations.SubmitOperationResponse
		test.ParseResponse(t, rec, &response)

		stub := s.Bundler.(*test.BundlerStub)
		assert.Equal(t, stub.SubmitHash.Hex(), response.Hash)
		assert.Equal(t, "ready_to_submit", response.State)

		require.Len(t, stub.Submitted, 1)
		assert.Equal(t, int64(5), stub.Submitted[0].Nonce.Int64())
		assert.Equal(t, 1, stub.Submitted[0].SignatureCount())
	})
}

func TestPostSubmitOperationBelowThreshold(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, node *test.ChainNode) {
		body := operations.SubmitOperationRequest{
			Operation: signedOperationPayload(),
			Threshold: 2,
		}

		rec := test.PerformRequest(t, s, "POST", "/api/v1/operations", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Result().StatusCode)

		stub := s.Bundler.(*test.BundlerStub)
		assert.Empty(t, stub.Submitted)
	})
}

func TestPostSubmitOperationWithoutSignatures(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, node *test.ChainNode) {
		payload := signedOperationPayload()
		payload.Signatures = nil

		body := operations.SubmitOperationRequest{Operation: payload}

		rec := test.PerformRequest(t, s, "POST", "/api/v1/operations", body)
		assert.Equal(t, http.StatusBadRequest, rec.Result().StatusCode)
	})
}
