package signing

import (
	"context"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
)

// recoveryIDOffset converts the raw recovery id into the on-chain v value.
const recoveryIDOffset = 27

// LocalSigner signs with an in-process ECDSA private key.
type LocalSigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewLocalSigner creates a signer from a hex-encoded private key.
func NewLocalSigner(privateKeyHex string) (*LocalSigner, error) {
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse private key")
	}

	return &LocalSigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the address derived from the private key.
func (s *LocalSigner) Address() common.Address {
	return s.address
}

// SignHash signs the hash and normalizes the recovery id to 27/28.
func (s *LocalSigner) SignHash(_ context.Context, hash common.Hash) ([]byte, error) {
	signature, err := crypto.Sign(hash.Bytes(), s.key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign hash")
	}

	signature[crypto.RecoveryIDOffset] += recoveryIDOffset

	return signature, nil
}

// SignTypedData hashes the typed structure and signs the digest.
func (s *LocalSigner) SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error) {
	digest, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash typed data")
	}

	return s.SignHash(ctx, common.BytesToHash(digest))
}
