package signing_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-relayer/internal/operation"
	"github/chapool/go-relayer/internal/signing"
)

type fakeAccount struct {
	address  common.Address
	deployed bool
	owners   []common.Address
	chainID  *big.Int
}

func (a *fakeAccount) Address() common.Address                  { return a.address }
func (a *fakeAccount) IsDeployed(context.Context) (bool, error) { return a.deployed, nil }
func (a *fakeAccount) Owners(context.Context) ([]common.Address, error) {
	return a.owners, nil
}
func (a *fakeAccount) Threshold(context.Context) (int, error)  { return len(a.owners), nil }
func (a *fakeAccount) Version(context.Context) (string, error) { return "1.4.1", nil }
func (a *fakeAccount) IsModuleEnabled(context.Context, common.Address) (bool, error) {
	return true, nil
}
func (a *fakeAccount) FallbackHandler(context.Context) (common.Address, error) {
	return common.Address{}, nil
}
func (a *fakeAccount) Nonce(context.Context) (*big.Int, error)   { return big.NewInt(0), nil }
func (a *fakeAccount) ChainID(context.Context) (*big.Int, error) { return a.chainID, nil }

// hashSigner can only sign hashes.
type hashSigner struct {
	address   common.Address
	hashCalls int
}

func (s *hashSigner) Address() common.Address { return s.address }
func (s *hashSigner) SignHash(_ context.Context, hash common.Hash) ([]byte, error) {
	s.hashCalls++
	return append([]byte{0xec}, hash.Bytes()...), nil
}

// typedSigner can additionally sign typed data.
type typedSigner struct {
	hashSigner
	typedCalls int
}

func (s *typedSigner) SignTypedData(context.Context, apitypes.TypedData) ([]byte, error) {
	s.typedCalls++
	return []byte{0x71, 0x2a}, nil
}

// passkeySigner is represented on chain by a shared signer contract.
type passkeySigner struct {
	hashSigner
	shared common.Address
}

func (s *passkeySigner) SharedSignerAddress() common.Address { return s.shared }

var (
	moduleAddr     = common.HexToAddress("0x75cf11467937ce3F2f357CE24ffc3DBF8fD5c226")
	entryPointAddr = common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032")
	ownerA         = common.HexToAddress("0x1111111111111111111111111111111111111111")
	sharedAddr     = common.HexToAddress("0x94a4F6affBd8975951142c3999aEAB7ecee555c2")
)

func signParams(acc *fakeAccount, signer signing.Signer, method signing.Method) signing.SignParams {
	return signing.SignParams{
		Operation:  &operation.Operation{Nonce: big.NewInt(1)},
		Account:    acc,
		Signer:     signer,
		Method:     method,
		Module:     moduleAddr,
		EntryPoint: entryPointAddr,
	}
}

func TestSignOperationHashMethod(t *testing.T) {
	protocol := signing.NewProtocol()
	acc := &fakeAccount{deployed: true, owners: []common.Address{ownerA}, chainID: big.NewInt(1)}
	signer := &hashSigner{address: ownerA}

	params := signParams(acc, signer, signing.MethodHash)
	require.NoError(t, protocol.SignOperation(context.Background(), params))

	require.Equal(t, 1, params.Operation.SignatureCount())
	entry, ok := params.Operation.SignatureFor(ownerA)
	require.True(t, ok)
	assert.False(t, entry.IsContractSignature)
	assert.Equal(t, 1, signer.hashCalls)
}

func TestSignOperationTypedDataDispatch(t *testing.T) {
	protocol := signing.NewProtocol()
	acc := &fakeAccount{deployed: true, owners: []common.Address{ownerA}, chainID: big.NewInt(1)}

	signer := &typedSigner{hashSigner: hashSigner{address: ownerA}}
	params := signParams(acc, signer, signing.MethodTypedData)
	require.NoError(t, protocol.SignOperation(context.Background(), params))
	assert.Equal(t, 1, signer.typedCalls)
	assert.Equal(t, 0, signer.hashCalls)

	// a hash-only signer silently falls back to hash signing
	fallback := &hashSigner{address: ownerA}
	params = signParams(acc, fallback, signing.MethodTypedDataV4)
	require.NoError(t, protocol.SignOperation(context.Background(), params))
	assert.Equal(t, 1, fallback.hashCalls)
}

func TestSignOperationPasskeyUndeployed(t *testing.T) {
	protocol := signing.NewProtocol()
	acc := &fakeAccount{deployed: false, chainID: big.NewInt(1)}
	signer := &passkeySigner{
		hashSigner: hashSigner{address: common.HexToAddress("0x02")},
		shared:     sharedAddr,
	}

	params := signParams(acc, signer, signing.MethodHash)
	require.NoError(t, protocol.SignOperation(context.Background(), params))

	// attributed to the shared signer contract, not the credential address
	entry, ok := params.Operation.SignatureFor(sharedAddr)
	require.True(t, ok)
	assert.True(t, entry.IsContractSignature)

	_, ok = params.Operation.SignatureFor(signer.Address())
	assert.False(t, ok)
}

func TestSignOperationPasskeyDeployedCredentialOwner(t *testing.T) {
	protocol := signing.NewProtocol()
	credential := common.HexToAddress("0x02")
	acc := &fakeAccount{deployed: true, owners: []common.Address{credential}, chainID: big.NewInt(1)}
	signer := &passkeySigner{
		hashSigner: hashSigner{address: credential},
		shared:     sharedAddr,
	}

	params := signParams(acc, signer, signing.MethodHash)
	require.NoError(t, protocol.SignOperation(context.Background(), params))

	// the credential itself is the owner, so it signs under its own
	// address, unflagged
	entry, ok := params.Operation.SignatureFor(credential)
	require.True(t, ok)
	assert.False(t, entry.IsContractSignature)
}

func TestSignOperationPasskeyDeployedSharedSignerOwner(t *testing.T) {
	protocol := signing.NewProtocol()
	acc := &fakeAccount{deployed: true, owners: []common.Address{sharedAddr}, chainID: big.NewInt(1)}
	signer := &passkeySigner{
		hashSigner: hashSigner{address: common.HexToAddress("0x02")},
		shared:     sharedAddr,
	}

	params := signParams(acc, signer, signing.MethodHash)
	require.NoError(t, protocol.SignOperation(context.Background(), params))

	// ownership is held by the shared signer contract, so the signature
	// must be attributed there and flagged for contract verification
	entry, ok := params.Operation.SignatureFor(sharedAddr)
	require.True(t, ok)
	assert.True(t, entry.IsContractSignature)

	_, ok = params.Operation.SignatureFor(signer.Address())
	assert.False(t, ok)
}

func TestSignOperationPreconditions(t *testing.T) {
	protocol := signing.NewProtocol()
	ctx := context.Background()
	acc := &fakeAccount{deployed: true, owners: []common.Address{ownerA}, chainID: big.NewInt(1)}

	err := protocol.SignOperation(ctx, signParams(acc, nil, signing.MethodHash))
	assert.ErrorIs(t, err, signing.ErrSignerUnresolved)

	err = protocol.SignOperation(ctx, signParams(acc, &hashSigner{}, signing.MethodHash))
	assert.ErrorIs(t, err, signing.ErrSignerUnresolved)

	stranger := &hashSigner{address: common.HexToAddress("0x03")}
	err = protocol.SignOperation(ctx, signParams(acc, stranger, signing.MethodHash))
	assert.ErrorIs(t, err, signing.ErrSignerNotOwner)

	// undeployed accounts gate on the prospective owner set
	counterfactual := &fakeAccount{deployed: false, chainID: big.NewInt(1)}
	params := signParams(counterfactual, stranger, signing.MethodHash)
	err = protocol.SignOperation(ctx, params)
	assert.ErrorIs(t, err, signing.ErrSignerNotOwner)

	params.ProspectiveOwners = []common.Address{stranger.Address()}
	require.NoError(t, protocol.SignOperation(ctx, params))
}

func TestSignOperationReplacesOwnSignature(t *testing.T) {
	protocol := signing.NewProtocol()
	acc := &fakeAccount{deployed: true, owners: []common.Address{ownerA}, chainID: big.NewInt(1)}
	signer := &hashSigner{address: ownerA}

	params := signParams(acc, signer, signing.MethodHash)
	require.NoError(t, protocol.SignOperation(context.Background(), params))
	require.NoError(t, protocol.SignOperation(context.Background(), params))

	assert.Equal(t, 1, params.Operation.SignatureCount())
	assert.Equal(t, 2, signer.hashCalls)
}

func TestStateTransitions(t *testing.T) {
	protocol := signing.NewProtocol()
	op := &operation.Operation{}

	assert.Equal(t, signing.NotSigned, protocol.State(op, 2))

	op.AddSignature(operation.SignatureEntry{Signer: common.HexToAddress("0x01"), Data: []byte{0x01}})
	assert.Equal(t, signing.PartiallySigned, protocol.State(op, 2))

	op.AddSignature(operation.SignatureEntry{Signer: common.HexToAddress("0x02"), Data: []byte{0x02}})
	assert.Equal(t, signing.ReadyToSubmit, protocol.State(op, 2))

	assert.Equal(t, "ready_to_submit", signing.ReadyToSubmit.String())
}
