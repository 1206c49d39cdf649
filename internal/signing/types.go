package signing

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Signer is the external signer capability. Key custody and the low-level
// signature primitives live behind this interface.
type Signer interface {
	// Address returns the signer's own address.
	Address() common.Address

	// SignHash produces a detached signature over a 32-byte hash.
	SignHash(ctx context.Context, hash common.Hash) ([]byte, error)
}

// TypedDataSigner is a signer that can sign EIP-712 typed data directly.
type TypedDataSigner interface {
	Signer

	// SignTypedData produces a detached signature over the typed structure.
	SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error)
}

// PasskeySigner is a signer backed by a platform authentication credential,
// represented on chain by a shared signer contract.
type PasskeySigner interface {
	Signer

	// SharedSignerAddress returns the shared signer contract address that
	// represents this credential on chain.
	SharedSignerAddress() common.Address
}

// Method selects how an owner signature is produced.
type Method string

const (
	// MethodHash signs the operation's canonical hash directly.
	MethodHash Method = "hash"

	// MethodTypedData signs the operation as an EIP-712 structure.
	MethodTypedData Method = "typed_data"

	// MethodTypedDataV4 is the v4 wallet variant of MethodTypedData.
	MethodTypedDataV4 Method = "typed_data_v4"
)

// isTypedData reports whether the method requests a typed-data variant.
func (m Method) isTypedData() bool {
	return m == MethodTypedData || m == MethodTypedDataV4
}

// Kind is the closed set of signing schemes, resolved once per signing call.
type Kind int

const (
	KindECDSA Kind = iota
	KindTypedData
	KindPasskey
)

// resolvedSigner carries exactly the data its scheme branch needs.
type resolvedSigner struct {
	kind    Kind
	signer  Signer
	typed   TypedDataSigner
	passkey PasskeySigner
}

// resolveSigner classifies the signer capability for the requested method.
// Passkey capability wins over everything; a typed-data request only holds if
// the signer can actually produce one.
func resolveSigner(signer Signer, method Method) resolvedSigner {
	if passkey, ok := signer.(PasskeySigner); ok {
		return resolvedSigner{kind: KindPasskey, signer: signer, passkey: passkey}
	}

	if method.isTypedData() {
		if typed, ok := signer.(TypedDataSigner); ok {
			return resolvedSigner{kind: KindTypedData, signer: signer, typed: typed}
		}
	}

	return resolvedSigner{kind: KindECDSA, signer: signer}
}
