package operation

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SignatureEntry is one owner's contribution to an operation signature.
type SignatureEntry struct {
	Signer common.Address
	Data   []byte

	// IsContractSignature marks a signature that the verifier must treat as
	// contract-verified instead of a raw ECDSA recovery.
	IsContractSignature bool
}

// Operation is the account-abstraction operation ("UserOperation") built for
// relayed execution. It has a single logical owner for its whole lifetime:
// the builder creates it, the estimation pipeline fills its gas fields, the
// signing protocol accumulates signatures, and the submission gateway reads
// it. No internal locking.
type Operation struct {
	Sender               common.Address
	Nonce                *big.Int
	InitCode             []byte
	CallData             []byte
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	PaymasterAndData     []byte

	// Validity window bounds, nil when unbounded.
	ValidAfter *big.Int
	ValidUntil *big.Int

	// Signature set keyed by signer, in insertion order. Re-adding a signer
	// replaces its entry so re-signing stays idempotent.
	entries map[common.Address]int
	order   []SignatureEntry
}

// AddSignature inserts or replaces the entry for its signer.
func (op *Operation) AddSignature(entry SignatureEntry) {
	if op.entries == nil {
		op.entries = make(map[common.Address]int)
	}

	if idx, ok := op.entries[entry.Signer]; ok {
		op.order[idx] = entry
		return
	}

	op.entries[entry.Signer] = len(op.order)
	op.order = append(op.order, entry)
}

// SignatureCount returns the number of distinct signers collected so far.
func (op *Operation) SignatureCount() int {
	return len(op.order)
}

// Signatures returns the collected entries in insertion order.
func (op *Operation) Signatures() []SignatureEntry {
	out := make([]SignatureEntry, len(op.order))
	copy(out, op.order)
	return out
}

// ClearSignatures drops every collected entry. Used to discard placeholder
// signatures installed for gas estimation.
func (op *Operation) ClearSignatures() {
	op.entries = nil
	op.order = nil
}

// SignatureFor returns the entry for the given signer, if present.
func (op *Operation) SignatureFor(signer common.Address) (SignatureEntry, bool) {
	idx, ok := op.entries[signer]
	if !ok {
		return SignatureEntry{}, false
	}
	return op.order[idx], true
}

// EncodedSignatures concatenates the collected signature bytes in insertion
// order. The verifier contract sorts and validates owner signatures itself;
// the only obligation here is to neither drop nor duplicate an entry.
func (op *Operation) EncodedSignatures() []byte {
	size := 0
	for _, entry := range op.order {
		size += len(entry.Data)
	}

	out := make([]byte, 0, size)
	for _, entry := range op.order {
		out = append(out, entry.Data...)
	}

	return out
}
