package contracts

import (
	"github.com/ethereum/go-ethereum/common"
)

// Kind identifies a canonical contract deployment tracked by the registry.
type Kind string

const (
	// KindSingleton is the account implementation behind every proxy.
	KindSingleton Kind = "singleton"

	// KindProxyFactory deploys account proxies via CREATE2.
	KindProxyFactory Kind = "proxy_factory"

	// KindFallbackHandler is the default compatibility fallback handler.
	KindFallbackHandler Kind = "fallback_handler"

	// KindMultiSend aggregates several calls into one transaction.
	KindMultiSend Kind = "multi_send"

	// KindMultiSendCallOnly is the call-only MultiSend variant.
	KindMultiSendCallOnly Kind = "multi_send_call_only"

	// KindModule is the 4337 module that validates user operations.
	KindModule Kind = "module_4337"

	// KindModuleSetup enables modules during account construction.
	KindModuleSetup Kind = "module_setup"

	// KindSharedWebAuthnSigner is the shared passkey signer contract.
	KindSharedWebAuthnSigner Kind = "shared_webauthn_signer"
)

// Deployment pins one contract address for a (chain, version) pair.
type Deployment struct {
	ChainID int64
	Version string
	Address common.Address
}
