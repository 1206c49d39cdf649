package test

import (
	"testing"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/require"
	"github/chapool/go-relayer/internal/api"
	"github/chapool/go-relayer/internal/api/router"
	"github/chapool/go-relayer/internal/config"
	"github/chapool/go-relayer/internal/contracts"
	"github/chapool/go-relayer/internal/operation/estimate"
	"github/chapool/go-relayer/internal/signing"
)

func testServerConfig() config.Server {
	return config.Server{
		Echo: config.EchoServer{
			ListenAddress:           ":0",
			EnableRecoverMiddleware: true,
		},
		Chain: config.Chain{
			ChainID:        11155111,
			AccountVersion: "1.4.1",
			ModuleVersion:  "0.3.0",
		},
		Estimation: config.Estimation{
			PaymasterVerificationMarginPercent: 20,
		},
	}
}

// WithTestServer runs the closure against a fully initialized server backed
// by a ChainNode and a BundlerStub. The stubs stay reachable through
// s.Chain's node fixture and a type assertion on s.Bundler.
func WithTestServer(t *testing.T, closure func(s *api.Server, node *ChainNode)) {
	t.Helper()

	node := NewChainNode(t)
	t.Cleanup(node.Close)

	// the account gate expects the module as fallback handler
	module, err := contracts.DefaultRegistry().Resolve(11155111, contracts.KindModule, "0.3.0")
	require.NoError(t, err)
	node.FallbackHandler = module

	chainClient, err := ethclient.Dial(node.URL())
	require.NoError(t, err)
	t.Cleanup(chainClient.Close)

	bundlerStub := NewBundlerStub()

	s := api.NewServer(testServerConfig())
	s.Chain = chainClient
	s.Bundler = bundlerStub
	s.Pipeline = estimate.NewPipeline(bundlerStub)

	router.Init(s)

	closure(s, node)
}

// WithSignerKey configures server-side signing and returns the signer so
// tests can align the fixture owner set.
func WithSignerKey(t *testing.T, s *api.Server, privateKeyHex string) *signing.LocalSigner {
	t.Helper()

	signer, err := signing.NewLocalSigner(privateKeyHex)
	require.NoError(t, err)
	s.Signer = signer

	return signer
}
