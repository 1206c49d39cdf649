package contracts

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Registry resolves canonical contract addresses per chain and version.
// It is an immutable in-memory manifest so tests and alternate networks can
// substitute their own tables without touching callers.
type Registry struct {
	entries map[Kind]map[string]map[int64]common.Address
}

// NewRegistry builds a registry from an explicit deployment list.
func NewRegistry(deployments map[Kind][]Deployment) *Registry {
	entries := make(map[Kind]map[string]map[int64]common.Address, len(deployments))
	for kind, list := range deployments {
		byVersion := make(map[string]map[int64]common.Address)
		for _, d := range list {
			byChain, ok := byVersion[d.Version]
			if !ok {
				byChain = make(map[int64]common.Address)
				byVersion[d.Version] = byChain
			}
			byChain[d.ChainID] = d.Address
		}
		entries[kind] = byVersion
	}

	return &Registry{entries: entries}
}

// Resolve returns the canonical address for the given contract kind.
// A missing entry is always an explicit error naming chain, version and kind.
func (r *Registry) Resolve(chainID int64, kind Kind, version string) (common.Address, error) {
	byVersion, ok := r.entries[kind]
	if !ok {
		return common.Address{}, errors.Errorf("no deployments registered for contract %q", kind)
	}

	byChain, ok := byVersion[version]
	if !ok {
		return common.Address{}, errors.Errorf("contract %q has no deployment for version %s", kind, version)
	}

	address, ok := byChain[chainID]
	if !ok {
		return common.Address{}, errors.Errorf("contract %q version %s is not deployed on chain %d", kind, version, chainID)
	}

	return address, nil
}

// DefaultRegistry returns the canonical deployment manifest for the supported
// chains. The same contracts are deployed at identical addresses on every
// supported network, so each entry is expanded over the chain list.
func DefaultRegistry() *Registry {
	chains := []int64{1, 10, 100, 137, 8453, 42161, 11155111}

	expand := func(version string, hex string) []Deployment {
		address := common.HexToAddress(hex)
		list := make([]Deployment, 0, len(chains))
		for _, chainID := range chains {
			list = append(list, Deployment{ChainID: chainID, Version: version, Address: address})
		}
		return list
	}

	concat := func(lists ...[]Deployment) []Deployment {
		var out []Deployment
		for _, l := range lists {
			out = append(out, l...)
		}
		return out
	}

	return NewRegistry(map[Kind][]Deployment{
		KindSingleton: concat(
			expand("1.3.0", "0xd9Db270c1B5E3Bd161E8c8503c55cEABeE709552"),
			expand("1.4.1", "0x41675C099F32341bf84BFc5382aF534df5C7461a"),
		),
		KindProxyFactory: concat(
			expand("1.3.0", "0xa6B71E26C5e0845f74c812102Ca7114b6a896AB2"),
			expand("1.4.1", "0x4e1DCf7AD4e460CfD30791CCC4F9c8a4f820ec67"),
		),
		KindFallbackHandler: concat(
			expand("1.3.0", "0xf48f2B2d2a534e402487b3ee7C18c33Aec0Fe5e4"),
			expand("1.4.1", "0xfd0732Dc9E303f09fCEf3a7388Ad10A83459Ec99"),
		),
		KindMultiSend: concat(
			expand("1.3.0", "0xA238CBeb142c10Ef7Ad8442C6D1f9E89e07e7761"),
			expand("1.4.1", "0x38869bf66a61cF6bDB996A6aE40D5853Fd43B526"),
		),
		KindMultiSendCallOnly: concat(
			expand("1.3.0", "0x40A2aCCbd92BCA938b02010E17A5b8929b49130D"),
			expand("1.4.1", "0x9641d764fc13c8B624c04430C7356C1C7C8102e2"),
		),
		KindModule: concat(
			expand("0.2.0", "0xa581c4A4DB7175302464fF3C06380BC3270b4037"),
			expand("0.3.0", "0x75cf11467937ce3F2f357CE24ffc3DBF8fD5c226"),
		),
		KindModuleSetup: concat(
			expand("0.2.0", "0x8EcD4ec46D4D2a6B64fE960B3D64e8B94B2234eb"),
			expand("0.3.0", "0x2dd68b007B46fBe91B9A7c3EDa5A7a1063cB5b47"),
		),
		KindSharedWebAuthnSigner: concat(
			expand("0.2.0", "0x94a4F6affBd8975951142c3999aEAB7ecee555c2"),
			expand("0.3.0", "0x94a4F6affBd8975951142c3999aEAB7ecee555c2"),
		),
	})
}
