package contracts_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-relayer/internal/contracts"
)

func TestResolveKnownDeployment(t *testing.T) {
	registry := contracts.DefaultRegistry()

	factory, err := registry.Resolve(1, contracts.KindProxyFactory, "1.3.0")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xa6B71E26C5e0845f74c812102Ca7114b6a896AB2"), factory)

	module, err := registry.Resolve(11155111, contracts.KindModule, "0.3.0")
	require.NoError(t, err)
	assert.NotEqual(t, common.Address{}, module)
}

func TestResolveMissingEntries(t *testing.T) {
	registry := contracts.DefaultRegistry()

	_, err := registry.Resolve(999999, contracts.KindSingleton, "1.3.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "999999")

	_, err = registry.Resolve(1, contracts.KindSingleton, "9.9.9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "9.9.9")

	_, err = registry.Resolve(1, contracts.Kind("unknown"), "1.3.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
}

func TestCustomRegistry(t *testing.T) {
	address := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	registry := contracts.NewRegistry(map[contracts.Kind][]contracts.Deployment{
		contracts.KindSingleton: {
			{ChainID: 31337, Version: "1.4.1", Address: address},
		},
	})

	resolved, err := registry.Resolve(31337, contracts.KindSingleton, "1.4.1")
	require.NoError(t, err)
	assert.Equal(t, address, resolved)
}

func TestProxyCreationCodeSelection(t *testing.T) {
	legacy, err := contracts.ProxyCreationCode("1.1.1")
	require.NoError(t, err)

	current, err := contracts.ProxyCreationCode("1.3.0")
	require.NoError(t, err)

	assert.NotEmpty(t, legacy)
	assert.NotEmpty(t, current)
	assert.NotEqual(t, legacy, current)

	// 1.4.1 still uses the current bytecode
	later, err := contracts.ProxyCreationCode("1.4.1")
	require.NoError(t, err)
	assert.Equal(t, current, later)

	_, err = contracts.ProxyCreationCode("2.0.0")
	require.Error(t, err)

	_, err = contracts.ProxyCreationCode("garbage")
	require.Error(t, err)
}

func TestCompareVersions(t *testing.T) {
	cases := []struct {
		a        string
		b        string
		expected int
	}{
		{"1.3.0", "1.4.1", -1},
		{"1.4.1", "1.4.1", 0},
		{"1.4.0", "1.4.1", 0}, // patch versions are ignored
		{"2.0.0", "1.4.1", 1},
		{"1.1.1", "1.0.0", 1},
	}

	for _, tc := range cases {
		got, err := contracts.CompareVersions(tc.a, tc.b)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, got, "%s vs %s", tc.a, tc.b)
	}

	_, err := contracts.CompareVersions("nope", "1.4.1")
	require.Error(t, err)
}

func TestIsZKStackChain(t *testing.T) {
	assert.True(t, contracts.IsZKStackChain(324))
	assert.False(t, contracts.IsZKStackChain(1))
	assert.False(t, contracts.IsZKStackChain(11155111))
}
