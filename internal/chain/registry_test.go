package chain_test

import (
	"testing"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetByName(t *testing.T) {
	registry := chain.NewRegistry()

	tests := []struct {
		name    string
		chainID int64
	}{
		{"ethereum", 1},
		{"base", 8453},
		{"polygon", 137},
		{"arbitrum", 42161},
		{"optimism", 10},
		{"bnb", 56},
		{"avalanche", 43114},
		{"localhost", 31337},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := registry.GetByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, c.Name)
			assert.Equal(t, tt.chainID, c.ChainID)
		})
	}
}

func TestRegistryGetByNameNormalizes(t *testing.T) {
	registry := chain.NewRegistry()
	c, err := registry.GetByName("  Base ")
	require.NoError(t, err)
	assert.Equal(t, "base", c.Name)
}

func TestRegistryGetUnknownChain(t *testing.T) {
	registry := chain.NewRegistry()
	_, err := registry.GetByName("unknownchain")
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

func TestAllChainsHaveRPCs(t *testing.T) {
	registry := chain.NewRegistry()
	for _, c := range registry.All() {
		t.Run(c.Name, func(t *testing.T) {
			assert.NotEmpty(t, c.MainnetRPCs)
			assert.NotEmpty(t, c.TestnetRPCs)
			assert.NotZero(t, c.ChainID)
			assert.NotZero(t, c.TestnetChainID)
		})
	}
}

func TestGetByChainIDMatchesMainnetAndTestnet(t *testing.T) {
	registry := chain.NewRegistry()

	c, err := registry.GetByChainID(8453)
	require.NoError(t, err)
	assert.Equal(t, "base", c.Name)
	assert.Equal(t, chain.ModeMainnet, c.ModeOf(8453))

	c, err = registry.GetByChainID(84532)
	require.NoError(t, err)
	assert.Equal(t, "base", c.Name)
	assert.Equal(t, chain.ModeTestnet, c.ModeOf(84532))
}

func TestGetByChainIDUnknown(t *testing.T) {
	registry := chain.NewRegistry()
	_, err := registry.GetByChainID(999999999)
	assert.ErrorIs(t, err, chain.ErrChainNotFound)
}

func TestChainModeAccessors(t *testing.T) {
	c, err := chain.NewRegistry().GetByName("ethereum")
	require.NoError(t, err)

	assert.Equal(t, int64(1), c.ID(chain.ModeMainnet))
	assert.Equal(t, int64(11155111), c.ID(chain.ModeTestnet))
	assert.Equal(t, c.TestnetRPCs, c.RPCs(chain.ModeTestnet))
	assert.Equal(t, c.MainnetRPCs, c.RPCs(chain.ModeMainnet))
	assert.Equal(t, "Sepolia", c.NetworkLabel(chain.ModeTestnet))
	assert.Equal(t, "Ethereum", c.NetworkLabel(chain.ModeMainnet))
	assert.Equal(t, "https://etherscan.io/tx/0xabc", c.TxURL(chain.ModeMainnet, "0xabc"))
}

func TestLocalhostHasNoExplorer(t *testing.T) {
	c, err := chain.NewRegistry().GetByName("localhost")
	require.NoError(t, err)
	assert.Empty(t, c.TxURL(chain.ModeMainnet, "0xabc"))
	assert.Equal(t, chain.ModeMainnet, c.ModeOf(31337))
}

func TestNamesSorted(t *testing.T) {
	names := chain.NewRegistry().Names()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}
