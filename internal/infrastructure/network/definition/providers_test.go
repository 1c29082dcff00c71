package networkdefinition

import (
	"testing"

	"cat20_wallet/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderActivatesConfiguredNetworks(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.NewSlogAdapter(), []string{"btc-signet", " Fractal-Mainnet ", "btc-signet", "ethereum"})

	defs := p.GetAllNetworkDefinitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "btc-signet", defs[0].Identifier)
	assert.Equal(t, "fractal-mainnet", defs[1].Identifier)

	def, ok := p.GetNetworkDefinitionByName("btc-signet")
	require.True(t, ok)
	assert.Equal(t, "tb", def.Params.Bech32HRPSegwit)

	_, ok = p.GetNetworkDefinitionByName("fractal-testnet")
	assert.False(t, ok)
}

func TestProviderDefaultsToAllNetworks(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.NewSlogAdapter(), nil)
	assert.Len(t, p.GetAllNetworkDefinitions(), 3)

	def, ok := Lookup("fractal-testnet")
	require.True(t, ok)
	assert.Equal(t, "bc", def.Params.Bech32HRPSegwit)
}

func TestNilProvider(t *testing.T) {
	var p *NetworkDefinitionProvider
	assert.Empty(t, p.GetAllNetworkDefinitions())
	_, ok := p.GetNetworkDefinitionByName("btc-signet")
	assert.False(t, ok)
}
