package networkdefinition

import (
	"fmt"
	"strings"

	"cat20_wallet/internal/app/port"
	"cat20_wallet/internal/domain/entity"

	"github.com/btcsuite/btcd/chaincfg"
)

// NetworkDefinitionProvider provides network definitions.
type NetworkDefinitionProvider struct {
	logger            port.Logger
	allNetworkDefs    map[string]entity.NetworkDefinition
	activeNetworkDefs []entity.NetworkDefinition
}

// Predefined network definitions. Fractal uses Bitcoin mainnet address encoding on both of its networks.
var ( //nolint:gochecknoglobals // Global for definitions
	FractalMainnet = entity.NetworkDefinition{
		Identifier:   "fractal-mainnet",
		Name:         "Fractal Bitcoin Mainnet",
		NativeSymbol: "FB",
		Decimals:     8,
		ExplorerURL:  "https://mempool.fractalbitcoin.io",
		Params:       &chaincfg.MainNetParams,
	}
	FractalTestnet = entity.NetworkDefinition{
		Identifier:   "fractal-testnet",
		Name:         "Fractal Bitcoin Testnet",
		NativeSymbol: "FB",
		Decimals:     8,
		ExplorerURL:  "https://mempool-testnet.fractalbitcoin.io",
		Params:       &chaincfg.MainNetParams,
	}
	BTCSignet = entity.NetworkDefinition{
		Identifier:   "btc-signet",
		Name:         "Bitcoin Signet",
		NativeSymbol: "sBTC",
		Decimals:     8,
		ExplorerURL:  "https://mempool.space/signet",
		Params:       &chaincfg.SigNetParams,
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = map[string]entity.NetworkDefinition{
	FractalMainnet.Identifier: FractalMainnet,
	FractalTestnet.Identifier: FractalTestnet,
	BTCSignet.Identifier:      BTCSignet,
}

// Lookup returns a hardcoded network definition by identifier, regardless of activation.
func Lookup(identifier string) (entity.NetworkDefinition, bool) {
	def, ok := allKnownDefinitions[strings.ToLower(strings.TrimSpace(identifier))]
	return def, ok
}

// NewNetworkDefinitionProvider creates a new NetworkDefinitionProvider with the given networks active.
// An empty list activates every known network.
func NewNetworkDefinitionProvider(log port.Logger, enabled []string) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:            log,
		allNetworkDefs:    allKnownDefinitions,
		activeNetworkDefs: make([]entity.NetworkDefinition, 0, len(allKnownDefinitions)),
	}

	if len(enabled) == 0 {
		enabled = []string{FractalMainnet.Identifier, FractalTestnet.Identifier, BTCSignet.Identifier}
	}

	activeIdentifiers := make(map[string]struct{})
	for _, raw := range enabled {
		identifier := strings.ToLower(strings.TrimSpace(raw))
		if _, alreadyActive := activeIdentifiers[identifier]; alreadyActive {
			p.logger.Warn(fmt.Sprintf("Duplicate network identifier detected: %s. Skipping.", identifier))
			continue
		}

		def, ok := p.allNetworkDefs[identifier]
		if !ok {
			p.logger.Warn(fmt.Sprintf("Network '%s' is configured but has no hardcoded definition. Skipping.", identifier))
			continue
		}

		p.activeNetworkDefs = append(p.activeNetworkDefs, def)
		activeIdentifiers[identifier] = struct{}{}
	}

	if len(p.activeNetworkDefs) == 0 {
		p.logger.Warn("No known networks configured. No networks will be active.", "configured", enabled)
	} else {
		p.logger.Info(fmt.Sprintf("NetworkDefinitionProvider initialized. Active networks: %d", len(p.activeNetworkDefs)))
		for _, netDef := range p.activeNetworkDefs {
			p.logger.Debug(fmt.Sprintf("  - Active network: %s (ID: %s, HRP: %s)", netDef.Name, netDef.Identifier, netDef.Params.Bech32HRPSegwit))
		}
	}

	return p
}

// GetAllNetworkDefinitions returns the list of active network definitions.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defsCopy := make([]entity.NetworkDefinition, len(p.activeNetworkDefs))
	copy(defsCopy, p.activeNetworkDefs)
	return defsCopy
}

// GetNetworkDefinitionByName returns a specific network definition by its identifier if it's active.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	for _, def := range p.activeNetworkDefs {
		if def.Identifier == identifier {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}
