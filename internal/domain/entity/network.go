package entity

import "github.com/btcsuite/btcd/chaincfg"

// NetworkDefinition holds the configuration for a supported chain.
type NetworkDefinition struct {
	Identifier   string           `json:"identifier" yaml:"identifier"` // e.g. "fractal-mainnet"
	Name         string           `json:"name" yaml:"name"`
	NativeSymbol string           `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals     uint8            `json:"decimals" yaml:"decimals"`
	ExplorerURL  string           `json:"explorerUrl,omitempty" yaml:"explorerUrl,omitempty"`
	Params       *chaincfg.Params `json:"-" yaml:"-"`
}
