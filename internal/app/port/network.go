package port

import "cat20_wallet/internal/domain/entity"

// NetworkDefinitionProvider defines the interface for providing network definitions.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns all supported network definitions.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByName returns a network definition by its identifier (e.g. "fractal-mainnet").
	GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool)
}

// AddressCodec converts between addresses and locking scripts for a network.
// Implementations must be pure: no network I/O.
type AddressCodec interface {
	AddressToLockingScript(address string, network string) ([]byte, error)
	LockingScriptToAddress(script []byte, network string) (string, error)
}

// CovenantBuilder computes the locking script of the CAT20 token covenant bound to a minter.
// The result for a given minter script is always the same.
type CovenantBuilder interface {
	TokenLockingScript(minterLockingScript []byte) ([]byte, error)
}
