// Package addresscodec converts between bitcoin-style addresses and locking scripts.
package addresscodec

import (
	"errors"
	"fmt"

	"cat20_wallet/internal/domain/entity"
	networkdefinition "cat20_wallet/internal/infrastructure/network/definition"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
)

// ErrUnknownNetwork is returned for a network identifier without a definition.
var ErrUnknownNetwork = errors.New("unknown network")

// Codec implements port.AddressCodec with btcd address encoding.
type Codec struct{}

// New creates a Codec.
func New() *Codec {
	return &Codec{}
}

func (c *Codec) params(network string) (entity.NetworkDefinition, error) {
	def, ok := networkdefinition.Lookup(network)
	if !ok {
		return entity.NetworkDefinition{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}
	return def, nil
}

// AddressToLockingScript decodes an address of the given network into its locking script.
func (c *Codec) AddressToLockingScript(address string, network string) ([]byte, error) {
	def, err := c.params(network)
	if err != nil {
		return nil, err
	}

	addr, err := btcutil.DecodeAddress(address, def.Params)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", entity.ErrInvalidAddress, address, err)
	}
	if !addr.IsForNet(def.Params) {
		return nil, fmt.Errorf("%w: %q is not a %s address", entity.ErrInvalidAddress, address, def.Identifier)
	}

	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", entity.ErrInvalidAddress, address, err)
	}
	return script, nil
}

// LockingScriptToAddress encodes a standard single-address locking script as an address of the given network.
func (c *Codec) LockingScriptToAddress(script []byte, network string) (string, error) {
	def, err := c.params(network)
	if err != nil {
		return "", err
	}

	class, addrs, _, err := txscript.ExtractPkScriptAddrs(script, def.Params)
	if err != nil {
		return "", fmt.Errorf("parse locking script: %w", err)
	}
	if class == txscript.NonStandardTy || len(addrs) != 1 {
		return "", fmt.Errorf("locking script of class %s has no single address", class)
	}
	return addrs[0].EncodeAddress(), nil
}

// ValidateAddress reports whether address decodes for the given network.
func (c *Codec) ValidateAddress(address string, network string) error {
	_, err := c.AddressToLockingScript(address, network)
	return err
}
