package entity

import "math/big"

// TokenMetadata holds the details of a CAT20 token as reported by the tracker.
// Max, Premine and Limit are supply values in smallest units and may exceed 2^53.
type TokenMetadata struct {
	TokenID       string   `json:"tokenId" yaml:"tokenId"`
	GenesisTxid   string   `json:"genesisTxid,omitempty" yaml:"genesisTxid,omitempty"`
	Name          string   `json:"name" yaml:"name"`
	Symbol        string   `json:"symbol" yaml:"symbol"`
	Decimals      uint8    `json:"decimals" yaml:"decimals"`
	MinterAddress string   `json:"minterAddr" yaml:"minterAddr"`
	TokenAddress  string   `json:"tokenAddr" yaml:"tokenAddr"`
	TokenPubKey   string   `json:"tokenPubKey,omitempty" yaml:"tokenPubKey,omitempty"`
	MinterMd5     string   `json:"minterMd5,omitempty" yaml:"minterMd5,omitempty"`
	Max           *big.Int `json:"-" yaml:"-"`
	Premine       *big.Int `json:"-" yaml:"-"`
	Limit         *big.Int `json:"-" yaml:"-"`
	// TokenAddressDerived is true when the tracker omitted tokenAddr and it was computed from MinterAddress.
	TokenAddressDerived bool `json:"tokenAddrDerived" yaml:"-"`
}

// TokenSummary is one entry of the token list shown for a connected wallet.
type TokenSummary struct {
	TokenID   string      `json:"tokenId"`
	Symbol    string      `json:"symbol"`
	Decimals  uint8       `json:"decimals"`
	Confirmed *big.Int    `json:"-"`
	Formatted string      `json:"formattedBalance"`
	Status    FetchStatus `json:"status"`
}
