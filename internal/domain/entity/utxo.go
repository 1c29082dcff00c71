package entity

import (
	"fmt"
	"math/big"
)

// Outpoint references a specific output of a transaction.
type Outpoint struct {
	TxID  string `json:"txId"`
	Index uint32 `json:"outputIndex"`
}

// String returns "txid:index".
func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID, o.Index)
}

// TokenUtxo is an unspent output carrying CAT20 tokens.
// Amount is in smallest token units.
type TokenUtxo struct {
	Outpoint       Outpoint `json:"outpoint"`
	Satoshis       int64    `json:"satoshis"`
	Script         []byte   `json:"-"`
	OwnerAddress   string   `json:"ownerAddr"`
	Amount         *big.Int `json:"-"`
	TxoStateHashes []string `json:"txoStateHashes,omitempty"`
}

// UtxoSet is the result of a token utxo lookup.
type UtxoSet struct {
	Utxos              []TokenUtxo `json:"utxos"`
	TrackerBlockHeight uint64      `json:"trackerBlockHeight"`
	Status             FetchStatus `json:"status"`
}

// TotalAmount sums the token amounts of the set.
func (s UtxoSet) TotalAmount() *big.Int {
	total := new(big.Int)
	for _, u := range s.Utxos {
		if u.Amount != nil {
			total.Add(total, u.Amount)
		}
	}
	return total
}
