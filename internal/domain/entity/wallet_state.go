package entity

import "time"

// SessionStatus is the observable state of a wallet session.
type SessionStatus string

const (
	StatusDisconnected SessionStatus = "disconnected"
	StatusConnecting   SessionStatus = "connecting"
	StatusConnected    SessionStatus = "connected"
)

// WalletState is the cached view of the wallet connection.
type WalletState struct {
	Status        SessionStatus  `json:"status"`
	Address       string         `json:"address"`
	IsConnected   bool           `json:"isConnected"`
	NativeBalance int64          `json:"nativeBalance"`
	Tokens        []TokenSummary `json:"tokens"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// DisconnectedState returns the state of a session without an account.
func DisconnectedState(now time.Time) WalletState {
	return WalletState{Status: StatusDisconnected, UpdatedAt: now}
}

// Clone returns a copy that shares no slices with s.
func (s WalletState) Clone() WalletState {
	c := s
	if s.Tokens != nil {
		c.Tokens = make([]TokenSummary, len(s.Tokens))
		copy(c.Tokens, s.Tokens)
	}
	return c
}

// WalletBalance is the native asset balance reported by the wallet, in satoshis.
type WalletBalance struct {
	Confirmed   int64 `json:"confirmed"`
	Unconfirmed int64 `json:"unconfirmed"`
	Total       int64 `json:"total"`
}

// BitcoinUtxo is a plain (fee paying) output owned by the wallet.
type BitcoinUtxo struct {
	TxID     string `json:"txid"`
	Vout     uint32 `json:"vout"`
	Satoshis int64  `json:"satoshis"`
	ScriptPk string `json:"scriptPk"`
}
