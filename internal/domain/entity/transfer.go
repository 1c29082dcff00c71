package entity

import "math/big"

// TransferRequest is a user-entered single-recipient transfer.
type TransferRequest struct {
	DestinationAddress string `json:"address"`
	AmountDecimal      string `json:"amount"`
}

// TransferResult describes a broadcast transfer.
type TransferResult struct {
	TransactionID   string   `json:"txid"`
	Amount          *big.Int `json:"-"`
	FormattedAmount string   `json:"amount"`
	Symbol          string   `json:"symbol"`
	Destination     string   `json:"address"`
}

// TokenReceiver is one recipient passed to the protocol SDK.
type TokenReceiver struct {
	Address string   `json:"address"`
	Amount  *big.Int `json:"-"`
}
