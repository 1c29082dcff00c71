package entity

import "errors"

// Transfer and session failures. Callers match them with errors.Is.
var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrNoTokenInfo        = errors.New("token info unavailable")
	ErrNoSpendableOutputs = errors.New("no spendable token outputs")
	ErrSendFailed         = errors.New("send failed")
	ErrNetworkUnavailable = errors.New("wallet unavailable")
)
