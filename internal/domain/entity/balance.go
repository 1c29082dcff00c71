package entity

import "math/big"

// FetchStatus tells a legitimately empty result apart from a failed fetch.
type FetchStatus string

const (
	// FetchOK means the tracker answered and the value is authoritative.
	FetchOK FetchStatus = "ok"
	// FetchUnavailable means the fetch failed and the value is a zero/empty default.
	FetchUnavailable FetchStatus = "unavailable"
)

// Balance represents the confirmed amount of a token held by an address.
// It is derived from the tracker and never stored.
type Balance struct {
	TokenID   string      `json:"tokenId"`
	Symbol    string      `json:"symbol"`
	Confirmed *big.Int    `json:"-"`
	Status    FetchStatus `json:"status"`
}

// Available reports whether the balance came from a successful tracker call.
func (b Balance) Available() bool {
	return b.Status == FetchOK
}
