package port

import (
	"context"

	"cat20_wallet/internal/domain/entity"
)

// EventAccountsChanged is emitted by a wallet with the new account list; an empty list means disconnected.
const EventAccountsChanged = "accountsChanged"

// ListenerID identifies a registered wallet event listener.
type ListenerID uint64

// AccountsListener receives the account list carried by an accountsChanged event.
type AccountsListener func(accounts []string)

// SignInput selects an input to sign in a PSBT.
type SignInput struct {
	Index              int    `json:"index"`
	Address            string `json:"address,omitempty"`
	PublicKey          string `json:"publicKey,omitempty"`
	SighashTypes       []int  `json:"sighashTypes,omitempty"`
	DisableTweakSigner bool   `json:"disableTweakSigner,omitempty"`
}

// SignPsbtOptions controls PSBT signing.
type SignPsbtOptions struct {
	AutoFinalized bool        `json:"autoFinalized"`
	ToSignInputs  []SignInput `json:"toSignInputs"`
}

// PsbtSigner signs partially signed transactions.
type PsbtSigner interface {
	SignPsbt(ctx context.Context, psbtHex string, opts *SignPsbtOptions) (string, error)
	SignPsbts(ctx context.Context, psbtHexes []string, opts []SignPsbtOptions) ([]string, error)
}

// WalletCapability is the host wallet the session talks to.
type WalletCapability interface {
	PsbtSigner

	GetAccounts(ctx context.Context) ([]string, error)
	RequestAccounts(ctx context.Context) ([]string, error)
	GetBalance(ctx context.Context) (entity.WalletBalance, error)
	GetBitcoinUtxos(ctx context.Context) ([]entity.BitcoinUtxo, error)

	On(event string, cb AccountsListener) ListenerID
	RemoveListener(event string, id ListenerID)
}

// WalletSession owns the cached wallet state.
type WalletSession interface {
	// Start installs the account listener and the background poll. Close releases both.
	Start(ctx context.Context) error
	Close()

	Snapshot() entity.WalletState
	// Subscribe returns a stream of snapshots and its cancel func.
	Subscribe() (<-chan entity.WalletState, func())

	Connect(ctx context.Context) (entity.WalletState, error)
	Disconnect() entity.WalletState
	Refresh(ctx context.Context) entity.WalletState

	// Mutate is the single write path; fn runs under the session lock.
	Mutate(fn func(state *entity.WalletState))
	SetAddress(address string)
	SetConnected(connected bool)
}
