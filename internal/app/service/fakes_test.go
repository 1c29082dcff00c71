package service

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"cat20_wallet/internal/app/port"
	"cat20_wallet/internal/domain/entity"
)

type fakeWallet struct {
	mu sync.Mutex

	accounts      []string
	accountsErr   error
	requested     []string
	requestErr    error
	balance       entity.WalletBalance
	balanceErr    error
	getAccountsFn func(ctx context.Context) ([]string, error)

	listeners map[port.ListenerID]port.AccountsListener
	nextID    port.ListenerID
	removed   int
}

func newFakeWallet(accounts ...string) *fakeWallet {
	return &fakeWallet{accounts: accounts, listeners: map[port.ListenerID]port.AccountsListener{}}
}

func (w *fakeWallet) GetAccounts(ctx context.Context) ([]string, error) {
	w.mu.Lock()
	fn := w.getAccountsFn
	accounts, err := append([]string(nil), w.accounts...), w.accountsErr
	w.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return accounts, err
}

func (w *fakeWallet) RequestAccounts(context.Context) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.requested...), w.requestErr
}

func (w *fakeWallet) GetBalance(context.Context) (entity.WalletBalance, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance, w.balanceErr
}

func (w *fakeWallet) GetBitcoinUtxos(context.Context) ([]entity.BitcoinUtxo, error) {
	return nil, nil
}

func (w *fakeWallet) SignPsbt(_ context.Context, psbtHex string, _ *port.SignPsbtOptions) (string, error) {
	return psbtHex + "00", nil
}

func (w *fakeWallet) SignPsbts(_ context.Context, psbtHexes []string, _ []port.SignPsbtOptions) ([]string, error) {
	out := make([]string, len(psbtHexes))
	for i, h := range psbtHexes {
		out[i] = h + "00"
	}
	return out, nil
}

func (w *fakeWallet) On(event string, cb port.AccountsListener) port.ListenerID {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	w.listeners[w.nextID] = cb
	return w.nextID
}

func (w *fakeWallet) RemoveListener(event string, id port.ListenerID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.listeners[id]; ok {
		delete(w.listeners, id)
		w.removed++
	}
}

func (w *fakeWallet) listenerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners)
}

// emit delivers an accountsChanged event to every listener.
func (w *fakeWallet) emit(accounts []string) {
	w.mu.Lock()
	cbs := make([]port.AccountsListener, 0, len(w.listeners))
	for _, cb := range w.listeners {
		cbs = append(cbs, cb)
	}
	w.mu.Unlock()
	for _, cb := range cbs {
		cb(accounts)
	}
}

func (w *fakeWallet) setAccounts(accounts ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accounts = accounts
}

type fakeTokenList struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeTokenList) ListTokens(_ context.Context, owner string) []entity.TokenSummary {
	f.mu.Lock()
	f.calls = append(f.calls, owner)
	f.mu.Unlock()
	return []entity.TokenSummary{{TokenID: "tok_0", Symbol: "CAT", Decimals: 2, Confirmed: big.NewInt(150), Formatted: "1.5", Status: entity.FetchOK}}
}

type fakeUtxoSource struct {
	set   entity.UtxoSet
	calls int
	limit int
}

func (f *fakeUtxoSource) GetTokenUtxos(_ context.Context, _, _, _ string, limit int) entity.UtxoSet {
	f.calls++
	f.limit = limit
	return f.set
}

func (f *fakeUtxoSource) GetBalance(_ context.Context, _ string, info *entity.TokenMetadata, _ string) entity.Balance {
	return entity.Balance{TokenID: info.TokenID, Symbol: info.Symbol, Confirmed: f.set.TotalAmount(), Status: f.set.Status}
}

type fakeSender struct {
	calls  []port.SendParams
	result *port.SendResult
	err    error
}

func (f *fakeSender) SingleSend(_ context.Context, params port.SendParams) (*port.SendResult, error) {
	f.calls = append(f.calls, params)
	return f.result, f.err
}

type fakeDirectory struct {
	infos map[string]*entity.TokenMetadata
}

func (f *fakeDirectory) GetTokenInfo(_ context.Context, _, tokenID, _ string) *entity.TokenMetadata {
	return f.infos[tokenID]
}

// fakeCodec accepts addresses starting with "bc1p".
type fakeCodec struct{}

func (fakeCodec) AddressToLockingScript(address, _ string) ([]byte, error) {
	if len(address) < 4 || address[:4] != "bc1p" {
		return nil, errors.Join(entity.ErrInvalidAddress, errors.New(address))
	}
	return []byte(address), nil
}

func (fakeCodec) LockingScriptToAddress(script []byte, _ string) (string, error) {
	return string(script), nil
}
