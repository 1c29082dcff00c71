package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cat20_wallet/internal/app/port"
	"cat20_wallet/internal/domain/entity"
	"cat20_wallet/internal/pkg/metrics"
)

const (
	defaultPollInterval   = 5 * time.Second
	defaultRequestTimeout = 10 * time.Second
)

// WalletSessionConfig configures the session refresh.
type WalletSessionConfig struct {
	PollInterval   time.Duration
	RequestTimeout time.Duration
	Now            func() time.Time
}

// walletSessionImpl implements port.WalletSession.
// Every write goes through Mutate; a refresh overwrites the state when it completes,
// so the last completed writer wins.
type walletSessionImpl struct {
	wallet port.WalletCapability
	tokens port.TokenSummaryProvider
	logger port.Logger
	cfg    WalletSessionConfig

	mu        sync.Mutex
	state     entity.WalletState
	subs      map[uint64]chan entity.WalletState
	nextSubID uint64

	lifecycleMu sync.Mutex
	listenerID  port.ListenerID
	listening   bool
	runCtx      context.Context
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewWalletSession creates a session in the Disconnected state. wallet may be nil when no
// wallet is available; Connect and Start then fail with entity.ErrNetworkUnavailable.
func NewWalletSession(wallet port.WalletCapability, tokens port.TokenSummaryProvider, cfg WalletSessionConfig, l port.Logger) port.WalletSession {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &walletSessionImpl{
		wallet: wallet,
		tokens: tokens,
		logger: l,
		cfg:    cfg,
		state:  entity.DisconnectedState(cfg.Now()),
		subs:   make(map[uint64]chan entity.WalletState),
		runCtx: context.Background(),
	}
}

// Start implements port.WalletSession. It refreshes once, then polls until Close.
func (s *walletSessionImpl) Start(ctx context.Context) error {
	if s.wallet == nil {
		return entity.ErrNetworkUnavailable
	}

	s.lifecycleMu.Lock()
	if s.cancel != nil {
		s.lifecycleMu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.runCtx, s.cancel = runCtx, cancel
	s.done = make(chan struct{})
	s.installListenerLocked()
	s.lifecycleMu.Unlock()

	s.refresh(runCtx, "start")
	go s.pollLoop(runCtx, s.done)

	s.logger.Info("Wallet session started", "poll_interval", s.cfg.PollInterval.String())
	return nil
}

// Close implements port.WalletSession.
func (s *walletSessionImpl) Close() {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.listening {
		s.wallet.RemoveListener(port.EventAccountsChanged, s.listenerID)
		s.listening = false
	}
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.cancel, s.done = nil, nil
		s.runCtx = context.Background()
	}
	s.logger.Info("Wallet session closed")
}

func (s *walletSessionImpl) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx, "poll")
		}
	}
}

func (s *walletSessionImpl) installListenerLocked() {
	if s.listening {
		return
	}
	s.listenerID = s.wallet.On(port.EventAccountsChanged, s.onAccountsChanged)
	s.listening = true
}

func (s *walletSessionImpl) installListener() {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	s.installListenerLocked()
}

func (s *walletSessionImpl) baseContext() context.Context {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	return s.runCtx
}

func (s *walletSessionImpl) onAccountsChanged(accounts []string) {
	if len(accounts) == 0 {
		if s.overwriteIfListening(nil, entity.DisconnectedState(s.cfg.Now())) {
			s.logger.Info("Wallet reported no accounts, disconnecting")
			metrics.WalletPolls.WithLabelValues("accountsChanged", string(entity.StatusDisconnected)).Inc()
		}
		return
	}

	base := s.baseContext()
	ctx, cancel := context.WithTimeout(base, s.cfg.RequestTimeout)
	defer cancel()
	next := s.load(ctx, accounts[0])
	if s.overwriteIfListening(base, next) {
		metrics.WalletPolls.WithLabelValues("accountsChanged", string(next.Status)).Inc()
	}
}

// overwriteIfListening replaces the state unless Close removed the listener or
// cancelled base in the meantime.
func (s *walletSessionImpl) overwriteIfListening(base context.Context, next entity.WalletState) bool {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	if !s.listening || (base != nil && base.Err() != nil) {
		return false
	}
	s.overwrite(next)
	return true
}

// Snapshot implements port.WalletSession.
func (s *walletSessionImpl) Snapshot() entity.WalletState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe implements port.WalletSession. The channel holds at most one pending snapshot;
// a slow reader only sees the newest one.
func (s *walletSessionImpl) Subscribe() (<-chan entity.WalletState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan entity.WalletState, 1)
	ch <- s.state.Clone()
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Mutate implements port.WalletSession.
func (s *walletSessionImpl) Mutate(fn func(state *entity.WalletState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	s.state.UpdatedAt = s.cfg.Now()

	snapshot := s.state.Clone()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}

func (s *walletSessionImpl) overwrite(next entity.WalletState) {
	s.Mutate(func(state *entity.WalletState) { *state = next })
}

// SetAddress implements port.WalletSession.
func (s *walletSessionImpl) SetAddress(address string) {
	s.Mutate(func(state *entity.WalletState) { state.Address = address })
}

// SetConnected implements port.WalletSession.
func (s *walletSessionImpl) SetConnected(connected bool) {
	s.Mutate(func(state *entity.WalletState) {
		state.IsConnected = connected
		if connected {
			state.Status = entity.StatusConnected
		} else {
			state.Status = entity.StatusDisconnected
		}
	})
}

// Connect implements port.WalletSession.
func (s *walletSessionImpl) Connect(ctx context.Context) (entity.WalletState, error) {
	if s.wallet == nil {
		return s.Snapshot(), entity.ErrNetworkUnavailable
	}

	s.Mutate(func(state *entity.WalletState) { state.Status = entity.StatusConnecting })

	accounts, err := s.wallet.RequestAccounts(ctx)
	if err != nil || len(accounts) == 0 {
		s.overwrite(entity.DisconnectedState(s.cfg.Now()))
		metrics.WalletPolls.WithLabelValues("connect", string(entity.StatusDisconnected)).Inc()
		if err == nil {
			err = fmt.Errorf("wallet returned no accounts")
		}
		s.logger.Warn("Wallet connect failed", "error", err)
		return s.Snapshot(), fmt.Errorf("request accounts: %w", err)
	}

	s.installListener()
	next := s.load(ctx, accounts[0])
	s.overwrite(next)
	metrics.WalletPolls.WithLabelValues("connect", string(next.Status)).Inc()
	s.logger.Info("Wallet connected", "address", next.Address, "native_balance", next.NativeBalance)
	return s.Snapshot(), nil
}

// Disconnect implements port.WalletSession.
func (s *walletSessionImpl) Disconnect() entity.WalletState {
	s.overwrite(entity.DisconnectedState(s.cfg.Now()))
	s.logger.Info("Wallet disconnected")
	return s.Snapshot()
}

// Refresh implements port.WalletSession.
func (s *walletSessionImpl) Refresh(ctx context.Context) entity.WalletState {
	return s.refresh(ctx, "manual")
}

func (s *walletSessionImpl) refresh(ctx context.Context, trigger string) entity.WalletState {
	if s.wallet == nil {
		return s.Snapshot()
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	var next entity.WalletState
	accounts, err := s.wallet.GetAccounts(reqCtx)
	switch {
	case err != nil:
		s.logger.Warn("Failed to read wallet accounts", "trigger", trigger, "error", err)
		next = entity.DisconnectedState(s.cfg.Now())
	case len(accounts) == 0:
		next = entity.DisconnectedState(s.cfg.Now())
	default:
		next = s.load(reqCtx, accounts[0])
	}

	// A poll cut short by Close must not overwrite the state.
	if ctx.Err() != nil {
		return s.Snapshot()
	}
	s.overwrite(next)
	metrics.WalletPolls.WithLabelValues(trigger, string(next.Status)).Inc()
	s.logger.Debug("Wallet state refreshed", "trigger", trigger, "status", next.Status, "address", next.Address)
	return s.Snapshot()
}

// load fetches the native balance and token list of a connected address.
func (s *walletSessionImpl) load(ctx context.Context, address string) entity.WalletState {
	var native int64
	if bal, err := s.wallet.GetBalance(ctx); err != nil {
		s.logger.Warn("Failed to read wallet balance", "address", address, "error", err)
	} else {
		native = bal.Confirmed
	}

	var tokens []entity.TokenSummary
	if s.tokens != nil {
		tokens = s.tokens.ListTokens(ctx, address)
	}

	return entity.WalletState{
		Status:        entity.StatusConnected,
		Address:       address,
		IsConnected:   true,
		NativeBalance: native,
		Tokens:        tokens,
	}
}
