// Package walletbridge talks JSON-RPC 2.0 to a local wallet bridge process that fronts the
// user's browser wallet. Account change events are produced by watching getAccounts.
package walletbridge

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"cat20_wallet/internal/app/port"
	"cat20_wallet/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Default configuration values.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultWatchInterval = 2 * time.Second
)

// RPCError is a JSON-RPC error returned by the bridge.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("wallet rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      uint64              `json:"id"`
	Result  jsoniter.RawMessage `json:"result,omitempty"`
	Error   *RPCError           `json:"error,omitempty"`
}

// Client implements port.WalletCapability.
type Client struct {
	endpoint      string
	client        *fasthttp.Client
	timeout       time.Duration
	watchInterval time.Duration
	logger        *zap.Logger
	requestID     atomic.Uint64

	mu        sync.Mutex
	listeners map[string]map[port.ListenerID]port.AccountsListener
	nextID    port.ListenerID
	stopWatch context.CancelFunc
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the per-call timeout used when the context has no deadline.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithWatchInterval sets how often accounts are polled while listeners are registered.
func WithWatchInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.watchInterval = d
	}
}

// NewClient creates a wallet bridge client.
func NewClient(endpoint string, logger *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:      endpoint,
		client:        &fasthttp.Client{Name: "cat20-wallet"},
		timeout:       DefaultTimeout,
		watchInterval: DefaultWatchInterval,
		logger:        logger.Named("WalletBridge"),
		listeners:     make(map[string]map[port.ListenerID]port.AccountsListener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: c.requestID.Add(1), Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", entity.ErrNetworkUnavailable, method, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("%s: bridge returned status %d", method, resp.StatusCode())
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(resp.Body(), &rpcResp); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	return nil
}

// GetAccounts returns the connected accounts without prompting the user.
func (c *Client) GetAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.call(ctx, "getAccounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// RequestAccounts asks the user to connect.
func (c *Client) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.call(ctx, "requestAccounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetBalance returns the native balance in satoshis.
func (c *Client) GetBalance(ctx context.Context) (entity.WalletBalance, error) {
	var bal entity.WalletBalance
	err := c.call(ctx, "getBalance", nil, &bal)
	return bal, err
}

// GetBitcoinUtxos returns plain outputs usable for fees.
func (c *Client) GetBitcoinUtxos(ctx context.Context) ([]entity.BitcoinUtxo, error) {
	var utxos []entity.BitcoinUtxo
	if err := c.call(ctx, "getBitcoinUtxos", nil, &utxos); err != nil {
		return nil, err
	}
	return utxos, nil
}

// SignPsbt signs a single PSBT.
func (c *Client) SignPsbt(ctx context.Context, psbtHex string, opts *port.SignPsbtOptions) (string, error) {
	params := []any{psbtHex}
	if opts != nil {
		params = append(params, opts)
	}
	var signed string
	if err := c.call(ctx, "signPsbt", params, &signed); err != nil {
		return "", err
	}
	return signed, nil
}

// SignPsbts signs several PSBTs in one user prompt.
func (c *Client) SignPsbts(ctx context.Context, psbtHexes []string, opts []port.SignPsbtOptions) ([]string, error) {
	params := []any{psbtHexes}
	if opts != nil {
		params = append(params, opts)
	}
	var signed []string
	if err := c.call(ctx, "signPsbts", params, &signed); err != nil {
		return nil, err
	}
	if len(signed) != len(psbtHexes) {
		return nil, fmt.Errorf("signPsbts: got %d signed psbts for %d inputs", len(signed), len(psbtHexes))
	}
	return signed, nil
}

// On registers cb for event. The first listener starts the account watcher.
func (c *Client) On(event string, cb port.AccountsListener) port.ListenerID {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	if c.listeners[event] == nil {
		c.listeners[event] = make(map[port.ListenerID]port.AccountsListener)
	}
	c.listeners[event][id] = cb

	if event == port.EventAccountsChanged && c.stopWatch == nil {
		ctx, cancel := context.WithCancel(context.Background())
		c.stopWatch = cancel
		go c.watch(ctx)
	}
	return id
}

// RemoveListener unregisters a listener. Removing the last one stops the watcher.
func (c *Client) RemoveListener(event string, id port.ListenerID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.listeners[event], id)
	if len(c.listeners[port.EventAccountsChanged]) == 0 && c.stopWatch != nil {
		c.stopWatch()
		c.stopWatch = nil
	}
}

// Close stops the watcher and drops all listeners.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopWatch != nil {
		c.stopWatch()
		c.stopWatch = nil
	}
	clear(c.listeners)
}

func (c *Client) watch(ctx context.Context) {
	ticker := time.NewTicker(c.watchInterval)
	defer ticker.Stop()

	var last []string
	known := false
	for {
		callCtx, cancel := context.WithTimeout(ctx, c.watchInterval)
		accounts, err := c.GetAccounts(callCtx)
		cancel()

		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			c.logger.Debug("Account watch failed", zap.Error(err))
		case !known:
			last, known = accounts, true
		case !slices.Equal(last, accounts):
			last = accounts
			c.logger.Info("Wallet accounts changed", zap.Strings("accounts", accounts))
			c.emit(ctx, port.EventAccountsChanged, accounts)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Client) emit(ctx context.Context, event string, accounts []string) {
	c.mu.Lock()
	cbs := make([]port.AccountsListener, 0, len(c.listeners[event]))
	for _, cb := range c.listeners[event] {
		cbs = append(cbs, cb)
	}
	c.mu.Unlock()

	for _, cb := range cbs {
		if ctx.Err() != nil {
			return
		}
		cb(slices.Clone(accounts))
	}
}
