package walletbridge

import (
	"context"
	stdjson "encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cat20_wallet/internal/app/port"
	"cat20_wallet/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bridgeStub struct {
	mu       sync.Mutex
	accounts []string
	methods  []string
	params   [][]stdjson.RawMessage
}

func (b *bridgeStub) setAccounts(a ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts = a
}

func (b *bridgeStub) serve(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64               `json:"id"`
			Method string               `json:"method"`
			Params []stdjson.RawMessage `json:"params"`
		}
		if err := stdjson.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		b.mu.Lock()
		b.methods = append(b.methods, req.Method)
		b.params = append(b.params, req.Params)
		accounts := append([]string{}, b.accounts...)
		b.mu.Unlock()

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		switch req.Method {
		case "getAccounts", "requestAccounts":
			resp["result"] = accounts
		case "getBalance":
			resp["result"] = map[string]int64{"confirmed": 1000, "unconfirmed": 5, "total": 1005}
		case "getBitcoinUtxos":
			resp["result"] = []map[string]any{{"txid": "ff", "vout": 2, "satoshis": 5000, "scriptPk": "5120aa"}}
		case "signPsbts":
			var psbts []string
			_ = stdjson.Unmarshal(req.Params[0], &psbts)
			for i := range psbts {
				psbts[i] += "signed"
			}
			resp["result"] = psbts
		case "signPsbt":
			resp["error"] = map[string]any{"code": 4001, "message": "User rejected the request."}
		default:
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		_ = stdjson.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientCalls(t *testing.T) {
	stub := &bridgeStub{accounts: []string{"bc1palice"}}
	srv := stub.serve(t)
	c := NewClient(srv.URL, zap.NewNop(), WithTimeout(2*time.Second))
	ctx := context.Background()

	accounts, err := c.GetAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bc1palice"}, accounts)

	bal, err := c.GetBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.WalletBalance{Confirmed: 1000, Unconfirmed: 5, Total: 1005}, bal)

	utxos, err := c.GetBitcoinUtxos(ctx)
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.EqualValues(t, 2, utxos[0].Vout)

	signed, err := c.SignPsbts(ctx, []string{"p1", "p2"}, []port.SignPsbtOptions{{AutoFinalized: true}, {AutoFinalized: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1signed", "p2signed"}, signed)

	_, err = c.SignPsbt(ctx, "p1", nil)
	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, 4001, rpcErr.Code)
}

func TestClientUnreachableIsNetworkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, zap.NewNop(), WithTimeout(time.Second)).GetAccounts(context.Background())
	assert.ErrorIs(t, err, entity.ErrNetworkUnavailable)
}

func TestAccountsChangedWatcher(t *testing.T) {
	stub := &bridgeStub{accounts: []string{"bc1palice"}}
	srv := stub.serve(t)
	c := NewClient(srv.URL, zap.NewNop(), WithWatchInterval(10*time.Millisecond))
	defer c.Close()

	events := make(chan []string, 8)
	id := c.On(port.EventAccountsChanged, func(accounts []string) { events <- accounts })

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, events, "baseline is not an event")

	stub.setAccounts()
	select {
	case got := <-events:
		assert.Empty(t, got)
	case <-time.After(time.Second):
		t.Fatal("no accountsChanged event for disconnect")
	}

	stub.setAccounts("bc1pbob")
	select {
	case got := <-events:
		assert.Equal(t, []string{"bc1pbob"}, got)
	case <-time.After(time.Second):
		t.Fatal("no accountsChanged event for new account")
	}

	c.RemoveListener(port.EventAccountsChanged, id)
	c.mu.Lock()
	stopped := c.stopWatch == nil
	c.mu.Unlock()
	assert.True(t, stopped)
}
