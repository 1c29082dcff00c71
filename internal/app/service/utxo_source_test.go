package service

import (
	"context"
	"testing"
	"time"

	"cat20_wallet/internal/domain/entity"
	"cat20_wallet/internal/infrastructure/httpclient"
	"cat20_wallet/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUtxoSource() *utxoSourceImpl {
	tracker := httpclient.NewTrackerClient(httpclient.TrackerClientConfig{Timeout: 2 * time.Second}, zap.NewNop())
	return NewAccountUtxoSource(tracker, logger.NewSlogAdapter()).(*utxoSourceImpl)
}

func TestGetTokenUtxos(t *testing.T) {
	stub := newTrackerStub(t)
	stub.set("/api/tokens/tok_0/addresses/bc1powner/utxos", `{"code":0,"data":{"trackerBlockHeight":812345,"utxos":[
		{"utxo":{"txId":"aa","outputIndex":1,"script":"5120ff","satoshis":"330"},"txoStateHashes":["h1","h2"],"state":{"address":"bc1powner","amount":"12345678901234567890"}},
		{"utxo":{"txId":"bb","outputIndex":0,"script":"5120ee","satoshis":330},"txoStateHashes":[],"state":{"address":"bc1powner","amount":10}}]}}`)

	set := newUtxoSource().GetTokenUtxos(context.Background(), stub.srv.URL, "tok_0", "bc1powner", 0)
	require.Equal(t, entity.FetchOK, set.Status)
	require.Len(t, set.Utxos, 2)
	assert.EqualValues(t, 812345, set.TrackerBlockHeight)

	u := set.Utxos[0]
	assert.Equal(t, "aa:1", u.Outpoint.String())
	assert.EqualValues(t, 330, u.Satoshis)
	assert.Equal(t, []byte{0x51, 0x20, 0xff}, u.Script)
	assert.Equal(t, "12345678901234567890", u.Amount.String())
	assert.Equal(t, []string{"h1", "h2"}, u.TxoStateHashes)
	assert.Equal(t, "12345678901234567900", set.TotalAmount().String())

	assert.Equal(t, []string{"/api/tokens/tok_0/addresses/bc1powner/utxos?limit=4"}, stub.requests())
}

func TestGetTokenUtxosDegradesToEmpty(t *testing.T) {
	stub := newTrackerStub(t)
	stub.set("/api/tokens/tok_0/addresses/a/utxos", `{"code":5,"msg":"boom"}`)
	stub.set("/api/tokens/tok_0/addresses/b/utxos", `{"code":0,"data":{"utxos":[{"utxo":{"txId":"aa","script":"zz","satoshis":1},"state":{"amount":"1"}}]}}`)
	stub.set("/api/tokens/tok_0/addresses/c/utxos", `{"code":0,"data":{"utxos":[],"trackerBlockHeight":9}}`)

	src := newUtxoSource()
	for _, owner := range []string{"a", "b", "missing"} {
		set := src.GetTokenUtxos(context.Background(), stub.srv.URL, "tok_0", owner, 10)
		assert.Empty(t, set.Utxos, owner)
		assert.NotNil(t, set.Utxos, owner)
		assert.Equal(t, entity.FetchUnavailable, set.Status, owner)
	}

	empty := src.GetTokenUtxos(context.Background(), stub.srv.URL, "tok_0", "c", 10)
	assert.Empty(t, empty.Utxos)
	assert.Equal(t, entity.FetchOK, empty.Status)
}

func TestGetBalance(t *testing.T) {
	stub := newTrackerStub(t)
	stub.set("/api/tokens/tok_0/addresses/ok/balance", `{"code":0,"data":{"confirmed":"9007199254740993","tokenId":"tok_0"}}`)
	stub.set("/api/tokens/tok_0/addresses/bad/balance", `{"code":2,"msg":"no"}`)
	stub.set("/api/tokens/tok_0/addresses/negative/balance", `{"code":0,"data":{"confirmed":"-5","tokenId":"tok_0"}}`)

	info := &entity.TokenMetadata{TokenID: "tok_0", Symbol: "CAT", Decimals: 2}
	src := newUtxoSource()

	bal := src.GetBalance(context.Background(), stub.srv.URL, info, "ok")
	assert.True(t, bal.Available())
	assert.Equal(t, "9007199254740993", bal.Confirmed.String())
	assert.Equal(t, "CAT", bal.Symbol)

	failed := src.GetBalance(context.Background(), stub.srv.URL, info, "bad")
	assert.False(t, failed.Available())
	assert.Zero(t, failed.Confirmed.Sign())
	assert.Equal(t, "tok_0", failed.TokenID)
	assert.Equal(t, "CAT", failed.Symbol)

	negative := src.GetBalance(context.Background(), stub.srv.URL, info, "negative")
	assert.Equal(t, entity.FetchUnavailable, negative.Status)
	assert.Zero(t, negative.Confirmed.Sign())

	none := src.GetBalance(context.Background(), stub.srv.URL, nil, "ok")
	assert.Equal(t, entity.FetchUnavailable, none.Status)
}
