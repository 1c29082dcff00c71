package service

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"cat20_wallet/internal/app/port"
	"cat20_wallet/internal/domain/entity"
	"cat20_wallet/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catInfo = &entity.TokenMetadata{TokenID: "tok_0", Symbol: "CAT", Decimals: 2, MinterAddress: "bc1pminter"}

func spendable() entity.UtxoSet {
	return entity.UtxoSet{Status: entity.FetchOK, Utxos: []entity.TokenUtxo{
		{Outpoint: entity.Outpoint{TxID: "aa", Index: 1}, Satoshis: 330, Amount: big.NewInt(1000), OwnerAddress: "bc1powner"},
	}}
}

func newOrchestrator(src *fakeUtxoSource, sender *fakeSender, codec port.AddressCodec) port.TransferOrchestrator {
	return NewTransferOrchestrator(src, sender, newFakeWallet(), codec,
		TransferConfig{BaseURL: "http://tracker", Network: "fractal-mainnet"}, logger.NewSlogAdapter())
}

func TestSubmitSuccess(t *testing.T) {
	src := &fakeUtxoSource{set: spendable()}
	sender := &fakeSender{result: &port.SendResult{CommitTxID: "c1", RevealTxID: "r1"}}
	o := newOrchestrator(src, sender, fakeCodec{})

	res, err := o.Submit(context.Background(), entity.TransferRequest{DestinationAddress: " bc1pdest ", AmountDecimal: "1.23"}, catInfo, "bc1powner")
	require.NoError(t, err)
	assert.Equal(t, "r1", res.TransactionID)
	assert.Equal(t, "123", res.Amount.String())
	assert.Equal(t, "1.23", res.FormattedAmount)
	assert.Equal(t, "CAT", res.Symbol)
	assert.Equal(t, "bc1pdest", res.Destination)

	require.Len(t, sender.calls, 1)
	call := sender.calls[0]
	assert.Equal(t, "bc1pminter", call.MinterAddress)
	assert.Equal(t, "bc1powner", call.ChangeAddress)
	assert.EqualValues(t, 1, call.FeeRate)
	assert.Equal(t, "fractal-mainnet", call.Network)
	assert.NotNil(t, call.Signer)
	assert.Len(t, call.TokenUtxos, 1)
	require.Len(t, call.Receivers, 1)
	assert.Equal(t, "bc1pdest", call.Receivers[0].Address)
	assert.Equal(t, "123", call.Receivers[0].Amount.String())
	assert.Equal(t, DefaultUtxoLimit, src.limit)
}

func TestSubmitNoTokenInfo(t *testing.T) {
	src := &fakeUtxoSource{set: spendable()}
	sender := &fakeSender{}
	_, err := newOrchestrator(src, sender, nil).Submit(context.Background(), entity.TransferRequest{DestinationAddress: "bc1pdest", AmountDecimal: "1"}, nil, "bc1powner")
	assert.ErrorIs(t, err, entity.ErrNoTokenInfo)
	assert.Zero(t, src.calls)
	assert.Empty(t, sender.calls)
}

func TestSubmitInvalidAmount(t *testing.T) {
	for _, amount := range []string{"1.234", "", "-1", "abc", "0", "0.00"} {
		src := &fakeUtxoSource{set: spendable()}
		sender := &fakeSender{}
		_, err := newOrchestrator(src, sender, nil).Submit(context.Background(), entity.TransferRequest{DestinationAddress: "bc1pdest", AmountDecimal: amount}, catInfo, "bc1powner")
		assert.ErrorIs(t, err, entity.ErrInvalidAmount, amount)
		assert.Zero(t, src.calls, amount)
		assert.Empty(t, sender.calls, amount)
	}
}

func TestSubmitInvalidAddress(t *testing.T) {
	src := &fakeUtxoSource{set: spendable()}
	sender := &fakeSender{}
	o := newOrchestrator(src, sender, fakeCodec{})

	_, err := o.Submit(context.Background(), entity.TransferRequest{DestinationAddress: "  ", AmountDecimal: "1"}, catInfo, "bc1powner")
	assert.ErrorIs(t, err, entity.ErrInvalidAddress)
	_, err = o.Submit(context.Background(), entity.TransferRequest{DestinationAddress: "tb1qwrong", AmountDecimal: "1"}, catInfo, "bc1powner")
	assert.ErrorIs(t, err, entity.ErrInvalidAddress)
	_, err = o.Submit(context.Background(), entity.TransferRequest{DestinationAddress: "bc1pdest", AmountDecimal: "1"}, catInfo, "")
	assert.ErrorIs(t, err, entity.ErrInvalidAddress)
	assert.Zero(t, src.calls)
	assert.Empty(t, sender.calls)
}

func TestSubmitEmptyUtxosMakesNoSendCall(t *testing.T) {
	for _, set := range []entity.UtxoSet{
		{Utxos: []entity.TokenUtxo{}, Status: entity.FetchOK},
		{Utxos: []entity.TokenUtxo{}, Status: entity.FetchUnavailable},
	} {
		src := &fakeUtxoSource{set: set}
		sender := &fakeSender{result: &port.SendResult{RevealTxID: "r"}}
		_, err := newOrchestrator(src, sender, nil).Submit(context.Background(), entity.TransferRequest{DestinationAddress: "bc1pdest", AmountDecimal: "1"}, catInfo, "bc1powner")
		assert.ErrorIs(t, err, entity.ErrNoSpendableOutputs)
		assert.Equal(t, 1, src.calls)
		assert.Empty(t, sender.calls)
	}
}

func TestSubmitSendFailures(t *testing.T) {
	for name, sender := range map[string]*fakeSender{
		"error":      {err: errors.New("broadcast rejected: insufficient fee")},
		"nil result": {},
		"no txid":    {result: &port.SendResult{CommitTxID: "c"}},
	} {
		_, err := newOrchestrator(&fakeUtxoSource{set: spendable()}, sender, nil).Submit(context.Background(), entity.TransferRequest{DestinationAddress: "bc1pdest", AmountDecimal: "1"}, catInfo, "bc1powner")
		assert.ErrorIs(t, err, entity.ErrSendFailed, name)
		assert.Len(t, sender.calls, 1, name)
	}
}

func TestTransferOutcome(t *testing.T) {
	assert.Equal(t, "sent", transferOutcome(nil))
	assert.Equal(t, "rejected", transferOutcome(entity.ErrInvalidAmount))
	assert.Equal(t, "no_outputs", transferOutcome(entity.ErrNoSpendableOutputs))
	assert.Equal(t, "failed", transferOutcome(entity.ErrSendFailed))
}
