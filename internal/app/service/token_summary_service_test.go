package service

import (
	"context"
	"math/big"
	"testing"

	"cat20_wallet/internal/domain/entity"
	"cat20_wallet/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTokensKeepsOrderAndMarksFailures(t *testing.T) {
	dir := &fakeDirectory{infos: map[string]*entity.TokenMetadata{
		"tok_a": {TokenID: "tok_a", Symbol: "AAA", Decimals: 2},
		"tok_c": {TokenID: "tok_c", Symbol: "CCC", Decimals: 0},
	}}
	src := &fakeUtxoSource{set: entity.UtxoSet{Status: entity.FetchOK, Utxos: []entity.TokenUtxo{{Amount: big.NewInt(1250)}}}}

	svc := NewTokenSummaryService(dir, src, TokenSummaryConfig{TokenIDs: []string{"tok_a", "tok_b", "tok_c"}, MaxConcurrent: 1}, logger.NewSlogAdapter())
	list := svc.ListTokens(context.Background(), "bc1powner")

	require.Len(t, list, 3)
	assert.Equal(t, "tok_a", list[0].TokenID)
	assert.Equal(t, "12.5", list[0].Formatted)
	assert.Equal(t, entity.FetchOK, list[0].Status)

	assert.Equal(t, "tok_b", list[1].TokenID)
	assert.Equal(t, entity.FetchUnavailable, list[1].Status)
	assert.Zero(t, list[1].Confirmed.Sign())

	assert.Equal(t, "1250", list[2].Formatted)
}

func TestListTokensEmptyConfig(t *testing.T) {
	svc := NewTokenSummaryService(&fakeDirectory{}, &fakeUtxoSource{}, TokenSummaryConfig{}, logger.NewSlogAdapter())
	assert.Empty(t, svc.ListTokens(context.Background(), "x"))
}
