package service

import (
	"context"
	"math/big"

	"cat20_wallet/internal/app/port"
	"cat20_wallet/internal/domain/entity"
	"cat20_wallet/internal/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// TokenSummaryConfig selects the tokens listed for a wallet.
type TokenSummaryConfig struct {
	BaseURL       string
	Network       string
	TokenIDs      []string // primary token first
	MaxConcurrent int
}

// tokenSummaryServiceImpl implements port.TokenSummaryProvider.
type tokenSummaryServiceImpl struct {
	directory port.TokenDirectory
	source    port.AccountUtxoSource
	cfg       TokenSummaryConfig
	logger    port.Logger
}

// NewTokenSummaryService creates a TokenSummaryProvider.
func NewTokenSummaryService(dir port.TokenDirectory, src port.AccountUtxoSource, cfg TokenSummaryConfig, l port.Logger) port.TokenSummaryProvider {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return &tokenSummaryServiceImpl{directory: dir, source: src, cfg: cfg, logger: l}
}

// ListTokens returns one summary per configured token, in configuration order.
// Tokens whose metadata or balance could not be fetched are reported with FetchUnavailable.
func (s *tokenSummaryServiceImpl) ListTokens(ctx context.Context, ownerAddress string) []entity.TokenSummary {
	results := make([]entity.TokenSummary, len(s.cfg.TokenIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)
	for i, tokenID := range s.cfg.TokenIDs {
		g.Go(func() error {
			results[i] = s.summarize(gctx, tokenID, ownerAddress)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *tokenSummaryServiceImpl) summarize(ctx context.Context, tokenID, ownerAddress string) entity.TokenSummary {
	info := s.directory.GetTokenInfo(ctx, s.cfg.BaseURL, tokenID, s.cfg.Network)
	if info == nil {
		return entity.TokenSummary{TokenID: tokenID, Confirmed: new(big.Int), Formatted: "0", Status: entity.FetchUnavailable}
	}

	bal := s.source.GetBalance(ctx, s.cfg.BaseURL, info, ownerAddress)
	return entity.TokenSummary{
		TokenID:   info.TokenID,
		Symbol:    info.Symbol,
		Decimals:  info.Decimals,
		Confirmed: bal.Confirmed,
		Formatted: utils.FormatBigInt(bal.Confirmed, info.Decimals),
		Status:    bal.Status,
	}
}
