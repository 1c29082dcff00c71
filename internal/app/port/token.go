package port

import (
	"context"

	"cat20_wallet/internal/domain/entity"
)

// TrackerClient performs calls against the token tracker API.
type TrackerClient interface {
	// Get fetches {baseURL}{path} and decodes the envelope's data field into out.
	// A non-zero envelope code is reported as an error.
	Get(ctx context.Context, baseURL, path string, query map[string]string, out any) error
}

// TokenDirectory resolves token metadata.
type TokenDirectory interface {
	// GetTokenInfo returns nil when the metadata is unavailable for any reason.
	GetTokenInfo(ctx context.Context, baseURL, tokenID, network string) *entity.TokenMetadata
}

// AccountUtxoSource reads token outputs and balances owned by an address.
type AccountUtxoSource interface {
	// GetTokenUtxos returns an empty set with FetchUnavailable status on any failure.
	GetTokenUtxos(ctx context.Context, baseURL, tokenID, ownerAddress string, limit int) entity.UtxoSet
	// GetBalance returns a zero balance with FetchUnavailable status on any failure.
	GetBalance(ctx context.Context, baseURL string, info *entity.TokenMetadata, ownerAddress string) entity.Balance
}

// TokenSummaryProvider builds the token list shown for an address.
type TokenSummaryProvider interface {
	ListTokens(ctx context.Context, ownerAddress string) []entity.TokenSummary
}
