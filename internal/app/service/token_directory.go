package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"cat20_wallet/internal/app/port"
	"cat20_wallet/internal/domain/entity"
	"cat20_wallet/internal/infrastructure/httpclient"
	"cat20_wallet/internal/pkg/metrics"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// tokenMetaWire is the token description, sent as "info" by newer trackers and "metadata" by older ones.
type tokenMetaWire struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Decimals  flexInt `json:"decimals"`
	Max       flexInt `json:"max"`
	Premine   flexInt `json:"premine"`
	Limit     flexInt `json:"limit"`
	MinterMd5 string  `json:"minterMd5"`
}

type tokenInfoWire struct {
	TokenID     string         `json:"tokenId"`
	GenesisTxid string         `json:"genesisTxid"`
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
	Decimals    *flexInt       `json:"decimals"`
	MinterAddr  string         `json:"minterAddr"`
	TokenAddr   string         `json:"tokenAddr"`
	TokenPubKey string         `json:"tokenPubKey"`
	Info        *tokenMetaWire `json:"info"`
	Metadata    *tokenMetaWire `json:"metadata"`
}

// tokenDirectoryImpl implements port.TokenDirectory.
type tokenDirectoryImpl struct {
	tracker  port.TrackerClient
	codec    port.AddressCodec
	covenant port.CovenantBuilder
	logger   port.Logger
	cache    *cache.Cache
	group    singleflight.Group
}

// NewTokenDirectory creates a TokenDirectory. covenant may be nil, in which case tokens whose
// tracker record lacks tokenAddr cannot be resolved.
func NewTokenDirectory(tracker port.TrackerClient, codec port.AddressCodec, covenant port.CovenantBuilder, l port.Logger) port.TokenDirectory {
	return &tokenDirectoryImpl{
		tracker:  tracker,
		codec:    codec,
		covenant: covenant,
		logger:   l,
		cache:    cache.New(cache.NoExpiration, 0),
	}
}

func cacheKey(baseURL, tokenID string) string {
	return strings.TrimRight(baseURL, "/") + "|" + tokenID
}

// GetTokenInfo implements port.TokenDirectory.
func (d *tokenDirectoryImpl) GetTokenInfo(ctx context.Context, baseURL, tokenID, network string) *entity.TokenMetadata {
	key := cacheKey(baseURL, tokenID)
	if cached, found := d.cache.Get(key); found {
		metrics.TokenInfoCache.WithLabelValues("hit").Inc()
		return cached.(*entity.TokenMetadata)
	}
	metrics.TokenInfoCache.WithLabelValues("miss").Inc()

	v, err, _ := d.group.Do(key, func() (any, error) {
		info, err := d.fetch(ctx, baseURL, tokenID, network)
		if err != nil {
			return nil, err
		}
		d.cache.Set(key, info, cache.NoExpiration)
		return info, nil
	})
	if err != nil {
		if errors.Is(err, httpclient.ErrNoData) {
			d.logger.Info("Token not known to tracker", "token_id", tokenID, "base_url", baseURL)
		} else {
			d.logger.Warn("Failed to resolve token info", "token_id", tokenID, "base_url", baseURL, "error", err)
		}
		return nil
	}
	return v.(*entity.TokenMetadata)
}

func (d *tokenDirectoryImpl) fetch(ctx context.Context, baseURL, tokenID, network string) (*entity.TokenMetadata, error) {
	var raw tokenInfoWire
	if err := d.tracker.Get(ctx, baseURL, httpclient.TokenPath(tokenID), nil, &raw); err != nil {
		return nil, err
	}

	info, err := normalizeTokenInfo(raw, tokenID)
	if err != nil {
		return nil, err
	}

	if info.TokenAddress == "" {
		addr, err := d.deriveTokenAddress(info.MinterAddress, network)
		if err != nil {
			return nil, fmt.Errorf("derive token address: %w", err)
		}
		info.TokenAddress = addr
		info.TokenAddressDerived = true
		d.logger.Debug("Derived token address from minter", "token_id", tokenID, "token_addr", addr)
	}
	return info, nil
}

// normalizeTokenInfo folds the info and metadata shapes into one TokenMetadata.
func normalizeTokenInfo(raw tokenInfoWire, requestedID string) (*entity.TokenMetadata, error) {
	meta := raw.Info
	if meta == nil {
		meta = raw.Metadata
	}
	if meta == nil {
		meta = &tokenMetaWire{Name: raw.Name, Symbol: raw.Symbol}
		if raw.Decimals != nil {
			meta.Decimals = *raw.Decimals
		}
	}

	decimals := meta.Decimals.Big()
	if decimals == nil {
		return nil, fmt.Errorf("decimals missing")
	}
	if decimals.Sign() < 0 || decimals.Cmp(big.NewInt(255)) > 0 {
		return nil, fmt.Errorf("decimals %s out of range", decimals)
	}

	tokenID := raw.TokenID
	if tokenID == "" {
		tokenID = requestedID
	}

	return &entity.TokenMetadata{
		TokenID:       tokenID,
		GenesisTxid:   raw.GenesisTxid,
		Name:          meta.Name,
		Symbol:        meta.Symbol,
		Decimals:      uint8(decimals.Uint64()),
		MinterAddress: raw.MinterAddr,
		TokenAddress:  raw.TokenAddr,
		TokenPubKey:   raw.TokenPubKey,
		MinterMd5:     meta.MinterMd5,
		Max:           meta.Max.Big(),
		Premine:       meta.Premine.Big(),
		Limit:         meta.Limit.Big(),
	}, nil
}

// deriveTokenAddress maps minter address -> minter script -> token covenant script -> address.
func (d *tokenDirectoryImpl) deriveTokenAddress(minterAddr, network string) (string, error) {
	if minterAddr == "" {
		return "", fmt.Errorf("tracker record has neither tokenAddr nor minterAddr")
	}
	if d.covenant == nil || d.codec == nil {
		return "", fmt.Errorf("covenant builder not configured")
	}

	minterScript, err := d.codec.AddressToLockingScript(minterAddr, network)
	if err != nil {
		return "", err
	}
	tokenScript, err := d.covenant.TokenLockingScript(minterScript)
	if err != nil {
		return "", err
	}
	return d.codec.LockingScriptToAddress(tokenScript, network)
}
