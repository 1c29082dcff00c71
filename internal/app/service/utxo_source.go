package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"

	"cat20_wallet/internal/app/port"
	"cat20_wallet/internal/domain/entity"
	"cat20_wallet/internal/infrastructure/httpclient"
)

// DefaultUtxoLimit is the number of token outputs requested per lookup.
const DefaultUtxoLimit = 4

type utxoWire struct {
	Utxo struct {
		TxID        string  `json:"txId"`
		OutputIndex uint32  `json:"outputIndex"`
		Script      string  `json:"script"`
		Satoshis    flexInt `json:"satoshis"`
	} `json:"utxo"`
	TxoStateHashes []string `json:"txoStateHashes"`
	State          struct {
		Address string  `json:"address"`
		Amount  flexInt `json:"amount"`
	} `json:"state"`
}

type utxosWire struct {
	Utxos              []utxoWire `json:"utxos"`
	TrackerBlockHeight uint64     `json:"trackerBlockHeight"`
}

type balanceWire struct {
	Confirmed flexInt `json:"confirmed"`
	TokenID   string  `json:"tokenId"`
}

// utxoSourceImpl implements port.AccountUtxoSource.
type utxoSourceImpl struct {
	tracker port.TrackerClient
	logger  port.Logger
}

// NewAccountUtxoSource creates an AccountUtxoSource.
func NewAccountUtxoSource(tracker port.TrackerClient, l port.Logger) port.AccountUtxoSource {
	return &utxoSourceImpl{tracker: tracker, logger: l}
}

// GetTokenUtxos implements port.AccountUtxoSource.
func (s *utxoSourceImpl) GetTokenUtxos(ctx context.Context, baseURL, tokenID, ownerAddress string, limit int) entity.UtxoSet {
	if limit <= 0 {
		limit = DefaultUtxoLimit
	}

	var raw utxosWire
	query := map[string]string{"limit": strconv.Itoa(limit)}
	if err := s.tracker.Get(ctx, baseURL, httpclient.TokenUtxosPath(tokenID, ownerAddress), query, &raw); err != nil {
		s.logger.Warn("Failed to fetch token utxos", "token_id", tokenID, "owner", ownerAddress, "error", err)
		return entity.UtxoSet{Utxos: []entity.TokenUtxo{}, Status: entity.FetchUnavailable}
	}

	utxos := make([]entity.TokenUtxo, 0, len(raw.Utxos))
	for i, u := range raw.Utxos {
		utxo, err := u.toEntity()
		if err != nil {
			s.logger.Warn("Malformed token utxo in tracker response", "token_id", tokenID, "owner", ownerAddress, "index", i, "error", err)
			return entity.UtxoSet{Utxos: []entity.TokenUtxo{}, Status: entity.FetchUnavailable}
		}
		utxos = append(utxos, utxo)
	}

	s.logger.Debug("Fetched token utxos", "token_id", tokenID, "owner", ownerAddress, "count", len(utxos), "tracker_height", raw.TrackerBlockHeight)
	return entity.UtxoSet{Utxos: utxos, TrackerBlockHeight: raw.TrackerBlockHeight, Status: entity.FetchOK}
}

func (u utxoWire) toEntity() (entity.TokenUtxo, error) {
	sats, err := u.Utxo.Satoshis.Int64()
	if err != nil {
		return entity.TokenUtxo{}, fmt.Errorf("satoshis: %w", err)
	}
	script, err := hex.DecodeString(u.Utxo.Script)
	if err != nil {
		return entity.TokenUtxo{}, fmt.Errorf("script: %w", err)
	}
	amount := u.State.Amount.Big()
	if amount == nil || amount.Sign() < 0 {
		return entity.TokenUtxo{}, fmt.Errorf("missing or negative amount")
	}
	return entity.TokenUtxo{
		Outpoint:       entity.Outpoint{TxID: u.Utxo.TxID, Index: u.Utxo.OutputIndex},
		Satoshis:       sats,
		Script:         script,
		OwnerAddress:   u.State.Address,
		Amount:         amount,
		TxoStateHashes: u.TxoStateHashes,
	}, nil
}

// GetBalance implements port.AccountUtxoSource.
func (s *utxoSourceImpl) GetBalance(ctx context.Context, baseURL string, info *entity.TokenMetadata, ownerAddress string) entity.Balance {
	if info == nil {
		return entity.Balance{Confirmed: new(big.Int), Status: entity.FetchUnavailable}
	}
	unavailable := entity.Balance{TokenID: info.TokenID, Symbol: info.Symbol, Confirmed: new(big.Int), Status: entity.FetchUnavailable}

	var raw balanceWire
	if err := s.tracker.Get(ctx, baseURL, httpclient.TokenBalancePath(info.TokenID, ownerAddress), nil, &raw); err != nil {
		s.logger.Warn("Failed to fetch token balance", "token_id", info.TokenID, "owner", ownerAddress, "error", err)
		return unavailable
	}
	confirmed := raw.Confirmed.Big()
	if confirmed == nil || confirmed.Sign() < 0 {
		s.logger.Warn("Tracker balance response has no valid confirmed amount", "token_id", info.TokenID, "owner", ownerAddress)
		return unavailable
	}

	tokenID := raw.TokenID
	if tokenID == "" {
		tokenID = info.TokenID
	}
	return entity.Balance{TokenID: tokenID, Symbol: info.Symbol, Confirmed: confirmed, Status: entity.FetchOK}
}
