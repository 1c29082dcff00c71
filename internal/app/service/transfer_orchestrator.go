package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cat20_wallet/internal/app/port"
	"cat20_wallet/internal/domain/entity"
	"cat20_wallet/internal/pkg/metrics"
	"cat20_wallet/internal/pkg/utils"
)

// TransferConfig holds the settings a transfer is submitted with.
type TransferConfig struct {
	BaseURL   string
	Network   string
	UtxoLimit int
	FeeRate   int64 // sat/vB
}

// transferOrchestratorImpl implements port.TransferOrchestrator.
type transferOrchestratorImpl struct {
	utxos  port.AccountUtxoSource
	sender port.TokenSender
	signer port.PsbtSigner
	codec  port.AddressCodec
	cfg    TransferConfig
	logger port.Logger
}

// NewTransferOrchestrator creates a TransferOrchestrator. codec is optional; when set,
// destination and owner addresses are checked against the configured network before any I/O.
func NewTransferOrchestrator(
	utxos port.AccountUtxoSource,
	sender port.TokenSender,
	signer port.PsbtSigner,
	codec port.AddressCodec,
	cfg TransferConfig,
	l port.Logger,
) port.TransferOrchestrator {
	if cfg.FeeRate <= 0 {
		cfg.FeeRate = 1
	}
	if cfg.UtxoLimit <= 0 {
		cfg.UtxoLimit = DefaultUtxoLimit
	}
	return &transferOrchestratorImpl{utxos: utxos, sender: sender, signer: signer, codec: codec, cfg: cfg, logger: l}
}

// Submit implements port.TransferOrchestrator.
func (o *transferOrchestratorImpl) Submit(ctx context.Context, req entity.TransferRequest, info *entity.TokenMetadata, ownerAddress string) (*entity.TransferResult, error) {
	res, err := o.submit(ctx, req, info, ownerAddress)
	metrics.Transfers.WithLabelValues(transferOutcome(err)).Inc()
	return res, err
}

func (o *transferOrchestratorImpl) submit(ctx context.Context, req entity.TransferRequest, info *entity.TokenMetadata, ownerAddress string) (*entity.TransferResult, error) {
	if info == nil {
		return nil, entity.ErrNoTokenInfo
	}

	amount, err := utils.ScaleByDecimals(strings.TrimSpace(req.AmountDecimal), info.Decimals)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", entity.ErrInvalidAmount)
	}

	destination := strings.TrimSpace(req.DestinationAddress)
	if err := o.checkAddress("destination", destination); err != nil {
		return nil, err
	}
	if err := o.checkAddress("owner", ownerAddress); err != nil {
		return nil, err
	}

	set := o.utxos.GetTokenUtxos(ctx, o.cfg.BaseURL, info.TokenID, ownerAddress, o.cfg.UtxoLimit)
	if len(set.Utxos) == 0 {
		if set.Status == entity.FetchUnavailable {
			return nil, fmt.Errorf("%w: tracker unavailable", entity.ErrNoSpendableOutputs)
		}
		return nil, entity.ErrNoSpendableOutputs
	}

	formatted := utils.FormatBigInt(amount, info.Decimals)
	o.logger.Info(fmt.Sprintf("Sending %s %s to %s", formatted, info.Symbol, destination),
		"token_id", info.TokenID, "utxo_count", len(set.Utxos), "fee_rate", o.cfg.FeeRate)

	sent, err := o.sender.SingleSend(ctx, port.SendParams{
		Network:       o.cfg.Network,
		Signer:        o.signer,
		MinterAddress: info.MinterAddress,
		TokenUtxos:    set.Utxos,
		Receivers:     []entity.TokenReceiver{{Address: destination, Amount: amount}},
		ChangeAddress: ownerAddress,
		FeeRate:       o.cfg.FeeRate,
	})
	if err != nil {
		o.logger.Error("Token send failed", "token_id", info.TokenID, "destination", destination, "error", err)
		return nil, fmt.Errorf("%w: %v", entity.ErrSendFailed, err)
	}
	if sent == nil || sent.RevealTxID == "" {
		o.logger.Error("Token send returned no transaction", "token_id", info.TokenID, "destination", destination)
		return nil, entity.ErrSendFailed
	}

	o.logger.Info("Token transfer broadcast", "txid", sent.RevealTxID, "commit_txid", sent.CommitTxID)
	return &entity.TransferResult{
		TransactionID:   sent.RevealTxID,
		Amount:          amount,
		FormattedAmount: formatted,
		Symbol:          info.Symbol,
		Destination:     destination,
	}, nil
}

func (o *transferOrchestratorImpl) checkAddress(role, address string) error {
	if address == "" {
		return fmt.Errorf("%w: %s address is empty", entity.ErrInvalidAddress, role)
	}
	if o.codec == nil {
		return nil
	}
	if _, err := o.codec.AddressToLockingScript(address, o.cfg.Network); err != nil {
		if errors.Is(err, entity.ErrInvalidAddress) {
			return err
		}
		return fmt.Errorf("%w: %s address: %v", entity.ErrInvalidAddress, role, err)
	}
	return nil
}

func transferOutcome(err error) string {
	switch {
	case err == nil:
		return "sent"
	case errors.Is(err, entity.ErrInvalidAmount), errors.Is(err, entity.ErrInvalidAddress):
		return "rejected"
	case errors.Is(err, entity.ErrNoTokenInfo):
		return "no_token_info"
	case errors.Is(err, entity.ErrNoSpendableOutputs):
		return "no_outputs"
	default:
		return "failed"
	}
}
