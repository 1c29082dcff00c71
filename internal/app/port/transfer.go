package port

import (
	"context"

	"cat20_wallet/internal/domain/entity"
)

// SendParams is the input of a single-recipient token send.
type SendParams struct {
	Network       string
	Signer        PsbtSigner
	MinterAddress string
	TokenUtxos    []entity.TokenUtxo
	Receivers     []entity.TokenReceiver
	ChangeAddress string
	FeeRate       int64
}

// SendResult is returned by a successful send.
type SendResult struct {
	CommitTxID string
	RevealTxID string
}

// TokenSender selects utxos, builds, signs and broadcasts a token transfer.
// A nil result without error is a failed send.
type TokenSender interface {
	SingleSend(ctx context.Context, params SendParams) (*SendResult, error)
}

// TransferOrchestrator validates and submits transfers.
type TransferOrchestrator interface {
	Submit(ctx context.Context, req entity.TransferRequest, info *entity.TokenMetadata, ownerAddress string) (*entity.TransferResult, error)
}
