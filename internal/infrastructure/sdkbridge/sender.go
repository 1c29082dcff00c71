// Package sdkbridge delegates CAT20 transfer construction and broadcast to the protocol SDK
// sidecar. The sidecar selects inputs and builds the PSBTs; signing stays with the wallet.
package sdkbridge

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"cat20_wallet/internal/app/port"
	"cat20_wallet/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BridgeError is a non-2xx answer from the sidecar.
type BridgeError struct {
	Status  int
	Message string
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("sdk bridge status %d: %s", e.Status, e.Message)
}

type tokenUtxoWire struct {
	TxID           string   `json:"txId"`
	OutputIndex    uint32   `json:"outputIndex"`
	Script         string   `json:"script"`
	Satoshis       int64    `json:"satoshis"`
	OwnerAddress   string   `json:"ownerAddr"`
	Amount         string   `json:"amount"`
	TxoStateHashes []string `json:"txoStateHashes"`
}

type receiverWire struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type buildRequest struct {
	Network       string               `json:"network"`
	MinterAddress string               `json:"minterAddr"`
	TokenUtxos    []tokenUtxoWire      `json:"tokenUtxos"`
	FeeUtxos      []entity.BitcoinUtxo `json:"feeUtxos"`
	Receivers     []receiverWire       `json:"receivers"`
	ChangeAddress string               `json:"changeAddress"`
	FeeRate       int64                `json:"feeRate"`
}

type buildResponse struct {
	Psbts       []string               `json:"psbts"`
	SignOptions []port.SignPsbtOptions `json:"signOptions"`
}

type broadcastRequest struct {
	Network string   `json:"network"`
	Psbts   []string `json:"psbts"`
}

type broadcastResponse struct {
	CommitTxID string `json:"commitTxId"`
	RevealTxID string `json:"revealTxId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// utxoProvider is implemented by signers that can also supply fee outputs.
type utxoProvider interface {
	GetBitcoinUtxos(ctx context.Context) ([]entity.BitcoinUtxo, error)
}

// Sender implements port.TokenSender.
type Sender struct {
	baseURL string
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewSender creates a Sender for the sidecar at baseURL.
func NewSender(baseURL string, timeout time.Duration, logger *zap.Logger) *Sender {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Sender{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &fasthttp.Client{Name: "cat20-wallet"},
		timeout: timeout,
		logger:  logger.Named("SDKBridge"),
	}
}

// SingleSend builds the transfer, has the signer sign every PSBT in one prompt and broadcasts.
func (s *Sender) SingleSend(ctx context.Context, params port.SendParams) (*port.SendResult, error) {
	if params.Signer == nil {
		return nil, fmt.Errorf("no signer")
	}

	var feeUtxos []entity.BitcoinUtxo
	if p, ok := params.Signer.(utxoProvider); ok {
		utxos, err := p.GetBitcoinUtxos(ctx)
		if err != nil {
			return nil, fmt.Errorf("fee utxos: %w", err)
		}
		feeUtxos = utxos
	}

	req := buildRequest{
		Network:       params.Network,
		MinterAddress: params.MinterAddress,
		TokenUtxos:    make([]tokenUtxoWire, 0, len(params.TokenUtxos)),
		FeeUtxos:      feeUtxos,
		Receivers:     make([]receiverWire, 0, len(params.Receivers)),
		ChangeAddress: params.ChangeAddress,
		FeeRate:       params.FeeRate,
	}
	for _, u := range params.TokenUtxos {
		req.TokenUtxos = append(req.TokenUtxos, tokenUtxoWire{
			TxID:           u.Outpoint.TxID,
			OutputIndex:    u.Outpoint.Index,
			Script:         hex.EncodeToString(u.Script),
			Satoshis:       u.Satoshis,
			OwnerAddress:   u.OwnerAddress,
			Amount:         u.Amount.String(),
			TxoStateHashes: u.TxoStateHashes,
		})
	}
	for _, r := range params.Receivers {
		req.Receivers = append(req.Receivers, receiverWire{Address: r.Address, Amount: r.Amount.String()})
	}

	var built buildResponse
	if err := s.post(ctx, "/v1/transfers/build", req, &built); err != nil {
		return nil, fmt.Errorf("build transfer: %w", err)
	}
	if len(built.Psbts) == 0 {
		return nil, fmt.Errorf("build transfer: sidecar returned no psbts")
	}
	s.logger.Debug("Transfer built", zap.Int("psbts", len(built.Psbts)), zap.Int("fee_utxos", len(feeUtxos)))

	signed, err := params.Signer.SignPsbts(ctx, built.Psbts, built.SignOptions)
	if err != nil {
		return nil, fmt.Errorf("sign psbts: %w", err)
	}

	var sent broadcastResponse
	if err := s.post(ctx, "/v1/transfers/broadcast", broadcastRequest{Network: params.Network, Psbts: signed}, &sent); err != nil {
		return nil, fmt.Errorf("broadcast: %w", err)
	}
	if sent.RevealTxID == "" {
		return nil, nil
	}

	s.logger.Info("Transfer broadcast", zap.String("commit_txid", sent.CommitTxID), zap.String("reveal_txid", sent.RevealTxID))
	return &port.SendResult{CommitTxID: sent.CommitTxID, RevealTxID: sent.RevealTxID}, nil
}

func (s *Sender) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(s.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		err = s.client.DoDeadline(req, resp, deadline)
	} else {
		err = s.client.DoTimeout(req, resp, s.timeout)
	}
	if err != nil {
		s.logger.Error("SDK bridge request failed", zap.String("path", path), zap.Error(err))
		return err
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		var e errorResponse
		msg := string(resp.Body())
		if json.Unmarshal(resp.Body(), &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &BridgeError{Status: code, Message: msg}
	}
	return json.Unmarshal(resp.Body(), out)
}
