package restapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cat20_wallet/internal/app/port"
	"cat20_wallet/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait / 2
)

// HandlerConfig is the part of the configuration the handlers read.
type HandlerConfig struct {
	TrackerURL string
	TokenID    string
	Network    string
	UtxoLimit  int
}

// WalletHandler serves the token, wallet and transfer endpoints.
type WalletHandler struct {
	session   port.WalletSession
	directory port.TokenDirectory
	utxos     port.AccountUtxoSource
	transfers port.TransferOrchestrator
	cfg       HandlerConfig
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(
	session port.WalletSession,
	directory port.TokenDirectory,
	utxos port.AccountUtxoSource,
	transfers port.TransferOrchestrator,
	cfg HandlerConfig,
	logger *zap.Logger,
) *WalletHandler {
	return &WalletHandler{
		session:   session,
		directory: directory,
		utxos:     utxos,
		transfers: transfers,
		cfg:       cfg,
		logger:    logger.Named("WalletHandler"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// statusFor maps domain failures onto HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, entity.ErrInvalidAddress):
		return http.StatusBadRequest, "invalid_address"
	case errors.Is(err, entity.ErrNoTokenInfo):
		return http.StatusServiceUnavailable, "no_token_info"
	case errors.Is(err, entity.ErrNetworkUnavailable):
		return http.StatusServiceUnavailable, "wallet_unavailable"
	case errors.Is(err, entity.ErrNoSpendableOutputs):
		return http.StatusConflict, "no_spendable_outputs"
	case errors.Is(err, entity.ErrSendFailed):
		return http.StatusBadGateway, "send_failed"
	default:
		return http.StatusBadGateway, "upstream_error"
	}
}

func (h *WalletHandler) fail(c *gin.Context, err error, address string) {
	status, kind := statusFor(err)
	c.JSON(status, APIError{Error: entity.ServiceError{
		Kind:    kind,
		TokenID: h.cfg.TokenID,
		Address: address,
		Message: err.Error(),
	}})
}

func (h *WalletHandler) tokenInfo(c *gin.Context) *entity.TokenMetadata {
	return h.directory.GetTokenInfo(c.Request.Context(), h.cfg.TrackerURL, h.cfg.TokenID, h.cfg.Network)
}

// address returns the ?address= query value or the session address.
func (h *WalletHandler) address(c *gin.Context) string {
	if a := strings.TrimSpace(c.Query("address")); a != "" {
		return a
	}
	return h.session.Snapshot().Address
}

// GetToken handles GET /token.
func (h *WalletHandler) GetToken(c *gin.Context) {
	info := h.tokenInfo(c)
	if info == nil {
		h.fail(c, entity.ErrNoTokenInfo, "")
		return
	}
	c.JSON(http.StatusOK, ToTokenResponse(info, h.cfg.Network))
}

// GetWallet handles GET /wallet.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	c.JSON(http.StatusOK, ToWalletResponse(h.session.Snapshot()))
}

// Connect handles POST /wallet/connect.
func (h *WalletHandler) Connect(c *gin.Context) {
	st, err := h.session.Connect(c.Request.Context())
	if err != nil {
		h.logger.Warn("Wallet connect failed", zap.Error(err))
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, ToWalletResponse(st))
}

// Disconnect handles POST /wallet/disconnect.
func (h *WalletHandler) Disconnect(c *gin.Context) {
	c.JSON(http.StatusOK, ToWalletResponse(h.session.Disconnect()))
}

// SetAddress handles PUT /wallet/address. The write is optimistic: the next refresh replaces it.
func (h *WalletHandler) SetAddress(c *gin.Context) {
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.Join(entity.ErrInvalidAddress, err), "")
		return
	}
	address := strings.TrimSpace(req.Address)
	h.session.SetAddress(address)
	h.session.SetConnected(address != "")
	c.JSON(http.StatusOK, ToWalletResponse(h.session.Snapshot()))
}

// GetBalance handles GET /balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	address := h.address(c)
	if address == "" {
		h.fail(c, errors.Join(entity.ErrInvalidAddress, errors.New("no address given and wallet not connected")), "")
		return
	}
	info := h.tokenInfo(c)
	if info == nil {
		h.fail(c, entity.ErrNoTokenInfo, address)
		return
	}
	bal := h.utxos.GetBalance(c.Request.Context(), h.cfg.TrackerURL, info, address)
	c.JSON(http.StatusOK, ToBalanceResponse(address, info.Decimals, bal))
}

// GetUtxos handles GET /utxos.
func (h *WalletHandler) GetUtxos(c *gin.Context) {
	address := h.address(c)
	if address == "" {
		h.fail(c, errors.Join(entity.ErrInvalidAddress, errors.New("no address given and wallet not connected")), "")
		return
	}
	limit := h.cfg.UtxoLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			c.JSON(http.StatusBadRequest, APIError{Error: entity.ServiceError{Kind: "invalid_limit", Message: "limit must be between 1 and 100"}})
			return
		}
		limit = n
	}
	set := h.utxos.GetTokenUtxos(c.Request.Context(), h.cfg.TrackerURL, h.cfg.TokenID, address, limit)
	c.JSON(http.StatusOK, ToUtxoSetResponse(address, set))
}

// PostTransfer handles POST /transfers from the connected wallet.
func (h *WalletHandler) PostTransfer(c *gin.Context) {
	var req entity.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.Join(entity.ErrInvalidAmount, err), "")
		return
	}

	owner := h.session.Snapshot().Address
	res, err := h.transfers.Submit(c.Request.Context(), req, h.tokenInfo(c), owner)
	if err != nil {
		h.logger.Warn("Transfer rejected", zap.String("owner", owner), zap.String("destination", req.DestinationAddress), zap.Error(err))
		h.fail(c, err, owner)
		return
	}
	c.JSON(http.StatusOK, TransferResponse{
		TxID:        res.TransactionID,
		Amount:      res.FormattedAmount,
		Symbol:      res.Symbol,
		Destination: res.Destination,
	})
}

// StreamWallet handles GET /wallet/stream: every session change is pushed as a WalletResponse.
func (h *WalletHandler) StreamWallet(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := h.session.Subscribe()
	defer cancel()

	// The server read deadline survives the upgrade; pongs move it forward.
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case st, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ToWalletResponse(st)); err != nil {
				h.logger.Debug("Websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
