package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cat20_wallet/internal/infrastructure/restapi"
	"cat20_wallet/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the wallet HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return serve(cmd.Context(), a)
		},
	}
}

func serve(parent context.Context, a *app) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := a.session()
	if a.wallet != nil {
		if err := session.Start(ctx); err != nil {
			// The bridge may come up later; the poll loop keeps retrying.
			logger.Warn("Initial wallet refresh failed", "error", err)
		}
	} else {
		logger.Warn("Wallet bridge not configured, session stays disconnected")
	}
	defer session.Close()

	if a.cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := restapi.NewWalletHandler(session, a.directory, a.utxos, a.transfers(), restapi.HandlerConfig{
		TrackerURL: a.cfg.Tracker.BaseURL,
		TokenID:    a.cfg.Tracker.TokenID,
		Network:    a.cfg.Network.Identifier,
		UtxoLimit:  a.cfg.Tracker.UtxoLimit,
	}, a.zap)
	router := restapi.SetupRouter(handler, a.cfg.Server.CORSAllowedOrigins, a.zap)

	srv := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.zap.Info(fmt.Sprintf("Server starting on port %s", a.cfg.Server.Port),
			zap.String("network", a.cfg.Network.Identifier), zap.String("token_id", a.cfg.Tracker.TokenID))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.zap.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.zap.Info("Server exiting")
	return nil
}
