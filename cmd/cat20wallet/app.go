package main

import (
	"fmt"

	"cat20_wallet/internal/app/port"
	"cat20_wallet/internal/app/service"
	"cat20_wallet/internal/infrastructure/addresscodec"
	"cat20_wallet/internal/infrastructure/configloader"
	"cat20_wallet/internal/infrastructure/covenant"
	"cat20_wallet/internal/infrastructure/httpclient"
	networkdefinition "cat20_wallet/internal/infrastructure/network/definition"
	"cat20_wallet/internal/infrastructure/sdkbridge"
	"cat20_wallet/internal/infrastructure/tokenloader"
	"cat20_wallet/internal/infrastructure/walletbridge"
	"cat20_wallet/internal/pkg/logger"
	"cat20_wallet/internal/pkg/metrics"

	"go.uber.org/zap"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg       *configloader.Config
	zap       *zap.Logger
	network   port.NetworkDefinitionProvider
	codec     *addresscodec.Codec
	directory port.TokenDirectory
	utxos     port.AccountUtxoSource
	tokens    port.TokenSummaryProvider
	wallet    *walletbridge.Client // nil without a wallet bridge
}

func loadConfig() (*configloader.Config, error) {
	path := configPath
	if path == "" {
		path = configloader.PathFromEnv()
	}
	return configloader.Load(path)
}

// newApp loads the configuration and wires the read side. The wallet bridge is
// connected only when its URL is configured.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger.InitSlog(cfg.Logging.Level)
	metrics.MustRegisterMetrics()
	zapLogger := logger.Zap("")

	netProvider := networkdefinition.NewNetworkDefinitionProvider(logger.NewComponentAdapter("network"), cfg.Network.Enabled)
	if _, ok := netProvider.GetNetworkDefinitionByName(cfg.Network.Identifier); !ok {
		return nil, fmt.Errorf("network %q is not enabled", cfg.Network.Identifier)
	}

	tracker := httpclient.NewTrackerClient(httpclient.TrackerClientConfig{
		Timeout:   cfg.TrackerTimeout(),
		RateLimit: cfg.Tracker.RateLimit,
		Burst:     cfg.Tracker.Burst,
	}, zapLogger)

	codec := addresscodec.New()

	var directory port.TokenDirectory
	if cfg.Covenant.ArtifactsDir != "" {
		artifacts, err := covenant.LoadArtifacts(cfg.Covenant.ArtifactsDir)
		if err != nil {
			return nil, fmt.Errorf("load covenant artifacts: %w", err)
		}
		builder, err := covenant.NewBuilder(cfg.Covenant.IssuerPubKey, artifacts)
		if err != nil {
			return nil, fmt.Errorf("covenant builder: %w", err)
		}
		directory = service.NewTokenDirectory(tracker, codec, builder, logger.NewComponentAdapter("token_directory"))
	} else {
		logger.Info("Covenant artifacts not configured, token addresses are taken from the tracker only")
		directory = service.NewTokenDirectory(tracker, codec, nil, logger.NewComponentAdapter("token_directory"))
	}

	var listed []string
	if cfg.Tracker.TokenListDir != "" {
		listed, err = tokenloader.NewTokenLoader(cfg.Tracker.TokenListDir, logger.NewComponentAdapter("token_list")).TokenIDs(cfg.Network.Identifier)
		if err != nil {
			return nil, err
		}
	}

	utxos := service.NewAccountUtxoSource(tracker, logger.NewComponentAdapter("utxo_source"))
	tokens := service.NewTokenSummaryService(directory, utxos, service.TokenSummaryConfig{
		BaseURL:       cfg.Tracker.BaseURL,
		Network:       cfg.Network.Identifier,
		TokenIDs:      cfg.TokenIDs(listed...),
		MaxConcurrent: cfg.Tracker.MaxConcurrentRequests,
	}, logger.NewComponentAdapter("token_summary"))

	a := &app{
		cfg:       cfg,
		zap:       zapLogger,
		network:   netProvider,
		codec:     codec,
		directory: directory,
		utxos:     utxos,
		tokens:    tokens,
	}
	if cfg.Wallet.BridgeURL != "" {
		a.wallet = walletbridge.NewClient(cfg.Wallet.BridgeURL, zapLogger,
			walletbridge.WithTimeout(cfg.WalletTimeout()),
			walletbridge.WithWatchInterval(cfg.WatchInterval()),
		)
	}
	return a, nil
}

// session returns the wallet session. Without a bridge it stays Disconnected.
func (a *app) session() port.WalletSession {
	cfg := service.WalletSessionConfig{
		PollInterval:   a.cfg.PollInterval(),
		RequestTimeout: a.cfg.WalletTimeout(),
	}
	if a.wallet == nil {
		return service.NewWalletSession(nil, a.tokens, cfg, logger.NewComponentAdapter("wallet_session"))
	}
	return service.NewWalletSession(a.wallet, a.tokens, cfg, logger.NewComponentAdapter("wallet_session"))
}

// transfers returns the orchestrator. Without a wallet bridge there is no signer
// and every transfer fails before reaching the SDK.
func (a *app) transfers() port.TransferOrchestrator {
	sender := sdkbridge.NewSender(a.cfg.SDK.BridgeURL, a.cfg.SDKTimeout(), a.zap)
	cfg := service.TransferConfig{
		BaseURL:   a.cfg.Tracker.BaseURL,
		Network:   a.cfg.Network.Identifier,
		UtxoLimit: a.cfg.Tracker.UtxoLimit,
		FeeRate:   a.cfg.SDK.FeeRate,
	}
	if a.wallet == nil {
		return service.NewTransferOrchestrator(a.utxos, sender, nil, a.codec, cfg, logger.NewComponentAdapter("transfer"))
	}
	return service.NewTransferOrchestrator(a.utxos, sender, a.wallet, a.codec, cfg, logger.NewComponentAdapter("transfer"))
}

func (a *app) close() {
	if a.wallet != nil {
		a.wallet.Close()
	}
}
