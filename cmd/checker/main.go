package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"

	"risk_checker/internal/app/port"
	"risk_checker/internal/app/service"
	"risk_checker/internal/infrastructure/aave"
	"risk_checker/internal/infrastructure/configloader"
	"risk_checker/internal/infrastructure/httpclient"
	"risk_checker/internal/infrastructure/restapi"
	"risk_checker/internal/pkg/logger"
	"risk_checker/internal/pkg/metrics"
)

const configPath = "config/config.yml"

func main() {
	cfg, err := configloader.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	zapLogger := newZapLogger(cfg.Logging.Level)
	defer zapLogger.Sync()

	slogLevel := slog.LevelInfo
	if cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}
	slogHandler := slogzap.Option{Level: slogLevel, Logger: zapLogger}.NewZapHandler()
	slog.SetDefault(slog.New(slogHandler))

	logger.Info("Risk checker starting...",
		"network", cfg.Network.Name,
		"chain_id", cfg.Network.ChainID,
		"pool", cfg.Network.PoolAddress)

	appLogger := logger.NewSlogAdapter()

	metrics.MustRegisterMetrics()

	provider, err := aave.NewPoolProvider(cfg, zapLogger)
	if err != nil {
		logger.Fatal("Failed to initialize pool data provider", "error", err)
	}
	logger.Info("Pool data provider initialized.")

	var priceChecker port.PriceCrossChecker
	if cfg.DEXScreener.Enabled {
		priceChecker = httpclient.NewDEXScreenerChecker(cfg, zapLogger)
		logger.Info("Oracle price cross-check enabled.")
	} else {
		logger.Info("Oracle price cross-check disabled, using base confidence only.")
	}

	snapshotService := service.NewSnapshotService(provider, priceChecker, appLogger, cfg)
	logger.Info("SnapshotService initialized.")

	snapshotHandler := restapi.NewSnapshotHandler(snapshotService, appLogger)
	router := restapi.SetupRouter(snapshotHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	logger.Info("Shutdown signal received, stopping HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	} else {
		logger.Info("HTTP server stopped.")
	}

	logger.Info("Risk checker stopped.")
}

func newZapLogger(level string) *zap.Logger {
	var (
		zapLogger *zap.Logger
		err       error
	)
	if level == "debug" {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	return zapLogger
}
