package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server"
	"github.com/dmitrijs2005/userservice/internal/server/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()
	cfg := config.LoadConfig()

	zl, err := logging.NewProductionZap(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	logger := logging.NewZapLogger(zl)
	defer func() { _ = logger.Sync() }()

	logger.Info(ctx, "starting user service",
		"http", cfg.HTTPAddr,
		"grpc_health", cfg.GRPCAddr,
		"store", storeKind(cfg.DatabaseDSN),
	)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		return 1
	}

	app.Run(ctx)
	return 0
}

func storeKind(dsn string) string {
	if dsn == "" {
		return "memory"
	}
	return "postgres"
}
