// Package main - Entry point for the rvg-calc API server
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"rvg-calc/api"
	"rvg-calc/internal/config"
	"rvg-calc/internal/logging"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", config.DefaultPath(), "Config file")
	addr := flag.String("addr", "", "Server address (default from config)")
	logLevel := flag.String("log-level", "", "Log level override")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v", err)
	}
	base := config.Default()
	base.Logging.Level = "info"
	cfg, err := config.LoadWithDefaults(*configPath, base)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatal(err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatal(err)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("rvg-calc API server v%s\n", version)
	fmt.Printf("   API: http://localhost%s\n", cfg.Server.Addr)
	fmt.Println()
	if cfg.Calculation.ReducedFees {
		logging.Warn("legal-aid fees are the default for every request")
	}
	logging.Info("starting server",
		zap.String("addr", cfg.Server.Addr),
		zap.String("version", version),
		zap.Duration("cache_ttl", cfg.Server.CacheTTL()),
	)

	server := api.NewServer(version, logging.Named("api"),
		api.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		api.WithResultCache(cfg.Server.CacheTTL()),
		api.WithCalculationDefaults(cfg.Calculation),
	)
	if err := server.Run(ctx, api.ListenOptions{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
	}); err != nil {
		logging.Fatal("server failed", zap.Error(err))
	}
	logging.Info("server stopped")
}
