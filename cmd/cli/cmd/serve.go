package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rvg-calc/api"
	"rvg-calc/internal/config"
	"rvg-calc/internal/logging"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the calculation API until interrupted.

Endpoints:
  POST /calculate         full calculation
  POST /fee               single fee lookup
  GET  /positions?q=      catalog search
  GET  /positions/{code}  one position
  GET  /schedules         fee table versions
  GET  /health, /version`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}
		if err := logging.Initialize(cfg.Logging); err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		defer logging.Sync()

		fmt.Printf("rvg-calc API v%s on %s\n", Version, addr)
		server := api.NewServer(Version, logging.Named("api"),
			api.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
			api.WithResultCache(cfg.Server.CacheTTL()),
			api.WithCalculationDefaults(cfg.Calculation),
		)
		if err := server.Run(ctx, api.ListenOptions{
			Addr:         addr,
			ReadTimeout:  cfg.Server.ReadTimeout(),
			WriteTimeout: cfg.Server.WriteTimeout(),
		}); err != nil {
			logging.Error("server failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}
