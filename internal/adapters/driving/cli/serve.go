package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/textvault/textvault/internal/adapters/driving/api"
	"github.com/textvault/textvault/internal/config"
	"github.com/textvault/textvault/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the embedding service HTTP API.
Search defaults (cutoff, top_k) are reloaded from the config file
while the server runs; edits take effect without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	server := api.NewServer(pipelineService, embeddingService, cfg.Search.Cutoff, cfg.Search.TopK)

	watcher, err := config.Watch(resolvedCfgPath, func(next config.Config) {
		server.SetSearchDefaults(next.Search.Cutoff, next.Search.TopK)
		logger.Info("config reloaded: cutoff=%.2f top_k=%d", next.Search.Cutoff, next.Search.TopK)
	})
	if err != nil {
		logger.Warn("config watching disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if err := server.Start(addr); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	cmd.Printf("textvault listening on %s (model %s)\n", server.Addr(), embeddingService.ModelName())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	cmd.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
