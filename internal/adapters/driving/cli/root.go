// Package cli wires the cobra command tree. Commands talk to the core
// through the driving ports; the driven adapters are constructed here
// from the loaded configuration.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/textvault/textvault/internal/adapters/driven/embedding/ollama"
	"github.com/textvault/textvault/internal/adapters/driven/embedding/openai"
	"github.com/textvault/textvault/internal/adapters/driven/storage/chromem"
	"github.com/textvault/textvault/internal/adapters/driven/storage/memory"
	"github.com/textvault/textvault/internal/adapters/driven/storage/sqlite"
	"github.com/textvault/textvault/internal/config"
	"github.com/textvault/textvault/internal/core/ports/driven"
	"github.com/textvault/textvault/internal/core/ports/driving"
	"github.com/textvault/textvault/internal/core/services"
	"github.com/textvault/textvault/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgPath string
	verbose bool

	// resolvedCfgPath is the path loadConfig actually read, used by
	// the serve command's config watcher.
	resolvedCfgPath string
)

// Services the commands run against. Populated by initServices; tests
// substitute their own implementations.
var (
	cfg              config.Config
	pipelineService  driving.Pipeline
	embeddingService driven.EmbeddingService
	recordStore      driven.RecordStore
)

var rootCmd = &cobra.Command{
	Use:   "textvault",
	Short: "Chunk, embed and search text",
	Long: `textvault turns raw text into searchable embeddings.
It chunks documents, encodes them through a configurable embedding
provider and stores the vectors for similarity search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default ~/.textvault/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() error {
	path := cfgPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	loaded, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded
	resolvedCfgPath = path
	return nil
}

// initServices builds the driven adapters and the pipeline from cfg.
// Already-populated services are left alone.
func initServices() error {
	if embeddingService == nil {
		svc, err := newEmbeddingService(cfg.Embedding)
		if err != nil {
			return err
		}
		embeddingService = svc
	}

	if recordStore == nil {
		store, err := newRecordStore(cfg.Storage)
		if err != nil {
			return err
		}
		recordStore = store
	}

	if pipelineService == nil {
		pipelineService = services.NewPipelineService(embeddingService, recordStore)
	}
	return nil
}

func newEmbeddingService(ec config.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch ec.Provider {
	case "", "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    ec.BaseURL,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
		}), nil
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     ec.APIKey,
			BaseURL:    ec.BaseURL,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", ec.Provider)
	}
}

func newRecordStore(sc config.StorageConfig) (driven.RecordStore, error) {
	switch sc.Backend {
	case "", "sqlite":
		return sqlite.NewRecordStore(sc.DataDir)
	case "chromem":
		return chromem.NewRecordStore()
	case "memory":
		return memory.NewRecordStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
	}
}

func closeServices() {
	if embeddingService != nil {
		if err := embeddingService.Close(); err != nil {
			logger.Warn("closing embedding service: %v", err)
		}
	}
	if recordStore != nil {
		if err := recordStore.Close(); err != nil {
			logger.Warn("closing record store: %v", err)
		}
	}
}
