// Package config loads and watches the textvault TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/textvault/textvault/internal/core/domain"
)

// Default file location is ~/.textvault/config.toml.
const (
	DefaultDirName  = ".textvault"
	DefaultFileName = "config.toml"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Storage   StorageConfig   `toml:"storage"`
	Search    SearchConfig    `toml:"search"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	// Addr is the listen address (default ":8600").
	Addr string `toml:"addr"`
}

// EmbeddingConfig selects and configures the embedding capability.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai" (default "ollama").
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's API base URL.
	BaseURL string `toml:"base_url"`

	// APIKey authenticates against providers that need it.
	APIKey string `toml:"api_key"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// Dimensions is the embedding vector size; zero uses the
	// provider's default for the model.
	Dimensions int `toml:"dimensions"`
}

// StorageConfig selects and configures the record store.
type StorageConfig struct {
	// Backend is "sqlite", "chromem" or "memory" (default "sqlite").
	Backend string `toml:"backend"`

	// DataDir holds the sqlite database; empty uses ~/.textvault/data.
	DataDir string `toml:"data_dir"`
}

// SearchConfig holds the retrieval tunables. These are hot-reloadable
// via the config watcher.
type SearchConfig struct {
	// Cutoff is the default minimum similarity score.
	Cutoff float64 `toml:"cutoff"`

	// TopK is the default maximum number of results.
	TopK int `toml:"top_k"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:    ServerConfig{Addr: ":8600"},
		Embedding: EmbeddingConfig{Provider: "ollama"},
		Storage:   StorageConfig{Backend: "sqlite"},
		Search: SearchConfig{
			Cutoff: domain.DefaultCutoff,
			TopK:   domain.DefaultTopK,
		},
	}
}

// DefaultPath returns ~/.textvault/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName, DefaultFileName), nil
}

// Load reads the TOML file at path, layering it over the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline would reject later.
func (c Config) Validate() error {
	switch c.Embedding.Provider {
	case "", "ollama", "openai":
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, c.Embedding.Provider)
	}

	switch c.Storage.Backend {
	case "", "sqlite", "chromem", "memory":
	default:
		return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, c.Storage.Backend)
	}

	if c.Search.Cutoff < -1 || c.Search.Cutoff > 1 {
		return fmt.Errorf("%w: search cutoff must be in [-1, 1], got %g", domain.ErrInvalidInput, c.Search.Cutoff)
	}
	if c.Search.TopK < 0 {
		return fmt.Errorf("%w: search top_k must not be negative, got %d", domain.ErrInvalidInput, c.Search.TopK)
	}
	return nil
}

// Save writes the configuration as TOML, creating the directory if
// necessary.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
