package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for photofind.
type Config struct {
	LogDir   string         `toml:"log_dir"`
	Database DatabaseConfig `toml:"database"`
	Provider ProviderConfig `toml:"provider"`
	Scanner  ScannerConfig  `toml:"scanner"`
}

// DatabaseConfig represents configuration for the catalog database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ProviderConfig selects and configures the AI provider used for
// captioning, tagging and embeddings.
type ProviderConfig struct {
	Type string `toml:"type"` // "openai" (default) or "gemini"

	// APIKey is optional; when empty the provider-specific environment
	// variable (OPENAI_API_KEY / GEMINI_API_KEY) is consulted instead.
	APIKey string `toml:"api_key,omitempty"`

	CaptionModel   string `toml:"caption_model,omitempty"`
	EmbeddingModel string `toml:"embedding_model,omitempty"`

	// EmbeddingDim overrides the dimension implied by the embedding model.
	// All embeddings in one catalog must share a dimension; switching
	// providers or models invalidates the catalog.
	EmbeddingDim int `toml:"embedding_dim,omitempty"`
}

// ScannerConfig holds image discovery and loading settings.
type ScannerConfig struct {
	// MaxImageSide bounds the longest image side before the image is sent
	// to the provider; larger images are shrunk. Defaults to 1024.
	MaxImageSide int `toml:"max_image_side"`

	// JPEGQuality for the bounded re-encode. Defaults to 85.
	JPEGQuality int `toml:"jpeg_quality"`

	// Ignore patterns applied during the folder walk, relative to the
	// indexed folder. Same matching rules as the shell's filepath.Match.
	Ignore []string `toml:"ignore"`
}

// NewConfig creates a new Config with the provided base directory and defaults.
func NewConfig(baseDir string) *Config {
	return &Config{
		LogDir: filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Provider: ProviderConfig{
			Type: "openai",
		},
		Scanner: ScannerConfig{
			MaxImageSide: 1024,
			JPEGQuality:  85,
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// WriteToFile writes a Config to the specified file path, creating the
// parent directory if needed.
func WriteToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := WriteToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
