// Package config loads and saves the sdbuf service configuration.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Storage backends understood by pkg/storage.
const (
	BackendPebble = "pebble"
	BackendBolt   = "bolt"
	BackendLog    = "log"
)

// Blob renderings for JSON output.
const (
	BlobHex    = "hex"
	BlobBase64 = "base64"
)

// Config represents the sdbuf configuration
type Config struct {
	DataDir  string   `yaml:"data_dir"`
	Port     int      `yaml:"port"`
	Bind     string   `yaml:"bind"`
	Storage  Storage  `yaml:"storage"`
	Codec    Codec    `yaml:"codec"`
	Security Security `yaml:"security"`
	Logging  Logging  `yaml:"logging"`
}

// Storage selects the record archive backend
type Storage struct {
	Backend string `yaml:"backend"`
}

// Codec contains encoder settings and output formatting
type Codec struct {
	MinorVersion uint8  `yaml:"minor_version"`
	BlobEncoding string `yaml:"blob_encoding"`
}

// Security contains security-related configuration
type Security struct {
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Port:    8080,
		Bind:    "127.0.0.1",
		Storage: Storage{
			Backend: BackendPebble,
		},
		Codec: Codec{
			MinorVersion: 0,
			BlobEncoding: BlobHex,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Validate checks enumerated fields
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendPebble, BackendBolt, BackendLog:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Codec.BlobEncoding {
	case BlobHex, BlobBase64:
	default:
		return fmt.Errorf("unknown blob encoding %q", c.Codec.BlobEncoding)
	}
	if c.Codec.MinorVersion > 7 {
		return fmt.Errorf("minor version %d does not fit in 3 bits", c.Codec.MinorVersion)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// RequestLogging reports whether HTTP requests should be logged
func (c *Config) RequestLogging() bool {
	return c.Logging.Level == "debug" || c.Logging.Level == "info"
}

// LoadConfig loads configuration from the specified path. Fields missing
// from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key and saves it
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Security.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./sdbuf.yaml"
	}

	// For Linux/macOS, use ~/.config/sdbuf/config.yaml
	configDir := filepath.Join(homeDir, ".config", "sdbuf")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
