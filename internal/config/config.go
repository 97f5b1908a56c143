package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the c2pa-go tool configuration.
type Config struct {
	// TrustStore configures the trust-anchor and revocation database.
	TrustStore TrustStoreConfig `yaml:"trust_store"`

	// Claims configures the manifest/claim model used when signing.
	Claims ClaimsConfig `yaml:"claims"`

	// Signing configures the default signing key and algorithm.
	Signing SigningConfig `yaml:"signing"`

	// Timestamp configures the RFC3161 timestamp authority used during signing.
	Timestamp TimestampConfig `yaml:"timestamp"`

	// Server holds HTTP host/port settings. They are loaded, validated and
	// saved with the rest of the config; no command in this module starts
	// a server.
	Server ServerConfig `yaml:"server"`
}

// TrustStoreConfig represents trust-anchor database configuration.
type TrustStoreConfig struct {
	Path      string `yaml:"path"`
	EnableWAL bool   `yaml:"enable_wal"`
}

// ClaimsConfig represents claim-generation defaults.
type ClaimsConfig struct {
	Dialect               string `yaml:"dialect"` // "c2pa.claim" or "c2pa.claim.v2"
	DefaultHashAlgorithm   string `yaml:"default_hash_algorithm"`
	ClaimGenerator         string `yaml:"claim_generator"`
}

// SigningConfig represents signing key configuration.
type SigningConfig struct {
	PrivateKey       string `yaml:"private_key"` // Path to private key (PEM)
	Certificate      string `yaml:"certificate"` // Path to signer certificate chain (PEM)
	DefaultAlgorithm string `yaml:"default_algorithm"`
}

// TimestampConfig represents RFC3161 timestamp authority configuration.
type TimestampConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// ServerConfig represents HTTP host/port settings; nothing in this module
// listens on them.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.TrustStore.Path == "" {
		return fmt.Errorf("trust store path is required")
	}

	switch c.Claims.Dialect {
	case "", "c2pa.claim", "c2pa.claim.v2":
	default:
		return fmt.Errorf("unsupported claim dialect: %s", c.Claims.Dialect)
	}

	if c.Claims.DefaultHashAlgorithm == "" {
		return fmt.Errorf("claims default hash algorithm is required")
	}

	if c.Signing.DefaultAlgorithm == "" {
		return fmt.Errorf("signing default algorithm is required")
	}

	if c.Timestamp.Enabled && c.Timestamp.Endpoint == "" {
		return fmt.Errorf("timestamp endpoint is required when timestamping is enabled")
	}

	if c.Server.Port != 0 && (c.Server.Port < 0 || c.Server.Port > 65535) {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	return nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		TrustStore: TrustStoreConfig{
			Path:      "./demo/trust.db",
			EnableWAL: true,
		},
		Claims: ClaimsConfig{
			Dialect:              "c2pa.claim",
			DefaultHashAlgorithm: "sha256",
			ClaimGenerator:       "c2pa-go/0.1",
		},
		Signing: SigningConfig{
			PrivateKey:       "./demo/signer.key.pem",
			Certificate:      "./demo/signer.cert.pem",
			DefaultAlgorithm: "ES256",
		},
		Timestamp: TimestampConfig{
			Enabled:  false,
			Endpoint: "",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8943,
		},
	}
}

// SaveConfig saves configuration to a YAML file.
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
