package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that take precedence over the configuration file.
const (
	EnvDatabaseDriver = "MOVIEREC_DATABASE_DRIVER"
	EnvDatabaseDSN    = "MOVIEREC_DATABASE_DSN"
	EnvSessionSecret  = "MOVIEREC_SESSION_SECRET"
)

// PlaceholderSessionSecret is the session_secret shipped in the example config.
// It is public, so it is never accepted for signing cookies.
const PlaceholderSessionSecret = "change-me-to-a-long-random-string"

// MinSessionSecretLen is the shortest session secret accepted, in bytes.
const MinSessionSecretLen = 32

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Security SecurityConfig `toml:"security"`
	Dataset  DatasetConfig  `toml:"dataset"`
	Network  NetworkConfig  `toml:"network"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	DSN          string `toml:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host          string  `toml:"host"`
	Port          int     `toml:"port"`
	SessionSecret string  `toml:"session_secret"`
	TemplatesDir  string  `toml:"templates_dir"`
	LoginRate     float64 `toml:"login_rate"`
	LoginBurst    int     `toml:"login_burst"`
	SecureCookie  bool    `toml:"secure_cookie"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SecurityConfig contains credential hashing settings.
type SecurityConfig struct {
	BcryptCost int `toml:"bcrypt_cost"`
}

// DatasetConfig contains movie dataset import settings.
type DatasetConfig struct {
	Member    string `toml:"member"`     // CSV entry looked up inside ZIP archives
	BatchSize int    `toml:"batch_size"` // Rows per multi-row INSERT
}

// NetworkConfig controls the shape of the generated demo social graph.
type NetworkConfig struct {
	SeedAccounts int    `toml:"seed_accounts"`
	FakeAccounts int    `toml:"fake_accounts"`
	Iterations   int    `toml:"iterations"`
	MaxFollows   int    `toml:"max_follows"`
	EmailDomain  string `toml:"email_domain"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values; environment overrides are applied last.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
// The placeholder session secret is replaced with a freshly generated one.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	secret, err := GenerateSecret()
	if err != nil {
		return err
	}
	content := bytes.Replace(exampleConf, []byte(PlaceholderSessionSecret), []byte(secret), 1)

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides database settings and the session secret from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDatabaseDriver); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(EnvSessionSecret); v != "" {
		c.Server.SessionSecret = v
	}
}

// CheckSessionSecret rejects secrets that would let anyone forge a session cookie.
func CheckSessionSecret(secret string) error {
	switch {
	case secret == "":
		return fmt.Errorf("%w: server.session_secret is required", ErrInvalidConfig)
	case secret == PlaceholderSessionSecret:
		return fmt.Errorf("%w: server.session_secret is still the example placeholder; run init_config or set %s",
			ErrInvalidConfig, EnvSessionSecret)
	case len(secret) < MinSessionSecretLen:
		return fmt.Errorf("%w: server.session_secret must be at least %d bytes", ErrInvalidConfig, MinSessionSecretLen)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, ErrUnsupportedDriver, c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("%w: database.dsn is empty", ErrInvalidConfig)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Dataset.BatchSize <= 0 {
		return fmt.Errorf("%w: dataset.batch_size must be positive", ErrInvalidConfig)
	}
	n := c.Network
	if n.SeedAccounts < 0 || n.FakeAccounts < 0 || n.Iterations < 0 {
		return fmt.Errorf("%w: network counts must not be negative", ErrInvalidConfig)
	}
	if n.MaxFollows < 1 {
		return fmt.Errorf("%w: network.max_follows must be at least 1", ErrInvalidConfig)
	}
	return nil
}
