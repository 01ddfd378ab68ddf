package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Driver != DriverSQLite {
			t.Errorf("expected driver sqlite3, got %s", config.Database.Driver)
		}
		if config.Database.DSN != "./movierec.db" {
			t.Errorf("expected database dsn ./movierec.db, got %s", config.Database.DSN)
		}
		if config.Server.Port != 5000 {
			t.Errorf("expected server port 5000, got %d", config.Server.Port)
		}
		if config.Dataset.Member != "movie_metadata.csv" {
			t.Errorf("expected dataset member movie_metadata.csv, got %s", config.Dataset.Member)
		}
		if config.Network.FakeAccounts != 25 || config.Network.Iterations != 10 || config.Network.MaxFollows != 5 {
			t.Errorf("unexpected network defaults: %+v", config.Network)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.DSN != DefaultConfig().Database.DSN {
			t.Errorf("created config database dsn doesn't match default")
		}

		if err := CheckSessionSecret(config.Server.SessionSecret); err != nil {
			t.Errorf("created config should carry a generated session secret: %v", err)
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[database]
driver = "pgx"
dsn = "postgres://localhost/movies"

[server]
host = "0.0.0.0"
port = 8080

[network]
fake_accounts = 3
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Driver != DriverPostgres {
			t.Errorf("expected driver pgx, got %s", config.Database.Driver)
		}
		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}
		if config.Network.FakeAccounts != 3 {
			t.Errorf("expected 3 fake accounts, got %d", config.Network.FakeAccounts)
		}
		if config.Network.MaxFollows != 5 {
			t.Errorf("expected unspecified keys to keep defaults, got max_follows %d", config.Network.MaxFollows)
		}
	})

	t.Run("Addr brackets IPv6 hosts", func(t *testing.T) {
		if got := (ServerConfig{Host: "::1", Port: 5000}).Addr(); got != "[::1]:5000" {
			t.Errorf("expected [::1]:5000, got %s", got)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv(EnvDatabaseDSN, ":memory:")
		config := DefaultConfig()
		config.ApplyEnv()

		if config.Database.DSN != ":memory:" {
			t.Errorf("expected env dsn, got %s", config.Database.DSN)
		}
	})

	t.Run("environment session secret", func(t *testing.T) {
		t.Setenv(EnvSessionSecret, "env-secret-0123456789abcdef0123456789")
		config := DefaultConfig()
		config.ApplyEnv()

		if config.Server.SessionSecret != "env-secret-0123456789abcdef0123456789" {
			t.Errorf("expected env session secret, got %s", config.Server.SessionSecret)
		}
	})
}

func TestCheckSessionSecret(t *testing.T) {
	generated, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret() error = %v", err)
	}
	if len(generated) != 2*MinSessionSecretLen {
		t.Errorf("expected %d hex characters, got %d", 2*MinSessionSecretLen, len(generated))
	}

	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{name: "empty", secret: "", wantErr: true},
		{name: "placeholder", secret: PlaceholderSessionSecret, wantErr: true},
		{name: "short", secret: "short-secret", wantErr: true},
		{name: "minimum length", secret: "0123456789abcdef0123456789abcdef"},
		{name: "generated", secret: generated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSessionSecret(tt.secret)
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tt := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }},
		{name: "empty dsn", mutate: func(c *Config) { c.Database.DSN = "" }},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }},
		{name: "zero batch size", mutate: func(c *Config) { c.Dataset.BatchSize = 0 }},
		{name: "negative iterations", mutate: func(c *Config) { c.Network.Iterations = -1 }},
		{name: "zero max follows", mutate: func(c *Config) { c.Network.MaxFollows = 0 }},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)

			err := config.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
