package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Token storage backends for the CLI
const (
	TokenStoreKeyring = "keyring"
	TokenStoreFile    = "file"
)

// CLIConfig holds configuration for the castvote command line client
type CLIConfig struct {
	// Directory holding castvote/state.json. Empty means the user config dir.
	ConfigDir string `env:"CASTVOTE_CONFIG_DIR"`

	// Where the bearer token lives: "keyring" (OS keychain) or "file"
	TokenStore string `env:"CASTVOTE_TOKEN_STORE" envDefault:"keyring"`

	// Request timeout for every backend call
	Timeout time.Duration `env:"CASTVOTE_TIMEOUT" envDefault:"15s"`

	Logging LoggingConfig
}

// ServerConfig holds configuration for the development backend
type ServerConfig struct {
	Addr string `env:"DEVSERVER_ADDR" envDefault:":8080"`

	Database DatabaseConfig

	// Signing secret for bearer tokens. Generated at startup when empty.
	JWTSecret string `env:"JWT_SECRET"`

	// Lifetime of issued tokens. Zero issues tokens without expiry.
	JWTTTL time.Duration `env:"JWT_TTL" envDefault:"24h"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8081"`

	// Optional YAML file with candidates and users to seed
	SeedFile string `env:"SEED_FILE"`

	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@castvote.local"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`

	Logging LoggingConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envDefault:"file::memory:?cache=shared"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"`
	Format string `env:"LOG_FORMAT"` // json, console
}

func loadDotEnv() {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// LoadCLI loads the client configuration from environment variables
func LoadCLI() (*CLIConfig, error) {
	loadDotEnv()

	var cfg CLIConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	switch cfg.TokenStore {
	case TokenStoreKeyring, TokenStoreFile:
	default:
		return nil, fmt.Errorf("invalid CASTVOTE_TOKEN_STORE %q, must be one of: keyring, file", cfg.TokenStore)
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("CASTVOTE_TIMEOUT must be positive, got %s", cfg.Timeout)
	}

	// A CLI should stay quiet unless asked otherwise
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	return &cfg, nil
}

// LoadServer loads the development backend configuration from environment variables
func LoadServer() (*ServerConfig, error) {
	loadDotEnv()

	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	// Logging configuration - defaults suitable for production
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	return &cfg, nil
}
