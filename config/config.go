// Package config loads application configuration from a YAML file and
// environment variables. Priority: ENV > YAML > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration.
type Config struct {
	// DataDir holds the record files and the audit log. File names inside
	// it are fixed.
	DataDir string `yaml:"data_dir" env:"DATA_DIR" env-default:"data"`

	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"7000"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`

	// StaticDir, when set, is served at / for the web front end.
	StaticDir string `yaml:"static_dir" env:"SERVER_STATIC_DIR"`
}

// LogConfig holds operational (not audit) logging settings.
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	// Format is "text", "json", or empty for auto (text on a terminal,
	// json otherwise).
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Load reads configuration from CONFIG_PATH (fallback "./config.yaml") plus
// the environment. If the fallback file does not exist, ENV and defaults
// alone are used; an explicitly set CONFIG_PATH must exist.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	return &cfg, nil
}

// Addr returns the host:port the server listens on.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Fixed file names inside the data directory.

func (c *Config) BooksFile() string     { return filepath.Join(c.DataDir, "books.csv") }
func (c *Config) CustomersFile() string { return filepath.Join(c.DataDir, "customers.csv") }
func (c *Config) TicketsFile() string   { return filepath.Join(c.DataDir, "tickets.csv") }
func (c *Config) AuditFile() string     { return filepath.Join(c.DataDir, "actions.log") }
