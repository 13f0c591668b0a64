package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pinmap/internal/board"
)

// Data backend names.
const (
	BackendCSV      = "csv"
	BackendXLSX     = "xlsx"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Report backend names.
const (
	ReportPDF  = "pdf"
	ReportNone = "none"
)

// ErrInvalid is returned for configurations that cannot be used.
var ErrInvalid = errors.New("config: invalid")

// StorageConfig selects a data backend and its directory.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

// ReportConfig selects the report backend.
type ReportConfig struct {
	Backend string `yaml:"backend"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	JWTSecret string `yaml:"jwt_secret"`
}

// Config is the pinmap configuration.
type Config struct {
	Adapter     board.Adapter `yaml:"adapter"`
	Import      StorageConfig `yaml:"import"`
	Export      StorageConfig `yaml:"export"`
	Report      ReportConfig  `yaml:"report"`
	Server      ServerConfig  `yaml:"server"`
	DatabaseURL string        `yaml:"database_url"`
	LogMode     string        `yaml:"log_mode"`
	Author      string        `yaml:"author"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Import: StorageConfig{Backend: BackendCSV, Dir: "."},
		Export: StorageConfig{Backend: BackendCSV, Dir: "export"},
		Report: ReportConfig{Backend: ReportPDF},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads the YAML file at path, or PINMAP_CONFIG when path is empty, on top of the defaults
// and applies environment overrides. Without a file only defaults and environment apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("PINMAP_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	cfg.Adapter = cfg.Adapter.WithDefaults()
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	cfg.DatabaseURL = getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", cfg.DatabaseURL))
	cfg.Server.Addr = getenvDefault("HTTP_ADDR", cfg.Server.Addr)
	cfg.Server.JWTSecret = getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", cfg.Server.JWTSecret))
	cfg.LogMode = getenvDefault("LOG_MODE", cfg.LogMode)
	cfg.Author = getenvDefault("PINMAP_AUTHOR", cfg.Author)
}

// Validate checks backend names and their requirements.
func (c Config) Validate() error {
	for _, storage := range []StorageConfig{c.Import, c.Export} {
		switch storage.Backend {
		case BackendCSV, BackendXLSX, BackendMemory:
		case BackendPostgres:
			if c.DatabaseURL == "" {
				return fmt.Errorf("%w: backend postgres requires DATABASE_URL or PG_DSN", ErrInvalid)
			}
		default:
			return fmt.Errorf("%w: unknown data backend %q", ErrInvalid, storage.Backend)
		}
	}
	switch c.Report.Backend {
	case ReportPDF, ReportNone:
	default:
		return fmt.Errorf("%w: unknown report backend %q", ErrInvalid, c.Report.Backend)
	}
	if err := c.Adapter.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
