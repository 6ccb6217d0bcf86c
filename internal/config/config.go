package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the reliability service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig controls HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AnalysisConfig tunes the statistical pipeline.
type AnalysisConfig struct {
	BootstrapResamples int     `yaml:"bootstrapResamples"`
	FleetResamples     int     `yaml:"fleetResamples"`
	BootstrapSeed      int64   `yaml:"bootstrapSeed"`
	CurvePoints        int     `yaml:"curvePoints"`
	Workers            int     `yaml:"workers"`
	ConfidenceAlpha    float64 `yaml:"confidenceAlpha"`
}

// CacheConfig controls in-memory caching of analysis results.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("RELIABASE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{Path: "reliabase.db"},
		Analysis: AnalysisConfig{
			BootstrapResamples: 1000,
			FleetResamples:     200,
			BootstrapSeed:      42,
			CurvePoints:        100,
			Workers:            0,
			ConfidenceAlpha:    0.05,
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    256,
			TTL:     5 * time.Minute,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		CORS:    CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RELIABASE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("RELIABASE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("RELIABASE_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
	if v := os.Getenv("RELIABASE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("RELIABASE_BOOTSTRAP_RESAMPLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.BootstrapResamples = n
		}
	}
	if v := os.Getenv("RELIABASE_FLEET_RESAMPLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.FleetResamples = n
		}
	}
	if v := os.Getenv("RELIABASE_BOOTSTRAP_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Analysis.BootstrapSeed = n
		}
	}
	if v := os.Getenv("RELIABASE_CURVE_POINTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.CurvePoints = n
		}
	}
	if v := os.Getenv("RELIABASE_ANALYSIS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.Workers = n
		}
	}
	if v := os.Getenv("RELIABASE_CONFIDENCE_ALPHA"); v != "" {
		if a, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analysis.ConfidenceAlpha = a
		}
	}
	if v := os.Getenv("RELIABASE_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("RELIABASE_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Size = n
		}
	}
	if v := os.Getenv("RELIABASE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("RELIABASE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RELIABASE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("RELIABASE_CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORS.AllowedOrigins = origins
	}
}

func validate(cfg *Config) error {
	if cfg.Analysis.BootstrapResamples <= 0 {
		return fmt.Errorf("analysis.bootstrapResamples must be positive, got %d", cfg.Analysis.BootstrapResamples)
	}
	if cfg.Analysis.ConfidenceAlpha <= 0 || cfg.Analysis.ConfidenceAlpha >= 1 {
		return fmt.Errorf("analysis.confidenceAlpha must be in (0, 1), got %g", cfg.Analysis.ConfidenceAlpha)
	}
	if cfg.Analysis.CurvePoints < 2 {
		return fmt.Errorf("analysis.curvePoints must be at least 2, got %d", cfg.Analysis.CurvePoints)
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	return nil
}
