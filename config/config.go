package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/vibast-solutions/ms-go-idmatch/app/cooccurrence"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	HTTPHost     string
	HTTPPort     string
	GRPCHost     string
	GRPCPort     string
	DBDriver     string
	DatabaseDSN  string
	GitbaseDSN   string
	APIKeyHash   string
	LogLevel     string
	LogFormat    string
	BlacklistDir string
	Matching     MatchingConfig
}

type MatchingConfig struct {
	NameThreshold           int    `toml:"name_threshold"`
	EmailThreshold          int    `toml:"email_threshold"`
	Comparison              string `toml:"threshold_comparison"`
	LowerNames              bool   `toml:"lower_names"`
	LowerEmails             bool   `toml:"lower_emails"`
	UsePrecalculatedPopular bool   `toml:"use_precalculated_popular"`
	RewritePopularNames     bool   `toml:"rewrite_popular_names"`
	MergeByName             bool   `toml:"merge_by_name"`
	RequireAlphabeticName   bool   `toml:"require_alphabetic_name"`
	Workers                 int    `toml:"workers"`
}

type matchingFile struct {
	Matching matchingOverrides `toml:"matching"`
}

type matchingOverrides struct {
	NameThreshold           *int    `toml:"name_threshold"`
	EmailThreshold          *int    `toml:"email_threshold"`
	Comparison              *string `toml:"threshold_comparison"`
	LowerNames              *bool   `toml:"lower_names"`
	LowerEmails             *bool   `toml:"lower_emails"`
	UsePrecalculatedPopular *bool   `toml:"use_precalculated_popular"`
	RewritePopularNames     *bool   `toml:"rewrite_popular_names"`
	MergeByName             *bool   `toml:"merge_by_name"`
	RequireAlphabeticName   *bool   `toml:"require_alphabetic_name"`
	Workers                 *int    `toml:"workers"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		HTTPHost:     getEnv("HTTP_HOST", ""),
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		GRPCHost:     getEnv("GRPC_HOST", ""),
		GRPCPort:     getEnv("GRPC_PORT", "9090"),
		DBDriver:     strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DatabaseDSN:  strings.TrimSpace(os.Getenv("DATABASE_DSN")),
		GitbaseDSN:   strings.TrimSpace(os.Getenv("GITBASE_DSN")),
		APIKeyHash:   strings.TrimSpace(os.Getenv("API_KEY_HASH")),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    strings.ToLower(getEnv("LOG_FORMAT", "auto")),
		BlacklistDir: os.Getenv("BLACKLIST_DIR"),
		Matching:     loadMatchingConfig(),
	}

	if path := os.Getenv("MATCHING_CONFIG_FILE"); path != "" {
		if err := cfg.Matching.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.LogFormat {
	case "auto", "json", "text":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat)
	}

	return c.Matching.Validate()
}

func (c *Config) RequireDSN() (string, error) {
	if c.DatabaseDSN == "" {
		return "", errors.New("DATABASE_DSN environment variable is required")
	}
	return c.DatabaseDSN, nil
}

func (m MatchingConfig) Validate() error {
	if m.NameThreshold < 0 || m.EmailThreshold < 0 {
		return errors.New("popularity thresholds must not be negative")
	}
	if _, err := cooccurrence.ParseComparison(m.Comparison); err != nil {
		return err
	}
	if m.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	return nil
}

func (m *MatchingConfig) applyFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open matching config: %w", err)
	}
	defer file.Close()

	var overrides matchingFile
	if err := toml.NewDecoder(file).DisallowUnknownFields().Decode(&overrides); err != nil {
		return fmt.Errorf("parse matching config: %w", err)
	}

	o := overrides.Matching
	setInt(&m.NameThreshold, o.NameThreshold)
	setInt(&m.EmailThreshold, o.EmailThreshold)
	setInt(&m.Workers, o.Workers)
	if o.Comparison != nil {
		m.Comparison = *o.Comparison
	}
	setBool(&m.LowerNames, o.LowerNames)
	setBool(&m.LowerEmails, o.LowerEmails)
	setBool(&m.UsePrecalculatedPopular, o.UsePrecalculatedPopular)
	setBool(&m.RewritePopularNames, o.RewritePopularNames)
	setBool(&m.MergeByName, o.MergeByName)
	setBool(&m.RequireAlphabeticName, o.RequireAlphabeticName)
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func loadMatchingConfig() MatchingConfig {
	return MatchingConfig{
		NameThreshold:           getIntEnv("NAME_THRESHOLD", 5),
		EmailThreshold:          getIntEnv("EMAIL_THRESHOLD", 28),
		Comparison:              getEnv("THRESHOLD_COMPARISON", ">="),
		LowerNames:              getBoolEnv("LOWER_NAMES", true),
		LowerEmails:             getBoolEnv("LOWER_EMAILS", true),
		UsePrecalculatedPopular: getBoolEnv("USE_PRECALCULATED_POPULAR", true),
		RewritePopularNames:     getBoolEnv("REWRITE_POPULAR_NAMES", true),
		MergeByName:             getBoolEnv("MERGE_BY_NAME", false),
		RequireAlphabeticName:   getBoolEnv("REQUIRE_ALPHABETIC_NAME", true),
		Workers:                 getIntEnv("NORMALIZE_WORKERS", runtime.NumCPU()),
	}
}
