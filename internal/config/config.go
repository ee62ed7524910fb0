package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// Config holds the planner's own runtime settings.
// 🛡️ SLA: It never carries preview values; those arrive as a RawConfig.
type Config struct {
	Environment string `validate:"oneof=development production"`
	LogLevel    string `validate:"oneof=debug info warn error"`
	LogFormat   string `validate:"oneof=json text"`

	// Where preview context comes from
	ContextFile string

	// 🛡️ Live listener inventory for collision detection (optional)
	InventoryFile    string
	InventoryURL     string `validate:"omitempty,url"`
	InventoryTimeout time.Duration
	InventoryRetries int `validate:"gte=0,lte=10"`

	OutputFormat string `validate:"oneof=json yaml"`
}

// Override adjusts settings after the environment is read, such as a
// command-line flag taking precedence over its variable.
type Override func(*Config)

// Load reads an optional .env file, then the process environment, and
// applies fallbacks. A .env file never overrides variables already set.
// Overrides run before validation, so only the final settings are checked.
func Load(overrides ...Override) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	timeoutSecs, err := strconv.Atoi(getEnv("PLANNER_INVENTORY_TIMEOUT", "10"))
	if err != nil || timeoutSecs <= 0 {
		return nil, fmt.Errorf("PLANNER_INVENTORY_TIMEOUT must be a positive number of seconds")
	}
	retries, err := strconv.Atoi(getEnv("PLANNER_INVENTORY_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("PLANNER_INVENTORY_RETRIES must be an integer")
	}

	env := strings.ToLower(getEnv("PLANNER_ENV", "production"))

	// Sensible defaults for local development ONLY
	level, format := "info", "json"
	if env == "development" {
		level, format = "debug", "text"
	}

	cfg := &Config{
		Environment:      env,
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", level)),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", format)),
		ContextFile:      getEnv("PLANNER_CONTEXT_FILE", ""),
		InventoryFile:    getEnv("PLANNER_INVENTORY_FILE", ""),
		InventoryURL:     getEnv("PLANNER_INVENTORY_URL", ""),
		InventoryTimeout: time.Duration(timeoutSecs) * time.Second,
		InventoryRetries: retries,
		OutputFormat:     strings.ToLower(getEnv("PLANNER_OUTPUT", "json")),
	}

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid planner settings: %w", err)
	}
	if c.InventoryFile != "" && c.InventoryURL != "" {
		return errors.New("invalid planner settings: set either an inventory file or an inventory URL, not both")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
