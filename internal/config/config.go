// Package config loads runtime settings from the environment and .env files.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Solipath/Solipath/internal/directory"
	"github.com/Solipath/Solipath/internal/instructions"
	"github.com/Solipath/Solipath/internal/selfupdate"
	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all settings of a solipath run
type Config struct {
	// Home is the cache root. Empty means ~/solipath.
	Home            string `env:"SOLIPATH_HOME"`
	InstructionsURL string `env:"SOLIPATH_INSTRUCTIONS_URL" validate:"required,http_url"`
	DependencyFile  string `env:"SOLIPATH_DEPENDENCY_FILE" envDefault:"solipath.json" validate:"required"`

	Download struct {
		Timeout  time.Duration `env:"SOLIPATH_HTTP_TIMEOUT" envDefault:"10m"`
		Attempts int           `env:"SOLIPATH_DOWNLOAD_ATTEMPTS" envDefault:"3" validate:"min=1,max=10"`
		Backoff  time.Duration `env:"SOLIPATH_RETRY_BACKOFF" envDefault:"2s"`
	}

	Logging struct {
		Level string `env:"SOLIPATH_LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	}

	// KeyringPath points at trusted OpenPGP public keys for signed downloads.
	KeyringPath string `env:"SOLIPATH_PGP_KEYRING"`

	ReleaseURL string `env:"SOLIPATH_RELEASE_URL" validate:"required,http_url"`
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Home == "" {
		home, err := directory.DefaultBase()
		if err != nil {
			return err
		}
		cfg.Home = home
	}
	if cfg.InstructionsURL == "" {
		cfg.InstructionsURL = instructions.DefaultBaseURL
	}
	if cfg.ReleaseURL == "" {
		cfg.ReleaseURL = selfupdate.DefaultReleaseURL
	}
	return nil
}

// Validate validates the configuration using struct tags
func Validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs additional validation beyond struct tags
func validateCustomRules(cfg *Config) error {
	if cfg.Home == "" {
		return fmt.Errorf("home directory cannot be empty")
	}
	if cfg.Download.Timeout < time.Second {
		return fmt.Errorf("http timeout must be at least 1 second")
	}
	if cfg.Download.Backoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	return nil
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
			case "oneof":
				messages = append(messages, fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param()))
			case "http_url":
				messages = append(messages, fmt.Sprintf("%s must be an http(s) URL", e.Field()))
			default:
				messages = append(messages, fmt.Sprintf("%s failed validation: %s", e.Field(), e.Tag()))
			}
		}
		return fmt.Errorf("validation errors: %s", strings.Join(messages, "; "))
	}
	return err
}
