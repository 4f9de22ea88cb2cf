package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("classification", validateClassification)
	_ = v.RegisterValidation("providers", validateProviders)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateClassification(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "fbs", "fcs", "lower":
		return true
	default:
		return false
	}
}

// validateProviders requires a non-empty list of distinct, non-blank names.
func validateProviders(fl validator.FieldLevel) bool {
	providers, ok := fl.Field().Interface().([]string)
	if !ok || len(providers) == 0 {
		return false
	}
	seen := make(map[string]bool, len(providers))
	for _, p := range providers {
		key := strings.ToLower(strings.TrimSpace(p))
		if key == "" || seen[key] {
			return false
		}
		seen[key] = true
	}
	return true
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	m := cfg.Model
	if m.CoinflipLow >= m.CoinflipHigh {
		return fmt.Errorf("coinflip_low must be below coinflip_high")
	}
	if m.SureThingThreshold <= m.CoinflipHigh {
		return fmt.Errorf("sure_thing_threshold must exceed coinflip_high")
	}
	if m.LongshotThreshold >= m.CoinflipLow {
		return fmt.Errorf("longshot_threshold must be below coinflip_low")
	}
	if m.DefaultSecondTierRating > m.DefaultTopTierRating || m.DefaultLowerTierRating > m.DefaultSecondTierRating {
		return fmt.Errorf("default opponent ratings must not increase as classification drops")
	}

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	if cfg.Server.Port == cfg.Server.HealthPort {
		return fmt.Errorf("server port and health port must differ")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "classification":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: fbs, fcs, lower\n", field)
		case "providers":
			errMsg += fmt.Sprintf("- Field '%s' must list at least one distinct provider\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
