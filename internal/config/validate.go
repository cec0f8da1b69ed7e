package config

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validation range constants.
const (
	minTimeout = 1 * time.Second
	maxTimeout = 30 * time.Minute
)

var (
	validLogLevels  = []any{"debug", "info", "warn", "error"}
	validLogFormats = []any{"auto", "text", "json"}
	validImportance = []any{"Low", "Normal", "High"}
)

// Validate checks all configuration values and returns every error found,
// so users can fix all issues in one pass. Credentials are not required
// here; see RequireCredentials.
func Validate(cfg *Config) error {
	return errors.Join(
		field("auth.authority_host", cfg.Auth.AuthorityHost, validation.Required, is.URL),
		field("graph.base_url", cfg.Graph.BaseURL, validation.Required, is.URL),
		field("logging.log_level", cfg.Logging.LogLevel, validation.In(validLogLevels...)),
		field("logging.log_format", cfg.Logging.LogFormat, validation.In(validLogFormats...)),
		field("network.timeout", cfg.Network.Timeout, validation.By(durationBetween(minTimeout, maxTimeout))),
		field("mail.default_sender", cfg.Mail.DefaultSender, is.EmailFormat),
		field("mail.default_importance", cfg.Mail.DefaultImportance, validation.In(validImportance...)),
		field("sharepoint.max_upload_size", cfg.SharePoint.MaxUploadSize, validation.By(validSize)),
	)
}

// RequireCredentials reports which of the three app credentials are still
// missing after every override layer has been applied.
func RequireCredentials(cfg *Config) error {
	err := errors.Join(
		field("auth.client_id", cfg.Auth.ClientID, validation.Required),
		field("auth.tenant_id", cfg.Auth.TenantID, validation.Required),
		field("auth.client_secret", cfg.Auth.ClientSecret, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("missing app credentials (set them in the config file, %s/%s/%s, or flags): %w",
			EnvClientID, EnvTenantID, EnvClientSecret, err)
	}

	return nil
}

// field validates one value and prefixes any failure with its config key.
func field(name string, value any, rules ...validation.Rule) error {
	if err := validation.Validate(value, rules...); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}

func durationBetween(lo, hi time.Duration) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}

		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q", s)
		}

		if d < lo || d > hi {
			return fmt.Errorf("must be between %s and %s, got %s", lo, hi, d)
		}

		return nil
	}
}

func validSize(value any) error {
	s, _ := value.(string)

	_, err := ParseSize(s)

	return err
}
