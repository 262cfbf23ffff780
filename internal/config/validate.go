package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Validate checks all configuration values and returns all errors found.
// Fields that may legitimately be supplied later (from the environment or
// flags) are not required here; ValidateResolved checks those.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateCell(&cfg.Cell)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateNetwork(&cfg.Network)...)
	errs = append(errs, validateLocations(&cfg.Locations)...)

	return errors.Join(errs...)
}

// ValidateResolved checks required fields once every override layer has been
// applied. What is required depends on the auth mode.
func ValidateResolved(r *Resolved) error {
	var errs []error

	if r.Cell.URL == "" {
		errs = append(errs, fmt.Errorf("cell.url: required (set it in the config file or %s)", EnvCell))
	}

	if r.Auth.Mode == AuthModePassword {
		if r.Cell.Box == "" {
			errs = append(errs, errors.New("cell.box: required for password login"))
		}

		if r.Cell.Username == "" {
			errs = append(errs, fmt.Errorf("cell.username: required for password login (or %s)", EnvUsername))
		}

		if r.Cell.Password == "" {
			errs = append(errs, fmt.Errorf("cell.password: required for password login (set %s)", EnvPassword))
		}
	}

	if r.Auth.Mode == AuthModeDelegated && r.Auth.IntermediaryURL == "" {
		errs = append(errs, errors.New("auth.intermediary_url: required for delegated login"))
	}

	return errors.Join(errs...)
}

func validateCell(c *CellConfig) []error {
	var errs []error

	if c.URL != "" {
		if err := validateHTTPURL(c.URL); err != nil {
			errs = append(errs, fmt.Errorf("cell.url: %w", err))
		}
	}

	return errs
}

func validateAuth(a *AuthConfig) []error {
	var errs []error

	switch a.Mode {
	case AuthModePassword, AuthModeDelegated:
	default:
		errs = append(errs, fmt.Errorf("auth.mode: must be %q or %q, got %q",
			AuthModePassword, AuthModeDelegated, a.Mode))
	}

	if a.IntermediaryURL != "" {
		if err := validateHTTPURL(a.IntermediaryURL); err != nil {
			errs = append(errs, fmt.Errorf("auth.intermediary_url: %w", err))
		}
	}

	return errs
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	switch l.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.log_level: must be debug, info, warn, or error, got %q", l.LogLevel))
	}

	switch l.LogFormat {
	case "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.log_format: must be auto, text, or json, got %q", l.LogFormat))
	}

	return errs
}

func validateNetwork(n *NetworkConfig) []error {
	if _, err := parseTimeout(n.Timeout); err != nil {
		return []error{fmt.Errorf("network.timeout: %w", err)}
	}

	return nil
}

func validateLocations(l *LocationsConfig) []error {
	if _, err := loadLocation(l.Timezone); err != nil {
		return []error{fmt.Errorf("locations.timezone: %w", err)}
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http or https URL, got %q", raw)
	}

	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}

	return nil
}

// parseTimeout parses a duration; "0" and "" mean no timeout.
func parseTimeout(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}

	if d < 0 {
		return 0, fmt.Errorf("must not be negative, got %q", s)
	}

	return d, nil
}

// loadLocation resolves a timezone name; "" and "Local" mean time.Local.
func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}

	return time.LoadLocation(name)
}
