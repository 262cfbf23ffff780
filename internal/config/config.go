// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for personium-go. Values resolve through
// a four-layer override chain: defaults -> config file -> environment -> CLI
// flags.
package config

import "time"

// Auth modes.
const (
	AuthModePassword  = "password"
	AuthModeDelegated = "delegated"
)

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	Cell      CellConfig      `toml:"cell"`
	Auth      AuthConfig      `toml:"auth"`
	Logging   LoggingConfig   `toml:"logging"`
	Network   NetworkConfig   `toml:"network"`
	Locations LocationsConfig `toml:"locations"`
}

// CellConfig identifies the cell, the box that holds location data, and the
// account used for password logins. The password is normally supplied via
// PERSONIUM_GO_PASSWORD instead of the file.
type CellConfig struct {
	URL      string `toml:"url"`
	Box      string `toml:"box"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// AuthConfig selects the login manager. intermediary_url is the web app that
// brokers delegated logins (mode = "delegated").
type AuthConfig struct {
	Mode            string `toml:"mode"`
	IntermediaryURL string `toml:"intermediary_url"`
}

// LoggingConfig controls log level and handler format.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// NetworkConfig controls the shared HTTP client. A timeout of "0" disables
// the client-level timeout.
type NetworkConfig struct {
	Timeout   string `toml:"timeout"`
	UserAgent string `toml:"user_agent"`
}

// LocationsConfig controls how records are bucketed into days.
type LocationsConfig struct {
	Timezone string `toml:"timezone"`
}

// Resolved is the effective configuration after all override layers, with
// string settings parsed into their typed forms.
type Resolved struct {
	Config

	ConfigPath string
	Timeout    time.Duration
	Location   *time.Location
}

// CLIOverrides holds values from CLI flags. Empty means "not specified".
type CLIOverrides struct {
	ConfigPath string // --config
	Cell       string // --cell
	Box        string // --box
	Username   string // --username
	Mode       string // --mode
}
