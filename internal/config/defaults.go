package config

// Default values for configuration options. These are "layer 0" of the
// override chain.
const (
	defaultBox       = "app-personium-trails"
	defaultAuthMode  = AuthModePassword
	defaultLogLevel  = "info"
	defaultLogFormat = "auto"
	defaultTimeout   = "30s"
	defaultTimezone  = "Local"
)

// DefaultConfig returns a Config populated with all default values. It is
// the starting point for TOML decoding, so unset fields keep their defaults.
func DefaultConfig() *Config {
	return &Config{
		Cell: CellConfig{
			Box: defaultBox,
		},
		Auth: AuthConfig{
			Mode: defaultAuthMode,
		},
		Logging: LoggingConfig{
			LogLevel:  defaultLogLevel,
			LogFormat: defaultLogFormat,
		},
		Network: NetworkConfig{
			Timeout: defaultTimeout,
		},
		Locations: LocationsConfig{
			Timezone: defaultTimezone,
		},
	}
}
