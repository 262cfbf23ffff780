package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig   = "PERSONIUM_GO_CONFIG"
	EnvCell     = "PERSONIUM_GO_CELL"
	EnvUsername = "PERSONIUM_GO_USERNAME"
	EnvPassword = "PERSONIUM_GO_PASSWORD"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath string // PERSONIUM_GO_CONFIG: override config file path
	Cell       string // PERSONIUM_GO_CELL: cell URL
	Username   string // PERSONIUM_GO_USERNAME: password-grant username
	Password   string // PERSONIUM_GO_PASSWORD: password-grant password
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		Cell:       os.Getenv(EnvCell),
		Username:   os.Getenv(EnvUsername),
		Password:   os.Getenv(EnvPassword),
	}
}
