package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadEnvOverrides_AllSet(t *testing.T) {
	t.Setenv(EnvConfig, "/custom/config.toml")
	t.Setenv(EnvCell, "https://cell.example/")
	t.Setenv(EnvUsername, "me")
	t.Setenv(EnvPassword, "secret")

	overrides := ReadEnvOverrides()
	assert.Equal(t, "/custom/config.toml", overrides.ConfigPath)
	assert.Equal(t, "https://cell.example/", overrides.Cell)
	assert.Equal(t, "me", overrides.Username)
	assert.Equal(t, "secret", overrides.Password)
}

func TestReadEnvOverrides_NoneSet(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvCell, "")
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")

	assert.Equal(t, EnvOverrides{}, ReadEnvOverrides())
}

func TestEnvVarConstants(t *testing.T) {
	assert.Equal(t, "PERSONIUM_GO_CONFIG", EnvConfig)
	assert.Equal(t, "PERSONIUM_GO_CELL", EnvCell)
	assert.Equal(t, "PERSONIUM_GO_USERNAME", EnvUsername)
	assert.Equal(t, "PERSONIUM_GO_PASSWORD", EnvPassword)
}
