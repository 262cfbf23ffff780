package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)

	return path
}

// clearEnv blanks every override variable so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, name := range []string{EnvConfig, EnvCell, EnvUsername, EnvPassword} {
		t.Setenv(name, "")
	}
}

func TestLoad_ValidFullConfig(t *testing.T) {
	path := writeTestConfig(t, `
[cell]
url = "https://cell.example/"
box = "trails"
username = "me"
password = "secret"

[auth]
mode = "delegated"
intermediary_url = "https://app.example"

[logging]
log_level = "debug"
log_format = "json"

[network]
timeout = "10s"
user_agent = "test/1.0"

[locations]
timezone = "Asia/Tokyo"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://cell.example/", cfg.Cell.URL)
	assert.Equal(t, "trails", cfg.Cell.Box)
	assert.Equal(t, "me", cfg.Cell.Username)
	assert.Equal(t, "secret", cfg.Cell.Password)
	assert.Equal(t, AuthModeDelegated, cfg.Auth.Mode)
	assert.Equal(t, "https://app.example", cfg.Auth.IntermediaryURL)
	assert.Equal(t, "debug", cfg.Logging.LogLevel)
	assert.Equal(t, "json", cfg.Logging.LogFormat)
	assert.Equal(t, "10s", cfg.Network.Timeout)
	assert.Equal(t, "test/1.0", cfg.Network.UserAgent)
	assert.Equal(t, "Asia/Tokyo", cfg.Locations.Timezone)
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	path := writeTestConfig(t, "[cell]\nurl = \"https://cell.example/\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, defaultBox, cfg.Cell.Box)
	assert.Equal(t, AuthModePassword, cfg.Auth.Mode)
	assert.Equal(t, defaultLogLevel, cfg.Logging.LogLevel)
	assert.Equal(t, defaultTimeout, cfg.Network.Timeout)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeTestConfig(t, "[cell\nurl = ")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeTestConfig(t, "[auth]\nmode = \"magic\"\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.mode")
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeTestConfig(t, `
[cell]
url = "https://file.example/"
username = "file-user"
`)

	resolved, err := Resolve(EnvOverrides{
		ConfigPath: path,
		Cell:       "https://env.example/",
		Password:   "env-secret",
	}, CLIOverrides{})
	require.NoError(t, err)

	assert.Equal(t, "https://env.example/", resolved.Cell.URL)
	assert.Equal(t, "file-user", resolved.Cell.Username)
	assert.Equal(t, "env-secret", resolved.Cell.Password)
	assert.Equal(t, path, resolved.ConfigPath)
	assert.Equal(t, 30*time.Second, resolved.Timeout)
	assert.Equal(t, time.Local, resolved.Location)
}

func TestResolve_CLIOverridesEnv(t *testing.T) {
	clearEnv(t)

	path := writeTestConfig(t, "[auth]\nintermediary_url = \"https://app.example\"\n")

	resolved, err := Resolve(
		EnvOverrides{ConfigPath: path, Cell: "https://env.example/"},
		CLIOverrides{Cell: "https://cli.example", Mode: AuthModeDelegated},
	)
	require.NoError(t, err)

	assert.Equal(t, "https://cli.example/", resolved.Cell.URL, "trailing slash added")
	assert.Equal(t, AuthModeDelegated, resolved.Auth.Mode)
}

func TestResolve_CLIConfigPathWins(t *testing.T) {
	clearEnv(t)

	envPath := writeTestConfig(t, "[cell]\nbox = \"from-env\"\n")
	cliPath := writeTestConfig(t, "[cell]\nbox = \"from-cli\"\n")

	resolved, err := Resolve(
		EnvOverrides{ConfigPath: envPath, Cell: "https://cell.example/", Username: "u", Password: "p"},
		CLIOverrides{ConfigPath: cliPath},
	)
	require.NoError(t, err)
	assert.Equal(t, "from-cli", resolved.Cell.Box)
}

func TestResolve_MissingRequired(t *testing.T) {
	clearEnv(t)

	_, err := Resolve(EnvOverrides{ConfigPath: filepath.Join(t.TempDir(), "none.toml")}, CLIOverrides{})
	require.Error(t, err)

	assert.Contains(t, err.Error(), "cell.url")
	assert.Contains(t, err.Error(), "cell.username")
	assert.Contains(t, err.Error(), EnvPassword)
}

func TestResolve_InvalidCLIMode(t *testing.T) {
	clearEnv(t)

	_, err := Resolve(
		EnvOverrides{ConfigPath: filepath.Join(t.TempDir(), "none.toml"), Cell: "https://cell.example/"},
		CLIOverrides{Mode: "sso"},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.mode")
}

func TestResolve_ParsesTimezone(t *testing.T) {
	clearEnv(t)

	path := writeTestConfig(t, `
[cell]
url = "https://cell.example/"
username = "u"
password = "p"

[network]
timeout = "0"

[locations]
timezone = "UTC"
`)

	resolved, err := Resolve(EnvOverrides{ConfigPath: path}, CLIOverrides{})
	require.NoError(t, err)

	assert.Equal(t, time.UTC, resolved.Location)
	assert.Zero(t, resolved.Timeout)
}
