package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvString(t *testing.T) {
	os.Setenv("TEST_TOKEN_PATH", "/run/secrets/token")
	os.Setenv("TEST_OWNER", "acme")
	defer os.Unsetenv("TEST_TOKEN_PATH")
	defer os.Unsetenv("TEST_OWNER")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "expand ${VAR} syntax",
			input:    "${TEST_TOKEN_PATH}",
			expected: "/run/secrets/token",
		},
		{
			name:     "expand $VAR syntax",
			input:    "$TEST_OWNER",
			expected: "acme",
		},
		{
			name:     "expand in middle of string",
			input:    "org:${TEST_OWNER}:end",
			expected: "org:acme:end",
		},
		{
			name:     "leave non-existent var unchanged",
			input:    "${NONEXISTENT_VAR}",
			expected: "${NONEXISTENT_VAR}",
		},
		{
			name:     "handle empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "handle string without variables",
			input:    "plain-text",
			expected: "plain-text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvString(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("RVW_TEST_TOKEN_FILE", "/run/secrets/gh-token")
	os.Setenv("RVW_TEST_REPO_DIR", "/src/widgets")
	defer os.Unsetenv("RVW_TEST_TOKEN_FILE")
	defer os.Unsetenv("RVW_TEST_REPO_DIR")

	cfg := Config{
		Owner:     "acme",
		TokenFile: "${RVW_TEST_TOKEN_FILE}",
		Git:       GitConfig{RepositoryDir: "${RVW_TEST_REPO_DIR}"},
		Store:     StoreConfig{Path: "plain/path.db"},
	}

	expanded := expandEnvVars(cfg)

	assert.Equal(t, "acme", expanded.Owner)
	assert.Equal(t, "/run/secrets/gh-token", expanded.TokenFile)
	assert.Equal(t, "/src/widgets", expanded.Git.RepositoryDir)
	assert.Equal(t, "plain/path.db", expanded.Store.Path)
}

func TestLoadDefaults(t *testing.T) {
	// Point discovery at an empty directory with a name no file matches,
	// so only defaults apply.
	cfg, err := Load(LoaderOptions{
		ConfigPaths: []string{t.TempDir()},
		FileName:    ".rvw-defaults-test",
		EnvPrefix:   "RVW_DEFAULTS_TEST",
	})
	require.NoError(t, err)

	assert.Equal(t, "github", cfg.Platform)
	assert.Equal(t, "https://api.github.com", cfg.APIHost)
	assert.Equal(t, "30s", cfg.HTTP.Timeout)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, "2s", cfg.HTTP.InitialBackoff)
	assert.Equal(t, "32s", cfg.HTTP.MaxBackoff)
	assert.Equal(t, 2.0, cfg.HTTP.BackoffMultiplier)
	assert.True(t, cfg.Store.Enabled)
	assert.NotEmpty(t, cfg.Store.Path)
	assert.True(t, cfg.Observability.Logging.Enabled)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, "human", cfg.Observability.Logging.Format)
	assert.True(t, cfg.Observability.Logging.RedactTokens)
	assert.False(t, cfg.Resolver.Trace)
}

func TestLoadFromFile(t *testing.T) {
	os.Setenv("RVW_LOAD_TEST_TOKEN", "/run/secrets/token")
	defer os.Unsetenv("RVW_LOAD_TEST_TOKEN")

	dir := t.TempDir()
	content := `platform: github
owner: acme
repo: widgets
pullRequest: 42
tokenFile: ${RVW_LOAD_TEST_TOKEN}
http:
  timeout: 10s
observability:
  logging:
    format: json
resolver:
  trace: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rvw-load-test.yaml"), []byte(content), 0o644))

	cfg, err := Load(LoaderOptions{
		ConfigPaths: []string{dir},
		FileName:    ".rvw-load-test",
		EnvPrefix:   "RVW_LOAD_TEST",
	})
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.Owner)
	assert.Equal(t, "widgets", cfg.Repo)
	assert.Equal(t, 42, cfg.PullRequest)
	assert.Equal(t, "/run/secrets/token", cfg.TokenFile)
	assert.Equal(t, "10s", cfg.HTTP.Timeout)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
	assert.True(t, cfg.Resolver.Trace)

	// Defaults still fill fields the file omits.
	assert.Equal(t, "https://api.github.com", cfg.APIHost)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rvw-bad-test.yaml"), []byte("owner: [unclosed"), 0o644))

	_, err := Load(LoaderOptions{
		ConfigPaths: []string{dir},
		FileName:    ".rvw-bad-test",
		EnvPrefix:   "RVW_BAD_TEST",
	})
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", ".rvw-write-test.yaml")

	cfg := Config{
		Platform:    "github",
		Owner:       "acme",
		Repo:        "widgets",
		APIHost:     "https://github.example.com/api/v3",
		PullRequest: 7,
		TokenFile:   "/run/secrets/token",
		HTTP:        HTTPConfig{Timeout: "15s", MaxRetries: 5, InitialBackoff: "1s", MaxBackoff: "8s", BackoffMultiplier: 2.0},
		Git:         GitConfig{RepositoryDir: "/src/widgets"},
		Store:       StoreConfig{Enabled: true, Path: filepath.Join(dir, "rvw.db")},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Enabled: true, Level: "debug", Format: "json", RedactTokens: true},
		},
		Resolver: ResolverConfig{Trace: true},
	}

	require.NoError(t, Write(cfg, path))

	loaded, err := Load(LoaderOptions{
		ConfigPaths: []string{filepath.Join(dir, "nested")},
		FileName:    ".rvw-write-test",
		EnvPrefix:   "RVW_WRITE_TEST",
	})
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
