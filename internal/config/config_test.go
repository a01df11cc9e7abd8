package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		configs  []Config
		expected Config
	}{
		{
			name:     "empty input yields zero config",
			configs:  nil,
			expected: Config{},
		},
		{
			name: "later config overrides earlier scalars",
			configs: []Config{
				{Owner: "octo", Repo: "hello", PullRequest: 7},
				{Owner: "acme", PullRequest: 9},
			},
			expected: Config{Owner: "acme", Repo: "hello", PullRequest: 9},
		},
		{
			name: "empty overlay fields keep base values",
			configs: []Config{
				{Platform: "github", APIHost: "https://api.github.com", TokenFile: "/tmp/token"},
				{},
			},
			expected: Config{Platform: "github", APIHost: "https://api.github.com", TokenFile: "/tmp/token"},
		},
		{
			name: "http section replaced as a unit",
			configs: []Config{
				{HTTP: HTTPConfig{Timeout: "30s", MaxRetries: 3}},
				{HTTP: HTTPConfig{Timeout: "10s"}},
			},
			expected: Config{HTTP: HTTPConfig{Timeout: "10s"}},
		},
		{
			name: "zero http overlay keeps base section",
			configs: []Config{
				{HTTP: HTTPConfig{Timeout: "30s", MaxRetries: 3}},
				{Owner: "acme"},
			},
			expected: Config{Owner: "acme", HTTP: HTTPConfig{Timeout: "30s", MaxRetries: 3}},
		},
		{
			name: "store overlay wins when set",
			configs: []Config{
				{Store: StoreConfig{Enabled: true, Path: "/var/db/a.db"}},
				{Store: StoreConfig{Path: "/var/db/b.db"}},
			},
			expected: Config{Store: StoreConfig{Path: "/var/db/b.db"}},
		},
		{
			name: "logging overlay replaces base logging",
			configs: []Config{
				{Observability: ObservabilityConfig{Logging: LoggingConfig{Enabled: true, Level: "info", Format: "human"}}},
				{Observability: ObservabilityConfig{Logging: LoggingConfig{Enabled: true, Level: "debug", Format: "json"}}},
			},
			expected: Config{Observability: ObservabilityConfig{Logging: LoggingConfig{Enabled: true, Level: "debug", Format: "json"}}},
		},
		{
			name: "resolver trace carries forward once set",
			configs: []Config{
				{Resolver: ResolverConfig{Trace: true}},
				{Owner: "acme"},
			},
			expected: Config{Owner: "acme", Resolver: ResolverConfig{Trace: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Merge(tt.configs...)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Platform: "github", Owner: "acme", Repo: "widgets", PullRequest: 42}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:   "empty platform defaults to github",
			mutate: func(c *Config) { c.Platform = "" },
		},
		{
			name:    "unsupported platform",
			mutate:  func(c *Config) { c.Platform = "gitlab" },
			wantErr: "unsupported platform",
		},
		{
			name:    "missing owner",
			mutate:  func(c *Config) { c.Owner = "" },
			wantErr: "owner is required",
		},
		{
			name:    "missing repo",
			mutate:  func(c *Config) { c.Repo = "" },
			wantErr: "repo is required",
		},
		{
			name:    "zero pull request",
			mutate:  func(c *Config) { c.PullRequest = 0 },
			wantErr: "pullRequest must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestToken(t *testing.T) {
	dir := t.TempDir()

	tokenFile := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("ghp_secret123\n"), 0o600))

	emptyFile := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(emptyFile, []byte("  \n"), 0o600))

	t.Run("reads and trims token", func(t *testing.T) {
		cfg := Config{TokenFile: tokenFile}
		token, err := cfg.Token()
		require.NoError(t, err)
		assert.Equal(t, "ghp_secret123", token)
	})

	t.Run("unconfigured token file", func(t *testing.T) {
		_, err := Config{}.Token()
		assert.ErrorContains(t, err, "tokenFile is not configured")
	})

	t.Run("missing token file", func(t *testing.T) {
		cfg := Config{TokenFile: filepath.Join(dir, "nope")}
		_, err := cfg.Token()
		assert.ErrorContains(t, err, "read token file")
	})

	t.Run("blank token file", func(t *testing.T) {
		cfg := Config{TokenFile: emptyFile}
		_, err := cfg.Token()
		assert.ErrorContains(t, err, "is empty")
	})
}
