package config

import (
	"fmt"
	"os"
	"strings"
)

// Config represents the full application configuration.
type Config struct {
	Platform      string              `yaml:"platform" mapstructure:"platform"`
	Owner         string              `yaml:"owner" mapstructure:"owner"`
	Repo          string              `yaml:"repo" mapstructure:"repo"`
	APIHost       string              `yaml:"apiHost" mapstructure:"apiHost"`
	PullRequest   int                 `yaml:"pullRequest" mapstructure:"pullRequest"`
	TokenFile     string              `yaml:"tokenFile" mapstructure:"tokenFile"`
	HTTP          HTTPConfig          `yaml:"http" mapstructure:"http"`
	Git           GitConfig           `yaml:"git" mapstructure:"git"`
	Store         StoreConfig         `yaml:"store" mapstructure:"store"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Resolver      ResolverConfig      `yaml:"resolver" mapstructure:"resolver"`
}

// HTTPConfig holds global HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries        int     `yaml:"maxRetries" mapstructure:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff" mapstructure:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff" mapstructure:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier" mapstructure:"backoffMultiplier"`
}

// GitConfig locates the working copy the edited documents live in.
type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir" mapstructure:"repositoryDir"`
}

// StoreConfig configures the snapshot persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	Level        string `yaml:"level" mapstructure:"level"`   // debug, info, error
	Format       string `yaml:"format" mapstructure:"format"` // json, human
	RedactTokens bool   `yaml:"redactTokens" mapstructure:"redactTokens"`
}

// ResolverConfig configures line-range resolution.
type ResolverConfig struct {
	// Trace enables per-comment resolution logging.
	Trace bool `yaml:"trace" mapstructure:"trace"`
}

// Validate checks the fields every command needs.
func (c Config) Validate() error {
	if c.Platform != "" && c.Platform != "github" {
		return fmt.Errorf("unsupported platform %q (only github is supported)", c.Platform)
	}
	if c.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	if c.Repo == "" {
		return fmt.Errorf("repo is required")
	}
	if c.PullRequest <= 0 {
		return fmt.Errorf("pullRequest must be positive")
	}
	return nil
}

// Token reads the API token from the configured token file. The file holds
// the bare token, optionally newline-terminated.
func (c Config) Token() (string, error) {
	if c.TokenFile == "" {
		return "", fmt.Errorf("tokenFile is not configured")
	}
	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", c.TokenFile)
	}
	return token, nil
}

// Merge combines multiple configuration instances, prioritising the latter ones.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	if overlay.Platform != "" {
		result.Platform = overlay.Platform
	}
	if overlay.Owner != "" {
		result.Owner = overlay.Owner
	}
	if overlay.Repo != "" {
		result.Repo = overlay.Repo
	}
	if overlay.APIHost != "" {
		result.APIHost = overlay.APIHost
	}
	if overlay.PullRequest != 0 {
		result.PullRequest = overlay.PullRequest
	}
	if overlay.TokenFile != "" {
		result.TokenFile = overlay.TokenFile
	}

	result.HTTP = chooseHTTP(base.HTTP, overlay.HTTP)
	result.Git = chooseGit(base.Git, overlay.Git)
	result.Store = chooseStore(base.Store, overlay.Store)
	result.Observability = chooseObservability(base.Observability, overlay.Observability)
	if overlay.Resolver.Trace {
		result.Resolver = overlay.Resolver
	}

	return result
}

func chooseHTTP(base, overlay HTTPConfig) HTTPConfig {
	if overlay.Timeout != "" || overlay.MaxRetries != 0 || overlay.InitialBackoff != "" || overlay.MaxBackoff != "" || overlay.BackoffMultiplier != 0 {
		return overlay
	}
	return base
}

func chooseGit(base, overlay GitConfig) GitConfig {
	if overlay.RepositoryDir != "" {
		return overlay
	}
	return base
}

func chooseStore(base, overlay StoreConfig) StoreConfig {
	if overlay.Enabled || overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseObservability(base, overlay ObservabilityConfig) ObservabilityConfig {
	result := base
	if overlay.Logging.Enabled || overlay.Logging.Level != "" || overlay.Logging.Format != "" {
		result.Logging = overlay.Logging
	}
	return result
}
