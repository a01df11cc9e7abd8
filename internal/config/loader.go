package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// LoaderOptions describes how configuration should be discovered.
type LoaderOptions struct {
	ConfigPaths []string
	FileName    string
	EnvPrefix   string
}

// Load returns the merged configuration from files and environment variables.
func Load(opts LoaderOptions) (Config, error) {
	v := viper.New()

	name := opts.FileName
	if name == "" {
		name = ".rvw"
	}

	configFile := locateConfigFile(name, opts.ConfigPaths)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(name)
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = "RVW"
	}
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AllowEmptyEnv(true)

	setDefaults(v)

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// Expand environment variables in config values
	cfg = expandEnvVars(cfg)

	return cfg, nil
}

// Write persists the configuration as YAML at the given path, creating
// parent directories as needed. Used by the init and update commands.
func Write(cfg Config, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	v := viper.New()
	v.Set("platform", cfg.Platform)
	v.Set("owner", cfg.Owner)
	v.Set("repo", cfg.Repo)
	v.Set("apiHost", cfg.APIHost)
	v.Set("pullRequest", cfg.PullRequest)
	v.Set("tokenFile", cfg.TokenFile)
	v.Set("http.timeout", cfg.HTTP.Timeout)
	v.Set("http.maxRetries", cfg.HTTP.MaxRetries)
	v.Set("http.initialBackoff", cfg.HTTP.InitialBackoff)
	v.Set("http.maxBackoff", cfg.HTTP.MaxBackoff)
	v.Set("http.backoffMultiplier", cfg.HTTP.BackoffMultiplier)
	v.Set("git.repositoryDir", cfg.Git.RepositoryDir)
	v.Set("store.enabled", cfg.Store.Enabled)
	v.Set("store.path", cfg.Store.Path)
	v.Set("observability.logging.enabled", cfg.Observability.Logging.Enabled)
	v.Set("observability.logging.level", cfg.Observability.Logging.Level)
	v.Set("observability.logging.format", cfg.Observability.Logging.Format)
	v.Set("observability.logging.redactTokens", cfg.Observability.Logging.RedactTokens)
	v.Set("resolver.trace", cfg.Resolver.Trace)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// expandEnvVars expands ${VAR} and $VAR syntax in configuration strings.
func expandEnvVars(cfg Config) Config {
	cfg.Owner = expandEnvString(cfg.Owner)
	cfg.Repo = expandEnvString(cfg.Repo)
	cfg.APIHost = expandEnvString(cfg.APIHost)
	cfg.TokenFile = expandEnvString(cfg.TokenFile)

	// Expand HTTP config
	cfg.HTTP.Timeout = expandEnvString(cfg.HTTP.Timeout)
	cfg.HTTP.InitialBackoff = expandEnvString(cfg.HTTP.InitialBackoff)
	cfg.HTTP.MaxBackoff = expandEnvString(cfg.HTTP.MaxBackoff)

	// Expand git config
	cfg.Git.RepositoryDir = expandEnvString(cfg.Git.RepositoryDir)

	// Expand store config
	cfg.Store.Path = expandEnvString(cfg.Store.Path)

	// Expand observability config
	cfg.Observability.Logging.Level = expandEnvString(cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = expandEnvString(cfg.Observability.Logging.Format)

	return cfg
}

// expandEnvString replaces ${VAR} or $VAR with environment variable values.
func expandEnvString(s string) string {
	if s == "" {
		return s
	}

	// Replace ${VAR} syntax
	re := regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Keep original if not found
	})

	// Replace $VAR syntax (without braces)
	re = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:] // Remove $
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Keep original if not found
	})

	return s
}

func locateConfigFile(name string, paths []string) string {
	searchPaths := append([]string{}, paths...)
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, home)
	}
	searchPaths = append(searchPaths, ".")
	for _, dir := range searchPaths {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name+".yaml")
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("platform", "github")
	v.SetDefault("apiHost", "https://api.github.com")

	// HTTP defaults
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.maxRetries", 3)
	v.SetDefault("http.initialBackoff", "2s")
	v.SetDefault("http.maxBackoff", "32s")
	v.SetDefault("http.backoffMultiplier", 2.0)

	// Store defaults
	v.SetDefault("store.enabled", true)
	v.SetDefault("store.path", defaultStorePath())

	// Observability defaults
	v.SetDefault("observability.logging.enabled", true)
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "human")
	v.SetDefault("observability.logging.redactTokens", true)

	// Resolver defaults
	v.SetDefault("resolver.trace", false)
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./rvw.db"
	}
	return filepath.Join(home, ".config", "rvw", "rvw.db")
}
