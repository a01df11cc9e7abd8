package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/bkyoung/review-lsp/internal/adapter/cli"
	"github.com/bkyoung/review-lsp/internal/adapter/github"
	"github.com/bkyoung/review-lsp/internal/adapter/httpapi"
	"github.com/bkyoung/review-lsp/internal/adapter/lsp"
	"github.com/bkyoung/review-lsp/internal/adapter/observability"
	"github.com/bkyoung/review-lsp/internal/adapter/repository"
	"github.com/bkyoung/review-lsp/internal/adapter/store/sqlite"
	"github.com/bkyoung/review-lsp/internal/config"
	"github.com/bkyoung/review-lsp/internal/domain"
	"github.com/bkyoung/review-lsp/internal/usecase/resolve"
	"github.com/bkyoung/review-lsp/internal/usecase/review"
	"github.com/bkyoung/review-lsp/internal/version"
)

const serverName = "rvw"

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    ".rvw",
		EnvPrefix:   "RVW",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	fieldLogger := buildLogger(cfg.Observability)

	deps := cli.Dependencies{
		Config:     cfg,
		ConfigPath: ".rvw.yaml",
		Version:    version.Value(),
	}

	// The read/write commands and the server need a complete configuration;
	// init and update must work without one.
	if err := cfg.Validate(); err == nil {
		wired, cleanup, wireErr := wire(cfg, fieldLogger)
		if wireErr != nil {
			log.Printf("warning: %v", wireErr)
		} else {
			deps.Conversations = wired.conversations
			deps.Server = wired.server
			deps.Platform = wired.platform
			defer cleanup()
		}
	}

	root := cli.NewRootCommand(deps)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

type wiring struct {
	conversations cli.ConversationSource
	server        cli.Server
	platform      cli.Platform
}

func wire(cfg config.Config, fieldLogger httpapi.FieldLogger) (wiring, func(), error) {
	token, err := cfg.Token()
	if err != nil {
		return wiring{}, nil, fmt.Errorf("platform features disabled: %w", err)
	}

	client := github.NewClient(token)
	if cfg.APIHost != "" {
		client.SetBaseURL(cfg.APIHost)
	}
	applyHTTPConfig(client, cfg.HTTP)
	if logger, ok := fieldLogger.(httpapi.Logger); ok {
		client.SetLogger(logger)
	}

	var reviewLogger review.Logger
	if fieldLogger != nil {
		reviewLogger = observability.NewReviewLogger(fieldLogger)
	}

	cleanup := func() {}
	var snapshots review.SnapshotStore
	if cfg.Store.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else if store, err := sqlite.NewStore(cfg.Store.Path); err != nil {
			log.Printf("warning: failed to initialize snapshot store: %v", err)
		} else {
			snapshots = store
			cleanup = func() { _ = store.Close() }
		}
	}

	service := review.NewService(client, snapshots, reviewLogger, review.Target{
		Owner:      cfg.Owner,
		Repo:       cfg.Repo,
		PullNumber: cfg.PullRequest,
	})

	source := &driftWarningSource{
		inner:  service,
		engine: repository.NewEngine(repoDir(cfg)),
		logger: reviewLogger,
	}

	var resolveLogger resolve.Logger
	if fieldLogger != nil {
		resolveLogger = observability.NewResolveLogger(fieldLogger)
	}
	resolver := resolve.NewResolver(resolve.Options{
		Logger: resolveLogger,
		Trace:  cfg.Resolver.Trace,
	})

	backend := lsp.NewBackend(serverName, version.Value(), source, resolver)

	return wiring{conversations: source, server: backend, platform: client}, cleanup, nil
}

func repoDir(cfg config.Config) string {
	if cfg.Git.RepositoryDir != "" {
		return cfg.Git.RepositoryDir
	}
	return "."
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "rvw"))
	}
	return paths
}

// buildLogger creates the structured logger based on configuration.
func buildLogger(cfg config.ObservabilityConfig) httpapi.FieldLogger {
	if !cfg.Logging.Enabled {
		return nil
	}

	logLevel := httpapi.LogLevelInfo
	switch cfg.Logging.Level {
	case "debug":
		logLevel = httpapi.LogLevelDebug
	case "error":
		logLevel = httpapi.LogLevelError
	}

	logFormat := httpapi.LogFormatHuman
	if cfg.Logging.Format == "json" {
		logFormat = httpapi.LogFormatJSON
	}

	return httpapi.NewDefaultLogger(logLevel, logFormat, cfg.Logging.RedactTokens)
}

// applyHTTPConfig translates the string durations from the config file into
// the client's timeout and retry settings. Invalid values keep the defaults.
func applyHTTPConfig(client *github.Client, cfg config.HTTPConfig) {
	if cfg.Timeout != "" {
		if timeout, err := time.ParseDuration(cfg.Timeout); err == nil {
			client.SetTimeout(timeout)
		} else {
			log.Printf("warning: invalid http timeout %q, using default", cfg.Timeout)
		}
	}

	retry := httpapi.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	if cfg.InitialBackoff != "" {
		if backoff, err := time.ParseDuration(cfg.InitialBackoff); err == nil {
			retry.InitialBackoff = backoff
		}
	}
	if cfg.MaxBackoff != "" {
		if backoff, err := time.ParseDuration(cfg.MaxBackoff); err == nil {
			retry.MaxBackoff = backoff
		}
	}
	if cfg.BackoffMultiplier > 0 {
		retry.Multiplier = cfg.BackoffMultiplier
	}
	client.SetRetryConfig(retry)
}

// driftWarningSource wraps the review service and, on the first successful
// fetch, warns when the working tree is not at the commit the comments were
// made against. Resolution still works; anchors just drift with local edits.
type driftWarningSource struct {
	inner  *review.Service
	engine *repository.Engine
	logger review.Logger
	once   sync.Once
}

func (d *driftWarningSource) Conversation(ctx context.Context) (*domain.Conversation, error) {
	conversation, err := d.inner.Conversation(ctx)
	if err == nil {
		d.once.Do(func() { d.warnOnDrift(ctx, conversation) })
	}
	return conversation, err
}

func (d *driftWarningSource) CachedConversation(ctx context.Context) (*domain.Conversation, error) {
	return d.inner.CachedConversation(ctx)
}

func (d *driftWarningSource) warnOnDrift(ctx context.Context, conversation *domain.Conversation) {
	if d.logger == nil || d.engine == nil {
		return
	}
	for _, starter := range conversation.Starters() {
		commit := starter.CommitID
		if commit == "" {
			commit = starter.OriginalCommitID
		}
		if commit == "" {
			continue
		}
		matches, err := d.engine.MatchesCommit(commit)
		if err != nil || matches {
			return
		}
		head, _ := d.engine.Head()
		d.logger.LogWarning(ctx, "working tree is not at the reviewed commit, anchors may drift", map[string]interface{}{
			"reviewed_commit": commit,
			"head":            head,
		})
		return
	}
}

// Compile-time interface compliance checks
var _ review.CommentSource = (*github.Client)(nil)
var _ review.SnapshotStore = (*sqlite.Store)(nil)
var _ cli.Platform = (*github.Client)(nil)
var _ cli.ConversationSource = (*driftWarningSource)(nil)
var _ lsp.ConversationSource = (*driftWarningSource)(nil)
var _ lsp.Resolver = (*resolve.Resolver)(nil)
