package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkyoung/review-lsp/internal/adapter/github"
	"github.com/bkyoung/review-lsp/internal/config"
	"github.com/bkyoung/review-lsp/internal/domain"
	"github.com/bkyoung/review-lsp/internal/usecase/review"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// ConversationSource defines the dependency required by the print command.
type ConversationSource interface {
	Conversation(ctx context.Context) (*domain.Conversation, error)
	CachedConversation(ctx context.Context) (*domain.Conversation, error)
}

// Server runs the LSP server; used by the serve command and the bare root.
type Server interface {
	RunStdio() error
}

// Platform captures the review-platform operations the raw, reply, and
// comment commands need.
type Platform interface {
	RawComments(ctx context.Context, owner, repo string, pullNumber int) ([]byte, error)
	ReplyToComment(ctx context.Context, owner, repo string, pullNumber int, commentID int64, body string) (*domain.ReviewComment, error)
	CreateComment(ctx context.Context, owner, repo string, pullNumber int, input github.CommentInput) (*domain.ReviewComment, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Conversations ConversationSource
	Server        Server
	Platform      Platform
	Config        config.Config
	ConfigPath    string // where init and update write
	Args          Arguments
	Version       string
}

// NewRootCommand constructs the root Cobra command. Running rvw without a
// subcommand starts the LSP server, so editors can point at the bare binary.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "rvw",
		Short: "Surface pull request review comments in your editor",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(initCommand(deps))
	root.AddCommand(updateCommand(deps))
	root.AddCommand(serveCommand(deps.Server))
	root.AddCommand(printCommand(deps))
	root.AddCommand(rawCommand(deps))
	root.AddCommand(replyCommand(deps))
	root.AddCommand(commentCommand(deps))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return runServe(deps.Server)
	}

	return root
}

// configFlags registers the configuration fields init and update accept and
// returns a closure that overlays the flags that were actually set onto base.
func configFlags(cmd *cobra.Command) func(base config.Config) config.Config {
	var (
		owner         string
		repo          string
		pullRequest   int
		tokenFile     string
		apiHost       string
		repositoryDir string
		storePath     string
		trace         bool
	)

	cmd.Flags().StringVar(&owner, "owner", "", "Repository owner")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository name")
	cmd.Flags().IntVar(&pullRequest, "pull-request", 0, "Pull request number")
	cmd.Flags().StringVar(&tokenFile, "token-file", "", "Path to a file holding the API token")
	cmd.Flags().StringVar(&apiHost, "api-host", "", "API host (for GitHub Enterprise)")
	cmd.Flags().StringVar(&repositoryDir, "repository-dir", "", "Working copy the reviewed documents live in")
	cmd.Flags().StringVar(&storePath, "store-path", "", "Snapshot database path")
	cmd.Flags().BoolVar(&trace, "trace", false, "Log per-comment resolution decisions")

	return func(base config.Config) config.Config {
		overlay := config.Config{
			Owner:       owner,
			Repo:        repo,
			PullRequest: pullRequest,
			TokenFile:   tokenFile,
			APIHost:     apiHost,
			Git:         config.GitConfig{RepositoryDir: repositoryDir},
			Store:       config.StoreConfig{Path: storePath},
		}
		if cmd.Flags().Changed("trace") {
			overlay.Resolver = config.ResolverConfig{Trace: trace}
		}
		return config.Merge(base, overlay)
	}
}

func initCommand(deps Dependencies) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from flags",
	}
	overlay := configFlags(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		path := deps.ConfigPath
		if !force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			}
		}
		cfg := overlay(config.Config{Platform: "github", APIHost: "https://api.github.com"})
		if err := config.Write(cfg, path); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	}
	return cmd
}

func updateCommand(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the configuration file from flags",
	}
	overlay := configFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg := overlay(deps.Config)
		if err := config.Write(cfg, deps.ConfigPath); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", deps.ConfigPath)
		return nil
	}
	return cmd
}

func serveCommand(server Server) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the LSP server on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(server)
		},
	}
}

func runServe(server Server) error {
	if server == nil {
		return fmt.Errorf("server is not configured; run rvw init first")
	}
	return server.RunStdio()
}

func printCommand(deps Dependencies) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the pull request conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Conversations == nil {
				return fmt.Errorf("review service is not configured; run rvw init first")
			}
			ctx := cmd.Context()

			var conversation *domain.Conversation
			var err error
			if offline {
				conversation, err = deps.Conversations.CachedConversation(ctx)
			} else {
				conversation, err = deps.Conversations.Conversation(ctx)
			}
			if err != nil {
				return fmt.Errorf("load conversations: %w", err)
			}

			// Decorate only when writing straight to a terminal.
			decorated := deps.Args.OutWriter == nil && review.IsOutputTerminal()
			printer := review.NewPrinter(cmd.OutOrStdout(), decorated)
			return printer.Print(conversation)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the local snapshot instead of fetching")
	return cmd
}

func rawCommand(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "raw",
		Short: "Dump the raw comment listing response",
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Platform == nil {
				return fmt.Errorf("platform client is not configured; run rvw init first")
			}
			body, err := deps.Platform.RawComments(cmd.Context(), deps.Config.Owner, deps.Config.Repo, deps.Config.PullRequest)
			if err != nil {
				return fmt.Errorf("fetch raw comments: %w", err)
			}
			_, _ = cmd.OutOrStdout().Write(body)
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func replyCommand(deps Dependencies) *cobra.Command {
	var commentID int64
	var body string

	cmd := &cobra.Command{
		Use:   "reply",
		Short: "Reply to a review comment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Platform == nil {
				return fmt.Errorf("platform client is not configured; run rvw init first")
			}
			if commentID <= 0 {
				return fmt.Errorf("--comment must be a positive comment id")
			}
			if body == "" {
				return fmt.Errorf("--body is required")
			}
			created, err := deps.Platform.ReplyToComment(cmd.Context(), deps.Config.Owner, deps.Config.Repo, deps.Config.PullRequest, commentID, body)
			if err != nil {
				return fmt.Errorf("reply to comment %d: %w", commentID, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "replied as comment %d\n", created.ID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&commentID, "comment", 0, "Comment id to reply to")
	cmd.Flags().StringVar(&body, "body", "", "Reply body")
	return cmd
}

func commentCommand(deps Dependencies) *cobra.Command {
	var path string
	var commitSHA string
	var body string

	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Start a file-level review comment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Platform == nil {
				return fmt.Errorf("platform client is not configured; run rvw init first")
			}
			if path == "" {
				return fmt.Errorf("--path is required")
			}
			if commitSHA == "" {
				return fmt.Errorf("--commit-sha is required")
			}
			if body == "" {
				return fmt.Errorf("--body is required")
			}
			created, err := deps.Platform.CreateComment(cmd.Context(), deps.Config.Owner, deps.Config.Repo, deps.Config.PullRequest, github.CommentInput{
				Body:     body,
				CommitID: commitSHA,
				Path:     path,
			})
			if err != nil {
				return fmt.Errorf("create comment on %s: %w", path, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created comment %d\n", created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "File the comment is about")
	cmd.Flags().StringVar(&commitSHA, "commit-sha", "", "Head commit the comment anchors to")
	cmd.Flags().StringVar(&body, "body", "", "Comment body")
	return cmd
}
