// Package review fetches the review comments of a pull request, keeps a
// local snapshot of them, and groups them into conversations for the LSP
// backend and the CLI.
package review

import (
	"context"
	"fmt"

	"github.com/bkyoung/review-lsp/internal/adapter/store/sqlite"
	"github.com/bkyoung/review-lsp/internal/domain"
)

// CommentSource fetches review comments from the review platform.
type CommentSource interface {
	ListPullRequestComments(ctx context.Context, owner, repo string, pullNumber int) ([]domain.ReviewComment, error)
}

// SnapshotStore persists the last fetched comment set per pull request.
type SnapshotStore interface {
	Save(ctx context.Context, key sqlite.Key, comments []domain.ReviewComment) error
	Load(ctx context.Context, key sqlite.Key) ([]domain.ReviewComment, error)
}

// Target identifies the pull request the service operates on.
type Target struct {
	Owner      string
	Repo       string
	PullNumber int
}

func (t Target) storeKey() sqlite.Key {
	return sqlite.Key{Owner: t.Owner, Repo: t.Repo, PullNumber: t.PullNumber}
}

// Service orchestrates comment fetching, snapshotting, and grouping.
// The store and logger are optional; a nil store disables snapshots and the
// offline fallback.
type Service struct {
	source CommentSource
	store  SnapshotStore
	logger Logger
	target Target
}

// NewService creates a review service for one pull request.
func NewService(source CommentSource, store SnapshotStore, logger Logger, target Target) *Service {
	return &Service{
		source: source,
		store:  store,
		logger: logger,
		target: target,
	}
}

// Comments returns the current comment set, fetching from the platform and
// refreshing the snapshot. When fetching fails and a snapshot exists, the
// snapshot is returned with a warning instead of the error.
func (s *Service) Comments(ctx context.Context) ([]domain.ReviewComment, error) {
	comments, err := s.source.ListPullRequestComments(ctx, s.target.Owner, s.target.Repo, s.target.PullNumber)
	if err != nil {
		if s.store == nil {
			return nil, fmt.Errorf("fetch comments: %w", err)
		}

		cached, loadErr := s.store.Load(ctx, s.target.storeKey())
		if loadErr != nil {
			// No fallback available, the fetch error is the interesting one
			return nil, fmt.Errorf("fetch comments: %w", err)
		}

		s.logWarning(ctx, "comment fetch failed, serving snapshot", map[string]interface{}{
			"error":    err.Error(),
			"comments": len(cached),
		})
		return cached, nil
	}

	if s.store != nil {
		if saveErr := s.store.Save(ctx, s.target.storeKey(), comments); saveErr != nil {
			// Snapshot failures must not break the live path
			s.logWarning(ctx, "failed to persist comment snapshot", map[string]interface{}{
				"error": saveErr.Error(),
			})
		}
	}

	return comments, nil
}

// CachedComments returns the snapshot without touching the platform.
func (s *Service) CachedComments(ctx context.Context) ([]domain.ReviewComment, error) {
	if s.store == nil {
		return nil, fmt.Errorf("snapshot store disabled")
	}
	comments, err := s.store.Load(ctx, s.target.storeKey())
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return comments, nil
}

// Conversation fetches the current comment set and groups it.
func (s *Service) Conversation(ctx context.Context) (*domain.Conversation, error) {
	comments, err := s.Comments(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewConversation(comments), nil
}

// CachedConversation groups the snapshot without fetching.
func (s *Service) CachedConversation(ctx context.Context) (*domain.Conversation, error) {
	comments, err := s.CachedComments(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewConversation(comments), nil
}

func (s *Service) logWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.LogWarning(ctx, message, fields)
	}
}
