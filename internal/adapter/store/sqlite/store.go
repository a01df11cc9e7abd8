// Package sqlite caches the last fetched comment set per pull request.
// The snapshot serves offline printing and acts as a fallback when the
// review platform cannot be reached.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bkyoung/review-lsp/internal/domain"
)

// Key identifies the pull request a snapshot belongs to.
type Key struct {
	Owner      string
	Repo       string
	PullNumber int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s#%d", k.Owner, k.Repo, k.PullNumber)
}

// Store persists comment snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- One row per fetched pull request
	CREATE TABLE IF NOT EXISTS snapshots (
		snapshot_id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner TEXT NOT NULL,
		repo TEXT NOT NULL,
		pull_number INTEGER NOT NULL,
		fetched_at INTEGER NOT NULL,
		UNIQUE(owner, repo, pull_number)
	);

	-- Comments belonging to a snapshot
	CREATE TABLE IF NOT EXISTS comments (
		comment_id INTEGER NOT NULL,
		snapshot_id INTEGER NOT NULL,
		in_reply_to_id INTEGER NOT NULL DEFAULT 0,
		body TEXT NOT NULL,
		commit_id TEXT NOT NULL,
		original_commit_id TEXT NOT NULL,
		line INTEGER NOT NULL DEFAULT 0,
		start_line INTEGER NOT NULL DEFAULT 0,
		original_line INTEGER NOT NULL DEFAULT 0,
		original_start_line INTEGER NOT NULL DEFAULT 0,
		user_login TEXT NOT NULL,
		user_id INTEGER NOT NULL DEFAULT 0,
		diff_hunk TEXT NOT NULL,
		path TEXT NOT NULL,
		subject_type INTEGER NOT NULL DEFAULT 0,
		side TEXT NOT NULL DEFAULT '',
		start_side TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL,
		PRIMARY KEY (snapshot_id, comment_id),
		FOREIGN KEY (snapshot_id) REFERENCES snapshots(snapshot_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_key ON snapshots(owner, repo, pull_number);
	CREATE INDEX IF NOT EXISTS idx_comments_snapshot ON comments(snapshot_id, position);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save replaces the stored snapshot for the key with the given comments.
// The old snapshot and all its comments are removed in the same transaction,
// so readers never observe a half-written set.
func (s *Store) Save(ctx context.Context, key Key, comments []domain.ReviewComment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshots WHERE owner = ? AND repo = ? AND pull_number = ?`,
		key.Owner, key.Repo, key.PullNumber,
	); err != nil {
		return fmt.Errorf("failed to delete previous snapshot: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (owner, repo, pull_number, fetched_at) VALUES (?, ?, ?, ?)`,
		key.Owner, key.Repo, key.PullNumber, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	snapshotID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get snapshot ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO comments (
			comment_id, snapshot_id, in_reply_to_id, body, commit_id, original_commit_id,
			line, start_line, original_line, original_start_line,
			user_login, user_id, diff_hunk, path, subject_type, side, start_side, created_at, position
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, c := range comments {
		if _, err := stmt.ExecContext(ctx,
			c.ID,
			snapshotID,
			c.InReplyToID,
			c.Body,
			c.CommitID,
			c.OriginalCommitID,
			c.Line,
			c.StartLine,
			c.OriginalLine,
			c.OriginalStartLine,
			c.User.Login,
			c.User.ID,
			c.DiffHunk,
			c.Path,
			int(c.SubjectType),
			c.Side,
			c.StartSide,
			c.CreatedAt,
			i,
		); err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Load retrieves the stored snapshot for the key in the order it was saved.
// A key that was never saved yields an error.
func (s *Store) Load(ctx context.Context, key Key) ([]domain.ReviewComment, error) {
	var snapshotID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot_id FROM snapshots WHERE owner = ? AND repo = ? AND pull_number = ?`,
		key.Owner, key.Repo, key.PullNumber,
	).Scan(&snapshotID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no snapshot for %s", key)
		}
		return nil, fmt.Errorf("failed to look up snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT comment_id, in_reply_to_id, body, commit_id, original_commit_id,
			line, start_line, original_line, original_start_line,
			user_login, user_id, diff_hunk, path, subject_type, side, start_side, created_at
		FROM comments
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.ReviewComment
	for rows.Next() {
		var c domain.ReviewComment
		var subjectType int

		if err := rows.Scan(
			&c.ID,
			&c.InReplyToID,
			&c.Body,
			&c.CommitID,
			&c.OriginalCommitID,
			&c.Line,
			&c.StartLine,
			&c.OriginalLine,
			&c.OriginalStartLine,
			&c.User.Login,
			&c.User.ID,
			&c.DiffHunk,
			&c.Path,
			&subjectType,
			&c.Side,
			&c.StartSide,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}

		c.SubjectType = domain.SubjectType(subjectType)
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// FetchedAt returns when the snapshot for the key was taken.
func (s *Store) FetchedAt(ctx context.Context, key Key) (time.Time, error) {
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM snapshots WHERE owner = ? AND repo = ? AND pull_number = ?`,
		key.Owner, key.Repo, key.PullNumber,
	).Scan(&fetchedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, fmt.Errorf("no snapshot for %s", key)
		}
		return time.Time{}, fmt.Errorf("failed to look up snapshot: %w", err)
	}
	return time.Unix(fetchedAt, 0), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
