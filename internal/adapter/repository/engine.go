// Package repository inspects the working copy the edited documents live in.
// The server compares a comment's recorded commit against the local HEAD to
// decide whether anchor drift is expected before resolving.
package repository

import (
	"fmt"

	goGit "github.com/go-git/go-git/v5"
)

// Engine answers questions about the local checkout, backed by go-git.
type Engine struct {
	repoDir string
}

// NewEngine constructs an engine for the provided repository directory.
// The directory may be anywhere inside the working tree.
func NewEngine(repoDir string) *Engine {
	return &Engine{repoDir: repoDir}
}

func (e *Engine) open() (*goGit.Repository, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	return repo, nil
}

// Head returns the hash of the checked-out commit.
func (e *Engine) Head() (string, error) {
	repo, err := e.open()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// CurrentBranch returns the name of the checked-out branch.
func (e *Engine) CurrentBranch() (string, error) {
	repo, err := e.open()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	name := head.Name()
	if name.IsBranch() {
		return name.Short(), nil
	}
	return "", fmt.Errorf("detached HEAD")
}

// IsClean reports whether the working tree has no uncommitted changes.
func (e *Engine) IsClean() (bool, error) {
	repo, err := e.open()
	if err != nil {
		return false, err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("worktree status: %w", err)
	}
	return status.IsClean(), nil
}

// MatchesCommit reports whether HEAD equals the given commit hash. A short
// hash matches on its prefix, the way git abbreviates.
func (e *Engine) MatchesCommit(commitHash string) (bool, error) {
	if commitHash == "" {
		return false, nil
	}
	head, err := e.Head()
	if err != nil {
		return false, err
	}
	if len(commitHash) < len(head) {
		return head[:len(commitHash)] == commitHash, nil
	}
	return head == commitHash, nil
}
