package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"

	"github.com/bkyoung/review-lsp/internal/domain"
)

// ListPullRequestComments fetches all review comments on a pull request.
// This includes both starter comments and replies, already converted to the
// domain shape. The results are returned in chronological order (oldest first).
func (c *Client) ListPullRequestComments(ctx context.Context, owner, repo string, pullNumber int) ([]domain.ReviewComment, error) {
	// Validate path segments to prevent injection attacks
	if err := validatePathSegment(owner, "owner"); err != nil {
		return nil, err
	}
	if err := validatePathSegment(repo, "repo"); err != nil {
		return nil, err
	}

	var allComments []APIComment
	visitedURLs := make(map[string]bool) // Prevent infinite pagination loops
	pageCount := 0

	// Start with the first page
	nextURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments?per_page=100",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), pullNumber)

	for nextURL != "" {
		// Pagination loop protection
		if pageCount >= maxPaginationPages {
			return nil, fmt.Errorf("pagination limit exceeded (%d pages)", maxPaginationPages)
		}
		if visitedURLs[nextURL] {
			return nil, fmt.Errorf("pagination loop detected: URL already visited")
		}
		visitedURLs[nextURL] = true
		pageCount++

		pageComments, next, err := c.fetchCommentsPage(ctx, nextURL)
		if err != nil {
			return nil, err
		}
		allComments = append(allComments, pageComments...)

		// Validate and resolve pagination URL to prevent SSRF attacks
		if next != "" {
			resolved, err := c.validatePaginationURL(next)
			if err != nil {
				return nil, fmt.Errorf("unsafe pagination URL in Link header: %w", err)
			}
			next = resolved
		}
		nextURL = next
	}

	comments := ToDomainAll(allComments)
	sortCommentsChronologically(comments)

	return comments, nil
}

// fetchCommentsPage fetches a single page of comments and returns the next page URL if present.
func (c *Client) fetchCommentsPage(ctx context.Context, pageURL string) ([]APIComment, string, error) {
	resp, err := c.execute(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	var comments []APIComment
	if err := json.NewDecoder(resp.Body).Decode(&comments); err != nil {
		return nil, "", fmt.Errorf("failed to parse response: %w", err)
	}

	// Parse Link header for pagination
	nextURL := parseNextLink(resp.Header.Get("Link"))

	return comments, nextURL, nil
}

// RawComments fetches the first page of review comments and returns the raw
// JSON bytes unmodified. Used for debugging what the API actually reports.
func (c *Client) RawComments(ctx context.Context, owner, repo string, pullNumber int) ([]byte, error) {
	if err := validatePathSegment(owner, "owner"); err != nil {
		return nil, err
	}
	if err := validatePathSegment(repo, "repo"); err != nil {
		return nil, err
	}

	requestURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments?per_page=100",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), pullNumber)

	resp, err := c.execute(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return raw, nil
}

// sortCommentsChronologically sorts comments by CreatedAt timestamp (oldest first).
func sortCommentsChronologically(comments []domain.ReviewComment) {
	sort.SliceStable(comments, func(i, j int) bool {
		// CreatedAt is in RFC3339 format, which sorts lexicographically
		return comments[i].CreatedAt < comments[j].CreatedAt
	})
}
