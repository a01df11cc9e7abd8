package github

// GitHub Pull Request review comments API types.
// See: https://docs.github.com/en/rest/pulls/comments

// APIUser represents a GitHub user in a response.
type APIUser struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
	Type  string `json:"type"` // "User" or "Bot"
}

// APIComment is one review comment as returned by
// GET /repos/{owner}/{repo}/pulls/{pull_number}/comments.
// Line and StartLine are pointers because GitHub nulls them when the
// commented code no longer exists on the head commit (e.g. after a
// force-push); the Original* fields always carry the reviewed positions.
type APIComment struct {
	ID                int64   `json:"id"`
	InReplyToID       int64   `json:"in_reply_to_id,omitempty"`
	Body              string  `json:"body"`
	CommitID          string  `json:"commit_id"`
	OriginalCommitID  string  `json:"original_commit_id"`
	Line              *int    `json:"line"`
	StartLine         *int    `json:"start_line"`
	OriginalLine      int     `json:"original_line"`
	OriginalStartLine *int    `json:"original_start_line"`
	User              APIUser `json:"user"`
	DiffHunk          string  `json:"diff_hunk"`
	Path              string  `json:"path"`
	SubjectType       string  `json:"subject_type"`
	Side              string  `json:"side"`
	StartSide         *string `json:"start_side"`
	CreatedAt         string  `json:"created_at"`
}

// CreateCommentRequest is the request body for
// POST /repos/{owner}/{repo}/pulls/{pull_number}/comments.
// SubjectType "file" attaches the comment to the file as a whole, which is
// the only creation mode this client needs.
type CreateCommentRequest struct {
	Body        string `json:"body"`
	CommitID    string `json:"commit_id"`
	Path        string `json:"path"`
	SubjectType string `json:"subject_type"`
}

// ReplyRequest is the request body for
// POST /repos/{owner}/{repo}/pulls/{pull_number}/comments/{comment_id}/replies.
type ReplyRequest struct {
	Body string `json:"body"`
}

// GitHubErrorResponse represents an error response from the GitHub API.
type GitHubErrorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
	Errors           []struct {
		Resource string `json:"resource"`
		Field    string `json:"field"`
		Code     string `json:"code"`
		Message  string `json:"message"`
	} `json:"errors,omitempty"`
}
