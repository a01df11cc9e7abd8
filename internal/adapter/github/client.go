package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bkyoung/review-lsp/internal/adapter/httpapi"
	"github.com/bkyoung/review-lsp/internal/domain"
)

const (
	defaultBaseURL        = "https://api.github.com"
	defaultTimeout        = 30 * time.Second
	defaultMaxRetries     = 3
	defaultInitialBackoff = 2 * time.Second
)

// Client is an HTTP client for the GitHub Pull Request review comments API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	retryConf  httpapi.RetryConfig
	logger     httpapi.Logger
}

// NewClient creates a new GitHub API client with the given token.
// The token should be a GitHub personal access token or GITHUB_TOKEN from Actions.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryConf: httpapi.RetryConfig{
			MaxRetries:     defaultMaxRetries,
			InitialBackoff: defaultInitialBackoff,
			MaxBackoff:     32 * time.Second,
			Multiplier:     2.0,
		},
	}
}

// SetBaseURL sets a custom base URL (GitHub Enterprise hosts, testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// SetRetryConfig replaces the retry configuration.
func (c *Client) SetRetryConfig(conf httpapi.RetryConfig) {
	c.retryConf = conf
}

// SetLogger installs a request/response logger. A nil logger disables logging.
func (c *Client) SetLogger(logger httpapi.Logger) {
	c.logger = logger
}

// execute performs one API call with retry, returning the response with an
// unconsumed body on success. Error statuses are mapped to typed errors.
func (c *Client) execute(ctx context.Context, method, requestURL string, body []byte) (*http.Response, error) {
	start := time.Now()
	if c.logger != nil {
		c.logger.LogRequest(ctx, httpapi.RequestLog{
			Service:   serviceName,
			Method:    method,
			Path:      requestURL,
			Timestamp: start,
			Token:     c.token,
		})
	}

	var resp *http.Response
	err := httpapi.RetryWithBackoff(ctx, func(ctx context.Context) error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, reqErr := http.NewRequestWithContext(ctx, method, requestURL, reader)
		if reqErr != nil {
			return &httpapi.Error{
				Type:      httpapi.ErrTypeUnknown,
				Message:   reqErr.Error(),
				Retryable: false,
				Service:   serviceName,
			}
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		var callErr error
		resp, callErr = c.httpClient.Do(req)
		if callErr != nil {
			// Could be timeout or network error
			return &httpapi.Error{
				Type:      httpapi.ErrTypeTimeout,
				Message:   callErr.Error(),
				Retryable: true,
				Service:   serviceName,
			}
		}

		if resp.StatusCode >= 400 {
			bodyBytes, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				// If we can't read the error body, return a generic error with the status code
				return &httpapi.Error{
					Type:       httpapi.ErrTypeUnknown,
					Message:    fmt.Sprintf("HTTP %d (failed to read response: %v)", resp.StatusCode, readErr),
					StatusCode: resp.StatusCode,
					Retryable:  resp.StatusCode >= 500,
					Service:    serviceName,
				}
			}
			return MapHTTPError(resp.StatusCode, bodyBytes)
		}

		return nil
	}, c.retryConf)

	if err != nil {
		if c.logger != nil {
			errLog := httpapi.ErrorLog{
				Service:   serviceName,
				Method:    method,
				Path:      requestURL,
				Timestamp: time.Now(),
				Duration:  time.Since(start),
				Error:     err,
			}
			var apiErr *httpapi.Error
			if errors.As(err, &apiErr) {
				errLog.ErrorType = apiErr.Type
				errLog.StatusCode = apiErr.StatusCode
				errLog.Retryable = apiErr.Retryable
			}
			c.logger.LogError(ctx, errLog)
		}
		return nil, err
	}

	if c.logger != nil {
		c.logger.LogResponse(ctx, httpapi.ResponseLog{
			Service:    serviceName,
			Method:     method,
			Path:       requestURL,
			Timestamp:  time.Now(),
			Duration:   time.Since(start),
			StatusCode: resp.StatusCode,
		})
	}

	return resp, nil
}

// CommentInput contains the data needed to create a file-level review comment.
type CommentInput struct {
	Body     string
	CommitID string
	Path     string
}

// CreateComment posts a new file-level review comment on a pull request.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, pullNumber int, input CommentInput) (*domain.ReviewComment, error) {
	if err := validatePathSegment(owner, "owner"); err != nil {
		return nil, err
	}
	if err := validatePathSegment(repo, "repo"); err != nil {
		return nil, err
	}

	reqBody := CreateCommentRequest{
		Body:        input.Body,
		CommitID:    input.CommitID,
		Path:        input.Path,
		SubjectType: "file",
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	requestURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), pullNumber)

	resp, err := c.execute(ctx, "POST", requestURL, jsonData)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var created APIComment
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	comment := ToDomain(created)
	return &comment, nil
}

// ReplyToComment posts a reply to an existing top-level review comment.
// GitHub rejects replies to replies; the caller should pass a starter's ID.
func (c *Client) ReplyToComment(ctx context.Context, owner, repo string, pullNumber int, commentID int64, body string) (*domain.ReviewComment, error) {
	if err := validatePathSegment(owner, "owner"); err != nil {
		return nil, err
	}
	if err := validatePathSegment(repo, "repo"); err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(ReplyRequest{Body: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	requestURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments/%d/replies",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), pullNumber, commentID)

	resp, err := c.execute(ctx, "POST", requestURL, jsonData)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var created APIComment
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	comment := ToDomain(created)
	return &comment, nil
}
