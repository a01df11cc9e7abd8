package github

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bkyoung/review-lsp/internal/adapter/httpapi"
)

// maxPaginationPages bounds how many pages a single listing will follow.
// At 100 comments per page this covers pull requests far larger than any
// review this tool is pointed at, while capping a misbehaving Link chain.
const maxPaginationPages = 10

// parseNextLink extracts the rel="next" URL from a GitHub Link header.
// Returns "" when there is no next page.
//
// Header format:
//
//	<https://api.github.com/...?page=2>; rel="next", <https://...?page=5>; rel="last"
func parseNextLink(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}

	for _, part := range strings.Split(linkHeader, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}

		urlPart := strings.TrimSpace(section[0])
		if !strings.HasPrefix(urlPart, "<") || !strings.HasSuffix(urlPart, ">") {
			continue
		}

		for _, param := range section[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return strings.Trim(urlPart, "<>")
			}
		}
	}

	return ""
}

// validatePathSegment rejects owner/repo values that could alter the request
// path. GitHub names never contain separators, so anything with one is either
// a typo or an injection attempt.
func validatePathSegment(value, name string) error {
	if value == "" {
		return &httpapi.Error{
			Type:      httpapi.ErrTypeInvalidRequest,
			Message:   fmt.Sprintf("%s must not be empty", name),
			Retryable: false,
			Service:   serviceName,
		}
	}
	if strings.ContainsAny(value, "/\\?#%") || strings.Contains(value, "..") {
		return &httpapi.Error{
			Type:      httpapi.ErrTypeInvalidRequest,
			Message:   fmt.Sprintf("%s contains invalid characters: %q", name, value),
			Retryable: false,
			Service:   serviceName,
		}
	}
	return nil
}

// validatePaginationURL ensures a Link-header URL stays on the API host the
// client was configured with, preventing a compromised or spoofed response
// from redirecting pagination to an arbitrary server.
func (c *Client) validatePaginationURL(raw string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	next, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	if next.Scheme != base.Scheme {
		return "", fmt.Errorf("scheme %q does not match API scheme %q", next.Scheme, base.Scheme)
	}
	if next.Host != base.Host {
		return "", fmt.Errorf("host %q does not match API host %q", next.Host, base.Host)
	}

	return next.String(), nil
}
