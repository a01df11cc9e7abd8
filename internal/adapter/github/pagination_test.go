package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "empty header",
			header: "",
			want:   "",
		},
		{
			name:   "next and last",
			header: `<https://api.github.com/repositories/1/pulls/2/comments?page=2>; rel="next", <https://api.github.com/repositories/1/pulls/2/comments?page=5>; rel="last"`,
			want:   "https://api.github.com/repositories/1/pulls/2/comments?page=2",
		},
		{
			name:   "only prev and first",
			header: `<https://api.github.com/x?page=1>; rel="prev", <https://api.github.com/x?page=1>; rel="first"`,
			want:   "",
		},
		{
			name:   "malformed section ignored",
			header: `garbage, <https://api.github.com/x?page=3>; rel="next"`,
			want:   "https://api.github.com/x?page=3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseNextLink(tt.header))
		})
	}
}

func TestValidatePathSegment(t *testing.T) {
	assert.NoError(t, validatePathSegment("golang", "owner"))
	assert.NoError(t, validatePathSegment("go-git", "repo"))
	assert.NoError(t, validatePathSegment("repo.name", "repo"))

	assert.Error(t, validatePathSegment("", "owner"))
	assert.Error(t, validatePathSegment("a/b", "owner"))
	assert.Error(t, validatePathSegment("a\\b", "owner"))
	assert.Error(t, validatePathSegment("a?b", "owner"))
	assert.Error(t, validatePathSegment("a#b", "owner"))
	assert.Error(t, validatePathSegment("a%2Fb", "owner"))
	assert.Error(t, validatePathSegment("..", "owner"))
}

func TestValidatePaginationURL(t *testing.T) {
	client := NewClient("token")
	client.SetBaseURL("https://api.github.com")

	resolved, err := client.validatePaginationURL("https://api.github.com/repos/o/r/pulls/1/comments?page=2")
	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com/repos/o/r/pulls/1/comments?page=2", resolved)

	_, err = client.validatePaginationURL("https://evil.example.com/steal")
	assert.Error(t, err)

	_, err = client.validatePaginationURL("http://api.github.com/downgraded")
	assert.Error(t, err)
}
