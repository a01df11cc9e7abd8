// Package version exposes the build version injected at link time.
package version

// Set via -ldflags "-X github.com/bkyoung/review-lsp/internal/version.version=...".
var version string

// Value returns the build version, or a placeholder for untagged builds.
func Value() string {
	if version == "" {
		return "v0.0.0"
	}
	return version
}
