// Package github is the client for the GitHub Pull Request review comments
// API: paginated listing, file-level comment creation, and replies.
//
// This adapter layer handles GitHub-specific concerns without polluting the
// domain layer: wire types live here and are mapped to domain.ReviewComment
// before anything else sees them. Errors are mapped to typed httpapi.Error
// values so the shared retry infrastructure can classify them.
//
// The design keeps the domain layer pure and platform-agnostic, enabling
// future support for GitLab, Bitbucket, or other platforms.
package github
