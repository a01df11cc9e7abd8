// Package diff parses a single unified-diff hunk, as attached to a pull
// request review comment, into an immutable Diff value.
//
// A Diff tracks both coordinate spaces of the hunk at once: the left
// (pre-change) side and the right (post-change) side. Every body line is
// classified by its marker character, routed to the side(s) it belongs to,
// and the running line cursors for both sides are recorded after each row.
// The declared counts in the hunk header are treated as advisory; the actual
// extents are recomputed from the body.
//
// The reconstructed right-side text is what comment anchoring searches for
// in the live document, so rendering is byte-exact, including whether the
// hunk's final line was newline-terminated.
package diff
