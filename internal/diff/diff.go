package diff

import "strings"

// Range is a half-open 1-based line interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of lines covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Side selects one of the two coordinate spaces of a hunk.
type Side int

const (
	// SideLeft is the pre-change side (context + deletions).
	SideLeft Side = iota
	// SideRight is the post-change side (context + additions).
	SideRight
)

// LinePair records the (left, right) line cursors after one hunk row.
// Both components are non-decreasing across the pair sequence.
type LinePair struct {
	Left  int
	Right int
}

// Value returns the pair's component for the given side.
func (p LinePair) Value(side Side) int {
	if side == SideLeft {
		return p.Left
	}
	return p.Right
}

// Diff is the parsed form of a single unified-diff hunk. It is constructed
// by Parse and never mutated afterwards.
type Diff struct {
	path            string
	originalRange   Range
	currentRange    Range
	leftLines       []string
	rightLines      []string
	context         []Range
	pairs           []LinePair
	trailingNewline bool
}

// Path returns the file path the hunk applies to.
func (d *Diff) Path() string {
	return d.path
}

// OriginalRange returns the hunk's extent on the left (pre-change) side,
// recomputed from the body rather than taken from the header count.
func (d *Diff) OriginalRange() Range {
	return d.originalRange
}

// Range returns the hunk's extent on the right (post-change) side.
func (d *Diff) Range() Range {
	return d.currentRange
}

// TrailingNewline reports whether the raw hunk ended with a newline.
func (d *Diff) TrailingNewline() bool {
	return d.trailingNewline
}

// ContextRuns returns the recorded runs of unmodified lines, in right-side
// coordinates, ascending and mutually disjoint. Only runs that follow a
// change cluster are recorded; context at the very top of the hunk is not.
func (d *Diff) ContextRuns() []Range {
	return d.context
}

// Pairs returns the (left, right) cursor pairs, one per hunk row including
// the header.
func (d *Diff) Pairs() []LinePair {
	return d.pairs
}

// Text reconstructs the right-side (post-change) content of the hunk.
// The result carries a final newline exactly when the raw hunk did.
func (d *Diff) Text() string {
	return renderLines(d.rightLines, d.trailingNewline)
}

// OriginalText reconstructs the left-side (pre-change) content of the hunk.
func (d *Diff) OriginalText() string {
	return renderLines(d.leftLines, d.trailingNewline)
}

// TextPart renders the lines covered by r on one side of the hunk. The
// start and end sides must match; resolving a range that starts on one side
// and ends on the other is not implemented, and asking for it is a
// programming error reported as ErrInvalid. The range must lie within the
// side's recorded cursor interval.
func (d *Diff) TextPart(r Range, startSide, endSide Side) (string, error) {
	if startSide != endSide {
		return "", invalidError("cross-side range not implemented")
	}
	if r.End < r.Start {
		return "", invalidError("range end precedes start")
	}

	first := d.pairs[0].Value(startSide)
	last := d.pairs[len(d.pairs)-1].Value(startSide)
	if r.Start < first || r.End > last {
		return "", invalidError("range outside hunk")
	}

	lines := d.rightLines
	if startSide == SideLeft {
		lines = d.leftLines
	}

	beg := r.Start - first
	end := beg + r.Len()
	return renderLines(lines[beg:end], d.trailingNewline), nil
}

// Context renders every recorded context run, newline-joined, or the
// literal "no context" when none were recorded. A refinement that skips
// runs before a given line number is a possible extension; today all runs
// are always returned.
func (d *Diff) Context() string {
	if len(d.context) == 0 {
		return "no context"
	}

	parts := make([]string, 0, len(d.context))
	for _, run := range d.context {
		beg := run.Start - d.currentRange.Start
		parts = append(parts, strings.Join(d.rightLines[beg:beg+run.Len()], "\n"))
	}
	return strings.Join(parts, "\n")
}

// renderLines joins lines with newline separators. When trailingNewline is
// false exactly one trailing separator is stripped; an already-empty result
// is left as is.
func renderLines(lines []string, trailingNewline bool) string {
	if len(lines) == 0 {
		return ""
	}
	out := strings.Join(lines, "\n") + "\n"
	if !trailingNewline {
		out = strings.TrimSuffix(out, "\n")
	}
	return out
}
