package diff_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/bkyoung/review-lsp/internal/diff"
)

func mustParse(t *testing.T, hunk string) *diff.Diff {
	t.Helper()
	d, err := diff.Parse(hunk, "file.go")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return d
}

func TestParse_MixedHunk(t *testing.T) {
	hunk := "@@ -1,4 +1,4 @@\n a\n-b\n+B\n c\n d\n"

	d := mustParse(t, hunk)

	if got := d.OriginalRange(); got.Start != 1 || got.End != 5 {
		t.Errorf("OriginalRange() = %+v, want [1,5)", got)
	}
	if got := d.Range(); got.Start != 1 || got.End != 5 {
		t.Errorf("Range() = %+v, want [1,5)", got)
	}
	if got := d.OriginalText(); got != "a\nb\nc\nd\n" {
		t.Errorf("OriginalText() = %q, want %q", got, "a\nb\nc\nd\n")
	}
	if got := d.Text(); got != "a\nB\nc\nd\n" {
		t.Errorf("Text() = %q, want %q", got, "a\nB\nc\nd\n")
	}

	runs := d.ContextRuns()
	if len(runs) != 1 || runs[0] != (diff.Range{Start: 3, End: 5}) {
		t.Errorf("ContextRuns() = %+v, want [[3,5)]", runs)
	}
}

func TestParse_RecomputesRangesFromBody(t *testing.T) {
	// Declared counts are wrong on purpose; the body wins.
	hunk := "@@ -10,99 +20,1 @@\n ctx\n-gone\n+here\n+also\n"

	d := mustParse(t, hunk)

	if got := d.OriginalRange(); got.Start != 10 || got.End != 12 {
		t.Errorf("OriginalRange() = %+v, want [10,12)", got)
	}
	if got := d.Range(); got.Start != 20 || got.End != 23 {
		t.Errorf("Range() = %+v, want [20,23)", got)
	}
}

func TestParse_AdditionsOnly(t *testing.T) {
	hunk := "@@ -5,0 +5,2 @@\n+alpha\n+beta\n"

	d := mustParse(t, hunk)

	if got := d.OriginalText(); got != "" {
		t.Errorf("OriginalText() = %q, want empty", got)
	}
	if got := d.Text(); got != "alpha\nbeta\n" {
		t.Errorf("Text() = %q, want %q", got, "alpha\nbeta\n")
	}
	if got := d.Context(); got != "no context" {
		t.Errorf("Context() = %q, want %q", got, "no context")
	}
	if got := d.OriginalRange(); got.Len() != 0 {
		t.Errorf("OriginalRange() = %+v, want empty", got)
	}
	if got := d.Range(); got.Len() != 2 {
		t.Errorf("Range() = %+v, want 2 lines", got)
	}
}

func TestParse_HeaderWithoutCountsAndTrailingText(t *testing.T) {
	hunk := "@@ -3 +4 @@ func example() {\n context\n+added\n"

	d := mustParse(t, hunk)

	if got := d.OriginalRange(); got.Start != 3 || got.End != 4 {
		t.Errorf("OriginalRange() = %+v, want [3,4)", got)
	}
	if got := d.Range(); got.Start != 4 || got.End != 6 {
		t.Errorf("Range() = %+v, want [4,6)", got)
	}
}

func TestParse_LineCountsMatchRanges(t *testing.T) {
	hunks := []string{
		"@@ -1,4 +1,4 @@\n a\n-b\n+B\n c\n d\n",
		"@@ -5,0 +5,2 @@\n+x\n+y\n",
		"@@ -7,3 +7,1 @@\n-one\n-two\n one\n",
	}

	for _, hunk := range hunks {
		d := mustParse(t, hunk)
		if got := len(d.Pairs()); got == 0 {
			t.Fatalf("Pairs() empty for %q", hunk)
		}
		first := d.Pairs()[0]
		last := d.Pairs()[len(d.Pairs())-1]
		if first.Left != d.OriginalRange().Start || first.Right != d.Range().Start {
			t.Errorf("first pair %+v does not match range starts for %q", first, hunk)
		}
		if last.Left != d.OriginalRange().End || last.Right != d.Range().End {
			t.Errorf("last pair %+v does not match range ends for %q", last, hunk)
		}
	}
}

func TestParse_PairsMonotonic(t *testing.T) {
	d := mustParse(t, "@@ -1,4 +1,5 @@\n a\n-b\n+B\n+B2\n c\n d\n")

	pairs := d.Pairs()
	// One pair per row, header included.
	if len(pairs) != 7 {
		t.Fatalf("len(Pairs()) = %d, want 7", len(pairs))
	}
	for i := 1; i < len(pairs); i++ {
		if pairs[i].Left < pairs[i-1].Left || pairs[i].Right < pairs[i-1].Right {
			t.Errorf("pairs not monotonic at %d: %+v -> %+v", i, pairs[i-1], pairs[i])
		}
	}
}

func TestParse_ContextRunsDisjointAscending(t *testing.T) {
	hunk := "@@ -1,5 +1,6 @@\n a\n+b\n c\n d\n-e\n f\n"

	d := mustParse(t, hunk)

	want := []diff.Range{{Start: 3, End: 5}, {Start: 5, End: 6}}
	runs := d.ContextRuns()
	if len(runs) != len(want) {
		t.Fatalf("ContextRuns() = %+v, want %+v", runs, want)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Errorf("run %d = %+v, want %+v", i, runs[i], want[i])
		}
		if i > 0 && runs[i].Start < runs[i-1].End {
			t.Errorf("runs overlap: %+v then %+v", runs[i-1], runs[i])
		}
	}
}

func TestParse_LeadingContextNotRecorded(t *testing.T) {
	// Context before the first change has no preceding change cluster to
	// bound it and never becomes a run.
	d := mustParse(t, "@@ -1,3 +1,4 @@\n a\n b\n+c\n d\n")

	want := diff.Range{Start: 4, End: 5}
	runs := d.ContextRuns()
	if len(runs) != 1 || runs[0] != want {
		t.Errorf("ContextRuns() = %+v, want [%+v]", runs, want)
	}
}

func TestParse_TrailingNewlineFidelity(t *testing.T) {
	terminated := mustParse(t, "@@ -1,2 +1,2 @@\n a\n-b\n+B\n")
	if !terminated.TrailingNewline() {
		t.Error("TrailingNewline() = false for newline-terminated hunk")
	}
	if got := terminated.Text(); got != "a\nB\n" {
		t.Errorf("Text() = %q, want %q", got, "a\nB\n")
	}

	unterminated := mustParse(t, "@@ -1,2 +1,2 @@\n a\n-b\n+B")
	if unterminated.TrailingNewline() {
		t.Error("TrailingNewline() = true for unterminated hunk")
	}
	if got := unterminated.Text(); got != "a\nB" {
		t.Errorf("Text() = %q, want %q", got, "a\nB")
	}
	if got := unterminated.OriginalText(); got != "a\nb" {
		t.Errorf("OriginalText() = %q, want %q", got, "a\nb")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		hunk string
		want error
	}{
		{"no header", "not a hunk", diff.ErrParse},
		{"missing right range", "@@ -1,4 @@\n a\n", diff.ErrParse},
		{"missing left range", "@@ +1,4 @@\n a\n", diff.ErrParse},
		{"non-numeric bound", "@@ -x,4 +1,4 @@\n a\n", diff.ErrParse},
		{"unrecognized prefix", "@@ -1,2 +1,2 @@\n a\nxb\n", diff.ErrInvalid},
		{"empty body line", "@@ -1,2 +1,2 @@\n a\n\n b\n", diff.ErrInvalid},
		{"second hunk header", "@@ -1,1 +1,1 @@\n a\n@@ -9,1 +9,1 @@\n b\n", diff.ErrInvalid},
		{"no-newline marker", "@@ -1,1 +1,1 @@\n-a\n\\ No newline at end of file\n+a\n", diff.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := diff.Parse(tt.hunk, "file.go")
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want kind of %v", err, tt.want)
			}
		})
	}
}

func TestParse_NumericCauseIsPreserved(t *testing.T) {
	_, err := diff.Parse("@@ -abc,4 +1,4 @@\n a\n", "file.go")
	if err == nil {
		t.Fatal("Parse() succeeded, want error")
	}

	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Errorf("error %v does not wrap the strconv cause", err)
	}
}
