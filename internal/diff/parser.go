package diff

import (
	"strconv"
	"strings"
)

type lineType int

const (
	lineContext lineType = iota
	lineAddition
	lineDeletion
)

// Parse parses a single hunk into a Diff. The text must start with a hunk
// header of the form
//
//	@@ -<leftStart>[,<count>] +<rightStart>[,<count>] @@[ trailing text]
//
// followed by body lines prefixed with ' ', '-', or '+'. Declared counts
// are ignored; both ranges are recomputed from the body. Any other body
// prefix is rejected, which notably includes the conventional
// "\ No newline at end of file" marker line.
func Parse(hunk, path string) (*Diff, error) {
	if !strings.HasPrefix(hunk, "@@") {
		return nil, parseError("missing hunk header", nil)
	}

	trailingNewline := strings.HasSuffix(hunk, "\n")
	lines := strings.Split(hunk, "\n")
	if trailingNewline {
		// The final fragment after the last separator is empty; it is the
		// terminator of the last row, not a row of its own.
		lines = lines[:len(lines)-1]
	}

	leftStart, rightStart, err := parseHeader(lines[0])
	if err != nil {
		return nil, err
	}

	var (
		leftLines  []string
		rightLines []string
		context    []Range

		leftCursor  = leftStart
		rightCursor = rightStart

		runStart int
		runOpen  bool
		prev     = lineContext
	)

	pairs := []LinePair{{Left: leftCursor, Right: rightCursor}}

	for _, line := range lines[1:] {
		var t lineType
		switch {
		case strings.HasPrefix(line, " "):
			t = lineContext
		case strings.HasPrefix(line, "-"):
			t = lineDeletion
		case strings.HasPrefix(line, "+"):
			t = lineAddition
		default:
			return nil, invalidError("unrecognized line prefix")
		}

		// Leaving a context run: close it before the change row advances
		// the right cursor.
		if t != lineContext && prev == lineContext && runOpen {
			context = append(context, Range{Start: runStart, End: rightCursor})
			runOpen = false
		}

		content := line[1:]
		switch t {
		case lineContext:
			leftLines = append(leftLines, content)
			leftCursor++
			rightLines = append(rightLines, content)
			rightCursor++
		case lineDeletion:
			leftLines = append(leftLines, content)
			leftCursor++
		case lineAddition:
			rightLines = append(rightLines, content)
			rightCursor++
		}

		// Entering a context run after a change cluster. Context at the top
		// of the hunk never opens a run: there is no preceding change to
		// bound it.
		if t == lineContext && prev != lineContext {
			runStart = rightCursor - 1
			runOpen = true
		}

		pairs = append(pairs, LinePair{Left: leftCursor, Right: rightCursor})
		prev = t
	}

	if runOpen {
		context = append(context, Range{Start: runStart, End: rightCursor})
	}

	return &Diff{
		path:            path,
		originalRange:   Range{Start: leftStart, End: leftCursor},
		currentRange:    Range{Start: rightStart, End: rightCursor},
		leftLines:       leftLines,
		rightLines:      rightLines,
		context:         context,
		pairs:           pairs,
		trailingNewline: trailingNewline,
	}, nil
}

// parseHeader extracts the two starting line numbers from a hunk header
// like "@@ -10,7 +10,8 @@ optional trailing text".
func parseHeader(line string) (leftStart, rightStart int, err error) {
	inner := strings.TrimPrefix(line, "@@")
	if idx := strings.Index(inner, "@@"); idx >= 0 {
		inner = inner[:idx]
	}

	var haveLeft, haveRight bool
	for _, field := range strings.Fields(inner) {
		switch {
		case strings.HasPrefix(field, "-"):
			leftStart, err = parseStart(field[1:])
			if err != nil {
				return 0, 0, err
			}
			haveLeft = true
		case strings.HasPrefix(field, "+"):
			rightStart, err = parseStart(field[1:])
			if err != nil {
				return 0, 0, err
			}
			haveRight = true
		}
	}

	if !haveLeft {
		return 0, 0, parseError("header missing left range", nil)
	}
	if !haveRight {
		return 0, 0, parseError("header missing right range", nil)
	}
	return leftStart, rightStart, nil
}

// parseStart parses the start component of "start" or "start,count".
// The count, when present, is discarded.
func parseStart(s string) (int, error) {
	if idx := strings.Index(s, ","); idx >= 0 {
		s = s[:idx]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, parseError("non-numeric line bound", err)
	}
	return n, nil
}
