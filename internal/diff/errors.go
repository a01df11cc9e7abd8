package diff

import "fmt"

// Kind categorizes a hunk processing failure.
type Kind int

const (
	// KindParse indicates the hunk header is missing or malformed.
	KindParse Kind = iota
	// KindInvalid indicates a body line with an unrecognized marker, or an
	// out-of-bounds or cross-side request against a parsed Diff.
	KindInvalid
)

// String returns a human-readable description of the failure kind.
func (k Kind) String() string {
	switch k {
	case KindParse:
		return "could not parse hunk"
	case KindInvalid:
		return "hunk invalid"
	default:
		return "unknown error"
	}
}

// Error is the unified error type for this package. The Kind tag lets
// callers branch without losing the underlying cause, which stays wrapped
// and reachable via errors.Unwrap.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes the original failure cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same Kind, so callers can use
// errors.Is(err, diff.ErrParse) regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel values for errors.Is checks.
var (
	ErrParse   = &Error{Kind: KindParse}
	ErrInvalid = &Error{Kind: KindInvalid}
)

func parseError(message string, cause error) *Error {
	return &Error{Kind: KindParse, Message: message, Cause: cause}
}

func invalidError(message string) *Error {
	return &Error{Kind: KindInvalid, Message: message}
}
