package review

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal.
// This is useful for detecting whether output is being displayed
// directly to a user or piped into another program.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsOutputTerminal checks if stdout is a TTY, indicating that output
// is being displayed directly to a user's terminal rather than being
// piped or redirected.
//
// This is used to enable the decorated conversation layout; piped
// output stays plain so it remains grep-friendly.
func IsOutputTerminal() bool {
	return IsTTY(os.Stdout.Fd())
}
