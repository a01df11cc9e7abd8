package review

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bkyoung/review-lsp/internal/domain"
)

// Printer renders conversations for the terminal.
type Printer struct {
	out       io.Writer
	decorated bool
	caser     cases.Caser
}

// NewPrinter creates a printer. Decorated output adds heading separators and
// is intended for interactive terminals; plain output is one thread per
// block, suitable for piping.
func NewPrinter(out io.Writer, decorated bool) *Printer {
	return &Printer{
		out:       out,
		decorated: decorated,
		caser:     cases.Title(language.English),
	}
}

// Print writes every conversation thread, oldest starter first.
func (p *Printer) Print(conversation *domain.Conversation) error {
	starters := conversation.Starters()
	if len(starters) == 0 {
		_, err := fmt.Fprintln(p.out, "no review comments")
		return err
	}

	for i, starter := range starters {
		if i > 0 {
			if _, err := fmt.Fprintln(p.out); err != nil {
				return err
			}
		}
		if err := p.printThread(conversation, starter); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printThread(conversation *domain.Conversation, starter domain.ReviewComment) error {
	heading := p.heading(starter)
	if p.decorated {
		if _, err := fmt.Fprintf(p.out, "%s\n%s\n", heading, strings.Repeat("-", len(heading))); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(p.out, "%s\n", heading); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(p.out, conversation.Thread(starter.ID))
	return err
}

// heading is "<Path> (Line <n>)" for line comments, "<Path> (File)" otherwise.
func (p *Printer) heading(starter domain.ReviewComment) string {
	subject := "file"
	if starter.SubjectType == domain.SubjectLine {
		subject = fmt.Sprintf("line %d", starter.OriginalLine)
	}
	return fmt.Sprintf("%s (%s)", starter.Path, p.caser.String(subject))
}
