package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/harrison/filescout/internal/events"
	"github.com/harrison/filescout/internal/logger"
)

// cliSink wraps a logger.Printer and owns the operator dialog for
// confirmation requests. With autoYes set, large result sets proceed without
// prompting.
type cliSink struct {
	*logger.Printer
	in      io.Reader
	out     io.Writer
	autoYes bool
}

func newCLISink(printer *logger.Printer, in io.Reader, out io.Writer, autoYes bool) *cliSink {
	return &cliSink{Printer: printer, in: in, out: out, autoYes: autoYes}
}

// Confirm prompts the operator and resumes the task with the answer.
func (s *cliSink) Confirm(count int, r events.Resumer) {
	if s.autoYes {
		fmt.Fprintf(s.out, "Found %d files; proceeding without confirmation (--yes).\n", count)
		r.Resume(true)
		return
	}

	fmt.Fprintf(s.out, "Found %d files. Proceed with copy? [y/N]: ", count)
	r.Resume(readYes(s.in))
}

// readYes reads one line and interprets y/yes (case-insensitive) as consent.
// Read errors and everything else decline.
func readYes(in io.Reader) bool {
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
