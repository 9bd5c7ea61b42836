package logger

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/filescout/internal/events"
)

// Printer adapts the task event stream to a ConsoleLogger. Severity accents
// map onto colors, progress updates render through a ProgressBar, and the
// completion event prints a summary block. Confirmation requests are NOT
// handled here; whichever sink wraps the Printer owns the operator dialog.
type Printer struct {
	log *ConsoleLogger
	bar *ProgressBar
}

// NewPrinter creates a Printer emitting through cl.
func NewPrinter(cl *ConsoleLogger) *Printer {
	return &Printer{
		log: cl,
		bar: NewProgressBar(20, cl.ColorEnabled()),
	}
}

// Status prints the current status line.
func (p *Printer) Status(text string) {
	p.log.Infof("Status: %s", text)
}

// Progress renders the percentage as an ASCII bar at debug level so routine
// per-file updates stay out of the default view.
func (p *Printer) Progress(percent int) {
	p.bar.Update(percent)
	p.log.Debugf("Progress: %s", p.bar.Render())
}

// Log maps a severity accent onto a colored console line.
func (p *Printer) Log(message string, sev events.Severity) {
	switch sev {
	case events.SeverityWarn:
		p.log.Warnf("%s", message)
	case events.SeverityError:
		p.log.Errorf("%s", message)
	case events.SeverityDetail:
		p.log.Accented(color.New(color.FgHiBlack), message)
	case events.SeverityFound:
		p.log.Accented(color.New(color.FgRed), message)
	case events.SeverityHeader:
		p.log.Accented(color.New(color.FgCyan, color.Bold), message)
	default:
		p.log.Infof("%s", message)
	}
}

// Confirm is a no-op; the wrapping sink intercepts confirmation requests.
func (p *Printer) Confirm(int, events.Resumer) {}

// Complete prints the terminal summary.
func (p *Printer) Complete(c events.Completion) {
	p.log.Accented(color.New(color.Bold), "=== Task Summary ===")
	p.log.Infof("Files copied: %d", c.FilesCopied)
	p.log.Infof("Copy duration: %s", formatDuration(c.Duration))
}

// Error prints a task-fatal error.
func (p *Printer) Error(message string) {
	p.log.Errorf("Task failed: %s", message)
}

// formatDuration renders a duration as 5s, 1m30s, 2h15m4s.
func formatDuration(d time.Duration) string {
	if d >= time.Hour {
		h := d / time.Hour
		m := (d % time.Hour) / time.Minute
		s := (d % time.Minute) / time.Second
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if d >= time.Minute {
		m := d / time.Minute
		s := (d % time.Minute) / time.Second
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
