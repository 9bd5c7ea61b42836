package logger

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/harrison/filescout/internal/events"
)

var linePattern = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] `)

func TestConsoleLoggerTimestampFormat(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.Infof("hello %s", "world")

	line := buf.String()
	if !linePattern.MatchString(line) {
		t.Errorf("line %q missing [HH:MM:SS] prefix", line)
	}
	if !strings.Contains(line, "hello world") {
		t.Errorf("line %q missing message", line)
	}
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "warn")

	cl.Debugf("debug line")
	cl.Infof("info line")
	cl.Warnf("warn line")
	cl.Errorf("error line")

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("messages below warn leaked through: %q", out)
	}
	if !strings.Contains(out, "warn line") || !strings.Contains(out, "error line") {
		t.Errorf("warn/error lines missing: %q", out)
	}
}

func TestConsoleLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "nonsense")

	cl.Debugf("debug line")
	cl.Infof("info line")

	out := buf.String()
	if strings.Contains(out, "debug line") {
		t.Errorf("debug passed default info filter: %q", out)
	}
	if !strings.Contains(out, "info line") {
		t.Errorf("info line missing: %q", out)
	}
}

func TestConsoleLoggerNilWriter(t *testing.T) {
	cl := NewConsoleLogger(nil, "info")
	// Must not panic.
	cl.Infof("discarded")
	cl.Errorf("discarded")
}

func TestConsoleLoggerNonTerminalHasNoANSI(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "debug")

	cl.Warnf("warned")
	cl.Errorf("errored")

	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("ANSI escape in non-terminal output: %q", buf.String())
	}
	if cl.ColorEnabled() {
		t.Error("ColorEnabled() = true for a bytes.Buffer")
	}
}

func TestProgressBarRender(t *testing.T) {
	pb := NewProgressBar(10, false)

	pb.Update(0)
	if got := pb.Render(); got != "[          ] 0%" {
		t.Errorf("Render() at 0 = %q", got)
	}

	pb.Update(50)
	if got := pb.Render(); got != "[=====     ] 50%" {
		t.Errorf("Render() at 50 = %q", got)
	}

	pb.Update(100)
	if got := pb.Render(); got != "[==========] 100%" {
		t.Errorf("Render() at 100 = %q", got)
	}
}

func TestProgressBarClamps(t *testing.T) {
	pb := NewProgressBar(10, false)

	pb.Update(150)
	if pb.Percent() != 100 {
		t.Errorf("Percent() = %d, want 100", pb.Percent())
	}
	pb.Update(-5)
	if pb.Percent() != 0 {
		t.Errorf("Percent() = %d, want 0", pb.Percent())
	}
}

func TestPrinterSeverityRouting(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(NewConsoleLogger(&buf, "debug"))

	p.Log("plain info", events.SeverityInfo)
	p.Log("a warning", events.SeverityWarn)
	p.Log("an error", events.SeverityError)
	p.Log("a detail", events.SeverityDetail)
	p.Log("a found file", events.SeverityFound)
	p.Log("a header", events.SeverityHeader)

	out := buf.String()
	for _, want := range []string{"plain info", "a warning", "an error", "a detail", "a found file", "a header"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestPrinterCompleteSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(NewConsoleLogger(&buf, "info"))

	p.Complete(events.Completion{FilesCopied: 7, Duration: 90 * time.Second})

	out := buf.String()
	if !strings.Contains(out, "Files copied: 7") {
		t.Errorf("summary missing file count: %q", out)
	}
	if !strings.Contains(out, "1m30s") {
		t.Errorf("summary missing duration: %q", out)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1m30s"},
		{2*time.Hour + 15*time.Minute + 4*time.Second, "2h15m4s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
