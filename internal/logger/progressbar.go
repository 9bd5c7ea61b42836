package logger

import (
	"fmt"
	"strings"
)

// ProgressBar renders copy-phase progress as a fixed-width ASCII bar.
// Rendering is driven by a percentage rather than counts because the task
// event stream reports progress pre-computed as 0-100.
type ProgressBar struct {
	width   int
	percent int
	color   bool
}

// NewProgressBar creates a bar of the given character width.
func NewProgressBar(width int, enableColor bool) *ProgressBar {
	if width < 1 {
		width = 10
	}
	return &ProgressBar{width: width, color: enableColor}
}

// Update sets the current percentage, clamped to 0-100.
func (pb *ProgressBar) Update(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	pb.percent = percent
}

// Percent returns the current clamped percentage.
func (pb *ProgressBar) Percent() int {
	return pb.percent
}

// Render produces the bar string, cyan while in progress and green at 100%
// when color is enabled.
func (pb *ProgressBar) Render() string {
	filled := pb.percent * pb.width / 100
	bar := "[" + strings.Repeat("=", filled) + strings.Repeat(" ", pb.width-filled) + "]"
	result := fmt.Sprintf("%s %d%%", bar, pb.percent)

	if pb.color && pb.percent == 100 {
		return fmt.Sprintf("\033[32m%s\033[0m", result)
	}
	if pb.color {
		return fmt.Sprintf("\033[36m%s\033[0m", result)
	}
	return result
}
