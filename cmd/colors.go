package cmd

import (
	"github.com/fatih/color"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

// formatDriftCount colors a per-category unauthorized count: green when the
// category is clean, red otherwise.
func formatDriftCount(count int) string {
	if count == 0 {
		return colorSuccess("clean")
	}
	return colorError(count)
}
