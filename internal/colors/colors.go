// Package colors provides terminal color support for savepoint output.
// Colors are disabled automatically when stdout is not a terminal or when
// NO_COLOR is set.
package colors

import (
	"os"
	"strings"
)

const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	gray          = "\033[90m"
	brightRed     = "\033[91m"
	brightGreen   = "\033[92m"
	brightYellow  = "\033[93m"
	brightCyan    = "\033[96m"
	brightMagenta = "\033[95m"
)

var colorEnabled = shouldUseColor()

func shouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	if term == "dumb" || term == "" {
		return false
	}
	if info, err := os.Stdout.Stat(); err == nil {
		return (info.Mode() & os.ModeCharDevice) != 0
	}
	return true
}

// SetColorEnabled allows manual control of color output.
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

func colorize(text, color string) string {
	if !colorEnabled {
		return text
	}
	return color + text + reset
}

// Added colors a file added since the last checkpoint.
func Added(text string) string { return colorize(text, brightGreen) }

// Modified colors a file changed since the last checkpoint.
func Modified(text string) string { return colorize(text, brightYellow) }

// Removed colors a file deleted since the last checkpoint.
func Removed(text string) string { return colorize(text, brightRed) }

// Hash colors a checkpoint hash.
func Hash(text string) string { return colorize(text, brightCyan) }

// Branch colors a branch name.
func Branch(text string) string { return colorize(text, brightMagenta) }

// Warning colors a destructive-operation notice.
func Warning(text string) string { return colorize(text, brightYellow) }

// Muted colors secondary detail like timestamps.
func Muted(text string) string { return colorize(text, gray) }

// Bold emphasizes a heading.
func Bold(text string) string {
	if !colorEnabled {
		return text
	}
	return bold + text + reset
}

// Dim de-emphasizes text.
func Dim(text string) string {
	if !colorEnabled {
		return text
	}
	return dim + text + reset
}
