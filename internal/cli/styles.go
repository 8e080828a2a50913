// Package cli provides the command-line interface for the scanner.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

//nolint:misspell // lipgloss uses American spelling (Color) for its API
var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // Red

const crossMark = "✗"

// formatError returns a styled error message.
func formatError(msg string) string {
	return errorStyle.Render(crossMark+" ") + msg
}

// printStyledError prints a styled error to stderr.
func printStyledError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(os.Stderr, formatError(msg))
}
