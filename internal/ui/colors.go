package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ANSI colors so output follows the user's terminal palette.
const (
	ColorSuccess lipgloss.Color = "2"
	ColorError   lipgloss.Color = "1"
	ColorWarning lipgloss.Color = "3"
	ColorInfo    lipgloss.Color = "6"
	ColorPrimary lipgloss.Color = "7"
	ColorMuted   lipgloss.Color = "8"
)

// Status symbols.
const (
	SymbolSuccess = "✓"
	SymbolFail    = "✗"
	SymbolPending = "○"
	SymbolSkipped = "⊘"
	SymbolWarning = "⚠"
)

// spinnerColors cycles while a spinner is running.
var spinnerColors = []lipgloss.Color{ColorInfo, "4", "5", ColorInfo}

// DisableColors switches lipgloss to plain text output.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Styled helpers for one-off lines.
func Success(s string) string { return lipgloss.NewStyle().Foreground(ColorSuccess).Render(s) }
func Error(s string) string   { return lipgloss.NewStyle().Foreground(ColorError).Render(s) }
func Warning(s string) string { return lipgloss.NewStyle().Foreground(ColorWarning).Render(s) }
func Muted(s string) string   { return lipgloss.NewStyle().Foreground(ColorMuted).Render(s) }
