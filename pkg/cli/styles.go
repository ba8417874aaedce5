package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Prompt and accent color
	Accent  lipgloss.Color // Assistant text color
	Dim     lipgloss.Color // Dimmed/help text color
	Error   lipgloss.Color // Error text color
}

// DefaultTheme is the default theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Accent:  lipgloss.Color("#7dcfff"),
	Dim:     lipgloss.Color("#6e7681"),
	Error:   lipgloss.Color("#f7768e"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Prompt    lipgloss.Style // "you>" REPL prompt
	Assistant lipgloss.Style // streamed response text
	Source    lipgloss.Style // retrieval citations
	Help      lipgloss.Style // hints and metadata
	Error     lipgloss.Style // error lines
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Assistant: lipgloss.NewStyle().Foreground(t.Accent),
		Source:    lipgloss.NewStyle().Italic(true).Foreground(t.Dim),
		Help:      lipgloss.NewStyle().Foreground(t.Dim),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(t.Error),
	}
}
