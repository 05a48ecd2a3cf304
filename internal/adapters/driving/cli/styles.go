package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the colours used for terminal output.
type palette struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

func defaultPalette() palette {
	return palette{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
	}
}

// styles renders summaries and errors. Colours are dropped when the
// writer is not a terminal.
type styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	p := defaultPalette()
	return styles{
		Title:   r.NewStyle().Foreground(p.Primary).Bold(true),
		Muted:   r.NewStyle().Foreground(p.Muted),
		Success: r.NewStyle().Foreground(p.Success).Bold(true),
		Warning: r.NewStyle().Foreground(p.Warning),
		Error:   r.NewStyle().Foreground(p.Error).Bold(true),
	}
}
