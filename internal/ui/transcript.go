package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Transcript is a box listing the gdb commands a run issued. Shown with
// --verbose.
type Transcript struct {
	Title string
	Lines []string
	Width int
}

// NewTranscript creates a transcript box for commands.
func NewTranscript(commands []string) *Transcript {
	return &Transcript{
		Title: "gdb commands",
		Lines: commands,
		Width: GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (t *Transcript) SetWidth(width int) *Transcript {
	t.Width = width
	return t
}

// Render returns the styled box
func (t *Transcript) Render() string {
	width := t.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	body := make([]string, 0, len(t.Lines)+1)
	body = append(body, TranscriptTitleStyle.Render(t.Title))
	for _, l := range t.Lines {
		body = append(body, TranscriptContentStyle.Render("(gdb) "+l))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(width-4).
		Padding(0, 1).
		Render(strings.Join(body, "\n"))
}

// String implements fmt.Stringer
func (t *Transcript) String() string {
	return t.Render()
}
