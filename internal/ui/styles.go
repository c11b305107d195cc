package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - success, checkmarks
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors, X marks
	WarningColor = lipgloss.Color("#FFA500") // Orange - warnings, collisions
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

var (
	// HeaderTitleStyle is for the command title (e.g., "LOAD SYMBOLS")
	HeaderTitleStyle = lipgloss.NewStyle().Foreground(TextColor).Bold(true).PaddingLeft(2)

	// HeaderCommandStyle is for the command path (e.g., "efidbg load-symbols -- -64")
	HeaderCommandStyle = lipgloss.NewStyle().Foreground(MutedColor).PaddingLeft(2)

	// HeaderParamKeyStyle is for parameter keys (e.g., "Boot log:")
	HeaderParamKeyStyle = lipgloss.NewStyle().Foreground(MutedColor).PaddingLeft(2)

	HeaderParamValueStyle = lipgloss.NewStyle().Foreground(TextColor)

	SuccessTitleStyle = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)

	ErrorTitleStyle = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)

	WarningTitleStyle = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)

	ErrorMessageStyle = lipgloss.NewStyle().Foreground(ErrorColor)

	// ResultKeyStyle is for result detail keys
	ResultKeyStyle = lipgloss.NewStyle().Foreground(MutedColor).Width(18)

	ResultValueStyle = lipgloss.NewStyle().Foreground(TextColor)

	TroubleshootingTitleStyle = lipgloss.NewStyle().Foreground(MutedColor).Bold(true)

	TroubleshootingItemStyle = lipgloss.NewStyle().Foreground(MutedColor)

	// TranscriptTitleStyle is for the "gdb commands" box title
	TranscriptTitleStyle = lipgloss.NewStyle().Foreground(MutedColor).Bold(true)

	TranscriptContentStyle = lipgloss.NewStyle().Foreground(TextColor)

	// Module picker
	PickerTitleStyle = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)

	PickerCursorStyle = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)

	PickerCheckedStyle = lipgloss.NewStyle().Foreground(SuccessColor)

	PickerMutedStyle = lipgloss.NewStyle().Foreground(MutedColor)
)

// Status markers
const (
	SuccessMarker  = "✓"
	FailureMarker  = "✗"
	WarningMarker  = "⚠"
	OptionalMarker = "!"
)

// GetTerminalWidth returns the current terminal width, clamped to the
// supported range.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// GetTerminalSize returns the current terminal width and height
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, 24
	}
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if width > MaxContentWidth {
		width = MaxContentWidth
	}
	return width, height
}

// RenderHorizontalDivider creates a horizontal line of the specified width
func RenderHorizontalDivider(width int, char string) string {
	return lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Render(strings.Repeat(char, width))
}
