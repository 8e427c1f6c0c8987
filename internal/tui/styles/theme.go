package styles

import (
	"github.com/allbin/go-serialid/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	HelpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	// Plain (non-TUI) command output
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve)

	USBStyle = lipgloss.NewStyle().
			Foreground(colors.Teal)

	MutedStyle = lipgloss.NewStyle().
			Foreground(colors.Overlay0)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)

	WarningStyle = lipgloss.NewStyle().
			Foreground(colors.Yellow)
)

type StatusType int

const (
	StatusConnected StatusType = iota
	StatusDisconnected
	StatusConnecting
	StatusError
)

// StatusIndicator returns the one-character connection marker for status
func StatusIndicator(status StatusType) string {
	switch status {
	case StatusConnected:
		return lipgloss.NewStyle().Foreground(colors.Green).Render("●")
	case StatusConnecting:
		return lipgloss.NewStyle().Foreground(colors.Yellow).Render("○")
	case StatusError:
		return lipgloss.NewStyle().Foreground(colors.Red).Render("✗")
	default:
		return lipgloss.NewStyle().Foreground(colors.Red).Render("○")
	}
}
