package components

import (
	"fmt"

	"github.com/allbin/go-serialid"
	"github.com/allbin/go-serialid/internal/tui/colors"
	"github.com/allbin/go-serialid/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// ConnectionInfo is what the status bar shows about the open port
type ConnectionInfo struct {
	Config      serial.LineConfig
	Description string
}

// Summary renders the line settings, e.g. "⚡ 115200 8N1 Arduino Uno"
func (ci ConnectionInfo) Summary() string {
	s := "⚡ " + ci.Config.String()
	if ci.Description != "" {
		s += " " + ci.Description
	}
	return s
}

type StatusBar struct {
	portPath       string
	status         styles.StatusType
	message        string
	err            error
	width          int
	connectionInfo *ConnectionInfo
}

func NewStatusBar(portPath string) *StatusBar {
	return &StatusBar{
		portPath: portPath,
		status:   styles.StatusConnecting,
		message:  "Connecting...",
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnectionInfo(info *ConnectionInfo) {
	sb.connectionInfo = info
}

func (sb *StatusBar) SetConnected() {
	sb.status = styles.StatusConnected
	sb.message = "Connected"
	sb.err = nil
}

func (sb *StatusBar) SetDisconnected(err error) {
	if err != nil {
		sb.status = styles.StatusError
		sb.message = fmt.Sprintf("Disconnected: %v", err)
		sb.err = err
		return
	}
	sb.status = styles.StatusDisconnected
	sb.message = "Disconnected"
	sb.err = nil
}

func (sb *StatusBar) Status() styles.StatusType {
	return sb.status
}

func (sb *StatusBar) Message() string {
	return sb.message
}

// ComprehensiveStatusBar renders the single line bar at the bottom of the
// listen and connect views. sendingMode is only shown in INSERT mode.
func (sb *StatusBar) ComprehensiveStatusBar(inputMode, sendingMode, viewMode string, timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	modeBackground := colors.Blue
	if inputMode == "INSERT" {
		modeBackground = colors.Green
	}
	mode := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(modeBackground).
		Bold(true).
		Padding(0, 1).
		Render(inputMode)

	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(sb.portPath)

	indicator := styles.StatusIndicator(sb.status)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	left := []string{mode, port, indicator}
	if inputMode == "INSERT" && sendingMode != "" {
		left = append(left, lipgloss.NewStyle().
			Foreground(colors.Peach).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("[%s] Tab to toggle", sendingMode)))
	}
	if sb.err != nil {
		left = append(left, lipgloss.NewStyle().
			Foreground(colors.Red).
			Padding(0, 1).
			Render(sb.message))
	}
	left = append(left, divider)
	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, left...)

	info := "⚡ serial"
	if sb.connectionInfo != nil {
		info = sb.connectionInfo.Summary()
	}
	details := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(info)
	view := lipgloss.NewStyle().
		Foreground(colors.Overlay0).
		Padding(0, 1).
		Render(viewMode)
	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(timestamp)

	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, details, divider, view, divider, clock)

	spacerWidth := terminalWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
