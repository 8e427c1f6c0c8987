package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/go-serialid/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

// TxStatus tracks an outgoing message; it is empty for received data
type TxStatus string

const (
	TxPending TxStatus = "PENDING"
	TxWritten TxStatus = "WRITTEN"
	TxPartial TxStatus = "PARTIAL"
	TxError   TxStatus = "ERROR"
)

type DataReceivedMsg struct {
	Timestamp time.Time
	Data      []byte
	IsTX      bool
	Status    TxStatus
}

type DisplayMode struct {
	ShowHex        bool
	ShowASCII      bool
	ShowTimestamps bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(mode DisplayMode) *DataFormatter {
	return &DataFormatter{mode: mode}
}

func (df *DataFormatter) SetDisplayMode(mode DisplayMode) {
	df.mode = mode
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}

func (df *DataFormatter) ToggleTimestamps() {
	df.mode.ShowTimestamps = !df.mode.ShowTimestamps
}

func (df *DataFormatter) indicator(msg DataReceivedMsg) string {
	if !msg.IsTX {
		return lipgloss.NewStyle().
			Foreground(colors.Sky).
			Bold(true).
			Render("↙ RX")
	}

	var txColor lipgloss.Color
	var statusText string
	switch msg.Status {
	case TxPending:
		txColor = colors.Yellow
		statusText = "TX ○"
	case TxWritten:
		txColor = colors.Green
		statusText = "TX ✓"
	case TxPartial:
		txColor = colors.Peach
		statusText = "TX ~"
	case TxError:
		txColor = colors.Red
		statusText = "TX ✗"
	default:
		txColor = colors.Peach
		statusText = "TX"
	}
	return lipgloss.NewStyle().
		Foreground(txColor).
		Bold(true).
		Render("↗ " + statusText)
}

// FormatMessage renders one message as a single terminal line
func (df *DataFormatter) FormatMessage(msg DataReceivedMsg) string {
	var parts []string
	if df.mode.ShowHex {
		parts = append(parts, "HEX: "+FormatHex(msg.Data))
	}
	if df.mode.ShowASCII {
		parts = append(parts, "ASCII: "+FormatASCII(msg.Data))
	}
	if !df.mode.ShowHex && !df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(msg.Data)))
	}

	line := fmt.Sprintf("%s: %s", df.indicator(msg), strings.Join(parts, "  "))
	if !df.mode.ShowTimestamps {
		return line
	}

	timestamp := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Render(fmt.Sprintf("[%s]", msg.Timestamp.Format("15:04:05.000")))
	return timestamp + " " + line
}

func (df *DataFormatter) FormatMessages(messages []DataReceivedMsg) []string {
	formatted := make([]string, len(messages))
	for i, msg := range messages {
		formatted[i] = df.FormatMessage(msg)
	}
	return formatted
}

// FormatHex renders data as space separated upper case hex pairs
func FormatHex(data []byte) string {
	return fmt.Sprintf("% X", data)
}

// FormatASCII renders printable ASCII as is and everything else as '.'
func FormatASCII(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}
