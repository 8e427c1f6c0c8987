package components

import (
	"errors"
	"fmt"
	"strings"

	"github.com/allbin/go-serialid/internal/tui/colors"
	"github.com/allbin/go-serialid/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type SendingMode int

const (
	SendingModeASCII SendingMode = iota
	SendingModeHex
)

func (s SendingMode) String() string {
	if s == SendingModeHex {
		return "HEX"
	}
	return "ASCII"
}

func (s SendingMode) placeholder() string {
	if s == SendingModeHex {
		return "Enter hex (e.g. 48656C6C6F or 48 65 6C 6C 6F)..."
	}
	return "Type message and press Enter to send..."
}

const (
	maxHistory = 100

	// hintWidth is reserved to the right of the field for the payload hint.
	hintWidth = 14
)

// historyEntry remembers how a sent line was encoded so recalling it
// restores the mode too.
type historyEntry struct {
	text string
	mode SendingMode
}

// Input is the message line of the connect view. ASCII lines get the
// configured line ending appended, hex lines are sent exactly as typed.
type Input struct {
	textInput   textinput.Model
	sendingMode SendingMode
	lineEnding  []byte

	history      []historyEntry
	historyIndex int
	draft        historyEntry

	width int
}

func NewInput() *Input {
	ti := textinput.New()
	ti.Placeholder = SendingModeASCII.placeholder()
	ti.CharLimit = 256
	ti.Prompt = ""
	ti.Focus()

	return &Input{
		textInput:    ti,
		sendingMode:  SendingModeASCII,
		historyIndex: -1,
	}
}

// SetLineEnding sets the bytes appended to ASCII payloads.
func (i *Input) SetLineEnding(eol []byte) {
	i.lineEnding = eol
}

func (i *Input) SetWidth(width int) {
	i.width = width
	// border(2) + padding(2) + prompt(2) + hint
	i.textInput.Width = max(width-6-hintWidth, 20)
}

func (i *Input) Focus() { i.textInput.Focus() }
func (i *Input) Blur()  { i.textInput.Blur() }

func (i *Input) Value() string { return i.textInput.Value() }

func (i *Input) SetValue(value string) {
	i.textInput.SetValue(value)
	i.textInput.CursorEnd()
}

func (i *Input) Reset() {
	i.textInput.Reset()
}

func (i *Input) setMode(mode SendingMode) {
	i.sendingMode = mode
	i.textInput.Placeholder = mode.placeholder()
}

func (i *Input) ToggleSendingMode() {
	if i.sendingMode == SendingModeASCII {
		i.setMode(SendingModeHex)
	} else {
		i.setMode(SendingModeASCII)
	}
}

func (i *Input) GetSendingMode() SendingMode {
	return i.sendingMode
}

// Payload returns the bytes to write for the current line: decoded hex, or
// the text followed by the line ending.
func (i *Input) Payload() ([]byte, error) {
	value := i.textInput.Value()
	if i.sendingMode == SendingModeHex {
		return ParseHex(value)
	}
	if value == "" {
		return nil, fmt.Errorf("empty input")
	}
	return append([]byte(value), i.lineEnding...), nil
}

// Hint summarizes what Enter would send, and whether it is valid.
func (i *Input) Hint() (string, bool) {
	if i.textInput.Value() == "" {
		return "", true
	}
	payload, err := i.Payload()
	if err != nil {
		if errors.Is(err, errOddHexDigits) {
			return "odd digits", false
		}
		return "invalid hex", false
	}
	hint := fmt.Sprintf("%d B", len(payload))
	if i.sendingMode == SendingModeASCII && len(i.lineEnding) > 0 {
		hint += " +" + lineEndingName(i.lineEnding)
	}
	return hint, true
}

func lineEndingName(eol []byte) string {
	switch string(eol) {
	case "\n":
		return "LF"
	case "\r":
		return "CR"
	case "\r\n":
		return "CRLF"
	default:
		return fmt.Sprintf("% X", eol)
	}
}

func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

// ViewWithMode renders the input box, or a hint to enter insert mode
func (i *Input) ViewWithMode(isInsertMode bool) string {
	promptSymbol, promptColor := ">", colors.Green
	if i.sendingMode == SendingModeHex {
		promptSymbol, promptColor = "#", colors.Yellow
	}
	prompt := lipgloss.NewStyle().Foreground(promptColor).Bold(true).Render(promptSymbol)

	var content string
	if isInsertMode {
		field := lipgloss.NewStyle().Width(i.textInput.Width + 1).Render(i.textInput.View())
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", field, i.renderHint())
	} else {
		instruction := lipgloss.NewStyle().
			Foreground(colors.Overlay0).
			Render("Press 'i' to enter insert mode")
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", instruction)
	}

	// RoundedBorder and horizontal padding take 4 columns
	boxStyle := styles.InputStyle.
		Width(max(i.width-4, 10)).
		AlignHorizontal(lipgloss.Left)
	if isInsertMode {
		boxStyle = boxStyle.BorderForeground(promptColor)
	}

	return boxStyle.Render(content)
}

func (i *Input) renderHint() string {
	hint, ok := i.Hint()
	style := styles.MutedStyle
	if !ok {
		style = styles.ErrorStyle
	}
	return style.Width(hintWidth).Align(lipgloss.Right).Render(hint)
}

// AddToHistory records a sent line with the current mode. Blank lines and
// immediate repeats are not recorded.
func (i *Input) AddToHistory(command string) {
	command = strings.TrimSpace(command)
	if command == "" {
		return
	}

	entry := historyEntry{text: command, mode: i.sendingMode}
	if n := len(i.history); n == 0 || i.history[n-1] != entry {
		i.history = append(i.history, entry)
		if len(i.history) > maxHistory {
			i.history = i.history[1:]
		}
	}

	i.historyIndex = -1
	i.draft = historyEntry{}
}

func (i *Input) recall(entry historyEntry) {
	i.setMode(entry.mode)
	i.SetValue(entry.text)
}

// NavigateHistoryUp moves to the previous entry, saving the line being
// edited on the first step.
func (i *Input) NavigateHistoryUp() {
	if len(i.history) == 0 {
		return
	}

	switch {
	case i.historyIndex == -1:
		i.draft = historyEntry{text: i.textInput.Value(), mode: i.sendingMode}
		i.historyIndex = len(i.history) - 1
	case i.historyIndex > 0:
		i.historyIndex--
	}
	i.recall(i.history[i.historyIndex])
}

// NavigateHistoryDown moves to the next entry, ending at the saved draft.
func (i *Input) NavigateHistoryDown() {
	if i.historyIndex == -1 {
		return
	}

	if i.historyIndex < len(i.history)-1 {
		i.historyIndex++
		i.recall(i.history[i.historyIndex])
		return
	}
	i.historyIndex = -1
	i.recall(i.draft)
	i.draft = historyEntry{}
}
