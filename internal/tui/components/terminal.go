package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type ViewMode int

const (
	ViewModeFollow ViewMode = iota
	ViewModeScroll
)

func (m ViewMode) String() string {
	if m == ViewModeScroll {
		return "SCROLL"
	}
	return "FOLLOW"
}

// DefaultScrollback is the number of messages a Terminal keeps
const DefaultScrollback = 5000

// Terminal shows the message log in a viewport. It keeps the raw messages
// so that display toggles re-render the whole log.
type Terminal struct {
	viewport   viewport.Model
	formatter  *DataFormatter
	messages   []DataReceivedMsg
	viewMode   ViewMode
	scrollback int
}

func NewTerminal(width, height int, mode DisplayMode) *Terminal {
	return &Terminal{
		viewport:   viewport.New(width, height),
		formatter:  NewDataFormatter(mode),
		messages:   make([]DataReceivedMsg, 0),
		scrollback: DefaultScrollback,
	}
}

func (t *Terminal) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
	t.refresh()
}

// AddMessage appends msg, dropping the oldest message beyond the scrollback
func (t *Terminal) AddMessage(msg DataReceivedMsg) {
	t.messages = append(t.messages, msg)
	if len(t.messages) > t.scrollback {
		t.messages = t.messages[len(t.messages)-t.scrollback:]
	}
	t.refresh()
}

// UpdateLast replaces the most recent message, used to settle a TX status
func (t *Terminal) UpdateLast(msg DataReceivedMsg) {
	if len(t.messages) == 0 {
		t.AddMessage(msg)
		return
	}
	t.messages[len(t.messages)-1] = msg
	t.refresh()
}

func (t *Terminal) Messages() []DataReceivedMsg {
	return t.messages
}

func (t *Terminal) Clear() {
	t.messages = make([]DataReceivedMsg, 0)
	t.viewport.SetContent("")
}

func (t *Terminal) ToggleHex() {
	t.formatter.ToggleHex()
	t.refresh()
}

func (t *Terminal) ToggleASCII() {
	t.formatter.ToggleASCII()
	t.refresh()
}

func (t *Terminal) ToggleTimestamps() {
	t.formatter.ToggleTimestamps()
	t.refresh()
}

func (t *Terminal) GetDisplayMode() DisplayMode {
	return t.formatter.GetDisplayMode()
}

func (t *Terminal) GetViewMode() ViewMode {
	return t.viewMode
}

// ToggleFollow switches between following new data and free scrolling
func (t *Terminal) ToggleFollow() ViewMode {
	if t.viewMode == ViewModeFollow {
		t.viewMode = ViewModeScroll
	} else {
		t.viewMode = ViewModeFollow
		t.viewport.GotoBottom()
	}
	return t.viewMode
}

func (t *Terminal) ScrollUp() {
	t.viewMode = ViewModeScroll
	t.viewport.LineUp(1)
}

func (t *Terminal) ScrollDown() {
	t.viewport.LineDown(1)
	if t.viewport.AtBottom() {
		t.viewMode = ViewModeFollow
	}
}

func (t *Terminal) refresh() {
	t.viewport.SetContent(strings.Join(t.formatter.FormatMessages(t.messages), "\n"))
	if t.viewMode == ViewModeFollow {
		t.viewport.GotoBottom()
	}
}

func (t *Terminal) Update(msg tea.Msg) tea.Cmd {
	// Key messages are left to the owning model's bindings
	var cmd tea.Cmd
	switch msg.(type) {
	case tea.WindowSizeMsg:
		t.viewport, cmd = t.viewport.Update(msg)
	case tea.MouseMsg:
		t.viewport, cmd = t.viewport.Update(msg)
		if t.viewport.AtBottom() {
			t.viewMode = ViewModeFollow
		} else {
			t.viewMode = ViewModeScroll
		}
	}
	return cmd
}

func (t *Terminal) View() string {
	return t.viewport.View()
}
