/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/allbin/go-serialid"
	"github.com/allbin/go-serialid/internal/tui/components"
	"github.com/allbin/go-serialid/internal/tui/keys"
	"github.com/allbin/go-serialid/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errNoSelection = errors.New("no port selected")

type portsMsg struct {
	report serial.Report
	err    error
}

// pickerModel shows the discovered ports in a table and returns the one
// the user selects.
type pickerModel struct {
	detector *serial.Detector
	table    *components.PortTable
	help     help.Model
	keys     keys.PickerKeys
	skipped  int
	err      error
	selected *serial.PortMetadata
}

func newPickerModel(detector *serial.Detector) *pickerModel {
	return &pickerModel{
		detector: detector,
		table:    components.NewPortTable(100, 10),
		help:     help.New(),
		keys:     keys.NewPickerKeys(),
	}
}

func (m *pickerModel) scan() tea.Msg {
	report, err := m.detector.DiscoverReport()
	return portsMsg{report: report, err: err}
}

func (m *pickerModel) Init() tea.Cmd {
	return m.scan
}

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Title, blank line, help and status lines
		m.table.SetSize(msg.Width, msg.Height-5)
		m.help.Width = msg.Width
		return m, nil

	case portsMsg:
		m.err = msg.err
		m.skipped = len(msg.report.Skipped)
		m.table.SetPorts(msg.report.Ports)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.scan
		case key.Matches(msg, m.keys.Select):
			if p, ok := m.table.Selected(); ok {
				m.selected = &p
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *pickerModel) View() string {
	title := styles.TitleStyle.Render("Select a serial port")

	var body string
	switch {
	case m.err != nil:
		body = styles.ErrorStyle.Render(fmt.Sprintf("Discovery failed: %v", m.err))
	case m.table.Len() == 0:
		body = styles.MutedStyle.Render("No serial ports found, press r to rescan")
	default:
		body = m.table.View()
	}

	status := ""
	if m.skipped > 0 {
		status = styles.WarningStyle.Render(fmt.Sprintf("%d device(s) skipped", m.skipped))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, "", body, status, m.help.View(m.keys))
}

// pickPort runs the picker and returns the chosen port
func pickPort(detector *serial.Detector) (serial.PortMetadata, error) {
	m := newPickerModel(detector)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return serial.PortMetadata{}, err
	}
	if m.selected == nil {
		return serial.PortMetadata{}, errNoSelection
	}
	return *m.selected, nil
}
