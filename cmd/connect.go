/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/allbin/go-serialid"
	"github.com/allbin/go-serialid/internal/tui/components"
	"github.com/allbin/go-serialid/internal/tui/keys"
	"github.com/allbin/go-serialid/internal/tui/models"
	"github.com/allbin/go-serialid/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect [port]",
	Short: "Open a bidirectional terminal session with a serial device",
	Long: `Open a serial port for reading and writing in a terminal user interface.

Incoming data is shown as it arrives. Press i to type a message and Enter
to send it; Tab switches between ASCII and hex input. ASCII messages are
sent with the line ending given by --eol.

Without a port argument or selector flag a table of the discovered ports is
shown to pick from.

Example usage:
  serialid connect /dev/ttyACM0
  serialid connect /dev/ttyUSB0 --baud 9600 --eol crlf
  serialid connect --serial A50285BI`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eolName, _ := cmd.Flags().GetString("eol")
		eol, err := lineEnding(eolName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		logger := newLogger()
		defer logger.Sync()

		port, err := preparePort(cmd, args, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := runConnectTUI(port, eol); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)

	addLineFlags(connectCmd)
	addSelectorFlags(connectCmd)
	connectCmd.Flags().String("eol", "lf", "Line ending appended to ASCII messages: none, lf, cr, crlf")
}

func lineEnding(name string) ([]byte, error) {
	switch name {
	case "none":
		return nil, nil
	case "lf":
		return []byte("\n"), nil
	case "cr":
		return []byte("\r"), nil
	case "crlf":
		return []byte("\r\n"), nil
	default:
		return nil, fmt.Errorf("unknown line ending %q (expected none, lf, cr or crlf)", name)
	}
}

type connectModel struct {
	*models.SerialModel
	terminal  *components.Terminal
	input     *components.Input
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.ConnectKeys
}

func runConnectTUI(port *serial.Port, eol []byte) error {
	mode := components.DisplayMode{ShowHex: true, ShowASCII: true, ShowTimestamps: true}
	m := &connectModel{
		SerialModel: models.NewSerialModel(port, true, true),
		terminal:    components.NewTerminal(80, 20, mode),
		input:       components.NewInput(),
		statusBar:   components.NewStatusBar(port.Path()),
		help:        help.New(),
		keys:        keys.NewConnectKeys(),
	}
	m.input.Blur()
	m.input.SetLineEnding(eol)
	m.statusBar.SetConnectionInfo(connectionInfo(port))

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	m.Cleanup()
	return err
}

func (m *connectModel) Init() tea.Cmd {
	return m.Connect()
}

// send writes the current input and logs it as a TX message
func (m *connectModel) send() {
	payload, err := m.input.Payload()
	if err != nil {
		m.terminal.AddMessage(components.DataReceivedMsg{
			Timestamp: time.Now(),
			Data:      []byte(fmt.Sprintf("Invalid input: %v", err)),
			IsTX:      true,
			Status:    components.TxError,
		})
		return
	}

	status, err := m.Send(payload)
	m.terminal.AddMessage(components.DataReceivedMsg{
		Timestamp: time.Now(),
		Data:      payload,
		IsTX:      true,
		Status:    status,
	})
	if err != nil {
		m.Disconnect(err)
		m.statusBar.SetDisconnected(err)
		return
	}

	m.input.AddToHistory(m.input.Value())
	m.input.Reset()
}

func (m *connectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Input area height (includes border)
		inputHeight := 3
		statusBarHeight := 1
		m.terminal.SetSize(msg.Width, msg.Height-inputHeight-statusBarHeight)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.SetReady(true)

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
			break
		}
		m.statusBar.SetConnected()
		cmds = append(cmds, m.Poll())

	case models.PollMsg:
		data, err := m.HandlePoll(time.Time(msg))
		if data != nil {
			m.terminal.AddMessage(*data)
		}
		if err != nil {
			m.statusBar.SetDisconnected(err)
			break
		}
		cmds = append(cmds, m.Poll())

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, nil
			case key.Matches(msg, m.keys.Enter):
				m.send()
				return m, nil
			case key.Matches(msg, m.keys.HistoryUp):
				m.input.NavigateHistoryUp()
				return m, nil
			case key.Matches(msg, m.keys.HistoryDown):
				m.input.NavigateHistoryDown()
				return m, nil
			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
				return m, nil
			}

			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.InsertMode):
			m.SetInputMode(models.InputModeInsert)
			m.input.Focus()
		case key.Matches(msg, m.keys.Clear):
			m.terminal.Clear()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.ToggleHex):
			m.terminal.ToggleHex()
		case key.Matches(msg, m.keys.ToggleASCII):
			m.terminal.ToggleASCII()
		case key.Matches(msg, m.keys.ToggleTimestamps):
			m.terminal.ToggleTimestamps()
		case key.Matches(msg, m.keys.ToggleFollow):
			m.terminal.ToggleFollow()
		case key.Matches(msg, m.keys.Up):
			m.terminal.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.terminal.ScrollDown()
		case key.Matches(msg, m.keys.ToggleSendMode):
			m.input.ToggleSendingMode()
		}
	}

	cmds = append(cmds, m.terminal.Update(msg))
	return m, tea.Batch(cmds...)
}

func (m *connectModel) View() string {
	content := "Initializing..."
	if m.IsReady() {
		content = m.terminal.View()
	}

	if m.help.ShowAll {
		helpBox := styles.HelpBoxStyle.Render(m.help.View(m.keys))
		content = lipgloss.Place(lipgloss.Width(content), lipgloss.Height(content),
			lipgloss.Center, lipgloss.Center, helpBox)
	}

	input := m.input.ViewWithMode(m.IsInInsertMode())

	timestamp := time.Now().Format("15:04:05")
	statusBar := m.statusBar.ComprehensiveStatusBar(
		m.GetInputMode().String(),
		m.input.GetSendingMode().String(),
		m.terminal.GetViewMode().String(),
		timestamp)

	return lipgloss.JoinVertical(lipgloss.Left, content, input, statusBar)
}
