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
	"go.uber.org/zap"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen [port]",
	Short: "Listen for data on a serial port with real-time display",
	Long: `Listen for incoming data on a serial port in a terminal user interface.

The port is opened read-only. Without a port argument or selector flag a
table of the discovered ports is shown to pick from. When the device is
unplugged the view stays open and shows why the connection ended.

Example usage:
  serialid listen
  serialid listen /dev/ttyUSB0
  serialid listen /dev/ttyUSB0 --baud 9600 --parity even --data-bits 7
  serialid listen --vid 2341 --pid 0043`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		noTimestamps, _ := cmd.Flags().GetBool("no-timestamps")
		rawMode, _ := cmd.Flags().GetBool("raw")

		mode := components.DisplayMode{ShowHex: true, ShowASCII: true, ShowTimestamps: !noTimestamps}
		if rawMode {
			mode = components.DisplayMode{ShowASCII: true}
		}

		logger := newLogger()
		defer logger.Sync()

		port, err := preparePort(cmd, args, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := runListenTUI(port, mode); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	addLineFlags(listenCmd)
	addSelectorFlags(listenCmd)
	listenCmd.Flags().Bool("no-timestamps", false, "Hide timestamps from output")
	listenCmd.Flags().Bool("raw", false, "Raw output mode: ASCII only, no timestamps")
}

// preparePort resolves the port to talk to, asking the user to pick one
// when neither a path nor a selector was given. The port is returned
// closed and non-blocking.
func preparePort(cmd *cobra.Command, args []string, logger *zap.Logger) (*serial.Port, error) {
	var meta serial.PortMetadata
	var err error

	if len(args) == 0 && selector(cmd) == nil {
		detector, derr := newDetector(logger)
		if derr != nil {
			return nil, derr
		}
		meta, err = pickPort(detector)
	} else {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		meta, err = resolvePort(cmd, path, logger)
	}
	if err != nil {
		return nil, err
	}

	cfg, err := lineConfig()
	if err != nil {
		return nil, err
	}
	return serial.NewPort(meta,
		serial.WithLineConfig(cfg),
		serial.WithNonBlocking(),
		serial.WithLogger(logger))
}

// connectionInfo describes the port for the status bar
func connectionInfo(port *serial.Port) *components.ConnectionInfo {
	info := &components.ConnectionInfo{Config: port.Config()}
	if meta := port.Metadata(); meta.HasUSBController {
		info.Description = meta.Description()
	}
	return info
}

// listenModel represents the Bubble Tea model for the listen command
type listenModel struct {
	*models.SerialModel
	terminal  *components.Terminal
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.TerminalKeys
}

func runListenTUI(port *serial.Port, mode components.DisplayMode) error {
	m := &listenModel{
		SerialModel: models.NewSerialModel(port, true, false),
		terminal:    components.NewTerminal(80, 20, mode),
		statusBar:   components.NewStatusBar(port.Path()),
		help:        help.New(),
		keys:        keys.NewTerminalKeys(),
	}
	m.statusBar.SetConnectionInfo(connectionInfo(port))

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	m.Cleanup()
	return err
}

func (m *listenModel) Init() tea.Cmd {
	return m.Connect()
}

func (m *listenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Status bar is a single line below the bordered content area
		statusBarHeight := 1
		borderHeight := 1
		m.terminal.SetSize(msg.Width, msg.Height-statusBarHeight-borderHeight)
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
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
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
		}
	}

	cmds = append(cmds, m.terminal.Update(msg))

	return m, tea.Batch(cmds...)
}

func (m *listenModel) View() string {
	content := "Initializing..."
	if m.IsReady() {
		content = m.terminal.View()
	}
	content = styles.ContentBorderStyle.Render(content)

	if m.help.ShowAll {
		helpBox := styles.HelpBoxStyle.Render(m.help.View(m.keys))
		content = lipgloss.Place(lipgloss.Width(content), lipgloss.Height(content),
			lipgloss.Center, lipgloss.Center, helpBox)
	}

	timestamp := time.Now().Format("15:04:05")
	statusBar := m.statusBar.ComprehensiveStatusBar(
		models.InputModeNormal.String(), "", m.terminal.GetViewMode().String(), timestamp)

	return lipgloss.JoinVertical(lipgloss.Left, content, statusBar)
}
