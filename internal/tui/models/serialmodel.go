package models

import (
	"errors"
	"time"

	"github.com/allbin/go-serialid"
	"github.com/allbin/go-serialid/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sys/unix"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	switch m {
	case InputModeInsert:
		return "INSERT"
	default:
		return "NORMAL"
	}
}

const (
	DefaultPollInterval = 20 * time.Millisecond
	DefaultReadSize     = 1024

	// maxPollBytes bounds the bytes drained in one poll so a chatty device
	// cannot stall the UI.
	maxPollBytes = 64 * 1024
)

type ConnectionStatusMsg struct {
	Connected bool
	Error     error
}

// PollMsg asks the model to drain the port
type PollMsg time.Time

// SerialModel owns the port for a TUI program. Connect opens the port in a
// command, which bubbletea runs on its own goroutine. Polling starts only
// after the ConnectionStatusMsg from that command reaches Update, so the open
// happens before every later port call, and those calls all run on the update
// loop. Polls are timer messages rather than reader goroutines.
type SerialModel struct {
	port         *serial.Port
	rx, tx       bool
	connected    bool
	err          error
	ready        bool
	inputMode    InputMode
	pollInterval time.Duration
	readSize     int
}

func NewSerialModel(port *serial.Port, rx, tx bool) *SerialModel {
	return &SerialModel{
		port:         port,
		rx:           rx,
		tx:           tx,
		inputMode:    InputModeNormal,
		pollInterval: DefaultPollInterval,
		readSize:     DefaultReadSize,
	}
}

func (m *SerialModel) SetPollInterval(d time.Duration) {
	if d > 0 {
		m.pollInterval = d
	}
}

func (m *SerialModel) GetPort() *serial.Port {
	return m.port
}

func (m *SerialModel) GetPortPath() string {
	return m.port.Path()
}

// Connect opens the port and reports the outcome as a ConnectionStatusMsg
func (m *SerialModel) Connect() tea.Cmd {
	port, rx, tx := m.port, m.rx, m.tx
	return func() tea.Msg {
		if err := port.Open(rx, tx); err != nil {
			return ConnectionStatusMsg{Connected: false, Error: err}
		}
		return ConnectionStatusMsg{Connected: true}
	}
}

// Poll schedules the next PollMsg. Nothing is scheduled once the port is
// no longer connected or is write-only.
func (m *SerialModel) Poll() tea.Cmd {
	if !m.connected || !m.rx {
		return nil
	}
	return tea.Tick(m.pollInterval, func(t time.Time) tea.Msg {
		return PollMsg(t)
	})
}

// ReadAvailable drains whatever the non-blocking port has buffered. An
// empty poll is not an error.
func (m *SerialModel) ReadAvailable() ([]byte, error) {
	var out []byte
	for len(out) < maxPollBytes {
		chunk, err := m.port.ReadBytes(m.readSize)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return out, nil
			}
			return out, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// HandlePoll drains the port and turns the result into a message for the
// terminal, nil when nothing arrived. A read failure disconnects the model.
func (m *SerialModel) HandlePoll(t time.Time) (*components.DataReceivedMsg, error) {
	data, err := m.ReadAvailable()
	var msg *components.DataReceivedMsg
	if len(data) > 0 {
		msg = &components.DataReceivedMsg{Timestamp: t, Data: data}
	}
	if err != nil {
		m.Disconnect(err)
	}
	return msg, err
}

// Send writes data and reports the TX status to show for it
func (m *SerialModel) Send(data []byte) (components.TxStatus, error) {
	if !m.connected {
		return components.TxError, serial.ErrPortClosed
	}
	n, err := m.port.Write(data)
	switch {
	case err != nil:
		return components.TxError, err
	case n < len(data):
		return components.TxPartial, nil
	default:
		return components.TxWritten, nil
	}
}

// Disconnect closes the port and records why
func (m *SerialModel) Disconnect(err error) {
	m.connected = false
	m.err = err
	m.port.Close()
}

// IsDeviceGone reports whether the last error means the device went away
func (m *SerialModel) IsDeviceGone() bool {
	return errors.Is(m.err, serial.ErrDeviceDisconnected)
}

func (m *SerialModel) IsConnected() bool {
	return m.connected
}

func (m *SerialModel) SetConnected(connected bool) {
	m.connected = connected
}

func (m *SerialModel) GetError() error {
	return m.err
}

func (m *SerialModel) SetError(err error) {
	m.err = err
}

func (m *SerialModel) IsReady() bool {
	return m.ready
}

func (m *SerialModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *SerialModel) GetInputMode() InputMode {
	return m.inputMode
}

func (m *SerialModel) SetInputMode(mode InputMode) {
	m.inputMode = mode
}

func (m *SerialModel) IsInInsertMode() bool {
	return m.inputMode == InputModeInsert
}

// Cleanup closes the port; it is safe to call more than once
func (m *SerialModel) Cleanup() {
	m.connected = false
	m.port.Close()
}
