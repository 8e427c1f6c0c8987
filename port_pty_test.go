//go:build linux

package serial

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// openPTY returns the master fd and the slave path of a fresh pseudo
// terminal. The test is skipped when the host has no ptmx.
func openPTY(t *testing.T) (int, string) {
	t.Helper()

	master, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		t.Skipf("Skipping pty test, /dev/ptmx unavailable: %v", err)
	}
	t.Cleanup(func() { unix.Close(master) })

	if err := unix.IoctlSetPointerInt(master, unix.TIOCSPTLCK, 0); err != nil {
		t.Fatalf("Failed to unlock pty: %v", err)
	}
	n, err := unix.IoctlGetInt(master, unix.TIOCGPTN)
	if err != nil {
		t.Fatalf("Failed to get pty number: %v", err)
	}
	return master, fmt.Sprintf("/dev/pts/%d", n)
}

func openPTYPort(t *testing.T, path string, cfg LineConfig) *Port {
	t.Helper()

	p, err := NewPortFromPath(path, WithLineConfig(cfg), WithNonBlocking())
	if err != nil {
		t.Fatalf("NewPortFromPath failed: %v", err)
	}
	if err := p.Open(true, true); err != nil {
		t.Fatalf("Open(%s, %v) failed: %v", path, cfg, err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func slaveTermios(t *testing.T, p *Port) *unix.Termios {
	t.Helper()
	termios, err := unix.IoctlGetTermios(p.fd, unix.TCGETS)
	if err != nil {
		t.Fatalf("Failed to read back termios: %v", err)
	}
	return termios
}

// readWithin polls ReadBytes until want bytes have arrived. Data written to a
// pty master reaches the slave asynchronously.
func readWithin(t *testing.T, p *Port, want int, timeout time.Duration) []byte {
	t.Helper()

	var got []byte
	deadline := time.Now().Add(timeout)
	for len(got) < want && time.Now().Before(deadline) {
		data, err := p.ReadBytes(want - len(got))
		if err != nil {
			if !errors.Is(err, unix.EAGAIN) {
				t.Fatalf("ReadBytes failed: %v", err)
			}
			time.Sleep(5 * time.Millisecond)
			continue
		}
		got = append(got, data...)
	}
	return got
}

func TestPortOnPTY(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// The pty driver forces CS8 and clears PARENB on the slave, so only the
	// speed, stop bit and raw mode settings can be read back.
	tests := []struct {
		name       string
		config     LineConfig
		twoStop    bool
		customBaud bool
	}{
		{"default 8N1", DefaultLineConfig(), false, false},
		{"custom 250000 7E2", LineConfig{250000, 250000, ParityEven, 7, true}, true, true},
		{"9600 8O1", LineConfig{Baud9600, Baud9600, ParityOdd, 8, false}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, path := openPTY(t)
			p := openPTYPort(t, path, tt.config)

			if p.State() != StateOpen {
				t.Errorf("State() = %v, expected %v", p.State(), StateOpen)
			}

			termios := slaveTermios(t, p)
			if p.Config() != tt.config {
				t.Errorf("Config() = %v, expected %v", p.Config(), tt.config)
			}
			if got := termios.Cflag&unix.CSTOPB != 0; got != tt.twoStop {
				t.Errorf("CSTOPB = %v, expected %v", got, tt.twoStop)
			}
			if got := termios.Cflag&unix.CBAUD == unix.BOTHER; got != tt.customBaud {
				t.Errorf("BOTHER set = %v, expected %v (cflag %#x)", got, tt.customBaud, termios.Cflag)
			}
			if termios.Lflag&(unix.ICANON|unix.ECHO) != 0 {
				t.Errorf("terminal not in raw mode, lflag %#x", termios.Lflag)
			}
			if termios.Cc[unix.VMIN] != 1 || termios.Cc[unix.VTIME] != 0 {
				t.Errorf("VMIN/VTIME = %d/%d, expected 1/0", termios.Cc[unix.VMIN], termios.Cc[unix.VTIME])
			}
		})
	}
}

func TestPortPTYReadWrite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	master, path := openPTY(t)
	p := openPTYPort(t, path, DefaultLineConfig())

	_, err := p.ReadBytes(16)
	if !errors.Is(err, unix.EAGAIN) {
		t.Errorf("empty read error = %v, expected EAGAIN", err)
	}
	if !errors.Is(err, ErrInvalidReadBytes) {
		t.Errorf("empty read error = %v, expected ErrInvalidReadBytes", err)
	}

	if _, err := unix.Write(master, []byte("hi")); err != nil {
		t.Fatalf("Failed to write to pty master: %v", err)
	}
	if got := readWithin(t, p, 2, 2*time.Second); string(got) != "hi" {
		t.Errorf("ReadBytes = %q, expected %q", got, "hi")
	}

	n, err := p.Write([]byte("ok\n"))
	if err != nil || n != 3 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	buf := make([]byte, 16)
	var echoed []byte
	deadline := time.Now().Add(2 * time.Second)
	for len(echoed) < 3 && time.Now().Before(deadline) {
		n, err := unix.Read(master, buf)
		if err != nil {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		echoed = append(echoed, buf[:n]...)
	}
	// OPOST is cleared, so the newline is not expanded to CRLF.
	if string(echoed) != "ok\n" {
		t.Errorf("master read %q, expected %q", echoed, "ok\n")
	}

	if err := p.Flush(); err != nil {
		t.Errorf("Flush failed: %v", err)
	}
}

func TestPortPTYUpdateConfig(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	_, path := openPTY(t)
	p := openPTYPort(t, path, DefaultLineConfig())

	if err := p.UpdateConfig(WithParity(ParityOdd)); err != nil {
		t.Fatalf("UpdateConfig failed: %v", err)
	}
	if p.State() != StateConfigured {
		t.Errorf("State() = %v, expected %v", p.State(), StateConfigured)
	}
	if got := p.Config().String(); got != "115200 8O1" {
		t.Errorf("Config() = %s, expected 115200 8O1", got)
	}
	if err := p.UpdateConfig(WithBaudRate(250000)); err != nil {
		t.Fatalf("UpdateConfig to a custom rate failed: %v", err)
	}
	if got := slaveTermios(t, p).Cflag & unix.CBAUD; got != unix.BOTHER {
		t.Errorf("CBAUD = %#x, expected BOTHER", got)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if _, err := p.ReadBytes(1); !errors.Is(err, ErrPortClosed) {
		t.Errorf("read after Close error = %v, expected ErrPortClosed", err)
	}
}
