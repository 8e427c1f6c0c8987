package serial

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// State is the lifecycle state of a Port
type State int

const (
	StateClosed State = iota
	StateOpen
	StateConfigured
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateConfigured:
		return "configured"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ibshift is the offset of the input speed (CIBAUD) within Cflag.
const ibshift = 16

// Port owns at most one open handle to a serial device together with the
// line configuration applied to it. The configuration survives Close and
// is pushed again on the next Open.
//
// A Port is not safe for concurrent use.
type Port struct {
	meta        PortMetadata
	config      LineConfig
	state       State
	fd          int
	nonBlocking bool
	term        terminal
	logger      *zap.Logger
}

// PortOption configures a Port at construction
type PortOption func(*Port) error

// WithLineConfig sets the configuration pushed on the first Open
func WithLineConfig(cfg LineConfig) PortOption {
	return func(p *Port) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		p.config = cfg
		return nil
	}
}

// WithNonBlocking opens the device with O_NONBLOCK, so Read returns
// immediately when no data is pending.
func WithNonBlocking() PortOption {
	return func(p *Port) error {
		p.nonBlocking = true
		return nil
	}
}

// WithLogger sets the logger used for lifecycle events
func WithLogger(logger *zap.Logger) PortOption {
	return func(p *Port) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

func withTerminal(term terminal) PortOption {
	return func(p *Port) error {
		p.term = term
		return nil
	}
}

// NewPort returns a closed port for the device described by meta.
func NewPort(meta PortMetadata, opts ...PortOption) (*Port, error) {
	p := &Port{
		meta:   meta,
		config: DefaultLineConfig(),
		fd:     -1,
		term:   unixTerminal{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// NewPortFromPath returns a closed port for a device path that did not come
// from discovery.
func NewPortFromPath(path string, opts ...PortOption) (*Port, error) {
	return NewPort(PortMetadata{Path: path}, opts...)
}

// Path returns the device path
func (p *Port) Path() string {
	return p.meta.Path
}

// Metadata returns the discovery record the port was created from
func (p *Port) Metadata() PortMetadata {
	return p.meta
}

// Config returns the current line configuration
func (p *Port) Config() LineConfig {
	return p.config
}

// State returns the lifecycle state
func (p *Port) State() State {
	return p.state
}

// Open opens the device for reading (rx), writing (tx) or both and pushes
// the current line configuration. If the configuration cannot be applied
// the handle is closed again and ErrApplyConfig is returned.
func (p *Port) Open(rx, tx bool) error {
	if !rx && !tx {
		return ErrInvalidDirection
	}
	if p.meta.Path == "" {
		return ErrInvalidPath
	}
	if p.state != StateClosed {
		return ErrPortAlreadyOpen
	}

	flags := unix.O_NOCTTY
	switch {
	case rx && tx:
		flags |= unix.O_RDWR
	case rx:
		flags |= unix.O_RDONLY
	default:
		flags |= unix.O_WRONLY
	}
	if p.nonBlocking {
		flags |= unix.O_NONBLOCK
	}

	fd, err := p.term.open(p.meta.Path, flags)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOpenFailed, p.meta.Path, err)
	}
	p.fd = fd
	p.state = StateOpen

	if err := p.applyConfig(); err != nil {
		p.Close()
		return fmt.Errorf("%w: %w", ErrApplyConfig, err)
	}

	p.logger.Debug("serial port opened",
		zap.String("path", p.meta.Path),
		zap.Bool("rx", rx),
		zap.Bool("tx", tx),
		zap.Stringer("config", p.config))
	return nil
}

// SetConfig replaces the whole line configuration. A closed port only
// stores it; an open port applies it immediately. When applying fails the
// previous configuration is kept.
func (p *Port) SetConfig(cfg LineConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	prev := p.config
	p.config = cfg
	if p.state == StateClosed {
		return nil
	}

	if err := p.applyConfig(); err != nil {
		p.config = prev
		return fmt.Errorf("%w: %w", ErrApplyConfig, err)
	}
	p.state = StateConfigured
	p.logger.Debug("serial port configured",
		zap.String("path", p.meta.Path),
		zap.Stringer("config", cfg))
	return nil
}

// UpdateConfig changes only the fields the options name and keeps the rest.
func (p *Port) UpdateConfig(opts ...ConfigOption) error {
	cfg, err := p.config.With(opts...)
	if err != nil {
		return err
	}
	return p.SetConfig(cfg)
}

// applyConfig reads the current attributes, rewrites them for raw I/O with
// the configured framing and commits them immediately.
func (p *Port) applyConfig() error {
	if p.state == StateClosed {
		return ErrPortClosed
	}

	termios, err := p.term.getAttr(p.fd)
	if err != nil {
		return fmt.Errorf("failed to get termios: %w", err)
	}

	custom := configureTermios(termios, p.config)

	if custom {
		err = p.term.setAttr2(p.fd, termios)
	} else {
		err = p.term.setAttr(p.fd, termios)
	}
	if err != nil {
		return fmt.Errorf("failed to set termios: %w", err)
	}
	return nil
}

// configureTermios writes cfg into termios and reports whether a custom
// speed is involved, in which case TCSETS2 is needed to commit it.
func configureTermios(termios *unix.Termios, cfg LineConfig) bool {
	rx, rxCustom := cfg.RxBaudRate.speedToken()
	tx, txCustom := cfg.TxBaudRate.speedToken()
	custom := rxCustom || txCustom

	// Speeds
	termios.Cflag &^= unix.CBAUD | unix.CIBAUD
	if custom {
		termios.Cflag |= unix.BOTHER | unix.BOTHER<<ibshift
		termios.Ispeed = uint32(cfg.RxBaudRate)
		termios.Ospeed = uint32(cfg.TxBaudRate)
	} else {
		termios.Cflag |= tx | rx<<ibshift
		termios.Ispeed = rx
		termios.Ospeed = tx
	}

	// Parity
	termios.Cflag &^= unix.PARENB | unix.PARODD
	switch cfg.Parity {
	case ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	case ParityEven:
		termios.Cflag |= unix.PARENB
	}

	// Stop bits
	if cfg.TwoStopBits {
		termios.Cflag |= unix.CSTOPB
	} else {
		termios.Cflag &^= unix.CSTOPB
	}

	// Data bits
	termios.Cflag &^= unix.CSIZE
	switch cfg.DataBits {
	case 5:
		termios.Cflag |= unix.CS5
	case 6:
		termios.Cflag |= unix.CS6
	case 7:
		termios.Cflag |= unix.CS7
	default:
		termios.Cflag |= unix.CS8
	}

	// No hardware flow control, receiver on, ignore modem lines
	termios.Cflag &^= unix.CRTSCTS
	termios.Cflag |= unix.CREAD | unix.CLOCAL

	// No input processing or software flow control
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.ICRNL | unix.INLCR |
		unix.PARMRK | unix.INPCK | unix.ISTRIP |
		unix.IXON | unix.IXOFF | unix.IXANY

	// No output processing
	termios.Oflag &^= unix.OPOST | unix.ONLCR | unix.OCRNL | unix.ONOCR |
		unix.ONLRET | unix.OFILL

	// Raw mode
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN | unix.ISIG

	// Blocking reads return as soon as one byte is available
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	return custom
}

// checkAlive reports ErrDeviceDisconnected when the device node behind the
// handle no longer has exactly one link. This is a heuristic: an unplugged
// USB adapter's node is unlinked, but not every disconnect shows up here.
func (p *Port) checkAlive() error {
	links, err := p.term.linkCount(p.fd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceDisconnected, err)
	}
	if links != 1 {
		return ErrDeviceDisconnected
	}
	return nil
}

// Read performs a single read into buf after checking that the device is
// still present. The count and error of the underlying read are returned
// as is: a non-blocking port reports an empty poll as an error with a
// negative count, and a count of zero is not turned into io.EOF.
func (p *Port) Read(buf []byte) (int, error) {
	if p.state == StateClosed {
		return 0, ErrPortClosed
	}
	if err := p.checkAlive(); err != nil {
		return 0, err
	}
	return p.term.read(p.fd, buf)
}

// ReadBytes reads up to maxLength bytes into a new buffer. A read that
// yields no bytes fails with ErrInvalidReadBytes.
func (p *Port) ReadBytes(maxLength int) ([]byte, error) {
	if p.state == StateClosed {
		return nil, ErrPortClosed
	}
	if maxLength <= 0 {
		return nil, fmt.Errorf("%w: requested %d bytes", ErrInvalidReadBytes, maxLength)
	}

	if err := p.checkAlive(); err != nil {
		return nil, err
	}

	buf := make([]byte, maxLength)
	n, err := p.term.read(p.fd, buf)
	if n <= 0 {
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidReadBytes, err)
		}
		return nil, ErrInvalidReadBytes
	}
	return buf[:n], nil
}

// Write writes data to the serial port
func (p *Port) Write(data []byte) (int, error) {
	if p.state == StateClosed {
		return 0, ErrPortClosed
	}
	return p.term.write(p.fd, data)
}

// Flush discards data received but not read and data written but not
// transmitted.
func (p *Port) Flush() error {
	if p.state == StateClosed {
		return ErrPortClosed
	}
	return p.term.flush(p.fd)
}

// Close releases the handle if one is open. It always succeeds; a failing
// close(2) is only logged.
func (p *Port) Close() error {
	if p.state == StateClosed {
		return nil
	}

	if err := p.term.close(p.fd); err != nil {
		p.logger.Warn("failed to close serial port",
			zap.String("path", p.meta.Path),
			zap.Error(err))
	}
	p.fd = -1
	p.state = StateClosed
	p.logger.Debug("serial port closed", zap.String("path", p.meta.Path))
	return nil
}
