package serial

import "fmt"

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	default:
		return fmt.Sprintf("Parity(%d)", int(p))
	}
}

// ParseParity accepts "none", "odd" and "even" as well as the single letter
// forms N, O and E.
func ParseParity(s string) (Parity, error) {
	switch s {
	case "none", "n", "N":
		return ParityNone, nil
	case "odd", "o", "O":
		return ParityOdd, nil
	case "even", "e", "E":
		return ParityEven, nil
	default:
		return 0, fmt.Errorf("%w: unknown parity %q", ErrInvalidConfig, s)
	}
}

func (p Parity) letter() string {
	switch p {
	case ParityOdd:
		return "O"
	case ParityEven:
		return "E"
	default:
		return "N"
	}
}

// LineConfig holds the line settings of a serial port. Receive and transmit
// speeds are set independently.
type LineConfig struct {
	RxBaudRate  BaudRate
	TxBaudRate  BaudRate
	Parity      Parity
	DataBits    int
	TwoStopBits bool
}

// ConfigOption is a functional option for changing part of a LineConfig
type ConfigOption func(*LineConfig) error

// DefaultLineConfig returns 115200 8N1 in both directions
func DefaultLineConfig() LineConfig {
	return LineConfig{
		RxBaudRate:  Baud115200,
		TxBaudRate:  Baud115200,
		Parity:      ParityNone,
		DataBits:    8,
		TwoStopBits: false,
	}
}

// Validate checks that every field holds a value the port can apply.
func (c LineConfig) Validate() error {
	if err := c.RxBaudRate.validate(); err != nil {
		return err
	}
	if err := c.TxBaudRate.validate(); err != nil {
		return err
	}
	if c.Parity < ParityNone || c.Parity > ParityEven {
		return fmt.Errorf("%w: parity %d", ErrInvalidConfig, c.Parity)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("%w: %d data bits", ErrInvalidConfig, c.DataBits)
	}
	return nil
}

// With returns a copy of c with opts applied. c is never modified, so a
// failing option leaves the caller's config as it was.
func (c LineConfig) With(opts ...ConfigOption) (LineConfig, error) {
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return c, err
		}
	}
	return c, nil
}

// String renders the config as "115200 8N1", or "9600/115200 8N1" with the
// receive rate first when the two directions differ.
func (c LineConfig) String() string {
	stop := 1
	if c.TwoStopBits {
		stop = 2
	}
	rate := c.RxBaudRate.String()
	if c.RxBaudRate != c.TxBaudRate {
		rate = c.RxBaudRate.String() + "/" + c.TxBaudRate.String()
	}
	return fmt.Sprintf("%s %d%s%d", rate, c.DataBits, c.Parity.letter(), stop)
}

// WithBaudRate sets both the receive and transmit rate
func WithBaudRate(rate BaudRate) ConfigOption {
	return func(c *LineConfig) error {
		if err := rate.validate(); err != nil {
			return err
		}
		c.RxBaudRate = rate
		c.TxBaudRate = rate
		return nil
	}
}

// WithRxBaudRate sets the receive rate only
func WithRxBaudRate(rate BaudRate) ConfigOption {
	return func(c *LineConfig) error {
		if err := rate.validate(); err != nil {
			return err
		}
		c.RxBaudRate = rate
		return nil
	}
}

// WithTxBaudRate sets the transmit rate only
func WithTxBaudRate(rate BaudRate) ConfigOption {
	return func(c *LineConfig) error {
		if err := rate.validate(); err != nil {
			return err
		}
		c.TxBaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) ConfigOption {
	return func(c *LineConfig) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithTwoStopBits selects two stop bits when enabled, one otherwise
func WithTwoStopBits(enabled bool) ConfigOption {
	return func(c *LineConfig) error {
		c.TwoStopBits = enabled
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) ConfigOption {
	return func(c *LineConfig) error {
		if parity < ParityNone || parity > ParityEven {
			return ErrInvalidConfig
		}
		c.Parity = parity
		return nil
	}
}
