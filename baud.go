package serial

import (
	"strconv"

	"golang.org/x/sys/unix"
)

// BaudRate is a line speed in bits per second. The named constants are the
// rates the kernel has a Bxxx token for; any other positive rate is sent as
// a custom speed (BOTHER) and needs a driver that supports it.
type BaudRate int

const (
	Baud0       BaudRate = 0
	Baud50      BaudRate = 50
	Baud75      BaudRate = 75
	Baud110     BaudRate = 110
	Baud134     BaudRate = 134
	Baud150     BaudRate = 150
	Baud200     BaudRate = 200
	Baud300     BaudRate = 300
	Baud600     BaudRate = 600
	Baud1200    BaudRate = 1200
	Baud1800    BaudRate = 1800
	Baud2400    BaudRate = 2400
	Baud4800    BaudRate = 4800
	Baud9600    BaudRate = 9600
	Baud19200   BaudRate = 19200
	Baud38400   BaudRate = 38400
	Baud57600   BaudRate = 57600
	Baud115200  BaudRate = 115200
	Baud230400  BaudRate = 230400
	Baud460800  BaudRate = 460800
	Baud500000  BaudRate = 500000
	Baud576000  BaudRate = 576000
	Baud921600  BaudRate = 921600
	Baud1000000 BaudRate = 1000000
	Baud1152000 BaudRate = 1152000
	Baud1500000 BaudRate = 1500000
	Baud2000000 BaudRate = 2000000
	Baud2500000 BaudRate = 2500000
	Baud3000000 BaudRate = 3000000
	Baud3500000 BaudRate = 3500000
	Baud4000000 BaudRate = 4000000
)

// CustomBaudRate returns a rate outside the standard set. It fails for
// rates that are not positive.
func CustomBaudRate(bps int) (BaudRate, error) {
	if bps <= 0 {
		return 0, ErrInvalidBaudRate
	}
	return BaudRate(bps), nil
}

// IsStandard reports whether r has a termios speed token of its own.
func (r BaudRate) IsStandard() bool {
	_, err := getBaudRate(r)
	return err == nil
}

func (r BaudRate) String() string {
	return strconv.Itoa(int(r))
}

func (r BaudRate) validate() error {
	if r < 0 {
		return ErrInvalidBaudRate
	}
	return nil
}

// speedToken returns the Cflag speed bits for r and whether r has to be
// carried as a custom speed.
func (r BaudRate) speedToken() (uint32, bool) {
	if token, err := getBaudRate(r); err == nil {
		return token, false
	}
	return unix.BOTHER, true
}

// getBaudRate converts a standard baud rate to the unix constant
func getBaudRate(rate BaudRate) (uint32, error) {
	switch rate {
	case Baud0:
		return unix.B0, nil
	case Baud50:
		return unix.B50, nil
	case Baud75:
		return unix.B75, nil
	case Baud110:
		return unix.B110, nil
	case Baud134:
		return unix.B134, nil
	case Baud150:
		return unix.B150, nil
	case Baud200:
		return unix.B200, nil
	case Baud300:
		return unix.B300, nil
	case Baud600:
		return unix.B600, nil
	case Baud1200:
		return unix.B1200, nil
	case Baud1800:
		return unix.B1800, nil
	case Baud2400:
		return unix.B2400, nil
	case Baud4800:
		return unix.B4800, nil
	case Baud9600:
		return unix.B9600, nil
	case Baud19200:
		return unix.B19200, nil
	case Baud38400:
		return unix.B38400, nil
	case Baud57600:
		return unix.B57600, nil
	case Baud115200:
		return unix.B115200, nil
	case Baud230400:
		return unix.B230400, nil
	case Baud460800:
		return unix.B460800, nil
	case Baud500000:
		return unix.B500000, nil
	case Baud576000:
		return unix.B576000, nil
	case Baud921600:
		return unix.B921600, nil
	case Baud1000000:
		return unix.B1000000, nil
	case Baud1152000:
		return unix.B1152000, nil
	case Baud1500000:
		return unix.B1500000, nil
	case Baud2000000:
		return unix.B2000000, nil
	case Baud2500000:
		return unix.B2500000, nil
	case Baud3000000:
		return unix.B3000000, nil
	case Baud3500000:
		return unix.B3500000, nil
	case Baud4000000:
		return unix.B4000000, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}
