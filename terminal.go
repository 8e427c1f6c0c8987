package serial

import "golang.org/x/sys/unix"

// terminal is the set of system calls a Port makes. Tests substitute a fake.
type terminal interface {
	open(path string, flags int) (int, error)
	close(fd int) error
	read(fd int, p []byte) (int, error)
	write(fd int, p []byte) (int, error)
	getAttr(fd int) (*unix.Termios, error)
	// setAttr commits with TCSETS, setAttr2 with TCSETS2 for custom speeds.
	setAttr(fd int, t *unix.Termios) error
	setAttr2(fd int, t *unix.Termios) error
	flush(fd int) error
	linkCount(fd int) (uint64, error)
}

type unixTerminal struct{}

var _ terminal = unixTerminal{}

func (unixTerminal) open(path string, flags int) (int, error) {
	return unix.Open(path, flags, 0)
}

func (unixTerminal) close(fd int) error {
	return unix.Close(fd)
}

func (unixTerminal) read(fd int, p []byte) (int, error) {
	return unix.Read(fd, p)
}

func (unixTerminal) write(fd int, p []byte) (int, error) {
	return unix.Write(fd, p)
}

func (unixTerminal) getAttr(fd int) (*unix.Termios, error) {
	return unix.IoctlGetTermios(fd, unix.TCGETS)
}

func (unixTerminal) setAttr(fd int, t *unix.Termios) error {
	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}

func (unixTerminal) setAttr2(fd int, t *unix.Termios) error {
	return unix.IoctlSetTermios(fd, unix.TCSETS2, t)
}

func (unixTerminal) flush(fd int) error {
	return unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH)
}

func (unixTerminal) linkCount(fd int) (uint64, error) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return 0, err
	}
	return uint64(st.Nlink), nil
}
