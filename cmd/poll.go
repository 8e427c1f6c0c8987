/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sys/unix"
)

const readChunkSize = 4096

// byteReader is the part of serial.Port the polling helpers read through
type byteReader interface {
	ReadBytes(maxLength int) ([]byte, error)
}

// drain reads from a non-blocking port until it reports no more data
func drain(port byteReader, fn func([]byte) error) error {
	for {
		data, err := port.ReadBytes(readChunkSize)
		if errors.Is(err, unix.EAGAIN) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(data); err != nil {
			return err
		}
	}
}

// pollPort drains a non-blocking port every interval until ctx is done and
// hands every chunk to fn.
func pollPort(ctx context.Context, port byteReader, interval time.Duration, fn func([]byte) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := drain(port, fn); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// writeAll retries short writes until data is written. A non-blocking port
// with a full output queue is retried after a short pause.
func writeAll(w io.Writer, data []byte) (int, error) {
	total := 0
	for total < len(data) {
		n, err := w.Write(data[total:])
		if errors.Is(err, unix.EAGAIN) {
			time.Sleep(time.Millisecond)
			continue
		}
		if err != nil {
			return total, err
		}
		if n <= 0 {
			return total, fmt.Errorf("short write: %d of %d bytes", total, len(data))
		}
		total += n
	}
	return total, nil
}
