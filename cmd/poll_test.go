package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/allbin/go-serialid"
	"golang.org/x/sys/unix"
)

// scriptedReader replays chunks and then reports an empty non-blocking read
type scriptedReader struct {
	chunks [][]byte
	err    error
	reads  int
}

func (r *scriptedReader) ReadBytes(maxLength int) ([]byte, error) {
	r.reads++
	if len(r.chunks) > 0 {
		chunk := r.chunks[0]
		r.chunks = r.chunks[1:]
		return chunk, nil
	}
	if r.err != nil {
		return nil, r.err
	}
	return nil, unix.EAGAIN
}

func TestDrain(t *testing.T) {
	r := &scriptedReader{chunks: [][]byte{[]byte("he"), []byte("llo")}}

	var got []byte
	err := drain(r, func(b []byte) error {
		got = append(got, b...)
		return nil
	})
	if err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("drain collected %q", got)
	}
	if r.reads != 3 {
		t.Errorf("expected 3 reads, got %d", r.reads)
	}
}

func TestDrainStopsOnError(t *testing.T) {
	r := &scriptedReader{chunks: [][]byte{[]byte("x")}, err: serial.ErrDeviceDisconnected}
	if err := drain(r, func([]byte) error { return nil }); !errors.Is(err, serial.ErrDeviceDisconnected) {
		t.Errorf("drain error = %v, expected ErrDeviceDisconnected", err)
	}

	stop := errors.New("stop")
	r = &scriptedReader{chunks: [][]byte{[]byte("x"), []byte("y")}}
	if err := drain(r, func([]byte) error { return stop }); !errors.Is(err, stop) {
		t.Errorf("drain error = %v, expected the callback error", err)
	}
	if r.reads != 1 {
		t.Errorf("drain kept reading after the callback failed")
	}
}

func TestPollPortUntilDone(t *testing.T) {
	r := &scriptedReader{chunks: [][]byte{[]byte("data")}}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	var got []byte
	err := pollPort(ctx, r, time.Millisecond, func(b []byte) error {
		got = append(got, b...)
		return nil
	})
	if err != nil {
		t.Fatalf("pollPort failed: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("pollPort collected %q", got)
	}
	if r.reads < 2 {
		t.Errorf("expected repeated polls, got %d reads", r.reads)
	}
}

// shortWriter accepts at most limit bytes per call and fails once with
// EAGAIN.
type shortWriter struct {
	limit   int
	written []byte
	again   bool
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if w.again {
		w.again = false
		return -1, unix.EAGAIN
	}
	n := min(len(p), w.limit)
	w.written = append(w.written, p[:n]...)
	return n, nil
}

func TestWriteAll(t *testing.T) {
	w := &shortWriter{limit: 3, again: true}
	n, err := writeAll(w, []byte("AT+GMR\r\n"))
	if err != nil {
		t.Fatalf("writeAll failed: %v", err)
	}
	if n != 8 || string(w.written) != "AT+GMR\r\n" {
		t.Errorf("writeAll wrote %d bytes: %q", n, w.written)
	}

	if _, err := writeAll(&shortWriter{limit: 0}, []byte("x")); err == nil {
		t.Error("writeAll should fail when no progress is made")
	}
}
