// Package hostio bridges a real terminal's stdin to a Neptune input
// device, grounded on the teacher's TerminalHost adapter's raw-mode,
// non-blocking, background-goroutine shape, restructured around a
// narrow interface: the host adapter knows nothing about keyboards or
// character translation, only that its target can absorb raw tty bytes.
package hostio

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// RawByteSink accepts bytes read directly off a raw-mode terminal,
// applying whatever translation its own domain needs (devices.Keyboard
// implements this by folding CR->LF and DEL->BS into its buffer).
type RawByteSink interface {
	EnqueueRawByte(b byte)
}

// TerminalHost reads raw stdin bytes on a background goroutine and
// forwards each one to a RawByteSink. Only meant for `neptune run
// --interactive` — never for tests.
type TerminalHost struct {
	sink         RawByteSink
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	nonblockSet  bool
	oldTermState *term.State
}

// NewTerminalHost creates a host adapter feeding raw stdin bytes to sink.
func NewTerminalHost(sink RawByteSink) *TerminalHost {
	return &TerminalHost{sink: sink, stopCh: make(chan struct{}), done: make(chan struct{})}
}

// Start puts stdin into raw, non-blocking mode and begins reading in a
// background goroutine. Call Stop to restore stdin.
func (h *TerminalHost) Start() {
	h.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hostio: failed to set raw mode: %v\n", err)
		close(h.done)
		return
	}
	h.oldTermState = oldState

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "hostio: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
		close(h.done)
		return
	}
	h.nonblockSet = true

	go h.readLoop()
}

func (h *TerminalHost) readLoop() {
	defer close(h.done)
	buf := make([]byte, 1)
	for {
		select {
		case <-h.stopCh:
			return
		default:
		}

		n, err := syscall.Read(h.fd, buf)
		if n > 0 {
			h.sink.EnqueueRawByte(buf[0])
		}
		switch {
		case err == syscall.EAGAIN || err == syscall.EWOULDBLOCK:
			time.Sleep(5 * time.Millisecond)
		case err != nil:
			return
		case n == 0:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// Stop terminates the stdin reading goroutine and restores stdin.
func (h *TerminalHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	<-h.done
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}
