// Package hostio is the seam between the emulated program's ECALL-driven
// I/O and the host process's real stdin/stdout.
//
// This is deliberately the thinnest possible adapter: syscalls 63 (read)
// and 64 (write) in §4.5 are plain blocking byte transfers, with no
// framing and no asynchronous interrupt signaling, so IO is just two
// methods rather than the teacher's net.Conn-backed, interrupt-polling
// SerialTTY -- that machinery exists in the teacher to simulate an
// asynchronous serial line, which is out of scope here (Non-goals:
// interrupt semantics).
package hostio

import (
	"bytes"
	"io"
	"os"
)

// IO is the host-services contract the executor calls through for ECALL
// 63/64. Implementations are synchronous: ReadStdin/WriteStdout block for
// as long as the underlying stream does.
type IO interface {
	ReadStdin(p []byte) (int, error)
	WriteStdout(p []byte) (int, error)
}

// std wraps the real process stdin/stdout.
type std struct{}

// Std returns the IO implementation that talks to the host process's real
// stdin/stdout.
func Std() IO {
	return std{}
}

func (std) ReadStdin(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (std) WriteStdout(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

// Buffered is an in-memory IO implementation for tests: reads come from
// In, writes accumulate in Out.
type Buffered struct {
	In  *bytes.Reader
	Out *bytes.Buffer
}

// NewBuffered returns a Buffered seeded with the given input bytes.
func NewBuffered(input []byte) *Buffered {
	return &Buffered{In: bytes.NewReader(input), Out: new(bytes.Buffer)}
}

func (b *Buffered) ReadStdin(p []byte) (int, error) {
	n, err := b.In.Read(p)
	if err == io.EOF {
		return n, nil
	}
	return n, err
}

func (b *Buffered) WriteStdout(p []byte) (int, error) {
	return b.Out.Write(p)
}

var (
	_ IO = std{}
	_ IO = &Buffered{}
)
