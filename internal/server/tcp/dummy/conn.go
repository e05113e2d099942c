package dummy

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"
)

var ErrBrokenPipe = errors.New("broken pipe")

// Conn is an in-memory net.Conn. Reads are served from the preset input, writes are
// recorded one by one. Closes are counted instead of being idempotent, so tests can
// tell a double close.
type Conn struct {
	input      io.Reader
	writes     [][]byte
	failAfter  int
	readErr    error
	closes     atomic.Int32
	deadlines  atomic.Int32
	remoteAddr net.Addr
}

// NewConn returns a connection, reading from which returns the data and then io.EOF.
func NewConn(data string) *Conn {
	return &Conn{
		input:     strings.NewReader(data),
		failAfter: -1,
		remoteAddr: &net.TCPAddr{
			IP:   net.IPv4(127, 0, 0, 1),
			Port: 32768,
		},
	}
}

// FailWritesAfter makes every write after the first n ones fail with ErrBrokenPipe.
func (c *Conn) FailWritesAfter(n int) *Conn {
	c.failAfter = n
	return c
}

// FailReads makes every read return the error.
func (c *Conn) FailReads(err error) *Conn {
	c.readErr = err
	return c
}

func (c *Conn) Read(b []byte) (n int, err error) {
	if c.readErr != nil {
		return 0, c.readErr
	}

	return c.input.Read(b)
}

func (c *Conn) Write(b []byte) (n int, err error) {
	if c.failAfter >= 0 && len(c.writes) >= c.failAfter {
		return 0, ErrBrokenPipe
	}

	c.writes = append(c.writes, bytes.Clone(b))
	return len(b), nil
}

func (c *Conn) Close() error {
	c.closes.Add(1)
	return nil
}

// Writes returns every successful write separately.
func (c *Conn) Writes() [][]byte {
	return c.writes
}

// Data returns all the written data glued together.
func (c *Conn) Data() []byte {
	return bytes.Join(c.writes, nil)
}

// Closes returns how many times the connection was closed.
func (c *Conn) Closes() int {
	return int(c.closes.Load())
}

// Deadlines returns how many times any of deadlines was set.
func (c *Conn) Deadlines() int {
	return int(c.deadlines.Load())
}

func (c *Conn) LocalAddr() net.Addr {
	return nil
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.remoteAddr
}

func (c *Conn) SetDeadline(time.Time) error {
	c.deadlines.Add(1)
	return nil
}

func (c *Conn) SetReadDeadline(time.Time) error {
	c.deadlines.Add(1)
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	c.deadlines.Add(1)
	return nil
}
