package config

import (
	"errors"
	"time"
)

type (
	Documents struct {
		// Default is appended to every request target ending with a slash.
		Default string
		// NotFound is served along with 404 responses.
		NotFound string
		// NotSupported is served along with 501 responses, regardless of the
		// requested target.
		NotSupported string
		// Forbidden is served when the request target tries to escape the root.
		Forbidden string
		// BadRequest is served when the request target can't be decoded.
		BadRequest string
	}

	NET struct {
		// ReadBufferSize is the size of the buffer the request line is read through.
		ReadBufferSize int
		// MaxRequestLineSize limits the length of the request line. Longer lines are
		// treated as malformed and the connection is closed.
		MaxRequestLineSize int
		// ReadTimeout limits how long a client may take to send the request line.
		ReadTimeout time.Duration
		// WriteTimeout limits how long writing the whole response may take.
		WriteTimeout time.Duration
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod time.Duration
		// LingerTimeout is how long the unread rest of the request is drained after the
		// response was sent, so closing the connection doesn't reset it while the client
		// is still reading. Zero disables draining.
		LingerTimeout time.Duration
		// MaxConns is the maximal number of connections served simultaneously. Once
		// reached, new connections wait in the kernel backlog.
		MaxConns int
	}

	TFTP struct {
		// Addr enables the read-only TFTP frontend when non-empty.
		Addr string `test:"nullable"`
		// Timeout is the per-packet retransmission timeout.
		Timeout time.Duration
	}
)

// Config is the whole process-wide configuration. It's built once at startup and
// never modified afterwards.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	// Addr is the address to listen on.
	Addr string
	// Root is the document root all the files are served from.
	Root      string
	Documents Documents
	// Verbose enables a log line per handled connection.
	Verbose bool
	NET     NET
	TFTP    TFTP
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Addr: ":8080",
		Root: ".",
		Documents: Documents{
			Default:      "index.html",
			NotFound:     "404.html",
			NotSupported: "not_supported.html",
			Forbidden:    "403.html",
			BadRequest:   "400.html",
		},
		Verbose: true,
		NET: NET{
			ReadBufferSize: 4 * 1024,
			// request line holds nothing but a method, a path and a protocol, so 8kb
			// are pretty much tolerant
			MaxRequestLineSize:        8 * 1024,
			ReadTimeout:               30 * time.Second,
			WriteTimeout:              60 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
			LingerTimeout:             200 * time.Millisecond,
			MaxConns:                  1024,
		},
		TFTP: TFTP{
			Timeout: 5 * time.Second,
		},
	}
}

var (
	ErrNoAddr     = errors.New("listening address is empty")
	ErrNoRoot     = errors.New("document root is empty")
	ErrNoDocument = errors.New("one or more fixed document names are empty")
	ErrBadLimit   = errors.New("network limits and timeouts must be positive")
)

// Validate reports the first inconsistency found.
func (c *Config) Validate() error {
	switch {
	case len(c.Addr) == 0:
		return ErrNoAddr
	case len(c.Root) == 0:
		return ErrNoRoot
	}

	d := c.Documents
	for _, name := range []string{d.Default, d.NotFound, d.NotSupported, d.Forbidden, d.BadRequest} {
		if len(name) == 0 {
			return ErrNoDocument
		}
	}

	n := c.NET
	if n.ReadBufferSize <= 0 || n.MaxRequestLineSize <= 0 || n.MaxConns <= 0 ||
		n.ReadTimeout <= 0 || n.WriteTimeout <= 0 || n.AcceptLoopInterruptPeriod <= 0 ||
		n.LingerTimeout < 0 || c.TFTP.Timeout <= 0 {
		return ErrBadLimit
	}

	return nil
}
