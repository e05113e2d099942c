package tcp

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/indigo-web/webroot/config"
	"github.com/indigo-web/webroot/http/status"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

type OnConn func(net.Conn)

type deadliner interface {
	SetDeadline(t time.Time) error
}

// Server accepts connections and runs each on its own goroutine. The number of
// simultaneously running ones is bounded by config.NET.MaxConns.
type Server struct {
	sock   net.Listener
	cfg    config.NET
	onConn OnConn
	logger zerolog.Logger
	sem    *semaphore.Weighted
	wg     *sync.WaitGroup
	stop   *atomic.Bool
	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer(sock net.Listener, cfg config.NET, onConn OnConn, logger zerolog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		sock:   sock,
		cfg:    cfg,
		onConn: onConn,
		logger: logger,
		sem:    semaphore.NewWeighted(int64(cfg.MaxConns)),
		wg:     new(sync.WaitGroup),
		stop:   new(atomic.Bool),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.sock.Addr()
}

// Start runs the accept loop until either Stop is called or the listener fails. In the
// first case, status.ErrShutdown is returned once all the running connections are done.
func (s *Server) Start() error {
	err := s.acceptLoop()
	s.Wait()

	return err
}

// Wait blocks until all the accepted connections are done.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) acceptLoop() error {
	var backoff time.Duration

	for !s.stop.Load() {
		if err := s.sem.Acquire(s.ctx, 1); err != nil {
			return status.ErrShutdown
		}

		if d, ok := s.sock.(deadliner); ok {
			if err := d.SetDeadline(time.Now().Add(s.cfg.AcceptLoopInterruptPeriod)); err != nil {
				s.sem.Release(1)
				return err
			}
		}

		conn, err := s.sock.Accept()
		if err != nil {
			s.sem.Release(1)

			switch {
			case s.stop.Load():
				return status.ErrShutdown
			case errors.Is(err, os.ErrDeadlineExceeded):
				continue
			case errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE):
				// running out of descriptors is recoverable: they come back as soon as
				// running connections are closed
				backoff = nextBackoff(backoff)
				s.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("accept")
				time.Sleep(backoff)
				continue
			default:
				return err
			}
		}

		backoff = 0
		s.wg.Add(1)
		go s.handle(conn)
	}

	return status.ErrShutdown
}

func (s *Server) handle(conn net.Conn) {
	defer func() {
		s.sem.Release(1)
		s.wg.Done()
	}()

	s.onConn(conn)
}

// Stop stops accepting new connections. Already accepted ones are served till the end.
// The call isn't blocking: the accept loop notices the stop during the next
// AcceptLoopInterruptPeriod at most.
func (s *Server) Stop() {
	s.stop.Store(true)
	s.cancel()
}

// Close closes the listener.
func (s *Server) Close() error {
	return s.sock.Close()
}

func nextBackoff(prev time.Duration) time.Duration {
	const (
		initial = 5 * time.Millisecond
		ceiling = time.Second
	)

	if prev == 0 {
		return initial
	}

	return min(prev*2, ceiling)
}
