package tcp

import (
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/indigo-web/webroot/config"
	"github.com/indigo-web/webroot/http/status"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getNETConfig() config.NET {
	cfg := config.Default().NET
	cfg.AcceptLoopInterruptPeriod = 20 * time.Millisecond

	return cfg
}

func newServer(t *testing.T, cfg config.NET, onConn OnConn) *Server {
	sock, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(sock, cfg, onConn, zerolog.New(zerolog.NewTestWriter(t)))
	t.Cleanup(func() {
		_ = srv.Close()
	})

	return srv
}

func run(srv *Server) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- srv.Start()
	}()

	return done
}

func waitStop(t *testing.T, done <-chan error) {
	select {
	case err := <-done:
		require.ErrorIs(t, err, status.ErrShutdown)
	case <-time.After(5 * time.Second):
		require.Fail(t, "server didn't stop in time")
	}
}

func echo(conn net.Conn) {
	defer conn.Close()

	buff := make([]byte, 64)
	n, err := conn.Read(buff)
	if err != nil {
		return
	}

	_, _ = conn.Write(buff[:n])
}

func TestServer(t *testing.T) {
	t.Run("serve", func(t *testing.T) {
		srv := newServer(t, getNETConfig(), echo)
		done := run(srv)

		for i := 0; i < 5; i++ {
			conn, err := net.Dial("tcp", srv.Addr().String())
			require.NoError(t, err)

			_, err = conn.Write([]byte("ping"))
			require.NoError(t, err)
			data, err := io.ReadAll(conn)
			require.NoError(t, err)
			require.Equal(t, "ping", string(data))
			require.NoError(t, conn.Close())
		}

		srv.Stop()
		waitStop(t, done)
	})

	t.Run("stop while idle", func(t *testing.T) {
		srv := newServer(t, getNETConfig(), echo)
		done := run(srv)

		// give the accept loop a few interrupts to pass through
		time.Sleep(3 * getNETConfig().AcceptLoopInterruptPeriod)
		srv.Stop()
		waitStop(t, done)
	})

	t.Run("stop waits for running connections", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		var finished atomic.Bool

		srv := newServer(t, getNETConfig(), func(conn net.Conn) {
			defer conn.Close()
			close(started)
			<-release
			finished.Store(true)
		})
		done := run(srv)

		conn, err := net.Dial("tcp", srv.Addr().String())
		require.NoError(t, err)
		defer conn.Close()

		<-started
		srv.Stop()

		select {
		case <-done:
			require.Fail(t, "server stopped before the connection was done")
		case <-time.After(5 * getNETConfig().AcceptLoopInterruptPeriod):
		}

		close(release)
		waitStop(t, done)
		require.True(t, finished.Load())
	})

	t.Run("max conns", func(t *testing.T) {
		const (
			maxConns = 3
			clients  = 12
		)

		cfg := getNETConfig()
		cfg.MaxConns = maxConns

		var (
			mu              sync.Mutex
			running, peaked int
		)

		srv := newServer(t, cfg, func(conn net.Conn) {
			mu.Lock()
			running++
			peaked = max(peaked, running)
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()

			echo(conn)
		})
		done := run(srv)

		var wg sync.WaitGroup
		for i := 0; i < clients; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				conn, err := net.Dial("tcp", srv.Addr().String())
				if !assert.NoError(t, err) {
					return
				}
				defer conn.Close()

				_, _ = conn.Write([]byte("x"))
				_, _ = io.ReadAll(conn)
			}()
		}

		wg.Wait()
		srv.Stop()
		waitStop(t, done)

		require.LessOrEqual(t, peaked, maxConns)
		require.Positive(t, peaked)
	})

	t.Run("closed listener", func(t *testing.T) {
		srv := newServer(t, getNETConfig(), echo)
		done := run(srv)

		require.NoError(t, srv.Close())
		select {
		case err := <-done:
			require.Error(t, err)
			require.NotErrorIs(t, err, status.ErrShutdown)
		case <-time.After(5 * time.Second):
			require.Fail(t, "accept loop didn't notice the closed listener")
		}
	})
}

func TestNextBackoff(t *testing.T) {
	var backoff time.Duration
	for i := 0; i < 20; i++ {
		next := nextBackoff(backoff)
		require.Greater(t, next, time.Duration(0))
		require.LessOrEqual(t, next, time.Second)
		require.GreaterOrEqual(t, next, backoff)
		backoff = next
	}

	require.Equal(t, time.Second, backoff)
}
