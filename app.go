package webroot

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/indigo-web/webroot/config"
	"github.com/indigo-web/webroot/http/status"
	"github.com/indigo-web/webroot/internal/resolve"
	httpserver "github.com/indigo-web/webroot/internal/server/http"
	"github.com/indigo-web/webroot/internal/server/tcp"
	"github.com/indigo-web/webroot/internal/tftp"
	"github.com/rs/zerolog"
)

// App serves a single document root over HTTP and, optionally, over TFTP.
type App struct {
	cfg    *config.Config
	logger zerolog.Logger
	hooks  hooks
	errCh  chan error
	addr   net.Addr
}

// New returns a new App instance. The config must not be modified afterwards.
func New(cfg *config.Config, logger zerolog.Logger) *App {
	if !cfg.Verbose {
		logger = logger.Level(max(logger.GetLevel(), zerolog.WarnLevel))
	}

	return &App{
		cfg:    cfg,
		logger: logger,
		errCh:  make(chan error, 1),
	}
}

// NotifyOnStart calls the callback at the moment, when all the listeners are bound. New
// connections are accepted starting from this point.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment, when all the servers are down. It's guaranteed,
// that at the moment as the callback is called, the server isn't able to accept any new connections
// and all the clients are already disconnected
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Addr returns the address the HTTP listener is actually bound to. It's nil until the
// server is started, so call it from the NotifyOnStart callback or after it.
func (a *App) Addr() net.Addr {
	return a.addr
}

// Serve binds the listeners and serves until Stop is called, returning status.ErrShutdown
// in that case. Any other error means the server couldn't be started or failed.
func (a *App) Serve() error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("webroot: config: %w", err)
	}

	root, err := documentRoot(a.cfg.Root)
	if err != nil {
		return fmt.Errorf("webroot: document root: %w", err)
	}

	resolver := resolve.Dir(root, a.cfg.Documents.Default)
	handler := httpserver.NewHandler(a.cfg, resolver, a.logger)

	sock, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("webroot: listen: %w", err)
	}

	a.addr = sock.Addr()
	server := tcp.NewServer(sock, a.cfg.NET, handler.Serve, a.logger)

	var frontend *tftp.Server
	if len(a.cfg.TFTP.Addr) > 0 {
		frontend, err = a.serveTFTP(resolver)
		if err != nil {
			_ = server.Close()
			return err
		}
	}

	a.logger.Warn().
		Stringer("addr", a.addr).
		Str("root", root).
		Str("tftp", a.cfg.TFTP.Addr).
		Msg("serving")

	return a.run(server, frontend)
}

func (a *App) serveTFTP(resolver *resolve.Resolver) (*tftp.Server, error) {
	addr, err := net.ResolveUDPAddr("udp", a.cfg.TFTP.Addr)
	if err != nil {
		return nil, fmt.Errorf("webroot: tftp: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("webroot: tftp: %w", err)
	}

	frontend := tftp.NewServer(resolver, a.cfg.TFTP.Timeout, a.logger)
	go func() {
		if err := frontend.Serve(conn); err != nil {
			a.report(fmt.Errorf("webroot: tftp: %w", err))
		}
	}()

	return frontend, nil
}

func (a *App) run(server *tcp.Server, frontend *tftp.Server) error {
	stopped := make(chan error, 1)
	go func() {
		stopped <- server.Start()
	}()

	callIfNotNil(a.hooks.OnStart)

	var err error
	select {
	case err = <-a.errCh:
		// stop listening to new clients and process till the end all the old ones
		server.Stop()
		<-stopped
	case err = <-stopped:
		a.logger.Error().Err(err).Msg("listener failed")
	}

	if frontend != nil {
		frontend.Shutdown()
	}

	_ = server.Close()
	callIfNotNil(a.hooks.OnStop)

	return err
}

// Stop stops accepting new connections, but keeps serving already accepted ones.
//
// NOTE: the call isn't blocking. So by that, after the method returned, the server
// will be still working
func (a *App) Stop() {
	a.report(status.ErrShutdown)
}

// report delivers the reason to stop. Only the first one counts.
func (a *App) report(err error) {
	select {
	case a.errCh <- err:
	default:
	}
}

// documentRoot makes the root absolute, so it doesn't depend on the working directory
// anymore, and ensures it's an existing directory.
func documentRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	stat, err := os.Stat(abs)
	if err != nil {
		return "", err
	}

	if !stat.IsDir() {
		return "", fmt.Errorf("%s: not a directory", abs)
	}

	return abs, nil
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
