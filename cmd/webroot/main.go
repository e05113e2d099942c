package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/indigo-web/webroot"
	"github.com/indigo-web/webroot/config"
	"github.com/indigo-web/webroot/http/status"
	"github.com/indigo-web/webroot/internal/rlimit"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "", "JSON config file, overlaid onto the defaults")
	addr := flag.String("addr", "", "address to listen on (overrides the config)")
	root := flag.String("root", "", "document root (overrides the config)")
	verbose := flag.Bool("verbose", true, "log every served connection (overrides the config)")
	tftpAddr := flag.String("tftp", "", "serve the document root over TFTP on this address too")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *configPath).Msg("load config")
	}

	// only explicitly passed flags override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "root":
			cfg.Root = *root
		case "tftp":
			cfg.TFTP.Addr = *tftpAddr
		case "verbose":
			cfg.Verbose = *verbose
		}
	})

	if limit, err := rlimit.RaiseNoFile(); err != nil {
		logger.Warn().Err(err).Uint64("limit", limit).Msg("raise open files limit")
	}

	app := webroot.New(cfg, logger)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sig
		logger.Warn().Stringer("signal", s).Msg("stopping")
		app.Stop()
	}()

	if err = app.Serve(); err != nil && !errors.Is(err, status.ErrShutdown) {
		logger.Fatal().Err(err).Msg("serve")
	}
}
