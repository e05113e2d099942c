package tftp

import (
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/indigo-web/webroot/internal/resolve"
	"github.com/pin/tftp/v3"
	"github.com/rs/zerolog"
)

var ErrReadOnly = errors.New("write requests aren't served")

// Server exposes the document root over TFTP. Only read requests are served; filenames
// are resolved exactly as decoded HTTP paths are, so the same traversal protection
// applies.
type Server struct {
	srv      *tftp.Server
	resolver *resolve.Resolver
	logger   zerolog.Logger
}

func NewServer(resolver *resolve.Resolver, timeout time.Duration, logger zerolog.Logger) *Server {
	s := &Server{
		resolver: resolver,
		logger:   logger.With().Str("frontend", "tftp").Logger(),
	}

	s.srv = tftp.NewServer(s.read, s.write)
	s.srv.SetTimeout(timeout)

	return s
}

// ListenAndServe binds the UDP address and serves until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	return s.srv.ListenAndServe(addr)
}

// Serve serves on an already bound socket until Shutdown is called.
func (s *Server) Serve(conn *net.UDPConn) error {
	return s.srv.Serve(conn)
}

// Shutdown stops the server and waits for running transfers to complete.
func (s *Server) Shutdown() {
	s.srv.Shutdown()
}

func (s *Server) read(filename string, rf io.ReaderFrom) error {
	logger := s.logger.With().Str("target", filename).Logger()
	if transfer, ok := rf.(tftp.OutgoingTransfer); ok {
		addr := transfer.RemoteAddr()
		logger = logger.With().Str("remote", addr.String()).Logger()
	}

	resource, err := s.resolver.Lookup("/" + strings.TrimSpace(filename))
	if err != nil {
		logger.Info().Err(err).Msg("rejected")
		return err
	}

	file, err := resource.Open()
	if err != nil {
		logger.Error().Err(err).Msg("open")
		return err
	}

	defer func() {
		_ = file.Close()
	}()

	if transfer, ok := rf.(tftp.OutgoingTransfer); ok {
		transfer.SetSize(resource.Size)
	}

	n, err := rf.ReadFrom(file)
	if err != nil {
		logger.Warn().Err(err).Int64("sent", n).Msg("transfer failed")
		return err
	}

	logger.Info().Int64("size", n).Msg("served")

	return nil
}

func (s *Server) write(filename string, _ io.WriterTo) error {
	s.logger.Info().Str("target", filename).Msg("write request refused")

	return ErrReadOnly
}
