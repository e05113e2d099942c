package http

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/indigo-web/webroot/config"
	"github.com/indigo-web/webroot/http"
	"github.com/indigo-web/webroot/http/mime"
	"github.com/indigo-web/webroot/http/status"
	"github.com/indigo-web/webroot/internal/parser"
	"github.com/indigo-web/webroot/internal/render"
	"github.com/indigo-web/webroot/internal/resolve"
	"github.com/indigo-web/webroot/internal/timer"
	"github.com/rs/zerolog"
)

// Handler serves exactly one request per connection. It holds nothing but read-only
// dependencies, therefore a single instance serves all the connections concurrently.
type Handler struct {
	cfg      *config.Config
	resolver *resolve.Resolver
	logger   zerolog.Logger
}

func NewHandler(cfg *config.Config, resolver *resolve.Resolver, logger zerolog.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		resolver: resolver,
		logger:   logger,
	}
}

// Serve reads the request line, responds to it and closes the connection. The connection
// is closed exactly once, whatever happened in between.
func (h *Handler) Serve(conn net.Conn) {
	logger := h.logger.With().Stringer("remote", remote(conn)).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("handler panicked")
		}

		if err := conn.Close(); err != nil {
			logger.Debug().Err(err).Msg("closing connection")
		}
	}()

	request, err := h.readRequest(conn)
	if err != nil {
		// nothing can be framed at this point, so the client gets no response at all
		logger.Info().Err(err).Uint16("status", uint16(status.CodeOf(err))).Msg("dropping connection")
		return
	}

	logger = logger.With().
		Str("method", request.RawMethod).
		Str("target", request.Target).
		Logger()

	_ = conn.SetWriteDeadline(timer.Now().Add(h.cfg.NET.WriteTimeout))

	response, err := h.respond(request)
	if err != nil {
		logger.Error().Err(err).Msg("aborting response")
		return
	}

	if err = render.NewRenderer(nil).Write(conn, response, !request.Head()); err != nil {
		logger.Warn().Err(err).Uint16("status", uint16(response.Code)).Msg("response wasn't sent")
		return
	}

	logger.Info().
		Uint16("status", uint16(response.Code)).
		Str("type", response.ContentType).
		Int64("size", response.ContentLength).
		Msg("served")

	h.linger(conn)
}

func (h *Handler) readRequest(conn net.Conn) (http.Request, error) {
	if err := conn.SetReadDeadline(timer.Now().Add(h.cfg.NET.ReadTimeout)); err != nil {
		return http.Request{}, err
	}

	reader := bufio.NewReaderSize(conn, h.cfg.NET.ReadBufferSize)
	line, err := parser.ReadLine(reader, h.cfg.NET.MaxRequestLineSize)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return http.Request{}, fmt.Errorf("%w: %w", status.ErrRequestTimeout, err)
		}

		return http.Request{}, err
	}

	return parser.Parse(line)
}

// respond builds the response for the request. An error is returned only if nothing
// can be sent at all, which happens when the resolved file can't be read anymore.
func (h *Handler) respond(request http.Request) (render.Response, error) {
	docs := h.cfg.Documents
	withBody := !request.Head()

	resource, err := h.resolve(request)
	switch {
	case err == nil:
	case errors.Is(err, status.ErrNotImplemented):
		// the target isn't even looked at
		return h.fixed(status.NotImplemented, docs.NotSupported, true), nil
	case errors.Is(err, status.ErrNotFound):
		return h.fixed(status.NotFound, docs.NotFound, withBody), nil
	case errors.Is(err, status.ErrForbidden):
		return h.fixed(status.Forbidden, docs.Forbidden, withBody), nil
	case errors.Is(err, status.ErrBadRequest):
		return h.fixed(status.BadRequest, docs.BadRequest, withBody), nil
	default:
		return render.Response{}, err
	}

	response := render.Response{
		Code:          status.OK,
		ContentType:   mime.Classify(resource.Name()),
		ContentLength: resource.Size,
	}

	if withBody {
		if response.Body, err = resource.Read(); err != nil {
			return render.Response{}, err
		}
	}

	return response, nil
}

func (h *Handler) resolve(request http.Request) (resolve.Resource, error) {
	if !request.Method.Supported() {
		return resolve.Resource{}, status.ErrNotImplemented
	}

	return h.resolver.Resolve(request.Target)
}

// fixed responds with one of the fixed documents. If the document itself is missing or
// unreadable, the status phrase is sent as a plain text instead.
func (h *Handler) fixed(code status.Code, document string, withBody bool) render.Response {
	resource, err := h.resolver.Document(document)
	if err == nil {
		response := render.Response{
			Code:          code,
			ContentType:   mime.Classify(resource.Name()),
			ContentLength: resource.Size,
		}

		if !withBody {
			return response
		}

		if response.Body, err = resource.Read(); err == nil {
			return response
		}
	}

	h.logger.Warn().Err(err).Str("document", document).Msg("fixed document is unavailable")
	body := status.Text(code)

	return render.Response{
		Code:          code,
		ContentType:   mime.Plain,
		ContentLength: int64(len(body)),
		Body:          []byte(body),
	}
}

type closeWriter interface {
	CloseWrite() error
}

// linger half-closes the connection and discards whatever the client has sent after the
// request line. Closing a socket with unread input makes the kernel reset the connection,
// which may destroy the response before the client reads it.
func (h *Handler) linger(conn net.Conn) {
	cw, ok := conn.(closeWriter)
	if !ok || h.cfg.NET.LingerTimeout == 0 {
		return
	}

	if err := cw.CloseWrite(); err != nil {
		return
	}

	const maxDiscard = 256 * 1024

	// the coarse timer may lag behind more than the whole linger period
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.NET.LingerTimeout))
	_, _ = io.Copy(io.Discard, io.LimitReader(conn, maxDiscard))
}

func remote(conn net.Conn) fmt.Stringer {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr
	}

	return unknownAddr{}
}

type unknownAddr struct{}

func (unknownAddr) String() string {
	return "unknown"
}
