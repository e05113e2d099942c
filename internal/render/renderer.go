package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/indigo-web/webroot/http/mime"
	"github.com/indigo-web/webroot/http/status"
	"github.com/indigo-web/webroot/internal/timer"
)

// Protocol is the only protocol responses are rendered in, regardless of the one the
// request was made in.
const Protocol = "HTTP/1.1"

const (
	sp   = " "
	crlf = "\r\n"
)

var ErrLengthMismatch = errors.New("body length doesn't match the content length")

// Flusher is implemented by buffered writers. If the output implements it, it's
// flushed after the header block and once again after the body.
type Flusher interface {
	Flush() error
}

type Response struct {
	Code status.Code
	// Status is the reason phrase. If empty, the default one for the Code is used.
	Status        status.Status
	ContentType   mime.MIME
	ContentLength int64
	Body          []byte
}

// Renderer serializes responses. It reuses the same header buffer between calls,
// therefore mustn't be shared between connections.
type Renderer struct {
	buff []byte
}

func NewRenderer(buff []byte) *Renderer {
	return &Renderer{
		buff: buff,
	}
}

// Write writes the header block followed by the body, each by a single write. If withBody
// is false, only the header block is written, still reporting the ContentLength, as the
// HEAD request requires.
func (r *Renderer) Write(w io.Writer, response Response, withBody bool) error {
	if withBody && int64(len(response.Body)) != response.ContentLength {
		return ErrLengthMismatch
	}

	r.buff = Headers(r.buff[:0], response)
	if err := write(w, r.buff); err != nil {
		return err
	}

	if !withBody || len(response.Body) == 0 {
		return nil
	}

	return write(w, response.Body)
}

// Write is a shorthand for a one-shot renderer.
func Write(w io.Writer, response Response, withBody bool) error {
	return NewRenderer(nil).Write(w, response, withBody)
}

// Headers appends the status line and the header block, including the terminating
// empty line.
func Headers(buff []byte, response Response) []byte {
	phrase := response.Status
	if len(phrase) == 0 {
		phrase = status.Text(response.Code)
	}

	buff = append(buff, Protocol+sp...)
	buff = append(buff, status.StringCode(response.Code)...)
	buff = append(append(append(buff, sp...), phrase...), crlf...)
	buff = append(append(append(buff, "Date: "...), timer.Date()...), crlf...)
	buff = append(append(append(buff, "Content-type: "...), response.ContentType...), crlf...)
	buff = append(strconv.AppendInt(append(buff, "Content-length: "...), response.ContentLength, 10), crlf...)

	return append(buff, crlf...)
}

func write(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %w", status.ErrWriteFailure, err)
	}

	if flusher, ok := w.(Flusher); ok {
		if err := flusher.Flush(); err != nil {
			return fmt.Errorf("%w: %w", status.ErrWriteFailure, err)
		}
	}

	return nil
}
