package render

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/indigo-web/webroot/http/mime"
	"github.com/indigo-web/webroot/http/status"
	"github.com/indigo-web/webroot/internal/server/tcp/dummy"
	"github.com/indigo-web/webroot/internal/timer"
	"github.com/stretchr/testify/require"
)

func splitResponse(t *testing.T, data []byte) (statusLine string, headers []string, body string) {
	head, body, found := strings.Cut(string(data), "\r\n\r\n")
	require.True(t, found, "no header block terminator")
	lines := strings.Split(head, "\r\n")

	return lines[0], lines[1:], body
}

func TestRenderer(t *testing.T) {
	const body = "<h1>Hello, world!</h1>"

	t.Run("ok", func(t *testing.T) {
		conn := dummy.NewConn("")
		err := NewRenderer(nil).Write(conn, Response{
			Code:          status.OK,
			ContentType:   mime.HTML,
			ContentLength: int64(len(body)),
			Body:          []byte(body),
		}, true)
		require.NoError(t, err)

		writes := conn.Writes()
		require.Len(t, writes, 2, "header block and body must be written separately")
		require.Equal(t, body, string(writes[1]))

		statusLine, headers, gotBody := splitResponse(t, conn.Data())
		require.Equal(t, "HTTP/1.1 200 OK", statusLine)
		require.Len(t, headers, 3)
		require.True(t, strings.HasPrefix(headers[0], "Date: "))
		_, err = time.Parse(timer.TimeFormat, strings.TrimPrefix(headers[0], "Date: "))
		require.NoError(t, err)
		require.Equal(t, "Content-type: text/html", headers[1])
		require.Equal(t, "Content-length: 22", headers[2])
		require.Equal(t, body, gotBody)
	})

	t.Run("head", func(t *testing.T) {
		conn := dummy.NewConn("")
		err := Write(conn, Response{
			Code:          status.OK,
			ContentType:   mime.Plain,
			ContentLength: 1024,
		}, false)
		require.NoError(t, err)
		require.Len(t, conn.Writes(), 1)

		_, headers, gotBody := splitResponse(t, conn.Data())
		require.Equal(t, "Content-length: 1024", headers[2])
		require.Empty(t, gotBody)
	})

	t.Run("custom phrase", func(t *testing.T) {
		conn := dummy.NewConn("")
		require.NoError(t, Write(conn, Response{
			Code:        status.NotImplemented,
			Status:      "Nope",
			ContentType: mime.HTML,
		}, true))

		statusLine, _, _ := splitResponse(t, conn.Data())
		require.Equal(t, "HTTP/1.1 501 Nope", statusLine)
	})

	t.Run("default phrase", func(t *testing.T) {
		conn := dummy.NewConn("")
		require.NoError(t, Write(conn, Response{Code: status.NotFound, ContentType: mime.HTML}, true))

		statusLine, _, _ := splitResponse(t, conn.Data())
		require.Equal(t, "HTTP/1.1 404 File Not Found", statusLine)
		require.Len(t, conn.Writes(), 1, "empty body mustn't produce an empty write")
	})

	t.Run("length mismatch", func(t *testing.T) {
		conn := dummy.NewConn("")
		err := Write(conn, Response{
			Code:          status.OK,
			ContentLength: 5,
			Body:          []byte("hello, world"),
		}, true)
		require.ErrorIs(t, err, ErrLengthMismatch)
		require.Empty(t, conn.Writes(), "nothing must be written")
	})

	t.Run("failed header write", func(t *testing.T) {
		conn := dummy.NewConn("").FailWritesAfter(0)
		err := Write(conn, Response{Code: status.OK, ContentLength: 1, Body: []byte("a")}, true)
		require.ErrorIs(t, err, status.ErrWriteFailure)
		require.ErrorIs(t, err, dummy.ErrBrokenPipe)
	})

	t.Run("failed body write", func(t *testing.T) {
		conn := dummy.NewConn("").FailWritesAfter(1)
		err := Write(conn, Response{Code: status.OK, ContentLength: 1, Body: []byte("a")}, true)
		require.ErrorIs(t, err, status.ErrWriteFailure)
		require.Len(t, conn.Writes(), 1)
	})

	t.Run("flushes buffered output", func(t *testing.T) {
		conn := dummy.NewConn("")
		out := bufio.NewWriterSize(conn, 4096)
		require.NoError(t, Write(out, Response{
			Code:          status.OK,
			ContentType:   mime.Plain,
			ContentLength: int64(len(body)),
			Body:          []byte(body),
		}, true))

		require.Zero(t, out.Buffered())
		require.Len(t, conn.Writes(), 2)
	})

	t.Run("reuse buffer", func(t *testing.T) {
		r := NewRenderer(make([]byte, 0, 16))
		for i := 0; i < 3; i++ {
			conn := dummy.NewConn("")
			require.NoError(t, r.Write(conn, Response{Code: status.OK, ContentType: mime.Plain}, true))
			statusLine, _, _ := splitResponse(t, conn.Data())
			require.Equal(t, "HTTP/1.1 200 OK", statusLine)
		}
	})
}
