package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/indigo-web/utils/uf"
	"github.com/indigo-web/webroot/http"
	"github.com/indigo-web/webroot/http/method"
	"github.com/indigo-web/webroot/http/status"
)

// ReadLine reads a single line terminated by LF, stripping the trailing CRLF (or
// bare LF). Connection closed before the delimiter was met makes the request
// malformed, even if some bytes were already received. Lines longer than maxSize
// (including the delimiter) are rejected.
func ReadLine(r *bufio.Reader, maxSize int) (string, error) {
	var line []byte

	for {
		chunk, err := r.ReadSlice('\n')
		if len(line)+len(chunk) > maxSize {
			return "", status.ErrRequestLineTooLong
		}

		line = append(line, chunk...)

		switch err {
		case nil:
			return uf.B2S(trimEOL(line)), nil
		case bufio.ErrBufferFull:
		case io.EOF:
			return "", status.ErrMalformedRequest
		default:
			return "", err
		}
	}
}

func trimEOL(line []byte) []byte {
	line = line[:len(line)-1]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}

	return line
}

// Parse turns the request line into the request. Only the method and the target are
// consulted, anything after them is ignored. The method is uppercased and the target
// is lowercased.
func Parse(line string) (http.Request, error) {
	tokens := strings.FieldsFunc(line, isSpace)
	if len(tokens) < 2 {
		return http.Request{}, status.ErrMalformedRequest
	}

	rawMethod := strings.ToUpper(tokens[0])

	return http.Request{
		Method:    method.Parse(rawMethod),
		RawMethod: rawMethod,
		Target:    strings.ToLower(tokens[1]),
	}, nil
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\f':
		return true
	default:
		return false
	}
}
