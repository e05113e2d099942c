package uridecode

import (
	"strings"

	"github.com/indigo-web/utils/uf"
	"github.com/indigo-web/webroot/http/status"
)

// Decode translates percent-escaped characters into their true form. Incomplete or
// non-hex sequences are rejected, as well as escapes decoding into NUL, as no file
// name may contain it.
func Decode(src string) (string, error) {
	i := strings.IndexByte(src, '%')
	if i == -1 {
		return src, nil
	}

	buff := make([]byte, 0, len(src))

	for ; i != -1; i = strings.IndexByte(src, '%') {
		if i >= len(src)-2 {
			return "", status.ErrBadRequest
		}

		hi, lo := unhex(src[i+1]), unhex(src[i+2])
		if hi == invalid || lo == invalid {
			return "", status.ErrBadRequest
		}

		char := hi<<4 | lo
		if char == 0 {
			return "", status.ErrBadRequest
		}

		buff = append(buff, src[:i]...)
		buff = append(buff, char)
		src = src[i+3:]
	}

	return uf.B2S(append(buff, src...)), nil
}

const invalid = 0xff

func unhex(char byte) byte {
	switch {
	case '0' <= char && char <= '9':
		return char - '0'
	case 'a' <= char && char <= 'f':
		return char - 'a' + 10
	case 'A' <= char && char <= 'F':
		return char - 'A' + 10
	default:
		return invalid
	}
}
