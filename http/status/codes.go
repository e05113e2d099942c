package status

import "strconv"

type (
	Code   uint16
	Status = string
)

// Codes the server is able to respond with. The list is intentionally short: every
// other situation either closes the connection silently or is out of the server's
// vocabulary.
const (
	OK                  Code = 200 // RFC 9110, 15.3.1
	BadRequest          Code = 400 // RFC 9110, 15.5.1
	Forbidden           Code = 403 // RFC 9110, 15.5.4
	NotFound            Code = 404 // RFC 9110, 15.5.5
	RequestTimeout      Code = 408 // RFC 9110, 15.5.9
	RequestURITooLong   Code = 414 // RFC 9110, 15.5.15
	InternalServerError Code = 500 // RFC 9110, 15.6.1
	NotImplemented      Code = 501 // RFC 9110, 15.6.2
)

// KnownCodes lists every code Text has a phrase for.
var KnownCodes = []Code{
	OK, BadRequest, Forbidden, NotFound, RequestTimeout, RequestURITooLong,
	InternalServerError, NotImplemented,
}

// Text returns the reason phrase for the status code. 404 keeps the phrase
// browsers were historically served by this kind of daemon.
func Text(code Code) Status {
	switch code {
	case OK:
		return "OK"
	case BadRequest:
		return "Bad Request"
	case Forbidden:
		return "Forbidden"
	case NotFound:
		return "File Not Found"
	case RequestTimeout:
		return "Request Timeout"
	case RequestURITooLong:
		return "Request URI Too Long"
	case InternalServerError:
		return "Internal Server Error"
	case NotImplemented:
		return "Not Implemented"
	default:
		return "Unknown Status Code"
	}
}

// StringCode returns the code as a decimal string without allocating for known codes.
func StringCode(code Code) string {
	switch code {
	case OK:
		return "200"
	case BadRequest:
		return "400"
	case Forbidden:
		return "403"
	case NotFound:
		return "404"
	case RequestTimeout:
		return "408"
	case RequestURITooLong:
		return "414"
	case InternalServerError:
		return "500"
	case NotImplemented:
		return "501"
	default:
		return strconv.Itoa(int(code))
	}
}
