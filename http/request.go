package http

import "github.com/indigo-web/webroot/http/method"

// Request is the parsed request line. It's the only part of the request the server
// ever looks at.
type Request struct {
	// Method is an enum representing the request method.
	Method method.Method
	// RawMethod is the uppercased method token as sent by the client. Useful to report
	// unsupported methods.
	RawMethod string
	// Target is the lowercased request target, exactly as it came otherwise.
	Target string
}

// Head reports whether the response must omit the body.
func (r Request) Head() bool {
	return r.Method == method.HEAD
}
