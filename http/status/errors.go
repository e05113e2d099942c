package status

import "errors"

// HTTPError is an error carrying the status code it maps onto. Errors that never
// reach the wire (a malformed request line, a failed write) still carry a code,
// so logs are uniform.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrMalformedRequest   = NewError(BadRequest, "malformed request line")
	ErrRequestLineTooLong = NewError(RequestURITooLong, "request line is too long")
	ErrRequestTimeout     = NewError(RequestTimeout, "request line wasn't received in time")
	ErrBadRequest         = NewError(BadRequest, "bad request")
	ErrForbidden          = NewError(Forbidden, "forbidden")
	ErrNotFound           = NewError(NotFound, "not found")
	ErrNotImplemented     = NewError(NotImplemented, "request method is not supported")
	ErrReadFailure        = NewError(InternalServerError, "failed to read the resource")
	ErrWriteFailure       = NewError(InternalServerError, "failed to write the response")
)

// ErrShutdown is returned by servers stopped on demand.
var ErrShutdown = errors.New("shutdown")

// CodeOf returns the status code an error maps onto. Errors not produced by this
// package map onto InternalServerError.
func CodeOf(err error) Code {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}
