package method

type Method uint8

const (
	// Unknown is any method the server doesn't serve. The raw token is kept
	// by the request itself.
	Unknown Method = iota
	GET
	HEAD
)

// List contains all the supported methods.
var List = []Method{GET, HEAD}

// Parse expects an already uppercased token.
func Parse(str string) Method {
	switch str {
	case "GET":
		return GET
	case "HEAD":
		return HEAD
	default:
		return Unknown
	}
}

func (m Method) String() string {
	switch m {
	case GET:
		return "GET"
	case HEAD:
		return "HEAD"
	default:
		return "UNKNOWN"
	}
}

// Supported reports whether the server knows how to serve the method.
func (m Method) Supported() bool {
	return m != Unknown
}
