package mime

import (
	"github.com/indigo-web/utils/strcomp"
)

type MIME = string

const (
	Plain MIME = "text/plain"
	HTML  MIME = "text/html"
)

// Extension maps a file suffix onto its MIME. Everything missing here is served
// as Plain.
var Extension = map[string]MIME{
	".htm":  HTML,
	".html": HTML,
}

// Classify returns the MIME of a file judging by its name only. Contents are never
// sniffed. Suffixes are compared case-insensitively.
func Classify(name string) MIME {
	for ext, mime := range Extension {
		if hasSuffixFold(name, ext) {
			return mime
		}
	}

	return Plain
}

func hasSuffixFold(name, suffix string) bool {
	return len(name) >= len(suffix) && strcomp.EqualFold(name[len(name)-len(suffix):], suffix)
}
