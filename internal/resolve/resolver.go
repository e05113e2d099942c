package resolve

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/indigo-web/webroot/http/status"
	"github.com/indigo-web/webroot/internal/uridecode"
)

// Resource is an existing regular file inside the document root.
type Resource struct {
	// Path is canonical, slash-separated and relative to the document root.
	Path string
	// Size is the file length at the moment of resolution.
	Size int64
	fs   billy.Filesystem
}

// Name returns the last element of the path.
func (r Resource) Name() string {
	return path.Base(r.Path)
}

// Open opens the resource for reading.
func (r Resource) Open() (billy.File, error) {
	return r.fs.Open(r.Path)
}

// Read returns exactly Size bytes of the resource. If the file became unreadable
// or shrank since it was resolved, status.ErrReadFailure is returned.
func (r Resource) Read() ([]byte, error) {
	file, err := r.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", r.Path, status.ErrReadFailure, err)
	}

	defer func() {
		_ = file.Close()
	}()

	data := make([]byte, r.Size)
	if _, err = io.ReadFull(file, data); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", r.Path, status.ErrReadFailure, err)
	}

	return data, nil
}

// Resolver maps request targets onto files of a document root. It holds no mutable
// state, so a single instance is safe for concurrent use.
type Resolver struct {
	fs              billy.Filesystem
	defaultDocument string
}

// New returns a resolver over an arbitrary filesystem.
func New(fs billy.Filesystem, defaultDocument string) *Resolver {
	return &Resolver{
		fs:              fs,
		defaultDocument: defaultDocument,
	}
}

// Dir returns a resolver over a directory of the OS filesystem. The filesystem is
// bound to the directory: symlinks can't lead out of it.
func Dir(root, defaultDocument string) *Resolver {
	return New(osfs.New(root, osfs.WithBoundOS()), defaultDocument)
}

// Resolve maps the request target onto a file. The query and the fragment are
// dropped and percent-escapes are decoded. Returns
//   - status.ErrBadRequest if the target can't be decoded,
//   - status.ErrForbidden if the target leads out of the root,
//   - status.ErrNotFound if there's no such regular file.
func (r *Resolver) Resolve(target string) (Resource, error) {
	if i := strings.IndexAny(target, "?#"); i != -1 {
		target = target[:i]
	}

	decoded, err := uridecode.Decode(target)
	if err != nil {
		return Resource{}, fmt.Errorf("%s: %w", target, err)
	}

	return r.Lookup(decoded)
}

// Lookup maps an already decoded path onto a file. A path ending with a slash gets
// the default document appended.
func (r *Resolver) Lookup(name string) (Resource, error) {
	origin := name

	if len(name) == 0 || name[len(name)-1] == '/' {
		name += r.defaultDocument
	}

	if escapes(name) {
		return Resource{}, fmt.Errorf("%s: %w", origin, status.ErrForbidden)
	}

	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if len(name) == 0 {
		return Resource{}, fmt.Errorf("%s: %w", origin, status.ErrNotFound)
	}

	stat, err := r.fs.Stat(name)
	if err != nil || !stat.Mode().IsRegular() {
		return Resource{}, fmt.Errorf("%s: %w", origin, status.ErrNotFound)
	}

	return Resource{
		Path: name,
		Size: stat.Size(),
		fs:   r.fs,
	}, nil
}

// Document returns one of the fixed documents by its name.
func (r *Resolver) Document(name string) (Resource, error) {
	return r.Lookup(name)
}

// escapes reports whether parent-directory segments climb higher than the path starts.
func escapes(p string) bool {
	depth := 0

	for len(p) > 0 {
		var segment string
		segment, p, _ = strings.Cut(p, "/")

		switch segment {
		case "", ".":
		case "..":
			if depth--; depth < 0 {
				return true
			}
		default:
			depth++
		}
	}

	return false
}
