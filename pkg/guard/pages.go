package guard

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// PageDir serves page routes from .html files, so /profile is answered by
// profile.html. Direct requests for a .html file are not found; the guard
// only knows the extensionless routes. Directory index files still work.
type PageDir struct {
	fs http.FileSystem
}

func NewPageDir(fsys http.FileSystem) PageDir {
	return PageDir{fs: fsys}
}

func (d PageDir) Open(name string) (http.File, error) {
	if strings.HasSuffix(name, ".html") && path.Base(name) != "index.html" {
		return nil, fs.ErrNotExist
	}
	f, err := d.fs.Open(name)
	if err == nil || name == "/" {
		return f, err
	}
	if alt, altErr := d.fs.Open(name + ".html"); altErr == nil {
		return alt, nil
	}
	return nil, err
}
