// Package paths locates LOD archives and other datafiles on the local
// filesystem, and opens them either from there or over HTTP.
package paths

import (
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
)

// Find locates the passed datafile shortname and returns an absolute or
// relative path to find the datafile at, or an empty string.
//
// For example, for "bitmaps.lod" it may return
// "mybinary.runfiles/go_lod/datafiles/bitmaps.lod".
func Find(fileName string) string {
	for _, path := range getPossiblePathsFSImp(fileName) {
		if f, err := os.Open(path); err == nil {
			f.Close()
			glog.Infof("paths.Find(%q)=%s", fileName, path)
			return path
		}
	}

	return ""
}

// Dirs returns the directories Find looks in, in order.
func Dirs() []string {
	return getPossiblePathDirsFSImp()
}

// Open locates the passed file in the same locations that Find would look, and
// opens it. If Find returns an empty string, an error is returned.
func Open(fileName string) (interface {
	io.ReadCloser
	io.Seeker
}, error) {
	return openFSImp(fileName)
}

// NoFindOpen opens the file at the passed path without searching for it.
// Paths starting with http:// or https:// are fetched once and served from
// memory afterwards.
func NoFindOpen(fileName string) (interface {
	io.ReadCloser
	io.Seeker
}, error) {
	if IsURL(fileName) {
		return noFindOpenHTTPImp(fileName)
	}
	return noFindOpenFSImp(fileName)
}

// IsURL reports whether NoFindOpen would fetch path over HTTP.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
