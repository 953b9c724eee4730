package paths

import (
	"go/build"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DataDirEnv names the environment variable checked first for datafiles.
const DataDirEnv = "LOD_DATA_DIR"

func getPossiblePathDirsFSImp() []string {
	var dirs []string
	if d := os.Getenv(DataDirEnv); d != "" {
		dirs = append(dirs, d)
	}
	dirs = append(dirs, "datafiles", ".")

	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		gopath = build.Default.GOPATH
	}
	if gopath != "" {
		dirs = append(dirs, filepath.Join(gopath, "src", "badc0de.net", "pkg", "go-lod", "datafiles"))
	}

	if len(os.Args) > 0 {
		dirs = append(dirs, filepath.Join(os.Args[0]+".runfiles", "go_lod", "datafiles"))
	}
	return dirs
}

// getPossiblePathsFSImp returns every local path fileName may be found at,
// in the order Find tries them.
func getPossiblePathsFSImp(fileName string) []string {
	dirs := getPossiblePathDirsFSImp()
	paths := make([]string, 0, len(dirs))
	for _, d := range dirs {
		paths = append(paths, filepath.Join(d, fileName))
	}
	return paths
}

func openFSImp(fileName string) (interface {
	io.ReadCloser
	io.Seeker
}, error) {
	path := Find(fileName)
	if path == "" {
		return nil, errors.Wrapf(os.ErrNotExist, "paths: %q not found in any of %v", fileName, getPossiblePathDirsFSImp())
	}
	return noFindOpenFSImp(path)
}

func noFindOpenFSImp(fileName string) (interface {
	io.ReadCloser
	io.Seeker
}, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "paths: opening %q", fileName)
	}
	return f, nil
}
