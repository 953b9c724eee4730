package paths

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// HTTPClient is used to fetch archives given by URL.
var HTTPClient = http.DefaultClient

var (
	cache     map[string][]byte
	cacheLock sync.Mutex
)

// noFindOpenHTTPImp fetches the whole file once and keeps it in memory, since
// archives are read with many small seeks.
func noFindOpenHTTPImp(fileName string) (interface {
	io.ReadCloser
	io.Seeker
}, error) {
	cacheLock.Lock()
	defer cacheLock.Unlock()

	if cache == nil {
		cache = make(map[string][]byte)
	}
	if buf, ok := cache[fileName]; ok {
		glog.V(3).Infof("paths: NoFindOpen(%q): serving cached copy", fileName)
		return &bytesReaderWithDummyClose{bytes.NewReader(buf)}, nil
	}

	glog.V(1).Infof("paths: NoFindOpen(%q): fetching", fileName)
	response, err := HTTPClient.Get(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "paths: NoFindOpen(%q): failed to fetch", fileName)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		e := os.ErrInvalid
		if response.StatusCode == http.StatusNotFound {
			e = os.ErrNotExist
		}
		return nil, errors.Wrapf(e, "paths: NoFindOpen(%q): http response.StatusCode=%v, want 200", fileName, response.StatusCode)
	}

	// TODO(ivucica): Explore using ranged reads.
	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, response.Body); err != nil {
		return nil, errors.Wrap(err, "copying response to seekable buffer")
	}

	cache[fileName] = buf.Bytes()
	return &bytesReaderWithDummyClose{bytes.NewReader(buf.Bytes())}, nil
}

type bytesReaderWithDummyClose struct {
	*bytes.Reader
}

func (bytesReaderWithDummyClose) Close() error {
	return nil
}
