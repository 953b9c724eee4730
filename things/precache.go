package things

import (
	"runtime"
	"sync"

	"github.com/golang/glog"
	"github.com/remeh/sizedwaitgroup"

	"badc0de.net/pkg/go-lod/lod"
	"badc0de.net/pkg/go-lod/palette"
)

// ImageNames lists the entries of a that decode as images: everything except
// the directory record and palettes.
func ImageNames(a *lod.Archive) []string {
	var names []string
	files := a.Files()
	if len(files) == 0 {
		return nil
	}
	for _, n := range files[1:] {
		if !palette.IsName(n) {
			names = append(names, n)
		}
	}
	return names
}

// Precache decodes the named images into the cache, at most one per CPU at a
// time. Images that fail to decode are logged and skipped; the number of
// failures and the first error are returned.
func (t *Things) Precache(k Kind, names []string) (int, error) {
	var (
		mu       sync.Mutex
		failed   int
		firstErr error
	)

	wg := sizedwaitgroup.New(runtime.NumCPU())
	for _, name := range names {
		wg.Add()
		go func(name string) {
			defer wg.Done()
			if _, err := t.Image(k, name); err != nil {
				glog.Warningf("things: precaching %v %q: %v", k, name, err)
				mu.Lock()
				failed++
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(name)
	}
	wg.Wait()

	glog.V(1).Infof("things: precached %d of %d %v", len(names)-failed, len(names), k)
	return failed, firstErr
}
