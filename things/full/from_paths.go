package full

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-lod/lod"
	"badc0de.net/pkg/go-lod/paths"
	"badc0de.net/pkg/go-lod/things"
)

// OpenArchive parses the directory of the LOD archive at path. The path may
// also be an http:// or https:// URL; see paths.NoFindOpen.
func OpenArchive(path string) (*lod.Archive, error) {
	return lod.New(func() (lod.ReadSeekCloser, error) {
		return paths.NoFindOpen(path)
	})
}

// FromPaths populates a things.Things datastructure using the LOD archives
// found at passed paths. Any path passed as an empty string will be omitted.
func FromPaths(bitmapsLODPath, spritesLODPath string) (*things.Things, error) {
	t, err := things.New()
	if err != nil {
		return nil, errors.Wrap(err, "creating thing registry")
	}

	if bitmapsLODPath != "" {
		glog.Infof("full.FromPaths(): opening bitmaps lod: %q", bitmapsLODPath)
		a, err := OpenArchive(bitmapsLODPath)
		if err != nil {
			return nil, errors.Wrap(err, "opening bitmaps lod for add")
		}
		if err := t.AddBitmaps(a); err != nil {
			return nil, errors.Wrap(err, "adding bitmaps lod")
		}
	}

	if spritesLODPath != "" {
		glog.Infof("full.FromPaths(): opening sprites lod: %q", spritesLODPath)
		a, err := OpenArchive(spritesLODPath)
		if err != nil {
			return nil, errors.Wrap(err, "opening sprites lod for add")
		}
		if err := t.AddSprites(a); err != nil {
			return nil, errors.Wrap(err, "adding sprites lod")
		}
	}

	return t, nil
}
