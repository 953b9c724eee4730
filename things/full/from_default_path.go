// Package full is a helper to populate things.Things from the LOD archives
// of an installed game.
package full

import (
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-lod/paths"
	"badc0de.net/pkg/go-lod/things"
)

const (
	BitmapsLOD = "bitmaps.lod"
	SpritesLOD = "sprites.lod"
)

// FromDefaultPaths finds the archives supported by things using default
// filepaths as found by the paths package, and adds them to the Things
// structure.
//
// sprites.lod can be excluded; it is only needed for sprites.
//
// Appropriate for tests or web frontends. Inappropriate for tools where the
// path should be specifiable by the user on the command line.
func FromDefaultPaths(withSprites bool) (*things.Things, error) {
	bitmapsPath := paths.Find(BitmapsLOD)
	if bitmapsPath == "" {
		return nil, errors.Errorf("%s not found in any of %v", BitmapsLOD, paths.Dirs())
	}
	spritesPath := ""
	if withSprites {
		spritesPath = paths.Find(SpritesLOD)
		if spritesPath == "" {
			return nil, errors.Errorf("%s not found in any of %v", SpritesLOD, paths.Dirs())
		}
	}
	return FromPaths(bitmapsPath, spritesPath)
}
