package full

import (
	"badc0de.net/pkg/go-lod/paths"
	"badc0de.net/pkg/go-lod/things"
)

var (
	bitmapsLODPath string
	spritesLODPath string
)

type PathFlag string

const (
	FlagBitmapsLODPath = PathFlag("bitmaps_lod_path")
	FlagSpritesLODPath = PathFlag("sprites_lod_path")
)

// SetupFilePathFlags registers flags to manually define paths to the
// archives registerable in things.Things: --bitmaps_lod_path and
// --sprites_lod_path.
//
// These paths will then be referred to in the FromFilePathFlags function.
func SetupFilePathFlags() {
	paths.SetupFilePathFlag(BitmapsLOD, string(FlagBitmapsLODPath), &bitmapsLODPath)
	paths.SetupFilePathFlag(SpritesLOD, string(FlagSpritesLODPath), &spritesLODPath)
}

// FromFilePathFlags initializes things.Things populated with archives
// specified by --bitmaps_lod_path and --sprites_lod_path. The flags need to
// be registered and parsed by the time this function is invoked.
func FromFilePathFlags() (*things.Things, error) {
	return FromPaths(bitmapsLODPath, spritesLODPath)
}

// PathFlagValue returns the value for the passed flag path (such as the path
// to bitmaps.lod).
func PathFlagValue(key PathFlag) string {
	switch key {
	case FlagBitmapsLODPath:
		return bitmapsLODPath
	case FlagSpritesLODPath:
		return spritesLODPath
	default:
		return ""
	}
}
