// Package things keeps the opened LOD archives and palettes together and
// hands out decoded, materialized images from them.
//
// Materialized images are cached. Callers must treat returned images as
// read-only; they are shared between callers.
package things

import (
	"image"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-lod/bitmap"
	"badc0de.net/pkg/go-lod/indexed"
	"badc0de.net/pkg/go-lod/lod"
	"badc0de.net/pkg/go-lod/palette"
	"badc0de.net/pkg/go-lod/sprite"
)

// ErrNoArchive is returned when the archive needed for a request was never
// added.
var ErrNoArchive = errors.New("things: archive not loaded")

// Kind selects which archive and decoder an image comes from.
type Kind int

const (
	KindBitmap Kind = iota
	KindSprite
)

func (k Kind) String() string {
	switch k {
	case KindBitmap:
		return "bitmaps"
	case KindSprite:
		return "sprites"
	default:
		return "unknown"
	}
}

// ParseKind maps an archive name as used in URLs and flags to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "bitmaps", "bitmap":
		return KindBitmap, nil
	case "sprites", "sprite":
		return KindSprite, nil
	}
	return 0, errors.Errorf("things: unknown archive %q", s)
}

type cacheKey struct {
	kind Kind
	name string
}

type Things struct {
	bitmaps  *lod.Archive
	sprites  *lod.Archive
	palettes *palette.Store

	cacheLock sync.Mutex
	cache     map[cacheKey]*image.RGBA
}

func New() (*Things, error) {
	return &Things{
		palettes: palette.NewStore(),
		cache:    make(map[cacheKey]*image.RGBA),
	}, nil
}

// AddBitmaps registers bitmaps.lod and loads the palettes stored in it.
func (t *Things) AddBitmaps(a *lod.Archive) error {
	pals, err := palette.Load(a)
	if err != nil {
		return errors.Wrap(err, "loading palettes from bitmaps archive")
	}
	glog.V(2).Infof("things: %d palettes in bitmaps archive (%v)", pals.Len(), a.Version())
	t.bitmaps = a
	return t.AddPalettes(pals)
}

// AddSprites registers sprites.lod.
func (t *Things) AddSprites(a *lod.Archive) error {
	t.sprites = a
	return nil
}

// AddPalettes merges s into the palettes used for sprites, replacing any
// palette with the same name.
func (t *Things) AddPalettes(s *palette.Store) error {
	for _, name := range s.Names() {
		p, err := s.Lookup(name)
		if err != nil {
			return err
		}
		t.palettes.Add(p)
	}
	return nil
}

// Palettes returns the palette store sprites are resolved against.
func (t *Things) Palettes() *palette.Store {
	return t.palettes
}

// Archive returns the archive images of the passed kind are read from.
func (t *Things) Archive(k Kind) (*lod.Archive, error) {
	var a *lod.Archive
	switch k {
	case KindBitmap:
		a = t.bitmaps
	case KindSprite:
		a = t.sprites
	}
	if a == nil {
		return nil, errors.Wrapf(ErrNoArchive, "%v", k)
	}
	return a, nil
}

func (t *Things) decoder(k Kind) lod.Decoder {
	if k == KindSprite {
		return sprite.Decoder{Palettes: t.palettes}
	}
	return bitmap.Decoder{}
}

// Indexed decodes the named image without materializing it. The result is
// not cached.
func (t *Things) Indexed(k Kind, name string) (*indexed.Image, error) {
	a, err := t.Archive(k)
	if err != nil {
		return nil, err
	}
	return a.Get(name, t.decoder(k))
}

// Image returns the named image as RGBA, decoding it on first use.
func (t *Things) Image(k Kind, name string) (*image.RGBA, error) {
	key := cacheKey{k, name}

	t.cacheLock.Lock()
	img, ok := t.cache[key]
	t.cacheLock.Unlock()
	if ok {
		return img, nil
	}

	m, err := t.Indexed(k, name)
	if err != nil {
		return nil, err
	}
	img, err = m.Materialize()
	if err != nil {
		return nil, err
	}
	glog.V(2).Infof("things: decoded %v %q (%dx%d)", k, name, m.Width, m.Height)

	t.cacheLock.Lock()
	if cached, ok := t.cache[key]; ok {
		img = cached
	} else {
		t.cache[key] = img
	}
	t.cacheLock.Unlock()
	return img, nil
}

// Bitmap returns the named bitmap as RGBA. Things is a
// compositor.BitmapSource.
func (t *Things) Bitmap(name string) (*image.RGBA, error) {
	return t.Image(KindBitmap, name)
}

// Sprite returns the named sprite as RGBA.
func (t *Things) Sprite(name string) (*image.RGBA, error) {
	return t.Image(KindSprite, name)
}

// CacheLen returns the number of cached images.
func (t *Things) CacheLen() int {
	t.cacheLock.Lock()
	defer t.cacheLock.Unlock()
	return len(t.cache)
}
