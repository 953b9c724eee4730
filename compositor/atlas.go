package compositor

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

const (
	// DefaultWaterTile is the bitmap whose pixels replace water marks.
	DefaultWaterTile = "wtrtyl"
	// DefaultTileSize is the edge length atlas tiles are scaled to.
	DefaultTileSize = 128
)

// BitmapSource hands out materialized bitmaps by name. Returned images are
// not modified.
type BitmapSource interface {
	Bitmap(name string) (*image.RGBA, error)
}

// AtlasOptions tunes BuildAtlas. A nil *AtlasOptions uses the defaults.
type AtlasOptions struct {
	// WaterTile names the water bitmap. Empty means DefaultWaterTile.
	WaterTile string
	// TileSize is the edge length of every tile. Zero means DefaultTileSize.
	TileSize int
	// NoWater skips the water substitution step entirely.
	NoWater bool
}

func (o *AtlasOptions) waterTile() string {
	if o == nil || o.WaterTile == "" {
		return DefaultWaterTile
	}
	return o.WaterTile
}

func (o *AtlasOptions) tileSize() int {
	if o == nil || o.TileSize <= 0 {
		return DefaultTileSize
	}
	return o.TileSize
}

// BuildAtlas loads the named bitmaps from src, scales each to a square tile,
// substitutes water and composes the result gridWidth tiles wide.
func BuildAtlas(src BitmapSource, names []string, gridWidth int, opts *AtlasOptions) (*image.RGBA, error) {
	if len(names) == 0 {
		return nil, ErrEmptyAtlas
	}
	size := opts.tileSize()

	var water *image.RGBA
	if opts == nil || !opts.NoWater {
		w, err := src.Bitmap(opts.waterTile())
		if err != nil {
			return nil, errors.Wrapf(err, "compositor: water tile %q", opts.waterTile())
		}
		water = fitTile(w, size)
	}

	tiles := make([]*image.RGBA, 0, len(names))
	for _, name := range names {
		img, err := src.Bitmap(name)
		if err != nil {
			return nil, errors.Wrapf(err, "compositor: tile %q", name)
		}
		tile := fitTile(img, size)
		if water != nil && name != opts.waterTile() {
			tile = SubstituteWater(tile, water)
		}
		tiles = append(tiles, tile)
	}
	return ComposeAtlas(tiles, gridWidth)
}

// fitTile scales img to size x size with bilinear filtering. Images that
// already fit are returned as they are.
func fitTile(img *image.RGBA, size int) *image.RGBA {
	if img.Bounds().Dx() == size && img.Bounds().Dy() == size {
		return img
	}
	scaled := resize.Resize(uint(size), uint(size), img, resize.Bilinear)
	if rgba, ok := scaled.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(out, out.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
	return out
}
