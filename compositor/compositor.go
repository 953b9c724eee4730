// Package compositor lays out decoded tiles into a single atlas image.
//
// Tiles are placed row-major into a grid. Pixels matching the color key are
// not copied, so whatever was on the canvas underneath stays visible; this
// is how sprites are drawn over terrain without alpha blending.
//
// BuildAtlas adds one content-specific step on top: terrain bitmaps mark
// water with a near-cyan color, and those pixels are replaced with the
// matching pixel of the water tile before composing.
package compositor

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyAtlas is returned when there are no tiles to compose.
	ErrEmptyAtlas = errors.New("compositor: empty atlas")
	// ErrInvalidGridWidth is returned for a grid narrower than one tile.
	ErrInvalidGridWidth = errors.New("compositor: invalid grid width")
	// ErrTileSizeMismatch is returned when tiles differ in size.
	ErrTileSizeMismatch = errors.New("compositor: tile size mismatch")
)

// ColorKey is the color that ComposeAtlas does not copy.
var ColorKey = color.RGBA{R: 0, G: 255, B: 255}

func isColorKey(c color.RGBA) bool {
	return c.R == ColorKey.R && c.G == ColorKey.G && c.B == ColorKey.B
}

// isWater reports whether a terrain pixel is one of the near-cyan shades
// used to mark water.
func isWater(c color.RGBA) bool {
	return c.R == 0 && c.G >= 252 && c.B >= 252
}

// ComposeAtlas places tiles into a grid gridWidth tiles wide. All tiles must
// be the same size. The canvas is transparent black where nothing was drawn.
func ComposeAtlas(tiles []*image.RGBA, gridWidth int) (*image.RGBA, error) {
	if len(tiles) == 0 {
		return nil, ErrEmptyAtlas
	}
	if gridWidth < 1 {
		return nil, errors.Wrapf(ErrInvalidGridWidth, "%d", gridWidth)
	}

	size := tiles[0].Bounds().Size()
	for i, t := range tiles {
		if t.Bounds().Size() != size {
			return nil, errors.Wrapf(ErrTileSizeMismatch, "tile %d is %v, tile 0 is %v", i, t.Bounds().Size(), size)
		}
	}

	rows := (len(tiles) + gridWidth - 1) / gridWidth
	img := image.NewRGBA(image.Rect(0, 0, size.X*gridWidth, size.Y*rows))

	for i, t := range tiles {
		origin := image.Pt(i%gridWidth*size.X, i/gridWidth*size.Y)
		min := t.Bounds().Min
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				c := t.RGBAAt(min.X+x, min.Y+y)
				if isColorKey(c) {
					continue
				}
				img.SetRGBA(origin.X+x, origin.Y+y, c)
			}
		}
	}
	return img, nil
}

// SubstituteWater returns a copy of tile where each water-marked pixel is
// replaced by the pixel at the same position in water. Positions outside
// water are left alone. tile itself is not modified.
func SubstituteWater(tile, water *image.RGBA) *image.RGBA {
	b := tile.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	wb := water.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := tile.RGBAAt(b.Min.X+x, b.Min.Y+y)
			if isWater(c) && x < wb.Dx() && y < wb.Dy() {
				c = water.RGBAAt(wb.Min.X+x, wb.Min.Y+y)
			}
			out.SetRGBA(x, y, c)
		}
	}
	return out
}
