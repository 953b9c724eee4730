// Package indexed contains the palette-indexed image produced by the bitmap
// and sprite decoders, and its conversion into RGBA.
package indexed

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-lod/palette"
)

var (
	// ErrPaletteIndexOutOfRange is returned when a pixel refers past the palette table.
	ErrPaletteIndexOutOfRange = errors.New("indexed: palette index out of range")
	// ErrNoPalette is returned when an image has no palette attached.
	ErrNoPalette = errors.New("indexed: no palette")
	// ErrShortPixels is returned when an image holds fewer than Width*Height indices.
	ErrShortPixels = errors.New("indexed: fewer pixels than width*height")
)

// Image is a decoded LOD image before it gets its colors.
//
// Pix may be longer than Width*Height: bitmaps keep their mip levels after
// the full-size image. Only the first Width*Height bytes are ever displayed.
type Image struct {
	Name          string
	Width, Height int
	Pix           []uint8
	Palette       *palette.Palette

	// Transparent marks images (sprites) whose first pixel's index is the
	// color key for the whole image.
	Transparent bool
}

// TransparentIndex returns the palette index that is drawn as fully
// transparent, if the image uses one.
func (m *Image) TransparentIndex() (uint8, bool) {
	if !m.Transparent || len(m.Pix) == 0 {
		return 0, false
	}
	return m.Pix[0], true
}

// Bounds returns the rectangle covered by the full-size image.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

func (m *Image) check() error {
	if m.Palette == nil {
		return errors.Wrapf(ErrNoPalette, "%q", m.Name)
	}
	if m.Width < 0 || m.Height < 0 || len(m.Pix) < m.Width*m.Height {
		return errors.Wrapf(ErrShortPixels, "%q: %dx%d with %d pixels", m.Name, m.Width, m.Height, len(m.Pix))
	}
	return nil
}

// Materialize looks every pixel up in the palette and returns the result as
// an RGBA image. The transparent index, if any, becomes (0, 0, 0, 0).
func (m *Image) Materialize() (*image.RGBA, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	key, keyed := m.TransparentIndex()

	img := image.NewRGBA(m.Bounds())
	n := m.Width * m.Height
	for i, p := range m.Pix[:n] {
		if int(p) >= len(m.Palette.RGB) {
			return nil, errors.Wrapf(ErrPaletteIndexOutOfRange, "%q: index %d at pixel %d", m.Name, p, i)
		}
		o := 4 * i
		if keyed && p == key {
			// image.NewRGBA is already zeroed.
			continue
		}
		c := m.Palette.RGB[p]
		img.Pix[o+0] = c[0]
		img.Pix[o+1] = c[1]
		img.Pix[o+2] = c[2]
		img.Pix[o+3] = 0xFF
	}
	return img, nil
}

// Paletted returns the image as an image.Paletted sharing the same indices.
// The transparent index, if any, maps to color.RGBA{}.
func (m *Image) Paletted() (*image.Paletted, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	pal := m.Palette.ColorPalette()
	if key, ok := m.TransparentIndex(); ok {
		pal[key] = color.RGBA{}
	}

	img := image.NewPaletted(m.Bounds(), pal)
	copy(img.Pix, m.Pix[:m.Width*m.Height])
	return img, nil
}
