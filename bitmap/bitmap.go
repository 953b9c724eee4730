// Package bitmap decodes full-frame bitmap records stored in LOD archives
// (textures, terrain tiles, UI art).
//
// A record is a 48-byte header, a zlib stream of palette indices and a
// trailing 768-byte palette. The index stream holds the full-size image
// followed by its mip levels.
package bitmap

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-lod/indexed"
	"badc0de.net/pkg/go-lod/inflate"
	"badc0de.net/pkg/go-lod/palette"
)

// HeaderSize is the size of the fixed bitmap header.
const HeaderSize = 48

var (
	// ErrEmptyImage is returned for records that declare no pixel data, such
	// as the palette entries sharing bitmaps.lod.
	ErrEmptyImage = errors.New("bitmap: empty image")
	// ErrTruncatedRecord is returned when a record is too short for its layout.
	ErrTruncatedRecord = errors.New("bitmap: truncated record")
)

// Header is the fixed part of a bitmap record, little-endian on disk.
type Header struct {
	Name             [16]byte
	PixelSize        uint32 // bytes in the full-size image
	CompressedSize   uint32
	Width            uint16
	Height           uint16
	WidthLn2         uint16
	HeightLn2        uint16
	WidthMinus1      uint16
	HeightMinus1     uint16
	PaletteID        uint16
	_                uint16
	UncompressedSize uint32 // full-size image plus mip levels
	Bits             uint32
}

// NameString returns the header name up to its first NUL.
func (h *Header) NameString() string {
	n := bytes.IndexByte(h.Name[:], 0)
	if n < 0 {
		n = len(h.Name)
	}
	return string(h.Name[:n])
}

// ReadHeader parses the header at the start of data.
func ReadHeader(data []byte) (*Header, error) {
	var h Header
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrapf(ErrTruncatedRecord, "header: %v", err)
	}
	return &h, nil
}

// DecodeConfig returns the dimensions of a bitmap record without inflating it.
func DecodeConfig(data []byte) (image.Config, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{Width: int(h.Width), Height: int(h.Height), ColorModel: color.RGBAModel}, nil
}

// Decode turns a bitmap record into an indexed image carrying the record's
// own palette. Bitmaps are opaque.
func Decode(data []byte) (*indexed.Image, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	if h.PixelSize == 0 {
		return nil, errors.Wrapf(ErrEmptyImage, "%q", h.NameString())
	}
	if len(data) <= HeaderSize+palette.Size {
		return nil, errors.Wrapf(ErrTruncatedRecord, "%q: %d bytes", h.NameString(), len(data))
	}

	compressed := data[HeaderSize : len(data)-palette.Size]
	pix, err := inflate.Decompress(compressed, int(h.CompressedSize), int(h.UncompressedSize))
	if err != nil {
		return nil, errors.Wrapf(err, "bitmap %q", h.NameString())
	}
	if len(pix) < int(h.Width)*int(h.Height) {
		return nil, errors.Wrapf(ErrTruncatedRecord, "%q: %d pixels for %dx%d", h.NameString(), len(pix), h.Width, h.Height)
	}

	pal, err := palette.FromBytes(h.NameString(), data[len(data)-palette.Size:])
	if err != nil {
		return nil, err
	}

	return &indexed.Image{
		Name:    h.NameString(),
		Width:   int(h.Width),
		Height:  int(h.Height),
		Pix:     pix,
		Palette: pal,
	}, nil
}

// Decoder decodes bitmap records for lod.Archive.Get.
type Decoder struct{}

func (Decoder) Decode(data []byte) (*indexed.Image, error) {
	return Decode(data)
}
