// Package sprite decodes the sparse sprite records stored in sprites.lod.
//
// A record is a 32-byte header, a row table with one 8-byte record per image
// row, and a zlib stream of pixel runs. Sprites carry no palette of their
// own; the header names one by numeric id.
package sprite

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

const (
	// HeaderSize is the size of the fixed sprite header.
	HeaderSize = 32
	// RowSize is the size of one row table record.
	RowSize = 8
)

var (
	// ErrTruncatedRecord is returned when a record is too short for its
	// header or row table.
	ErrTruncatedRecord = errors.New("sprite: truncated record")
	// ErrRowOverrun is returned when the row table points outside the run
	// data or the output image.
	ErrRowOverrun = errors.New("sprite: row overrun")
)

// Header is the fixed part of a sprite record, little-endian on disk.
type Header struct {
	Name             [12]byte
	CompressedSize   uint32
	Width            uint16
	Height           uint16
	PaletteID        uint16
	_                uint16
	YSkip            uint16 // rows above the first row stored in the table
	_                uint16
	UncompressedSize uint32
}

// NameString returns the header name up to its first NUL.
func (h *Header) NameString() string {
	n := bytes.IndexByte(h.Name[:], 0)
	if n < 0 {
		n = len(h.Name)
	}
	return string(h.Name[:n])
}

// Row is one record of the row table. A negative Start or End marks a row
// with nothing to draw.
type Row struct {
	Start  int16
	End    int16
	Offset uint32
}

// Resolver finds a palette by its numeric id. *palette.Store is a Resolver.
type Resolver interface {
	Get(id uint16) (*palette.Palette, error)
}

// ReadHeader parses the header at the start of data.
func ReadHeader(data []byte) (*Header, error) {
	var h Header
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrapf(ErrTruncatedRecord, "header: %v", err)
	}
	return &h, nil
}

// DecodeConfig returns the dimensions of a sprite record without inflating it.
func DecodeConfig(data []byte) (image.Config, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{Width: int(h.Width), Height: int(h.Height), ColorModel: color.RGBAModel}, nil
}

// Decode turns a sprite record into an indexed image, taking its palette
// from palettes. The first pixel's index is the transparent one.
func Decode(data []byte, palettes Resolver) (*indexed.Image, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	name := h.NameString()

	pal, err := palettes.Get(h.PaletteID)
	if err != nil {
		return nil, errors.Wrapf(err, "sprite %q", name)
	}

	width, height := int(h.Width), int(h.Height)
	tableEnd := HeaderSize + height*RowSize
	if len(data) <= tableEnd {
		return nil, errors.Wrapf(ErrTruncatedRecord, "%q: %d bytes, row table ends at %d", name, len(data), tableEnd)
	}

	rows := make([]Row, height)
	if err := binary.Read(bytes.NewReader(data[HeaderSize:tableEnd]), binary.LittleEndian, rows); err != nil {
		return nil, errors.Wrapf(ErrTruncatedRecord, "%q: row table: %v", name, err)
	}

	runs, err := inflate.Decompress(data[tableEnd:], int(h.CompressedSize), int(h.UncompressedSize))
	if err != nil {
		return nil, errors.Wrapf(err, "sprite %q", name)
	}

	pix, err := Reconstruct(width, height, rows, runs)
	if err != nil {
		return nil, errors.Wrapf(err, "sprite %q", name)
	}

	return &indexed.Image{
		Name:        name,
		Width:       width,
		Height:      height,
		Pix:         pix,
		Palette:     pal,
		Transparent: true,
	}, nil
}

// Reconstruct lays the runs out into a zero-filled width*height buffer,
// walking the row table top to bottom with a single cursor.
//
// An empty row moves the cursor by width-1, not width. Sprites in the
// shipped archives rely on this, so it is kept as is.
func Reconstruct(width, height int, rows []Row, runs []byte) ([]byte, error) {
	if len(rows) < height {
		return nil, errors.Wrapf(ErrRowOverrun, "%d rows in table for height %d", len(rows), height)
	}
	pix := make([]byte, width*height)

	pos := 0
	for y, r := range rows[:height] {
		if r.Start < 0 || r.End < 0 {
			pos += width - 1
			continue
		}
		start, end := int(r.Start), int(r.End)
		if end < start {
			return nil, errors.Wrapf(ErrRowOverrun, "row %d: end %d before start %d", y, end, start)
		}
		pos += start
		n := end - start + 1
		src := int(r.Offset)
		if pos < 0 || pos+n > len(pix) {
			return nil, errors.Wrapf(ErrRowOverrun, "row %d: writes [%d, %d) into %d pixels", y, pos, pos+n, len(pix))
		}
		if src+n > len(runs) || src+n < src {
			return nil, errors.Wrapf(ErrRowOverrun, "row %d: reads [%d, %d) from %d bytes of runs", y, src, src+n, len(runs))
		}
		copy(pix[pos:pos+n], runs[src:src+n])
		pos += width - start
	}
	return pix, nil
}

// Decoder decodes sprite records for lod.Archive.Get.
type Decoder struct {
	Palettes Resolver
}

func (d Decoder) Decode(data []byte) (*indexed.Image, error) {
	return Decode(data, d.Palettes)
}
