// Package export encodes decoded LOD images into common file formats.
package export

import (
	"bytes"
	"image"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/pkg/errors"
	"github.com/vincent-petithory/dataurl"
	"golang.org/x/image/bmp"
)

// ErrUnknownFormat is returned for file extensions with no encoder.
var ErrUnknownFormat = errors.New("export: unknown format")

type Format int

const (
	PNG Format = iota
	GIF
	BMP
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case GIF:
		return "gif"
	case BMP:
		return "bmp"
	default:
		return "unknown"
	}
}

// MIME returns the media type of the format.
func (f Format) MIME() string {
	switch f {
	case GIF:
		return "image/gif"
	case BMP:
		return "image/bmp"
	default:
		return "image/png"
	}
}

// FormatFromExt maps a file extension, with or without the dot, to a
// format.
func FormatFromExt(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return PNG, nil
	case "gif":
		return GIF, nil
	case "bmp":
		return BMP, nil
	}
	return 0, errors.Wrapf(ErrUnknownFormat, "%q", ext)
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case GIF:
		return EncodeGIF(w, img)
	case BMP:
		return bmp.Encode(w, img)
	}
	return errors.Wrapf(ErrUnknownFormat, "%v", f)
}

// EncodeGIF writes img as a GIF. Paletted images keep their palette; others
// get a median cut palette, with one slot kept for transparency.
func EncodeGIF(w io.Writer, img image.Image) error {
	if p, ok := img.(*image.Paletted); ok {
		return gif.Encode(w, p, nil)
	}
	return gif.Encode(w, img, &gif.Options{
		NumColors: 256,
		Quantizer: quantize.MedianCutQuantizer{AddTransparent: true},
	})
}

// DataURL returns img encoded in format f as a data: URL.
func DataURL(img image.Image, f Format) (string, error) {
	buf := &bytes.Buffer{}
	if err := Encode(buf, img, f); err != nil {
		return "", err
	}
	byt, err := dataurl.New(buf.Bytes(), f.MIME()).MarshalText()
	if err != nil {
		return "", errors.Wrap(err, "export: encoding data url")
	}
	return string(byt), nil
}

// WriteFile encodes img into the file at path, picking the format from the
// file extension.
func WriteFile(path string, img image.Image) (err error) {
	f, err := FormatFromExt(filepath.Ext(path))
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "export: creating output")
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "export: closing output")
		}
	}()
	return Encode(out, img, f)
}
