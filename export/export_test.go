package export

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vincent-petithory/dataurl"
	"golang.org/x/image/bmp"

	"badc0de.net/pkg/go-lod/ttesting"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.SetRGBA(x, 0, color.RGBA{uint8(60 * x), 10, 20, 255})
		img.SetRGBA(x, 1, color.RGBA{0, 0, 0, 0})
	}
	return img
}

func TestFormatFromExt(t *testing.T) {
	tcs := map[string]Format{".png": PNG, "gif": GIF, ".BMP": BMP}
	for ext, want := range tcs {
		got, err := FormatFromExt(ext)
		if err != nil {
			t.Errorf("%q: %v", ext, err)
			continue
		}
		ttesting.AssertEqualString(t, ext, got.String(), want.String())
	}
	_, err := FormatFromExt(".jpg")
	ttesting.AssertErrorIs(t, "jpeg", err, ErrUnknownFormat)
}

func TestEncodePNG(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Encode(buf, testImage(), PNG); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	img, err := png.Decode(buf)
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	r, _, _, _ := img.At(2, 0).RGBA()
	ttesting.AssertEqualUint32(t, "red", r>>8, 120)
}

func TestEncodeGIF(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Encode(buf, testImage(), GIF); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	img, err := gif.Decode(buf)
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	ttesting.AssertEqualInt(t, "width", img.Bounds().Dx(), 4)
	_, _, _, a := img.At(0, 1).RGBA()
	ttesting.AssertEqualUint32(t, "transparent alpha", a, 0)
}

func TestEncodeGIFPaletted(t *testing.T) {
	p := image.NewPaletted(image.Rect(0, 0, 2, 1), color.Palette{color.RGBA{}, color.RGBA{1, 2, 3, 255}})
	p.SetColorIndex(1, 0, 1)
	buf := &bytes.Buffer{}
	if err := EncodeGIF(buf, p); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	img, err := gif.Decode(buf)
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	r, g, b, _ := img.At(1, 0).RGBA()
	ttesting.AssertEqualUint32(t, "red", r>>8, 1)
	ttesting.AssertEqualUint32(t, "green", g>>8, 2)
	ttesting.AssertEqualUint32(t, "blue", b>>8, 3)
}

func TestEncodeBMP(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Encode(buf, testImage(), BMP); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	img, err := bmp.Decode(buf)
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	ttesting.AssertEqualInt(t, "height", img.Bounds().Dy(), 2)
}

func TestDataURL(t *testing.T) {
	s, err := DataURL(testImage(), PNG)
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	if !strings.HasPrefix(s, "data:image/png;base64,") {
		t.Errorf("got prefix %q", s[:30])
	}
	du, err := dataurl.DecodeString(s)
	if err != nil {
		t.Fatalf("failed to parse data url: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(du.Data)); err != nil {
		t.Errorf("data url does not hold a png: %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.gif")
	if err := WriteFile(path, testImage()); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	defer f.Close()
	if _, err := gif.Decode(f); err != nil {
		t.Errorf("output is not a gif: %v", err)
	}

	err = WriteFile(filepath.Join(dir, "out.tga"), testImage())
	ttesting.AssertErrorIs(t, "unknown extension", err, ErrUnknownFormat)
}
