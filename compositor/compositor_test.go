package compositor

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-lod/ttesting"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

var (
	grass = color.RGBA{30, 120, 20, 255}
	dirt  = color.RGBA{120, 80, 40, 255}
	sea   = color.RGBA{10, 40, 160, 255}
	mark  = color.RGBA{0, 252, 253, 255}
)

func TestComposeAtlasSize(t *testing.T) {
	tiles := make([]*image.RGBA, 5)
	for i := range tiles {
		tiles[i] = solid(128, 128, grass)
	}
	img, err := ComposeAtlas(tiles, 2)
	if err != nil {
		t.Fatalf("failed to compose: %v", err)
	}
	ttesting.AssertEqualInt(t, "width", img.Bounds().Dx(), 256)
	ttesting.AssertEqualInt(t, "height", img.Bounds().Dy(), 384)

	if got := img.RGBAAt(200, 300); got != (color.RGBA{}) {
		t.Errorf("empty cell of the half-filled last row: got %v, want background", got)
	}
	if got := img.RGBAAt(100, 300); got != grass {
		t.Errorf("fifth tile: got %v, want %v", got, grass)
	}
}

func TestComposeAtlasPlacement(t *testing.T) {
	img, err := ComposeAtlas([]*image.RGBA{solid(2, 2, grass), solid(2, 2, dirt), solid(2, 2, sea)}, 2)
	if err != nil {
		t.Fatalf("failed to compose: %v", err)
	}
	tcs := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"tile 0", 1, 1, grass},
		{"tile 1", 2, 0, dirt},
		{"tile 2", 0, 3, sea},
	}
	for _, tc := range tcs {
		if got := img.RGBAAt(tc.x, tc.y); got != tc.want {
			t.Errorf("%s at (%d,%d): got %v, want %v", tc.name, tc.x, tc.y, got, tc.want)
		}
	}
}

func TestComposeAtlasSkipsColorKey(t *testing.T) {
	img, err := ComposeAtlas([]*image.RGBA{solid(1, 1, color.RGBA{0, 255, 255, 255})}, 1)
	if err != nil {
		t.Fatalf("failed to compose: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("got %v, want the untouched background", got)
	}

	// Near-cyan is not the key.
	img, err = ComposeAtlas([]*image.RGBA{solid(1, 1, mark)}, 1)
	if err != nil {
		t.Fatalf("failed to compose: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != mark {
		t.Errorf("got %v, want %v", got, mark)
	}
}

func TestComposeAtlasErrors(t *testing.T) {
	_, err := ComposeAtlas(nil, 2)
	ttesting.AssertErrorIs(t, "no tiles", err, ErrEmptyAtlas)

	_, err = ComposeAtlas([]*image.RGBA{solid(1, 1, grass)}, 0)
	ttesting.AssertErrorIs(t, "zero grid width", err, ErrInvalidGridWidth)

	_, err = ComposeAtlas([]*image.RGBA{solid(2, 2, grass), solid(2, 3, grass)}, 2)
	ttesting.AssertErrorIs(t, "mixed sizes", err, ErrTileSizeMismatch)
}

func TestSubstituteWater(t *testing.T) {
	tile := solid(2, 1, grass)
	tile.SetRGBA(1, 0, mark)
	water := solid(2, 1, sea)

	out := SubstituteWater(tile, water)
	if got := out.RGBAAt(0, 0); got != grass {
		t.Errorf("land pixel: got %v, want %v", got, grass)
	}
	if got := out.RGBAAt(1, 0); got != sea {
		t.Errorf("water pixel: got %v, want %v", got, sea)
	}
	if got := tile.RGBAAt(1, 0); got != mark {
		t.Errorf("source tile was modified: got %v", got)
	}

	// Not quite water.
	tile.SetRGBA(1, 0, color.RGBA{1, 255, 255, 255})
	if got := SubstituteWater(tile, water).RGBAAt(1, 0); got == sea {
		t.Errorf("red 1 must not count as water")
	}
}

type fakeBitmaps map[string]*image.RGBA

func (f fakeBitmaps) Bitmap(name string) (*image.RGBA, error) {
	img, ok := f[name]
	if !ok {
		return nil, errors.Errorf("no bitmap %q", name)
	}
	return img, nil
}

func TestBuildAtlas(t *testing.T) {
	marked := solid(128, 128, grass)
	marked.SetRGBA(5, 5, mark)
	src := fakeBitmaps{
		"wtrtyl":  solid(128, 128, sea),
		"grastyl": marked,
		"dirttyl": solid(64, 64, dirt),
		"voltyl":  solid(128, 128, grass),
		"pending": solid(128, 128, dirt),
	}

	img, err := BuildAtlas(src, []string{"grastyl", "dirttyl", "voltyl", "wtrtyl", "pending"}, 2, nil)
	if err != nil {
		t.Fatalf("failed to build atlas: %v", err)
	}
	ttesting.AssertEqualInt(t, "width", img.Bounds().Dx(), 128*2)
	ttesting.AssertEqualInt(t, "height", img.Bounds().Dy(), 128*3)

	if got := img.RGBAAt(5, 5); got != sea {
		t.Errorf("water mark: got %v, want %v", got, sea)
	}
	if got := img.RGBAAt(128+100, 100); got != dirt {
		t.Errorf("upscaled tile: got %v, want %v", got, dirt)
	}
	if got := marked.RGBAAt(5, 5); got != mark {
		t.Errorf("source bitmap was modified: got %v", got)
	}
}

func TestBuildAtlasOptions(t *testing.T) {
	src := fakeBitmaps{
		"grastyl": solid(4, 4, mark),
		"lava":    solid(8, 8, dirt),
	}

	_, err := BuildAtlas(src, []string{"grastyl"}, 1, nil)
	if err == nil {
		t.Errorf("missing default water tile did not fail")
	}

	img, err := BuildAtlas(src, []string{"grastyl"}, 1, &AtlasOptions{WaterTile: "lava", TileSize: 4})
	if err != nil {
		t.Fatalf("failed to build atlas: %v", err)
	}
	ttesting.AssertEqualInt(t, "width", img.Bounds().Dx(), 4)
	if got := img.RGBAAt(0, 0); got != dirt {
		t.Errorf("custom water tile: got %v, want %v", got, dirt)
	}

	img, err = BuildAtlas(src, []string{"grastyl"}, 1, &AtlasOptions{NoWater: true, TileSize: 4})
	if err != nil {
		t.Fatalf("failed to build atlas: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != mark {
		t.Errorf("water step disabled: got %v, want %v", got, mark)
	}

	_, err = BuildAtlas(src, nil, 1, nil)
	ttesting.AssertErrorIs(t, "no names", err, ErrEmptyAtlas)
}
