package things

import (
	"image"
	"image/draw"

	"github.com/golang/glog"

	"badc0de.net/pkg/go-lod/compositor"
)

// Atlas composes the named bitmaps into a grid gridWidth tiles wide. See
// compositor.BuildAtlas.
func (t *Things) Atlas(names []string, gridWidth int, opts *compositor.AtlasOptions) (*image.RGBA, error) {
	glog.V(2).Infof("things: atlas of %d bitmaps, %d per row", len(names), gridWidth)
	return compositor.BuildAtlas(t, names, gridWidth, opts)
}

// SpriteOver draws the named sprite over a copy of background, with the
// sprite's bottom center at anchor. Transparent sprite pixels leave the
// background visible.
func (t *Things) SpriteOver(background *image.RGBA, name string, anchor image.Point) (*image.RGBA, error) {
	spr, err := t.Sprite(name)
	if err != nil {
		return nil, err
	}
	out := image.NewRGBA(background.Bounds())
	draw.Draw(out, out.Bounds(), background, background.Bounds().Min, draw.Src)

	size := spr.Bounds().Size()
	dst := image.Rect(anchor.X-size.X/2, anchor.Y-size.Y, anchor.X-size.X/2+size.X, anchor.Y)
	draw.Draw(out, dst, spr, spr.Bounds().Min, draw.Over)
	return out, nil
}
