// Command lodprint lists, dumps, previews and extracts the contents of LOD
// archives.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"

	"badc0de.net/pkg/flagutil/v1"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"badc0de.net/pkg/go-lod/compositor"
	"badc0de.net/pkg/go-lod/export"
	"badc0de.net/pkg/go-lod/imageprint"
	"badc0de.net/pkg/go-lod/things"
	"badc0de.net/pkg/go-lod/things/full"
)

var (
	list       = flag.Bool("list", false, "list the entries of the loaded archives")
	raw        = flag.String("raw", "", "entry to dump undecoded, from --archive")
	archive    = flag.String("archive", "bitmaps", "archive --raw reads from: bitmaps or sprites")
	bitmapName = flag.String("bitmap", "", "bitmap to print")
	spriteName = flag.String("sprite", "", "sprite to print")
	atlas      = flag.String("atlas", "", "comma separated bitmaps to compose into an atlas")
	atlasRow   = flag.Int("atlas_row", 2, "atlas tiles per row")
	water      = flag.String("water", compositor.DefaultWaterTile, "bitmap used for water in atlases; empty disables the water step")
	outPath    = flag.String("out", "", "write the image (or raw entry) to this file instead of the terminal; image format follows the extension: png, gif or bmp")
	extractDir = flag.String("extract_dir", "", "decode every bitmap and sprite into PNG files under this directory")
	jobs       = flag.Int("jobs", 4, "concurrent decodes for --extract_dir; 0 means one per CPU")

	col256    = flag.Bool("col256", false, "whether to use 256 col instead of 24 bit")
	iterm     = flag.Bool("iterm", false, "whether to print with iterm escape code instead of 24 bit")
	rastermF  = flag.Bool("rasterm", false, "whether to print with kitty, iterm or sixel graphics, whichever the terminal supports")
	halfBlock = flag.Bool("halfblock", false, "whether to print two pixel rows per line with half blocks")
	blanks    = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	downsize  = flag.Bool("downsize", true, "whether to shrink images to fit the terminal")
)

func out(img image.Image, name string) error {
	if *outPath != "" {
		return export.WriteFile(*outPath, img)
	}

	if *rastermF {
		if ok, err := imageprint.PrintRasTerm(img); ok || err != nil {
			return err
		}
		glog.Warningf("terminal supports no graphics protocol; falling back to text")
	}
	if *iterm {
		imageprint.PrintITerm(img, name+".png")
		return nil
	}

	if *downsize {
		if sz, err := GetTermSize(); err == nil && sz.WSCol > 0 && sz.WSRow > 0 {
			rows := sz.WSRow - 1
			if *halfBlock {
				rows *= 2
			}
			img = imageprint.Downsize(img, sz.WSCol, rows)
		} else {
			glog.V(1).Infof("not downsizing; terminal size unknown: %v", err)
		}
	}

	switch {
	case *halfBlock:
		imageprint.PrintHalfBlock(img)
	case *col256:
		imageprint.Print256Color(img, *blanks)
	default:
		imageprint.Print24bit(img, *blanks)
	}
	return nil
}

func listArchive(th *things.Things, k things.Kind) {
	a, err := th.Archive(k)
	if err != nil {
		return
	}
	var total uint64
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "# %v %v\n", a.Version(), k)
	for _, e := range a.Entries() {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Name, e.Offset, humanize.Bytes(uint64(e.Size)))
		total += uint64(e.Size)
	}
	fmt.Fprintf(tw, "# %d entries, %s\n", len(a.Entries()), humanize.Bytes(total))
	tw.Flush()
}

func dumpRaw(th *things.Things, name string) error {
	k, err := things.ParseKind(*archive)
	if err != nil {
		return err
	}
	a, err := th.Archive(k)
	if err != nil {
		return err
	}
	data, err := a.GetRaw(name)
	if err != nil {
		return err
	}
	if *outPath != "" {
		return os.WriteFile(*outPath, data, 0644)
	}
	_, err = os.Stdout.Write(data)
	return err
}

// safeName reports whether an entry name can be used as a file name inside
// the extraction directory.
func safeName(name string) bool {
	return name != "" && filepath.IsLocal(name) && !strings.ContainsAny(name, `/\`)
}

// extract writes every image of every loaded archive as PNG into
// dir/<archive>/<name>.png, decoding at most jobs entries at a time (one per
// CPU when jobs < 1). Entries that fail to decode, or whose names would
// leave dir, are logged and skipped.
func extract(ctx context.Context, th *things.Things, dir string, jobs int) error {
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, k := range []things.Kind{things.KindBitmap, things.KindSprite} {
		a, err := th.Archive(k)
		if err != nil {
			continue
		}
		sub := filepath.Join(dir, k.String())
		if err := os.MkdirAll(sub, 0755); err != nil {
			return err
		}
		for _, name := range things.ImageNames(a) {
			if !safeName(name) {
				glog.Warningf("skipping %v %q: not a plain file name", k, name)
				continue
			}
			k, name := k, name
			g.Go(func() error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				m, err := th.Indexed(k, name)
				if err != nil {
					glog.Warningf("skipping %v %q: %v", k, name, err)
					return nil
				}
				img, err := m.Materialize()
				if err != nil {
					glog.Warningf("skipping %v %q: %v", k, name, err)
					return nil
				}
				glog.V(1).Infof("extracting %v %q", k, name)
				return export.WriteFile(filepath.Join(sub, name+".png"), img)
			})
		}
	}
	return g.Wait()
}

func main() {
	full.SetupFilePathFlags()
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	th, err := full.FromFilePathFlags()
	if err != nil {
		glog.Exitf("loading archives: %v", err)
	}

	if *list {
		listArchive(th, things.KindBitmap)
		listArchive(th, things.KindSprite)
	}
	if *raw != "" {
		if err := dumpRaw(th, *raw); err != nil {
			glog.Exitf("dumping %q: %v", *raw, err)
		}
	}
	if *bitmapName != "" {
		img, err := th.Bitmap(*bitmapName)
		if err != nil {
			glog.Exitf("bitmap %q: %v", *bitmapName, err)
		}
		if err := out(img, *bitmapName); err != nil {
			glog.Exitf("printing bitmap %q: %v", *bitmapName, err)
		}
	}
	if *spriteName != "" {
		img, err := th.Sprite(*spriteName)
		if err != nil {
			glog.Exitf("sprite %q: %v", *spriteName, err)
		}
		if err := out(img, *spriteName); err != nil {
			glog.Exitf("printing sprite %q: %v", *spriteName, err)
		}
	}
	if *atlas != "" {
		opts := &compositor.AtlasOptions{WaterTile: *water, NoWater: *water == ""}
		img, err := th.Atlas(strings.Split(*atlas, ","), *atlasRow, opts)
		if err != nil {
			glog.Exitf("atlas: %v", err)
		}
		if err := out(img, "atlas"); err != nil {
			glog.Exitf("printing atlas: %v", err)
		}
	}
	if *extractDir != "" {
		if err := extract(context.Background(), th, *extractDir, *jobs); err != nil {
			glog.Exitf("extracting: %v", err)
		}
	}
}
