// Package imageprint prints decoded images on a terminal. UNSUPPORTED debug
// package.
//
// This package has an API with no stability guarantees.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/nfnt/resize"
)

func shade(w io.Writer, col ic.Color, escapesTrueColor, blanks, noColor bool) {
	cR, cG, cB, cA := col.RGBA()
	if cA == 0 {
		fmt.Fprintf(w, "\x1b[0m  ")
		return
	}

	cell := "  "
	if !blanks {
		a := ((cR + cG + cB) / 3) >> 8
		switch {
		case a < 32:
			cell = ".."
		case a < 64:
			cell = "--"
		case a < 128:
			cell = "=="
		default:
			cell = "##"
		}
	}

	switch {
	case noColor:
		fmt.Fprint(w, cell)
	case escapesTrueColor:
		fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm%s\x1b[0m", uint8(cR>>8), uint8(cG>>8), uint8(cB>>8), cell)
	default:
		fmt.Fprint(w, color.RGB(uint8(cR>>8), uint8(cG>>8), uint8(cB>>8), true).Sprint(cell))
	}
}

func printRows(w io.Writer, i image.Image, escapesTrueColor, blanks, noColor bool) {
	for y := i.Bounds().Min.Y; y < i.Bounds().Max.Y; y++ {
		for x := i.Bounds().Min.X; x < i.Bounds().Max.X; x++ {
			shade(w, i.At(x, y), escapesTrueColor, blanks, noColor)
		}
		if !noColor {
			fmt.Fprintf(w, "\x1b[0m")
		}
		fmt.Fprintf(w, "\n")
	}
}

// Fprint256Color draws an image using 256color'd ascii art.
func Fprint256Color(w io.Writer, i image.Image, blanks bool) {
	printRows(w, i, false, blanks, false)
}

// Fprint24bit draws an image using 24bit color escape sequences by changing background.
func Fprint24bit(w io.Writer, i image.Image, blanks bool) {
	printRows(w, i, true, blanks, false)
}

// FprintNoColor draws an image without using color escape sequences. Only
// makes sense with blanks=false.
func FprintNoColor(w io.Writer, i image.Image, blanks bool) {
	printRows(w, i, false, blanks, true)
}

// FprintHalfBlock draws two image rows per terminal row with the upper half
// block character, using 24bit foreground for the top pixel and background
// for the bottom one.
func FprintHalfBlock(w io.Writer, i image.Image) {
	b := i.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			tR, tG, tB, tA := i.At(x, y).RGBA()
			var bR, bG, bB, bA uint32
			if y+1 < b.Max.Y {
				bR, bG, bB, bA = i.At(x, y+1).RGBA()
			}
			if bA > 0 {
				fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm", uint8(bR>>8), uint8(bG>>8), uint8(bB>>8))
			} else {
				fmt.Fprintf(w, "\x1b[49m")
			}
			if tA > 0 {
				fmt.Fprintf(w, "\x1b[38;2;%d;%d;%dm▀", uint8(tR>>8), uint8(tG>>8), uint8(tB>>8))
			} else {
				fmt.Fprintf(w, "\x1b[39m ")
			}
		}
		fmt.Fprintf(w, "\x1b[0m\n")
	}
}

// FprintITerm draws an image using iTerm2's escape sequences.
//
// https://www.iterm2.com/documentation-images.html
func FprintITerm(w io.Writer, i image.Image, fn string) error {
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	b := &bytes.Buffer{}
	bEnc := base64.NewEncoder(base64.StdEncoding, b)
	if err := png.Encode(bEnc, i); err != nil {
		return err
	}
	bEnc.Close()
	_, err := fmt.Fprintf(w, "\n\033]1337;File=name=%s;inline=1;size=%d,width=%dpx;height=%dpx:%s\a\n", name, b.Len(), i.Bounds().Size().X, i.Bounds().Size().Y, b.String())
	return err
}

// Print256Color is Fprint256Color to stdout.
func Print256Color(i image.Image, blanks bool) {
	Fprint256Color(os.Stdout, i, blanks)
}

// Print24bit is Fprint24bit to stdout.
func Print24bit(i image.Image, blanks bool) {
	Fprint24bit(os.Stdout, i, blanks)
}

// PrintHalfBlock is FprintHalfBlock to stdout.
func PrintHalfBlock(i image.Image) {
	FprintHalfBlock(os.Stdout, i)
}

// PrintITerm is FprintITerm to stdout. Nothing is printed outside iTerm2 and
// WezTerm.
func PrintITerm(i image.Image, fn string) {
	if !isTermItermWez() {
		return
	}
	FprintITerm(os.Stdout, i, fn)
}

// Downsize shrinks i to fit into cols x rows character cells, two of which
// make up one image pixel in the ascii art modes. Smaller images are
// returned as they are.
func Downsize(i image.Image, cols, rows uint) image.Image {
	return resize.Thumbnail(cols/2, rows, i, resize.Lanczos3)
}
