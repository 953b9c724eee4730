//go:build !windows

package imageprint

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/BourgeoisBear/rasterm"
	"github.com/andybons/gogif"
)

func isTermItermWez() bool {
	return rasterm.IsTermItermWez()
}

// FprintRasTerm draws an image using the RasTerm library, picking the kitty,
// iTerm2 or sixel protocol depending on the terminal.
//
// Returns false if the terminal supports none of them.
func FprintRasTerm(w io.Writer, i image.Image) (bool, error) {
	if rasterm.IsTermKitty() {
		err := rasterm.Settings{}.KittyWriteImage(w, i)
		fmt.Fprintf(w, "\n")
		return true, err
	}
	if rasterm.IsTermItermWez() {
		err := rasterm.Settings{}.ItermWriteImage(w, i)
		fmt.Fprintf(w, "\n")
		return true, err
	}
	if capable, err := rasterm.IsSixelCapable(); capable && err == nil {
		palettedImage := image.NewPaletted(i.Bounds(), nil)
		quantizer := gogif.MedianCutQuantizer{NumColor: 64}
		quantizer.Quantize(palettedImage, i.Bounds(), i, image.ZP)

		err := rasterm.Settings{}.SixelWriteImage(w, palettedImage)
		fmt.Fprintf(w, "\n")
		return true, err
	}
	return false, nil
}

// PrintRasTerm is FprintRasTerm to stdout.
func PrintRasTerm(i image.Image) (bool, error) {
	return FprintRasTerm(os.Stdout, i)
}
