package imageprint

import (
	"flag"
	"image"
	"io"
	"os"
)

var (
	forceITerm = flag.Bool("force_iterm", false, "value to force iterm detection to take (implementation variant: no rasterm)")
)

func isTermItermWez() bool {
	return *forceITerm
}

// FprintRasTerm only supports iTerm2 on this platform, and only when
// --force_iterm is set.
func FprintRasTerm(w io.Writer, i image.Image) (bool, error) {
	if !*forceITerm {
		return false, nil
	}
	return true, FprintITerm(w, i, "image.png")
}

func PrintRasTerm(i image.Image) (bool, error) {
	return FprintRasTerm(os.Stdout, i)
}
