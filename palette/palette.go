// Package palette holds the 256-color palettes referenced by LOD images.
//
// Bitmaps carry their own palette; sprites refer to a shared one by a small
// numeric id, which is resolved to an entry called palNNN in bitmaps.lod.
package palette

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Size is the number of bytes in a serialized palette (256 RGB triples).
const Size = 256 * 3

// recordHeaderSize is the size of the (unused) bitmap header that precedes
// palette data in bitmaps.lod palette entries.
const recordHeaderSize = 48

var (
	// ErrNotFound is returned when a palette id or name is not in the store.
	ErrNotFound = errors.New("palette: not found")
	// ErrTruncated is returned when a palette record holds fewer than 768 bytes.
	ErrTruncated = errors.New("palette: truncated record")
)

// Palette is a fixed table of 256 RGB colors. Any byte is a valid index.
type Palette struct {
	Name string
	RGB  [256][3]uint8
}

// FromBytes builds a palette from 768 bytes of packed RGB.
func FromBytes(name string, rgb []byte) (*Palette, error) {
	if len(rgb) < Size {
		return nil, errors.Wrapf(ErrTruncated, "%q: got %d bytes, want %d", name, len(rgb), Size)
	}
	p := &Palette{Name: name}
	for i := range p.RGB {
		copy(p.RGB[i][:], rgb[3*i:3*i+3])
	}
	return p, nil
}

// Parse reads either a bare 768-byte palette or a palette record as found in
// bitmaps.lod (a 48-byte header followed by the RGB table).
func Parse(name string, data []byte) (*Palette, error) {
	if len(data) >= recordHeaderSize+Size {
		return FromBytes(name, data[recordHeaderSize:])
	}
	return FromBytes(name, data)
}

// Color returns the opaque color at index i.
func (p *Palette) Color(i uint8) color.RGBA {
	c := p.RGB[i]
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xFF}
}

// ColorPalette converts the table into an image/color palette.
func (p *Palette) ColorPalette() color.Palette {
	pal := make(color.Palette, len(p.RGB))
	for i := range p.RGB {
		pal[i] = p.Color(uint8(i))
	}
	return pal
}

// Name returns the archive entry name of the palette with the passed id.
func Name(id uint16) string {
	return fmt.Sprintf("pal%03d", id)
}

// IsName reports whether an archive entry name looks like palNNN.
func IsName(name string) bool {
	if !strings.HasPrefix(name, "pal") || len(name) < 4 {
		return false
	}
	for _, r := range name[3:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Store maps palette names to palettes. It is not modified after loading
// and may be shared between goroutines.
type Store struct {
	m map[string]*Palette
}

func NewStore() *Store {
	return &Store{m: make(map[string]*Palette)}
}

// Add registers p under its name, replacing any previous palette with the
// same name.
func (s *Store) Add(p *Palette) {
	s.m[p.Name] = p
}

// Lookup returns the palette registered under name.
func (s *Store) Lookup(name string) (*Palette, error) {
	p, ok := s.m[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%q", name)
	}
	return p, nil
}

// Get returns the palette with the passed numeric id.
func (s *Store) Get(id uint16) (*Palette, error) {
	return s.Lookup(Name(id))
}

func (s *Store) Len() int {
	return len(s.m)
}

// Names returns the sorted names of all stored palettes.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.m))
	for n := range s.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Source is the part of an archive a Store can be loaded from.
type Source interface {
	Files() []string
	GetRaw(name string) ([]byte, error)
}

// Load reads every palNNN entry of src into a new store.
func Load(src Source) (*Store, error) {
	s := NewStore()
	for _, name := range src.Files() {
		if !IsName(name) {
			continue
		}
		data, err := src.GetRaw(name)
		if err != nil {
			return nil, errors.Wrapf(err, "palette: reading %q", name)
		}
		p, err := Parse(name, data)
		if err != nil {
			return nil, err
		}
		s.Add(p)
	}
	return s, nil
}
