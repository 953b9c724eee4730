// Package lod reads the LOD archives used by Might and Magic VI, VII and
// VIII to store bitmaps, sprites, palettes and other game data.
//
// An archive starts with a NUL-terminated "LOD" magic and a NUL-terminated
// game tag. The directory begins at byte 256: its first 32-byte record
// describes the directory itself (base offset and number of entries), and is
// followed by one 32-byte record per entry.
//
// The archive does not keep a file open. Each read re-opens the backing
// storage, so an *Archive can be shared freely between goroutines.
package lod

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"unicode/utf8"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-lod/indexed"
)

const (
	// directoryOffset is the absolute offset of the first directory record.
	directoryOffset = 256
	// recordSize is the size of one directory record.
	recordSize = 32
	// nameSize is the size of the name field of a directory record.
	nameSize = 16
	// maxPrealloc bounds how much directory space is reserved up front,
	// since the count comes straight from the file.
	maxPrealloc = 1 << 14
)

var (
	// ErrBadFormat is returned for data that is not a LOD archive.
	ErrBadFormat = errors.New("lod: bad format")
	// ErrUnsupportedVersion is returned for unknown game tags. It also
	// matches ErrBadFormat.
	ErrUnsupportedVersion = errors.Wrap(ErrBadFormat, "lod: unsupported version")
	// ErrTruncatedIndex is returned when the directory ends early.
	ErrTruncatedIndex = errors.New("lod: truncated index")
	// ErrNotFound is returned when no entry has the requested name.
	ErrNotFound = errors.New("lod: entry not found")
	// ErrIO is returned when entry data cannot be read from the storage.
	ErrIO = errors.New("lod: i/o error")
)

// Version identifies the game an archive belongs to.
type Version int

const (
	MM6 Version = iota + 6
	MM7
	MM8
)

func (v Version) String() string {
	switch v {
	case MM6:
		return "MM6"
	case MM7:
		return "MM7"
	case MM8:
		return "MM8"
	default:
		return "unknown"
	}
}

// versionTags maps the game tag that follows the magic to a version.
var versionTags = map[string]Version{
	"GameMMVI":   MM6,
	"MMVI":       MM6,
	"GameMMVII":  MM7,
	"MMVII":      MM7,
	"GameMMVIII": MM8,
	"MMVIII":     MM8,
}

// Entry is a named range of bytes in the archive.
type Entry struct {
	Name   string
	Offset uint64
	Size   uint32
}

// ReadSeekCloser is what an Opener hands out.
type ReadSeekCloser interface {
	io.Reader
	io.Seeker
	io.Closer
}

// Opener returns a fresh reader over the archive's storage, positioned at
// the start.
type Opener func() (ReadSeekCloser, error)

// Decoder turns the raw bytes of an entry into an indexed image.
type Decoder interface {
	Decode(data []byte) (*indexed.Image, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte) (*indexed.Image, error)

func (f DecoderFunc) Decode(data []byte) (*indexed.Image, error) {
	return f(data)
}

// Archive is a parsed LOD directory.
type Archive struct {
	open    Opener
	version Version
	entries []Entry
	index   map[string]int
}

// Open parses the directory of the LOD file at path.
func Open(path string) (*Archive, error) {
	return New(func() (ReadSeekCloser, error) {
		return os.Open(path)
	})
}

type bytesReaderWithDummyClose struct {
	*bytes.Reader
}

func (bytesReaderWithDummyClose) Close() error {
	return nil
}

// OpenBytes parses an archive held in memory.
func OpenBytes(b []byte) (*Archive, error) {
	return New(func() (ReadSeekCloser, error) {
		return bytesReaderWithDummyClose{bytes.NewReader(b)}, nil
	})
}

// New parses the directory of the archive provided by open.
func New(open Opener) (*Archive, error) {
	r, err := open()
	if err != nil {
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	defer r.Close()

	a := &Archive{open: open}
	if err := a.readHeader(r); err != nil {
		return nil, err
	}
	if err := a.readDirectory(r); err != nil {
		return nil, err
	}
	return a, nil
}

// readHeader validates the magic and the game tag.
func (a *Archive) readHeader(r io.Reader) error {
	br := bufio.NewReader(io.LimitReader(r, directoryOffset))

	magic, err := readCString(br)
	if err != nil {
		return errors.Wrapf(ErrBadFormat, "reading magic: %v", err)
	}
	if magic != "LOD" {
		return errors.Wrapf(ErrBadFormat, "magic %q, want %q", magic, "LOD")
	}

	tag, err := readCString(br)
	if err != nil {
		return errors.Wrapf(ErrBadFormat, "reading version tag: %v", err)
	}
	v, ok := versionTags[tag]
	if !ok {
		return errors.Wrapf(ErrUnsupportedVersion, "tag %q", tag)
	}
	a.version = v
	return nil
}

// readCString reads bytes up to (and consuming) the next NUL.
func readCString(r io.ByteReader) (string, error) {
	var b []byte
	for {
		c, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if c == 0 {
			return string(b), nil
		}
		b = append(b, c)
	}
}

type record struct {
	Name     [nameSize]byte
	Offset   int32
	Size     int32
	Reserved int32
	Count    int32
}

func (rec *record) name() (string, error) {
	n := bytes.IndexByte(rec.Name[:], 0)
	if n < 0 {
		n = len(rec.Name)
	}
	if !utf8.Valid(rec.Name[:n]) {
		return "", errors.Wrapf(ErrBadFormat, "entry name %q is not valid UTF-8", rec.Name[:n])
	}
	return string(rec.Name[:n]), nil
}

// readDirectory reads the directory header record and the entries after it.
func (a *Archive) readDirectory(r io.ReadSeeker) error {
	if _, err := r.Seek(directoryOffset, io.SeekStart); err != nil {
		return errors.Wrap(ErrTruncatedIndex, err.Error())
	}
	br := bufio.NewReader(r)

	var head record
	if err := binary.Read(br, binary.LittleEndian, &head); err != nil {
		return errors.Wrapf(ErrTruncatedIndex, "directory header: %v", err)
	}
	if head.Count < 0 {
		return errors.Wrapf(ErrBadFormat, "negative entry count %d", head.Count)
	}
	headName, err := head.name()
	if err != nil {
		return err
	}

	// The header record stays as entry 0. Its offset is the base that all
	// following entries are relative to, so it is not adjusted itself.
	hint := int(head.Count) + 1
	if hint > maxPrealloc {
		hint = maxPrealloc
	}
	a.entries = make([]Entry, 0, hint)
	a.index = make(map[string]int, hint)
	a.add(Entry{Name: headName, Offset: uint64(uint32(head.Offset)), Size: uint32(head.Size)})

	base := int64(head.Offset)
	for i := int32(0); i < head.Count; i++ {
		var rec record
		if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
			return errors.Wrapf(ErrTruncatedIndex, "entry %d of %d: %v", i+1, head.Count, err)
		}
		name, err := rec.name()
		if err != nil {
			return err
		}
		off := int64(rec.Offset) + base
		if off < 0 {
			return errors.Wrapf(ErrBadFormat, "entry %q has negative offset %d", name, off)
		}
		a.add(Entry{Name: name, Offset: uint64(off), Size: uint32(rec.Size)})
	}
	return nil
}

func (a *Archive) add(e Entry) {
	if _, ok := a.index[e.Name]; !ok {
		a.index[e.Name] = len(a.entries)
	}
	a.entries = append(a.entries, e)
}

// Version returns the game version the archive was tagged with.
func (a *Archive) Version() Version {
	return a.version
}

// Files returns entry names in directory order, including the directory
// header record at index 0.
func (a *Archive) Files() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the directory.
func (a *Archive) Entries() []Entry {
	return append([]Entry(nil), a.entries...)
}

// Entry returns the first entry called name.
func (a *Archive) Entry(name string) (Entry, bool) {
	i, ok := a.index[name]
	if !ok {
		return Entry{}, false
	}
	return a.entries[i], true
}

// GetRaw returns the undecoded bytes of the entry called name. The match is
// exact and case-sensitive.
func (a *Archive) GetRaw(name string) ([]byte, error) {
	e, ok := a.Entry(name)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%q", name)
	}

	r, err := a.open()
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "opening archive for %q: %v", name, err)
	}
	defer r.Close()

	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "sizing archive for %q: %v", name, err)
	}
	if e.Offset+uint64(e.Size) > uint64(end) {
		return nil, errors.Wrapf(ErrIO, "%q spans [%d, %d) past the end of the archive at %d", name, e.Offset, e.Offset+uint64(e.Size), end)
	}
	if _, err := r.Seek(int64(e.Offset), io.SeekStart); err != nil {
		return nil, errors.Wrapf(ErrIO, "seeking to %q at %d: %v", name, e.Offset, err)
	}
	buf := make([]byte, e.Size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrapf(ErrIO, "reading %d bytes of %q at %d: %v", e.Size, name, e.Offset, err)
	}
	return buf, nil
}

// Get reads the entry called name and decodes it with d. Errors from d are
// returned as they are.
func (a *Archive) Get(name string, d Decoder) (*indexed.Image, error) {
	data, err := a.GetRaw(name)
	if err != nil {
		return nil, err
	}
	return d.Decode(data)
}
