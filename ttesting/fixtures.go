package ttesting

// This file builds synthetic LOD archives and records so that tests do not
// depend on copyrighted game data being present in datafiles/.

import (
	"bytes"
	"encoding/binary"

	"github.com/bradfitz/iter"
	"github.com/klauspost/compress/zlib"
)

// Deflate compresses data into a zlib stream.
func Deflate(data []byte) []byte {
	b := &bytes.Buffer{}
	zw := zlib.NewWriter(b)
	zw.Write(data) // writes into a bytes.Buffer do not fail
	zw.Close()
	return b.Bytes()
}

// LODFile is a single named entry to be placed into a synthetic archive.
type LODFile struct {
	Name string
	Data []byte
}

type dirRecord struct {
	Name     [16]byte
	Offset   int32
	Size     int32
	Reserved int32
	Count    int32
}

func putName(dst []byte, name string) {
	copy(dst, name)
}

// BuildLOD lays out an archive the way the games do: magic and version tag at
// the start, the directory header record at 256, entry records right after it
// with offsets relative to the first entry record, then the entry payloads.
func BuildLOD(magic, version, dirName string, files []LODFile) []byte {
	b := &bytes.Buffer{}
	b.WriteString(magic)
	b.WriteByte(0)
	b.WriteString(version)
	b.WriteByte(0)
	b.Write(make([]byte, 256-b.Len()))

	base := int32(256 + 32)
	dataStart := int32(32 * len(files))

	total := int32(0)
	for _, f := range files {
		total += int32(len(f.Data))
	}

	head := dirRecord{Offset: base, Size: dataStart + total, Count: int32(len(files))}
	putName(head.Name[:], dirName)
	binary.Write(b, binary.LittleEndian, &head)

	off := dataStart
	for i := range iter.N(len(files)) {
		rec := dirRecord{Offset: off, Size: int32(len(files[i].Data))}
		putName(rec.Name[:], files[i].Name)
		binary.Write(b, binary.LittleEndian, &rec)
		off += int32(len(files[i].Data))
	}
	for _, f := range files {
		b.Write(f.Data)
	}
	return b.Bytes()
}

// GrayPalette returns a 768-byte palette where entry i is (i, i, i).
func GrayPalette() []byte {
	pal := make([]byte, 768)
	for i := range iter.N(256) {
		pal[3*i], pal[3*i+1], pal[3*i+2] = byte(i), byte(i), byte(i)
	}
	return pal
}

// BitmapRecord encodes pix as a bitmap record with the passed trailing
// palette. pix may be longer than width*height to mimic mip levels.
func BitmapRecord(name string, width, height int, pix []byte, pal []byte) []byte {
	packed := Deflate(pix)

	h := make([]byte, 48)
	putName(h[0:16], name)
	binary.LittleEndian.PutUint32(h[16:], uint32(width*height))
	binary.LittleEndian.PutUint32(h[20:], uint32(len(packed)))
	binary.LittleEndian.PutUint16(h[24:], uint16(width))
	binary.LittleEndian.PutUint16(h[26:], uint16(height))
	binary.LittleEndian.PutUint16(h[32:], uint16(width-1))
	binary.LittleEndian.PutUint16(h[34:], uint16(height-1))
	binary.LittleEndian.PutUint32(h[40:], uint32(len(pix)))

	rec := append(h, packed...)
	return append(rec, pal...)
}

// PaletteRecord encodes a palette the way bitmaps.lod stores it: an empty
// bitmap header followed by 768 bytes of RGB.
func PaletteRecord(name string, rgb []byte) []byte {
	h := make([]byte, 48)
	putName(h[0:16], name)
	return append(h, rgb...)
}

// SpriteRow is one row table record of a sprite.
type SpriteRow struct {
	Start, End int16
	Offset     uint32
}

// SpriteRecord encodes a sprite record from a row table and raw run data.
func SpriteRecord(name string, width, height int, paletteID uint16, rows []SpriteRow, runs []byte) []byte {
	packed := Deflate(runs)

	b := &bytes.Buffer{}
	h := make([]byte, 32)
	putName(h[0:12], name)
	binary.LittleEndian.PutUint32(h[12:], uint32(len(packed)))
	binary.LittleEndian.PutUint16(h[16:], uint16(width))
	binary.LittleEndian.PutUint16(h[18:], uint16(height))
	binary.LittleEndian.PutUint16(h[20:], paletteID)
	binary.LittleEndian.PutUint32(h[28:], uint32(len(runs)))
	b.Write(h)
	binary.Write(b, binary.LittleEndian, rows)
	b.Write(packed)
	return b.Bytes()
}
