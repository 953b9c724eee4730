package lod

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-lod/indexed"
	"badc0de.net/pkg/go-lod/ttesting"
)

func testFiles() []ttesting.LODFile {
	return []ttesting.LODFile{
		{Name: "grastyl", Data: []byte("grass tile")},
		{Name: "pal001", Data: []byte("palette")},
		{Name: "Pal001", Data: []byte("other case")},
		{Name: "sixteen-chars-xx", Data: []byte("name fills the field")},
	}
}

func openTestArchive(t *testing.T, version string) *Archive {
	a, err := OpenBytes(ttesting.BuildLOD("LOD", version, "bitmaps", testFiles()))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	return a
}

func TestOpenVersions(t *testing.T) {
	tcs := map[string]Version{
		"GameMMVI":   MM6,
		"MMVI":       MM6,
		"GameMMVII":  MM7,
		"MMVII":      MM7,
		"GameMMVIII": MM8,
		"MMVIII":     MM8,
	}
	for tag, want := range tcs {
		a := openTestArchive(t, tag)
		ttesting.AssertEqualString(t, "version for "+tag, a.Version().String(), want.String())
	}
}

func TestFiles(t *testing.T) {
	a := openTestArchive(t, "GameMMVII")
	files := a.Files()

	want := []string{"bitmaps", "grastyl", "pal001", "Pal001", "sixteen-chars-xx"}
	ttesting.AssertEqualInt(t, "entry count including directory record", len(files), len(want))
	for i := range want {
		ttesting.AssertEqualString(t, want[i], files[i], want[i])
	}

	files[0] = "mutated"
	ttesting.AssertEqualString(t, "Files returns a copy", a.Files()[0], "bitmaps")
}

func TestDirectoryRecordKeepsRawOffset(t *testing.T) {
	a := openTestArchive(t, "MMVI")
	e := a.Entries()[0]
	ttesting.AssertEqualInt(t, "base offset", int(e.Offset), directoryOffset+recordSize)

	first, _ := a.Entry("grastyl")
	ttesting.AssertEqualInt(t, "first entry offset is base-adjusted", int(first.Offset), directoryOffset+recordSize*(len(testFiles())+1))
}

func TestGetRaw(t *testing.T) {
	a := openTestArchive(t, "GameMMVIII")
	for _, f := range testFiles() {
		got, err := a.GetRaw(f.Name)
		if err != nil {
			t.Fatalf("failed to get %q: %v", f.Name, err)
		}
		ttesting.AssertEqualBytes(t, f.Name, got, f.Data)
	}

	got, err := a.GetRaw("Pal001")
	if err != nil {
		t.Fatalf("failed to get Pal001: %v", err)
	}
	ttesting.AssertEqualString(t, "lookup is case-sensitive", string(got), "other case")
}

type countingOpener struct {
	data  []byte
	opens int
}

func (c *countingOpener) open() (ReadSeekCloser, error) {
	c.opens++
	return bytesReaderWithDummyClose{bytes.NewReader(c.data)}, nil
}

func TestGetRawNotFoundDoesNoIO(t *testing.T) {
	c := &countingOpener{data: ttesting.BuildLOD("LOD", "MMVII", "sprites", testFiles())}
	a, err := New(c.open)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	ttesting.AssertEqualInt(t, "opens after directory scan", c.opens, 1)

	_, err = a.GetRaw("GRASTYL")
	ttesting.AssertErrorIs(t, "missing entry", err, ErrNotFound)
	ttesting.AssertEqualInt(t, "opens after missing entry", c.opens, 1)

	if _, err := a.GetRaw("grastyl"); err != nil {
		t.Fatalf("failed to get grastyl: %v", err)
	}
	ttesting.AssertEqualInt(t, "each read reopens", c.opens, 2)
}

func TestOpenErrors(t *testing.T) {
	good := ttesting.BuildLOD("LOD", "GameMMVII", "bitmaps", testFiles())

	tcs := []struct {
		name string
		data []byte
		want error
	}{
		{"wrong magic", ttesting.BuildLOD("DOL", "GameMMVII", "bitmaps", testFiles()), ErrBadFormat},
		{"unknown version", ttesting.BuildLOD("LOD", "GameMM9", "bitmaps", testFiles()), ErrUnsupportedVersion},
		{"unknown version is bad format", ttesting.BuildLOD("LOD", "gamemmvii", "bitmaps", testFiles()), ErrBadFormat},
		{"empty", []byte{}, ErrBadFormat},
		{"no directory", good[:directoryOffset+10], ErrTruncatedIndex},
		{"short directory", good[:directoryOffset+recordSize*3+5], ErrTruncatedIndex},
	}
	for _, tc := range tcs {
		a, err := OpenBytes(tc.data)
		ttesting.AssertErrorIs(t, tc.name, err, tc.want)
		if a != nil {
			t.Errorf("%s: got a partially constructed archive", tc.name)
		}
	}
}

func TestGetRawTruncatedStorage(t *testing.T) {
	data := ttesting.BuildLOD("LOD", "MMVI", "bitmaps", testFiles())
	// Cut into the payload of the last entry, leaving the directory intact.
	a, err := OpenBytes(data[:len(data)-3])
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	_, err = a.GetRaw("sixteen-chars-xx")
	ttesting.AssertErrorIs(t, "truncated payload", err, ErrIO)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bitmaps.lod")
	if err := os.WriteFile(path, ttesting.BuildLOD("LOD", "GameMMVI", "bitmaps", testFiles()), 0644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}
	a, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	got, err := a.GetRaw("pal001")
	if err != nil {
		t.Fatalf("failed to read entry: %v", err)
	}
	ttesting.AssertEqualString(t, "pal001", string(got), "palette")

	_, err = Open(filepath.Join(t.TempDir(), "missing.lod"))
	ttesting.AssertErrorIs(t, "missing file", err, ErrIO)
}

func TestGetPropagatesDecoderErrors(t *testing.T) {
	a := openTestArchive(t, "MMVII")
	sentinel := errors.New("decoder says no")

	var seen []byte
	d := DecoderFunc(func(data []byte) (*indexed.Image, error) {
		seen = data
		return nil, sentinel
	})
	_, err := a.Get("grastyl", d)
	if err != sentinel {
		t.Errorf("got error %v, want the decoder's error unchanged", err)
	}
	ttesting.AssertEqualString(t, "decoder input", string(seen), "grass tile")

	_, err = a.Get("nope", d)
	ttesting.AssertErrorIs(t, "missing entry", err, ErrNotFound)
}
