package inflate

import (
	"bytes"
	"runtime"
	"testing"

	"badc0de.net/pkg/go-lod/ttesting"
)

func TestDecompress(t *testing.T) {
	want := bytes.Repeat([]byte{1, 2, 3, 4}, 64)
	packed := ttesting.Deflate(want)

	got, err := Decompress(packed, len(packed), len(want))
	if err != nil {
		t.Fatalf("failed to decompress: %v", err)
	}
	ttesting.AssertEqualBytes(t, "payload", got, want)
}

func TestDecompressIgnoresTrailingBytes(t *testing.T) {
	want := []byte("bitmap pixels")
	packed := ttesting.Deflate(want)
	padded := append(append([]byte{}, packed...), 0xde, 0xad)

	got, err := Decompress(padded, len(packed), len(want))
	if err != nil {
		t.Fatalf("failed to decompress: %v", err)
	}
	ttesting.AssertEqualBytes(t, "payload", got, want)
}

func TestDecompressErrors(t *testing.T) {
	want := bytes.Repeat([]byte{7}, 100)
	packed := ttesting.Deflate(want)

	// Flipping the trailing adler32 keeps the deflate body intact and makes
	// only the checksum verification fail.
	corrupt := append([]byte{}, packed...)
	corrupt[len(corrupt)-1] ^= 0xff

	tcs := []struct {
		name            string
		in              []byte
		compressedLen   int
		uncompressedLen int
		want            error
	}{
		{"truncated input", packed[:len(packed)-1], len(packed), len(want), ErrTruncatedInput},
		{"truncated input is a size mismatch", packed[:3], len(packed), len(want), ErrSizeMismatch},
		{"declared too small", packed, len(packed), len(want) - 1, ErrSizeMismatch},
		{"declared too large", packed, len(packed), len(want) + 1, ErrSizeMismatch},
		{"negative size", packed, -1, len(want), ErrSizeMismatch},
		{"not zlib", []byte{0x00, 0x01, 0x02, 0x03}, 4, 10, ErrDecompression},
		{"bad checksum", corrupt, len(corrupt), len(want), ErrDecompression},
	}
	for _, tc := range tcs {
		_, err := Decompress(tc.in, tc.compressedLen, tc.uncompressedLen)
		ttesting.AssertErrorIs(t, tc.name, err, tc.want)
	}
}

func TestDecompressHugeDeclaredSize(t *testing.T) {
	packed := ttesting.Deflate([]byte{1, 2, 3})

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := Decompress(packed, len(packed), 0xFFFFFFFF)
	runtime.ReadMemStats(&after)

	ttesting.AssertErrorIs(t, "declared 4 GiB", err, ErrSizeMismatch)
	if grew := after.TotalAlloc - before.TotalAlloc; grew > 16<<20 {
		t.Errorf("allocated %d bytes for a %d byte stream", grew, len(packed))
	}
}

func TestPreallocSize(t *testing.T) {
	ttesting.AssertEqualInt(t, "small record", preallocSize(100, 400), 400)
	ttesting.AssertEqualInt(t, "bounded by ratio", preallocSize(2, 1<<19), 2*maxRatio)
	ttesting.AssertEqualInt(t, "bounded by cap", preallocSize(1<<20, 0xFFFFFFFF), maxPrealloc)
}
