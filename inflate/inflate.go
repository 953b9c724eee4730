// Package inflate decompresses the zlib streams stored inside LOD records.
//
// Every compressed payload in a LOD archive is accompanied by its declared
// compressed and uncompressed sizes. Decompress checks both of them, so a
// record that lies about its sizes is reported instead of silently accepted.
package inflate

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// maxRatio bounds how far DEFLATE can expand its input.
const maxRatio = 1032

// maxPrealloc caps the up-front allocation; larger outputs grow as they
// inflate.
const maxPrealloc = 1 << 20

var (
	// ErrSizeMismatch is returned when a declared size does not match the data.
	ErrSizeMismatch = errors.New("inflate: size mismatch")
	// ErrTruncatedInput is returned when fewer compressed bytes are available
	// than declared. It also matches ErrSizeMismatch.
	ErrTruncatedInput = errors.Wrap(ErrSizeMismatch, "inflate: truncated input")
	// ErrDecompression is returned for corrupt zlib streams.
	ErrDecompression = errors.New("inflate: corrupt stream")
)

// Decompress inflates the first compressedLen bytes of compressed and
// verifies that exactly uncompressedLen bytes come out.
func Decompress(compressed []byte, compressedLen, uncompressedLen int) ([]byte, error) {
	if compressedLen < 0 || uncompressedLen < 0 {
		return nil, errors.Wrapf(ErrSizeMismatch, "negative declared size (compressed %d, uncompressed %d)", compressedLen, uncompressedLen)
	}
	if len(compressed) < compressedLen {
		return nil, errors.Wrapf(ErrTruncatedInput, "got %d bytes, want %d", len(compressed), compressedLen)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed[:compressedLen]))
	if err != nil {
		return nil, errors.Wrap(ErrDecompression, err.Error())
	}
	defer zr.Close()

	// One extra byte lets us tell "exactly right" apart from "too long"
	// without inflating an arbitrarily large stream.
	buf := bytes.NewBuffer(make([]byte, 0, preallocSize(compressedLen, uncompressedLen)))
	if _, err := io.Copy(buf, io.LimitReader(zr, int64(uncompressedLen)+1)); err != nil {
		return nil, errors.Wrap(ErrDecompression, err.Error())
	}

	if buf.Len() != uncompressedLen {
		return nil, errors.Wrapf(ErrSizeMismatch, "inflated %d bytes, want %d", buf.Len(), uncompressedLen)
	}
	return buf.Bytes(), nil
}

// preallocSize is the initial output capacity. The declared size comes from
// the record header and is not trusted.
func preallocSize(compressedLen, uncompressedLen int) int {
	return min(uncompressedLen, compressedLen*maxRatio, maxPrealloc)
}
