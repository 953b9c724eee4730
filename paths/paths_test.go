package paths

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-lod/ttesting"
)

func TestFindInDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DataDirEnv, dir)
	want := filepath.Join(dir, "paths-test-bitmaps.lod")
	if err := os.WriteFile(want, []byte("LOD"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	ttesting.AssertEqualString(t, "found path", Find("paths-test-bitmaps.lod"), want)
	ttesting.AssertEqualString(t, "first dir", Dirs()[0], dir)
	ttesting.AssertEqualString(t, "missing file", Find("paths-test-missing.lod"), "")

	f, err := Open("paths-test-bitmaps.lod")
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	defer f.Close()
	got, _ := io.ReadAll(f)
	ttesting.AssertEqualString(t, "contents", string(got), "LOD")

	_, err = Open("paths-test-missing.lod")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want os.ErrNotExist", err)
	}
}

func TestNoFindOpenHTTP(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sprites.lod" {
			http.NotFound(w, r)
			return
		}
		hits++
		w.Write([]byte("remote archive"))
	}))
	defer srv.Close()

	for i := 0; i < 2; i++ {
		f, err := NoFindOpen(srv.URL + "/sprites.lod")
		if err != nil {
			t.Fatalf("failed to open: %v", err)
		}
		f.Seek(7, io.SeekStart)
		got, _ := io.ReadAll(f)
		f.Close()
		ttesting.AssertEqualString(t, "contents after seek", string(got), "archive")
	}
	ttesting.AssertEqualInt(t, "fetched once", hits, 1)

	_, err := NoFindOpen(srv.URL + "/missing.lod")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want os.ErrNotExist", err)
	}
}

func TestIsURL(t *testing.T) {
	tcs := map[string]bool{
		"http://example.com/bitmaps.lod":  true,
		"https://example.com/bitmaps.lod": true,
		"datafiles/bitmaps.lod":           false,
		"httpfiles/bitmaps.lod":           false,
	}
	for path, want := range tcs {
		if got := IsURL(path); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", path, got, want)
		}
	}
}
