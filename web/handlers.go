// Package web serves the contents of LOD archives over HTTP: directory
// listings, raw entries, decoded images and atlases.
package web

import (
	"fmt"
	"image"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-lod/bitmap"
	"badc0de.net/pkg/go-lod/compositor"
	"badc0de.net/pkg/go-lod/export"
	"badc0de.net/pkg/go-lod/lod"
	"badc0de.net/pkg/go-lod/palette"
	"badc0de.net/pkg/go-lod/things"
)

// generation is part of every ETag; bump if the way images are generated
// changes.
const generation = 1

// maxAtlasTiles bounds the number of names accepted by the atlas handler.
const maxAtlasTiles = 256

type Handler struct {
	th *things.Things

	bitmapsLODPath string
	spritesLODPath string
}

// NewHandler constructs web handler for the passed things. The archive paths
// are only used for Last-Modified headers and may be empty.
func NewHandler(th *things.Things, bitmapsLODPath, spritesLODPath string) *Handler {
	return &Handler{
		th:             th,
		bitmapsLODPath: bitmapsLODPath,
		spritesLODPath: spritesLODPath,
	}
}

func (h *Handler) archivePath(k things.Kind) string {
	if k == things.KindSprite {
		return h.spritesLODPath
	}
	return h.bitmapsLODPath
}

func (h *Handler) setLastModified(w http.ResponseWriter, k things.Kind) {
	if s, err := os.Stat(h.archivePath(k)); err == nil {
		w.Header().Set("Last-Modified", s.ModTime().Format(http.TimeFormat))
	}
}

// httpStatus maps decoding errors to response codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, lod.ErrNotFound), errors.Is(err, things.ErrNoArchive):
		return http.StatusNotFound
	case errors.Is(err, palette.ErrNotFound), errors.Is(err, bitmap.ErrEmptyImage):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func httpError(w http.ResponseWriter, r *http.Request, err error) {
	code := httpStatus(err)
	if code == http.StatusInternalServerError {
		glog.Errorf("web: %s: %v", r.URL.Path, err)
	} else {
		glog.V(1).Infof("web: %s: %v", r.URL.Path, err)
	}
	http.Error(w, err.Error(), code)
}

// notModified answers conditional requests. It returns true if the response
// has been written.
func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	if r.Header.Get("If-None-Match") != etag {
		return false
	}
	w.Header().Set("Cache-Control", "public, max-age=36000") // 36000 = 10h
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusNotModified)
	return true
}

func wantsDataURL(r *http.Request) bool {
	v := r.URL.Query().Get("dataurl")
	return v != "" && v != "0" && v != "false"
}

// writeImage encodes img as requested: as an image body, or wrapped in a
// data: URL when ?dataurl=1 is passed.
func writeImage(w http.ResponseWriter, r *http.Request, img image.Image, f export.Format, etag string) {
	w.Header().Set("Cache-Control", "public, max-age=36000") // 36000 = 10h
	w.Header().Set("ETag", etag)

	if wantsDataURL(r) {
		s, err := export.DataURL(img, f)
		if err != nil {
			httpError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, s)
		return
	}

	w.Header().Set("Content-Type", f.MIME())
	w.WriteHeader(http.StatusOK)
	if err := export.Encode(w, img, f); err != nil {
		glog.Errorf("web: encoding %s: %v", r.URL.Path, err)
	}
}

func (h *Handler) filesHandler(w http.ResponseWriter, r *http.Request) {
	k, err := things.ParseKind(mux.Vars(r)["archive"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	a, err := h.th.Archive(k)
	if err != nil {
		httpError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	h.setLastModified(w, k)
	w.WriteHeader(http.StatusOK)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "# %v %v, %d entries\n", a.Version(), k, len(a.Entries()))
	for _, e := range a.Entries() {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Name, e.Offset, humanize.Bytes(uint64(e.Size)))
	}
	tw.Flush()
}

func (h *Handler) rawHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	k, err := things.ParseKind(vars["archive"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	a, err := h.th.Archive(k)
	if err != nil {
		httpError(w, r, err)
		return
	}

	name := vars["name"]
	e, ok := a.Entry(name)
	if !ok {
		httpError(w, r, errors.Wrapf(lod.ErrNotFound, "%q", name))
		return
	}
	etag := fmt.Sprintf(`W/"raw:%d:%v:%s:%d:%d"`, generation, k, name, e.Offset, e.Size)
	if notModified(w, r, etag) {
		return
	}

	data, err := a.GetRaw(name)
	if err != nil {
		httpError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("ETag", etag)
	h.setLastModified(w, k)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// imageHandler serves one decoded bitmap or sprite.
func (h *Handler) imageHandler(k things.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		name := vars["name"]
		f, err := export.FormatFromExt(vars["ext"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		a, err := h.th.Archive(k)
		if err != nil {
			httpError(w, r, err)
			return
		}
		e, ok := a.Entry(name)
		if !ok {
			httpError(w, r, errors.Wrapf(lod.ErrNotFound, "%q", name))
			return
		}

		etag := fmt.Sprintf(`W/"%v:%d:%s:%d:%d:%s:%t"`, k, generation, name, e.Offset, e.Size, f.MIME(), wantsDataURL(r))
		if notModified(w, r, etag) {
			return
		}

		img, err := h.th.Image(k, name)
		if err != nil {
			httpError(w, r, err)
			return
		}
		h.setLastModified(w, k)
		writeImage(w, r, img, f, etag)
	}
}

func (h *Handler) atlasHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var names []string
	for _, n := range strings.Split(q.Get("names"), ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		http.Error(w, "names not given", http.StatusBadRequest)
		return
	}
	if len(names) > maxAtlasTiles {
		http.Error(w, fmt.Sprintf("at most %d names", maxAtlasTiles), http.StatusBadRequest)
		return
	}

	row := 2
	if s := q.Get("row"); s != "" {
		var err error
		if row, err = strconv.Atoi(s); err != nil || row < 1 {
			http.Error(w, "row not a positive number", http.StatusBadRequest)
			return
		}
	}

	f := export.PNG
	if s := q.Get("ext"); s != "" {
		var err error
		if f, err = export.FormatFromExt(s); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	opts := &compositor.AtlasOptions{WaterTile: q.Get("water")}
	if s := q.Get("nowater"); s != "" && s != "0" {
		opts.NoWater = true
	}

	etag := fmt.Sprintf(`W/"atlas:%d:%s:%d:%s:%t:%s:%t"`, generation, strings.Join(names, ","), row, opts.WaterTile, opts.NoWater, f.MIME(), wantsDataURL(r))
	if notModified(w, r, etag) {
		return
	}

	img, err := h.th.Atlas(names, row, opts)
	if err != nil {
		httpError(w, r, err)
		return
	}
	h.setLastModified(w, things.KindBitmap)
	writeImage(w, r, img, f, etag)
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/files/{archive}", h.filesHandler).Methods("GET", "HEAD")
	r.HandleFunc("/raw/{archive}/{name}", h.rawHandler).Methods("GET", "HEAD")
	r.HandleFunc("/bitmap/{name}.{ext:png|gif|bmp}", h.imageHandler(things.KindBitmap)).Methods("GET", "HEAD")
	r.HandleFunc("/sprite/{name}.{ext:png|gif|bmp}", h.imageHandler(things.KindSprite)).Methods("GET", "HEAD")
	r.HandleFunc("/atlas", h.atlasHandler).Methods("GET", "HEAD")
	r.HandleFunc("/sitemap.xml", h.sitemapIndexHandler).Methods("GET")
	r.HandleFunc("/sitemap-{archive}.xml", h.sitemapHandler).Methods("GET")
}
