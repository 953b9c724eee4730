package web

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"badc0de.net/pkg/go-lod/things"
)

// maxSitemapURLs is the protocol's limit on entries per sitemap.
const maxSitemapURLs = 50000

type SitemapURLImage struct {
	// xml.Name would be 'http://www.google.com/schemas/sitemap-image/1.1 image'

	Loc string `xml:"image:loc"` // image is the namespace 'http://www.google.com/schemas/sitemap-image/1.1'
}

type SitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`

	Image []SitemapURLImage `xml:"image:image,omitempty"`
}

type SitemapURLSet struct {
	XMLName    xml.Name     `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	XMLNSImage string       `xml:"xmlns:image,attr"`
	URL        []SitemapURL `xml:"url,omitempty"` // up to 50k entries
}

func (e *SitemapURLSet) Write(w http.ResponseWriter, r *http.Request) {
	e.XMLNSImage = "http://www.google.com/schemas/sitemap-image/1.1"

	w.Header().Set("Content-Type", "application/xml")

	fmt.Fprintf(w, "%s", xml.Header)
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	err := enc.Encode(e)
	if err != nil {
		http.Error(w, "<error>could not encode sitemap</error>", http.StatusInternalServerError)
		return
	}
}

type SitemapIndexSitemap struct {
	XMLName xml.Name `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 sitemap"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type SitemapIndex struct {
	XMLName xml.Name              `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 sitemapindex"`
	Sitemap []SitemapIndexSitemap `xml:"sitemap"` // up to 50k entries
}

func (e *SitemapIndex) Write(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml")

	fmt.Fprintf(w, "%s", xml.Header)
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	err := enc.Encode(e)
	if err != nil {
		http.Error(w, "<error>could not encode sitemap index</error>", http.StatusInternalServerError)
		return
	}
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// sitemapIndexHandler lists one sitemap per loaded archive.
func (h *Handler) sitemapIndexHandler(w http.ResponseWriter, r *http.Request) {
	idx := &SitemapIndex{}
	for _, k := range []things.Kind{things.KindBitmap, things.KindSprite} {
		if _, err := h.th.Archive(k); err != nil {
			continue
		}
		idx.Sitemap = append(idx.Sitemap, SitemapIndexSitemap{Loc: baseURL(r) + "/sitemap-" + k.String() + ".xml"})
	}
	idx.Write(w, r)
}

// sitemapHandler lists the PNG URL of every image in one archive.
func (h *Handler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
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

	prefix := baseURL(r) + "/bitmap/"
	if k == things.KindSprite {
		prefix = baseURL(r) + "/sprite/"
	}

	set := &SitemapURLSet{}
	for _, name := range things.ImageNames(a) {
		if len(set.URL) == maxSitemapURLs {
			break
		}
		loc := prefix + url.PathEscape(name) + ".png"
		set.URL = append(set.URL, SitemapURL{Loc: loc, Image: []SitemapURLImage{{Loc: loc}}})
	}
	set.Write(w, r)
}
