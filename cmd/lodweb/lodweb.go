// Command lodweb serves bitmaps, sprites and atlases from LOD archives over
// HTTP.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"badc0de.net/pkg/flagutil/v1"

	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/go-lod/things"
	"badc0de.net/pkg/go-lod/things/full"
	"badc0de.net/pkg/go-lod/web"
)

var (
	listenAddress = flag.String("listen_address", ":8080", "http listen address for lodweb")
	precache      = flag.Bool("precache", false, "whether to decode every bitmap and sprite before serving")
	accessLog     = flag.Bool("access_log", true, "whether to write an access log to stderr")
	banner        = flag.Bool("banner", true, "whether to print a banner on startup")
)

// traced records every request in the /debug/requests page.
func traced(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tr := trace.New("lodweb", r.URL.Path)
		defer tr.Finish()
		tr.LazyPrintf("%s %s", r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r.WithContext(trace.NewContext(r.Context(), tr)))
	})
}

func main() {
	full.SetupFilePathFlags()
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	if *banner {
		fmt.Fprintln(os.Stderr, figure.NewFigure("lodweb", "", true).String())
	}

	th, err := full.FromFilePathFlags()
	if err != nil {
		glog.Exitf("loading archives: %v", err)
	}

	if *precache {
		for _, k := range []things.Kind{things.KindBitmap, things.KindSprite} {
			a, err := th.Archive(k)
			if err != nil {
				continue
			}
			if failed, err := th.Precache(k, things.ImageNames(a)); failed > 0 {
				glog.Warningf("%d %v could not be decoded; first error: %v", failed, k, err)
			}
		}
	}

	r := mux.NewRouter()
	h := web.NewHandler(th, full.PathFlagValue(full.FlagBitmapsLODPath), full.PathFlagValue(full.FlagSpritesLODPath))
	h.RegisterRoutes(r)
	// golang.org/x/net/trace registers /debug/requests and /debug/events here.
	r.PathPrefix("/debug/").Handler(http.DefaultServeMux)

	var handler http.Handler = handlers.CompressHandler(traced(r))
	if *accessLog {
		handler = handlers.CombinedLoggingHandler(os.Stderr, handler)
	}

	glog.Infof("lodweb listening on %s", *listenAddress)
	glog.Fatal(http.ListenAndServe(*listenAddress, handler))
}
