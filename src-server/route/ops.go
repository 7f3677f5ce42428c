package route

import (
	"net/http"

	"bulletin/src-server/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option lists for the upload form, metrics and liveness
func Ops(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, as.Config.GetCategories())
	})

	muxer.HandleFunc("GET /locations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, as.Config.GetLocations())
	})

	muxer.Handle("GET /metrics", promhttp.HandlerFor(as.MetricRegistry, promhttp.HandlerOpts{}))

	muxer.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := as.RawDB.PingContext(r.Context()); err != nil {
			writeError(w, err, "Database unreachable")
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

// Every route of the app
func NewMux(as *utils.AppState) *http.ServeMux {
	muxer := http.NewServeMux()
	Feed(muxer, as)
	Posters(muxer, as)
	Me(muxer, as)
	Ops(muxer, as)
	return muxer
}
