package route

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bulletin/src-server/model"
)

var ErrBadQuery = errors.New("bad query")

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Can't marshal response body"))
		slog.Error("can't marshal response body", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// Map domain errors to status codes; anything else is logged as a 500
// with msg as the body
func writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, model.ErrInvalidPoster), errors.Is(err, ErrBadQuery):
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(err.Error()))
	case errors.Is(err, model.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(err.Error()))
	case errors.Is(err, model.ErrForbidden):
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(err.Error()))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(msg))
		slog.Error(msg, "error", err)
	}
}
