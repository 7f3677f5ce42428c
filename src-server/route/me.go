package route

import (
	"fmt"
	"net/http"
	"time"

	"bulletin/src-server/model"
	"bulletin/src-server/utils"
)

// Routes scoped to the calling user
func Me(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /me/posters", UserMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			startTimer := time.Now()
			posters, err := model.ListPostersByUser(r.Context(), as.BunDB, userIDFrom(r))
			if err != nil {
				writeError(w, err, "Can't get posters")
				return
			}
			if err := model.ResolveOrganizers(r.Context(), as.BunDB, posters); err != nil {
				writeError(w, err, "Can't get organizers")
				return
			}
			utils.ReportSince(as.MetricChans.DatabaseRead, startTimer)
			writeJSON(w, http.StatusOK, ToRespBody(model.ToEvents(posters), as.Today()))
		}))

	muxer.HandleFunc("GET /me/likes", UserMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			startTimer := time.Now()
			posters, err := model.ListLikedPosters(r.Context(), as.BunDB, userIDFrom(r))
			if err != nil {
				writeError(w, err, "Can't get liked posters")
				return
			}
			if err := model.ResolveOrganizers(r.Context(), as.BunDB, posters); err != nil {
				writeError(w, err, "Can't get organizers")
				return
			}
			utils.ReportSince(as.MetricChans.DatabaseRead, startTimer)
			writeJSON(w, http.StatusOK, ToRespBody(model.ToEvents(posters), as.Today()))
		}))

	muxer.HandleFunc("PUT /me/likes/{id}", UserMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			startTimer := time.Now()
			if err := model.LikePoster(r.Context(), as.BunDB, userIDFrom(r), r.PathValue("id")); err != nil {
				writeError(w, err, "Can't like poster")
				return
			}
			utils.ReportSince(as.MetricChans.DatabaseWrite, startTimer)
			w.WriteHeader(http.StatusNoContent)
		}))

	muxer.HandleFunc("DELETE /me/likes/{id}", UserMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			startTimer := time.Now()
			if err := model.UnlikePoster(r.Context(), as.BunDB, userIDFrom(r), r.PathValue("id")); err != nil {
				writeError(w, err, "Can't unlike poster")
				return
			}
			utils.ReportSince(as.MetricChans.DatabaseWrite, startTimer)
			w.WriteHeader(http.StatusNoContent)
		}))

	// account deletion takes every poster and like of the user with it
	muxer.HandleFunc("DELETE /users/{id}", UserMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			userID := r.PathValue("id")
			if userID != userIDFrom(r) {
				writeError(w, fmt.Errorf("%w: users can only delete themselves", model.ErrForbidden), "")
				return
			}
			startTimer := time.Now()
			if err := model.DeleteUser(r.Context(), as.BunDB, userID); err != nil {
				writeError(w, err, "Can't delete user")
				return
			}
			utils.ReportSince(as.MetricChans.DatabaseWrite, startTimer)
			w.WriteHeader(http.StatusNoContent)
		}))
}
