package route

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bulletin/src-server/model"
	"bulletin/src-server/utils"
)

type UserIDCtxKeyType string

const (
	UserIDCtxKey UserIDCtxKeyType = "user-id"

	// set by the authenticating proxy in front of the app
	UserIDHeader    = "X-User-ID"
	UserNameHeader  = "X-User-Name"
	UserEmailHeader = "X-User-Email"
)

// Reject requests without a user id, remember the user's display name
// when the proxy forwards one
func UserMiddleware(as *utils.AppState, next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("User id header not found"))
			return
		}

		if name := strings.TrimSpace(r.Header.Get(UserNameHeader)); name != "" || r.Header.Get(UserEmailHeader) != "" {
			firstName, lastName, _ := strings.Cut(name, " ")
			userModel := &model.User{
				ID:        userID,
				FirstName: firstName,
				LastName:  strings.TrimSpace(lastName),
				Email:     strings.TrimSpace(r.Header.Get(UserEmailHeader)),
			}
			startTimer := time.Now()
			if err := userModel.Upsert(r.Context(), as.BunDB); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't save user"))
				slog.Error("can't save user", "user", userID, "error", err)
				return
			}
			utils.ReportSince(as.MetricChans.DatabaseWrite, startTimer)
		}

		ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
		next(w, r.WithContext(ctx))
	}
}

func userIDFrom(r *http.Request) string {
	userID, _ := r.Context().Value(UserIDCtxKey).(string)
	return userID
}
