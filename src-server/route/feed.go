package route

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bulletin/src-server/feed"
	"bulletin/src-server/ical"
	"bulletin/src-server/model"
	"bulletin/src-server/utils"
)

// A feed entry as served to clients
type PosterRespBody struct {
	feed.Event
	// next day the event happens, from today; empty when it doesn't recur
	// within the search horizon
	NextOccurrence string `json:"nextOccurrence,omitempty"`
	Likes          *int   `json:"likes,omitempty"`
}

// Attach the next occurrence from today to each event, the shape every
// feed response uses
func ToRespBody(events []feed.Event, today time.Time) []PosterRespBody {
	respBody := make([]PosterRespBody, 0, len(events))
	for _, e := range events {
		item := PosterRespBody{Event: e}
		if next, ok := feed.NextOccurrence(e, today); ok {
			item.NextOccurrence = feed.FormatDate(next)
		}
		respBody = append(respBody, item)
	}
	return respBody
}

// Read filter criteria out of the query string. Dates may be natural
// language ("next friday"); an unparseable date is a client error.
func CriteriaFromQuery(as *utils.AppState, query url.Values, categoryPath string) (feed.Criteria, error) {
	c := feed.Criteria{
		CategoryPath:   categoryPath,
		SearchQuery:    strings.TrimSpace(query.Get("q")),
		LocationFilter: listParam(query["location"]),
		TagFilter:      listParam(query["tag"]),
	}
	if c.CategoryPath == "" {
		c.CategoryPath = query.Get("category")
	}
	if c.CategoryPath == "" {
		c.CategoryPath = feed.AllCategories
	}
	if raw := strings.TrimSpace(query.Get("date")); raw != "" {
		date, err := as.ParseDate(raw)
		if err != nil {
			return feed.Criteria{}, fmt.Errorf("%w: can't understand date %q", ErrBadQuery, raw)
		}
		c.ExplicitDate = date
	}
	return c, nil
}

// Repeated params and comma separated values both count
func listParam(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, feed.ParseTags(v)...)
	}
	return out
}

// Load every poster and run the feed pipeline over them
func BuildFeed(ctx context.Context, as *utils.AppState, c feed.Criteria) ([]feed.Event, error) {
	events, err := loadEvents(ctx, as)
	if err != nil {
		return nil, err
	}
	startTimer := time.Now()
	result := feed.Build(events, c, as.Today())
	utils.ReportSince(as.MetricChans.FeedCompute, startTimer)
	return result, nil
}

func loadEvents(ctx context.Context, as *utils.AppState) ([]feed.Event, error) {
	startTimer := time.Now()
	events, err := model.FeedEvents(ctx, as.BunDB)
	if err != nil {
		return nil, err
	}
	utils.ReportSince(as.MetricChans.DatabaseRead, startTimer)
	return events, nil
}

// Serialize a built feed as iCalendar, named after its category
func WriteCalendar(w io.Writer, c feed.Criteria, events []feed.Event) error {
	name := "Campus events"
	if c.CategoryPath != "" && c.CategoryPath != feed.AllCategories {
		name += " - " + utils.Label(c.CategoryPath)
	}
	return ical.Write(w, name, events, time.Now().UTC())
}

func Feed(muxer *http.ServeMux, as *utils.AppState) {
	serveFeed := func(w http.ResponseWriter, r *http.Request, categoryPath string) {
		c, err := CriteriaFromQuery(as, r.URL.Query(), categoryPath)
		if err != nil {
			writeError(w, err, "Can't parse query")
			return
		}
		events, err := BuildFeed(r.Context(), as, c)
		if err != nil {
			writeError(w, err, "Can't build feed")
			return
		}
		writeJSON(w, http.StatusOK, ToRespBody(events, as.Today()))
	}

	muxer.HandleFunc("GET /feed", func(w http.ResponseWriter, r *http.Request) {
		serveFeed(w, r, "")
	})

	muxer.HandleFunc("GET /feed/{category}", func(w http.ResponseWriter, r *http.Request) {
		serveFeed(w, r, r.PathValue("category"))
	})

	// same filters, as a calendar subscription
	muxer.HandleFunc("GET /feed.ics", func(w http.ResponseWriter, r *http.Request) {
		c, err := CriteriaFromQuery(as, r.URL.Query(), "")
		if err != nil {
			writeError(w, err, "Can't parse query")
			return
		}
		events, err := BuildFeed(r.Context(), as, c)
		if err != nil {
			writeError(w, err, "Can't build feed")
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := WriteCalendar(w, c, events); err != nil {
			slog.Warn("can't write calendar", "error", err)
		}
	})

	// tag tally for the tag picker
	muxer.HandleFunc("GET /tags", func(w http.ResponseWriter, r *http.Request) {
		events, err := loadEvents(r.Context(), as)
		if err != nil {
			writeError(w, err, "Can't load posters")
			return
		}
		writeJSON(w, http.StatusOK, feed.TagCounts(events))
	})
}
