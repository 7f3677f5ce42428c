package route

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"bulletin/src-server/feed"
	"bulletin/src-server/model"
	"bulletin/src-server/utils"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Accepts both ["a", "b"] and the legacy "a, b" form
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var legacy string
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("tags must be a list or a comma separated string")
	}
	*t = feed.ParseTags(legacy)
	return nil
}

func (t *TagList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*t = list
		return nil
	}
	*t = feed.ParseTags(value.Value)
	return nil
}

type PosterReqBody struct {
	Title       string   `json:"title" yaml:"title"`
	Organizer   string   `json:"organizer" yaml:"organizer"`
	Description string   `json:"description" yaml:"description"`
	Category    []string `json:"category" yaml:"category"`
	Location    []string `json:"location" yaml:"location"`
	// replaces the "Other" location choice
	OtherLocation string  `json:"otherLocation" yaml:"otherLocation"`
	Tags          TagList `json:"tags" yaml:"tags"`
	ImageURL      string  `json:"imageUrl" yaml:"imageUrl"`

	Repeating       bool     `json:"repeating" yaml:"repeating"`
	SingleEventDate string   `json:"singleEventDate" yaml:"singleEventDate"`
	AnchorDate      string   `json:"anchorDate" yaml:"anchorDate"`
	Frequency       string   `json:"frequency" yaml:"frequency"`
	DaysOfWeek      []string `json:"daysOfWeek" yaml:"daysOfWeek"`
}

// Copy the request onto the poster, checking the choices against the
// configured option lists
func (b *PosterReqBody) Apply(as *utils.AppState, p *model.Poster) error {
	for _, category := range b.Category {
		if !slices.Contains(as.Config.GetCategories(), category) {
			return fmt.Errorf("%w: unknown category %q", model.ErrInvalidPoster, category)
		}
	}
	locations, err := model.NormalizeLocations(b.Location, b.OtherLocation)
	if err != nil {
		return err
	}

	p.Title = b.Title
	p.Organizer = b.Organizer
	p.Description = b.Description
	p.Category = b.Category
	p.Location = locations
	p.Tags = b.Tags
	p.ImageURL = b.ImageURL
	p.Repeating = b.Repeating
	p.SingleEventDate = b.SingleEventDate
	p.AnchorDate = b.AnchorDate
	p.Frequency = b.Frequency
	p.DaysOfWeek = b.DaysOfWeek
	return nil
}

func Posters(muxer *http.ServeMux, as *utils.AppState) {
	// one poster with its next occurrence and like count
	muxer.HandleFunc("GET /posters/{id}", func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		posterModel, err := model.GetPoster(r.Context(), as.BunDB, r.PathValue("id"))
		if err != nil {
			writeError(w, err, "Can't get poster")
			return
		}
		posters := []model.Poster{*posterModel}
		if err := model.ResolveOrganizers(r.Context(), as.BunDB, posters); err != nil {
			writeError(w, err, "Can't get organizer")
			return
		}
		likes, err := model.CountLikes(r.Context(), as.BunDB, posterModel.ID)
		if err != nil {
			writeError(w, err, "Can't count likes")
			return
		}
		utils.ReportSince(as.MetricChans.DatabaseRead, startTimer)

		respBody := ToRespBody(model.ToEvents(posters), as.Today())[0]
		respBody.Likes = &likes
		writeJSON(w, http.StatusOK, respBody)
	})

	// create a poster, the response is the stored poster
	muxer.HandleFunc("POST /posters", UserMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			var reqBody PosterReqBody
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Invalid request body"))
				return
			}

			posterModel := &model.Poster{
				ID:         uuid.NewString(),
				UploadedBy: userIDFrom(r),
			}
			if err := reqBody.Apply(as, posterModel); err != nil {
				writeError(w, err, "Can't read poster")
				return
			}
			startTimer := time.Now()
			if err := posterModel.Upsert(r.Context(), as.BunDB); err != nil {
				writeError(w, err, "Can't save poster")
				return
			}
			utils.ReportSince(as.MetricChans.DatabaseWrite, startTimer)

			writeJSON(w, http.StatusCreated, posterModel.ToEvent())
		}))

	// only the uploader may edit
	muxer.HandleFunc("PUT /posters/{id}", UserMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			var reqBody PosterReqBody
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Invalid request body"))
				return
			}

			posterModel, err := model.GetPoster(r.Context(), as.BunDB, r.PathValue("id"))
			if err != nil {
				writeError(w, err, "Can't get poster")
				return
			}
			if posterModel.UploadedBy != userIDFrom(r) {
				writeError(w, fmt.Errorf("%w: only the uploader can edit this poster", model.ErrForbidden), "")
				return
			}
			if err := reqBody.Apply(as, posterModel); err != nil {
				writeError(w, err, "Can't read poster")
				return
			}
			startTimer := time.Now()
			if err := posterModel.Upsert(r.Context(), as.BunDB); err != nil {
				writeError(w, err, "Can't save poster")
				return
			}
			utils.ReportSince(as.MetricChans.DatabaseWrite, startTimer)

			writeJSON(w, http.StatusOK, posterModel.ToEvent())
		}))

	// only the uploader may delete, likes of the poster go with it
	muxer.HandleFunc("DELETE /posters/{id}", UserMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			startTimer := time.Now()
			if err := model.DeleteOwnPoster(r.Context(), as.BunDB, r.PathValue("id"), userIDFrom(r)); err != nil {
				writeError(w, err, "Can't delete poster")
				return
			}
			utils.ReportSince(as.MetricChans.DatabaseWrite, startTimer)
			w.WriteHeader(http.StatusNoContent)
		}))
}
