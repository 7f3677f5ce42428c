package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"bulletin/src-server/feed"

	"github.com/uptrace/bun"
)

type PosterIDCtxKeyType string

const PosterIDCtxKey PosterIDCtxKeyType = "poster-ids"

// Location choice that is replaced by a free-text location
const OtherLocation = "Other"

var (
	ErrInvalidPoster = errors.New("invalid poster")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
)

type Poster struct {
	bun.BaseModel `bun:"table:posters"`

	ID          string   `bun:"id,pk"`            // required
	Title       string   `bun:"title,notnull"`    // required
	Organizer   string   `bun:"organizer"`
	Description string   `bun:"description"`
	Category    []string `bun:"category"` // required, non-empty
	Location    []string `bun:"location"` // required, non-empty
	Tags        []string `bun:"tags"`
	ImageURL    string   `bun:"image_url"`
	UploadedBy  string   `bun:"uploaded_by,notnull"` // required

	Repeating       bool     `bun:"repeating"`
	SingleEventDate string   `bun:"single_event_date"`
	AnchorDate      string   `bun:"anchor_date"`
	Frequency       string   `bun:"frequency"`
	DaysOfWeek      []string `bun:"days_of_week"`
	// kept equal to AnchorDate or SingleEventDate by Normalize
	SortDate string `bun:"sort_date"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at"`
}

var _ bun.AfterDeleteHook = (*Poster)(nil)

// Cleanup likes pointing at the deleted posters
func (p *Poster) AfterDelete(ctx context.Context, query *bun.DeleteQuery) error {
	if query.DB() == nil {
		return fmt.Errorf("Poster.AfterDelete: db is nil")
	}

	switch posterIDs := ctx.Value(PosterIDCtxKey).(type) {
	case []string:
		if len(posterIDs) == 0 {
			return nil
		}
		// GetConn keeps the cleanup inside the caller's transaction
		if _, err := query.DB().NewDelete().
			Conn(query.GetConn()).
			Model((*Like)(nil)).
			Where("poster_id IN (?)", bun.In(posterIDs)).
			Exec(ctx); err != nil {
			return fmt.Errorf("Poster.AfterDelete: can't delete likes: %w", err)
		}
	case nil:
		return fmt.Errorf("Poster.AfterDelete: poster ids are nil")
	default:
		return fmt.Errorf("Poster.AfterDelete: wrong poster ids type | type=%T", posterIDs)
	}
	return nil
}

// Trim user input, drop blank tags and refresh SortDate. The recurrence
// fields of a single event (and the single date of a repeating one) are
// cleared so only one set of date fields survives.
func (p *Poster) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Organizer = strings.TrimSpace(p.Organizer)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = trimAll(p.Category)
	p.Location = trimAll(p.Location)
	p.Tags = trimAll(p.Tags)
	p.DaysOfWeek = trimAll(p.DaysOfWeek)
	p.SingleEventDate = strings.TrimSpace(p.SingleEventDate)
	p.AnchorDate = strings.TrimSpace(p.AnchorDate)
	p.Frequency = strings.TrimSpace(strings.ToLower(p.Frequency))

	if p.Repeating {
		p.SingleEventDate = ""
		p.SortDate = p.AnchorDate
	} else {
		p.AnchorDate = ""
		p.Frequency = ""
		p.DaysOfWeek = []string{}
		p.SortDate = p.SingleEventDate
	}
}

// Check the poster is a well-formed event record
func (p *Poster) Validate() error {
	switch {
	case p.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidPoster)
	case p.UploadedBy == "":
		return fmt.Errorf("%w: uploader is required", ErrInvalidPoster)
	case len(p.Category) == 0:
		return fmt.Errorf("%w: select at least one category", ErrInvalidPoster)
	case len(p.Location) == 0:
		return fmt.Errorf("%w: select at least one location", ErrInvalidPoster)
	case slices.Contains(p.Location, OtherLocation):
		return fmt.Errorf("%w: specify the other location", ErrInvalidPoster)
	}

	if !p.Repeating {
		if _, ok := feed.ParseDate(p.SingleEventDate); !ok {
			return fmt.Errorf("%w: event date %q is not a YYYY-MM-DD date", ErrInvalidPoster, p.SingleEventDate)
		}
		if p.AnchorDate != "" || p.Frequency != "" || len(p.DaysOfWeek) > 0 {
			return fmt.Errorf("%w: single events can't have a recurrence rule", ErrInvalidPoster)
		}
		return nil
	}

	if _, ok := feed.ParseDate(p.AnchorDate); !ok {
		return fmt.Errorf("%w: first date %q is not a YYYY-MM-DD date", ErrInvalidPoster, p.AnchorDate)
	}
	if !feed.Frequency(p.Frequency).Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidPoster, p.Frequency)
	}
	for _, day := range p.DaysOfWeek {
		if !feed.IsWeekdayName(day) {
			return fmt.Errorf("%w: unknown day of week %q", ErrInvalidPoster, day)
		}
	}
	if p.SingleEventDate != "" {
		return fmt.Errorf("%w: repeating events can't have a single date", ErrInvalidPoster)
	}
	return nil
}

// Normalize, validate and write the poster
func (p *Poster) Upsert(ctx context.Context, db bun.IDB) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("Poster.Upsert: %w", err)
	}
	if p.ID == "" {
		return fmt.Errorf("Poster.Upsert: %w: id is blank", ErrInvalidPoster)
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if _, err := db.NewInsert().
		Model(p).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("organizer = EXCLUDED.organizer").
		Set("description = EXCLUDED.description").
		Set("category = EXCLUDED.category").
		Set("location = EXCLUDED.location").
		Set("tags = EXCLUDED.tags").
		Set("image_url = EXCLUDED.image_url").
		Set("repeating = EXCLUDED.repeating").
		Set("single_event_date = EXCLUDED.single_event_date").
		Set("anchor_date = EXCLUDED.anchor_date").
		Set("frequency = EXCLUDED.frequency").
		Set("days_of_week = EXCLUDED.days_of_week").
		Set("sort_date = EXCLUDED.sort_date").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("Poster.Upsert: %w", err)
	}
	return nil
}

// Read-only view handed to the feed engine
func (p *Poster) ToEvent() feed.Event {
	return feed.Event{
		ID:              p.ID,
		Category:        orEmpty(p.Category),
		Location:        orEmpty(p.Location),
		Tags:            orEmpty(p.Tags),
		Title:           p.Title,
		Description:     p.Description,
		Organizer:       p.Organizer,
		ImageURL:        p.ImageURL,
		UploadedBy:      p.UploadedBy,
		CreatedAt:       p.CreatedAt,
		Repeating:       p.Repeating,
		SingleEventDate: p.SingleEventDate,
		AnchorDate:      p.AnchorDate,
		Frequency:       feed.Frequency(p.Frequency),
		DaysOfWeek:      orEmpty(p.DaysOfWeek),
		SortDate:        p.SortDate,
	}
}

func ToEvents(posters []Poster) []feed.Event {
	events := make([]feed.Event, 0, len(posters))
	for i := range posters {
		events = append(events, posters[i].ToEvent())
	}
	return events
}

// Replace the "Other" choice with the free-text location the user typed
func NormalizeLocations(selected []string, other string) ([]string, error) {
	if !slices.Contains(selected, OtherLocation) {
		return selected, nil
	}
	other = strings.TrimSpace(other)
	if other == "" {
		return nil, fmt.Errorf("%w: specify the other location", ErrInvalidPoster)
	}
	locations := slices.DeleteFunc(slices.Clone(selected), func(l string) bool { return l == OtherLocation })
	return append(locations, other), nil
}

func GetPoster(ctx context.Context, db bun.IDB, id string) (*Poster, error) {
	poster := new(Poster)
	if err := db.NewSelect().
		Model(poster).
		Where("id = ?", id).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetPoster: poster %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("GetPoster: %w", err)
	}
	return poster, nil
}

// Every poster, the snapshot the feed is computed from
func ListPosters(ctx context.Context, db bun.IDB) ([]Poster, error) {
	posters := make([]Poster, 0)
	if err := db.NewSelect().
		Model(&posters).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListPosters: %w", err)
	}
	return posters, nil
}

func ListPostersByUser(ctx context.Context, db bun.IDB, userID string) ([]Poster, error) {
	posters := make([]Poster, 0)
	if err := db.NewSelect().
		Model(&posters).
		Where("uploaded_by = ?", userID).
		Order("created_at DESC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListPostersByUser: %w", err)
	}
	return posters, nil
}

// Delete posters and, through the AfterDelete hook, their likes
func DeletePosters(ctx context.Context, db bun.IDB, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := db.NewDelete().
		Model((*Poster)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(context.WithValue(ctx, PosterIDCtxKey, ids)); err != nil {
		return fmt.Errorf("DeletePosters: %w", err)
	}
	return nil
}

// Delete a poster on behalf of userID, who must be its uploader
func DeleteOwnPoster(ctx context.Context, db bun.IDB, id, userID string) error {
	poster, err := GetPoster(ctx, db, id)
	if err != nil {
		return err
	}
	if poster.UploadedBy != userID {
		return fmt.Errorf("DeleteOwnPoster: %w: poster %s belongs to another user", ErrForbidden, id)
	}
	return DeletePosters(ctx, db, id)
}

// Fill blank organizers with the uploader's display name
func ResolveOrganizers(ctx context.Context, db bun.IDB, posters []Poster) error {
	missing := make([]string, 0)
	for _, p := range posters {
		if p.Organizer == "" && p.UploadedBy != "" && !slices.Contains(missing, p.UploadedBy) {
			missing = append(missing, p.UploadedBy)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	users := make([]User, 0, len(missing))
	if err := db.NewSelect().
		Model(&users).
		Where("id IN (?)", bun.In(missing)).
		Scan(ctx); err != nil {
		return fmt.Errorf("ResolveOrganizers: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName()
	}
	for i := range posters {
		if posters[i].Organizer == "" {
			posters[i].Organizer = names[posters[i].UploadedBy]
		}
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// Every stored poster as feed events, organizers resolved
func FeedEvents(ctx context.Context, db bun.IDB) ([]feed.Event, error) {
	posters, err := ListPosters(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("FeedEvents: %w", err)
	}
	if err := ResolveOrganizers(ctx, db, posters); err != nil {
		return nil, fmt.Errorf("FeedEvents: %w", err)
	}
	return ToEvents(posters), nil
}
