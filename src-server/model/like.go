package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type Like struct {
	bun.BaseModel `bun:"table:likes"`

	UserID    string    `bun:"user_id,pk"`   // required
	PosterID  string    `bun:"poster_id,pk"` // required
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Idempotent; liking twice keeps the first timestamp
func LikePoster(ctx context.Context, db bun.IDB, userID, posterID string) error {
	if _, err := GetPoster(ctx, db, posterID); err != nil {
		return fmt.Errorf("LikePoster: %w", err)
	}
	like := &Like{UserID: userID, PosterID: posterID, CreatedAt: time.Now().UTC()}
	if _, err := db.NewInsert().
		Model(like).
		On("CONFLICT DO NOTHING").
		Exec(ctx); err != nil {
		return fmt.Errorf("LikePoster: %w", err)
	}
	return nil
}

func UnlikePoster(ctx context.Context, db bun.IDB, userID, posterID string) error {
	if _, err := db.NewDelete().
		Model((*Like)(nil)).
		Where("user_id = ?", userID).
		Where("poster_id = ?", posterID).
		Exec(ctx); err != nil {
		return fmt.Errorf("UnlikePoster: %w", err)
	}
	return nil
}

// Posters the user liked, most recently liked first
func ListLikedPosters(ctx context.Context, db bun.IDB, userID string) ([]Poster, error) {
	posters := make([]Poster, 0)
	if err := db.NewSelect().
		Model(&posters).
		Join("JOIN likes AS l ON l.poster_id = poster.id").
		Where("l.user_id = ?", userID).
		Order("l.created_at DESC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListLikedPosters: %w", err)
	}
	return posters, nil
}

func CountLikes(ctx context.Context, db bun.IDB, posterID string) (int, error) {
	count, err := db.NewSelect().
		Model((*Like)(nil)).
		Where("poster_id = ?", posterID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("CountLikes: %w", err)
	}
	return count, nil
}
