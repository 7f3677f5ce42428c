package metric

import (
	"context"
	"time"

	"bulletin/src-server/model"
	"bulletin/src-server/utils"
)

func databaseEmptyRead(as *utils.AppState) (time.Duration, error) {
	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.Poster)(nil)).
		Where("id = ?", "").
		Exists(context.Background()); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func posterCount(as *utils.AppState) (int, error) {
	return as.BunDB.NewSelect().
		Model((*model.Poster)(nil)).
		Count(context.Background())
}
