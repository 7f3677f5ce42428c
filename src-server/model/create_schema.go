package model

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
)

func CreateSchema(ctx context.Context, db *bun.DB) error {
	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{
			(*User)(nil),
			(*Poster)(nil),
			(*Like)(nil),
		} {
			if _, err := tx.
				NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
		}
		if _, err := tx.NewCreateIndex().
			Model((*Poster)(nil)).
			Index("posters_uploaded_by_idx").
			IfNotExists().
			Column("uploaded_by").
			Exec(ctx); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return fmt.Errorf("CreateSchema: %w", err)
	}

	return nil
}
