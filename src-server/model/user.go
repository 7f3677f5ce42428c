package model

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        string `bun:"id,pk,notnull,unique"`
	FirstName string `bun:"first_name"`
	LastName  string `bun:"last_name"`
	Email     string `bun:"email"`
}

// "First Last", falling back to the email then the id
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

func (u *User) Upsert(ctx context.Context, db bun.IDB) error {
	if u.ID == "" {
		return fmt.Errorf("User.Upsert: user id is empty")
	}

	if _, err := db.
		NewInsert().
		Model(u).
		On("CONFLICT (id) DO UPDATE").
		// blank columns keep what is already stored
		Set("first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), ?TableAlias.first_name)").
		Set("last_name = COALESCE(NULLIF(EXCLUDED.last_name, ''), ?TableAlias.last_name)").
		Set("email = COALESCE(NULLIF(EXCLUDED.email, ''), ?TableAlias.email)").
		Exec(ctx); err != nil {
		return fmt.Errorf("User.Upsert: %w", err)
	}
	return nil
}

// Remove a user together with every poster they uploaded and every like
// they gave. Likes other users gave to the removed posters go too.
func DeleteUser(ctx context.Context, db *bun.DB, userID string) error {
	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		posterIDs := make([]string, 0)
		if err := tx.NewSelect().
			Model((*Poster)(nil)).
			Column("id").
			Where("uploaded_by = ?", userID).
			Scan(ctx, &posterIDs); err != nil {
			return fmt.Errorf("can't list posters: %w", err)
		}
		if err := DeletePosters(ctx, tx, posterIDs...); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*Like)(nil)).
			Where("user_id = ?", userID).
			Exec(ctx); err != nil {
			return fmt.Errorf("can't delete likes: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*User)(nil)).
			Where("id = ?", userID).
			Exec(ctx); err != nil {
			return fmt.Errorf("can't delete user: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("DeleteUser: %w", err)
	}
	return nil
}
