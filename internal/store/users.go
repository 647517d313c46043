package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/text/unicode/norm"

	"github.com/probelab/contestdb/internal/model"
)

// PutUser upserts a single user profile. The user name is NFC-normalized
// before use so re-imports of visually identical Unicode names hit the
// same row instead of creating a near-duplicate.
func (s *Store) PutUser(ctx context.Context, u *model.User) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		return s.putUserTx(ctx, tx, u)
	})
}

// PutUsers upserts a user snapshot in one transaction.
func (s *Store) PutUsers(ctx context.Context, users []model.User) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		for i := range users {
			if err := s.putUserTx(ctx, tx, &users[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Debug("users saved", "count", len(users))
	return nil
}

func (s *Store) putUserTx(ctx context.Context, tx *sqlx.Tx, u *model.User) error {
	u.UserName = norm.NFC.String(u.UserName)

	var prev rowTimes
	err := tx.GetContext(ctx, &prev,
		`SELECT created_at, updated_at FROM users WHERE user_name = ?`, u.UserName)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created, updated := s.insertTimes(u.UpdatedAt)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users
			(user_name, rating, highest_rating, affiliation, birth_year, country, crown, join_count, "rank", wins, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, u.UserName, u.Rating, u.HighestRating, u.Affiliation, u.BirthYear, u.Country, u.Crown,
			u.JoinCount, u.Rank, u.Wins, created, updated)
		if err != nil {
			return fmt.Errorf("insert user %q: %w", u.UserName, err)
		}
		u.CreatedAt, u.UpdatedAt = created, updated
	case err != nil:
		return fmt.Errorf("look up user %q: %w", u.UserName, err)
	default:
		updated := utc(s.touch.Resolve(prev.UpdatedAt, updatedCandidate(u.UpdatedAt)))
		_, err := tx.ExecContext(ctx, `
			UPDATE users
			SET rating = ?, highest_rating = ?, affiliation = ?, birth_year = ?, country = ?, crown = ?,
			    join_count = ?, "rank" = ?, wins = ?, updated_at = ?
			WHERE user_name = ?
		`, u.Rating, u.HighestRating, u.Affiliation, u.BirthYear, u.Country, u.Crown,
			u.JoinCount, u.Rank, u.Wins, updated, u.UserName)
		if err != nil {
			return fmt.Errorf("update user %q: %w", u.UserName, err)
		}
		u.CreatedAt, u.UpdatedAt = prev.CreatedAt, updated
	}
	return nil
}

// GetUser returns one user by name, or ErrNotFound. The lookup key is
// NFC-normalized the same way PutUser normalizes it.
func (s *Store) GetUser(ctx context.Context, userName string) (*model.User, error) {
	userName = norm.NFC.String(userName)

	var u model.User
	err := s.db.GetContext(ctx, &u, `
		SELECT user_name, rating, highest_rating, affiliation, birth_year, country, crown, join_count, "rank", wins, created_at, updated_at
		FROM users WHERE user_name = ?
	`, userName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", userName, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", userName, err)
	}
	return &u, nil
}

// ListUsers returns all users ordered by rating, strongest first.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.db.SelectContext(ctx, &users, `
		SELECT user_name, rating, highest_rating, affiliation, birth_year, country, crown, join_count, "rank", wins, created_at, updated_at
		FROM users
		ORDER BY rating DESC, user_name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// UsersUpdatedSince returns users whose updated_at is strictly after the
// cursor, oldest change first.
func (s *Store) UsersUpdatedSince(ctx context.Context, cursor time.Time) ([]model.User, error) {
	var users []model.User
	err := s.db.SelectContext(ctx, &users, `
		SELECT user_name, rating, highest_rating, affiliation, birth_year, country, crown, join_count, "rank", wins, created_at, updated_at
		FROM users
		WHERE updated_at > ?
		ORDER BY updated_at ASC, user_name ASC
	`, utc(cursor))
	if err != nil {
		return nil, fmt.Errorf("users updated since %s: %w", cursor, err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}
