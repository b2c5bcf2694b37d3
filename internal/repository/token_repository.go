package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/marketplace-api/internal/database"
	"github.com/iliyamo/marketplace-api/internal/model"
)

// TokenRepo persists refresh tokens by their SHA-256 hash.  Rows are
// inserted and deleted, never updated.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

const insertRefresh = "INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)"

// Store inserts a refresh token hash row.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	if _, err := r.DB.ExecContext(ctx, insertRefresh, userID, tokenHash, exp); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// Find returns the row for tokenHash or ErrNotFound.
func (r *TokenRepo) Find(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &t, nil
}

// Delete removes the row for tokenHash and reports whether one existed.
func (r *TokenRepo) Delete(ctx context.Context, tokenHash string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token_hash=?", tokenHash)
	if err != nil {
		return false, fmt.Errorf("delete refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete refresh token: %w", err)
	}
	return n > 0, nil
}

// Rotate deletes oldHash and inserts newHash in one transaction.  When the
// delete affects no rows another request already redeemed the token and
// ErrNotFound is returned without inserting anything.
func (r *TokenRepo) Rotate(ctx context.Context, oldHash string, userID uint64, newHash string, exp time.Time) error {
	return database.WithTx(ctx, r.DB, func(tx database.DBTX) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token_hash=?", oldHash)
		if err != nil {
			return fmt.Errorf("rotate refresh token: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("rotate refresh token: %w", err)
		} else if n == 0 {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, insertRefresh, userID, newHash, exp); err != nil {
			return fmt.Errorf("rotate refresh token: %w", err)
		}
		return nil
	})
}

// DeleteExpired purges rows whose expiry has passed.
func (r *TokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE expires_at <= ?", now)
	if err != nil {
		return 0, fmt.Errorf("purge refresh tokens: %w", err)
	}
	return res.RowsAffected()
}
