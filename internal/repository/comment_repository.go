package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/marketplace-api/internal/model"
)

// CommentRepo encapsulates queries over `comments`.
type CommentRepo struct {
	db *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

// ListByOffer returns the comments of an offer, oldest first.
func (r *CommentRepo) ListByOffer(ctx context.Context, offerID uint64) ([]*model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, offer_id, user_id, text, created_at FROM comments WHERE offer_id = ? ORDER BY created_at, id",
		offerID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()
	out := []*model.Comment{}
	for rows.Next() {
		c := &model.Comment{}
		if err := rows.Scan(&c.ID, &c.OfferID, &c.UserID, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

// GetByID fetches one comment or ErrNotFound.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (*model.Comment, error) {
	c := &model.Comment{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, offer_id, user_id, text, created_at FROM comments WHERE id = ?", id).
		Scan(&c.ID, &c.OfferID, &c.UserID, &c.Text, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

// Create inserts the comment and fills in ID and CreatedAt.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (offer_id, user_id, text) VALUES (?, ?, ?)", c.OfferID, c.UserID, c.Text)
	if err != nil {
		if mysqlCode(err) == errNoReferencedRow {
			return ErrInvalidReference
		}
		return fmt.Errorf("create comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	c.ID = uint64(id)
	c.CreatedAt = time.Now().UTC()
	return nil
}

// Delete removes a comment.  Returns ErrNotFound when nothing was deleted.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
