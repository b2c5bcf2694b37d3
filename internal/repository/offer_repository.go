package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/marketplace-api/internal/database"
	"github.com/iliyamo/marketplace-api/internal/model"
)

// OfferRepo encapsulates queries over `offers` and the `offer_categories`
// join table.  Comments of an offer are removed by the ON DELETE CASCADE
// foreign key, not by this repository.
type OfferRepo struct {
	db *sql.DB
}

func NewOfferRepo(db *sql.DB) *OfferRepo {
	return &OfferRepo{db: db}
}

const offerColumns = "o.id, o.user_id, o.title, o.description, o.type, o.sum, o.picture, o.created_at, o.updated_at"

// List returns all offers, newest first, with their categories attached.
func (r *OfferRepo) List(ctx context.Context) ([]*model.Offer, error) {
	return r.query(ctx, "SELECT "+offerColumns+" FROM offers o ORDER BY o.created_at DESC, o.id DESC")
}

// ListByCategory returns offers classified under categoryID.
func (r *OfferRepo) ListByCategory(ctx context.Context, categoryID uint64) ([]*model.Offer, error) {
	return r.query(ctx, `SELECT `+offerColumns+` FROM offers o
	                     JOIN offer_categories oc ON oc.offer_id = o.id
	                     WHERE oc.category_id = ?
	                     ORDER BY o.created_at DESC, o.id DESC`, categoryID)
}

// Search returns offers whose title contains query (case-insensitive under
// the table collation).
func (r *OfferRepo) Search(ctx context.Context, query string) ([]*model.Offer, error) {
	return r.query(ctx, `SELECT `+offerColumns+` FROM offers o
	                     WHERE o.title LIKE ?
	                     ORDER BY o.created_at DESC, o.id DESC`, "%"+escapeLike(query)+"%")
}

// GetByID fetches one offer with its categories.
func (r *OfferRepo) GetByID(ctx context.Context, id uint64) (*model.Offer, error) {
	offers, err := r.query(ctx, "SELECT "+offerColumns+" FROM offers o WHERE o.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, ErrNotFound
	}
	return offers[0], nil
}

// Create inserts the offer and links it to categoryIDs in one transaction.
// On success o.ID and o.Categories are populated.
func (r *OfferRepo) Create(ctx context.Context, o *model.Offer, categoryIDs []uint64) error {
	err := database.WithTx(ctx, r.db, func(tx database.DBTX) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO offers (user_id, title, description, type, sum, picture) VALUES (?,?,?,?,?,?)",
			o.UserID, o.Title, o.Description, o.Type, o.Sum, o.Picture)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		o.ID = uint64(id)
		return linkCategories(ctx, tx, o.ID, categoryIDs)
	})
	if err != nil {
		return offerWriteErr("create offer", err)
	}
	return r.reload(ctx, o)
}

// Update overwrites the editable fields and replaces the category links.
func (r *OfferRepo) Update(ctx context.Context, o *model.Offer, categoryIDs []uint64) error {
	err := database.WithTx(ctx, r.db, func(tx database.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE offers SET title = ?, description = ?, type = ?, sum = ?, picture = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			o.Title, o.Description, o.Type, o.Sum, o.Picture, o.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM offer_categories WHERE offer_id = ?", o.ID); err != nil {
			return err
		}
		return linkCategories(ctx, tx, o.ID, categoryIDs)
	})
	if err != nil {
		return offerWriteErr("update offer", err)
	}
	return r.reload(ctx, o)
}

// Delete removes the offer.  Returns ErrNotFound when nothing was deleted.
func (r *OfferRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM offers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete offer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OfferRepo) reload(ctx context.Context, o *model.Offer) error {
	fresh, err := r.GetByID(ctx, o.ID)
	if err != nil {
		return err
	}
	*o = *fresh
	return nil
}

func (r *OfferRepo) query(ctx context.Context, q string, args ...any) ([]*model.Offer, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()

	var out []*model.Offer
	byID := map[uint64]*model.Offer{}
	for rows.Next() {
		o := &model.Offer{Categories: []*model.Category{}}
		if err := rows.Scan(&o.ID, &o.UserID, &o.Title, &o.Description, &o.Type, &o.Sum, &o.Picture, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		out = append(out, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}
	if err := r.attachCategories(ctx, byID); err != nil {
		return nil, err
	}
	return out, nil
}

// attachCategories loads the categories of all offers in byID with a single
// query.
func (r *OfferRepo) attachCategories(ctx context.Context, byID map[uint64]*model.Offer) error {
	ids := make([]any, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	q := `SELECT oc.offer_id, c.id, c.name FROM offer_categories oc
	      JOIN categories c ON c.id = oc.category_id
	      WHERE oc.offer_id IN (` + placeholders(len(ids)) + `)
	      ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, q, ids...)
	if err != nil {
		return fmt.Errorf("query offer categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var offerID uint64
		c := &model.Category{}
		if err := rows.Scan(&offerID, &c.ID, &c.Name); err != nil {
			return fmt.Errorf("scan offer category: %w", err)
		}
		if o, ok := byID[offerID]; ok {
			o.Categories = append(o.Categories, c)
		}
	}
	return rows.Err()
}

func linkCategories(ctx context.Context, tx database.DBTX, offerID uint64, categoryIDs []uint64) error {
	for _, cid := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO offer_categories (offer_id, category_id) VALUES (?, ?)", offerID, cid); err != nil {
			if mysqlCode(err) == errDupEntry {
				continue // same category listed twice
			}
			return err
		}
	}
	return nil
}

func offerWriteErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if mysqlCode(err) == errNoReferencedRow {
		return ErrInvalidReference
	}
	return fmt.Errorf("%s: %w", op, err)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
