package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/marketplace-api/internal/model"
)

// CategoryRepo encapsulates queries over `categories`.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// List returns all categories with the number of offers in each.
func (r *CategoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	const q = `SELECT c.id, c.name, COUNT(oc.offer_id)
	           FROM categories c
	           LEFT JOIN offer_categories oc ON oc.category_id = c.id
	           GROUP BY c.id, c.name
	           ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []*model.Category
	for rows.Next() {
		c := &model.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.OffersCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// GetByID fetches one category or ErrNotFound.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (*model.Category, error) {
	c := &model.Category{}
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM categories WHERE id = ?", id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// Create inserts a category.  A duplicate name yields ErrConflict.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	res, err := r.db.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", c.Name)
	if err != nil {
		if mysqlCode(err) == errDupEntry {
			return ErrConflict
		}
		return fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	c.ID = uint64(id)
	return nil
}
