package service

import (
	"context"
	"time"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/queue"
)

// The store interfaces are satisfied by the MySQL repositories and by the
// in-memory store.  Missing rows are reported as repository.ErrNotFound.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Find(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Delete(ctx context.Context, tokenHash string) (bool, error)
	Rotate(ctx context.Context, oldHash string, userID uint64, newHash string, exp time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type OfferStore interface {
	List(ctx context.Context) ([]*model.Offer, error)
	ListByCategory(ctx context.Context, categoryID uint64) ([]*model.Offer, error)
	Search(ctx context.Context, query string) ([]*model.Offer, error)
	GetByID(ctx context.Context, id uint64) (*model.Offer, error)
	Create(ctx context.Context, o *model.Offer, categoryIDs []uint64) error
	Update(ctx context.Context, o *model.Offer, categoryIDs []uint64) error
	Delete(ctx context.Context, id uint64) error
}

type CategoryStore interface {
	List(ctx context.Context) ([]*model.Category, error)
	GetByID(ctx context.Context, id uint64) (*model.Category, error)
	Create(ctx context.Context, c *model.Category) error
}

type CommentStore interface {
	ListByOffer(ctx context.Context, offerID uint64) ([]*model.Comment, error)
	GetByID(ctx context.Context, id uint64) (*model.Comment, error)
	Create(ctx context.Context, c *model.Comment) error
	Delete(ctx context.Context, id uint64) error
}

// EventPublisher is implemented by queue.Publisher and queue.NopPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}
