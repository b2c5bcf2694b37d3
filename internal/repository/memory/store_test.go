package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/repository"
)

func seed(t *testing.T) (*Store, *model.User, *model.Offer) {
	t.Helper()
	ctx := context.Background()
	s := New()
	u := &model.User{Name: "James Bond", Email: "jamesBond@mail.com", PasswordHash: "h", Avatar: "a.png"}
	require.NoError(t, s.Users().Create(ctx, u))
	cat := &model.Category{Name: "Books"}
	require.NoError(t, s.Categories().Create(ctx, cat))
	o := &model.Offer{UserID: u.ID, Title: "Selling old books", Type: model.OfferTypeOffer, Sum: 500}
	require.NoError(t, s.Offers().Create(ctx, o, []uint64{cat.ID, cat.ID}))
	return s, u, o
}

func TestUsers_UniqueEmail(t *testing.T) {
	s, _, _ := seed(t)
	err := s.Users().Create(context.Background(), &model.User{Email: "JAMESBOND@mail.com"})
	assert.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestOffers_CreateDedupesCategories(t *testing.T) {
	_, _, o := seed(t)
	assert.Len(t, o.Categories, 1)
}

func TestOffers_UnknownCategory(t *testing.T) {
	s, u, _ := seed(t)
	err := s.Offers().Create(context.Background(), &model.Offer{UserID: u.ID}, []uint64{42})
	assert.ErrorIs(t, err, repository.ErrInvalidReference)
}

func TestOffers_DeleteCascadesComments(t *testing.T) {
	s, u, o := seed(t)
	ctx := context.Background()
	c := &model.Comment{OfferID: o.ID, UserID: u.ID, Text: "still available?"}
	require.NoError(t, s.Comments().Create(ctx, c))

	require.NoError(t, s.Offers().Delete(ctx, o.ID))

	_, err := s.Comments().GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	cats, err := s.Categories().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, cats[0].OffersCount)
}

func TestTokens_RotateIsSingleUse(t *testing.T) {
	s, u, _ := seed(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)
	require.NoError(t, s.Tokens().Store(ctx, u.ID, "old", exp))

	require.NoError(t, s.Tokens().Rotate(ctx, "old", u.ID, "new", exp))
	assert.ErrorIs(t, s.Tokens().Rotate(ctx, "old", u.ID, "newer", exp), repository.ErrNotFound)

	_, err := s.Tokens().Find(ctx, "new")
	assert.NoError(t, err)
	_, err = s.Tokens().Find(ctx, "newer")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTokens_DeleteExpired(t *testing.T) {
	s, u, _ := seed(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.Tokens().Store(ctx, u.ID, "stale", now.Add(-time.Minute)))
	require.NoError(t, s.Tokens().Store(ctx, u.ID, "fresh", now.Add(time.Hour)))

	n, err := s.Tokens().DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOffers_Search(t *testing.T) {
	s, _, _ := seed(t)
	out, err := s.Offers().Search(context.Background(), "OLD")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
