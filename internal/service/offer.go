package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/queue"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/validation"
)

type OfferService struct {
	store  OfferStore
	events EventPublisher
	log    *zap.Logger
}

func NewOfferService(store OfferStore, events EventPublisher, log *zap.Logger) *OfferService {
	return &OfferService{store: store, events: events, log: log.Named("offers")}
}

func (s *OfferService) FindAll(ctx context.Context) ([]*model.Offer, error) {
	offers, err := s.store.List(ctx)
	if err != nil {
		return nil, persistErr(s.log, "list offers", err)
	}
	return nonNil(offers), nil
}

func (s *OfferService) FindOne(ctx context.Context, id uint64) (*model.Offer, error) {
	o, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistErr(s.log, "get offer", err)
	}
	return o, nil
}

func (s *OfferService) FindByCategory(ctx context.Context, categoryID uint64) ([]*model.Offer, error) {
	offers, err := s.store.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, persistErr(s.log, "list offers by category", err)
	}
	return nonNil(offers), nil
}

// Search matches query against offer titles.
func (s *OfferService) Search(ctx context.Context, query string) ([]*model.Offer, error) {
	offers, err := s.store.Search(ctx, query)
	if err != nil {
		return nil, persistErr(s.log, "search offers", err)
	}
	return nonNil(offers), nil
}

// Create publishes a new offer owned by userID.
func (s *OfferService) Create(ctx context.Context, userID uint64, in validation.OfferInput) (*model.Offer, error) {
	o := fromInput(in)
	o.UserID = userID
	if err := s.store.Create(ctx, o, in.Categories); err != nil {
		return nil, s.writeErr("create offer", err)
	}
	s.log.Info("offer created", zap.Uint64("offer_id", o.ID), zap.Uint64("user_id", userID))
	publishAsync(ctx, s.events, s.log, queue.OfferCreatedEvent{
		OfferID:     o.ID,
		UserID:      o.UserID,
		Title:       o.Title,
		Type:        o.Type,
		Sum:         o.Sum,
		CategoryIDs: o.CategoryIDs(),
		CreatedAt:   o.CreatedAt,
	})
	return o, nil
}

// Update replaces the editable fields of offer id.
func (s *OfferService) Update(ctx context.Context, id uint64, in validation.OfferInput) (*model.Offer, error) {
	o := fromInput(in)
	o.ID = id
	if err := s.store.Update(ctx, o, in.Categories); err != nil {
		return nil, s.writeErr("update offer", err)
	}
	return o, nil
}

// Delete removes the offer with its comments and returns what was removed.
func (s *OfferService) Delete(ctx context.Context, id uint64) (*model.Offer, error) {
	o, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistErr(s.log, "delete offer", err)
	}
	s.log.Info("offer deleted", zap.Uint64("offer_id", id))
	return o, nil
}

func (s *OfferService) writeErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInvalidReference):
		return validation.Field("categories", "contains an unknown category")
	}
	return persistErr(s.log, op, err)
}

func fromInput(in validation.OfferInput) *model.Offer {
	return &model.Offer{
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Sum:         in.Sum,
		Picture:     in.Picture,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
