package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/repository"
)

type CategoryService struct {
	store CategoryStore
	log   *zap.Logger
}

func NewCategoryService(store CategoryStore, log *zap.Logger) *CategoryService {
	return &CategoryService{store: store, log: log.Named("categories")}
}

// FindAll lists categories with the number of offers in each.
func (s *CategoryService) FindAll(ctx context.Context) ([]*model.Category, error) {
	cats, err := s.store.List(ctx)
	if err != nil {
		return nil, persistErr(s.log, "list categories", err)
	}
	return nonNil(cats), nil
}

func (s *CategoryService) FindOne(ctx context.Context, id uint64) (*model.Category, error) {
	c, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistErr(s.log, "get category", err)
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	c := &model.Category{Name: name}
	if err := s.store.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, persistErr(s.log, "create category", err)
	}
	return c, nil
}
