package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/queue"
	"github.com/iliyamo/marketplace-api/internal/repository"
)

type CommentService struct {
	store  CommentStore
	events EventPublisher
	log    *zap.Logger
}

func NewCommentService(store CommentStore, events EventPublisher, log *zap.Logger) *CommentService {
	return &CommentService{store: store, events: events, log: log.Named("comments")}
}

// FindAll returns the comments of offerID, oldest first.
func (s *CommentService) FindAll(ctx context.Context, offerID uint64) ([]*model.Comment, error) {
	comments, err := s.store.ListByOffer(ctx, offerID)
	if err != nil {
		return nil, persistErr(s.log, "list comments", err)
	}
	return nonNil(comments), nil
}

// FindOne returns comment commentID if it belongs to offerID.
func (s *CommentService) FindOne(ctx context.Context, offerID, commentID uint64) (*model.Comment, error) {
	c, err := s.store.GetByID(ctx, commentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistErr(s.log, "get comment", err)
	}
	if c.OfferID != offerID {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *CommentService) Create(ctx context.Context, offerID, userID uint64, text string) (*model.Comment, error) {
	c := &model.Comment{OfferID: offerID, UserID: userID, Text: text}
	if err := s.store.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, ErrNotFound
		}
		return nil, persistErr(s.log, "create comment", err)
	}
	publishAsync(ctx, s.events, s.log, queue.CommentCreatedEvent{
		CommentID: c.ID,
		OfferID:   c.OfferID,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
	})
	return c, nil
}

// Delete removes commentID and returns the removed comment.
func (s *CommentService) Delete(ctx context.Context, commentID uint64) (*model.Comment, error) {
	c, err := s.store.GetByID(ctx, commentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistErr(s.log, "get comment", err)
	}
	if err := s.store.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistErr(s.log, "delete comment", err)
	}
	return c, nil
}
