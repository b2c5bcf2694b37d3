package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/queue"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/utils"
	"github.com/iliyamo/marketplace-api/internal/validation"
)

type UserService struct {
	store      UserStore
	events     EventPublisher
	bcryptCost int
	log        *zap.Logger
}

func NewUserService(store UserStore, events EventPublisher, bcryptCost int, log *zap.Logger) *UserService {
	return &UserService{store: store, events: events, bcryptCost: bcryptCost, log: log.Named("users")}
}

// Register hashes the password and creates the user.  The returned user
// carries the hash, never the plaintext.
func (s *UserService) Register(ctx context.Context, in validation.RegisterInput) (*model.User, error) {
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, validation.Field("password", fmt.Sprintf("must be at most %d bytes long", validation.MaxPasswordBytes))
	}
	if err != nil {
		s.log.Error("hash password", zap.Error(err))
		return nil, err
	}
	u := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Avatar:       in.Avatar,
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, persistErr(s.log, "create user", err)
	}
	s.log.Info("user registered", zap.Uint64("user_id", u.ID))
	publishAsync(ctx, s.events, s.log, queue.UserRegisteredEvent{
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		RegisteredAt: u.CreatedAt,
	})
	return u, nil
}

// FindAll lists users without their password hashes.
func (s *UserService) FindAll(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, persistErr(s.log, "list users", err)
	}
	out := make([]*model.User, 0, len(users))
	for _, u := range users {
		u.PasswordHash = ""
		out = append(out, u)
	}
	return out, nil
}

// FindOne returns the user without the password hash.
func (s *UserService) FindOne(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistErr(s.log, "get user", err)
	}
	u.PasswordHash = ""
	return u, nil
}
