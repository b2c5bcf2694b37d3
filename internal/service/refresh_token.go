package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/utils"
)

// RefreshTokenService stores refresh token values by their SHA-256 hash.
// Callers pass raw values; hashing happens here.
type RefreshTokenService struct {
	store TokenStore
	log   *zap.Logger
}

func NewRefreshTokenService(store TokenStore, log *zap.Logger) *RefreshTokenService {
	return &RefreshTokenService{store: store, log: log.Named("refresh-tokens")}
}

// Add persists value for userID until exp.
func (s *RefreshTokenService) Add(ctx context.Context, userID uint64, value string, exp time.Time) error {
	if err := s.store.Store(ctx, userID, utils.HashRefreshRaw(value), exp); err != nil {
		return persistErr(s.log, "store refresh token", err)
	}
	return nil
}

// FindByValue returns the stored row or ErrNotFound.
func (s *RefreshTokenService) FindByValue(ctx context.Context, value string) (*model.RefreshToken, error) {
	t, err := s.store.Find(ctx, utils.HashRefreshRaw(value))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistErr(s.log, "find refresh token", err)
	}
	return t, nil
}

// Delete removes value and reports whether it was stored.
func (s *RefreshTokenService) Delete(ctx context.Context, value string) (bool, error) {
	ok, err := s.store.Delete(ctx, utils.HashRefreshRaw(value))
	if err != nil {
		return false, persistErr(s.log, "delete refresh token", err)
	}
	return ok, nil
}

// Rotate atomically replaces oldValue with newValue.  ErrNotFound means
// oldValue was already redeemed, possibly by a concurrent request.
func (s *RefreshTokenService) Rotate(ctx context.Context, oldValue string, userID uint64, newValue string, exp time.Time) error {
	err := s.store.Rotate(ctx, utils.HashRefreshRaw(oldValue), userID, utils.HashRefreshRaw(newValue), exp)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return persistErr(s.log, "rotate refresh token", err)
	}
	return nil
}

// PurgeExpired deletes every token whose expiry is not after now.
func (s *RefreshTokenService) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.store.DeleteExpired(ctx, now)
	if err != nil {
		return 0, persistErr(s.log, "purge refresh tokens", err)
	}
	return n, nil
}

// RunJanitor purges expired tokens every interval until ctx is cancelled.
func (s *RefreshTokenService) RunJanitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n, err := s.PurgeExpired(ctx, now.UTC()); err == nil && n > 0 {
				s.log.Info("purged expired refresh tokens", zap.Int64("count", n))
			}
		}
	}
}
