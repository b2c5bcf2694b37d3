package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/utils"
)

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService issues, rotates and revokes tokens.  Access tokens are
// stateless JWTs; refresh tokens are opaque single-use values.
type AuthService struct {
	users      UserStore
	tokens     *RefreshTokenService
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *zap.Logger
	now        func() time.Time
}

func NewAuthService(users UserStore, tokens *RefreshTokenService, secret string, accessTTL, refreshTTL time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log.Named("auth"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Login checks credentials and issues a fresh pair.  Unknown email and wrong
// password both yield ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return TokenPair{}, ErrUnauthorized
	}
	if err != nil {
		return TokenPair{}, persistErr(s.log, "load user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return TokenPair{}, ErrUnauthorized
	}

	pair, refresh, err := s.issue(u.ID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.tokens.Add(ctx, u.ID, pair.RefreshToken, refresh.Exp); err != nil {
		return TokenPair{}, err
	}
	s.log.Info("user logged in", zap.Uint64("user_id", u.ID))
	return pair, nil
}

// Refresh redeems token once and returns a new pair.  ErrNotFound covers
// unknown, already redeemed and expired tokens.
func (s *AuthService) Refresh(ctx context.Context, token string) (TokenPair, error) {
	stored, err := s.tokens.FindByValue(ctx, token)
	if err != nil {
		return TokenPair{}, err
	}
	if stored.Expired(s.now()) {
		if _, err := s.tokens.Delete(ctx, token); err != nil {
			return TokenPair{}, err
		}
		return TokenPair{}, ErrNotFound
	}

	pair, refresh, err := s.issue(stored.UserID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.tokens.Rotate(ctx, token, stored.UserID, pair.RefreshToken, refresh.Exp); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// Logout requires a valid access token and forgets refreshToken.  A token
// that is not stored is not an error.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if _, err := s.Authorize(accessToken); err != nil {
		return err
	}
	_, err := s.tokens.Delete(ctx, refreshToken)
	return err
}

// Authorize verifies an access token and returns its user id.
func (s *AuthService) Authorize(accessToken string) (uint64, error) {
	id, err := utils.ParseAccessToken(s.secret, accessToken)
	if err != nil {
		return 0, ErrForbidden
	}
	return id, nil
}

func (s *AuthService) issue(userID uint64) (TokenPair, utils.RefreshToken, error) {
	access, err := utils.NewAccessToken(s.secret, userID, s.accessTTL)
	if err != nil {
		s.log.Error("sign access token", zap.Error(err))
		return TokenPair{}, utils.RefreshToken{}, err
	}
	refresh, err := utils.NewRefreshToken(s.refreshTTL)
	if err != nil {
		s.log.Error("generate refresh token", zap.Error(err))
		return TokenPair{}, utils.RefreshToken{}, err
	}
	return TokenPair{AccessToken: access.Token, RefreshToken: refresh.Raw}, refresh, nil
}
