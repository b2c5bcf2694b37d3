// Package service holds the business rules.  Services receive their stores
// through constructors and translate store failures into the sentinels
// below; the HTTP layer maps each sentinel to one status code.
package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrUnauthorized means the credentials did not match a user.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the access token is invalid or the caller may not
	// touch the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the resource or refresh token does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailExists is returned by registration for a taken email.
	ErrEmailExists = errors.New("user with this email already exists")
	// ErrConflict is returned when a unique name is already used.
	ErrConflict = errors.New("already exists")
	// ErrPersistence hides store failures from clients.  The cause is
	// logged where it happens.
	ErrPersistence = errors.New("storage failure")
)

// persistErr logs err and returns ErrPersistence wrapped with op.
func persistErr(log *zap.Logger, op string, err error) error {
	log.Error(op+" failed", zap.Error(err))
	return fmt.Errorf("%s: %w", op, ErrPersistence)
}
