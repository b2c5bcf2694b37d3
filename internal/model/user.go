package model

import "time"

// User represents a row of the `users` table.  The password field carries
// the bcrypt hash, never the plaintext submitted at registration.
type User struct {
	ID           uint64    `json:"id"`                 // users.id
	Name         string    `json:"name"`               // users.name
	Email        string    `json:"email"`              // users.email (unique, lower-cased)
	PasswordHash string    `json:"password,omitempty"` // users.password_hash
	Avatar       string    `json:"avatar"`             // users.avatar (file name)
	CreatedAt    time.Time `json:"createdAt"`          // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is not stored; only its SHA-256 hash.  A row exists for exactly as
// long as the token may be redeemed once.
//
// Fields:
//
//	ID        - primary key identifier.
//	UserID    - owner of the token.
//	TokenHash - SHA-256 hex digest of the token value.
//	ExpiresAt - expiration timestamp of the token.
//	CreatedAt - timestamp of creation.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token can no longer be redeemed at now.
func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
