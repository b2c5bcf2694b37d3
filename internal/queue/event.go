// Package queue defines message payloads exchanged over the message broker
// and the publisher and consumer that move them.
package queue

import "time"

// Queue names.  Each event type travels on its own durable queue.
const (
	QueueUserRegistered = "user.registered"
	QueueOfferCreated   = "offer.created"
	QueueCommentCreated = "comment.created"
)

// Event is anything the Publisher can send.
type Event interface {
	Queue() string
}

// UserRegisteredEvent is published after a successful registration.  The
// password hash is never included.
type UserRegisteredEvent struct {
	UserID       uint64    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

func (UserRegisteredEvent) Queue() string { return QueueUserRegistered }

// OfferCreatedEvent is published when a user posts a new offer.
type OfferCreatedEvent struct {
	OfferID     uint64    `json:"offer_id"`
	UserID      uint64    `json:"user_id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Sum         uint32    `json:"sum"`
	CategoryIDs []uint64  `json:"category_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

func (OfferCreatedEvent) Queue() string { return QueueOfferCreated }

// CommentCreatedEvent is published when a comment is added to an offer.
type CommentCreatedEvent struct {
	CommentID uint64    `json:"comment_id"`
	OfferID   uint64    `json:"offer_id"`
	UserID    uint64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (CommentCreatedEvent) Queue() string { return QueueCommentCreated }
