package model

import "time"

// Comment belongs to exactly one offer and one user.  It is removed on its
// own or together with its offer.
type Comment struct {
	ID        uint64    `json:"id"`
	OfferID   uint64    `json:"offerId"`
	UserID    uint64    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
