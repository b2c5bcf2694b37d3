package model

import "time"

// Offer types.
const (
	OfferTypeBuy   = "buy"
	OfferTypeOffer = "offer"
)

// Offer is a listing published by a single user and classified under one
// or more categories.
type Offer struct {
	ID          uint64      `json:"id"`
	UserID      uint64      `json:"userId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	Sum         uint32      `json:"sum"`
	Picture     string      `json:"picture"`
	Categories  []*Category `json:"categories"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// CategoryIDs returns the ids of the attached categories.
func (o *Offer) CategoryIDs() []uint64 {
	ids := make([]uint64, 0, len(o.Categories))
	for _, c := range o.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}
