package model

// Category labels offers; the relation is many-to-many through
// `offer_categories`.  OffersCount is filled by listings and by the category page.
type Category struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	OffersCount int    `json:"offersCount"`
}
