package model

import "time"

// Property models a row in the `properties` table. The portal's catalog is
// read-mostly; the available listing is served through the cache-aside
// layer and every mutation invalidates it.
//
// Fields:
//
//	ID         - primary key identifier.
//	Title      - listing title.
//	City       - city the property is located in.
//	PriceCents - asking price in cents.
//	Available  - whether the listing is open to investors.
//	CreatedAt  - timestamp of creation.
type Property struct {
	ID         uint64    `json:"id"`          // properties.id
	Title      string    `json:"title"`       // properties.title
	City       string    `json:"city"`        // properties.city
	PriceCents uint64    `json:"price_cents"` // properties.price_cents
	Available  bool      `json:"available"`   // properties.available
	CreatedAt  time.Time `json:"created_at"`  // properties.created_at
}
