package game

import (
	mathrand "math/rand"
)

// Listing is a player-created sell offer on the online marketplace.
type Listing struct {
	Product    Product `json:"product"`
	Price      int     `json:"price"`
	Quantity   int     `json:"quantity"`
	DaysListed int     `json:"days_listed"`
}

// ListingBook holds the session's active listings in creation order.
type ListingBook struct {
	listings []Listing
}

func (b *ListingBook) Add(l Listing) {
	b.listings = append(b.listings, l)
}

// Remove takes the listing at index out of the book and returns it.
func (b *ListingBook) Remove(index int) (Listing, error) {
	if index < 0 || index >= len(b.listings) {
		return Listing{}, ErrListingNotFound
	}
	l := b.listings[index]
	b.listings = append(b.listings[:index], b.listings[index+1:]...)
	return l, nil
}

// All returns a copy of the active listings.
func (b *ListingBook) All() []Listing {
	out := make([]Listing, len(b.listings))
	copy(out, b.listings)
	return out
}

func (b *ListingBook) Len() int { return len(b.listings) }

// SettleDaily runs the once-per-day auto-sale pass, iterating in reverse so
// removals are safe. A listing sells when its price is within three times
// the product's recent buy-price average and a 25% draw succeeds. Unsold
// listings age by one day; those listed five or more days are returned as
// stale so the caller can nag the player.
func (b *ListingBook) SettleDaily(rng *mathrand.Rand, m *Market) (sold, stale []Listing, proceeds int) {
	for i := len(b.listings) - 1; i >= 0; i-- {
		l := b.listings[i]
		avg := m.RecentAverage(l.Product, 3, float64(l.Price))
		if float64(l.Price) <= avg*ListingPriceCeiling && rng.Float64() < ListingSaleChance {
			proceeds += l.Price * l.Quantity
			sold = append(sold, l)
			b.listings = append(b.listings[:i], b.listings[i+1:]...)
			continue
		}
		b.listings[i].DaysListed++
		if b.listings[i].DaysListed >= ListingStaleAfterDays {
			stale = append(stale, b.listings[i])
		}
	}
	return sold, stale, proceeds
}
