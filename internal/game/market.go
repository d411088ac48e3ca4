package game

import (
	"math"
	mathrand "math/rand"
)

// Market holds the per-location, per-product price and stock tables for one
// session, plus the rolling buy-price history used by listing auto-sales.
type Market struct {
	prices  map[Location]map[Product]int
	stock   map[Location]map[Product]int
	history map[Product][]int
}

// NewMarket rolls the opening tables. Initial stock is drawn from narrower
// ranges than the day-roll ones; the two sets are intentionally distinct.
func NewMarket(rng *mathrand.Rand) *Market {
	m := &Market{
		prices:  make(map[Location]map[Product]int),
		stock:   make(map[Location]map[Product]int),
		history: make(map[Product][]int),
	}
	for _, loc := range AllLocations() {
		m.prices[loc] = make(map[Product]int)
		m.stock[loc] = make(map[Product]int)
		for _, p := range Products() {
			price := rollBasePrice(rng, p, 1)
			m.prices[loc][p] = price
			m.stock[loc][p] = rollInitialStock(rng, loc)
			if IsBuyLocation(loc) {
				m.pushHistory(p, price)
			}
		}
	}
	m.enforcePriceGap()
	return m
}

func (m *Market) Price(loc Location, p Product) int { return m.prices[loc][p] }
func (m *Market) Stock(loc Location, p Product) int { return m.stock[loc][p] }

func (m *Market) SetStock(loc Location, p Product, n int) {
	if n < 0 {
		n = 0
	}
	m.stock[loc][p] = n
}

// TakeStock removes one unit at loc. Callers must have checked availability.
func (m *Market) TakeStock(loc Location, p Product) {
	if m.stock[loc][p] > 0 {
		m.stock[loc][p]--
	}
}

// History returns the recorded buy-location prices for p, oldest first.
func (m *Market) History(p Product) []int {
	out := make([]int, len(m.history[p]))
	copy(out, m.history[p])
	return out
}

// RecordPrice appends a buy-location observation to the history ledger.
func (m *Market) RecordPrice(p Product, price int) {
	m.pushHistory(p, price)
}

func (m *Market) pushHistory(p Product, price int) {
	h := append(m.history[p], price)
	if len(h) > HistoryCapacity {
		h = h[len(h)-HistoryCapacity:]
	}
	m.history[p] = h
}

// RecentAverage is the mean of the last n history entries for p, or fallback
// when no history exists.
func (m *Market) RecentAverage(p Product, n int, fallback float64) float64 {
	h := m.history[p]
	if len(h) == 0 {
		return fallback
	}
	if len(h) > n {
		h = h[len(h)-n:]
	}
	sum := 0
	for _, v := range h {
		sum += v
	}
	return float64(sum) / float64(len(h))
}

// RollDay redraws every price and every buy-location stock level for the new
// day, records buy prices into history, then re-establishes the price gap.
// Sell-location stock is never redrawn; selling only consumes inventory.
func (m *Market) RollDay(rng *mathrand.Rand, day int) {
	for _, loc := range AllLocations() {
		for _, p := range Products() {
			price := rollBasePrice(rng, p, day)
			price = applyLocationDrift(rng, loc, price)
			if price < PriceFloor {
				price = PriceFloor
			}
			m.prices[loc][p] = price
			if IsBuyLocation(loc) {
				m.stock[loc][p] = rollDailyStock(rng, loc)
				m.pushHistory(p, price)
			}
		}
	}
	m.enforcePriceGap()
}

// AnyBuyStock reports whether any buy location still has any product in stock.
func (m *Market) AnyBuyStock() bool {
	for _, loc := range BuyLocations() {
		for _, p := range Products() {
			if m.stock[loc][p] > 0 {
				return true
			}
		}
	}
	return false
}

// InStockAt lists products with positive stock at loc, in catalog order.
func (m *Market) InStockAt(loc Location) []Product {
	var out []Product
	for _, p := range Products() {
		if m.stock[loc][p] > 0 {
			out = append(out, p)
		}
	}
	return out
}

// enforcePriceGap clamps every buy price strictly below the cheapest sell
// price for the same product, with the usual floor. History keeps the
// pre-clamp observations.
func (m *Market) enforcePriceGap() {
	for _, p := range Products() {
		minSell := math.MaxInt
		for _, loc := range SellLocations() {
			if m.prices[loc][p] < minSell {
				minSell = m.prices[loc][p]
			}
		}
		for _, loc := range BuyLocations() {
			if m.prices[loc][p] >= minSell {
				clamped := minSell - 1
				if clamped < PriceFloor {
					clamped = PriceFloor
				}
				m.prices[loc][p] = clamped
			}
		}
	}
}

func rollBasePrice(rng *mathrand.Rand, p Product, day int) int {
	early := day <= 15
	switch TierOf(p) {
	case Tier1:
		if early {
			return randRange(rng, 400, 800)
		}
		return randRange(rng, 600, 1200)
	case Tier2:
		if early {
			return randRange(rng, 80, 250)
		}
		return randRange(rng, 150, 300)
	default:
		if early {
			return randRange(rng, 120, 300)
		}
		return randRange(rng, 200, 500)
	}
}

func applyLocationDrift(rng *mathrand.Rand, loc Location, price int) int {
	var mult float64
	switch loc {
	case LocalGameStore:
		mult = 0.95 + rng.Float64()*0.10
	case CostMart:
		mult = 0.85 + rng.Float64()*0.15
	case EcommerceStore:
		mult = 0.75 + rng.Float64()*0.50
	default:
		return price
	}
	return int(math.Round(float64(price) * mult))
}

func rollInitialStock(rng *mathrand.Rand, loc Location) int {
	switch loc {
	case LocalGameStore:
		return randRange(rng, 8, 12)
	case CostMart:
		return randRange(rng, 3, 6)
	case EcommerceStore:
		return randRange(rng, 1, 15)
	default:
		return randRange(rng, 5, 10)
	}
}

func rollDailyStock(rng *mathrand.Rand, loc Location) int {
	switch loc {
	case LocalGameStore:
		return randRange(rng, 10, 15)
	case CostMart:
		return randRange(rng, 1, 4)
	case EcommerceStore:
		return randRange(rng, 0, 14)
	default:
		return randRange(rng, 5, 10)
	}
}

// randRange draws uniformly from [min, max] inclusive.
func randRange(rng *mathrand.Rand, min, max int) int {
	return min + rng.Intn(max-min+1)
}
