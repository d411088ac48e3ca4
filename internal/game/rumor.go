package game

import (
	"fmt"
	mathrand "math/rand"
)

// RumorCategory is one of the three scripted market-shock types.
type RumorCategory string

const (
	RumorLowStock  RumorCategory = "lowStock"
	RumorNoReprint RumorCategory = "noReprint"
	RumorOverprint RumorCategory = "overprint"
)

const NoNewsText = "No news today..."

// ScheduledRumor pins a category/product pair to a specific day. The
// schedule is generated once at session start and never mutated.
type ScheduledRumor struct {
	Day      int           `json:"day"`
	Category RumorCategory `json:"category"`
	Product  Product       `json:"product"`
}

// PendingRumorEffect is a revealed rumor waiting for its apply day.
type PendingRumorEffect struct {
	Category RumorCategory `json:"category"`
	Product  Product       `json:"product"`
	ApplyDay int           `json:"apply_day"`
}

// RumorEngine reveals one scheduled rumor per day and applies each
// category's market shock at most once per session.
type RumorEngine struct {
	schedule []ScheduledRumor
	pending  []PendingRumorEffect
	used     map[RumorCategory]bool
	current  string
}

// NewRumorEngine draws the full session schedule: three products per
// category, each on a day unique across the whole schedule. Category
// windows overlap, so collisions are resolved by redrawing.
func NewRumorEngine(rng *mathrand.Rand) *RumorEngine {
	e := &RumorEngine{
		used:    make(map[RumorCategory]bool),
		current: "None yet...",
	}
	e.scheduleCategory(rng, RumorLowStock, 2, 15)
	e.scheduleCategory(rng, RumorOverprint, 10, 20)
	e.scheduleCategory(rng, RumorNoReprint, 15, 25)
	return e
}

func (e *RumorEngine) scheduleCategory(rng *mathrand.Rand, cat RumorCategory, firstDay, lastDay int) {
	picks := Products()
	rng.Shuffle(len(picks), func(i, j int) { picks[i], picks[j] = picks[j], picks[i] })
	for _, p := range picks[:3] {
		day := randRange(rng, firstDay, lastDay)
		for e.dayTaken(day) {
			day = randRange(rng, firstDay, lastDay)
		}
		e.schedule = append(e.schedule, ScheduledRumor{Day: day, Category: cat, Product: p})
	}
}

func (e *RumorEngine) dayTaken(day int) bool {
	for _, r := range e.schedule {
		if r.Day == day {
			return true
		}
	}
	return false
}

// Current returns today's flavor text.
func (e *RumorEngine) Current() string { return e.current }

// Schedule returns a copy of the immutable session schedule.
func (e *RumorEngine) Schedule() []ScheduledRumor {
	out := make([]ScheduledRumor, len(e.schedule))
	copy(out, e.schedule)
	return out
}

// Used reports whether a category has already fired its market shock.
func (e *RumorEngine) Used(cat RumorCategory) bool { return e.used[cat] }

// Reveal publishes the rumor scheduled for day, if any, and queues its
// market effect for the following day. The returned text is today's flavor
// line, falling back to the no-news line.
func (e *RumorEngine) Reveal(day int) string {
	for _, r := range e.schedule {
		if r.Day != day {
			continue
		}
		switch r.Category {
		case RumorLowStock:
			e.current = fmt.Sprintf("%s could be low in stock at distributors...", r.Product)
		case RumorNoReprint:
			e.current = fmt.Sprintf("Rumor is the TCG Company is not printing anymore %s...", r.Product)
		case RumorOverprint:
			e.current = fmt.Sprintf("I heard that a ton of %s is being reprinted...", r.Product)
		}
		e.pending = append(e.pending, PendingRumorEffect{
			Category: r.Category,
			Product:  r.Product,
			ApplyDay: day + 1,
		})
		return e.current
	}
	e.current = NoNewsText
	return e.current
}

// RumorImpact describes an applied market shock for notification purposes.
type RumorImpact struct {
	Category RumorCategory
	Product  Product
	Message  string
	Severity Severity
}

// ApplyDue processes every pending effect whose apply day is day. Each
// category mutates the buy-location market at most once per session; later
// pending entries for a used category are dropped without effect.
func (e *RumorEngine) ApplyDue(day int, m *Market) []RumorImpact {
	var impacts []RumorImpact
	remaining := e.pending[:0]
	for _, eff := range e.pending {
		if eff.ApplyDay != day {
			remaining = append(remaining, eff)
			continue
		}
		if e.used[eff.Category] {
			continue
		}
		e.used[eff.Category] = true
		impacts = append(impacts, applyShock(eff, m))
	}
	e.pending = remaining
	return impacts
}

func applyShock(eff PendingRumorEffect, m *Market) RumorImpact {
	switch eff.Category {
	case RumorLowStock:
		for _, loc := range BuyLocations() {
			m.SetStock(loc, eff.Product, m.Stock(loc, eff.Product)-5)
		}
		return RumorImpact{
			Category: eff.Category,
			Product:  eff.Product,
			Message:  fmt.Sprintf("The rumors about %s being low in stock appear to be true! Stock levels have dropped.", eff.Product),
			Severity: SeverityWarning,
		}
	case RumorNoReprint:
		for _, loc := range BuyLocations() {
			m.prices[loc][eff.Product] = m.prices[loc][eff.Product] * 4
			m.SetStock(loc, eff.Product, int(float64(m.Stock(loc, eff.Product))*0.3))
		}
		return RumorImpact{
			Category: eff.Category,
			Product:  eff.Product,
			Message:  fmt.Sprintf("It's confirmed! %s will not be reprinted. Prices have spiked dramatically!", eff.Product),
			Severity: SeverityWarning,
		}
	default:
		for _, loc := range BuyLocations() {
			m.SetStock(loc, eff.Product, m.Stock(loc, eff.Product)*4)
			price := int(float64(m.prices[loc][eff.Product]) * 0.6)
			if price < PriceFloor {
				price = PriceFloor
			}
			m.prices[loc][eff.Product] = price
		}
		return RumorImpact{
			Category: eff.Category,
			Product:  eff.Product,
			Message:  fmt.Sprintf("A massive reprint of %s has arrived! Prices have dropped and stock is plentiful.", eff.Product),
			Severity: SeverityInfo,
		}
	}
}
