package game

import (
	mathrand "math/rand"
	"testing"
)

func TestRumorScheduleWindowsAndUniqueness(t *testing.T) {
	windows := map[RumorCategory][2]int{
		RumorLowStock:  {2, 15},
		RumorOverprint: {10, 20},
		RumorNoReprint: {15, 25},
	}
	for seed := int64(0); seed < 50; seed++ {
		e := NewRumorEngine(mathrand.New(mathrand.NewSource(seed)))
		schedule := e.Schedule()
		if len(schedule) != 9 {
			t.Fatalf("seed %d: expected 9 scheduled rumors, got %d", seed, len(schedule))
		}
		seen := make(map[int]bool)
		perCategory := make(map[RumorCategory]int)
		for _, r := range schedule {
			if seen[r.Day] {
				t.Fatalf("seed %d: duplicate schedule day %d", seed, r.Day)
			}
			seen[r.Day] = true
			w := windows[r.Category]
			if r.Day < w[0] || r.Day > w[1] {
				t.Fatalf("seed %d: %s scheduled on day %d outside [%d,%d]", seed, r.Category, r.Day, w[0], w[1])
			}
			perCategory[r.Category]++
		}
		for cat, n := range perCategory {
			if n != 3 {
				t.Fatalf("seed %d: category %s scheduled %d times, want 3", seed, cat, n)
			}
		}
	}
}

func TestRevealQueuesEffectForNextDay(t *testing.T) {
	e := NewRumorEngine(mathrand.New(mathrand.NewSource(1)))
	r := e.Schedule()[0]

	text := e.Reveal(r.Day)
	if text == NoNewsText {
		t.Fatalf("expected a rumor on scheduled day %d", r.Day)
	}
	if len(e.pending) != 1 {
		t.Fatalf("expected 1 pending effect, got %d", len(e.pending))
	}
	if e.pending[0].ApplyDay != r.Day+1 {
		t.Fatalf("apply day %d, want %d", e.pending[0].ApplyDay, r.Day+1)
	}

	// A day with nothing scheduled yields the no-news line and no effect.
	if got := e.Reveal(1); got != NoNewsText {
		t.Fatalf("expected no news on day 1, got %q", got)
	}
	if len(e.pending) != 1 {
		t.Fatalf("no-news reveal must not queue effects")
	}
}

func TestCategoryEffectFiresAtMostOnce(t *testing.T) {
	rng := mathrand.New(mathrand.NewSource(2))
	m := NewMarket(rng)
	e := NewRumorEngine(rng)

	for _, loc := range BuyLocations() {
		m.SetStock(loc, BaseSet, 10)
		m.SetStock(loc, DarkFlames, 10)
	}

	e.pending = []PendingRumorEffect{
		{Category: RumorLowStock, Product: BaseSet, ApplyDay: 5},
		{Category: RumorLowStock, Product: DarkFlames, ApplyDay: 5},
	}
	impacts := e.ApplyDue(5, m)
	if len(impacts) != 1 {
		t.Fatalf("expected exactly one impact, got %d", len(impacts))
	}
	if !e.Used(RumorLowStock) {
		t.Fatalf("category should be marked used")
	}
	for _, loc := range BuyLocations() {
		if got := m.Stock(loc, BaseSet); got != 5 {
			t.Fatalf("stock at %s after lowStock: got %d want 5", loc, got)
		}
		if got := m.Stock(loc, DarkFlames); got != 10 {
			t.Fatalf("second same-category effect must not fire; stock at %s is %d", loc, got)
		}
	}
	if len(e.pending) != 0 {
		t.Fatalf("due effects should be consumed, %d remain", len(e.pending))
	}

	// A later pending entry for the used category is dropped without effect.
	e.pending = []PendingRumorEffect{{Category: RumorLowStock, Product: BaseSet, ApplyDay: 9}}
	if impacts := e.ApplyDue(9, m); len(impacts) != 0 {
		t.Fatalf("used category fired again")
	}
}

func TestShockMath(t *testing.T) {
	rng := mathrand.New(mathrand.NewSource(4))
	m := NewMarket(rng)
	for _, loc := range BuyLocations() {
		m.prices[loc][MasksOfDawn] = 100
		m.SetStock(loc, MasksOfDawn, 10)
	}

	applyShock(PendingRumorEffect{Category: RumorNoReprint, Product: MasksOfDawn}, m)
	for _, loc := range BuyLocations() {
		if p := m.Price(loc, MasksOfDawn); p != 400 {
			t.Fatalf("noReprint price at %s: got %d want 400", loc, p)
		}
		if s := m.Stock(loc, MasksOfDawn); s != 3 {
			t.Fatalf("noReprint stock at %s: got %d want 3", loc, s)
		}
	}

	applyShock(PendingRumorEffect{Category: RumorOverprint, Product: MasksOfDawn}, m)
	for _, loc := range BuyLocations() {
		if p := m.Price(loc, MasksOfDawn); p != 240 {
			t.Fatalf("overprint price at %s: got %d want 240", loc, p)
		}
		if s := m.Stock(loc, MasksOfDawn); s != 12 {
			t.Fatalf("overprint stock at %s: got %d want 12", loc, s)
		}
	}
}
