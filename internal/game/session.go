package game

import (
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"strings"
	"sync"
)

// Session is one player's game. All state lives here; nothing is shared
// between sessions and there are no package-level singletons. Methods are
// safe for concurrent use; every trigger (player action, day advance,
// countdown tick) runs to completion under the session lock.
type Session struct {
	mu   sync.Mutex
	rng  *mathrand.Rand
	log  *slog.Logger
	sink Notifier

	day         int
	money       int
	location    Location
	destination Location
	inventory   map[Product]int
	market      *Market
	deliveries  DeliveryQueue
	listings    ListingBook
	rumors      *RumorEngine
	countdown   SelloutCountdown

	// soldOutNotified tracks (product, location) pairs already announced as
	// sold out on a day roll, so the player is only nagged once per pair.
	soldOutNotified map[Product]map[Location]bool

	totalBought int
	totalSold   int
	over        bool
}

// NewSession starts a fresh game. The seed drives every random draw in the
// session, so a fixed seed replays identically.
func NewSession(logger *slog.Logger, sink Notifier, seed int64) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = NopNotifier{}
	}
	s := &Session{
		rng:  mathrand.New(mathrand.NewSource(seed)),
		log:  logger,
		sink: sink,
	}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.day = 1
	s.money = StartingMoney
	s.location = LocalGameStore
	s.destination = ""
	s.inventory = make(map[Product]int)
	for _, p := range Products() {
		s.inventory[p] = 0
	}
	s.market = NewMarket(s.rng)
	s.deliveries = DeliveryQueue{}
	s.listings = ListingBook{}
	s.rumors = NewRumorEngine(s.rng)
	s.soldOutNotified = make(map[Product]map[Location]bool)
	for _, p := range Products() {
		s.soldOutNotified[p] = make(map[Location]bool)
	}
	s.totalBought = 0
	s.totalSold = 0
	s.over = false
	s.countdown.Restart()
	s.sink.Modal("Welcome to the game!", s.stockDigestLocked("Here is the initial stock:"))
	s.log.Info("session started", "money", s.money, "location", string(s.location))
}

// Restart throws away the current game and begins a new one with the same
// random stream. Allowed at any time, including mid-game.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Travel records the destination to move to when the day next advances.
// Location changes only take effect on a day roll.
func (s *Session) Travel(loc Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.over {
		return ErrGameOver
	}
	if !ValidLocation(loc) {
		return ErrUnknownLocation
	}
	s.destination = loc
	return nil
}

// Buy purchases one unit of p at the current location. At the online store
// the unit ships instead of landing in inventory: a delivery arrives three
// days later.
func (s *Session) Buy(p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.over {
		return ErrGameOver
	}
	if !ValidProduct(p) {
		return ErrUnknownProduct
	}
	if !IsBuyLocation(s.location) {
		return ErrNotBuyLocation
	}
	price := s.market.Price(s.location, p)
	if s.market.Stock(s.location, p) <= 0 {
		return ErrOutOfStock
	}
	if s.money < price {
		return ErrInsufficientFunds
	}
	s.money -= price
	s.market.TakeStock(s.location, p)
	s.totalBought++
	if s.location == EcommerceStore {
		s.deliveries.Enqueue(p, 1, s.day+DeliveryLeadDays)
		s.sink.Notify(fmt.Sprintf("Bought %s for $%d. Will be delivered in %d days.", p, price, DeliveryLeadDays), SeveritySuccess)
	} else {
		s.inventory[p]++
		s.sink.Notify(fmt.Sprintf("Bought %s for $%d", p, price), SeveritySuccess)
	}
	s.market.RecordPrice(p, price)
	s.log.Info("buy", "product", string(p), "price", price, "location", string(s.location), "money", s.money)
	return nil
}

// Sell converts one unit of inventory into money at the current location's
// price. Only sell locations buy from the player.
func (s *Session) Sell(p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.over {
		return ErrGameOver
	}
	if !ValidProduct(p) {
		return ErrUnknownProduct
	}
	if !IsSellLocation(s.location) {
		return ErrNotSellLocation
	}
	if s.inventory[p] <= 0 {
		return ErrInsufficientInventory
	}
	price := s.market.Price(s.location, p)
	s.money += price
	s.inventory[p]--
	s.totalSold++
	s.sink.Notify(fmt.Sprintf("Sold %s for $%d", p, price), SeveritySuccess)
	s.log.Info("sell", "product", string(p), "price", price, "location", string(s.location), "money", s.money)
	return nil
}

// CreateListing moves quantity units of p from inventory into an online
// listing at the given asking price. The listing may auto-sell on a later
// day roll or be withdrawn at any time.
func (s *Session) CreateListing(p Product, price, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.over {
		return ErrGameOver
	}
	if !ValidProduct(p) {
		return ErrUnknownProduct
	}
	if price <= 0 || quantity <= 0 {
		return ErrInvalidListing
	}
	if s.inventory[p] < quantity {
		return ErrInsufficientInventory
	}
	s.inventory[p] -= quantity
	s.listings.Add(Listing{Product: p, Price: price, Quantity: quantity})
	s.sink.Notify(fmt.Sprintf("Created listing for %dx %s at $%d", quantity, p, price), SeveritySuccess)
	return nil
}

// WithdrawListing removes the listing at index and restores its quantity to
// inventory. Available at any time, not just on a day roll.
func (s *Session) WithdrawListing(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.over {
		return ErrGameOver
	}
	l, err := s.listings.Remove(index)
	if err != nil {
		return err
	}
	s.inventory[l.Product] += l.Quantity
	s.sink.Notify(fmt.Sprintf("Returned %dx %s to inventory", l.Quantity, l.Product), SeverityInfo)
	return nil
}

// TickSellout consumes one countdown tick. On expiry it zeroes one or two
// random in-stock products per buy location, then either re-arms the
// countdown (stock remains somewhere) or stops it and announces total
// depletion. Day rolls re-arm the countdown regardless.
func (s *Session) TickSellout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.over || !s.countdown.Tick() {
		return
	}
	var zeroed []string
	for _, loc := range BuyLocations() {
		n := randRange(s.rng, 1, 2)
		avail := s.market.InStockAt(loc)
		if len(avail) == 0 {
			continue
		}
		s.rng.Shuffle(len(avail), func(i, j int) { avail[i], avail[j] = avail[j], avail[i] })
		if n > len(avail) {
			n = len(avail)
		}
		for _, p := range avail[:n] {
			s.market.SetStock(loc, p, 0)
			zeroed = append(zeroed, fmt.Sprintf("%s at %s", p, loc))
		}
	}
	if len(zeroed) > 0 {
		s.sink.Notify("Products sold out: "+strings.Join(zeroed, ", "), SeverityWarning)
	}
	if s.market.AnyBuyStock() {
		s.countdown.Restart()
		return
	}
	s.countdown.Stop()
	s.sink.Notify("All products are sold out at all locations!", SeverityWarning)
	s.log.Info("market depleted", "day", s.day)
}

// Over reports whether the game has reached a terminal state.
func (s *Session) Over() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.over
}

// FinalScore builds the leaderboard record for a finished game.
func (s *Session) FinalScore(initials string) (Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.over {
		return Score{}, ErrGameNotOver
	}
	if err := ValidateInitials(initials); err != nil {
		return Score{}, err
	}
	return Score{
		Initials: strings.ToUpper(strings.TrimSpace(initials)),
		Money:    s.money,
		Days:     s.day,
		Bought:   s.totalBought,
		Sold:     s.totalSold,
	}, nil
}

// Snapshot projects the current state for display. Calling it any number of
// times has no effect on the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Day:            s.day,
		Money:          s.money,
		Location:       s.location,
		Destination:    s.destination,
		Rumor:          s.rumors.Current(),
		Inventory:      make(map[Product]int, len(s.inventory)),
		Prices:         make(map[Location]map[Product]int),
		Stock:          make(map[Location]map[Product]int),
		Deliveries:     s.deliveries.Pending(),
		Listings:       s.listings.All(),
		TicksRemaining: s.countdown.Remaining(),
		TotalBought:    s.totalBought,
		TotalSold:      s.totalSold,
		Over:           s.over,
	}
	for p, n := range s.inventory {
		snap.Inventory[p] = n
	}
	for _, loc := range AllLocations() {
		snap.Prices[loc] = make(map[Product]int)
		snap.Stock[loc] = make(map[Product]int)
		for _, p := range Products() {
			snap.Prices[loc][p] = s.market.Price(loc, p)
			snap.Stock[loc][p] = s.market.Stock(loc, p)
		}
	}
	return snap
}

// PriceHistory returns the recorded buy-price ledger for p, oldest first.
func (s *Session) PriceHistory(p Product) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.market.History(p)
}

func (s *Session) stockDigestLocked(lead string) string {
	var b strings.Builder
	b.WriteString(lead)
	for _, loc := range BuyLocations() {
		fmt.Fprintf(&b, "\n%s:", loc)
		for _, p := range Products() {
			fmt.Fprintf(&b, "\n  %s: %d units @ $%d", p, s.market.Stock(loc, p), s.market.Price(loc, p))
		}
	}
	return b.String()
}
