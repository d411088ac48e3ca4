package game

import (
	"fmt"
	"strings"
)

// AdvanceDay runs the full day-roll sequence: pending travel, countdown
// re-arm, day increment, delivery settlement, listing auto-sales, stock
// depletion at the player's location, market regeneration, rumor reveal and
// shock application, notifications, and finally the termination check.
// Returns ErrGameOver without touching state when the game already ended.
func (s *Session) AdvanceDay() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.over {
		return ErrGameOver
	}
	if s.day >= FinalDay || s.money <= 0 {
		s.finishLocked()
		return ErrGameOver
	}

	if s.destination != "" && s.destination != s.location {
		s.location = s.destination
		s.sink.Notify(fmt.Sprintf("Traveled to %s", s.location), SeverityInfo)
	}
	s.destination = ""

	s.countdown.Restart()
	s.day++

	s.settleDeliveriesLocked()
	s.settleListingsLocked()

	if IsBuyLocation(s.location) {
		for _, p := range Products() {
			s.market.SetStock(s.location, p, s.market.Stock(s.location, p)-randRange(s.rng, 0, 5))
		}
	}

	s.market.RollDay(s.rng, s.day)

	rumor := s.rumors.Reveal(s.day)
	for _, impact := range s.rumors.ApplyDue(s.day, s.market) {
		s.sink.Notify(impact.Message, impact.Severity)
		s.log.Info("rumor effect applied", "day", s.day, "category", string(impact.Category), "product", string(impact.Product))
	}

	s.sink.Modal("Stock and Pricing info", s.stockDigestLocked("Buy Location Stock Update"))
	s.announceSoldOutsLocked()
	s.sink.Notify(fmt.Sprintf("Day %d: %s", s.day, rumor), SeverityInfo)
	s.log.Info("day advanced", "day", s.day, "money", s.money, "location", string(s.location))

	if s.day >= FinalDay || s.money <= 0 {
		s.finishLocked()
	}
	return nil
}

func (s *Session) settleDeliveriesLocked() {
	arrived := s.deliveries.Collect(s.day)
	if len(arrived) == 0 {
		return
	}
	var parts []string
	for _, o := range arrived {
		s.inventory[o.Product] += o.Quantity
		parts = append(parts, fmt.Sprintf("%dx %s", o.Quantity, o.Product))
	}
	s.sink.Notify("Deliveries arrived: "+strings.Join(parts, ", "), SeveritySuccess)
}

func (s *Session) settleListingsLocked() {
	sold, stale, proceeds := s.listings.SettleDaily(s.rng, s.market)
	s.money += proceeds
	for _, l := range sold {
		s.totalSold += l.Quantity
		s.sink.Notify(fmt.Sprintf("Your listing sold: %dx %s for $%d", l.Quantity, l.Product, l.Price*l.Quantity), SeveritySuccess)
	}
	for _, l := range stale {
		s.sink.Notify(fmt.Sprintf("Your listing for %s has not sold after %d days. Consider withdrawing it.", l.Product, ListingStaleAfterDays), SeverityWarning)
	}
}

func (s *Session) announceSoldOutsLocked() {
	var lines []string
	for _, p := range Products() {
		for _, loc := range BuyLocations() {
			if s.market.Stock(loc, p) != 0 || s.soldOutNotified[p][loc] {
				continue
			}
			s.soldOutNotified[p][loc] = true
			lines = append(lines, fmt.Sprintf("%s is sold out at %s!", p, loc))
		}
	}
	if len(lines) > 0 {
		s.sink.Notify(strings.Join(lines, "\n"), SeverityWarning)
	}
}

func (s *Session) finishLocked() {
	s.over = true
	s.countdown.Stop()
	s.sink.Modal("Game over", fmt.Sprintf(
		"Final money: $%d\nDays survived: %d\nProducts bought: %d\nProducts sold: %d",
		s.money, s.day, s.totalBought, s.totalSold))
	s.log.Info("game over", "day", s.day, "money", s.money, "bought", s.totalBought, "sold", s.totalSold)
}
