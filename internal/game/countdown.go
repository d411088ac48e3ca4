package game

// SelloutCountdown is the per-session depletion timer. It only keeps tick
// bookkeeping; the owning session decides what an expiry does.
type SelloutCountdown struct {
	remaining int
	active    bool
}

// Restart arms the countdown at the full tick budget, discarding any
// in-flight count.
func (c *SelloutCountdown) Restart() {
	c.remaining = SelloutTicks
	c.active = true
}

// Stop disarms the countdown until the next restart.
func (c *SelloutCountdown) Stop() {
	c.active = false
	c.remaining = 0
}

func (c *SelloutCountdown) Active() bool   { return c.active }
func (c *SelloutCountdown) Remaining() int { return c.remaining }

// Tick consumes one tick and reports whether the countdown expired on this
// tick. Ticks on an inactive countdown do nothing.
func (c *SelloutCountdown) Tick() bool {
	if !c.active {
		return false
	}
	c.remaining--
	return c.remaining <= 0
}
