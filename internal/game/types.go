package game

// Snapshot is a read-only projection of session state for display layers.
// It shares no memory with the live session.
type Snapshot struct {
	Day            int                          `json:"day"`
	Money          int                          `json:"money"`
	Location       Location                     `json:"location"`
	Destination    Location                     `json:"destination,omitempty"`
	Rumor          string                       `json:"rumor"`
	Inventory      map[Product]int              `json:"inventory"`
	Prices         map[Location]map[Product]int `json:"prices"`
	Stock          map[Location]map[Product]int `json:"stock"`
	Deliveries     []DeliveryOrder              `json:"deliveries"`
	Listings       []Listing                    `json:"listings"`
	TicksRemaining int                          `json:"ticks_remaining"`
	TotalBought    int                          `json:"total_bought"`
	TotalSold      int                          `json:"total_sold"`
	Over           bool                         `json:"over"`
}

// Score is the record submitted to the leaderboard when a game ends.
type Score struct {
	Initials string `json:"initials"`
	Money    int    `json:"money"`
	Days     int    `json:"days"`
	Bought   int    `json:"bought"`
	Sold     int    `json:"sold"`
}
