package game

import (
	"errors"
	"regexp"
	"strings"
)

const (
	StartingMoney = 1000
	FinalDay      = 30

	PriceFloor      = 10
	HistoryCapacity = 90

	DeliveryLeadDays = 3

	SelloutTicks = 120

	ListingSaleChance     = 0.25
	ListingPriceCeiling   = 3.0
	ListingStaleAfterDays = 5
)

var (
	ErrGameOver              = errors.New("game is over")
	ErrUnknownProduct        = errors.New("unknown product")
	ErrUnknownLocation       = errors.New("unknown location")
	ErrNotBuyLocation        = errors.New("current location does not sell to players")
	ErrNotSellLocation       = errors.New("current location does not buy from players")
	ErrInsufficientFunds     = errors.New("not enough money")
	ErrOutOfStock            = errors.New("product is out of stock")
	ErrInsufficientInventory = errors.New("not enough inventory")
	ErrInvalidListing        = errors.New("invalid listing")
	ErrListingNotFound       = errors.New("listing not found")
	ErrInvalidInitials       = errors.New("initials must be 1-3 letters or digits")
	ErrGameNotOver           = errors.New("game is still in progress")
)

var initialsRE = regexp.MustCompile(`^[A-Za-z0-9]{1,3}$`)

// ValidateInitials checks a leaderboard handle: 1 to 3 alphanumerics.
func ValidateInitials(initials string) error {
	if !initialsRE.MatchString(strings.TrimSpace(initials)) {
		return ErrInvalidInitials
	}
	return nil
}
