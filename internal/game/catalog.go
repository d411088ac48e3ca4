package game

// Product is one of the six sealed TCG products tradeable in a session.
type Product string

const (
	BaseSet             Product = "The Base Set"
	NostalgiaSet        Product = "The Nostalgia Set"
	DarkFlames          Product = "Dark Flames"
	MasksOfDawn         Product = "Masks of Dawn"
	PrizmsOfChange      Product = "Prizms of Change"
	InevitableOpponents Product = "Inevitable Opponents"
)

// Tier groups products sharing one price-range policy.
type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
)

// Products lists the full catalog in display order.
func Products() []Product {
	return []Product{BaseSet, NostalgiaSet, DarkFlames, MasksOfDawn, PrizmsOfChange, InevitableOpponents}
}

// TierOf returns the pricing tier for a product. Unknown products fall into
// the cheapest tier, matching how the generator treats them.
func TierOf(p Product) Tier {
	switch p {
	case BaseSet, NostalgiaSet:
		return Tier1
	case DarkFlames, MasksOfDawn:
		return Tier2
	default:
		return Tier3
	}
}

// ValidProduct reports whether p is part of the catalog.
func ValidProduct(p Product) bool {
	for _, known := range Products() {
		if known == p {
			return true
		}
	}
	return false
}

// Location is a named market venue. Each location is exclusively a buy
// venue or a sell venue; there are no dual roles.
type Location string

const (
	LocalGameStore Location = "Local Game Store"
	CostMart       Location = "Cost-Mart"
	EcommerceStore Location = "eCommerce Store"
	Marketplace    Location = "The Marketplace"
	TCGConvention  Location = "TCG Convention"
)

// BuyLocations lists venues where money converts into inventory.
func BuyLocations() []Location {
	return []Location{LocalGameStore, CostMart, EcommerceStore}
}

// SellLocations lists venues where inventory converts into money.
func SellLocations() []Location {
	return []Location{Marketplace, TCGConvention}
}

// AllLocations returns buy locations followed by sell locations.
func AllLocations() []Location {
	return append(BuyLocations(), SellLocations()...)
}

// IsBuyLocation reports whether loc is a buy venue.
func IsBuyLocation(loc Location) bool {
	switch loc {
	case LocalGameStore, CostMart, EcommerceStore:
		return true
	}
	return false
}

// IsSellLocation reports whether loc is a sell venue.
func IsSellLocation(loc Location) bool {
	switch loc {
	case Marketplace, TCGConvention:
		return true
	}
	return false
}

// ValidLocation reports whether loc names a known venue of either role.
func ValidLocation(loc Location) bool {
	return IsBuyLocation(loc) || IsSellLocation(loc)
}
