package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	cl "scalpr/internal/cli"
	"scalpr/internal/game"
	"scalpr/internal/leaderboard"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptInt(label string, min int) (int, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(text)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

func promptProduct() (game.Product, error) {
	products := game.Products()
	accent.Println("Products:")
	for i, p := range products {
		fmt.Printf("  %d) %s\n", i+1, p)
	}
	for {
		text, err := promptRequired("Product (number or name)")
		if err != nil {
			return "", err
		}
		if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(products) {
			return products[n-1], nil
		}
		p, err := matchProduct(text)
		if err != nil {
			printWarn(err.Error())
			continue
		}
		return p, nil
	}
}

func promptLocation() (game.Location, error) {
	locations := game.AllLocations()
	accent.Println("Locations:")
	for i, loc := range locations {
		role := "buy"
		if game.IsSellLocation(loc) {
			role = "sell"
		}
		fmt.Printf("  %d) %s (%s)\n", i+1, loc, role)
	}
	for {
		text, err := promptRequired("Location (number or name)")
		if err != nil {
			return "", err
		}
		if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(locations) {
			return locations[n-1], nil
		}
		loc, err := matchLocation(text)
		if err != nil {
			printWarn(err.Error())
			continue
		}
		return loc, nil
	}
}

// matchProduct accepts a full name or an unambiguous case-insensitive prefix.
func matchProduct(text string) (game.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return "", fmt.Errorf("product name is required")
	}
	var hits []game.Product
	for _, p := range game.Products() {
		name := strings.ToLower(string(p))
		if name == needle {
			return p, nil
		}
		if strings.Contains(name, needle) {
			hits = append(hits, p)
		}
	}
	switch len(hits) {
	case 1:
		return hits[0], nil
	case 0:
		return "", fmt.Errorf("unknown product %q", strings.TrimSpace(text))
	default:
		return "", fmt.Errorf("%q matches more than one product", strings.TrimSpace(text))
	}
}

func matchLocation(text string) (game.Location, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return "", fmt.Errorf("location name is required")
	}
	var hits []game.Location
	for _, loc := range game.AllLocations() {
		name := strings.ToLower(string(loc))
		if name == needle {
			return loc, nil
		}
		if strings.Contains(name, needle) {
			hits = append(hits, loc)
		}
	}
	switch len(hits) {
	case 1:
		return hits[0], nil
	case 0:
		return "", fmt.Errorf("unknown location %q", strings.TrimSpace(text))
	default:
		return "", fmt.Errorf("%q matches more than one location", strings.TrimSpace(text))
	}
}

func renderSnapshot(s game.Snapshot) error {
	accent.Printf("\n== DAY %d of %d ==\n", s.Day, game.FinalDay)
	fmt.Printf("Money:     $%s\n", comma(int64(s.Money)))
	fmt.Printf("Location:  %s\n", s.Location)
	if s.Destination != "" && s.Destination != s.Location {
		fmt.Printf("Tomorrow:  %s\n", s.Destination)
	}
	fmt.Printf("News:      %s\n", s.Rumor)
	if s.Over {
		danger.Println("GAME OVER")
	}

	fmt.Println()
	accent.Printf("%s\n", s.Location)
	prices := s.Prices[s.Location]
	stock := s.Stock[s.Location]
	fmt.Printf("%-26s %8s %8s\n", "PRODUCT", "PRICE", "STOCK")
	for _, p := range game.Products() {
		stockText := strconv.Itoa(stock[p])
		if stock[p] == 0 {
			stockText = danger.Sprint("SOLD OUT")
		}
		fmt.Printf("%-26s %8s %8s\n", p, "$"+comma(int64(prices[p])), stockText)
	}

	fmt.Println()
	accent.Println("Inventory")
	if len(s.Inventory) == 0 {
		printInfo("Nothing in inventory.")
	} else {
		for _, p := range game.Products() {
			if s.Inventory[p] > 0 {
				fmt.Printf("  %dx %s\n", s.Inventory[p], p)
			}
		}
	}

	if len(s.Deliveries) > 0 {
		fmt.Println()
		accent.Println("Deliveries")
		for _, d := range s.Deliveries {
			fmt.Printf("  %dx %s arriving day %d\n", d.Quantity, d.Product, d.ArrivalDay)
		}
	}

	if len(s.Listings) > 0 {
		fmt.Println()
		accent.Println("Marketplace Listings")
		fmt.Printf("%-4s %-26s %8s %6s %8s\n", "#", "PRODUCT", "PRICE", "QTY", "LISTED")
		for i, l := range s.Listings {
			age := fmt.Sprintf("%dd", l.DaysListed)
			if l.DaysListed >= game.ListingStaleAfterDays {
				age = warn.Sprint(age)
			}
			fmt.Printf("%-4d %-26s %8s %6d %8s\n", i, l.Product, "$"+comma(int64(l.Price)), l.Quantity, age)
		}
	}

	fmt.Println()
	fmt.Printf("Bought %d, sold %d so far.\n", s.TotalBought, s.TotalSold)
	fmt.Println()
	return nil
}

func renderEvents(events []cl.Event) {
	for _, e := range events {
		if e.Kind == "modal" {
			accent.Printf("\n== %s ==\n", strings.ToUpper(e.Title))
			neutral.Println(e.Message)
			continue
		}
		switch e.Severity {
		case game.SeveritySuccess:
			success.Println(e.Message)
		case game.SeverityWarning:
			warn.Println(e.Message)
		case game.SeverityError:
			danger.Println(e.Message)
		default:
			neutral.Println(e.Message)
		}
	}
}

func renderHistory(p game.Product, prices []int) error {
	accent.Printf("\n== %s PRICE HISTORY ==\n", strings.ToUpper(string(p)))
	if len(prices) == 0 {
		printInfo("No price history yet.")
		return nil
	}
	// Oldest first; the last entry is today.
	for i, v := range prices {
		marker := ""
		if i == len(prices)-1 {
			marker = "  <- today"
		}
		fmt.Printf("%4d) $%s%s\n", i+1, comma(int64(v)), marker)
	}
	fmt.Println()
	return nil
}

func renderLeaderboard(rows []leaderboard.Entry) error {
	accent.Println("\n== LEADERBOARD ==")
	if len(rows) == 0 {
		printInfo("No scores yet.")
		return nil
	}
	fmt.Printf("%-6s %-10s %12s %6s %8s %8s\n", "RANK", "INITIALS", "MONEY", "DAYS", "BOUGHT", "SOLD")
	for i, row := range rows {
		fmt.Printf("%-6d %-10s %12s %6d %8d %8d\n",
			i+1,
			row.Initials,
			"$"+comma(int64(row.Money)),
			row.Days,
			row.Bought,
			row.Sold,
		)
	}
	fmt.Println()
	return nil
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) > 3 {
		var b strings.Builder
		pre := len(s) % 3
		if pre > 0 {
			b.WriteString(s[:pre])
			b.WriteByte(',')
		}
		for i := pre; i < len(s); i += 3 {
			b.WriteString(s[i : i+3])
			if i+3 < len(s) {
				b.WriteByte(',')
			}
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}
