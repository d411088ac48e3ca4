package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "scalpr/internal/cli"
	"scalpr/internal/config"
	"scalpr/internal/game"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "scalpr",
		Short:        "Scalpr CLI game client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newNewCmd(&apiBase),
		newStateCmd(&apiBase),
		newTravelCmd(&apiBase),
		newBuyCmd(&apiBase),
		newSellCmd(&apiBase),
		newListingCmd(&apiBase),
		newNextCmd(&apiBase),
		newNewsCmd(&apiBase),
		newHistoryCmd(&apiBase),
		newRestartCmd(&apiBase),
		newScoreCmd(&apiBase),
		newLeaderboardCmd(&apiBase),
		newAbandonCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func activeGame() (string, error) {
	sess, err := cl.LoadSession()
	if err != nil {
		return "", err
	}
	return sess.GameID, nil
}

func newNewCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a fresh 30-day run",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			id, snap, err := client.NewGame(ctx)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{GameID: id, StartedAt: time.Now()}); err != nil {
				return err
			}
			printSuccess("New game started. Session saved.")
			return renderSnapshot(snap)
		},
	}
}

func newStateCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "state",
		Short:   "Show money, stock, prices and listings",
		Aliases: []string{"dash"},
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			snap, err := newClient(apiBase).State(ctx, gameID)
			if err != nil {
				return err
			}
			return renderSnapshot(snap)
		},
	}
}

func newTravelCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "travel [location]",
		Short: "Pick the location you will be at tomorrow",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			loc, err := locationFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			snap, err := newClient(apiBase).Travel(ctx, gameID, loc)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Heading to %s tomorrow.", loc))
			return renderSnapshot(snap)
		},
	}
}

func newBuyCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "buy [product]",
		Short: "Buy one box at the current location",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			product, err := productFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			snap, err := newClient(apiBase).Buy(ctx, gameID, product)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Bought %s.", product))
			return renderSnapshot(snap)
		},
	}
}

func newSellCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sell [product]",
		Short: "Sell one box at the current sell location",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			product, err := productFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			snap, err := newClient(apiBase).Sell(ctx, gameID, product)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Sold %s.", product))
			return renderSnapshot(snap)
		},
	}
}

func newListingCmd(apiBase *string) *cobra.Command {
	listing := &cobra.Command{
		Use:     "listing",
		Short:   "Marketplace listing commands",
		Aliases: []string{"listings"},
	}
	listing.AddCommand(&cobra.Command{
		Use:   "create [product]",
		Short: "List boxes on the marketplace at your price",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			product, err := productFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			price, err := promptInt("Asking price per box", 1)
			if err != nil {
				return err
			}
			quantity, err := promptInt("Quantity", 1)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			snap, err := newClient(apiBase).CreateListing(ctx, gameID, product, price, quantity)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Listed %dx %s at $%d.", quantity, product, price))
			return renderSnapshot(snap)
		},
	})
	listing.AddCommand(&cobra.Command{
		Use:   "withdraw [index]",
		Short: "Pull a listing back into inventory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			index, err := intFromArgOrPrompt(args, 0, "Listing index")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			snap, err := newClient(apiBase).WithdrawListing(ctx, gameID, index)
			if err != nil {
				return err
			}
			printSuccess("Listing withdrawn.")
			return renderSnapshot(snap)
		},
	})
	return listing
}

func newNextCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "next",
		Short:   "Sleep and advance to the next day",
		Aliases: []string{"next-day"},
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			before, err := client.State(ctx, gameID)
			if err != nil {
				return err
			}
			events, err := client.Events(ctx, gameID, 0)
			if err != nil {
				return err
			}
			var lastSeq int64
			if len(events) > 0 {
				lastSeq = events[len(events)-1].Seq
			}
			snap, err := client.NextDay(ctx, gameID)
			if err != nil {
				return err
			}
			fresh, err := client.Events(ctx, gameID, lastSeq)
			if err != nil {
				return err
			}
			renderEvents(fresh)
			if snap.Over && !before.Over {
				printWarn("The run is over. Submit your initials with `scalpr score`.")
			}
			return renderSnapshot(snap)
		},
	}
}

func newNewsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "news",
		Short: "Replay the full notification feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			events, err := newClient(apiBase).Events(ctx, gameID, 0)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				printInfo("No news yet.")
				return nil
			}
			renderEvents(events)
			return nil
		},
	}
}

func newHistoryCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history [product]",
		Short: "Show recent buy prices for a product",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			product, err := productFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			prices, err := newClient(apiBase).History(ctx, gameID, product)
			if err != nil {
				return err
			}
			return renderHistory(product, prices)
		},
	}
}

func newRestartCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Reset the current game back to day one",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			snap, err := newClient(apiBase).Restart(ctx, gameID)
			if err != nil {
				return err
			}
			printSuccess("Game restarted.")
			return renderSnapshot(snap)
		},
	}
}

func newScoreCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "score [initials]",
		Short: "Submit your finished run to the leaderboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := activeGame()
			if err != nil {
				return err
			}
			initials, err := initialsFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			entry, err := newClient(apiBase).SubmitScore(ctx, gameID, initials)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Score submitted: %s with $%s after %d days.", entry.Initials, comma(int64(entry.Money)), entry.Days))
			return nil
		},
	}
}

func newLeaderboardCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "leaderboard",
		Short:   "Show the top scores",
		Aliases: []string{"top"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			rows, err := newClient(apiBase).TopScores(ctx, 0)
			if err != nil {
				return err
			}
			return renderLeaderboard(rows)
		},
	}
}

func newAbandonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abandon",
		Short: "Forget the locally saved game id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Local session cleared.")
			return nil
		},
	}
}

func productFromArgsOrPrompt(args []string) (game.Product, error) {
	if len(args) > 0 {
		return matchProduct(args[0])
	}
	return promptProduct()
}

func locationFromArgsOrPrompt(args []string) (game.Location, error) {
	if len(args) > 0 {
		return matchLocation(args[0])
	}
	return promptLocation()
}

func initialsFromArgsOrPrompt(args []string) (string, error) {
	if len(args) > 0 {
		return strings.ToUpper(strings.TrimSpace(args[0])), nil
	}
	text, err := promptRequired("Initials (1-3 letters or digits)")
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(text)), nil
}

func intFromArgOrPrompt(args []string, idx int, label string) (int, error) {
	if len(args) > idx {
		v, err := strconv.Atoi(strings.TrimSpace(args[idx]))
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid %s", strings.ToLower(label))
		}
		return v, nil
	}
	return promptInt(label, 0)
}
