package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scalpr/internal/game"
	"scalpr/internal/leaderboard"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type newGamePayload struct {
	ID    string        `json:"id"`
	State game.Snapshot `json:"state"`
}

// Event mirrors the server's feed entry.
type Event struct {
	Seq      int64         `json:"seq"`
	Kind     string        `json:"kind"`
	Title    string        `json:"title,omitempty"`
	Message  string        `json:"message"`
	Severity game.Severity `json:"severity,omitempty"`
	At       time.Time     `json:"at"`
}

func (c *Client) NewGame(ctx context.Context) (string, game.Snapshot, error) {
	var out newGamePayload
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", nil, &out)
	return out.ID, out.State, err
}

func (c *Client) State(ctx context.Context, gameID string) (game.Snapshot, error) {
	var out game.Snapshot
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID), nil, &out)
	return out, err
}

func (c *Client) Travel(ctx context.Context, gameID string, loc game.Location) (game.Snapshot, error) {
	var out game.Snapshot
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/travel", map[string]any{
		"location": string(loc),
	}, &out)
	return out, err
}

func (c *Client) Buy(ctx context.Context, gameID string, p game.Product) (game.Snapshot, error) {
	var out game.Snapshot
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/buy", map[string]any{
		"product": string(p),
	}, &out)
	return out, err
}

func (c *Client) Sell(ctx context.Context, gameID string, p game.Product) (game.Snapshot, error) {
	var out game.Snapshot
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/sell", map[string]any{
		"product": string(p),
	}, &out)
	return out, err
}

func (c *Client) CreateListing(ctx context.Context, gameID string, p game.Product, price, quantity int) (game.Snapshot, error) {
	var out game.Snapshot
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/listings", map[string]any{
		"product":  string(p),
		"price":    price,
		"quantity": quantity,
	}, &out)
	return out, err
}

func (c *Client) WithdrawListing(ctx context.Context, gameID string, index int) (game.Snapshot, error) {
	var out game.Snapshot
	err := c.jsonRequest(ctx, http.MethodDelete, fmt.Sprintf("/v1/games/%s/listings/%d", url.PathEscape(gameID), index), nil, &out)
	return out, err
}

func (c *Client) NextDay(ctx context.Context, gameID string) (game.Snapshot, error) {
	var out game.Snapshot
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/next-day", nil, &out)
	return out, err
}

func (c *Client) Restart(ctx context.Context, gameID string) (game.Snapshot, error) {
	var out game.Snapshot
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/restart", nil, &out)
	return out, err
}

func (c *Client) SubmitScore(ctx context.Context, gameID, initials string) (leaderboard.Entry, error) {
	var out leaderboard.Entry
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/score", map[string]any{
		"initials": initials,
	}, &out)
	return out, err
}

func (c *Client) TopScores(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	var out struct {
		Scores []leaderboard.Entry `json:"scores"`
	}
	path := "/v1/leaderboard"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out.Scores, err
}

func (c *Client) Events(ctx context.Context, gameID string, since int64) ([]Event, error) {
	var out struct {
		Events []Event `json:"events"`
	}
	path := fmt.Sprintf("/v1/games/%s/events?since=%d", url.PathEscape(gameID), since)
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out.Events, err
}

func (c *Client) History(ctx context.Context, gameID string, p game.Product) ([]int, error) {
	var out struct {
		Prices []int `json:"prices"`
	}
	path := fmt.Sprintf("/v1/games/%s/history/%s", url.PathEscape(gameID), url.PathEscape(string(p)))
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out.Prices, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
