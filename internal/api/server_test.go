package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"scalpr/internal/config"
	"scalpr/internal/game"
	"scalpr/internal/leaderboard"
)

func newTestServer(t *testing.T) (*httptest.Server, *Manager) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.APIConfig{
		Addr:           ":0",
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	mgr := NewManager(logger, time.Hour)
	srv := New(cfg, logger, mgr, leaderboard.NewMemoryStore())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, mgr
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func createGame(t *testing.T, ts *httptest.Server) (string, game.Snapshot) {
	t.Helper()
	resp, data := doJSON(t, http.MethodPost, ts.URL+"/v1/games", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create game: status %d body %s", resp.StatusCode, data)
	}
	var out struct {
		ID    string        `json:"id"`
		State game.Snapshot `json:"state"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if out.ID == "" {
		t.Fatalf("missing game id")
	}
	return out.ID, out.State
}

func TestCreateAndFetchGame(t *testing.T) {
	ts, _ := newTestServer(t)
	id, state := createGame(t, ts)
	if state.Day != 1 || state.Money != game.StartingMoney {
		t.Fatalf("unexpected opening state: %+v", state)
	}

	resp, data := doJSON(t, http.MethodGet, ts.URL+"/v1/games/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fetch game: status %d", resp.StatusCode)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Location != game.LocalGameStore {
		t.Fatalf("expected opening location, got %s", snap.Location)
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/v1/games/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown game: status %d", resp.StatusCode)
	}
}

func TestBuyTravelSellFlow(t *testing.T) {
	ts, _ := newTestServer(t)
	id, _ := createGame(t, ts)
	base := ts.URL + "/v1/games/" + id

	// Tier-2 stock always opens affordable at the local store.
	resp, data := doJSON(t, http.MethodPost, base+"/buy", map[string]string{"product": string(game.DarkFlames)})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("buy: status %d body %s", resp.StatusCode, data)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Inventory[game.DarkFlames] != 1 || snap.Money >= game.StartingMoney {
		t.Fatalf("buy not applied: %+v", snap)
	}

	resp, data = doJSON(t, http.MethodPost, base+"/travel", map[string]string{"location": string(game.Marketplace)})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("travel: status %d body %s", resp.StatusCode, data)
	}
	resp, data = doJSON(t, http.MethodPost, base+"/next-day", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("next-day: status %d body %s", resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Day != 2 || snap.Location != game.Marketplace {
		t.Fatalf("day roll did not apply travel: %+v", snap)
	}

	moneyBefore := snap.Money
	resp, data = doJSON(t, http.MethodPost, base+"/sell", map[string]string{"product": string(game.DarkFlames)})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sell: status %d body %s", resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Money <= moneyBefore || snap.Inventory[game.DarkFlames] != 0 {
		t.Fatalf("sale not applied: %+v", snap)
	}
}

func TestDomainErrorsMapToStatusCodes(t *testing.T) {
	ts, _ := newTestServer(t)
	id, _ := createGame(t, ts)
	base := ts.URL + "/v1/games/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown product", http.MethodPost, "/buy", map[string]string{"product": "Beanie Babies"}, http.StatusBadRequest},
		{"sell at buy location", http.MethodPost, "/sell", map[string]string{"product": string(game.BaseSet)}, http.StatusBadRequest},
		{"unknown location", http.MethodPost, "/travel", map[string]string{"location": "The Moon"}, http.StatusBadRequest},
		{"listing without inventory", http.MethodPost, "/listings", map[string]any{"product": string(game.BaseSet), "price": 100, "quantity": 1}, http.StatusBadRequest},
		{"withdraw missing listing", http.MethodDelete, "/listings/3", nil, http.StatusNotFound},
		{"score before game over", http.MethodPost, "/score", map[string]string{"initials": "AAA"}, http.StatusConflict},
		{"unknown field", http.MethodPost, "/buy", map[string]string{"prodcut": "x"}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		resp, data := doJSON(t, tc.method, base+tc.path, tc.body)
		if resp.StatusCode != tc.status {
			t.Fatalf("%s: status %d want %d body %s", tc.name, resp.StatusCode, tc.status, data)
		}
	}
}

func TestEventsFeed(t *testing.T) {
	ts, _ := newTestServer(t)
	id, _ := createGame(t, ts)
	base := ts.URL + "/v1/games/" + id

	resp, data := doJSON(t, http.MethodGet, base+"/events", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events: status %d", resp.StatusCode)
	}
	var out struct {
		Events []Event `json:"events"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(out.Events) == 0 {
		t.Fatalf("expected the welcome digest in the feed")
	}
	last := out.Events[len(out.Events)-1].Seq

	resp, data = doJSON(t, http.MethodGet, fmt.Sprintf("%s/events?since=%d", base, last), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events since: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(out.Events) != 0 {
		t.Fatalf("expected no events past seq %d, got %d", last, len(out.Events))
	}
}

func TestWatchStreamsEvents(t *testing.T) {
	ts, _ := newTestServer(t)
	id, _ := createGame(t, ts)
	base := ts.URL + "/v1/games/" + id

	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/watch"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	// Give the hub a moment to register the watcher.
	time.Sleep(50 * time.Millisecond)

	resp, data := doJSON(t, http.MethodPost, base+"/buy", map[string]string{"product": string(game.DarkFlames)})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("buy: status %d body %s", resp.StatusCode, data)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var e Event
	if err := json.Unmarshal(frame, &e); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if !strings.Contains(e.Message, "Bought") {
		t.Fatalf("expected purchase event, got %+v", e)
	}
}

func TestScoreSubmissionAfterGameOver(t *testing.T) {
	ts, mgr := newTestServer(t)
	id, _ := createGame(t, ts)
	base := ts.URL + "/v1/games/" + id

	gs, ok := mgr.Get(id)
	if !ok {
		t.Fatalf("session missing")
	}
	// Fast-forward to the end of the run.
	for !gs.Game.Over() {
		if err := gs.Game.AdvanceDay(); err != nil && err != game.ErrGameOver {
			t.Fatalf("advance: %v", err)
		}
	}

	resp, data := doJSON(t, http.MethodPost, base+"/score", map[string]string{"initials": "GG"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("score: status %d body %s", resp.StatusCode, data)
	}
	var entry leaderboard.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.Initials != "GG" || entry.ID == "" {
		t.Fatalf("bad entry: %+v", entry)
	}

	resp, data = doJSON(t, http.MethodGet, ts.URL+"/v1/leaderboard?limit=5", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leaderboard: status %d", resp.StatusCode)
	}
	var board struct {
		Scores []leaderboard.Entry `json:"scores"`
	}
	if err := json.Unmarshal(data, &board); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(board.Scores) != 1 || board.Scores[0].Initials != "GG" {
		t.Fatalf("expected submitted score on the board: %+v", board.Scores)
	}

	resp, _ = doJSON(t, http.MethodPost, base+"/buy", map[string]string{"product": string(game.BaseSet)})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("actions on a finished game: status %d", resp.StatusCode)
	}

	resp, data = doJSON(t, http.MethodPost, base+"/restart", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("restart: status %d", resp.StatusCode)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Day != 1 || snap.Over {
		t.Fatalf("restart did not reset: %+v", snap)
	}
}
