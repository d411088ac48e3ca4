package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"scalpr/internal/config"
	"scalpr/internal/game"
	"scalpr/internal/leaderboard"
	"scalpr/internal/obs"
)

type Server struct {
	cfg      config.APIConfig
	log      *slog.Logger
	sessions *Manager
	scores   leaderboard.Store
	mux      *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, sessions *Manager, scores leaderboard.Store) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		sessions: sessions,
		scores:   scores,
		mux:      chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(obs.Instrument)
	r.Use(rateLimit(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Method(http.MethodGet, "/metrics", obs.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/games", s.handleCreateGame)
		r.Get("/leaderboard", s.handleLeaderboard)

		r.Route("/games/{id}", func(r chi.Router) {
			r.Use(s.sessionMiddleware)
			r.Get("/", s.handleGameState)
			r.Get("/events", s.handleGameEvents)
			r.Get("/history/{product}", s.handleGameHistory)
			r.Get("/watch", s.handleGameWatch)
			r.Post("/travel", s.handleTravel)
			r.Post("/buy", s.handleBuy)
			r.Post("/sell", s.handleSell)
			r.Post("/listings", s.handleCreateListing)
			r.Delete("/listings/{index}", s.handleWithdrawListing)
			r.Post("/next-day", s.handleNextDay)
			r.Post("/restart", s.handleRestart)
			r.Post("/score", s.handleSubmitScore)
		})
	})
}

type sessionKey struct{}

func contextWithSession(ctx context.Context, gs *GameSession) context.Context {
	return context.WithValue(ctx, sessionKey{}, gs)
}

func sessionFromContext(ctx context.Context) *GameSession {
	return ctx.Value(sessionKey{}).(*GameSession)
}

func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gs, ok := s.sessions.Get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		ctx := contextWithSession(r.Context(), gs)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, _ *http.Request) {
	gs := s.sessions.Create()
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    gs.ID,
		"state": gs.Game.Snapshot(),
	})
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	gs := sessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, gs.Game.Snapshot())
}

func (s *Server) handleGameEvents(w http.ResponseWriter, r *http.Request) {
	gs := sessionFromContext(r.Context())
	since, _ := strconv.ParseInt(r.URL.Query().Get("since"), 10, 64)
	events := gs.Feed.Since(since)
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleGameHistory(w http.ResponseWriter, r *http.Request) {
	gs := sessionFromContext(r.Context())
	product := game.Product(chi.URLParam(r, "product"))
	if !game.ValidProduct(product) {
		writeDomainError(w, game.ErrUnknownProduct)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"product": product,
		"prices":  gs.Game.PriceHistory(product),
	})
}

func (s *Server) handleGameWatch(w http.ResponseWriter, r *http.Request) {
	gs := sessionFromContext(r.Context())
	gs.Hub.serveWS(w, r)
}

func (s *Server) handleTravel(w http.ResponseWriter, r *http.Request) {
	gs := sessionFromContext(r.Context())
	var in struct {
		Location string `json:"location"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := gs.Game.Travel(game.Location(in.Location)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gs.Game.Snapshot())
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	gs := sessionFromContext(r.Context())
	var in struct {
		Product string `json:"product"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := gs.Game.Buy(game.Product(in.Product)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gs.Game.Snapshot())
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	gs := sessionFromContext(r.Context())
	var in struct {
		Product string `json:"product"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := gs.Game.Sell(game.Product(in.Product)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gs.Game.Snapshot())
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	gs := sessionFromContext(r.Context())
	var in struct {
		Product  string `json:"product"`
		Price    int    `json:"price"`
		Quantity int    `json:"quantity"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := gs.Game.CreateListing(game.Product(in.Product), in.Price, in.Quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, gs.Game.Snapshot())
}

func (s *Server) handleWithdrawListing(w http.ResponseWriter, r *http.Request) {
	gs := sessionFromContext(r.Context())
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing index")
		return
	}
	if err := gs.Game.WithdrawListing(index); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gs.Game.Snapshot())
}

func (s *Server) handleNextDay(w http.ResponseWriter, r *http.Request) {
	gs := sessionFromContext(r.Context())
	wasOver := gs.Game.Over()
	if err := gs.Game.AdvanceDay(); err != nil {
		if errors.Is(err, game.ErrGameOver) && !wasOver {
			// The advance itself hit a terminal condition; the state moved.
			obs.GameFinished()
			writeJSON(w, http.StatusOK, gs.Game.Snapshot())
			return
		}
		writeDomainError(w, err)
		return
	}
	if gs.Game.Over() {
		obs.GameFinished()
	}
	writeJSON(w, http.StatusOK, gs.Game.Snapshot())
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	gs := sessionFromContext(r.Context())
	gs.Game.Restart()
	writeJSON(w, http.StatusOK, gs.Game.Snapshot())
}

func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	gs := sessionFromContext(r.Context())
	var in struct {
		Initials string `json:"initials"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	score, err := gs.Game.FinalScore(in.Initials)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	entry, err := s.scores.Submit(r.Context(), score)
	if err != nil {
		// A leaderboard outage never disturbs the finished game.
		s.log.Error("score submission failed", "session", gs.ID, "err", err)
		gs.Feed.Notify("Could not submit your score to the leaderboard.", game.SeverityError)
		writeError(w, http.StatusBadGateway, "score submission failed")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.scores.Top(r.Context(), limit)
	if err != nil {
		s.log.Error("leaderboard fetch failed", "err", err)
		writeError(w, http.StatusBadGateway, "leaderboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scores": rows})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameOver), errors.Is(err, game.ErrGameNotOver):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrListingNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrUnknownProduct),
		errors.Is(err, game.ErrUnknownLocation),
		errors.Is(err, game.ErrNotBuyLocation),
		errors.Is(err, game.ErrNotSellLocation),
		errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, game.ErrOutOfStock),
		errors.Is(err, game.ErrInsufficientInventory),
		errors.Is(err, game.ErrInvalidListing),
		errors.Is(err, game.ErrInvalidInitials):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
