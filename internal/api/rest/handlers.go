package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fortuna/ligatipp/internal/cache"
	"github.com/fortuna/ligatipp/internal/names"
	"github.com/fortuna/ligatipp/internal/predictions"
	"github.com/fortuna/ligatipp/internal/reconcile"
	"github.com/fortuna/ligatipp/internal/standings"
	"github.com/fortuna/ligatipp/internal/store"
	"github.com/fortuna/ligatipp/internal/store/repository"
)

// standingsCacheTTL bounds staleness of the cached tables; the cache is
// also invalidated whenever reconciliation settles a result.
const standingsCacheTTL = time.Minute

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db       *store.Database
	matches  *repository.MatchRepository
	preds    *predictions.Service
	resolver *names.Resolver
	engine   *reconcile.Engine
	cache    *cache.RedisCache
	season   string
}

// NewHandler creates a new handler. The season is the default when a
// request carries no ?season= parameter.
func NewHandler(db *store.Database, preds *predictions.Service, resolver *names.Resolver, engine *reconcile.Engine, redisCache *cache.RedisCache, season string) *Handler {
	return &Handler{
		db:       db,
		matches:  repository.NewMatchRepository(db),
		preds:    preds,
		resolver: resolver,
		engine:   engine,
		cache:    redisCache,
		season:   season,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "Database unreachable", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "ligatipp",
	})
}

// GetStatus reports the reconciliation counters and sync state.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	season := h.seasonParam(r)
	synced, err := h.engine.FullySynced(r.Context(), season)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to check sync state", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"season":  season,
		"synced":  synced,
		"metrics": h.engine.MetricsSnapshot(),
	})
}

// GetStandings returns the season table.
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	season := h.seasonParam(r)
	cacheKey := "standings:" + season

	if h.cache != nil {
		var table []standings.Row
		if err := h.cache.GetJSON(r.Context(), cacheKey, &table); err == nil {
			respondJSON(w, http.StatusOK, map[string]interface{}{"season": season, "table": table, "cached": true})
			return
		}
	}

	matches, err := h.matches.GetBySeason(r.Context(), season)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch matches", err)
		return
	}

	table := standings.ComputeTable(matches, season)
	if h.cache != nil {
		_ = h.cache.SetJSON(r.Context(), cacheKey, table, standingsCacheTTL)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"season": season, "table": table})
}

// GetAllTimeStandings returns the all-time table with renamed clubs
// folded together.
func (h *Handler) GetAllTimeStandings(w http.ResponseWriter, r *http.Request) {
	cacheKey := "standings:alltime"

	if h.cache != nil {
		var table []standings.Row
		if err := h.cache.GetJSON(r.Context(), cacheKey, &table); err == nil {
			respondJSON(w, http.StatusOK, map[string]interface{}{"table": table, "cached": true})
			return
		}
	}

	matches, err := h.matches.GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch matches", err)
		return
	}

	table := standings.ComputeAllTime(matches, h.resolver)
	if h.cache != nil {
		_ = h.cache.SetJSON(r.Context(), cacheKey, table, standingsCacheTTL)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"table": table})
}

// GetSeasons lists the seasons present in the store.
func (h *Handler) GetSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.matches.Seasons(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch seasons", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"seasons": seasons, "count": len(seasons)})
}

// GetMatchday returns one round of a season.
func (h *Handler) GetMatchday(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	matchday, err := strconv.Atoi(vars["matchday"])
	if err != nil || matchday < 1 {
		respondError(w, http.StatusBadRequest, "Invalid matchday", err)
		return
	}

	season := h.seasonParam(r)
	matches, err := h.matches.GetByMatchday(r.Context(), season, matchday)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch matchday", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"season":   season,
		"matchday": matchday,
		"matches":  matches,
		"count":    len(matches),
	})
}

// predictionRequest is the POST /predictions body.
type predictionRequest struct {
	User     string `json:"user"`
	Season   string `json:"season"`
	Matchday int    `json:"matchday"`
	Home     string `json:"home"`
	Away     string `json:"away"`
	PredHome int    `json:"pred_home"`
	PredAway int    `json:"pred_away"`
}

// SubmitPrediction stores a user's guess for an unplayed fixture.
func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	var req predictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Season == "" {
		req.Season = h.season
	}

	// Short club names are accepted and normalized.
	if canonical, ok := h.resolver.ResolveForSeason(req.Home, req.Season); ok {
		req.Home = canonical
	}
	if canonical, ok := h.resolver.ResolveForSeason(req.Away, req.Season); ok {
		req.Away = canonical
	}

	p := &store.Prediction{
		User:     req.User,
		Season:   req.Season,
		Matchday: req.Matchday,
		Home:     req.Home,
		Away:     req.Away,
		PredHome: req.PredHome,
		PredAway: req.PredAway,
	}

	err := h.preds.Submit(r.Context(), p)
	switch {
	case errors.Is(err, predictions.ErrMissingUser), errors.Is(err, predictions.ErrNegativeGoals):
		respondError(w, http.StatusBadRequest, "Invalid prediction", err)
		return
	case errors.Is(err, predictions.ErrMatchUnknown):
		respondError(w, http.StatusNotFound, "Unknown fixture", err)
		return
	case errors.Is(err, predictions.ErrMatchPlayed):
		respondError(w, http.StatusConflict, "Match already played", err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "Failed to store prediction", err)
		return
	}

	respondJSON(w, http.StatusCreated, p)
}

// userPredictionRow joins one prediction with the actual result.
type userPredictionRow struct {
	Matchday int    `json:"matchday"`
	Home     string `json:"home"`
	Away     string `json:"away"`
	Pred     string `json:"prediction"`
	Result   string `json:"result"`
	Points   *int   `json:"points"`
}

// GetUserPredictions lists a user's predictions for a season, joined
// with the actual results. User lookup is case-insensitive.
func (h *Handler) GetUserPredictions(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	season := h.seasonParam(r)

	preds, err := h.preds.ForUser(r.Context(), user, season)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch predictions", err)
		return
	}

	matches, err := h.matches.GetBySeason(r.Context(), season)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch matches", err)
		return
	}
	byKey := make(map[store.MatchKey]*store.Match, len(matches))
	for _, m := range matches {
		byKey[m.Key()] = m
	}

	rows := make([]userPredictionRow, 0, len(preds))
	for _, p := range preds {
		row := userPredictionRow{
			Matchday: p.Matchday,
			Home:     p.Home,
			Away:     p.Away,
			Pred:     fmt.Sprintf("%d:%d", p.PredHome, p.PredAway),
			Result:   "-:-",
		}
		if m, ok := byKey[store.MatchKey{Season: p.Season, Matchday: p.Matchday, Home: p.Home, Away: p.Away}]; ok {
			row.Result = m.Result()
		}
		if p.Points.Valid {
			points := int(p.Points.Int32)
			row.Points = &points
		}
		rows = append(rows, row)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":        user,
		"season":      season,
		"predictions": rows,
		"count":       len(rows),
	})
}

// GetLeaderboard returns the per-season points ranking.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	season := h.seasonParam(r)
	limit := limitParam(r, 20)

	entries, err := h.preds.Leaderboard(r.Context(), season, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch leaderboard", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"season": season, "leaderboard": entries})
}

// GetHallOfFame returns the all-season points ranking.
func (h *Handler) GetHallOfFame(w http.ResponseWriter, r *http.Request) {
	limit := limitParam(r, 20)

	entries, err := h.preds.HallOfFame(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch hall of fame", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"halloffame": entries})
}

func (h *Handler) seasonParam(r *http.Request) string {
	if season := r.URL.Query().Get("season"); season != "" {
		return season
	}
	return h.season
}

func limitParam(r *http.Request, def int) int {
	limit := def
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	return limit
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
