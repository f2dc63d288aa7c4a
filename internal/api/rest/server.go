package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fortuna/ligatipp/internal/cache"
	"github.com/fortuna/ligatipp/internal/names"
	"github.com/fortuna/ligatipp/internal/predictions"
	"github.com/fortuna/ligatipp/internal/reconcile"
	"github.com/fortuna/ligatipp/internal/store"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server. redisCache may be nil; the
// standings endpoints then skip caching.
func NewServer(port string, db *store.Database, preds *predictions.Service, resolver *names.Resolver, engine *reconcile.Engine, redisCache *cache.RedisCache, defaultSeason string) *Server {
	handler := NewHandler(db, preds, resolver, engine, redisCache, defaultSeason)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Standings
	api.HandleFunc("/standings", handler.GetStandings).Methods("GET")
	api.HandleFunc("/standings/alltime", handler.GetAllTimeStandings).Methods("GET")

	// Matches
	api.HandleFunc("/seasons", handler.GetSeasons).Methods("GET")
	api.HandleFunc("/matchdays/{matchday}", handler.GetMatchday).Methods("GET")

	// Predictions
	api.HandleFunc("/predictions", handler.SubmitPrediction).Methods("POST")
	api.HandleFunc("/predictions/{user}", handler.GetUserPredictions).Methods("GET")
	api.HandleFunc("/leaderboard", handler.GetLeaderboard).Methods("GET")
	api.HandleFunc("/halloffame", handler.GetHallOfFame).Methods("GET")

	// Pipeline status
	api.HandleFunc("/status", handler.GetStatus).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
