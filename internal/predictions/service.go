package predictions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/fortuna/ligatipp/internal/store"
	"github.com/fortuna/ligatipp/internal/store/repository"
)

// Submission errors surfaced to the API layer.
var (
	ErrMatchUnknown  = errors.New("prediction refers to an unknown match")
	ErrMatchPlayed   = errors.New("match has already been played")
	ErrMissingUser   = errors.New("user name is required")
	ErrNegativeGoals = errors.New("predicted goals must be non-negative")
)

// Service submits and scores predictions against the cloud store.
type Service struct {
	matches *repository.MatchRepository
	preds   *repository.PredictionRepository
}

// NewService creates the prediction service.
func NewService(db *store.Database) *Service {
	return &Service{
		matches: repository.NewMatchRepository(db),
		preds:   repository.NewPredictionRepository(db),
	}
}

// Submit validates and stores a prediction. Resubmitting replaces the
// user's earlier guess for the same fixture; predicting an already-played
// match is rejected.
func (s *Service) Submit(ctx context.Context, p *store.Prediction) error {
	p.User = strings.TrimSpace(p.User)
	if p.User == "" {
		return ErrMissingUser
	}
	if p.PredHome < 0 || p.PredAway < 0 {
		return ErrNegativeGoals
	}

	match, err := s.matches.Get(ctx, store.MatchKey{
		Season: p.Season, Matchday: p.Matchday, Home: p.Home, Away: p.Away,
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrMatchUnknown
	}
	if err != nil {
		return fmt.Errorf("looking up match: %w", err)
	}
	if match.Played() {
		return ErrMatchPlayed
	}

	return s.preds.Save(ctx, p)
}

// RescoreSeason recomputes the points of every prediction in the season
// whose match has a known result. Running it after each reconciliation
// pass keeps scores consistent even when results are corrected later; the
// operation is idempotent, so rescoring an already-scored prediction with
// an unchanged result is a no-op.
func (s *Service) RescoreSeason(ctx context.Context, season string) (int, error) {
	matches, err := s.matches.GetBySeason(ctx, season)
	if err != nil {
		return 0, fmt.Errorf("loading season matches: %w", err)
	}

	results := make(map[store.MatchKey]*store.Match, len(matches))
	for _, m := range matches {
		if m.Played() {
			results[m.Key()] = m
		}
	}

	preds, err := s.preds.GetBySeason(ctx, season)
	if err != nil {
		return 0, fmt.Errorf("loading season predictions: %w", err)
	}

	scored := 0
	for _, p := range preds {
		match, ok := results[store.MatchKey{
			Season: p.Season, Matchday: p.Matchday, Home: p.Home, Away: p.Away,
		}]
		if !ok {
			continue
		}

		pts := Score(p.PredHome, p.PredAway, int(match.GoalsHome.Int32), int(match.GoalsAway.Int32))
		if p.Points.Valid && int(p.Points.Int32) == pts {
			continue
		}

		if err := s.preds.UpdatePoints(ctx, p.ID, pts); err != nil {
			// One stuck prediction must not abort the batch.
			log.Printf("  ⚠️  rescoring prediction %d (%s, matchday %d): %v", p.ID, p.User, p.Matchday, err)
			continue
		}
		scored++
	}

	if scored > 0 {
		log.Printf("✓ Rescored %d predictions for %s", scored, season)
	}
	return scored, nil
}

// ForUser returns a user's predictions for a season (case-insensitive).
func (s *Service) ForUser(ctx context.Context, user, season string) ([]*store.Prediction, error) {
	return s.preds.GetByUser(ctx, user, season)
}

// Leaderboard returns per-user season totals, best first.
func (s *Service) Leaderboard(ctx context.Context, season string, limit int) ([]*store.LeaderboardEntry, error) {
	return s.preds.Leaderboard(ctx, season, limit)
}

// HallOfFame returns the best season totals across all seasons.
func (s *Service) HallOfFame(ctx context.Context, limit int) ([]*store.LeaderboardEntry, error) {
	return s.preds.AllTimeLeaderboard(ctx, limit)
}
