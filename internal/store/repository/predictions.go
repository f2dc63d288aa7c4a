package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/ligatipp/internal/store"
)

// PredictionRepository handles prediction data access.
type PredictionRepository struct {
	db *store.Database
}

// NewPredictionRepository creates a new prediction repository.
func NewPredictionRepository(db *store.Database) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Save stores a prediction, replacing any prior one by the same user for
// the same fixture. Delete-then-insert inside one transaction keeps at
// most one live prediction per (user, season, matchday, home, away).
func (r *PredictionRepository) Save(ctx context.Context, p *store.Prediction) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM predictions
		WHERE LOWER("user") = LOWER($1) AND season = $2 AND matchday = $3 AND home = $4 AND away = $5
	`, p.User, p.Season, p.Matchday, p.Home, p.Away)
	if err != nil {
		return fmt.Errorf("deleting prior prediction: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO predictions ("user", season, matchday, home, away, pred_home, pred_away, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL)
		RETURNING id
	`, p.User, p.Season, p.Matchday, p.Home, p.Away, p.PredHome, p.PredAway).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("inserting prediction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing prediction: %w", err)
	}
	return nil
}

// GetByUser returns a user's predictions for a season, newest round
// first. The user lookup is case-insensitive.
func (r *PredictionRepository) GetByUser(ctx context.Context, user, season string) ([]*store.Prediction, error) {
	query := `
		SELECT id, "user", season, matchday, home, away, pred_home, pred_away, points, created_at
		FROM predictions
		WHERE LOWER("user") = LOWER($1) AND season = $2
		ORDER BY matchday DESC, home ASC
	`

	rows, err := r.db.DB().QueryContext(ctx, query, user, season)
	if err != nil {
		return nil, fmt.Errorf("querying user predictions: %w", err)
	}
	defer rows.Close()

	return scanPredictions(rows)
}

// GetBySeason returns every prediction for a season, for batch rescoring.
func (r *PredictionRepository) GetBySeason(ctx context.Context, season string) ([]*store.Prediction, error) {
	query := `
		SELECT id, "user", season, matchday, home, away, pred_home, pred_away, points, created_at
		FROM predictions
		WHERE season = $1
		ORDER BY matchday, home
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying season predictions: %w", err)
	}
	defer rows.Close()

	return scanPredictions(rows)
}

// UpdatePoints sets the scored point value for one prediction.
func (r *PredictionRepository) UpdatePoints(ctx context.Context, id, points int) error {
	_, err := r.db.DB().ExecContext(ctx,
		`UPDATE predictions SET points = $1 WHERE id = $2`, points, id)
	if err != nil {
		return fmt.Errorf("updating prediction points: %w", err)
	}
	return nil
}

// Leaderboard returns per-user point totals for a season, best first.
func (r *PredictionRepository) Leaderboard(ctx context.Context, season string, limit int) ([]*store.LeaderboardEntry, error) {
	query := `
		SELECT MIN("user"), season, COALESCE(SUM(points), 0) AS total
		FROM predictions
		WHERE season = $1
		GROUP BY LOWER("user"), season
		ORDER BY total DESC, MIN("user") ASC
		LIMIT $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*store.LeaderboardEntry
	for rows.Next() {
		e := &store.LeaderboardEntry{}
		if err := rows.Scan(&e.User, &e.Season, &e.Points); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AllTimeLeaderboard returns the best season totals across all seasons,
// the hall of fame view.
func (r *PredictionRepository) AllTimeLeaderboard(ctx context.Context, limit int) ([]*store.LeaderboardEntry, error) {
	query := `
		SELECT MIN("user"), season, COALESCE(SUM(points), 0) AS total
		FROM predictions
		GROUP BY LOWER("user"), season
		ORDER BY total DESC, MIN("user") ASC
		LIMIT $1
	`

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying all-time leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*store.LeaderboardEntry
	for rows.Next() {
		e := &store.LeaderboardEntry{}
		if err := rows.Scan(&e.User, &e.Season, &e.Points); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanPredictions(rows *sql.Rows) ([]*store.Prediction, error) {
	var preds []*store.Prediction
	for rows.Next() {
		p := &store.Prediction{}
		err := rows.Scan(
			&p.ID, &p.User, &p.Season, &p.Matchday, &p.Home, &p.Away,
			&p.PredHome, &p.PredAway, &p.Points, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning prediction: %w", err)
		}
		preds = append(preds, p)
	}
	return preds, rows.Err()
}
