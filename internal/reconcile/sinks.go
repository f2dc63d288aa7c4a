package reconcile

import (
	"context"

	"github.com/fortuna/ligatipp/internal/store"
	"github.com/fortuna/ligatipp/internal/store/local"
	"github.com/fortuna/ligatipp/internal/store/repository"
)

// DatabaseSink adapts the cloud match repository to the Sink interface.
type DatabaseSink struct {
	repo *repository.MatchRepository
}

// NewDatabaseSink wraps the cloud database as a reconciliation sink.
func NewDatabaseSink(db *store.Database) *DatabaseSink {
	return &DatabaseSink{repo: repository.NewMatchRepository(db)}
}

func (s *DatabaseSink) Name() string { return "cloud" }

func (s *DatabaseSink) Get(ctx context.Context, key store.MatchKey) (*store.Match, error) {
	return s.repo.Get(ctx, key)
}

func (s *DatabaseSink) Upsert(ctx context.Context, m *store.Match) error {
	return s.repo.Upsert(ctx, m)
}

func (s *DatabaseSink) CountOpen(ctx context.Context, season string) (int, error) {
	return s.repo.CountOpen(ctx, season)
}

func (s *DatabaseSink) OpenMatchdays(ctx context.Context, season string) ([]int, error) {
	return s.repo.OpenMatchdays(ctx, season)
}

// FileSink adapts the local season-file store to the Sink interface.
type FileSink struct {
	fs *local.FileStore
}

// NewFileSink wraps the local file store as a reconciliation sink.
func NewFileSink(fs *local.FileStore) *FileSink {
	return &FileSink{fs: fs}
}

func (s *FileSink) Name() string { return "local" }

func (s *FileSink) Get(_ context.Context, key store.MatchKey) (*store.Match, error) {
	return s.fs.Get(key)
}

func (s *FileSink) Upsert(_ context.Context, m *store.Match) error {
	return s.fs.Upsert(m)
}

func (s *FileSink) CountOpen(_ context.Context, season string) (int, error) {
	return s.fs.CountOpen(season)
}

func (s *FileSink) OpenMatchdays(_ context.Context, season string) ([]int, error) {
	return s.fs.OpenMatchdays(season)
}
