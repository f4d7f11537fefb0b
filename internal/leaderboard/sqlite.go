package leaderboard

import (
	"context"

	"github.com/vovakirdan/timber/internal/storage"
)

// SQLiteBackend keeps boards in the local sqlite store.
type SQLiteBackend struct {
	store *storage.Store
}

// NewSQLiteBackend wraps store. A nil store yields an unconfigured backend.
func NewSQLiteBackend(store *storage.Store) *SQLiteBackend {
	return &SQLiteBackend{store: store}
}

func (b *SQLiteBackend) Configured() bool {
	return b != nil && b.store != nil
}

func (b *SQLiteBackend) Insert(ctx context.Context, e storage.ScoreEntry) error {
	_, err := b.store.SaveScore(ctx, e)
	return err
}

func (b *SQLiteBackend) Top(ctx context.Context, board string, order storage.Order, limit int) ([]storage.ScoreEntry, error) {
	return b.store.TopScores(ctx, board, order, limit)
}

func (b *SQLiteBackend) CountBetter(ctx context.Context, board string, order storage.Order, value float64) (int, error) {
	return b.store.CountBetter(ctx, board, order, value)
}
