package store

import (
	"context"

	"github.com/memovault/memovault/internal/model"
)

// Store exposes persistence operations required by the memo service.
// Implementations live under internal/store/<driver>/ (e.g., jsonfile, sqlite).
//
// Implementations persist complete records and report misses with
// model.NotFoundError and container failures with model.StorageError.
// Mutations must be atomic with respect to the durable container: a crash
// mid-write never leaves a partially applied change on disk.
type Store interface {
	Create(ctx context.Context, m *model.Memo) (*model.Memo, error)
	Get(ctx context.Context, id string) (*model.Memo, error)
	// List returns every memo in insertion order.
	List(ctx context.Context) ([]*model.Memo, error)
	Update(ctx context.Context, m *model.Memo) (*model.Memo, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
