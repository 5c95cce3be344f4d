package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/memovault/memovault/internal/model"
	"github.com/memovault/memovault/internal/store"
	"github.com/memovault/memovault/internal/store/storetest"
)

func TestCompliance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open(filepath.Join(t.TempDir(), "memos.db"))
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		return s
	})
}

func TestRestartPreservesCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memos.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	memoCtx := "standup notes"
	m := &model.Memo{
		ID:         uuid.New().String(),
		Content:    "sqlite survives restarts",
		Tags:       []string{"db"},
		CreatedAt:  now,
		UpdatedAt:  now,
		Importance: 2,
		Context:    &memoCtx,
		RelatedTo:  []string{},
	}
	if _, err := s.Create(ctx, m); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s2.Close() }()

	got, err := s2.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Content != m.Content {
		t.Fatalf("content not preserved: %q", got.Content)
	}
	if got.Context == nil || *got.Context != memoCtx {
		t.Fatalf("context not preserved: %+v", got.Context)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at drifted: want %v got %v", now, got.CreatedAt)
	}
	if got.Emotion != nil {
		t.Fatalf("emotion should be absent, got %v", *got.Emotion)
	}
}
