// Package storetest holds a compliance suite every store driver must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/memovault/memovault/internal/model"
	"github.com/memovault/memovault/internal/store"
)

func newMemo(content string, tags []string, importance int, at time.Time) *model.Memo {
	return &model.Memo{
		ID:         uuid.New().String(),
		Content:    content,
		Tags:       tags,
		CreatedAt:  at,
		UpdatedAt:  at,
		Importance: importance,
		RelatedTo:  []string{},
	}
}

// Run exercises a minimal compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := newMemo("coffee break", []string{"diary"}, 3, base)
	b := newMemo("deploy failure", []string{"ops"}, 5, base.Add(time.Minute))

	if _, err := s.Create(ctx, a); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if _, err := s.Create(ctx, b); err != nil {
		t.Fatalf("Create b: %v", err)
	}

	got, err := s.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get a: %v", err)
	}
	if got.Content != "coffee break" || got.Importance != 3 {
		t.Fatalf("Get a: unexpected memo %+v", got)
	}
	if !got.CreatedAt.Equal(a.CreatedAt) {
		t.Fatalf("Get a: created_at drifted: want %v got %v", a.CreatedAt, got.CreatedAt)
	}

	// returned snapshots must not alias stored state
	got.Tags[0] = "mutated"
	again, err := s.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get a again: %v", err)
	}
	if again.Tags[0] != "diary" {
		t.Fatalf("stored memo mutated through returned snapshot")
	}

	if _, err := s.Get(ctx, "no-such-id"); !model.IsNotFoundError(err) {
		t.Fatalf("Get missing: want NotFoundError, got %v", err)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("List: want 2 memos, got %d", len(all))
	}
	if all[0].ID != a.ID || all[1].ID != b.ID {
		t.Fatalf("List: insertion order not preserved")
	}

	upd := a.Clone()
	upd.Content = "coffee break extended"
	upd.Importance = 5
	upd.UpdatedAt = base.Add(2 * time.Minute)
	if _, err := s.Update(ctx, upd); err != nil {
		t.Fatalf("Update a: %v", err)
	}
	got, err = s.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get updated a: %v", err)
	}
	if got.Content != "coffee break extended" || got.Importance != 5 {
		t.Fatalf("Update a: not applied: %+v", got)
	}
	if !got.CreatedAt.Equal(a.CreatedAt) {
		t.Fatalf("Update a: created_at changed")
	}

	missing := newMemo("ghost", nil, 1, base)
	if _, err := s.Update(ctx, missing); !model.IsNotFoundError(err) {
		t.Fatalf("Update missing: want NotFoundError, got %v", err)
	}

	if err := s.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete b: %v", err)
	}
	if _, err := s.Get(ctx, b.ID); !model.IsNotFoundError(err) {
		t.Fatalf("Get deleted b: want NotFoundError, got %v", err)
	}
	if err := s.Delete(ctx, b.ID); !model.IsNotFoundError(err) {
		t.Fatalf("Delete deleted b: want NotFoundError, got %v", err)
	}

	all, err = s.List(ctx)
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	if len(all) != 1 || all[0].ID != a.ID {
		t.Fatalf("List after delete: want only a, got %d memos", len(all))
	}

	// dangling related_to ids are stored verbatim, not an error
	c := newMemo("follow-up", nil, 2, base.Add(3*time.Minute))
	c.RelatedTo = []string{b.ID}
	if _, err := s.Create(ctx, c); err != nil {
		t.Fatalf("Create c: %v", err)
	}
	got, err = s.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get c: %v", err)
	}
	if len(got.RelatedTo) != 1 || got.RelatedTo[0] != b.ID {
		t.Fatalf("Get c: related_to not preserved: %+v", got.RelatedTo)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
