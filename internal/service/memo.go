// Package service implements the memo store's operation surface: validation,
// identity and timestamp management, tag normalization, filter semantics and
// keyword search. Persistence is delegated to a store.Store driver.
package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/memovault/memovault/internal/model"
	"github.com/memovault/memovault/internal/store"
)

// MemoService orchestrates memo use cases over a store driver.
type MemoService struct {
	store store.Store
	now   func() time.Time
}

// New returns a MemoService backed by s.
func New(s store.Store) *MemoService {
	return &MemoService{store: s, now: func() time.Time { return time.Now().UTC() }}
}

// CreateMemo validates the request, assigns id and timestamps, normalizes
// tags and persists the new memo. Identical content always yields a fresh id.
func (s *MemoService) CreateMemo(ctx context.Context, req model.CreateMemoRequest) (*model.Memo, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.NewValidationError("content", "must not be empty")
	}
	importance := model.DefaultImportance
	if req.Importance != nil {
		importance = *req.Importance
	}
	if err := validateImportance("importance", importance); err != nil {
		return nil, err
	}

	now := s.now()
	m := &model.Memo{
		ID:         uuid.New().String(),
		Content:    content,
		Tags:       normalizeTags(req.Tags),
		CreatedAt:  now,
		UpdatedAt:  now,
		Importance: importance,
		Emotion:    req.Emotion,
		RelatedTo:  emptyIfNil(req.RelatedTo),
		Context:    req.Context,
	}
	return s.store.Create(ctx, m)
}

// GetMemo returns a snapshot of the memo with the given id.
func (s *MemoService) GetMemo(ctx context.Context, id string) (*model.Memo, error) {
	return s.store.Get(ctx, id)
}

// ListMemos returns all memos matching the filter. Supplied predicates are
// combined with AND; an empty result is not an error.
func (s *MemoService) ListMemos(ctx context.Context, f model.MemoFilter) ([]*model.Memo, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	memos, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := memos[:0:0]
	for _, m := range memos {
		if matchesFilter(m, f) {
			out = append(out, m)
		}
	}
	return finishResult(out, f), nil
}

// UpdateMemo applies a partial update. Only fields present in the request
// change; a non-nil tag set replaces the previous set wholesale. UpdatedAt
// is refreshed on every successful call, even when nothing visible changed.
func (s *MemoService) UpdateMemo(ctx context.Context, id string, req model.UpdateMemoRequest) (*model.Memo, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, model.NewValidationError("content", "must not be empty")
		}
		m.Content = content
	}
	if req.Importance != nil {
		if err := validateImportance("importance", *req.Importance); err != nil {
			return nil, err
		}
		m.Importance = *req.Importance
	}
	if req.Tags != nil {
		m.Tags = normalizeTags(*req.Tags)
	}
	if req.Emotion != nil {
		m.Emotion = req.Emotion
	}
	if req.Context != nil {
		m.Context = req.Context
	}
	if req.RelatedTo != nil {
		m.RelatedTo = emptyIfNil(*req.RelatedTo)
	}

	// updated_at never moves backwards, even under clock skew.
	now := s.now()
	if now.Before(m.UpdatedAt) {
		now = m.UpdatedAt
	}
	m.UpdatedAt = now

	return s.store.Update(ctx, m)
}

// DeleteMemo removes the memo permanently. related_to references held by
// other memos are left in place; a dangling id is tolerated at read time.
func (s *MemoService) DeleteMemo(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// SearchMemos matches query case-insensitively as a substring against
// content, tags, context and emotion, then applies the same filters and
// ordering as ListMemos. An empty query matches every memo.
func (s *MemoService) SearchMemos(ctx context.Context, query string, f model.MemoFilter) ([]*model.Memo, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	memos, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := memos[:0:0]
	for _, m := range memos {
		if (q == "" || matchesQuery(m, q)) && matchesFilter(m, f) {
			out = append(out, m)
		}
	}
	return finishResult(out, f), nil
}

// Stats summarises the whole collection.
func (s *MemoService) Stats(ctx context.Context) (*model.MemoStats, error) {
	memos, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.MemoStats{
		TotalCount:             len(memos),
		UniqueTags:             []string{},
		Contexts:               []string{},
		Emotions:               []string{},
		ImportanceDistribution: map[int]int{},
	}
	for i := model.MinImportance; i <= model.MaxImportance; i++ {
		stats.ImportanceDistribution[i] = 0
	}

	tagSet := map[string]struct{}{}
	ctxSet := map[string]struct{}{}
	emoSet := map[string]struct{}{}
	for _, m := range memos {
		for _, t := range m.Tags {
			tagSet[t] = struct{}{}
		}
		if m.Context != nil && *m.Context != "" {
			ctxSet[*m.Context] = struct{}{}
		}
		if m.Emotion != nil && *m.Emotion != "" {
			emoSet[*m.Emotion] = struct{}{}
		}
		stats.ImportanceDistribution[m.Importance]++
	}
	stats.UniqueTags = sortedKeys(tagSet)
	stats.TagsCount = len(stats.UniqueTags)
	stats.Contexts = sortedKeys(ctxSet)
	stats.Emotions = sortedKeys(emoSet)
	return stats, nil
}

// --- helpers ---

func validateImportance(field string, v int) error {
	if v < model.MinImportance || v > model.MaxImportance {
		return model.NewValidationError(field, "must be between 1 and 5")
	}
	return nil
}

func validateFilter(f model.MemoFilter) error {
	if f.MinImportance != nil {
		if err := validateImportance("min_importance", *f.MinImportance); err != nil {
			return err
		}
	}
	switch f.OrderBy {
	case "", model.OrderCreatedAt, model.OrderImportance:
	default:
		return model.NewValidationError("order_by", "must be created_at or importance")
	}
	if f.Limit < 0 {
		return model.NewValidationError("limit", "must not be negative")
	}
	return nil
}

// normalizeTags collapses duplicates while preserving first-seen order and
// drops blank entries.
func normalizeTags(tags []string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func matchesFilter(m *model.Memo, f model.MemoFilter) bool {
	if len(f.Tags) > 0 {
		found := false
		for _, want := range f.Tags {
			for _, have := range m.Tags {
				if have == want {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinImportance != nil && m.Importance < *f.MinImportance {
		return false
	}
	if f.Emotion != nil {
		if m.Emotion == nil || *m.Emotion != *f.Emotion {
			return false
		}
	}
	if f.CreatedAfter != nil && m.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && m.CreatedAt.After(*f.CreatedBefore) {
		return false
	}
	return true
}

func matchesQuery(m *model.Memo, q string) bool {
	if strings.Contains(strings.ToLower(m.Content), q) {
		return true
	}
	for _, t := range m.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	if m.Context != nil && strings.Contains(strings.ToLower(*m.Context), q) {
		return true
	}
	if m.Emotion != nil && strings.Contains(strings.ToLower(*m.Emotion), q) {
		return true
	}
	return false
}

// finishResult applies the requested stable ordering and optional limit.
func finishResult(memos []*model.Memo, f model.MemoFilter) []*model.Memo {
	switch f.OrderBy {
	case model.OrderImportance:
		sort.SliceStable(memos, func(i, j int) bool {
			if memos[i].Importance != memos[j].Importance {
				return memos[i].Importance > memos[j].Importance
			}
			return memos[i].CreatedAt.Before(memos[j].CreatedAt)
		})
	default:
		sort.SliceStable(memos, func(i, j int) bool {
			return memos[i].CreatedAt.Before(memos[j].CreatedAt)
		})
	}
	if f.Limit > 0 && len(memos) > f.Limit {
		memos = memos[:f.Limit]
	}
	return memos
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
