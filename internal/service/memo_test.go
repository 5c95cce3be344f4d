package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memovault/memovault/internal/model"
	"github.com/memovault/memovault/internal/store/jsonfile"
)

func newTestService(t *testing.T) *MemoService {
	t.Helper()
	st, err := jsonfile.Open(filepath.Join(t.TempDir(), "memos.json"))
	require.NoError(t, err)
	return New(st)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	emotion := "excited"
	memoCtx := "pairing session"
	created, err := svc.CreateMemo(ctx, model.CreateMemoRequest{
		Content:    "learned about atomic renames",
		Tags:       []string{"til", "storage", "til"},
		Importance: intPtr(4),
		Emotion:    &emotion,
		Context:    &memoCtx,
		RelatedTo:  []string{"some-other-id"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "learned about atomic renames", created.Content)
	assert.Equal(t, []string{"til", "storage"}, created.Tags, "tags deduped, first-seen order kept")
	assert.Equal(t, 4, created.Importance)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, time.UTC, created.CreatedAt.Location())

	got, err := svc.GetMemo(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateMemo(ctx, model.CreateMemoRequest{Content: ""})
	assert.True(t, model.IsValidationError(err))

	_, err = svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "   "})
	assert.True(t, model.IsValidationError(err), "whitespace-only content is empty")

	_, err = svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "ok", Importance: intPtr(0)})
	assert.True(t, model.IsValidationError(err))

	_, err = svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "ok", Importance: intPtr(6)})
	assert.True(t, model.IsValidationError(err))
}

func TestCreateDefaultsToMidImportance(t *testing.T) {
	svc := newTestService(t)
	m, err := svc.CreateMemo(context.Background(), model.CreateMemoRequest{Content: "plain"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultImportance, m.Importance)
	assert.Equal(t, []string{}, m.Tags)
	assert.Equal(t, []string{}, m.RelatedTo)
}

func TestIdenticalContentGetsDistinctIDs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a, err := svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "same"})
	require.NoError(t, err)
	b, err := svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "same"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestUpdatePartialFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	emotion := "tired"
	created, err := svc.CreateMemo(ctx, model.CreateMemoRequest{
		Content: "original",
		Tags:    []string{"a", "b"},
		Emotion: &emotion,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateMemo(ctx, created.ID, model.UpdateMemoRequest{
		Importance: intPtr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "original", updated.Content, "omitted fields keep prior values")
	assert.Equal(t, []string{"a", "b"}, updated.Tags)
	assert.Equal(t, 5, updated.Importance)
	require.NotNil(t, updated.Emotion)
	assert.Equal(t, "tired", *updated.Emotion)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestUpdateReplacesTagSet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "x", Tags: []string{"old", "stale"}})
	require.NoError(t, err)

	updated, err := svc.UpdateMemo(ctx, created.ID, model.UpdateMemoRequest{Tags: &[]string{"fresh", "fresh"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, updated.Tags, "whole set replaced, deduped")
}

func TestUpdateAlwaysRefreshesUpdatedAt(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "x"})
	require.NoError(t, err)

	base := created.UpdatedAt
	svc.now = func() time.Time { return base.Add(time.Second) }

	// no visible field supplied, updated_at still advances
	updated, err := svc.UpdateMemo(ctx, created.ID, model.UpdateMemoRequest{})
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Second), updated.UpdatedAt)

	// updated_at never moves backwards under clock skew
	svc.now = func() time.Time { return base.Add(-time.Hour) }
	updated, err = svc.UpdateMemo(ctx, created.ID, model.UpdateMemoRequest{Content: strPtr("y")})
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(base.Add(time.Second)))
}

func TestUpdateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "x"})
	require.NoError(t, err)

	_, err = svc.UpdateMemo(ctx, created.ID, model.UpdateMemoRequest{Content: strPtr("  ")})
	assert.True(t, model.IsValidationError(err))

	_, err = svc.UpdateMemo(ctx, created.ID, model.UpdateMemoRequest{Importance: intPtr(9)})
	assert.True(t, model.IsValidationError(err))

	_, err = svc.UpdateMemo(ctx, "missing", model.UpdateMemoRequest{})
	assert.True(t, model.IsNotFoundError(err))

	// failed updates leave the memo untouched
	got, err := svc.GetMemo(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Content)
	assert.Equal(t, model.DefaultImportance, got.Importance)
}

func TestDeleteThenGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "doomed"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMemo(ctx, created.ID))

	_, err = svc.GetMemo(ctx, created.ID)
	assert.True(t, model.IsNotFoundError(err))

	err = svc.DeleteMemo(ctx, created.ID)
	assert.True(t, model.IsNotFoundError(err))
}

func TestDeleteDoesNotCascadeRelations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "target"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteMemo(ctx, a.ID))

	// a memo may reference an id that no longer exists
	c, err := svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "pointer", RelatedTo: []string{a.ID}})
	require.NoError(t, err)

	got, err := svc.GetMemo(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, got.RelatedTo, "dangling reference tolerated")
}

func seedScenario(t *testing.T, svc *MemoService) (a, b *model.Memo) {
	t.Helper()
	ctx := context.Background()
	var err error
	a, err = svc.CreateMemo(ctx, model.CreateMemoRequest{
		Content: "coffee break", Tags: []string{"diary"}, Importance: intPtr(3),
	})
	require.NoError(t, err)
	b, err = svc.CreateMemo(ctx, model.CreateMemoRequest{
		Content: "deploy failure", Tags: []string{"ops"}, Importance: intPtr(5),
	})
	require.NoError(t, err)
	return a, b
}

func TestScenarioSearchAndImportanceFilter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a, b := seedScenario(t, svc)

	hits, err := svc.SearchMemos(ctx, "coffee", model.MemoFilter{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, a.ID, hits[0].ID)

	out, err := svc.ListMemos(ctx, model.MemoFilter{MinImportance: intPtr(4)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, b.ID, out[0].ID)

	_, err = svc.UpdateMemo(ctx, a.ID, model.UpdateMemoRequest{Importance: intPtr(5)})
	require.NoError(t, err)

	out, err = svc.ListMemos(ctx, model.MemoFilter{MinImportance: intPtr(5)})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, a.ID, out[0].ID, "created_at ascending")
	assert.Equal(t, b.ID, out[1].ID)
}

func TestScenarioDeleteAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a, b := seedScenario(t, svc)

	require.NoError(t, svc.DeleteMemo(ctx, a.ID))

	_, err := svc.GetMemo(ctx, a.ID)
	assert.True(t, model.IsNotFoundError(err))

	out, err := svc.ListMemos(ctx, model.MemoFilter{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, b.ID, out[0].ID)
}

func TestEmptyQueryMatchesAll(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedScenario(t, svc)

	listed, err := svc.ListMemos(ctx, model.MemoFilter{})
	require.NoError(t, err)
	searched, err := svc.SearchMemos(ctx, "", model.MemoFilter{})
	require.NoError(t, err)
	assert.Equal(t, listed, searched)

	f := model.MemoFilter{Tags: []string{"ops"}}
	listed, err = svc.ListMemos(ctx, f)
	require.NoError(t, err)
	searched, err = svc.SearchMemos(ctx, "", f)
	require.NoError(t, err)
	assert.Equal(t, listed, searched)
}

func TestSearchMatchesTagsContextAndEmotion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	emotion := "Anxious"
	memoCtx := "Quarterly planning"
	m, err := svc.CreateMemo(ctx, model.CreateMemoRequest{
		Content: "budget numbers",
		Tags:    []string{"Finance"},
		Emotion: &emotion,
		Context: &memoCtx,
	})
	require.NoError(t, err)

	for _, q := range []string{"BUDGET", "finance", "quarterly", "anxious"} {
		hits, err := svc.SearchMemos(ctx, q, model.MemoFilter{})
		require.NoError(t, err)
		require.Len(t, hits, 1, "query %q", q)
		assert.Equal(t, m.ID, hits[0].ID)
	}

	hits, err := svc.SearchMemos(ctx, "no such text", model.MemoFilter{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestTagFilterUsesOrSemantics(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a, b := seedScenario(t, svc)

	out, err := svc.ListMemos(ctx, model.MemoFilter{Tags: []string{"diary", "ops"}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, a.ID, out[0].ID)
	assert.Equal(t, b.ID, out[1].ID)

	out, err = svc.ListMemos(ctx, model.MemoFilter{Tags: []string{"nonexistent"}})
	require.NoError(t, err)
	assert.Empty(t, out, "empty result is not an error")
}

func TestFiltersCombineWithAnd(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, b := seedScenario(t, svc)

	out, err := svc.ListMemos(ctx, model.MemoFilter{
		Tags:          []string{"diary", "ops"},
		MinImportance: intPtr(4),
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, b.ID, out[0].ID)
}

func TestEmotionFilterExactMatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	happy := "happy"
	m, err := svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "sunny day", Emotion: &happy})
	require.NoError(t, err)
	_, err = svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "no emotion"})
	require.NoError(t, err)

	out, err := svc.ListMemos(ctx, model.MemoFilter{Emotion: &happy})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, m.ID, out[0].ID)
}

func TestCreatedAtRangeFilterIsInclusive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	a, err := svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "first"})
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(48 * time.Hour) }
	b, err := svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "second"})
	require.NoError(t, err)

	out, err := svc.ListMemos(ctx, model.MemoFilter{
		CreatedAfter:  timePtr(base),
		CreatedBefore: timePtr(base),
	})
	require.NoError(t, err)
	require.Len(t, out, 1, "bounds are inclusive")
	assert.Equal(t, a.ID, out[0].ID)

	out, err = svc.ListMemos(ctx, model.MemoFilter{CreatedAfter: timePtr(base.Add(time.Hour))})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, b.ID, out[0].ID)
}

func TestOrderByImportance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mk := func(content string, importance int, at time.Time) *model.Memo {
		svc.now = func() time.Time { return at }
		m, err := svc.CreateMemo(ctx, model.CreateMemoRequest{Content: content, Importance: intPtr(importance)})
		require.NoError(t, err)
		return m
	}
	low := mk("low", 1, base)
	tieOld := mk("tie old", 4, base.Add(time.Minute))
	tieNew := mk("tie new", 4, base.Add(2*time.Minute))
	high := mk("high", 5, base.Add(3*time.Minute))

	out, err := svc.ListMemos(ctx, model.MemoFilter{OrderBy: model.OrderImportance})
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, high.ID, out[0].ID)
	assert.Equal(t, tieOld.ID, out[1].ID, "ties broken by created_at ascending")
	assert.Equal(t, tieNew.ID, out[2].ID)
	assert.Equal(t, low.ID, out[3].ID)
}

func TestListLimit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a, _ := seedScenario(t, svc)

	out, err := svc.ListMemos(ctx, model.MemoFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, a.ID, out[0].ID)
}

func TestFilterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.ListMemos(ctx, model.MemoFilter{MinImportance: intPtr(7)})
	assert.True(t, model.IsValidationError(err))

	_, err = svc.ListMemos(ctx, model.MemoFilter{OrderBy: "emotion"})
	assert.True(t, model.IsValidationError(err))

	_, err = svc.SearchMemos(ctx, "q", model.MemoFilter{Limit: -1})
	assert.True(t, model.IsValidationError(err))
}

func TestStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	happy := "happy"
	memoCtx := "retro"
	_, err := svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "a", Tags: []string{"x", "y"}, Importance: intPtr(5), Emotion: &happy})
	require.NoError(t, err)
	_, err = svc.CreateMemo(ctx, model.CreateMemoRequest{Content: "b", Tags: []string{"y"}, Context: &memoCtx})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCount)
	assert.Equal(t, 2, stats.TagsCount)
	assert.Equal(t, []string{"x", "y"}, stats.UniqueTags)
	assert.Equal(t, []string{"retro"}, stats.Contexts)
	assert.Equal(t, []string{"happy"}, stats.Emotions)
	assert.Equal(t, 1, stats.ImportanceDistribution[5])
	assert.Equal(t, 1, stats.ImportanceDistribution[model.DefaultImportance])
	assert.Equal(t, 0, stats.ImportanceDistribution[1])
}

func TestRestartKeepsListStable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memos.json")

	st, err := jsonfile.Open(path)
	require.NoError(t, err)
	svc := New(st)
	ctx := context.Background()
	a, b := seedScenario(t, svc)
	require.NoError(t, st.Close())

	st2, err := jsonfile.Open(path)
	require.NoError(t, err)
	svc2 := New(st2)

	out, err := svc2.ListMemos(ctx, model.MemoFilter{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, a.ID, out[0].ID)
	assert.Equal(t, b.ID, out[1].ID)
}
