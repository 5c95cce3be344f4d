package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memovault/memovault/internal/api"
	"github.com/memovault/memovault/internal/model"
	"github.com/memovault/memovault/internal/service"
	"github.com/memovault/memovault/internal/store/jsonfile"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	st, err := jsonfile.Open(filepath.Join(t.TempDir(), "memos.json"))
	require.NoError(t, err)
	ts := httptest.NewServer(api.NewRouter(service.New(st)))
	t.Cleanup(ts.Close)
	return New(ts.URL)
}

func intPtr(v int) *int { return &v }

func TestClientRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	emotion := "focused"
	created, err := c.CreateMemo(ctx, model.CreateMemoRequest{
		Content:    "sdk roundtrip",
		Tags:       []string{"sdk"},
		Importance: intPtr(4),
		Emotion:    &emotion,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 4, created.Importance)

	got, err := c.GetMemo(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "sdk roundtrip", got.Content)
	require.NotNil(t, got.Emotion)
	assert.Equal(t, "focused", *got.Emotion)

	newContent := "sdk roundtrip, revised"
	updated, err := c.UpdateMemo(ctx, created.ID, model.UpdateMemoRequest{Content: &newContent})
	require.NoError(t, err)
	assert.Equal(t, newContent, updated.Content)
	assert.Equal(t, []string{"sdk"}, updated.Tags)

	require.NoError(t, c.DeleteMemo(ctx, created.ID))

	_, err = c.GetMemo(ctx, created.ID)
	assert.True(t, model.IsNotFoundError(err), "404 maps back to NotFoundError, got %v", err)
}

func TestClientListAndSearch(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	a, err := c.CreateMemo(ctx, model.CreateMemoRequest{Content: "coffee break", Tags: []string{"diary"}})
	require.NoError(t, err)
	b, err := c.CreateMemo(ctx, model.CreateMemoRequest{Content: "deploy failure", Tags: []string{"ops"}, Importance: intPtr(5)})
	require.NoError(t, err)

	all, err := c.ListMemos(ctx, model.MemoFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)

	filtered, err := c.ListMemos(ctx, model.MemoFilter{MinImportance: intPtr(4), Limit: 10})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, b.ID, filtered[0].ID)

	hits, err := c.SearchMemos(ctx, "coffee", model.MemoFilter{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, a.ID, hits[0].ID)

	hits, err = c.SearchMemos(ctx, "", model.MemoFilter{Tags: []string{"ops"}})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, b.ID, hits[0].ID)
}

func TestClientErrorMapping(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.CreateMemo(ctx, model.CreateMemoRequest{Content: ""})
	var ve model.ValidationError
	require.ErrorAs(t, err, &ve, "400 maps back to ValidationError")
	assert.Equal(t, "content", ve.Field)

	_, err = c.GetMemo(ctx, "no-such-id")
	var nf model.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "no-such-id", nf.MemoID)
	assert.Equal(t, "memo no-such-id not found", err.Error())

	err = c.DeleteMemo(ctx, "no-such-id")
	assert.True(t, model.IsNotFoundError(err))

	_, err = c.ListMemos(ctx, model.MemoFilter{OrderBy: "bogus"})
	assert.True(t, model.IsValidationError(err))
}

func TestClientStats(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.CreateMemo(ctx, model.CreateMemoRequest{Content: "a", Tags: []string{"x"}, Importance: intPtr(5)})
	require.NoError(t, err)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCount)
	assert.Equal(t, []string{"x"}, stats.UniqueTags)
	assert.Equal(t, 1, stats.ImportanceDistribution[5])
}
