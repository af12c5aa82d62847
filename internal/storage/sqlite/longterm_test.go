package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/kontext/internal/core"
)

var now = time.Date(2025, 6, 12, 15, 0, 0, 0, time.UTC)

func testRepo(t *testing.T) *LongTermRepo {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "kontext.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewLongTermRepo(db)
}

func TestLongTermRepo_PutGet(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	loc := core.NewContextItem(core.TypeLocation, "seoul", 0.9, "turn-1", now)
	topic := core.NewContextItem(core.TypeTopic, "travel", 0.7, "turn-1", now.Add(time.Minute))
	require.NoError(t, repo.Put(ctx, "user-1", loc))
	require.NoError(t, repo.Put(ctx, "user-1", topic))
	require.NoError(t, repo.Put(ctx, "user-2", core.NewContextItem(core.TypeLocation, "busan", 0.8, "turn-9", now)))

	items, err := repo.Get(ctx, "user-1", nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	// Newest first.
	assert.Equal(t, topic.ID, items[0].ID)
	assert.Equal(t, loc.ID, items[1].ID)
	assert.Equal(t, "seoul", items[1].Value)
	assert.True(t, items[1].ExtractedAt.Equal(now))
}

func TestLongTermRepo_GetByType(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	require.NoError(t, repo.Put(ctx, "user-1", core.NewContextItem(core.TypeLocation, "seoul", 0.9, "turn-1", now)))
	require.NoError(t, repo.Put(ctx, "user-1", core.NewContextItem(core.TypeTopic, "travel", 0.7, "turn-1", now)))

	typ := core.TypeTopic
	items, err := repo.Get(ctx, "user-1", &typ)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, core.TypeTopic, items[0].Type)
}

func TestLongTermRepo_PutUpsertsSameID(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	item := core.NewContextItem(core.TypeLocation, "seoul", 0.6, "turn-1", now)
	require.NoError(t, repo.Put(ctx, "user-1", item))

	item.Value = "busan"
	item.Confidence = 0.9
	require.NoError(t, repo.Put(ctx, "user-1", item))

	items, err := repo.Get(ctx, "user-1", nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "busan", items[0].Value)
	assert.Equal(t, 0.9, items[0].Confidence)
}

func TestLongTermRepo_PutRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	bad := core.NewContextItem(core.TypeLocation, "", 0.9, "turn-1", now)
	err := repo.Put(ctx, "user-1", bad)
	assert.ErrorIs(t, err, core.ErrInvalidContextItem)
}

func TestLongTermRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	item := core.NewContextItem(core.TypeLocation, "seoul", 0.9, "turn-1", now)
	require.NoError(t, repo.Put(ctx, "user-1", item))

	// Wrong user is a no-op.
	require.NoError(t, repo.Delete(ctx, "user-2", item.ID))
	items, err := repo.Get(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, repo.Delete(ctx, "user-1", item.ID))
	items, err = repo.Get(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}
