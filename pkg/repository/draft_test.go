package repository

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/trendposter/pkg/domain"
)

func TestDraftRepository_Add(t *testing.T) {
	repos := setupTestDB(t, 0)
	ctx := context.Background()

	t.Run("text draft", func(t *testing.T) {
		d, err := repos.Drafts.Add(ctx, "hello world", nil)
		require.NoError(t, err)
		assert.Positive(t, d.ID)
		assert.Equal(t, "hello world", d.Text)
		assert.Equal(t, domain.StatusQueued, d.Status)
		assert.Nil(t, d.PostedAt)
		assert.Nil(t, d.RelevanceScore)
		assert.Nil(t, d.MatchedTrend)
		assert.Nil(t, d.Media)
		assert.False(t, d.CreatedAt.IsZero())
	})

	t.Run("media draft", func(t *testing.T) {
		d, err := repos.Drafts.Add(ctx, "", &domain.Media{Path: "/tmp/cat.jpg", Kind: domain.MediaPhoto})
		require.NoError(t, err)
		require.NotNil(t, d.Media)

		got, err := repos.Drafts.GetDraft(ctx, d.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Media)
		assert.Equal(t, "/tmp/cat.jpg", got.Media.Path)
		assert.Equal(t, domain.MediaPhoto, got.Media.Kind)
	})

	t.Run("exactly 280 characters accepted", func(t *testing.T) {
		_, err := repos.Drafts.Add(ctx, strings.Repeat("a", 280), nil)
		require.NoError(t, err)
	})

	t.Run("281 characters rejected", func(t *testing.T) {
		before, err := repos.Drafts.QueueSize(ctx)
		require.NoError(t, err)

		_, err = repos.Drafts.Add(ctx, strings.Repeat("a", 281), nil)
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))

		after, err := repos.Drafts.QueueSize(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after, "rejected draft must not change the queue")
	})

	t.Run("empty text without media rejected", func(t *testing.T) {
		_, err := repos.Drafts.Add(ctx, "", nil)
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestDraftRepository_AddQueueFull(t *testing.T) {
	repos := setupTestDB(t, 2)
	ctx := context.Background()

	_, err := repos.Drafts.Add(ctx, "one", nil)
	require.NoError(t, err)
	second, err := repos.Drafts.Add(ctx, "two", nil)
	require.NoError(t, err)

	_, err = repos.Drafts.Add(ctx, "three", nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Contains(t, err.Error(), "queue is full")

	// removing frees a slot
	ok, err := repos.Drafts.Remove(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = repos.Drafts.Add(ctx, "three", nil)
	require.NoError(t, err)
}

func TestDraftRepository_ListQueued(t *testing.T) {
	repos := setupTestDB(t, 0)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	repos.Drafts.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	empty, err := repos.Drafts.ListQueued(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	a, err := repos.Drafts.Add(ctx, "A", nil)
	require.NoError(t, err)
	b, err := repos.Drafts.Add(ctx, "B", nil)
	require.NoError(t, err)
	c, err := repos.Drafts.Add(ctx, "C", nil)
	require.NoError(t, err)

	drafts, err := repos.Drafts.ListQueued(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 3)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, []int64{drafts[0].ID, drafts[1].ID, drafts[2].ID})
	for _, d := range drafts {
		assert.Equal(t, domain.StatusQueued, d.Status)
	}

	// removed and posted drafts are excluded
	ok, err := repos.Drafts.Remove(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, repos.Drafts.MarkPosted(ctx, a.ID, domain.PostRecord{MatchedTrend: "AI", Score: 70}))

	drafts, err = repos.Drafts.ListQueued(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, c.ID, drafts[0].ID)
}

func TestDraftRepository_ListQueuedSameTimestamp(t *testing.T) {
	repos := setupTestDB(t, 0)
	ctx := context.Background()

	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	repos.Drafts.now = func() time.Time { return fixed }

	var ids []int64
	for _, text := range []string{"first", "second", "third"} {
		d, err := repos.Drafts.Add(ctx, text, nil)
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}

	drafts, err := repos.Drafts.ListQueued(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 3)
	for i, d := range drafts {
		assert.Equal(t, ids[i], d.ID, "ties broken by insertion order")
	}
}

func TestDraftRepository_Remove(t *testing.T) {
	repos := setupTestDB(t, 0)
	ctx := context.Background()

	d, err := repos.Drafts.Add(ctx, "to remove", nil)
	require.NoError(t, err)

	ok, err := repos.Drafts.Remove(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repos.Drafts.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRemoved, got.Status)

	// second remove is a no-op
	ok, err = repos.Drafts.Remove(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// unknown id
	ok, err = repos.Drafts.Remove(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, ok)

	size, err := repos.Drafts.QueueSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestDraftRepository_MarkPosted(t *testing.T) {
	repos := setupTestDB(t, 0)
	ctx := context.Background()

	postedAt := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

	d, err := repos.Drafts.Add(ctx, "AI is eating the world", nil)
	require.NoError(t, err)
	other, err := repos.Drafts.Add(ctx, "unrelated", nil)
	require.NoError(t, err)

	repos.Drafts.now = func() time.Time { return postedAt }
	rec := domain.PostRecord{
		MatchedTrend: "AI",
		Score:        85,
		Reasoning:    "strong match",
		Trends:       []string{"AI", "Football"},
		PostURL:      "https://x.com/i/status/123",
	}
	require.NoError(t, repos.Drafts.MarkPosted(ctx, d.ID, rec))

	got, err := repos.Drafts.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPosted, got.Status)
	require.NotNil(t, got.PostedAt)
	assert.True(t, postedAt.Equal(*got.PostedAt))
	require.NotNil(t, got.RelevanceScore)
	assert.Equal(t, 85, *got.RelevanceScore)
	require.NotNil(t, got.MatchedTrend)
	assert.Equal(t, "AI", *got.MatchedTrend)

	history, err := repos.Drafts.PostHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	entry := history[0]
	assert.Equal(t, d.ID, entry.DraftID)
	assert.Equal(t, "AI is eating the world", entry.Text)
	assert.Equal(t, []string{"AI", "Football"}, entry.Trends)
	assert.Equal(t, "strong match", entry.Reasoning)
	assert.Equal(t, 85, entry.RelevanceScore)
	assert.Equal(t, "https://x.com/i/status/123", entry.PostURL)
	assert.True(t, postedAt.Equal(entry.PostedAt))

	// other draft untouched
	size, err := repos.Drafts.QueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size)
	queued, err := repos.Drafts.ListQueued(ctx)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, other.ID, queued[0].ID)
}

func TestDraftRepository_MarkPostedErrors(t *testing.T) {
	repos := setupTestDB(t, 0)
	ctx := context.Background()

	t.Run("unknown draft", func(t *testing.T) {
		err := repos.Drafts.MarkPosted(ctx, 4242, domain.PostRecord{MatchedTrend: "AI"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("already posted", func(t *testing.T) {
		d, err := repos.Drafts.Add(ctx, "once", nil)
		require.NoError(t, err)
		require.NoError(t, repos.Drafts.MarkPosted(ctx, d.ID, domain.PostRecord{MatchedTrend: "AI", Score: 60}))

		err = repos.Drafts.MarkPosted(ctx, d.ID, domain.PostRecord{MatchedTrend: "AI", Score: 60})
		require.ErrorIs(t, err, domain.ErrNotQueued)

		history, err := repos.Drafts.PostHistory(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, history, 1, "no duplicate log entry")
	})

	t.Run("removed draft", func(t *testing.T) {
		d, err := repos.Drafts.Add(ctx, "gone", nil)
		require.NoError(t, err)
		ok, err := repos.Drafts.Remove(ctx, d.ID)
		require.NoError(t, err)
		require.True(t, ok)

		err = repos.Drafts.MarkPosted(ctx, d.ID, domain.PostRecord{MatchedTrend: "AI"})
		require.ErrorIs(t, err, domain.ErrNotQueued)
	})
}

func TestDraftRepository_MarkPostedConcurrent(t *testing.T) {
	repos := setupTestDB(t, 0)
	ctx := context.Background()

	d, err := repos.Drafts.Add(ctx, "race", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repos.Drafts.MarkPosted(ctx, d.ID, domain.PostRecord{MatchedTrend: "AI", Score: 50})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrNotQueued)
	}
	assert.Equal(t, 1, succeeded, "exactly one caller wins")

	history, err := repos.Drafts.PostHistory(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestDraftRepository_PostHistory(t *testing.T) {
	repos := setupTestDB(t, 0)
	ctx := context.Background()

	empty, err := repos.Drafts.PostHistory(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 4; i++ {
		d, err := repos.Drafts.Add(ctx, "post "+string(rune('a'+i)), nil)
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}
	for i, id := range ids {
		at := base.Add(time.Duration(i) * time.Hour)
		repos.Drafts.now = func() time.Time { return at }
		require.NoError(t, repos.Drafts.MarkPosted(ctx, id, domain.PostRecord{MatchedTrend: "T", Score: 50}))
	}

	history, err := repos.Drafts.PostHistory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, ids[3], history[0].DraftID, "newest first")
	assert.Equal(t, ids[2], history[1].DraftID)
	assert.Empty(t, history[0].Trends, "nil trends stored as empty list")

	// non-positive limit falls back to default
	all, err := repos.Drafts.PostHistory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestDraftRepository_ExpireOlderThan(t *testing.T) {
	repos := setupTestDB(t, 0)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	repos.Drafts.now = func() time.Time { return base }
	old, err := repos.Drafts.Add(ctx, "old", nil)
	require.NoError(t, err)

	repos.Drafts.now = func() time.Time { return base.Add(47 * time.Hour) }
	fresh, err := repos.Drafts.Add(ctx, "fresh", nil)
	require.NoError(t, err)

	repos.Drafts.now = func() time.Time { return base.Add(48*time.Hour + time.Minute) }
	expired, err := repos.Drafts.ExpireOlderThan(ctx, 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	got, err := repos.Drafts.GetDraft(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, got.Status)

	queued, err := repos.Drafts.ListQueued(ctx)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, fresh.ID, queued[0].ID)

	// expired drafts cannot be posted
	err = repos.Drafts.MarkPosted(ctx, old.ID, domain.PostRecord{MatchedTrend: "AI"})
	require.ErrorIs(t, err, domain.ErrNotQueued)
}

func TestDraftRepository_GetDraftNotFound(t *testing.T) {
	repos := setupTestDB(t, 0)
	_, err := repos.Drafts.GetDraft(context.Background(), 777)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNamesSQL(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		v, err := namesSQL{"AI", "Go"}.Value()
		require.NoError(t, err)
		assert.Equal(t, `["AI","Go"]`, v)

		v, err = namesSQL(nil).Value()
		require.NoError(t, err)
		assert.Equal(t, "[]", v)
	})

	t.Run("scan", func(t *testing.T) {
		var n namesSQL
		require.NoError(t, n.Scan(`["a","b"]`))
		assert.Equal(t, namesSQL{"a", "b"}, n)

		require.NoError(t, n.Scan([]byte(`["c"]`)))
		assert.Equal(t, namesSQL{"c"}, n)

		require.NoError(t, n.Scan(nil))
		assert.Empty(t, n)

		require.NoError(t, n.Scan(42))
		assert.Empty(t, n)

		assert.Error(t, n.Scan("not json"))
	})
}
