package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/project-tktt/bayt-crawler/internal/domain"
	"github.com/project-tktt/bayt-crawler/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterUnseenAndMarkSeen(t *testing.T) {
	ctx := context.Background()
	rdb := testutil.NewFakeRedis()
	d := NewDeduplicator(rdb, "job:seen", time.Hour)

	jobs := []domain.JobPost{{ID: "bayt-1"}, {ID: "bayt-2"}, {ID: "bayt-3"}}
	require.NoError(t, d.MarkSeen(ctx, domain.SourceBayt, "bayt-2"))

	fresh, err := d.FilterUnseen(ctx, domain.SourceBayt, jobs)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "bayt-1", fresh[0].ID)
	assert.Equal(t, "bayt-3", fresh[1].ID)

	assert.Contains(t, rdb.Values, "job:seen:bayt:bayt-2")
	assert.Equal(t, time.Hour, rdb.TTLs["job:seen:bayt:bayt-2"])
}

func TestDefaults(t *testing.T) {
	d := NewDeduplicator(testutil.NewFakeRedis(), "", 0)
	assert.Equal(t, "dedup:bayt:x", d.makeKey(domain.SourceBayt, "x"))
	assert.Equal(t, 30*24*time.Hour, d.defaultTTL)
}

func TestRedisErrorsAreWrapped(t *testing.T) {
	rdb := testutil.NewFakeRedis()
	rdb.Err = errors.New("connection refused")
	d := NewDeduplicator(rdb, "job:seen", time.Hour)

	_, err := d.IsSeen(context.Background(), domain.SourceBayt, "bayt-1")
	assert.ErrorContains(t, err, "redis exists")
	assert.ErrorIs(t, err, rdb.Err)

	err = d.MarkSeen(context.Background(), domain.SourceBayt, "bayt-1")
	assert.ErrorContains(t, err, "redis set")
}
