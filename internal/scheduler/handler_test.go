package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/bayt-crawler/internal/common/dedup"
	"github.com/project-tktt/bayt-crawler/internal/domain"
	"github.com/project-tktt/bayt-crawler/internal/queue"
	"github.com/project-tktt/bayt-crawler/internal/testutil"
)

func TestPublishHandlerQueuesOnlyUnseenJobs(t *testing.T) {
	ctx := context.Background()
	rdb := testutil.NewFakeRedis()
	seen := dedup.NewDeduplicator(rdb, "job:seen", time.Hour)
	handler := NewPublishHandler(seen, queue.NewPublisher(rdb, "jobs:raw"), nil)

	first := domain.JobResponse{Jobs: []domain.JobPost{{ID: "bayt-1"}, {ID: "bayt-2"}}}
	require.NoError(t, handler(ctx, domain.SourceBayt, first))
	assert.Len(t, rdb.Lists["jobs:raw"], 2)

	second := domain.JobResponse{Jobs: []domain.JobPost{{ID: "bayt-2"}, {ID: "bayt-3"}}}
	require.NoError(t, handler(ctx, domain.SourceBayt, second))
	assert.Len(t, rdb.Lists["jobs:raw"], 3)

	require.NoError(t, handler(ctx, domain.SourceBayt, second))
	assert.Len(t, rdb.Lists["jobs:raw"], 3)
	assert.Contains(t, rdb.Values, "job:seen:bayt:bayt-3")
}

type failingPublisher struct{}

func (failingPublisher) PublishBatch(context.Context, []domain.JobPost) error {
	return errors.New("queue full")
}

func TestPublishHandlerDoesNotMarkUnpublishedJobs(t *testing.T) {
	rdb := testutil.NewFakeRedis()
	seen := dedup.NewDeduplicator(rdb, "job:seen", time.Hour)
	handler := NewPublishHandler(seen, failingPublisher{}, nil)

	err := handler(context.Background(), domain.SourceBayt, domain.JobResponse{Jobs: []domain.JobPost{{ID: "bayt-1"}}})
	assert.ErrorContains(t, err, "publish")
	assert.Empty(t, rdb.Values)
}
