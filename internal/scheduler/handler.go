package scheduler

import (
	"context"
	"fmt"

	"github.com/project-tktt/bayt-crawler/internal/domain"
	"github.com/project-tktt/bayt-crawler/internal/logger"
)

// SeenTracker filters out jobs that were already published
type SeenTracker interface {
	FilterUnseen(ctx context.Context, source domain.JobSource, jobs []domain.JobPost) ([]domain.JobPost, error)
	MarkSeen(ctx context.Context, source domain.JobSource, jobID string) error
}

// BatchPublisher hands jobs to the processing queue
type BatchPublisher interface {
	PublishBatch(ctx context.Context, jobs []domain.JobPost) error
}

// NewPublishHandler returns a Handler that queues unseen jobs and then marks
// them as seen. A job is only marked after its batch was published.
func NewPublishHandler(seen SeenTracker, pub BatchPublisher, log logger.Logger) Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(ctx context.Context, source domain.JobSource, resp domain.JobResponse) error {
		fresh, err := seen.FilterUnseen(ctx, source, resp.Jobs)
		if err != nil {
			return fmt.Errorf("dedup: %w", err)
		}
		if len(fresh) == 0 {
			log.Info("No unseen jobs", "source", source, "scraped", len(resp.Jobs))
			return nil
		}

		if err := pub.PublishBatch(ctx, fresh); err != nil {
			return fmt.Errorf("publish: %w", err)
		}

		for _, job := range fresh {
			if err := seen.MarkSeen(ctx, source, job.ID); err != nil {
				log.Warn("Mark seen error", "id", job.ID, "error", err)
			}
		}
		log.Info("Published jobs", "source", source, "new", len(fresh), "seen", len(resp.Jobs)-len(fresh))
		return nil
	}
}
