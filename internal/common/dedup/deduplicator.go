package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/project-tktt/bayt-crawler/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Deduplicator checks and tracks seen jobs using Redis
type Deduplicator struct {
	client     redis.Cmdable
	prefix     string
	defaultTTL time.Duration
}

// NewDeduplicator creates a new Redis-based deduplicator
func NewDeduplicator(client redis.Cmdable, prefix string, defaultTTL time.Duration) *Deduplicator {
	if prefix == "" {
		prefix = "dedup"
	}
	if defaultTTL == 0 {
		defaultTTL = 24 * time.Hour * 30 // 30 days default
	}
	return &Deduplicator{
		client:     client,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

// IsSeen checks if a job ID has been seen before
func (d *Deduplicator) IsSeen(ctx context.Context, source domain.JobSource, jobID string) (bool, error) {
	key := d.makeKey(source, jobID)
	exists, err := d.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return exists > 0, nil
}

// MarkSeen marks a job as seen with the default TTL
func (d *Deduplicator) MarkSeen(ctx context.Context, source domain.JobSource, jobID string) error {
	key := d.makeKey(source, jobID)
	err := d.client.Set(ctx, key, time.Now().Unix(), d.defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// FilterUnseen returns the jobs whose IDs are not marked as seen, preserving order.
// Jobs are not marked here; callers mark them once they are safely published.
func (d *Deduplicator) FilterUnseen(ctx context.Context, source domain.JobSource, jobs []domain.JobPost) ([]domain.JobPost, error) {
	fresh := make([]domain.JobPost, 0, len(jobs))
	for _, job := range jobs {
		seen, err := d.IsSeen(ctx, source, job.ID)
		if err != nil {
			return fresh, err
		}
		if !seen {
			fresh = append(fresh, job)
		}
	}
	return fresh, nil
}

func (d *Deduplicator) makeKey(source domain.JobSource, id string) string {
	return fmt.Sprintf("%s:%s:%s", d.prefix, source, id)
}
