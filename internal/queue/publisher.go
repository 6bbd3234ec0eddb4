package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/project-tktt/bayt-crawler/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Publisher pushes job posts to a Redis list
type Publisher struct {
	client    redis.Cmdable
	queueName string
}

// NewPublisher creates a new queue publisher
func NewPublisher(client redis.Cmdable, queueName string) *Publisher {
	if queueName == "" {
		queueName = "jobs:raw"
	}
	return &Publisher{
		client:    client,
		queueName: queueName,
	}
}

// Publish pushes a single job to the queue
func (p *Publisher) Publish(ctx context.Context, job *domain.JobPost) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	if err := p.client.LPush(ctx, p.queueName, data).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}

	return nil
}

// PublishBatch pushes jobs in a single LPUSH so consumers see them in order
func (p *Publisher) PublishBatch(ctx context.Context, jobs []domain.JobPost) error {
	if len(jobs) == 0 {
		return nil
	}

	values := make([]any, 0, len(jobs))
	for i := range jobs {
		data, err := json.Marshal(&jobs[i])
		if err != nil {
			return fmt.Errorf("marshal job %s: %w", jobs[i].ID, err)
		}
		values = append(values, data)
	}

	if err := p.client.LPush(ctx, p.queueName, values...).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}

	return nil
}

// QueueLength returns the current queue length
func (p *Publisher) QueueLength(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, p.queueName).Result()
}
