package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/project-tktt/bayt-crawler/internal/domain"
	"github.com/project-tktt/bayt-crawler/internal/logger"
	"github.com/redis/go-redis/v9"
)

// Consumer consumes job posts from a Redis list
type Consumer struct {
	client    redis.Cmdable
	queueName string
	timeout   time.Duration
	log       logger.Logger
}

// NewConsumer creates a new queue consumer
func NewConsumer(client redis.Cmdable, queueName string, timeout time.Duration, log logger.Logger) *Consumer {
	if queueName == "" {
		queueName = "jobs:raw"
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Consumer{
		client:    client,
		queueName: queueName,
		timeout:   timeout,
		log:       log,
	}
}

// ConsumeBatch consumes up to maxBatch jobs from the queue.
// BRPOP blocks for the first item, RPOP fills the rest without waiting.
// An empty slice means the wait timed out. Once items have been popped they
// are always returned; a later RPOP failure only ends the batch early.
func (c *Consumer) ConsumeBatch(ctx context.Context, maxBatch int) ([]*domain.JobPost, error) {
	jobs := make([]*domain.JobPost, 0, maxBatch)

	result, err := c.client.BRPop(ctx, c.timeout, c.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return jobs, nil
		}
		return nil, fmt.Errorf("brpop: %w", err)
	}

	if len(result) >= 2 {
		if job := c.decode(result[1]); job != nil {
			jobs = append(jobs, job)
		}
	}

	for i := 1; i < maxBatch; i++ {
		result, err := c.client.RPop(ctx, c.queueName).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				c.log.Warn("RPOP failed, returning partial batch", "queue", c.queueName, "popped", len(jobs), "error", err)
			}
			break
		}
		if job := c.decode(result); job != nil {
			jobs = append(jobs, job)
		}
	}

	return jobs, nil
}

func (c *Consumer) decode(payload string) *domain.JobPost {
	var job domain.JobPost
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		c.log.Warn("Skipping malformed queue message", "queue", c.queueName, "error", err)
		return nil
	}
	return &job
}
