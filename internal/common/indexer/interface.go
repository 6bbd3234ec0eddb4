package indexer

import (
	"context"

	"github.com/project-tktt/bayt-crawler/internal/domain"
)

// Indexer defines the interface for job indexing backends
type Indexer interface {
	// BulkIndex stores jobs, replacing earlier versions with the same ID
	BulkIndex(ctx context.Context, jobs []*domain.JobPost) error
	Close() error
}
