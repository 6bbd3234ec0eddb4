package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/project-tktt/bayt-crawler/internal/domain"
	"github.com/project-tktt/bayt-crawler/internal/logger"
)

const indexMapping = `{
	"settings": {
		"analysis": {
			"analyzer": {
				"folded": {
					"type": "custom",
					"tokenizer": "standard",
					"filter": ["lowercase", "asciifolding"]
				}
			}
		}
	},
	"mappings": {
		"properties": {
			"id": {"type": "keyword"},
			"site": {"type": "keyword"},
			"title": {
				"type": "text",
				"analyzer": "folded",
				"fields": {"keyword": {"type": "keyword"}}
			},
			"company_name": {"type": "text", "analyzer": "folded", "fields": {"keyword": {"type": "keyword"}}},
			"job_url": {"type": "keyword"},
			"location": {
				"properties": {
					"city": {"type": "keyword"},
					"state": {"type": "keyword"},
					"country": {"type": "keyword"}
				}
			},
			"description": {"type": "text", "analyzer": "folded"},
			"job_type": {"type": "keyword"},
			"emails": {"type": "keyword"},
			"is_remote": {"type": "boolean"},
			"date_posted": {"type": "date"},
			"crawled_at": {"type": "date"}
		}
	}
}`

// ElasticsearchIndexer indexes jobs to Elasticsearch
type ElasticsearchIndexer struct {
	client    *elasticsearch.Client
	indexName string
	log       logger.Logger
}

// NewElasticsearchIndexer creates a client and checks that the cluster answers
func NewElasticsearchIndexer(ctx context.Context, addresses []string, indexName string, log logger.Logger) (*ElasticsearchIndexer, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("es error: %s", res.Status())
	}

	if indexName == "" {
		indexName = "jobs"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ElasticsearchIndexer{
		client:    client,
		indexName: indexName,
		log:       log,
	}, nil
}

// BulkIndex indexes multiple jobs at once. Per-document failures are logged.
func (i *ElasticsearchIndexer) BulkIndex(ctx context.Context, jobs []*domain.JobPost) error {
	if len(jobs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, job := range jobs {
		docBytes, err := json.Marshal(job)
		if err != nil {
			i.log.Error("Error marshaling job", "id", job.ID, "error", err)
			continue
		}

		meta := map[string]any{
			"index": map[string]any{
				"_index": i.indexName,
				"_id":    job.ID,
			},
		}
		metaBytes, _ := json.Marshal(meta)
		buf.Write(metaBytes)
		buf.WriteByte('\n')
		buf.Write(docBytes)
		buf.WriteByte('\n')
	}

	res, err := i.client.Bulk(bytes.NewReader(buf.Bytes()), i.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.Status())
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
				Error  struct {
					Type   string `json:"type"`
					Reason string `json:"reason"`
				} `json:"error"`
			} `json:"index"`
		} `json:"items"`
	}

	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return fmt.Errorf("parse bulk response: %w", err)
	}

	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			if item.Index.Status >= 400 {
				i.log.Error("Bulk index error", "id", item.Index.ID,
					"type", item.Index.Error.Type, "reason", item.Index.Error.Reason)
			}
		}
	}

	return nil
}

// EnsureIndex creates the index with its mapping if it doesn't exist
func (i *ElasticsearchIndexer) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.indexName}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = i.client.Indices.Create(
		i.indexName,
		i.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		i.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index error: %s", res.Status())
	}

	return nil
}

// Close is a no-op; the HTTP transport needs no teardown
func (i *ElasticsearchIndexer) Close() error {
	return nil
}
