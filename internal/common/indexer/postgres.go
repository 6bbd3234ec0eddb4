package indexer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/project-tktt/bayt-crawler/internal/domain"
	"github.com/project-tktt/bayt-crawler/internal/logger"
)

// PostgresIndexer upserts jobs into a PostgreSQL table
type PostgresIndexer struct {
	db        *sql.DB
	tableName string
	log       logger.Logger
}

// NewPostgresIndexer opens the database and makes sure the jobs table exists
func NewPostgresIndexer(ctx context.Context, connStr, tableName string, log logger.Logger) (*PostgresIndexer, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	idx := NewPostgresIndexerWithDB(db, tableName, log)
	if err := idx.ensureTable(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure table: %w", err)
	}
	return idx, nil
}

// NewPostgresIndexerWithDB wraps an open database handle
func NewPostgresIndexerWithDB(db *sql.DB, tableName string, log logger.Logger) *PostgresIndexer {
	if tableName == "" {
		tableName = "bayt_jobs"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PostgresIndexer{db: db, tableName: tableName, log: log}
}

func (i *PostgresIndexer) ensureTable(ctx context.Context) error {
	_, err := i.db.ExecContext(ctx, createTableQuery(i.tableName))
	return err
}

func createTableQuery(table string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			site TEXT NOT NULL,
			title TEXT NOT NULL,
			company_name TEXT,
			job_url TEXT NOT NULL,
			city TEXT,
			state TEXT,
			country TEXT,
			description TEXT,
			job_type TEXT[],
			emails TEXT[],
			is_remote BOOLEAN,
			date_posted TIMESTAMP WITH TIME ZONE,
			crawled_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`, pq.QuoteIdentifier(table))
}

func upsertQuery(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (
			id, site, title, company_name, job_url,
			city, state, country, description, job_type,
			emails, is_remote, date_posted, crawled_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14, NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			company_name = EXCLUDED.company_name,
			job_url = EXCLUDED.job_url,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			country = EXCLUDED.country,
			description = EXCLUDED.description,
			job_type = EXCLUDED.job_type,
			emails = EXCLUDED.emails,
			is_remote = EXCLUDED.is_remote,
			date_posted = EXCLUDED.date_posted,
			crawled_at = EXCLUDED.crawled_at,
			updated_at = NOW()
	`, pq.QuoteIdentifier(table))
}

// rowArgs lists the upsert parameters of a job in column order
func rowArgs(job *domain.JobPost) []any {
	var city, state *string
	country := string(domain.CountryWorldwide)
	if job.Location != nil {
		city, state = job.Location.City, job.Location.State
		if job.Location.Country != "" {
			country = string(job.Location.Country)
		}
	}

	jobTypes := make([]string, 0, len(job.JobType))
	for _, jt := range job.JobType {
		jobTypes = append(jobTypes, string(jt))
	}
	emails := job.Emails
	if emails == nil {
		emails = []string{}
	}

	return []any{
		job.ID, string(job.Site), job.Title, job.CompanyName, job.JobURL,
		city, state, country, job.Description, pq.Array(jobTypes),
		pq.Array(emails), job.IsRemote, job.DatePosted, job.CrawledAt,
	}
}

// BulkIndex upserts jobs inside one transaction. Each row runs under its own
// savepoint, so a failing row is rolled back, logged and skipped without
// aborting the rest of the batch.
func (i *PostgresIndexer) BulkIndex(ctx context.Context, jobs []*domain.JobPost) error {
	if len(jobs) == 0 {
		return nil
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	failed, err := upsertRows(ctx, tx, i.tableName, jobs)
	if err != nil {
		return err
	}
	for id, rowErr := range failed {
		i.log.Error("Error indexing job", "id", id, "error", rowErr)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const rowSavepoint = "bulk_row"

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// upsertRows writes every job through tx and returns the per-row failures
// keyed by job ID. The returned error is set only when the transaction
// itself can no longer be used.
func upsertRows(ctx context.Context, tx execer, tableName string, jobs []*domain.JobPost) (map[string]error, error) {
	query := upsertQuery(tableName)
	failed := map[string]error{}

	for _, job := range jobs {
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+rowSavepoint); err != nil {
			return failed, fmt.Errorf("savepoint: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, rowArgs(job)...); err != nil {
			failed[job.ID] = err
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+rowSavepoint); rbErr != nil {
				return failed, fmt.Errorf("rollback to savepoint: %w", rbErr)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+rowSavepoint); err != nil {
			return failed, fmt.Errorf("release savepoint: %w", err)
		}
	}
	return failed, nil
}

// Close closes the database connection
func (i *PostgresIndexer) Close() error {
	return i.db.Close()
}
