package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExtractionJob is one persisted extraction run: what was asked for, which
// producer answered, and the full result document for later export.
type ExtractionJob struct {
	ID               uuid.UUID
	DocumentURL      string
	Method           string // "llm" | "heuristic"
	ItemCount        int
	ReconciledAmount float64
	Confidence       float64
	ResultJSON       []byte
	CreatedAt        time.Time
}

type ExtractionJobRepository interface {
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, job *ExtractionJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*ExtractionJob, error)
}

type extractionJobRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewExtractionJobRepository(pool *pgxpool.Pool, logger *slog.Logger) ExtractionJobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &extractionJobRepository{pool: pool, logger: logger}
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS extraction_jobs (
	id UUID PRIMARY KEY,
	document_url TEXT NOT NULL,
	method TEXT NOT NULL,
	item_count INT NOT NULL,
	reconciled_amount DOUBLE PRECISION NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	result_json JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func (r *extractionJobRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("ensure extraction_jobs schema: %w", err)
	}
	return nil
}

func (r *extractionJobRepository) Insert(ctx context.Context, job *ExtractionJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO extraction_jobs
			(id, document_url, method, item_count, reconciled_amount, confidence, result_json, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, job.DocumentURL, job.Method, job.ItemCount,
		job.ReconciledAmount, job.Confidence, job.ResultJSON, job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert extraction job: %w", err)
	}
	r.logger.Info("extraction job stored",
		"job_id", job.ID,
		"method", job.Method,
		"items", job.ItemCount,
	)
	return nil
}

func (r *extractionJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*ExtractionJob, error) {
	var job ExtractionJob
	err := r.pool.QueryRow(ctx,
		`SELECT id, document_url, method, item_count, reconciled_amount, confidence, result_json, created_at
		 FROM extraction_jobs WHERE id = $1`, id,
	).Scan(
		&job.ID, &job.DocumentURL, &job.Method, &job.ItemCount,
		&job.ReconciledAmount, &job.Confidence, &job.ResultJSON, &job.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get extraction job %s: %w", id, err)
	}
	return &job, nil
}
