package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/user/memorial-extractor/internal/entity"
	"github.com/user/memorial-extractor/internal/repository"
)

// Schema creates the archive table. The record column is json, not jsonb,
// so the stored column order survives a round trip.
const Schema = `
CREATE TABLE IF NOT EXISTS memorial_records (
	url          TEXT PRIMARY KEY,
	memorial_id  TEXT NOT NULL DEFAULT '',
	full_name    TEXT NOT NULL DEFAULT '',
	record       JSON NOT NULL,
	extracted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// DB is the subset of *pgxpool.Pool used by the archive.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RecordArchiveImpl provides a concrete implementation for the RecordArchive interface using PostgreSQL.
type RecordArchiveImpl struct {
	db     DB
	logger *zap.Logger
	now    func() time.Time
}

// NewRecordArchive creates a new instance of RecordArchiveImpl.
func NewRecordArchive(db DB, logger *zap.Logger) *RecordArchiveImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordArchiveImpl{db: db, logger: logger, now: time.Now}
}

// EnsureSchema creates the archive table if it does not exist yet.
func (r *RecordArchiveImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create memorial_records: %w", err)
	}
	return nil
}

// Write stores or replaces the record for url.
func (r *RecordArchiveImpl) Write(ctx context.Context, url string, rec *entity.Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode record: %v", repository.ErrSinkWriteFailed, err)
	}

	query := `
		INSERT INTO memorial_records (url, memorial_id, full_name, record, extracted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (url) DO UPDATE SET
			memorial_id = EXCLUDED.memorial_id,
			full_name = EXCLUDED.full_name,
			record = EXCLUDED.record,
			extracted_at = EXCLUDED.extracted_at;
	`
	_, err = r.db.Exec(ctx, query,
		url,
		textOf(rec.Get("memorial_id")),
		textOf(rec.Get(entity.KeyFullName)),
		doc,
		r.now(),
	)
	if err != nil {
		return fmt.Errorf("%w: archive %s: %v", repository.ErrSinkWriteFailed, url, err)
	}
	r.logger.Debug("Record archived", zap.String("url", url))
	return nil
}

// FindByURL retrieves the archived record for url.
func (r *RecordArchiveImpl) FindByURL(ctx context.Context, url string) (*repository.ArchivedRecord, error) {
	query := `
		SELECT url, record, extracted_at
		FROM memorial_records
		WHERE url = $1;
	`
	var (
		archived repository.ArchivedRecord
		doc      []byte
	)
	err := r.db.QueryRow(ctx, query, url).Scan(&archived.URL, &doc, &archived.ExtractedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load archived record: %w", err)
	}

	rec := entity.NewRecord()
	if err := json.Unmarshal(doc, rec); err != nil {
		return nil, fmt.Errorf("decode archived record: %w", err)
	}
	archived.Record = rec
	return &archived, nil
}

// textOf renders an identifier column value. Integral ids come back from the
// payload as int64 and are stored as their decimal text.
func textOf(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
