package repository

import (
	"context"
	"errors"
	"time"

	"github.com/user/memorial-extractor/internal/entity"
)

var (
	// ErrSinkWriteFailed wraps any failure to persist the output record.
	ErrSinkWriteFailed = errors.New("failed to write record")
	// ErrRecordNotFound is returned by RecordArchive.FindByURL when nothing was stored for a URL.
	ErrRecordNotFound = errors.New("record not archived")
)

// RecordSink defines the contract for persisting the projected memorial record.
type RecordSink interface {
	// Write persists rec. rec is already projected to the output schema.
	Write(ctx context.Context, url string, rec *entity.Record) error
}

// ArchivedRecord is a record previously saved by a RecordArchive.
type ArchivedRecord struct {
	URL         string
	Record      *entity.Record
	ExtractedAt time.Time
}

// RecordArchive is a RecordSink that can also return what it stored.
type RecordArchive interface {
	RecordSink
	// FindByURL returns the last record stored for url.
	FindByURL(ctx context.Context, url string) (*ArchivedRecord, error)
}
