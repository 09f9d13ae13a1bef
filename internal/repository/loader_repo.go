package repository

import (
	"context"
	"errors"

	"github.com/user/memorial-extractor/internal/entity"
)

var (
	// ErrFetchFailed wraps transport failures and non-success responses.
	ErrFetchFailed = errors.New("failed to fetch page")
	// ErrNavigationFailed is returned when a browser could not load the page.
	ErrNavigationFailed = errors.New("navigation failed")
	// ErrFetchTimeout is returned when loading the page exceeded its deadline.
	ErrFetchTimeout = errors.New("fetch timed out")
)

// DocumentLoader defines the contract for obtaining the raw markup of a memorial page.
type DocumentLoader interface {
	// Load fetches url and returns its body. Any failure wraps ErrFetchFailed.
	Load(ctx context.Context, url string) (*entity.RawDocument, error)
}
