package index

import (
	"context"
	"errors"
	"time"
)

// PageSize is the fixed page size applied to every substring query.
const PageSize = 150

// Field selects which document field a substring query runs against.
type Field string

const (
	FieldTitle       Field = "title"
	FieldURL         Field = "url"
	FieldDescription Field = "description"
)

var ErrUnknownField = errors.New("unknown document field")

// UpsertResult reports what Upsert did with the submitted document.
type UpsertResult int

const (
	Created UpsertResult = iota
	Updated
	Unchanged
)

// Repository provides document persistence operations. Substring matching
// is case-insensitive by contract; the reference deployment inherited
// whatever collation its storage engine used, which this interface pins
// down explicitly.
type Repository interface {
	// Upsert inserts the document when the url is new, updates
	// title/description (and LastFetched) when content changed, and reports
	// Unchanged for an identical resubmission. The returned document is the
	// stored row after the operation; for Unchanged it carries the original
	// LastFetched.
	Upsert(ctx context.Context, url, title, description string, fetchedAt time.Time) (UpsertResult, *Document, error)
	// FindBySubstring returns the page'th window (0-based, PageSize wide) of
	// documents whose field contains needle.
	FindBySubstring(ctx context.Context, field Field, needle string, page int) ([]Document, error)
	// Count returns the total number of indexed documents.
	Count(ctx context.Context) (int64, error)
	// All returns every indexed document.
	All(ctx context.Context) ([]Document, error)
}
