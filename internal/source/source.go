package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/mailcache/internal/model"
)

// AuthError indicates that authentication has failed or expired for a source.
type AuthError struct {
	SourceType SourceType
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.SourceType, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// SourceType identifies the kind of mail provider feeding the cache.
type SourceType string

const (
	SourceTypeEmail SourceType = "email"
)

// FetchOptions bounds a single fetch.
type FetchOptions struct {
	// Mailbox overrides the source's configured mailbox when set.
	Mailbox string

	// Since limits the fetch to messages received on or after this time.
	// The zero value fetches regardless of age.
	Since time.Time

	// Limit caps the number of records returned, keeping the most recent.
	Limit int
}

// FetchResult holds the records produced by one fetch.
type FetchResult struct {
	Records []model.EmailRecord

	// Total is the number of matching messages on the server before Limit
	// was applied.
	Total int
}

// Source is the inbound collaborator that supplies message metadata.
// Implementations only read from the provider; they never diff against
// the cache.
type Source interface {
	// Type returns the source type identifier.
	Type() SourceType

	// ValidateConnection verifies credentials and connectivity.
	// Returns a human-readable status message on success.
	ValidateConnection(ctx context.Context) (string, error)

	// FetchMessages retrieves metadata for recent messages.
	FetchMessages(ctx context.Context, opts FetchOptions) (*FetchResult, error)
}
