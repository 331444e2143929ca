package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/mailcache/internal/model"
)

// SenderCounts ranks inbox senders by message count, highest first.
func (s *SQLiteStore) SenderCounts(
	ctx context.Context,
	limit int,
) ([]model.SenderCount, error) {
	const query = `
		SELECT COALESCE(sender, '') AS sender, COUNT(*) AS count
		FROM emails
		WHERE folder = ?
		GROUP BY sender
		ORDER BY count DESC, sender
		LIMIT ?`

	counts := []model.SenderCount{}
	err := s.db.SelectContext(ctx, &counts, query,
		model.FolderInbox, limitOrDefault(limit, DefaultTopSendersLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("counting senders: %w", err)
	}
	return counts, nil
}

// ExternalSenders ranks inbox senders whose address does not end with
// "@"+internalDomain. The suffix comparison is exact and case-sensitive.
// An empty internalDomain falls back to the store's configured domain.
func (s *SQLiteStore) ExternalSenders(
	ctx context.Context,
	internalDomain string,
	limit int,
) ([]model.SenderCount, error) {
	domain := strings.TrimPrefix(strings.TrimSpace(internalDomain), "@")
	if domain == "" {
		domain = s.internalDomain
	}
	if domain == "" {
		return nil, &ValidationError{Field: "internal domain", Reason: "not configured"}
	}

	const query = `
		SELECT COALESCE(sender, '') AS sender, COUNT(*) AS count
		FROM emails
		WHERE folder = ?1 AND substr(sender, -length(?2)) <> ?2
		GROUP BY sender
		ORDER BY count DESC, sender
		LIMIT ?3`

	counts := []model.SenderCount{}
	err := s.db.SelectContext(ctx, &counts, query,
		model.FolderInbox, "@"+domain, limitOrDefault(limit, DefaultExternalLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("counting external senders: %w", err)
	}
	return counts, nil
}
