package model

import "time"

// Folder names with special meaning to the cache.
const (
	// FolderInbox is the default folder and the scope of every search.
	FolderInbox = "Inbox"

	// FolderArchived is the folder a message lands in when it is
	// reported as archived by the mail provider.
	FolderArchived = "Archived"
)

// EmailRecord is the denormalized metadata kept for one message.
type EmailRecord struct {
	// ID is the provider-assigned message identifier.
	ID string `json:"id"`

	// Subject may be empty.
	Subject string `json:"subject"`

	// Sender is free-form, either "Name <addr>" or a bare address.
	Sender string `json:"sender"`

	// Date is the display-formatted date as supplied by the provider.
	// It is not normalized and sorts lexicographically.
	Date string `json:"date"`

	// Folder is the mailbox label, FolderInbox when unset.
	Folder string `json:"folder"`

	// Snippet is optional preview text.
	Snippet string `json:"snippet"`

	// SyncedAt is when the record was last written locally.
	SyncedAt time.Time `json:"synced_at"`
}

// SyncLogEntry records one ingest batch. Entries are append-only.
type SyncLogEntry struct {
	ID            int64     `json:"id"`
	SyncedAt      time.Time `json:"synced_at"`
	EmailsAdded   int       `json:"emails_added"`
	EmailsRemoved int       `json:"emails_removed"`
}

// SenderCount is one row of a per-sender ranking.
type SenderCount struct {
	Sender string `json:"sender" db:"sender"`
	Count  int    `json:"count" db:"count"`
}

// Stats summarizes the cache contents.
type Stats struct {
	InboxCount int `json:"inbox_count"`
	TotalCount int `json:"total_count"`

	// UniqueSendersAll counts distinct senders across every folder.
	UniqueSendersAll int `json:"unique_senders_all"`

	// UniqueSendersInboxOnly counts distinct senders among inbox records.
	UniqueSendersInboxOnly int `json:"unique_senders_inbox_only"`

	// LastSync is the time of the most recent sync log entry, nil if
	// no sync has been logged.
	LastSync *time.Time `json:"last_sync,omitempty"`
}

// UniqueSenderCount returns the all-folder distinct sender count.
func (s Stats) UniqueSenderCount() int {
	return s.UniqueSendersAll
}
