package email

import "time"

// Envelope holds the parsed envelope data from an IMAP message, plus a
// short preview of its body.
type Envelope struct {
	MessageID string
	Subject   string
	From      string
	Date      time.Time
	Flags     []string // \Seen, \Flagged, \Answered, \Deleted
	UID       uint32
	Snippet   string
}

// Mailbox is the result of fetching from one selected mailbox.
type Mailbox struct {
	Name        string
	UIDValidity uint32
	Envelopes   []Envelope

	// Total is the number of messages that matched the search before
	// the fetch limit was applied.
	Total int
}
