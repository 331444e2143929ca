package email

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailcache/internal/model"
	"github.com/nhle/mailcache/internal/source"
)

func newTestAdapter() *Adapter {
	return NewAdapter(model.SourceConfig{
		ID:       "work",
		Host:     "imap.example.com",
		Port:     "993",
		Username: "me@example.com",
		TLS:      true,
	}, "secret")
}

func TestNewAdapter_Defaults(t *testing.T) {
	a := newTestAdapter()

	assert.Equal(t, source.SourceTypeEmail, a.Type())
	assert.Equal(t, model.DefaultMailbox, a.mailbox)
	assert.Equal(t, "imap.example.com", a.imapClient.host)
	assert.True(t, a.imapClient.tls)
}

func TestEnvelopeToRecord(t *testing.T) {
	a := newTestAdapter()
	date := time.Date(2025, time.October, 1, 14, 5, 0, 0, time.UTC)

	rec := a.envelopeToRecord(Envelope{
		MessageID: "<abc123@mail.example.com>",
		Subject:   "Quarterly numbers",
		From:      "CFO <cfo@example.com>",
		Date:      date,
		UID:       42,
		Snippet:   "Please review",
	}, "INBOX", 7)

	assert.Equal(t, model.EmailRecord{
		ID:      "abc123@mail.example.com",
		Subject: "Quarterly numbers",
		Sender:  "CFO <cfo@example.com>",
		Date:    "Wednesday, October 1, 2025 2:05 PM",
		Folder:  model.FolderInbox,
		Snippet: "Please review",
	}, rec)
}

func TestRecordID_FallbackIsStable(t *testing.T) {
	a := newTestAdapter()
	env := Envelope{UID: 9}

	first := a.recordID(env, "INBOX", 100)
	second := a.recordID(env, "INBOX", 100)
	assert.Equal(t, first, second)

	_, err := uuid.Parse(first)
	require.NoError(t, err)

	assert.NotEqual(t, first, a.recordID(env, "INBOX", 101))
	assert.NotEqual(t, first, a.recordID(Envelope{UID: 10}, "INBOX", 100))
	assert.NotEqual(t, first, a.recordID(env, "Archive", 100))
}

func TestFolderLabel(t *testing.T) {
	assert.Equal(t, model.FolderInbox, folderLabel("INBOX"))
	assert.Equal(t, model.FolderInbox, folderLabel("inbox"))
	assert.Equal(t, "Archive", folderLabel("Archive"))
	assert.Equal(t, "[Gmail]/All Mail", folderLabel("[Gmail]/All Mail"))
}

func TestFormatDisplayDate(t *testing.T) {
	assert.Empty(t, formatDisplayDate(time.Time{}))
	assert.Equal(t,
		"Monday, December 1, 2025 9:00 AM",
		formatDisplayDate(time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)),
	)
}

func TestFormatSender(t *testing.T) {
	assert.Equal(t, "a@x.com", formatSender("", "a@x.com"))
	assert.Equal(t, "Alice <a@x.com>", formatSender(" Alice ", "a@x.com"))
	assert.Equal(t, "Alice", formatSender("Alice", ""))
}
