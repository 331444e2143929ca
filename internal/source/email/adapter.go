package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/google/uuid"

	"github.com/nhle/mailcache/internal/model"
	"github.com/nhle/mailcache/internal/source"
)

// DisplayDateLayout is how message dates are rendered into EmailRecord.Date.
// Full month names keep month-name searches working against the cache.
const DisplayDateLayout = "Monday, January 2, 2006 3:04 PM"

// fallbackIDNamespace seeds IDs for messages that lack a Message-ID.
var fallbackIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailcache:imap"))

// Adapter implements source.Source for an IMAP mailbox.
type Adapter struct {
	imapClient *IMAPClient
	sourceID   string
	username   string
	mailbox    string
}

// NewAdapter creates a new email source adapter for cfg, authenticating
// with password.
func NewAdapter(cfg model.SourceConfig, password string) *Adapter {
	mailbox := cfg.Mailbox
	if mailbox == "" {
		mailbox = model.DefaultMailbox
	}
	return &Adapter{
		imapClient: NewIMAPClient(
			cfg.Host, cfg.Port, cfg.Username, password, cfg.TLS,
		),
		sourceID: cfg.ID,
		username: cfg.Username,
		mailbox:  mailbox,
	}
}

// Type returns the source type identifier for Email.
func (a *Adapter) Type() source.SourceType {
	return source.SourceTypeEmail
}

// ValidateConnection verifies IMAP credentials by connecting,
// authenticating, and selecting the configured mailbox. Returns the
// username on success.
func (a *Adapter) ValidateConnection(
	ctx context.Context,
) (string, error) {
	client, err := a.imapClient.Connect(ctx)
	if err != nil {
		return "", fmt.Errorf("validating email connection: %w", err)
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select(a.mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return "", fmt.Errorf("selecting %s: %w", a.mailbox, err)
	}

	return a.username, nil
}

// FetchMessages retrieves recent messages from the mailbox and maps them
// to cache records.
func (a *Adapter) FetchMessages(
	ctx context.Context,
	opts source.FetchOptions,
) (*source.FetchResult, error) {
	mailbox := opts.Mailbox
	if mailbox == "" {
		mailbox = a.mailbox
	}

	fetched, err := a.imapClient.FetchMailbox(ctx, mailbox, opts.Since, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetching email items: %w", err)
	}

	records := make([]model.EmailRecord, 0, len(fetched.Envelopes))
	for _, env := range fetched.Envelopes {
		records = append(records, a.envelopeToRecord(env, fetched.Name, fetched.UIDValidity))
	}

	return &source.FetchResult{
		Records: records,
		Total:   fetched.Total,
	}, nil
}

// envelopeToRecord converts an Envelope to a model.EmailRecord.
func (a *Adapter) envelopeToRecord(
	env Envelope, mailbox string, uidValidity uint32,
) model.EmailRecord {
	return model.EmailRecord{
		ID:      a.recordID(env, mailbox, uidValidity),
		Subject: env.Subject,
		Sender:  env.From,
		Date:    formatDisplayDate(env.Date),
		Folder:  folderLabel(mailbox),
		Snippet: env.Snippet,
	}
}

// recordID prefers the Message-ID. Without one, it derives a stable UUID
// from the account, mailbox, UIDVALIDITY, and UID so repeated fetches of
// the same message upsert the same row.
func (a *Adapter) recordID(env Envelope, mailbox string, uidValidity uint32) string {
	if id := strings.Trim(env.MessageID, "<> \t"); id != "" {
		return id
	}
	name := fmt.Sprintf("%s/%s/%d/%d", a.username, mailbox, uidValidity, env.UID)
	return uuid.NewSHA1(fallbackIDNamespace, []byte(name)).String()
}

// formatDisplayDate renders t with DisplayDateLayout, or "" when unknown.
func formatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DisplayDateLayout)
}

// folderLabel maps an IMAP mailbox name to a cache folder. INBOX is
// case-insensitive per RFC 3501 and becomes model.FolderInbox.
func folderLabel(mailbox string) string {
	if strings.EqualFold(mailbox, "INBOX") {
		return model.FolderInbox
	}
	return mailbox
}
