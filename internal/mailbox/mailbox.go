// Package mailbox fetches retailer report attachments from a Gmail
// inbox and sends operator notifications.
package mailbox

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/retailsync/internal/enrich"
)

// FetchOptions selects which messages to pull and what to do with them.
type FetchOptions struct {
	// Label is the mailbox label the retailer's reports arrive under.
	Label string
	// Criteria narrows the search within the label. Empty means
	// "is:unread".
	Criteria string
	// Extensions whitelists attachment file extensions, without the dot.
	Extensions []string
	// MarkSeen removes the UNREAD label after a message is processed.
	MarkSeen bool
}

// Notification is a plain-text email, used to report parse failures to
// the operators watching the pipeline.
type Notification struct {
	From    string
	To      string
	Cc      string
	Subject string
	Body    string
}

// Service is the mail surface the extraction engine depends on.
type Service interface {
	// FetchAttachments downloads every matching attachment of every
	// unread message under the label and returns one Source per file,
	// LocalPath set to the downloaded copy.
	FetchAttachments(ctx context.Context, opts FetchOptions) ([]enrich.Source, error)
	// SendNotification sends a plain-text email from the service account.
	SendNotification(ctx context.Context, n Notification) error
}

// extensionAllowed reports whether name's extension is in the
// whitelist. An empty whitelist allows everything.
func extensionAllowed(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, allowed := range extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
