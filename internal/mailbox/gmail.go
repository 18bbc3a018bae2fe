package mailbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/leapstack-labs/retailsync/internal/enrich"
)

// Gmail talks to the Gmail API on behalf of the reports inbox.
type Gmail struct {
	svc         *gmail.Service
	downloadDir string
	logger      *slog.Logger
}

var _ Service = (*Gmail)(nil)

// NewGmail builds a client from OAuth application credentials and a
// previously issued user token, both as JSON. The token must carry a
// refresh token; the client refreshes access tokens on its own.
func NewGmail(ctx context.Context, credentialsJSON, tokenJSON []byte, downloadDir string, logger *slog.Logger) (*Gmail, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg, err := google.ConfigFromJSON(credentialsJSON,
		gmail.GmailReadonlyScope, gmail.GmailModifyScope, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail credentials: %w", err)
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(tokenJSON, tok); err != nil {
		return nil, fmt.Errorf("failed to parse mail token: %w", err)
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create mail service: %w", err)
	}
	return &Gmail{svc: svc, downloadDir: downloadDir, logger: logger}, nil
}

// FetchAttachments implements Service.
func (g *Gmail) FetchAttachments(ctx context.Context, opts FetchOptions) ([]enrich.Source, error) {
	if err := g.checkLabel(ctx, opts.Label); err != nil {
		return nil, err
	}

	criteria := opts.Criteria
	if criteria == "" {
		criteria = "is:unread"
	}
	query := fmt.Sprintf("in:%s %s", opts.Label, criteria)
	list, err := g.svc.Users.Messages.List("me").Q(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search mailbox: %w", err)
	}
	g.logger.Info("searched mailbox", "label", opts.Label, "matches", len(list.Messages))

	var out []enrich.Source
	for _, ref := range list.Messages {
		msg, err := g.svc.Users.Messages.Get("me", ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch message %s: %w", ref.Id, err)
		}
		src := headerSource(msg)

		for _, part := range attachmentParts(msg.Payload) {
			if !extensionAllowed(part.Filename, opts.Extensions) {
				g.logger.Info("skipping attachment, unexpected format", "file", part.Filename)
				continue
			}
			localPath, ok, err := g.download(ctx, msg.Id, part, src.Timestamp)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			s := src
			s.LocalPath = localPath
			out = append(out, s)
		}

		if opts.MarkSeen {
			if err := g.markSeen(ctx, msg.Id); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// download saves one attachment as {timestamp}_{filename} under the
// download directory. A file already on disk is not rewritten and is
// not reported as a new delivery.
func (g *Gmail) download(ctx context.Context, messageID string, part *gmail.MessagePart, timestamp int64) (string, bool, error) {
	if err := os.MkdirAll(g.downloadDir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create download dir: %w", err)
	}

	data := part.Body.Data
	if data == "" && part.Body.AttachmentId != "" {
		att, err := g.svc.Users.Messages.Attachments.Get("me", messageID, part.Body.AttachmentId).Context(ctx).Do()
		if err != nil {
			return "", false, fmt.Errorf("failed to fetch attachment %s: %w", part.Filename, err)
		}
		data = att.Data
	}
	raw, err := decodeBody(data)
	if err != nil {
		return "", false, fmt.Errorf("failed to decode attachment %s: %w", part.Filename, err)
	}

	localPath := filepath.Join(g.downloadDir, fmt.Sprintf("%d_%s", timestamp, part.Filename))
	if _, err := os.Stat(localPath); err == nil {
		g.logger.Info("file already exists, skipping download", "path", localPath)
		return "", false, nil
	}
	if err := os.WriteFile(localPath, raw, 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write attachment: %w", err)
	}
	g.logger.Info("downloaded attachment", "path", localPath)
	return localPath, true, nil
}

// SendNotification implements Service.
func (g *Gmail) SendNotification(ctx context.Context, n Notification) error {
	msg := &gmail.Message{Raw: buildRawMessage(n)}
	sent, err := g.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	g.logger.Info("sent notification", "message_id", sent.Id, "to", n.To)
	return nil
}

// checkLabel verifies the search label exists in the mailbox, matching
// label names case-sensitively the way the mail service stores them.
func (g *Gmail) checkLabel(ctx context.Context, label string) error {
	labels, err := g.svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to list labels: %w", err)
	}
	for _, l := range labels.Labels {
		if l.Name == label {
			return nil
		}
	}
	return fmt.Errorf("unknown mailbox label %q", label)
}

func (g *Gmail) markSeen(ctx context.Context, messageID string) error {
	g.logger.Info("marking message as seen", "message_id", messageID)
	req := &gmail.ModifyMessageRequest{RemoveLabelIds: []string{"UNREAD"}}
	if _, err := g.svc.Users.Messages.Modify("me", messageID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to mark message %s as seen: %w", messageID, err)
	}
	return nil
}

// headerSource extracts provenance from the message headers. Header
// names are matched case-insensitively.
func headerSource(msg *gmail.Message) enrich.Source {
	src := enrich.Source{MessageID: msg.Id}
	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "message-id":
			src.RFCMessageID = h.Value
		case "subject":
			src.Subject = h.Value
		case "from":
			src.From = h.Value
		case "to":
			src.To = h.Value
		case "date":
			src.Date = h.Value
		}
	}
	if src.Date != "" {
		if t, err := mail.ParseDate(src.Date); err == nil {
			src.Timestamp = t.Unix()
		}
	}
	return src
}

// attachmentParts collects every part carrying a filename, descending
// into nested multiparts.
func attachmentParts(payload *gmail.MessagePart) []*gmail.MessagePart {
	if payload == nil {
		return nil
	}
	var out []*gmail.MessagePart
	for _, part := range payload.Parts {
		if part.Filename != "" {
			out = append(out, part)
		}
		out = append(out, attachmentParts(part)...)
	}
	return out
}

// decodeBody decodes the web-safe base64 the mail service uses, with
// or without padding.
func decodeBody(s string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}

// buildRawMessage renders a plain-text email as the base64url-encoded
// RFC 2822 string the send endpoint expects.
func buildRawMessage(n Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.From)
	fmt.Fprintf(&b, "To: %s\r\n", n.To)
	if n.Cc != "" {
		fmt.Fprintf(&b, "Cc: %s\r\n", n.Cc)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", n.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(n.Body)
	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
