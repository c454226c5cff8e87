// Package gmail wraps the Gmail API behind the narrow Mailbox interface.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const userID = "me"

// Client is the Mailbox implementation backed by the Gmail API.
type Client struct {
	svc *gmailapi.Service
}

var _ Mailbox = (*Client)(nil)

// NewClient builds a Gmail client from an OAuth token source. The token
// must carry the gmail.modify scope, which covers reading and labeling.
func NewClient(ctx context.Context, ts oauth2.TokenSource) (*Client, error) {
	svc, err := gmailapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("NewClient: gmail service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// LabelID resolves a label name to its id.
func (c *Client) LabelID(ctx context.Context, name string) (string, error) {
	resp, err := c.svc.Users.Labels.List(userID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("LabelID: listing labels: %w", err)
	}
	for _, l := range resp.Labels {
		if l.Name == name {
			return l.Id, nil
		}
	}
	return "", fmt.Errorf("LabelID: no label named %q", name)
}

// EnsureLabel resolves a label name, creating it when absent.
func (c *Client) EnsureLabel(ctx context.Context, name string) (string, error) {
	id, err := c.LabelID(ctx, name)
	if err == nil {
		return id, nil
	}
	created, err := c.svc.Users.Labels.Create(userID, &gmailapi.Label{Name: name}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("EnsureLabel: creating label %q: %w", name, err)
	}
	return created.Id, nil
}

// ListUnprocessed returns message ids under labelID that do not yet carry
// the processed label, following pagination.
func (c *Client) ListUnprocessed(ctx context.Context, labelID, processedName string) ([]string, error) {
	var ids []string
	call := c.svc.Users.Messages.List(userID).
		LabelIds(labelID).
		Q(fmt.Sprintf("-label:%s", processedName))

	pageToken := ""
	for {
		resp, err := call.PageToken(pageToken).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("ListUnprocessed: listing messages: %w", err)
		}
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		if resp.NextPageToken == "" {
			return ids, nil
		}
		pageToken = resp.NextPageToken
	}
}

// Fetch retrieves a message and decodes its headers and plain-text body.
func (c *Client) Fetch(ctx context.Context, id string) (*Message, error) {
	msg, err := c.svc.Users.Messages.Get(userID, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("Fetch: getting message %s: %w", id, err)
	}

	out := &Message{
		ID:         msg.Id,
		ReceivedAt: time.UnixMilli(msg.InternalDate),
	}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "From":
				out.Sender = h.Value
			case "Subject":
				out.Subject = h.Value
			}
		}
		body, err := extractBody(msg.Payload)
		if err != nil {
			return nil, fmt.Errorf("Fetch: message %s: %w", id, err)
		}
		out.Body = body
	}
	return out, nil
}

// AddLabel attaches a label to a message.
func (c *Client) AddLabel(ctx context.Context, messageID, labelID string) error {
	req := &gmailapi.ModifyMessageRequest{AddLabelIds: []string{labelID}}
	if _, err := c.svc.Users.Messages.Modify(userID, messageID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("AddLabel: modifying message %s: %w", messageID, err)
	}
	return nil
}

// extractBody picks the first text/plain part, falling back to the first
// part with data and then the top-level body.
func extractBody(payload *gmailapi.MessagePart) (string, error) {
	var data string
	for _, part := range payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			data = part.Body.Data
			break
		}
	}
	if data == "" {
		for _, part := range payload.Parts {
			if part.Body != nil && part.Body.Data != "" {
				data = part.Body.Data
				break
			}
		}
	}
	if data == "" && payload.Body != nil {
		data = payload.Body.Data
	}
	if data == "" {
		return "", fmt.Errorf("extractBody: no body data")
	}
	return decodeBody(data)
}

// decodeBody decodes Gmail's base64url body data, which arrives both with
// and without padding.
func decodeBody(data string) (string, error) {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		b, err = base64.RawURLEncoding.DecodeString(data)
	}
	if err != nil {
		return "", fmt.Errorf("decodeBody: %w", err)
	}
	return string(b), nil
}
