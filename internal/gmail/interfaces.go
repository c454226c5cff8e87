package gmail

import (
	"context"
	"time"
)

// Message is the slice of a Gmail message the importer needs.
type Message struct {
	ID         string
	Subject    string
	Sender     string    // raw From header
	ReceivedAt time.Time // Gmail internal date, local time
	Body       string    // decoded plain-text body
}

// Mailbox abstracts the Gmail operations used by the importer so the
// orchestrator can be tested against a fake.
type Mailbox interface {
	// LabelID resolves a label name to its id. Returns an error when the
	// label does not exist; input labels must be created by the user.
	LabelID(ctx context.Context, name string) (string, error)

	// EnsureLabel resolves a label name, creating the label when missing.
	// Used for the processed marker.
	EnsureLabel(ctx context.Context, name string) (string, error)

	// ListUnprocessed returns ids of messages that carry the given label
	// but not the processed label.
	ListUnprocessed(ctx context.Context, labelID, processedName string) ([]string, error)

	// Fetch retrieves and decodes a single message.
	Fetch(ctx context.Context, id string) (*Message, error)

	// AddLabel attaches a label to a message.
	AddLabel(ctx context.Context, messageID, labelID string) error
}
