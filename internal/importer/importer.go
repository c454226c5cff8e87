// Package importer drives the email-to-row pipeline: fetch labeled
// messages, classify, extract, dedup, append, relabel.
package importer

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debanik/expenses-tracker/internal/domain"
	"github.com/debanik/expenses-tracker/internal/gmail"
	"github.com/debanik/expenses-tracker/internal/logger"
	"github.com/debanik/expenses-tracker/internal/parser"
	"github.com/debanik/expenses-tracker/internal/sheets"
)

// Source pairs a Gmail label with the transaction mode its emails carry.
type Source struct {
	Label string
	Mode  domain.Mode
}

// Importer processes labeled transaction emails sequentially, one message
// at a time. Failures skip the message and leave it unlabeled so the next
// run picks it up again.
type Importer struct {
	mail           gmail.Mailbox
	store          sheets.SheetStore
	sources        []Source
	processedLabel string
	dryRun         bool
}

// Summary reports what one run did.
type Summary struct {
	RunID           string
	Found           int // messages listed across all sources
	Appended        int // rows written (or would-be writes in dry run)
	Duplicates      int // ids already in the sheet, marked processed
	NonTransactions int // reversal/decline notices, marked processed
	Skipped         int // left unprocessed for manual review or retry
}

// New builds an Importer over the given mailbox and sheet store.
func New(mail gmail.Mailbox, store sheets.SheetStore, sources []Source, processedLabel string, dryRun bool) *Importer {
	return &Importer{
		mail:           mail,
		store:          store,
		sources:        sources,
		processedLabel: processedLabel,
		dryRun:         dryRun,
	}
}

// Run executes one full import pass over every configured source label.
func (imp *Importer) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	log := logger.FromContext(ctx).With().Str("run_id", summary.RunID).Logger()

	// Creating worksheets is a write; a dry run reads the sheet only.
	if !imp.dryRun {
		if err := imp.store.EnsureWorksheets(ctx); err != nil {
			return nil, fmt.Errorf("Run: %w", err)
		}
	}

	// The sheet is the source of truth for dedup; the set grows in memory
	// as this run appends rows.
	seen, err := imp.store.TransactionIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	log.Info().Int("known_ids", len(seen)).Msg("Loaded transaction ids from sheet")

	processedID, err := imp.mail.EnsureLabel(ctx, imp.processedLabel)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	for _, source := range imp.sources {
		labelID, err := imp.mail.LabelID(ctx, source.Label)
		if err != nil {
			return nil, fmt.Errorf("Run: resolving source label %q: %w", source.Label, err)
		}

		ids, err := imp.mail.ListUnprocessed(ctx, labelID, imp.processedLabel)
		if err != nil {
			return nil, fmt.Errorf("Run: listing %q messages: %w", source.Label, err)
		}
		log.Info().Str("label", source.Label).Int("messages", len(ids)).Msg("Found unprocessed messages")
		summary.Found += len(ids)

		for _, id := range ids {
			msgLog := log.With().Str("message_id", id).Str("label", source.Label).Logger()
			switch imp.process(ctx, msgLog, id, source.Mode, processedID, seen) {
			case outcomeAppended:
				summary.Appended++
			case outcomeDuplicate:
				summary.Duplicates++
			case outcomeNonTransaction:
				summary.NonTransactions++
			case outcomeSkipped:
				summary.Skipped++
			}
		}
	}

	log.Info().
		Int("found", summary.Found).
		Int("appended", summary.Appended).
		Int("duplicates", summary.Duplicates).
		Int("non_transactions", summary.NonTransactions).
		Int("skipped", summary.Skipped).
		Bool("dry_run", imp.dryRun).
		Msg("Import run completed")

	return summary, nil
}

type outcome int

const (
	outcomeAppended outcome = iota
	outcomeDuplicate
	outcomeNonTransaction
	outcomeSkipped
)

// process handles one message end to end. Every failure path returns
// outcomeSkipped without labeling, so the message surfaces again next run.
func (imp *Importer) process(ctx context.Context, log zerolog.Logger, messageID string, mode domain.Mode, processedID string, seen map[string]struct{}) outcome {
	msg, err := imp.mail.Fetch(ctx, messageID)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch message")
		return outcomeSkipped
	}

	bank := parser.DetectBank(msg.Sender, msg.Body)
	if bank == domain.BankUnknown {
		log.Debug().Str("sender", msg.Sender).Msg("No known bank pattern, leaving for manual review")
		return outcomeSkipped
	}

	fields, err := parser.Extract(bank, mode, msg.Body)
	if errors.Is(err, parser.ErrNotTransaction) {
		// Reversals and declines carry nothing to record; mark processed
		// so they stop showing up.
		log.Info().Str("bank", string(bank)).Msg("Non-transaction notice, marking processed")
		if imp.label(ctx, log, messageID, processedID) {
			return outcomeNonTransaction
		}
		return outcomeSkipped
	}
	if err != nil {
		log.Warn().Err(err).Str("bank", string(bank)).Msg("Extraction failed, leaving for manual review")
		return outcomeSkipped
	}

	date := civil.DateOf(msg.ReceivedAt)
	tm := civil.TimeOf(msg.ReceivedAt)
	tm.Nanosecond = 0 // ids fingerprint whole seconds only

	tx := domain.Transaction{
		ID:        domain.TransactionID(date, tm, fields.Recipient, fields.Amount, bank),
		Date:      date,
		Time:      tm,
		Recipient: fields.Recipient,
		Amount:    fields.Amount,
		Bank:      bank,
		Mode:      mode,
	}

	if _, dup := seen[tx.ID]; dup {
		log.Info().Str("transaction_id", tx.ID).Msg("Duplicate transaction, marking processed without appending")
		if imp.label(ctx, log, messageID, processedID) {
			return outcomeDuplicate
		}
		return outcomeSkipped
	}

	if imp.dryRun {
		log.Info().
			Str("transaction_id", tx.ID).
			Str("bank", string(bank)).
			Str("recipient", tx.Recipient).
			Str("amount", tx.Amount.String()).
			Msg("[DRY RUN] Would append transaction")
		seen[tx.ID] = struct{}{}
		return outcomeAppended
	}

	if err := imp.store.AppendRaw(ctx, tx); err != nil {
		log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("Append failed, leaving message unprocessed")
		return outcomeSkipped
	}
	seen[tx.ID] = struct{}{}

	log.Info().
		Str("transaction_id", tx.ID).
		Str("bank", string(bank)).
		Str("mode", string(mode)).
		Str("recipient", tx.Recipient).
		Str("amount", tx.Amount.String()).
		Msg("Appended transaction")

	// A labeling failure after a successful append is safe: the id is in
	// the sheet now, so the retried message dedups next run.
	imp.label(ctx, log, messageID, processedID)
	return outcomeAppended
}

func (imp *Importer) label(ctx context.Context, log zerolog.Logger, messageID, processedID string) bool {
	if imp.dryRun {
		return true
	}
	if err := imp.mail.AddLabel(ctx, messageID, processedID); err != nil {
		log.Warn().Err(err).Msg("Failed to add processed label")
		return false
	}
	return true
}
