// Package review walks raw transactions that have not been categorized yet
// and appends the reviewed rows to the post-review worksheet.
package review

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/debanik/expenses-tracker/internal/domain"
	"github.com/debanik/expenses-tracker/internal/logger"
	"github.com/debanik/expenses-tracker/internal/sheets"
)

// Service runs the interactive review loop over a terminal (or any
// reader/writer pair in tests).
type Service struct {
	store     sheets.SheetStore
	statePath string
	in        *bufio.Scanner
	out       io.Writer
}

// New builds a review Service. statePath locates the JSON cursor file.
func New(store sheets.SheetStore, statePath string, in io.Reader, out io.Writer) *Service {
	return &Service{
		store:     store,
		statePath: statePath,
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

// Run reviews every raw row past the stored cursor. Individual rows can be
// skipped; the cursor advances over skipped rows too, matching how the
// original monitor moved past notified rows.
func (s *Service) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	state, err := LoadState(s.statePath)
	if err != nil {
		return fmt.Errorf("Run: %w", err)
	}

	txs, cursor, err := s.store.RowsAfter(ctx, state.LastProcessedRow)
	if err != nil {
		return fmt.Errorf("Run: %w", err)
	}
	if len(txs) == 0 {
		fmt.Fprintln(s.out, "No new transactions to review.")
		return nil
	}
	fmt.Fprintf(s.out, "Found %d new transactions.\n", len(txs))

	var reviewed, skipped int
	for _, tx := range txs {
		rtx, skip, err := s.promptOne(tx)
		if err != nil {
			return fmt.Errorf("Run: %w", err)
		}
		if skip {
			skipped++
			continue
		}
		if err := s.store.AppendReviewed(ctx, *rtx); err != nil {
			return fmt.Errorf("Run: appending reviewed row: %w", err)
		}
		reviewed++
	}

	state.LastProcessedRow = cursor
	if err := SaveState(s.statePath, state); err != nil {
		return fmt.Errorf("Run: %w", err)
	}

	log.Info().Int("reviewed", reviewed).Int("skipped", skipped).Msg("Review completed")
	return nil
}

func (s *Service) promptOne(tx domain.Transaction) (*domain.ReviewedTransaction, bool, error) {
	fmt.Fprintf(s.out, "\n%s  %s  %s  %s %s (%s)\n",
		tx.Date, tx.Time, tx.Recipient, tx.Amount, tx.Bank, tx.Mode)
	for i, c := range domain.Categories {
		fmt.Fprintf(s.out, "  %d. %s\n", i+1, c)
	}

	category, skip, err := s.promptCategory()
	if err != nil || skip {
		return nil, skip, err
	}

	isShared, err := s.promptShared()
	if err != nil {
		return nil, false, err
	}

	rtx := &domain.ReviewedTransaction{
		Transaction: tx,
		Category:    category,
		IsShared:    isShared,
	}
	if isShared {
		share, err := s.promptShare(tx.Amount)
		if err != nil {
			return nil, false, err
		}
		rtx.UserShare = share
	}
	return rtx, false, nil
}

func (s *Service) promptCategory() (string, bool, error) {
	for {
		line, err := s.readLine("Category (number or name, 's' to skip): ")
		if err != nil {
			return "", false, err
		}
		if strings.EqualFold(line, "s") {
			return "", true, nil
		}
		if n, err := strconv.Atoi(line); err == nil {
			if n >= 1 && n <= len(domain.Categories) {
				return domain.Categories[n-1], false, nil
			}
			fmt.Fprintf(s.out, "Pick a number between 1 and %d.\n", len(domain.Categories))
			continue
		}
		if c, ok := domain.LookupCategory(line); ok {
			return c, false, nil
		}
		fmt.Fprintln(s.out, "Unknown category, try again.")
	}
}

func (s *Service) promptShared() (bool, error) {
	for {
		line, err := s.readLine("Shared expense? (y/n): ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(s.out, "Answer y or n.")
	}
}

func (s *Service) promptShare(total decimal.Decimal) (decimal.Decimal, error) {
	for {
		line, err := s.readLine(fmt.Sprintf("Your share of %s: ", total))
		if err != nil {
			return decimal.Decimal{}, err
		}
		share, parseErr := decimal.NewFromString(line)
		if parseErr != nil {
			fmt.Fprintln(s.out, "Invalid amount format, enter a numeric value.")
			continue
		}
		if err := ValidateShare(total, share); err != nil {
			fmt.Fprintln(s.out, err.Error())
			continue
		}
		return share, nil
	}
}

func (s *Service) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return "", fmt.Errorf("input closed")
	}
	return strings.TrimSpace(s.in.Text()), nil
}

// ValidateShare checks a shared-expense amount against the transaction
// total.
func ValidateShare(total, share decimal.Decimal) error {
	if share.IsNegative() {
		return fmt.Errorf("share amount cannot be negative")
	}
	if share.GreaterThan(total) {
		return fmt.Errorf("share amount (%s) cannot be greater than total amount (%s)", share, total)
	}
	return nil
}
