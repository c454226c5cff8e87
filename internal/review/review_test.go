package review

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debanik/expenses-tracker/internal/domain"
)

type fakeStore struct {
	rows     []domain.Transaction
	cursor   int
	reviewed []domain.ReviewedTransaction
}

func (f *fakeStore) EnsureWorksheets(context.Context) error { return nil }

func (f *fakeStore) AppendRaw(context.Context, domain.Transaction) error { return nil }

func (f *fakeStore) TransactionIDs(context.Context) (map[string]struct{}, error) {
	return nil, nil
}

func (f *fakeStore) AppendReviewed(_ context.Context, tx domain.ReviewedTransaction) error {
	f.reviewed = append(f.reviewed, tx)
	return nil
}

func (f *fakeStore) RowsAfter(_ context.Context, cursor int) ([]domain.Transaction, int, error) {
	if cursor >= f.cursor {
		return nil, cursor, nil
	}
	return f.rows, f.cursor, nil
}

func transaction(recipient, amount string) domain.Transaction {
	return domain.Transaction{
		ID:        "id-" + recipient,
		Date:      civil.Date{Year: 2025, Month: 3, Day: 14},
		Time:      civil.Time{Hour: 9, Minute: 26, Second: 53},
		Recipient: recipient,
		Amount:    decimal.RequireFromString(amount),
		Bank:      domain.BankHDFC,
		Mode:      domain.ModeCreditCard,
	}
}

func TestRun_SoloAndShared(t *testing.T) {
	store := &fakeStore{
		rows:   []domain.Transaction{transaction("SWIGGY", "350"), transaction("BIGBASKET", "1200")},
		cursor: 2,
	}
	statePath := filepath.Join(t.TempDir(), "state.json")

	// First: category by number, solo. Second: category by name, shared
	// with a share amount entered after one invalid attempt.
	input := strings.Join([]string{
		"4",    // Discretionary
		"n",    // solo
		"home & essentials",
		"y",      // shared
		"1500",   // exceeds total, rejected
		"600.50", // accepted
	}, "\n") + "\n"

	out := &bytes.Buffer{}
	svc := New(store, statePath, strings.NewReader(input), out)
	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, store.reviewed, 2)

	solo := store.reviewed[0]
	assert.Equal(t, "Discretionary", solo.Category)
	assert.False(t, solo.IsShared)

	shared := store.reviewed[1]
	assert.Equal(t, "Home & Essentials", shared.Category)
	assert.True(t, shared.IsShared)
	assert.Equal(t, "600.5", shared.UserShare.String())

	assert.Contains(t, out.String(), "cannot be greater than total")

	// Cursor advanced past both rows.
	state, err := LoadState(statePath)
	require.NoError(t, err)
	assert.Equal(t, 2, state.LastProcessedRow)
}

func TestRun_SkipAdvancesCursor(t *testing.T) {
	store := &fakeStore{
		rows:   []domain.Transaction{transaction("SWIGGY", "350")},
		cursor: 1,
	}
	statePath := filepath.Join(t.TempDir(), "state.json")

	svc := New(store, statePath, strings.NewReader("s\n"), &bytes.Buffer{})
	require.NoError(t, svc.Run(context.Background()))

	assert.Empty(t, store.reviewed)
	state, err := LoadState(statePath)
	require.NoError(t, err)
	assert.Equal(t, 1, state.LastProcessedRow)
}

func TestRun_NothingNew(t *testing.T) {
	store := &fakeStore{cursor: 0}
	statePath := filepath.Join(t.TempDir(), "state.json")
	out := &bytes.Buffer{}

	svc := New(store, statePath, strings.NewReader(""), out)
	require.NoError(t, svc.Run(context.Background()))

	assert.Contains(t, out.String(), "No new transactions")
}

func TestRun_InvalidInputsRetried(t *testing.T) {
	store := &fakeStore{
		rows:   []domain.Transaction{transaction("SWIGGY", "350")},
		cursor: 1,
	}
	statePath := filepath.Join(t.TempDir(), "state.json")

	input := strings.Join([]string{
		"99",       // out of range number
		"Gambling", // unknown name
		"2",        // Home & Essentials
		"maybe",    // not y/n
		"y",
		"-5",  // negative share
		"abc", // not a number
		"100",
	}, "\n") + "\n"

	out := &bytes.Buffer{}
	svc := New(store, statePath, strings.NewReader(input), out)
	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, store.reviewed, 1)
	assert.Equal(t, "Home & Essentials", store.reviewed[0].Category)
	assert.Equal(t, "100", store.reviewed[0].UserShare.String())
	assert.Contains(t, out.String(), "Unknown category")
	assert.Contains(t, out.String(), "cannot be negative")
}

func TestValidateShare(t *testing.T) {
	total := decimal.NewFromInt(100)

	assert.NoError(t, ValidateShare(total, decimal.NewFromInt(50)))
	assert.NoError(t, ValidateShare(total, decimal.NewFromInt(100)))
	assert.NoError(t, ValidateShare(total, decimal.Zero))
	assert.Error(t, ValidateShare(total, decimal.NewFromInt(-1)))
	assert.Error(t, ValidateShare(total, decimal.NewFromInt(101)))
}

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	// Missing file starts at zero.
	state, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, 0, state.LastProcessedRow)

	require.NoError(t, SaveState(path, State{LastProcessedRow: 42}))
	state, err = LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, 42, state.LastProcessedRow)
}
