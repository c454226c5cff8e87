package sheets

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debanik/expenses-tracker/internal/domain"
)

func sampleTransaction() domain.Transaction {
	return domain.Transaction{
		ID:        "9f86d081884c7d65",
		Date:      civil.Date{Year: 2025, Month: 3, Day: 14},
		Time:      civil.Time{Hour: 9, Minute: 26, Second: 53},
		Recipient: "SWIGGY BANGALORE",
		Amount:    decimal.RequireFromString("350.75"),
		Bank:      domain.BankICICI,
		Mode:      domain.ModeCreditCard,
	}
}

func TestMissingColumns(t *testing.T) {
	assert.Nil(t, missingColumns(rawColumns, rawColumns))

	got := missingColumns([]string{"Transaction ID", "Date"}, rawColumns)
	assert.Equal(t, []string{"Time", "Recipient", "Amount", "Bank", "Mode"}, got)

	// Empty header row needs everything.
	assert.Equal(t, rawColumns, missingColumns(nil, rawColumns))
}

func TestBuildRow_ByHeaderPosition(t *testing.T) {
	// A user reordered columns and inserted one of their own.
	headers := []string{"Date", "Notes", "Transaction ID", "Amount"}
	row := buildRow(headers, map[string]string{
		"Transaction ID": "abc",
		"Date":           "2025-03-14",
		"Amount":         "350.75",
	})

	assert.Equal(t, []interface{}{"2025-03-14", "", "abc", "350.75"}, row)
}

func TestRawCellValues(t *testing.T) {
	values := rawCellValues(sampleTransaction())

	assert.Equal(t, map[string]string{
		"Transaction ID": "9f86d081884c7d65",
		"Date":           "2025-03-14",
		"Time":           "09:26:53",
		"Recipient":      "SWIGGY BANGALORE",
		"Amount":         "350.75",
		"Bank":           "ICICI",
		"Mode":           "CreditCard",
	}, values)
}

func TestReviewedCellValues(t *testing.T) {
	shared := domain.ReviewedTransaction{
		Transaction: sampleTransaction(),
		Category:    "Discretionary",
		IsShared:    true,
		UserShare:   decimal.RequireFromString("175.38"),
	}
	values := reviewedCellValues(shared)
	assert.Equal(t, "Discretionary", values["Category"])
	assert.Equal(t, "Yes", values["Is Shared"])
	assert.Equal(t, "175.38", values["User Share"])

	solo := domain.ReviewedTransaction{
		Transaction: sampleTransaction(),
		Category:    "Commute",
	}
	values = reviewedCellValues(solo)
	assert.Equal(t, "No", values["Is Shared"])
	assert.Equal(t, "N/A", values["User Share"])
}

func TestParseTransactionRow_RoundTrip(t *testing.T) {
	tx := sampleTransaction()
	row := make([]string, len(rawColumns))
	for i, cell := range buildRow(rawColumns, rawCellValues(tx)) {
		row[i] = cell.(string)
	}

	got, err := parseTransactionRow(rawColumns, row)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
	assert.Equal(t, tx.Date, got.Date)
	assert.Equal(t, tx.Time, got.Time)
	assert.Equal(t, tx.Recipient, got.Recipient)
	assert.True(t, tx.Amount.Equal(got.Amount))
	assert.Equal(t, tx.Bank, got.Bank)
	assert.Equal(t, tx.Mode, got.Mode)
}

func TestParseTransactionRow_Malformed(t *testing.T) {
	tests := []struct {
		name string
		row  []string
	}{
		{name: "too short", row: []string{"abc", "2025-03-14"}},
		{name: "empty id", row: []string{"", "2025-03-14", "09:26:53", "X", "10", "HDFC", "UPI"}},
		{name: "bad date", row: []string{"abc", "14/03/2025", "09:26:53", "X", "10", "HDFC", "UPI"}},
		{name: "bad amount", row: []string{"abc", "2025-03-14", "09:26:53", "X", "ten", "HDFC", "UPI"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTransactionRow(rawColumns, tt.row)
			require.Error(t, err)
		})
	}
}

func TestColumnLetter(t *testing.T) {
	assert.Equal(t, "A", columnLetter(0))
	assert.Equal(t, "H", columnLetter(7))
	assert.Equal(t, "Z", columnLetter(25))
	assert.Equal(t, "AA", columnLetter(26))
	assert.Equal(t, "AZ", columnLetter(51))
}
