package sheets

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/debanik/expenses-tracker/internal/domain"
)

// Column names as they appear in the header row. Rows are written by header
// position, so renaming a column here re-targets writes without touching
// existing data.
const (
	colTransactionID = "Transaction ID"
	colDate          = "Date"
	colTime          = "Time"
	colRecipient     = "Recipient"
	colAmount        = "Amount"
	colBank          = "Bank"
	colMode          = "Mode"
	colCategory      = "Category"
	colIsShared      = "Is Shared"
	colUserShare     = "User Share"

	yesValue = "Yes"
	noValue  = "No"
	naValue  = "N/A"
)

var rawColumns = []string{
	colTransactionID, colDate, colTime, colRecipient, colAmount, colBank, colMode,
}

var reviewedColumns = append(append([]string{}, rawColumns...),
	colCategory, colIsShared, colUserShare)

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}
	return idx
}

// missingColumns returns expected columns absent from the header row, in
// expected order.
func missingColumns(headers, expected []string) []string {
	idx := headerIndex(headers)
	var missing []string
	for _, col := range expected {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// buildRow lays cell values out by header position. Headers without a value
// become empty cells, so user-added columns are preserved.
func buildRow(headers []string, values map[string]string) []interface{} {
	idx := headerIndex(headers)
	row := make([]interface{}, len(headers))
	for i := range row {
		row[i] = ""
	}
	for col, v := range values {
		if i, ok := idx[col]; ok {
			row[i] = v
		}
	}
	return row
}

func rawCellValues(tx domain.Transaction) map[string]string {
	return map[string]string{
		colTransactionID: tx.ID,
		colDate:          tx.Date.String(),
		colTime:          tx.Time.String(),
		colRecipient:     tx.Recipient,
		colAmount:        tx.Amount.String(),
		colBank:          string(tx.Bank),
		colMode:          string(tx.Mode),
	}
}

func reviewedCellValues(tx domain.ReviewedTransaction) map[string]string {
	values := rawCellValues(tx.Transaction)
	values[colCategory] = tx.Category
	if tx.IsShared {
		values[colIsShared] = yesValue
		values[colUserShare] = tx.UserShare.String()
	} else {
		values[colIsShared] = noValue
		values[colUserShare] = naValue
	}
	return values
}

// parseTransactionRow converts one raw-worksheet row back into a
// transaction, using header positions.
func parseTransactionRow(headers []string, row []string) (domain.Transaction, error) {
	idx := headerIndex(headers)
	cell := func(col string) (string, error) {
		i, ok := idx[col]
		if !ok {
			return "", fmt.Errorf("missing column %q", col)
		}
		if i >= len(row) {
			return "", fmt.Errorf("row too short for column %q", col)
		}
		return row[i], nil
	}

	var tx domain.Transaction
	var err error
	if tx.ID, err = cell(colTransactionID); err != nil {
		return domain.Transaction{}, err
	}
	if tx.ID == "" {
		return domain.Transaction{}, fmt.Errorf("empty transaction id")
	}

	dateStr, err := cell(colDate)
	if err != nil {
		return domain.Transaction{}, err
	}
	if tx.Date, err = civil.ParseDate(dateStr); err != nil {
		return domain.Transaction{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}

	timeStr, err := cell(colTime)
	if err != nil {
		return domain.Transaction{}, err
	}
	if tx.Time, err = civil.ParseTime(timeStr); err != nil {
		return domain.Transaction{}, fmt.Errorf("invalid time %q: %w", timeStr, err)
	}

	if tx.Recipient, err = cell(colRecipient); err != nil {
		return domain.Transaction{}, err
	}

	amountStr, err := cell(colAmount)
	if err != nil {
		return domain.Transaction{}, err
	}
	if tx.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return domain.Transaction{}, fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}

	bankStr, err := cell(colBank)
	if err != nil {
		return domain.Transaction{}, err
	}
	tx.Bank = domain.Bank(bankStr)

	modeStr, err := cell(colMode)
	if err != nil {
		return domain.Transaction{}, err
	}
	tx.Mode = domain.Mode(modeStr)

	return tx, nil
}

// columnLetter converts a zero-based column index to its A1 letter form.
func columnLetter(index int) string {
	letters := ""
	for index >= 0 {
		letters = string(rune('A'+index%26)) + letters
		index = index/26 - 1
	}
	return letters
}
