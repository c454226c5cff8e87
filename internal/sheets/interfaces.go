package sheets

import (
	"context"

	"github.com/debanik/expenses-tracker/internal/domain"
)

// SheetStore abstracts the spreadsheet operations used by the importer and
// the review flow.
type SheetStore interface {
	// EnsureWorksheets creates the raw and post-review worksheets when the
	// spreadsheet does not have them yet.
	EnsureWorksheets(ctx context.Context) error

	// AppendRaw appends one transaction row to the raw worksheet.
	AppendRaw(ctx context.Context, tx domain.Transaction) error

	// AppendReviewed appends one categorized row to the post-review
	// worksheet.
	AppendReviewed(ctx context.Context, tx domain.ReviewedTransaction) error

	// TransactionIDs returns the set of transaction ids already present in
	// the raw worksheet. This is the dedup source of truth.
	TransactionIDs(ctx context.Context) (map[string]struct{}, error)

	// RowsAfter returns raw transactions recorded after the given row
	// cursor, plus the new cursor value.
	RowsAfter(ctx context.Context, cursor int) ([]domain.Transaction, int, error)
}
