// Package sheets wraps the Google Sheets API behind the SheetStore
// interface. The raw worksheet receives importer output; the post-review
// worksheet receives categorized rows.
package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/debanik/expenses-tracker/internal/domain"
)

const (
	defaultRowCount    = 100
	defaultColumnCount = 20
)

// Client is the SheetStore implementation backed by the Sheets API.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	rawSheet      string
	reviewedSheet string
}

var _ SheetStore = (*Client)(nil)

// NewClient builds a Sheets client for one spreadsheet. ts normally comes
// from service-account credentials.
func NewClient(ctx context.Context, ts oauth2.TokenSource, spreadsheetID, rawSheet, reviewedSheet string) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("NewClient: sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		rawSheet:      rawSheet,
		reviewedSheet: reviewedSheet,
	}, nil
}

// EnsureWorksheets creates the raw and post-review worksheets when missing.
func (c *Client) EnsureWorksheets(ctx context.Context) error {
	spreadsheet, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("EnsureWorksheets: getting spreadsheet: %w", err)
	}

	existing := make(map[string]bool)
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil {
			existing[s.Properties.Title] = true
		}
	}

	var requests []*sheetsapi.Request
	for _, title := range []string{c.rawSheet, c.reviewedSheet} {
		if existing[title] {
			continue
		}
		requests = append(requests, &sheetsapi.Request{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{
					Title: title,
					GridProperties: &sheetsapi.GridProperties{
						RowCount:    defaultRowCount,
						ColumnCount: defaultColumnCount,
					},
				},
			},
		})
	}
	if len(requests) == 0 {
		return nil
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("EnsureWorksheets: adding worksheets: %w", err)
	}
	return nil
}

// AppendRaw appends one transaction row to the raw worksheet.
func (c *Client) AppendRaw(ctx context.Context, tx domain.Transaction) error {
	if err := c.appendByHeaders(ctx, c.rawSheet, rawColumns, rawCellValues(tx)); err != nil {
		return fmt.Errorf("AppendRaw: %w", err)
	}
	return nil
}

// AppendReviewed appends one categorized row to the post-review worksheet.
func (c *Client) AppendReviewed(ctx context.Context, tx domain.ReviewedTransaction) error {
	if err := c.appendByHeaders(ctx, c.reviewedSheet, reviewedColumns, reviewedCellValues(tx)); err != nil {
		return fmt.Errorf("AppendReviewed: %w", err)
	}
	return nil
}

// TransactionIDs reads the raw worksheet and collects every transaction id.
func (c *Client) TransactionIDs(ctx context.Context) (map[string]struct{}, error) {
	values, err := c.allValues(ctx, c.rawSheet)
	if err != nil {
		return nil, fmt.Errorf("TransactionIDs: %w", err)
	}

	ids := make(map[string]struct{})
	if len(values) == 0 {
		return ids, nil
	}

	idCol := 0
	if i, ok := headerIndex(values[0])[colTransactionID]; ok {
		idCol = i
	}
	for _, row := range values[1:] {
		if idCol < len(row) && row[idCol] != "" {
			ids[row[idCol]] = struct{}{}
		}
	}
	return ids, nil
}

// RowsAfter returns transactions recorded after the cursor row index along
// with the new cursor. Malformed rows are skipped; the cursor only advances
// when new rows were seen (mirroring how the review state originally moved).
func (c *Client) RowsAfter(ctx context.Context, cursor int) ([]domain.Transaction, int, error) {
	values, err := c.allValues(ctx, c.rawSheet)
	if err != nil {
		return nil, cursor, fmt.Errorf("RowsAfter: %w", err)
	}
	if len(values) == 0 {
		return nil, cursor, nil
	}

	headers := values[0]
	start := cursor + 1
	if start < 1 {
		start = 1
	}

	var txs []domain.Transaction
	for i := start; i < len(values); i++ {
		tx, err := parseTransactionRow(headers, values[i])
		if err != nil {
			continue
		}
		txs = append(txs, tx)
	}

	newCursor := cursor
	if len(values)-1 > cursor {
		newCursor = len(values) - 1
	}
	return txs, newCursor, nil
}

// appendByHeaders reconciles the worksheet header row with the expected
// columns, then appends the row with values placed by header position.
func (c *Client) appendByHeaders(ctx context.Context, title string, expected []string, values map[string]string) error {
	headers, err := c.headerRow(ctx, title)
	if err != nil {
		return err
	}

	for _, col := range missingColumns(headers, expected) {
		cellRange := fmt.Sprintf("'%s'!%s1", title, columnLetter(len(headers)))
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, cellRange, &sheetsapi.ValueRange{
			Values: [][]interface{}{{col}},
		}).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("adding header %q: %w", col, err)
		}
		headers = append(headers, col)
	}

	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, fmt.Sprintf("'%s'!A1", title), &sheetsapi.ValueRange{
		Values: [][]interface{}{buildRow(headers, values)},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending row: %w", err)
	}
	return nil
}

func (c *Client) headerRow(ctx context.Context, title string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, fmt.Sprintf("'%s'!1:1", title)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toStrings(resp.Values[0]), nil
}

func (c *Client) allValues(ctx context.Context, title string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, fmt.Sprintf("'%s'", title)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", title, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		rows = append(rows, toStrings(row))
	}
	return rows, nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}
