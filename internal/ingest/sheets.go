package ingest

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultSheetRange = "Sheet1"

// SheetsSource reads the export straight from a Google Sheet through the
// Sheets API instead of the CSV export link.
type SheetsSource struct {
	SpreadsheetID   string
	Range           string
	CredentialsFile string
}

func (s *SheetsSource) Fetch(ctx context.Context) (*Table, error) {
	opts := []option.ClientOption{option.WithScopes(gsheet.SpreadsheetsReadonlyScope)}
	if s.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(s.CredentialsFile))
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	resp, err := svc.Spreadsheets.Values.Get(s.SpreadsheetID, s.Range).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s, err)
	}

	return tableFromValues(resp.Values)
}

func (s *SheetsSource) String() string {
	return fmt.Sprintf("sheets://%s/%s", s.SpreadsheetID, s.Range)
}

// tableFromValues converts a Sheets value grid. The API trims trailing
// empty cells, so short rows are padded to the header width; longer rows
// are kept as-is and later skipped as mismatched.
func tableFromValues(values [][]any) (*Table, error) {
	if len(values) == 0 {
		return nil, ErrNoHeader
	}

	header := cellsToStrings(values[0], 0)
	table := &Table{Header: header}
	for _, row := range values[1:] {
		if len(row) == 0 {
			continue
		}
		table.Records = append(table.Records, cellsToStrings(row, len(header)))
	}
	return table, nil
}

func cellsToStrings(row []any, width int) []string {
	n := max(len(row), width)
	out := make([]string, n)
	for i, cell := range row {
		if cell == nil {
			continue
		}
		out[i] = fmt.Sprint(cell)
	}
	return out
}
