package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

var (
	// ErrSourceUnavailable wraps any failure to fetch the export.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNoHeader means the export has no header row at all.
	ErrNoHeader = errors.New("source has no header row")
)

// Table is the raw export: a header and the records that parsed as CSV.
// Malformed counts records the reader could not parse and skipped.
type Table struct {
	Header    []string
	Records   [][]string
	Malformed int
}

type Source interface {
	Fetch(ctx context.Context) (*Table, error)
	String() string
}

type SourceOptions struct {
	// CredentialsFile is a service account key for gs:// and sheets://.
	// Empty means application default credentials.
	CredentialsFile string
}

// NewSource picks a source implementation from the locator scheme:
// http(s)://, gs://bucket/object, sheets://spreadsheet-id/range,
// file:///path or a plain path.
func NewSource(locator string, opts SourceOptions) (Source, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil, errors.New("empty source locator")
	}

	u, err := url.Parse(locator)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		return &FileSource{Path: locator}, nil
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return &HTTPSource{URL: locator}, nil
	case "file":
		return &FileSource{Path: u.Path}, nil
	case "gs":
		object := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || object == "" {
			return nil, fmt.Errorf("gs locator %q must be gs://bucket/object", locator)
		}
		return &GCSSource{Bucket: u.Host, Object: object, CredentialsFile: opts.CredentialsFile}, nil
	case "sheets":
		if u.Host == "" {
			return nil, fmt.Errorf("sheets locator %q must be sheets://spreadsheet-id/range", locator)
		}
		rng := strings.TrimPrefix(u.Path, "/")
		if rng == "" {
			rng = defaultSheetRange
		}
		return &SheetsSource{SpreadsheetID: u.Host, Range: rng, CredentialsFile: opts.CredentialsFile}, nil
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}

// ReadTable parses CSV leniently. Quotes are lazy and field counts may
// vary; rows the reader cannot parse at all are counted and skipped.
func ReadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	table := &Table{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				table.Malformed++
				continue
			}
			return nil, fmt.Errorf("read record: %w", err)
		}
		table.Records = append(table.Records, record)
	}

	return table, nil
}
