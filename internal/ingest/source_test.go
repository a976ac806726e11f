package ingest

import (
	"errors"
	"strings"
	"testing"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		locator string
		want    string
	}{
		{"https://example.com/export.csv", "https://example.com/export.csv"},
		{"/var/data/payments.csv", "file:///var/data/payments.csv"},
		{"payments.csv", "file://payments.csv"},
		{"file:///var/data/payments.csv", "file:///var/data/payments.csv"},
		{"gs://finance-exports/2024/payments.csv", "gs://finance-exports/2024/payments.csv"},
		{"sheets://1AbC", "sheets://1AbC/Sheet1"},
		{"sheets://1AbC/Payments!A:Z", "sheets://1AbC/Payments!A:Z"},
	}

	for _, tt := range tests {
		t.Run(tt.locator, func(t *testing.T) {
			src, err := NewSource(tt.locator, SourceOptions{})
			if err != nil {
				t.Fatalf("NewSource() error = %v", err)
			}
			if src.String() != tt.want {
				t.Errorf("String() = %q, want %q", src.String(), tt.want)
			}
		})
	}
}

func TestNewSource_Types(t *testing.T) {
	src, _ := NewSource("gs://bucket/obj.csv", SourceOptions{CredentialsFile: "/etc/key.json"})
	gcs, ok := src.(*GCSSource)
	if !ok {
		t.Fatalf("got %T, want *GCSSource", src)
	}
	if gcs.Bucket != "bucket" || gcs.Object != "obj.csv" || gcs.CredentialsFile != "/etc/key.json" {
		t.Errorf("GCSSource = %+v", gcs)
	}

	src, _ = NewSource("http://example.com/x.csv", SourceOptions{})
	if _, ok := src.(*HTTPSource); !ok {
		t.Errorf("got %T, want *HTTPSource", src)
	}
}

func TestNewSource_Invalid(t *testing.T) {
	for _, locator := range []string{"", "  ", "gs://bucket-only", "ftp://example.com/x.csv"} {
		if _, err := NewSource(locator, SourceOptions{}); err == nil {
			t.Errorf("NewSource(%q) should fail", locator)
		}
	}
}

func TestReadTable(t *testing.T) {
	table, err := ReadTable(strings.NewReader("a,b,c\n1,2,3\n4,5\n6,7,8\n"))
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if len(table.Header) != 3 {
		t.Errorf("header = %v", table.Header)
	}
	// Short records are returned as-is; the normalizer decides to skip them.
	if len(table.Records) != 3 {
		t.Errorf("got %d records, want 3", len(table.Records))
	}
}

func TestReadTable_Empty(t *testing.T) {
	if _, err := ReadTable(strings.NewReader("")); !errors.Is(err, ErrNoHeader) {
		t.Errorf("error = %v, want ErrNoHeader", err)
	}
}

func TestReadTable_HeaderOnly(t *testing.T) {
	table, err := ReadTable(strings.NewReader(testHeader + "\n"))
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if len(table.Records) != 0 {
		t.Errorf("got %d records, want 0", len(table.Records))
	}
}

func TestTableFromValues(t *testing.T) {
	values := [][]any{
		{"PaymentIntent ID", "Amount", "Status"},
		{"pi_1", 10.5, "Paid"},
		{"pi_2", "20"},
		{},
		{"pi_3", nil, "Failed", "extra"},
	}

	table, err := tableFromValues(values)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(table.Records))
	}
	if got := table.Records[0][1]; got != "10.5" {
		t.Errorf("numeric cell = %q, want 10.5", got)
	}
	if got := len(table.Records[1]); got != 3 {
		t.Errorf("short row width = %d, want padded to 3", got)
	}
	if got := len(table.Records[2]); got != 4 {
		t.Errorf("long row width = %d, want 4", got)
	}
	if got := table.Records[2][1]; got != "" {
		t.Errorf("nil cell = %q, want empty", got)
	}

	if _, err := tableFromValues(nil); !errors.Is(err, ErrNoHeader) {
		t.Errorf("empty grid error = %v, want ErrNoHeader", err)
	}
}
