package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"payments-dashboard/internal/config"
	"payments-dashboard/internal/models"
)

func testConfig(source string) *config.Config {
	return &config.Config{
		Source: config.SourceConfig{URL: source},
		Ingest: config.IngestConfig{Workers: 1, BatchSize: 10, UnmappedStatusPolicy: "passthrough"},
	}
}

func TestNewLoader_LocatorOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payments.csv")
	if err := os.WriteFile(path, []byte("PaymentIntent ID,Status\npi_1,succeeded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	statusMap := filepath.Join(dir, "statuses.yaml")
	if err := os.WriteFile(statusMap, []byte("statuses:\n  succeeded: Paid\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig("https://example.invalid/export.csv")
	cfg.Ingest.StatusMapFile = statusMap
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	loader, err := NewLoader(cfg, path, logger)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	if loader.Source() != "file://"+path {
		t.Errorf("Source() = %q", loader.Source())
	}

	snap, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.Len() != 1 || snap.Rows[0].Status != models.StatusPaid {
		t.Errorf("rows = %+v, want one Paid row", snap.Rows)
	}
}

func TestNewLoader_Errors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad policy", func(c *config.Config) { c.Ingest.UnmappedStatusPolicy = "ignore" }},
		{"missing status map", func(c *config.Config) { c.Ingest.StatusMapFile = "/nonexistent/statuses.yaml" }},
		{"bad scheme", func(c *config.Config) { c.Source.URL = "ftp://example.com/export.csv" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("payments.csv")
			tt.mutate(cfg)
			if _, err := NewLoader(cfg, "", logger); err == nil {
				t.Error("expected error")
			}
		})
	}
}
