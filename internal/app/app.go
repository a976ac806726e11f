// Package app wires configuration into a ready loader. Both binaries
// build their ingest pipeline through it.
package app

import (
	"fmt"
	"log/slog"

	"payments-dashboard/internal/config"
	"payments-dashboard/internal/ingest"
)

// NewLoader builds the status mapper and source from cfg. A non-empty
// locator overrides cfg.Source.URL.
func NewLoader(cfg *config.Config, locator string, logger *slog.Logger) (*ingest.Loader, error) {
	policy, err := ingest.ParseUnmappedPolicy(cfg.Ingest.UnmappedStatusPolicy)
	if err != nil {
		return nil, err
	}

	extra, err := config.LoadStatusMap(cfg.Ingest.StatusMapFile)
	if err != nil {
		return nil, err
	}

	mapper, err := ingest.NewStatusMapper(policy, extra)
	if err != nil {
		return nil, fmt.Errorf("status map: %w", err)
	}

	if locator == "" {
		locator = cfg.Source.URL
	}
	source, err := ingest.NewSource(locator, ingest.SourceOptions{CredentialsFile: cfg.Source.CredentialsFile})
	if err != nil {
		return nil, err
	}

	return ingest.NewLoader(source, mapper,
		ingest.WithWorkers(cfg.Ingest.Workers),
		ingest.WithBatchSize(cfg.Ingest.BatchSize),
		ingest.WithLogger(logger),
	), nil
}
