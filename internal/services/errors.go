package services

import (
	"errors"
	"fmt"

	"payments-dashboard/internal/ingest"
)

var (
	// ErrNoData is an expected empty result, not a failure.
	ErrNoData = errors.New("no data")
	// ErrDataUnavailable means the snapshot lacks a column the report needs.
	ErrDataUnavailable = errors.New("data unavailable")
)

// require checks columns first so a header-only export with every column
// reports no data rather than unavailable data.
func require(snap *ingest.Snapshot, cols ...string) error {
	if err := snap.Require(cols...); err != nil {
		return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	if snap.Len() == 0 {
		return ErrNoData
	}
	return nil
}
