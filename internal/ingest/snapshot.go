package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"payments-dashboard/internal/models"
)

type LoadStats struct {
	Records   int            `json:"records"`
	Rows      int            `json:"rows"`
	Malformed int            `json:"malformed"`
	Skipped   int            `json:"skipped"`
	Rejected  int            `json:"rejected"`
	Unmapped  map[string]int `json:"unmapped,omitempty"`
}

// Snapshot is the normalized table. It is never modified after it is
// built; every reader shares the same instance.
type Snapshot struct {
	ID       string
	Source   string
	LoadedAt time.Time
	Rows     []models.Transaction
	Stats    LoadStats

	columns map[string]bool
}

// NewSnapshot wraps already-normalized rows. columns lists the canonical
// columns the rows were read from.
func NewSnapshot(source string, columns []string, rows []models.Transaction) *Snapshot {
	cols := make(map[string]bool, len(columns)+1)
	for _, c := range columns {
		cols[c] = true
	}
	cols[ColCategory] = true

	return &Snapshot{
		ID:       uuid.NewString(),
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Rows:     rows,
		Stats:    LoadStats{Records: len(rows), Rows: len(rows)},
		columns:  cols,
	}
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

func (s *Snapshot) Has(col string) bool {
	return s != nil && s.columns[col]
}

// Columns returns the canonical columns present, in export order.
func (s *Snapshot) Columns() []string {
	out := make([]string, 0, len(s.columns))
	for _, c := range AllColumns {
		if s.columns[c] {
			out = append(out, c)
		}
	}
	return out
}

type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}

// Require returns a *MissingColumnsError naming every absent column.
func (s *Snapshot) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !s.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}
