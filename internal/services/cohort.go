package services

import (
	"fmt"
	"slices"
	"time"

	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/models"
)

// customerKeys identifies a customer by id. Rows without an id take the id
// seen with the same email elsewhere in the export, or the email itself.
type customerKeys map[string]string

func newCustomerKeys(rows []models.Transaction) customerKeys {
	ids := customerKeys{}
	for _, tx := range rows {
		if tx.CustomerID == "" || tx.CustomerEmail == "" {
			continue
		}
		if _, ok := ids[tx.CustomerEmail]; !ok {
			ids[tx.CustomerEmail] = tx.CustomerID
		}
	}
	return ids
}

func (k customerKeys) key(tx models.Transaction) string {
	if tx.CustomerID != "" {
		return tx.CustomerID
	}
	if id, ok := k[tx.CustomerEmail]; ok {
		return id
	}
	return tx.CustomerEmail
}

// monthIndex counts months since year zero so differences are periods.
func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// CohortRetention groups customers by the month of their first payment and
// counts how many are active in each later month.
func CohortRetention(snap *ingest.Snapshot) (*models.CohortMatrix, error) {
	if !snap.Has(ingest.ColCustomerID) && !snap.Has(ingest.ColCustomerEmail) {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable,
			&ingest.MissingColumnsError{Columns: []string{ingest.ColCustomerID, ingest.ColCustomerEmail}})
	}
	if err := require(snap, ingest.ColCreated); err != nil {
		return nil, err
	}

	keys := newCustomerKeys(snap.Rows)
	first := map[string]int{}
	active := map[string]map[int]bool{}
	for _, tx := range snap.Rows {
		key := keys.key(tx)
		if key == "" || !tx.Created.Valid {
			continue
		}
		m := monthIndex(tx.Created.Time)
		if f, ok := first[key]; !ok || m < f {
			first[key] = m
		}
		if active[key] == nil {
			active[key] = map[int]bool{}
		}
		active[key][m] = true
	}
	if len(first) == 0 {
		return nil, ErrNoData
	}

	// counts[cohort][period] = distinct active customers
	counts := map[int][]int{}
	periods := 0
	for key, cohort := range first {
		for m := range active[key] {
			period := m - cohort
			row := counts[cohort]
			for len(row) <= period {
				row = append(row, 0)
			}
			row[period]++
			counts[cohort] = row
			periods = max(periods, period+1)
		}
	}

	cohorts := make([]int, 0, len(counts))
	for c := range counts {
		cohorts = append(cohorts, c)
	}
	slices.Sort(cohorts)

	matrix := &models.CohortMatrix{Periods: periods}
	for _, c := range cohorts {
		row := make([]int, periods)
		copy(row, counts[c])
		size := row[0]

		retention := make([]float64, periods)
		for p, n := range row {
			retention[p] = float64(n) / float64(size)
		}

		matrix.Rows = append(matrix.Rows, models.CohortRow{
			Cohort:    time.Date(c/12, time.Month(c%12+1), 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
			Size:      size,
			Counts:    row,
			Retention: retention,
		})
	}
	return matrix, nil
}
