package services

import (
	"cmp"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/models"
)

const (
	disputeWon  = "won"
	disputeLost = "lost"
)

// DisputeSummary totals disputed amounts. A row counts as a dispute when it
// has a dispute date; groups and outcomes only look at rows with a reason or
// status set.
func DisputeSummary(snap *ingest.Snapshot) (*models.DisputeSummary, error) {
	err := require(snap,
		ingest.ColDisputedAmount,
		ingest.ColDisputedAt,
		ingest.ColDisputeReason,
		ingest.ColDisputeStatus,
	)
	if err != nil {
		return nil, err
	}

	s := &models.DisputeSummary{}
	reasons := newGroups()
	statuses := newGroups()
	days := map[civil.Date]decimal.Decimal{}

	for _, tx := range snap.Rows {
		amount := models.Value(tx.DisputedAmount)
		s.TotalDisputed = s.TotalDisputed.Add(amount)

		if tx.DisputedAt.Valid {
			s.DisputeCount++
			day := tx.DisputedAt.Date()
			days[day] = days[day].Add(amount)
		}
		reasons.add(tx.DisputeReason, amount)
		statuses.add(tx.DisputeStatus, amount)

		if amount.IsPositive() {
			switch strings.ToLower(tx.DisputeStatus) {
			case disputeWon:
				s.AmountWon = s.AmountWon.Add(amount)
			case disputeLost:
				s.AmountLost = s.AmountLost.Add(amount)
			}
		}
	}
	if s.DisputeCount == 0 && s.TotalDisputed.IsZero() {
		return nil, ErrNoData
	}

	s.ByReason = reasons.sorted()
	s.ByStatus = statuses.sorted()
	s.Trend = dailyTrend(days)
	return s, nil
}

// DisputesDueBy returns disputes whose evidence is due on or before cutoff,
// soonest first.
func DisputesDueBy(snap *ingest.Snapshot, cutoff civil.Date) ([]models.Transaction, error) {
	if err := require(snap, ingest.ColEvidenceDue); err != nil {
		return nil, err
	}

	var rows []models.Transaction
	for _, tx := range snap.Rows {
		if !tx.EvidenceDue.Valid || tx.EvidenceDue.Date().After(cutoff) {
			continue
		}
		rows = append(rows, tx)
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	slices.SortStableFunc(rows, func(a, b models.Transaction) int {
		return a.EvidenceDue.Time.Compare(b.EvidenceDue.Time)
	})
	return rows, nil
}

type groups struct {
	index map[string]int
	out   []models.DisputeGroup
}

func newGroups() *groups {
	return &groups{index: map[string]int{}}
}

func (g *groups) add(key string, amount decimal.Decimal) {
	if key == "" {
		return
	}
	i, ok := g.index[key]
	if !ok {
		i = len(g.out)
		g.index[key] = i
		g.out = append(g.out, models.DisputeGroup{Key: key})
	}
	g.out[i].Count++
	g.out[i].Amount = g.out[i].Amount.Add(amount)
}

func (g *groups) sorted() []models.DisputeGroup {
	slices.SortFunc(g.out, func(a, b models.DisputeGroup) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return g.out
}
