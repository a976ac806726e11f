package services

import (
	"slices"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/models"
)

func refunded(tx models.Transaction) bool {
	return models.Value(tx.AmountRefunded).IsPositive()
}

// RefundSummary covers rows with a positive refunded amount. The trend is
// keyed by the created day of the refunded payment.
func RefundSummary(snap *ingest.Snapshot) (*models.RefundSummary, error) {
	err := require(snap,
		ingest.ColAmountRefunded,
		ingest.ColCreated,
		ingest.ColCurrency,
	)
	if err != nil {
		return nil, err
	}

	s := &models.RefundSummary{}
	days := map[civil.Date]decimal.Decimal{}
	currencies := map[string]decimal.Decimal{}
	for _, tx := range snap.Rows {
		if !refunded(tx) {
			continue
		}
		amount := tx.AmountRefunded.Decimal
		s.TotalRefunded = s.TotalRefunded.Add(amount)
		s.RefundCount++

		if tx.Created.Valid {
			day := tx.Created.Date()
			days[day] = days[day].Add(amount)
		}
		if tx.Currency != "" {
			currency := strings.ToUpper(tx.Currency)
			currencies[currency] = currencies[currency].Add(amount)
		}
	}
	if s.RefundCount == 0 {
		return nil, ErrNoData
	}

	s.Trend = dailyTrend(days)
	for currency, amount := range currencies {
		s.ByCurrency = append(s.ByCurrency, models.CurrencyAmount{Currency: currency, Amount: amount})
	}
	slices.SortFunc(s.ByCurrency, func(a, b models.CurrencyAmount) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.Currency, b.Currency)
	})
	return s, nil
}

type RefundFilter struct {
	Created  DateRange
	Statuses []models.Status
}

// FilterRefunds returns refunded rows matching the filter, newest first.
func FilterRefunds(snap *ingest.Snapshot, f RefundFilter) ([]models.Transaction, error) {
	cols := []string{ingest.ColAmountRefunded}
	if !f.Created.Open() {
		cols = append(cols, ingest.ColCreated)
	}
	if len(f.Statuses) > 0 {
		cols = append(cols, ingest.ColStatus)
	}
	if err := require(snap, cols...); err != nil {
		return nil, err
	}

	var rows []models.Transaction
	for _, tx := range snap.Rows {
		if !refunded(tx) || !f.Created.Contains(tx.Created) {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, tx.Status) {
			continue
		}
		rows = append(rows, tx)
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	slices.SortStableFunc(rows, newestFirst)
	return rows, nil
}

func dailyTrend(days map[civil.Date]decimal.Decimal) []models.DailyAmount {
	out := make([]models.DailyAmount, 0, len(days))
	for day, amount := range days {
		out = append(out, models.DailyAmount{Date: day, Amount: amount})
	}
	slices.SortFunc(out, func(a, b models.DailyAmount) int {
		return a.Date.Compare(b.Date)
	})
	return out
}
