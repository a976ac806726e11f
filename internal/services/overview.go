package services

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/models"
)

var hundred = decimal.NewFromInt(100)

func OverviewTotals(snap *ingest.Snapshot) (models.OverviewTotals, error) {
	var t models.OverviewTotals
	err := require(snap,
		ingest.ColConvertedAmount,
		ingest.ColConvertedAmountRefunded,
		ingest.ColGatewayCharge,
		ingest.ColFee,
		ingest.ColStatus,
	)
	if err != nil {
		return t, err
	}

	for _, tx := range snap.Rows {
		amount := models.Value(tx.ConvertedAmount)
		t.TotalPaymentValue = t.TotalPaymentValue.Add(amount)
		switch {
		case tx.Status == models.StatusPaid:
			t.TotalSuccessful = t.TotalSuccessful.Add(amount)
		case tx.Status.Failed():
			t.TotalFailed = t.TotalFailed.Add(amount)
		}
		if tx.Status == models.StatusRefunded {
			t.TotalRefunded = t.TotalRefunded.Add(models.Value(tx.ConvertedAmountRefunded))
		}
		t.TotalGatewayCharges = t.TotalGatewayCharges.Add(models.Value(tx.GatewayCharge))
		t.TotalFee = t.TotalFee.Add(models.Value(tx.Fee))
	}
	return t, nil
}

// StatusDistribution counts rows per status, largest first.
func StatusDistribution(snap *ingest.Snapshot) ([]models.StatusCount, error) {
	if err := require(snap, ingest.ColStatus, ingest.ColConvertedAmount); err != nil {
		return nil, err
	}

	index := map[models.Status]int{}
	var out []models.StatusCount
	for _, tx := range snap.Rows {
		if tx.Status == "" {
			continue
		}
		i, ok := index[tx.Status]
		if !ok {
			i = len(out)
			index[tx.Status] = i
			out = append(out, models.StatusCount{Status: tx.Status})
		}
		out[i].Count++
		out[i].Amount = out[i].Amount.Add(models.Value(tx.ConvertedAmount))
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}

	slices.SortStableFunc(out, func(a, b models.StatusCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out, nil
}

// MonthlyRevenue sums converted amounts per created month, oldest first.
func MonthlyRevenue(snap *ingest.Snapshot) ([]models.MonthlyAmount, error) {
	if err := require(snap, ingest.ColCreated, ingest.ColConvertedAmount); err != nil {
		return nil, err
	}

	sums := map[string]decimal.Decimal{}
	for _, tx := range snap.Rows {
		month := tx.Created.Month()
		if month == "" {
			continue
		}
		sums[month] = sums[month].Add(models.Value(tx.ConvertedAmount))
	}
	if len(sums) == 0 {
		return nil, ErrNoData
	}

	out := make([]models.MonthlyAmount, 0, len(sums))
	for _, month := range sortedKeys(sums) {
		out = append(out, models.MonthlyAmount{Month: month, Amount: sums[month]})
	}
	return out, nil
}

// MonthlyOutcomes splits each month into refunded, successful and failed
// amounts. Refunded counts refunded amounts of Refunded rows only.
func MonthlyOutcomes(snap *ingest.Snapshot) ([]models.MonthlyOutcome, error) {
	err := require(snap,
		ingest.ColCreated,
		ingest.ColConvertedAmount,
		ingest.ColConvertedAmountRefunded,
		ingest.ColStatus,
	)
	if err != nil {
		return nil, err
	}

	months := map[string]*models.MonthlyOutcome{}
	for _, tx := range snap.Rows {
		month := tx.Created.Month()
		if month == "" {
			continue
		}
		m, ok := months[month]
		if !ok {
			m = &models.MonthlyOutcome{Month: month}
			months[month] = m
		}

		amount := models.Value(tx.ConvertedAmount)
		switch {
		case tx.Status == models.StatusRefunded:
			m.Refunded = m.Refunded.Add(models.Value(tx.ConvertedAmountRefunded))
		case tx.Status == models.StatusPaid:
			m.Successful = m.Successful.Add(amount)
		case tx.Status.Failed():
			m.Failed = m.Failed.Add(amount)
		}
	}
	if len(months) == 0 {
		return nil, ErrNoData
	}

	out := make([]models.MonthlyOutcome, 0, len(months))
	for _, month := range sortedKeys(months) {
		m := months[month]
		m.Total = m.Refunded.Add(m.Successful).Add(m.Failed)
		out = append(out, *m)
	}
	return out, nil
}

// Percentages expresses each outcome as a share of its month's total.
// Months with a zero total report zero for every outcome.
func Percentages(outcomes []models.MonthlyOutcome) []models.MonthlyOutcomeShare {
	out := make([]models.MonthlyOutcomeShare, 0, len(outcomes))
	for _, m := range outcomes {
		share := models.MonthlyOutcomeShare{Month: m.Month}
		if !m.Total.IsZero() {
			share.Refunded = percent(m.Refunded, m.Total)
			share.Successful = percent(m.Successful, m.Total)
			share.Failed = percent(m.Failed, m.Total)
		}
		out = append(out, share)
	}
	return out
}

func percent(part, total decimal.Decimal) float64 {
	return part.Mul(hundred).Div(total).InexactFloat64()
}

// CountryBreakdown sums converted amounts per card country, largest first.
// Ties are ordered by country code.
func CountryBreakdown(snap *ingest.Snapshot) ([]models.CountryRevenue, error) {
	if err := require(snap, ingest.ColCardCountry, ingest.ColConvertedAmount); err != nil {
		return nil, err
	}

	sums := map[string]decimal.Decimal{}
	for _, tx := range snap.Rows {
		if tx.CardCountry == "" {
			continue
		}
		sums[tx.CardCountry] = sums[tx.CardCountry].Add(models.Value(tx.ConvertedAmount))
	}
	if len(sums) == 0 {
		return nil, ErrNoData
	}

	out := make([]models.CountryRevenue, 0, len(sums))
	for country, amount := range sums {
		out = append(out, models.CountryRevenue{Country: country, Amount: amount})
	}
	slices.SortFunc(out, func(a, b models.CountryRevenue) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.Country, b.Country)
	})
	return out, nil
}

// DeclineReasons counts decline reasons on failed rows, optionally within
// one category. Most frequent first.
func DeclineReasons(snap *ingest.Snapshot, category *models.Category) ([]models.ReasonCount, error) {
	if err := require(snap, ingest.ColStatus, ingest.ColDeclineReason); err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, tx := range snap.Rows {
		if !tx.Status.Failed() || tx.DeclineReason == "" {
			continue
		}
		if category != nil && tx.Category != *category {
			continue
		}
		counts[tx.DeclineReason]++
	}
	if len(counts) == 0 {
		return nil, ErrNoData
	}

	out := make([]models.ReasonCount, 0, len(counts))
	for reason, n := range counts {
		out = append(out, models.ReasonCount{Reason: reason, Count: n})
	}
	slices.SortFunc(out, func(a, b models.ReasonCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Reason, b.Reason)
	})
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
