package services

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/models"
)

// CategoryMonthly breaks one category down by created month: total payment,
// number of Paid rows, refunded amount and failed amount.
func CategoryMonthly(snap *ingest.Snapshot, category models.Category) ([]models.CategoryMonth, error) {
	err := require(snap,
		ingest.ColCreated,
		ingest.ColConvertedAmount,
		ingest.ColConvertedAmountRefunded,
		ingest.ColStatus,
	)
	if err != nil {
		return nil, err
	}

	months := map[string]*models.CategoryMonth{}
	for _, tx := range snap.Rows {
		if tx.Category != category {
			continue
		}
		month := tx.Created.Month()
		if month == "" {
			continue
		}
		m, ok := months[month]
		if !ok {
			m = &models.CategoryMonth{Month: month, Category: category}
			months[month] = m
		}

		amount := models.Value(tx.ConvertedAmount)
		m.TotalPayment = m.TotalPayment.Add(amount)
		m.Refunded = m.Refunded.Add(models.Value(tx.ConvertedAmountRefunded))
		if tx.Status == models.StatusPaid {
			m.SuccessfulPayments++
		}
		if tx.Status.Failed() {
			m.Failed = m.Failed.Add(amount)
		}
	}
	if len(months) == 0 {
		return nil, ErrNoData
	}

	out := make([]models.CategoryMonth, 0, len(months))
	for _, month := range sortedKeys(months) {
		out = append(out, *months[month])
	}
	return out, nil
}

// CategorySummary totals amount, refunds and gateway charges per category.
func CategorySummary(snap *ingest.Snapshot) ([]models.CategoryTotals, error) {
	err := require(snap,
		ingest.ColAmount,
		ingest.ColAmountRefunded,
		ingest.ColGatewayCharge,
	)
	if err != nil {
		return nil, err
	}

	totals := map[models.Category]*models.CategoryTotals{}
	for _, tx := range snap.Rows {
		t, ok := totals[tx.Category]
		if !ok {
			t = &models.CategoryTotals{Category: tx.Category}
			totals[tx.Category] = t
		}
		t.Amount = t.Amount.Add(models.Value(tx.Amount))
		t.AmountRefunded = t.AmountRefunded.Add(models.Value(tx.AmountRefunded))
		t.GatewayCharges = t.GatewayCharges.Add(models.Value(tx.GatewayCharge))
	}

	out := make([]models.CategoryTotals, 0, len(totals))
	for _, c := range models.Categories {
		if t, ok := totals[c]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

// CategoryRevenueTrend sums the amount per category per created day.
func CategoryRevenueTrend(snap *ingest.Snapshot) ([]models.CategoryDailyAmount, error) {
	if err := require(snap, ingest.ColCreated, ingest.ColAmount); err != nil {
		return nil, err
	}

	type key struct {
		category models.Category
		day      string
	}
	index := map[key]int{}
	var out []models.CategoryDailyAmount
	for _, tx := range snap.Rows {
		if !tx.Created.Valid {
			continue
		}
		day := tx.Created.Date()
		k := key{tx.Category, day.String()}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, models.CategoryDailyAmount{Category: tx.Category, Date: day})
		}
		out[i].Amount = out[i].Amount.Add(models.Value(tx.Amount))
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}

	slices.SortFunc(out, func(a, b models.CategoryDailyAmount) int {
		if c := strings.Compare(string(a.Category), string(b.Category)); c != 0 {
			return c
		}
		return a.Date.Compare(b.Date)
	})
	return out, nil
}

// CategoryMonthlyAmounts sums converted amounts per created month and
// category.
func CategoryMonthlyAmounts(snap *ingest.Snapshot) ([]models.CategoryMonthAmount, error) {
	if err := require(snap, ingest.ColCreated, ingest.ColConvertedAmount); err != nil {
		return nil, err
	}

	sums := map[string]map[models.Category]decimal.Decimal{}
	for _, tx := range snap.Rows {
		month := tx.Created.Month()
		if month == "" {
			continue
		}
		if sums[month] == nil {
			sums[month] = map[models.Category]decimal.Decimal{}
		}
		sums[month][tx.Category] = sums[month][tx.Category].Add(models.Value(tx.ConvertedAmount))
	}
	if len(sums) == 0 {
		return nil, ErrNoData
	}

	var out []models.CategoryMonthAmount
	for _, month := range sortedKeys(sums) {
		for _, c := range models.Categories {
			if amount, ok := sums[month][c]; ok {
				out = append(out, models.CategoryMonthAmount{Month: month, Category: c, Amount: amount})
			}
		}
	}
	return out, nil
}
