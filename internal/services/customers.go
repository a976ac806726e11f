package services

import (
	"slices"

	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/models"
)

type CustomerReport struct {
	Email   string                 `json:"email"`
	Metrics models.CustomerMetrics `json:"metrics"`
	Rows    []models.Transaction   `json:"rows"`
	Page    Page                   `json:"page"`
}

// LookupCustomer reports on every row with exactly this email. Metrics
// cover all matching rows; Rows holds the requested page, newest first.
func LookupCustomer(snap *ingest.Snapshot, email string, page, pageSize int) (*CustomerReport, error) {
	err := require(snap,
		ingest.ColCustomerEmail,
		ingest.ColConvertedAmount,
		ingest.ColAmountRefunded,
		ingest.ColDisputedAmount,
		ingest.ColStatus,
		ingest.ColCreated,
	)
	if err != nil {
		return nil, err
	}

	var rows []models.Transaction
	for _, tx := range snap.Rows {
		if tx.CustomerEmail == email {
			rows = append(rows, tx)
		}
	}
	if email == "" || len(rows) == 0 {
		return nil, ErrNoData
	}

	var m models.CustomerMetrics
	for _, tx := range rows {
		amount := models.Value(tx.ConvertedAmount)
		paid := tx.Status == models.StatusPaid

		m.TotalPayments = m.TotalPayments.Add(amount)
		m.TotalRefunds = m.TotalRefunds.Add(models.Value(tx.AmountRefunded))
		m.TotalDisputes = m.TotalDisputes.Add(models.Value(tx.DisputedAmount))
		if paid {
			m.TotalSuccessfulPayments = m.TotalSuccessfulPayments.Add(amount)
		}

		switch tx.Category {
		case models.CategoryAdspends:
			m.TotalAdspends = m.TotalAdspends.Add(amount)
			if paid {
				m.TotalAdspendTransactions = m.TotalAdspendTransactions.Add(amount)
			}
		case models.CategorySubscription:
			m.TotalSubscription = m.TotalSubscription.Add(amount)
			if paid {
				m.TotalSubscriptionTransactions = m.TotalSubscriptionTransactions.Add(amount)
			}
		}
	}

	slices.SortStableFunc(rows, newestFirst)
	pageRows, p := paginate(rows, page, pageSize)

	return &CustomerReport{
		Email:   email,
		Metrics: m,
		Rows:    pageRows,
		Page:    p,
	}, nil
}

// newestFirst orders by created time descending with missing dates last.
func newestFirst(a, b models.Transaction) int {
	switch {
	case !a.Created.Valid && !b.Created.Valid:
		return 0
	case !a.Created.Valid:
		return 1
	case !b.Created.Valid:
		return -1
	}
	return b.Created.Time.Compare(a.Created.Time)
}
