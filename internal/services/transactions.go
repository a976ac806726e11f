package services

import (
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/civil"

	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/models"
)

type CapturedFilter string

const (
	CapturedAll CapturedFilter = "All"
	CapturedYes CapturedFilter = "Yes"
	CapturedNo  CapturedFilter = "No"
)

func ParseCapturedFilter(s string) (CapturedFilter, error) {
	switch {
	case s == "" || strings.EqualFold(s, string(CapturedAll)):
		return CapturedAll, nil
	case strings.EqualFold(s, string(CapturedYes)):
		return CapturedYes, nil
	case strings.EqualFold(s, string(CapturedNo)):
		return CapturedNo, nil
	}
	return "", fmt.Errorf("captured filter must be All, Yes or No, got %q", s)
}

// DateRange is inclusive on both ends. A zero bound is open.
type DateRange struct {
	From civil.Date
	To   civil.Date
}

func (r DateRange) Open() bool {
	return !r.From.IsValid() && !r.To.IsValid()
}

// Contains reports whether t falls in the range by calendar day. A missing
// time is only contained by an open range.
func (r DateRange) Contains(t models.NullTime) bool {
	if r.Open() {
		return true
	}
	if !t.Valid {
		return false
	}
	day := t.Date()
	if r.From.IsValid() && day.Before(r.From) {
		return false
	}
	if r.To.IsValid() && day.After(r.To) {
		return false
	}
	return true
}

type TransactionFilter struct {
	Statuses []models.Status
	Captured CapturedFilter
	// Category is nil for all categories.
	Category *models.Category
	Created  DateRange
	// Search matches a substring of the payment intent or customer id.
	Search   string
	Page     int
	PageSize int
}

type TransactionPage struct {
	Rows []models.Transaction `json:"rows"`
	Page Page                 `json:"page"`
}

// FilterTransactions applies every set filter and returns one page of the
// matches in source order. Only columns an active filter reads are required.
func FilterTransactions(snap *ingest.Snapshot, f TransactionFilter) (*TransactionPage, error) {
	if err := require(snap, f.columns()...); err != nil {
		return nil, err
	}

	var rows []models.Transaction
	for _, tx := range snap.Rows {
		if f.match(tx) {
			rows = append(rows, tx)
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	pageRows, p := paginate(rows, f.Page, f.PageSize)
	return &TransactionPage{Rows: pageRows, Page: p}, nil
}

func (f TransactionFilter) columns() []string {
	var cols []string
	if len(f.Statuses) > 0 {
		cols = append(cols, ingest.ColStatus)
	}
	if f.Captured == CapturedYes || f.Captured == CapturedNo {
		cols = append(cols, ingest.ColCaptured)
	}
	if !f.Created.Open() {
		cols = append(cols, ingest.ColCreated)
	}
	if f.Search != "" {
		cols = append(cols, ingest.ColPaymentIntentID, ingest.ColCustomerID)
	}
	return cols
}

func (f TransactionFilter) match(tx models.Transaction) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, tx.Status) {
		return false
	}

	switch f.Captured {
	case CapturedYes:
		if tx.Captured == nil || !*tx.Captured {
			return false
		}
	case CapturedNo:
		if tx.Captured == nil || *tx.Captured {
			return false
		}
	}

	if f.Category != nil && tx.Category != *f.Category {
		return false
	}
	if !f.Created.Contains(tx.Created) {
		return false
	}
	if f.Search != "" &&
		!strings.Contains(tx.PaymentIntentID, f.Search) &&
		!strings.Contains(tx.CustomerID, f.Search) {
		return false
	}
	return true
}
