package models

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPaid          Status = "Paid"
	StatusFailed        Status = "Failed"
	StatusRefunded      Status = "Refunded"
	StatusPartialRefund Status = "Partial Refund"
)

// Canonical reports whether s belongs to the canonical status set.
func (s Status) Canonical() bool {
	switch s {
	case StatusPaid, StatusFailed, StatusRefunded, StatusPartialRefund:
		return true
	}
	return false
}

// Failed is true for any status outside Paid, Refunded and Partial Refund,
// including raw values that were passed through unmapped.
func (s Status) Failed() bool {
	switch s {
	case StatusPaid, StatusRefunded, StatusPartialRefund:
		return false
	}
	return true
}

type Category string

const (
	CategoryAdspends     Category = "Adspends"
	CategorySubscription Category = "Subscription"
)

var Categories = []Category{CategoryAdspends, CategorySubscription}

func ParseCategory(s string) (Category, bool) {
	switch {
	case strings.EqualFold(s, string(CategoryAdspends)):
		return CategoryAdspends, true
	case strings.EqualFold(s, string(CategorySubscription)):
		return CategorySubscription, true
	}
	return "", false
}

// Categorize classifies a description: any case-insensitive occurrence of
// "subscription", even inside a longer word, means Subscription.
func Categorize(description string) Category {
	if strings.Contains(strings.ToLower(description), "subscription") {
		return CategorySubscription
	}
	return CategoryAdspends
}

// NullTime is a timestamp that may be missing in the source.
type NullTime struct {
	Time  time.Time
	Valid bool
}

func NewNullTime(t time.Time) NullTime {
	return NullTime{Time: t, Valid: true}
}

func (n NullTime) Date() civil.Date {
	return civil.DateOf(n.Time)
}

// Month returns the YYYY-MM bucket, or "" when the time is missing.
func (n NullTime) Month() string {
	if !n.Valid {
		return ""
	}
	return n.Time.Format("2006-01")
}

func (n NullTime) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Time.MarshalJSON()
}

type Transaction struct {
	PaymentIntentID string `json:"payment_intent_id"`
	CustomerID      string `json:"customer_id"`
	CustomerEmail   string `json:"customer_email"`
	Description     string `json:"description"`
	Currency        string `json:"currency"`

	Amount                  decimal.NullDecimal `json:"amount"`
	AmountRefunded          decimal.NullDecimal `json:"amount_refunded"`
	ConvertedAmount         decimal.NullDecimal `json:"converted_amount"`
	ConvertedAmountRefunded decimal.NullDecimal `json:"converted_amount_refunded"`
	Fee                     decimal.NullDecimal `json:"fee"`
	TaxesOnFee              decimal.NullDecimal `json:"taxes_on_fee"`
	GatewayCharge           decimal.NullDecimal `json:"gateway_charge"`
	DisputedAmount          decimal.NullDecimal `json:"disputed_amount"`

	RawStatus     string   `json:"raw_status"`
	Status        Status   `json:"status"`
	Captured      *bool    `json:"captured"`
	Category      Category `json:"category"`
	CardCountry   string   `json:"card_country"`
	DeclineReason string   `json:"decline_reason"`
	DisputeReason string   `json:"dispute_reason"`
	DisputeStatus string   `json:"dispute_status"`
	SourceChannel string   `json:"source_channel"`

	Created     NullTime `json:"created"`
	RefundedAt  NullTime `json:"refunded_at"`
	DisputedAt  NullTime `json:"disputed_at"`
	EvidenceDue NullTime `json:"evidence_due"`
}

// Value returns the decimal, or zero when missing, so sums skip missing cells.
func Value(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
