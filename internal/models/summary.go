package models

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

type OverviewTotals struct {
	TotalPaymentValue   decimal.Decimal `json:"total_payment_value"`
	TotalSuccessful     decimal.Decimal `json:"total_successful"`
	TotalFailed         decimal.Decimal `json:"total_failed"`
	TotalGatewayCharges decimal.Decimal `json:"total_gateway_charges"`
	TotalFee            decimal.Decimal `json:"total_fee"`
	TotalRefunded       decimal.Decimal `json:"total_refunded"`
}

type StatusCount struct {
	Status Status          `json:"status"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type MonthlyAmount struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

type MonthlyOutcome struct {
	Month      string          `json:"month"`
	Refunded   decimal.Decimal `json:"refunded"`
	Successful decimal.Decimal `json:"successful"`
	Failed     decimal.Decimal `json:"failed"`
	Total      decimal.Decimal `json:"total"`
}

// MonthlyOutcomeShare holds each outcome as a percentage of its month.
type MonthlyOutcomeShare struct {
	Month      string  `json:"month"`
	Refunded   float64 `json:"refunded_pct"`
	Successful float64 `json:"successful_pct"`
	Failed     float64 `json:"failed_pct"`
}

type CategoryMonth struct {
	Month              string          `json:"month"`
	Category           Category        `json:"category"`
	TotalPayment       decimal.Decimal `json:"total_payment"`
	SuccessfulPayments int             `json:"successful_payments"`
	Refunded           decimal.Decimal `json:"refunded"`
	Failed             decimal.Decimal `json:"failed"`
}

type CategoryTotals struct {
	Category       Category        `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	AmountRefunded decimal.Decimal `json:"amount_refunded"`
	GatewayCharges decimal.Decimal `json:"gateway_charges"`
}

type DailyAmount struct {
	Date   civil.Date      `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type CategoryDailyAmount struct {
	Category Category        `json:"category"`
	Date     civil.Date      `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
}

type CategoryMonthAmount struct {
	Month    string          `json:"month"`
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type CountryRevenue struct {
	Country string          `json:"country"`
	Amount  decimal.Decimal `json:"amount"`
}

type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

type CurrencyAmount struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

type CustomerMetrics struct {
	TotalPayments                 decimal.Decimal `json:"total_payments"`
	TotalSuccessfulPayments       decimal.Decimal `json:"total_successful_payments"`
	TotalAdspendTransactions      decimal.Decimal `json:"total_adspend_transactions"`
	TotalSubscriptionTransactions decimal.Decimal `json:"total_subscription_transactions"`
	TotalRefunds                  decimal.Decimal `json:"total_refunds"`
	TotalDisputes                 decimal.Decimal `json:"total_disputes"`
	TotalSubscription             decimal.Decimal `json:"total_subscription"`
	TotalAdspends                 decimal.Decimal `json:"total_adspends"`
}

type RefundSummary struct {
	TotalRefunded decimal.Decimal  `json:"total_refunded"`
	RefundCount   int              `json:"refund_count"`
	Trend         []DailyAmount    `json:"trend"`
	ByCurrency    []CurrencyAmount `json:"by_currency"`
}

type DisputeGroup struct {
	Key    string          `json:"key"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type DisputeSummary struct {
	TotalDisputed decimal.Decimal `json:"total_disputed"`
	DisputeCount  int             `json:"dispute_count"`
	AmountWon     decimal.Decimal `json:"amount_won"`
	AmountLost    decimal.Decimal `json:"amount_lost"`
	ByReason      []DisputeGroup  `json:"by_reason"`
	ByStatus      []DisputeGroup  `json:"by_status"`
	Trend         []DailyAmount   `json:"trend"`
}

type CohortRow struct {
	Cohort    string    `json:"cohort"`
	Size      int       `json:"size"`
	Counts    []int     `json:"counts"`
	Retention []float64 `json:"retention"`
}

// CohortMatrix is indexed by cohort row, then period number. Periods a
// cohort has not reached yet hold zero.
type CohortMatrix struct {
	Periods int         `json:"periods"`
	Rows    []CohortRow `json:"rows"`
}
