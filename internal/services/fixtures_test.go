package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/models"
)

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func at(s string) models.NullTime {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return models.NewNullTime(t)
}

func flag(v bool) *bool { return &v }

type txOpt func(*models.Transaction)

func tx(id, email, description string, status models.Status, amount, created string, opts ...txOpt) models.Transaction {
	t := models.Transaction{
		PaymentIntentID: id,
		CustomerID:      "cus_" + email,
		CustomerEmail:   email,
		Description:     description,
		Currency:        "usd",
		Amount:          dec(amount),
		ConvertedAmount: dec(amount),
		RawStatus:       string(status),
		Status:          status,
		Captured:        flag(status == models.StatusPaid),
		Category:        models.Categorize(description),
	}
	if created != "" {
		t.Created = at(created)
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func refundedAmount(s string) txOpt {
	return func(t *models.Transaction) {
		t.AmountRefunded = dec(s)
		t.ConvertedAmountRefunded = dec(s)
	}
}

func fee(s string) txOpt {
	return func(t *models.Transaction) {
		t.Fee = dec(s)
		t.GatewayCharge = dec(s)
	}
}

func country(c string) txOpt {
	return func(t *models.Transaction) { t.CardCountry = c }
}

func declined(reason string) txOpt {
	return func(t *models.Transaction) { t.DeclineReason = reason }
}

func disputed(amount, date, reason, status, due string) txOpt {
	return func(t *models.Transaction) {
		t.DisputedAmount = dec(amount)
		t.DisputedAt = at(date)
		t.DisputeReason = reason
		t.DisputeStatus = status
		if due != "" {
			t.EvidenceDue = at(due)
		}
	}
}

func currency(c string) txOpt {
	return func(t *models.Transaction) { t.Currency = c }
}

func fullSnapshot(rows ...models.Transaction) *ingest.Snapshot {
	return ingest.NewSnapshot("test", ingest.AllColumns, rows)
}

func sampleRows() []models.Transaction {
	return []models.Transaction{
		tx("pi_1", "a@example.com", "Monthly Subscription", models.StatusPaid, "100", "2024-01-05", fee("3"), country("US")),
		tx("pi_2", "a@example.com", "Ad credit", models.StatusRefunded, "50", "2024-01-20", fee("1.5"), country("US"), refundedAmount("50")),
		tx("pi_3", "b@example.com", "Ad credit", models.StatusFailed, "20", "2024-02-11", country("DE"), declined("card_declined")),
		tx("pi_4", "c@example.com", "Annual SUBSCRIPTION", models.StatusPaid, "300", "2024-02-01", fee("9"), country("GB"),
			disputed("300", "2024-02-15", "fraudulent", "lost", "2024-03-01")),
		tx("pi_5", "a@example.com", "Ad credit", models.StatusPaid, "80", "2024-03-03", fee("2"), country("US")),
		tx("pi_6", "b@example.com", "Ad credit", models.Status("on_hold"), "10", "2024-03-04", country("DE"), declined("insufficient_funds")),
		tx("pi_7", "d@example.com", "Ad credit", models.StatusPartialRefund, "40", "", country("FR"), refundedAmount("15"), currency("eur")),
	}
}

func mustEqual(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
