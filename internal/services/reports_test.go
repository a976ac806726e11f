package services

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"

	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/models"
)

func TestCategoryMonthly(t *testing.T) {
	snap := fullSnapshot(sampleRows()...)

	ads, err := CategoryMonthly(snap, models.CategoryAdspends)
	if err != nil {
		t.Fatalf("CategoryMonthly(Adspends) error = %v", err)
	}
	if len(ads) != 3 {
		t.Fatalf("got %d months, want 3", len(ads))
	}
	mustEqual(t, "jan refunded", ads[0].Refunded, "50")
	mustEqual(t, "feb failed", ads[1].Failed, "20")
	mustEqual(t, "mar total", ads[2].TotalPayment, "90")
	if ads[2].SuccessfulPayments != 1 {
		t.Errorf("mar successful = %d, want 1", ads[2].SuccessfulPayments)
	}

	subs, err := CategoryMonthly(snap, models.CategorySubscription)
	if err != nil {
		t.Fatalf("CategoryMonthly(Subscription) error = %v", err)
	}
	if len(subs) != 2 || subs[0].SuccessfulPayments != 1 || subs[1].SuccessfulPayments != 1 {
		t.Errorf("subscription months = %+v", subs)
	}
}

func TestCategorySummaryAndTrends(t *testing.T) {
	snap := fullSnapshot(sampleRows()...)

	summary, err := CategorySummary(snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary) != 2 || summary[0].Category != models.CategoryAdspends {
		t.Fatalf("summary = %+v", summary)
	}
	mustEqual(t, "adspends amount", summary[0].Amount, "200")
	mustEqual(t, "adspends refunded", summary[0].AmountRefunded, "65")
	mustEqual(t, "subscription gateway", summary[1].GatewayCharges, "12")

	trend, err := CategoryRevenueTrend(snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(trend) != 6 {
		t.Errorf("got %d trend points, want 6", len(trend))
	}
	for i := 1; i < len(trend); i++ {
		if trend[i-1].Category == trend[i].Category && !trend[i-1].Date.Before(trend[i].Date) {
			t.Errorf("trend not ordered at %d: %v then %v", i, trend[i-1].Date, trend[i].Date)
		}
	}

	monthly, err := CategoryMonthlyAmounts(snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(monthly) != 5 || monthly[0].Month != "2024-01" || monthly[0].Category != models.CategoryAdspends {
		t.Errorf("monthly = %+v", monthly)
	}
}

func TestLookupCustomer(t *testing.T) {
	snap := fullSnapshot(sampleRows()...)

	got, err := LookupCustomer(snap, "a@example.com", 1, 10)
	if err != nil {
		t.Fatalf("LookupCustomer() error = %v", err)
	}

	wantOrder := []string{"pi_5", "pi_2", "pi_1"}
	if len(got.Rows) != len(wantOrder) {
		t.Fatalf("got %d rows, want %d", len(got.Rows), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got.Rows[i].PaymentIntentID != id {
			t.Errorf("row %d = %s, want %s", i, got.Rows[i].PaymentIntentID, id)
		}
	}

	m := got.Metrics
	mustEqual(t, "TotalPayments", m.TotalPayments, "230")
	mustEqual(t, "TotalSuccessfulPayments", m.TotalSuccessfulPayments, "180")
	mustEqual(t, "TotalAdspendTransactions", m.TotalAdspendTransactions, "80")
	mustEqual(t, "TotalSubscriptionTransactions", m.TotalSubscriptionTransactions, "100")
	mustEqual(t, "TotalRefunds", m.TotalRefunds, "50")
	mustEqual(t, "TotalDisputes", m.TotalDisputes, "0")
	mustEqual(t, "TotalSubscription", m.TotalSubscription, "100")
	mustEqual(t, "TotalAdspends", m.TotalAdspends, "130")
}

func TestLookupCustomer_Pagination(t *testing.T) {
	got, err := LookupCustomer(fullSnapshot(sampleRows()...), "a@example.com", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Rows) != 1 || got.Rows[0].PaymentIntentID != "pi_1" {
		t.Errorf("page 2 rows = %+v", got.Rows)
	}
	if got.Page.TotalPages != 2 || got.Page.TotalRows != 3 {
		t.Errorf("page = %+v", got.Page)
	}
	// Metrics always cover every matching row.
	mustEqual(t, "TotalPayments", got.Metrics.TotalPayments, "230")
}

func TestLookupCustomer_NoData(t *testing.T) {
	snap := fullSnapshot(sampleRows()...)
	for _, email := range []string{"nobody@example.com", "", "A@example.com"} {
		if _, err := LookupCustomer(snap, email, 1, 10); !errors.Is(err, ErrNoData) {
			t.Errorf("LookupCustomer(%q) error = %v, want ErrNoData", email, err)
		}
	}
}

func TestLookupCustomer_MissingDatesSortLast(t *testing.T) {
	rows := []models.Transaction{
		tx("pi_a", "x@example.com", "Ad", models.StatusPaid, "1", ""),
		tx("pi_b", "x@example.com", "Ad", models.StatusPaid, "1", "2024-01-01"),
		tx("pi_c", "x@example.com", "Ad", models.StatusPaid, "1", ""),
		tx("pi_d", "x@example.com", "Ad", models.StatusPaid, "1", "2024-05-01"),
	}
	got, err := LookupCustomer(fullSnapshot(rows...), "x@example.com", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"pi_d", "pi_b", "pi_a", "pi_c"}
	for i, id := range want {
		if got.Rows[i].PaymentIntentID != id {
			t.Errorf("row %d = %s, want %s", i, got.Rows[i].PaymentIntentID, id)
		}
	}
}

func TestFilterTransactions(t *testing.T) {
	snap := fullSnapshot(sampleRows()...)
	ads := models.CategoryAdspends

	tests := []struct {
		name    string
		filter  TransactionFilter
		wantIDs []string
	}{
		{
			name:    "status",
			filter:  TransactionFilter{Statuses: []models.Status{models.StatusPaid}},
			wantIDs: []string{"pi_1", "pi_4", "pi_5"},
		},
		{
			name:    "multiple statuses",
			filter:  TransactionFilter{Statuses: []models.Status{models.StatusFailed, models.StatusRefunded}},
			wantIDs: []string{"pi_2", "pi_3"},
		},
		{
			name:    "captured no",
			filter:  TransactionFilter{Captured: CapturedNo, Category: &ads},
			wantIDs: []string{"pi_2", "pi_3", "pi_6", "pi_7"},
		},
		{
			name: "category and inclusive dates",
			filter: TransactionFilter{
				Category: &ads,
				Created:  DateRange{From: civil.Date{Year: 2024, Month: 2, Day: 1}, To: civil.Date{Year: 2024, Month: 3, Day: 3}},
			},
			wantIDs: []string{"pi_3", "pi_5"},
		},
		{
			name:    "open start",
			filter:  TransactionFilter{Created: DateRange{To: civil.Date{Year: 2024, Month: 1, Day: 20}}},
			wantIDs: []string{"pi_1", "pi_2"},
		},
		{
			name:    "search customer id",
			filter:  TransactionFilter{Search: "cus_b@"},
			wantIDs: []string{"pi_3", "pi_6"},
		},
		{
			name:    "search is case sensitive",
			filter:  TransactionFilter{Search: "PI_1"},
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterTransactions(snap, tt.filter)
			if len(tt.wantIDs) == 0 {
				if !errors.Is(err, ErrNoData) {
					t.Errorf("error = %v, want ErrNoData", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FilterTransactions() error = %v", err)
			}
			if len(got.Rows) != len(tt.wantIDs) {
				t.Fatalf("got %d rows, want %d", len(got.Rows), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got.Rows[i].PaymentIntentID != id {
					t.Errorf("row %d = %s, want %s", i, got.Rows[i].PaymentIntentID, id)
				}
			}
		})
	}
}

func TestFilterTransactions_Pages(t *testing.T) {
	got, err := FilterTransactions(fullSnapshot(sampleRows()...), TransactionFilter{Search: "pi_", Page: 2, PageSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Rows) != 2 || got.Rows[0].PaymentIntentID != "pi_3" {
		t.Errorf("rows = %+v", got.Rows)
	}
	if got.Page.TotalRows != 7 || got.Page.TotalPages != 4 || len(got.Page.Links) != 4 {
		t.Errorf("page = %+v", got.Page)
	}
}

func TestFilterTransactions_MissingFilterColumn(t *testing.T) {
	snap := ingest.NewSnapshot("test", []string{ingest.ColStatus}, sampleRows())

	if _, err := FilterTransactions(snap, TransactionFilter{Captured: CapturedYes}); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("error = %v, want ErrDataUnavailable", err)
	}
	if _, err := FilterTransactions(snap, TransactionFilter{Statuses: []models.Status{models.StatusPaid}}); err != nil {
		t.Errorf("status filter should not need other columns, got %v", err)
	}
}

func TestParseCapturedFilter(t *testing.T) {
	for in, want := range map[string]CapturedFilter{"": CapturedAll, "all": CapturedAll, "YES": CapturedYes, "No": CapturedNo} {
		if got, err := ParseCapturedFilter(in); err != nil || got != want {
			t.Errorf("ParseCapturedFilter(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseCapturedFilter("maybe"); err == nil {
		t.Error("invalid captured filter should fail")
	}
}

func TestRefundSummary(t *testing.T) {
	got, err := RefundSummary(fullSnapshot(sampleRows()...))
	if err != nil {
		t.Fatalf("RefundSummary() error = %v", err)
	}

	mustEqual(t, "TotalRefunded", got.TotalRefunded, "65")
	if got.RefundCount != 2 {
		t.Errorf("RefundCount = %d, want 2", got.RefundCount)
	}
	if len(got.Trend) != 1 || got.Trend[0].Date != (civil.Date{Year: 2024, Month: 1, Day: 20}) {
		t.Errorf("Trend = %+v", got.Trend)
	}
	if len(got.ByCurrency) != 2 || got.ByCurrency[0].Currency != "USD" || got.ByCurrency[1].Currency != "EUR" {
		t.Errorf("ByCurrency = %+v", got.ByCurrency)
	}
}

func TestFilterRefunds(t *testing.T) {
	snap := fullSnapshot(sampleRows()...)

	all, err := FilterRefunds(snap, RefundFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].PaymentIntentID != "pi_2" {
		t.Errorf("all refunds = %+v", all)
	}

	partial, err := FilterRefunds(snap, RefundFilter{Statuses: []models.Status{models.StatusPartialRefund}})
	if err != nil {
		t.Fatal(err)
	}
	if len(partial) != 1 || partial[0].PaymentIntentID != "pi_7" {
		t.Errorf("partial refunds = %+v", partial)
	}

	_, err = FilterRefunds(snap, RefundFilter{Created: DateRange{From: civil.Date{Year: 2024, Month: 2, Day: 1}}})
	if !errors.Is(err, ErrNoData) {
		t.Errorf("error = %v, want ErrNoData", err)
	}
}

func TestDisputeSummary(t *testing.T) {
	got, err := DisputeSummary(fullSnapshot(sampleRows()...))
	if err != nil {
		t.Fatalf("DisputeSummary() error = %v", err)
	}

	mustEqual(t, "TotalDisputed", got.TotalDisputed, "300")
	mustEqual(t, "AmountLost", got.AmountLost, "300")
	mustEqual(t, "AmountWon", got.AmountWon, "0")
	if got.DisputeCount != 1 {
		t.Errorf("DisputeCount = %d, want 1", got.DisputeCount)
	}
	if len(got.ByReason) != 1 || got.ByReason[0].Key != "fraudulent" {
		t.Errorf("ByReason = %+v", got.ByReason)
	}
	if len(got.ByStatus) != 1 || got.ByStatus[0].Key != "lost" {
		t.Errorf("ByStatus = %+v", got.ByStatus)
	}
	if len(got.Trend) != 1 {
		t.Errorf("Trend = %+v", got.Trend)
	}
}

func TestDisputesDueBy(t *testing.T) {
	snap := fullSnapshot(sampleRows()...)

	got, err := DisputesDueBy(snap, civil.Date{Year: 2024, Month: 3, Day: 1})
	if err != nil {
		t.Fatalf("DisputesDueBy() error = %v", err)
	}
	if len(got) != 1 || got[0].PaymentIntentID != "pi_4" {
		t.Errorf("got %+v", got)
	}

	if _, err := DisputesDueBy(snap, civil.Date{Year: 2024, Month: 2, Day: 29}); !errors.Is(err, ErrNoData) {
		t.Errorf("error = %v, want ErrNoData", err)
	}
}

func TestCohortRetention(t *testing.T) {
	got, err := CohortRetention(fullSnapshot(sampleRows()...))
	if err != nil {
		t.Fatalf("CohortRetention() error = %v", err)
	}

	if got.Periods != 3 || len(got.Rows) != 2 {
		t.Fatalf("matrix = %+v", got)
	}

	jan, feb := got.Rows[0], got.Rows[1]
	if jan.Cohort != "2024-01" || jan.Size != 1 {
		t.Errorf("jan = %+v", jan)
	}
	if want := []int{1, 0, 1}; !equalInts(jan.Counts, want) {
		t.Errorf("jan counts = %v, want %v", jan.Counts, want)
	}
	if feb.Cohort != "2024-02" || feb.Size != 2 {
		t.Errorf("feb = %+v", feb)
	}
	if feb.Retention[1] != 0.5 {
		t.Errorf("feb period 1 retention = %v, want 0.5", feb.Retention[1])
	}

	for _, row := range got.Rows {
		if row.Retention[0] != 1.0 {
			t.Errorf("%s period 0 retention = %v, want 1.0", row.Cohort, row.Retention[0])
		}
		if len(row.Counts) != got.Periods {
			t.Errorf("%s has %d periods, want %d", row.Cohort, len(row.Counts), got.Periods)
		}
	}
}

func TestCohortRetention_EmailFallback(t *testing.T) {
	rows := []models.Transaction{
		tx("pi_1", "x@example.com", "Ad", models.StatusPaid, "1", "2023-12-10"),
		tx("pi_2", "x@example.com", "Ad", models.StatusPaid, "1", "2024-01-10"),
	}
	for i := range rows {
		rows[i].CustomerID = ""
	}
	snap := ingest.NewSnapshot("test", []string{ingest.ColCustomerEmail, ingest.ColCreated}, rows)

	got, err := CohortRetention(snap)
	if err != nil {
		t.Fatal(err)
	}
	// Period numbers cross the year boundary.
	if len(got.Rows) != 1 || got.Rows[0].Cohort != "2023-12" || !equalInts(got.Rows[0].Counts, []int{1, 1}) {
		t.Errorf("matrix = %+v", got)
	}
}

func TestCohortRetention_BlankIDJoinsKnownCustomer(t *testing.T) {
	rows := []models.Transaction{
		tx("pi_1", "x@example.com", "Ad", models.StatusPaid, "1", "2024-01-10"),
		tx("pi_2", "x@example.com", "Ad", models.StatusPaid, "1", "2024-02-10"),
		tx("pi_3", "y@example.com", "Ad", models.StatusPaid, "1", "2024-02-12"),
	}
	rows[0].CustomerID = ""
	rows[1].CustomerID = "cus_1"
	rows[2].CustomerID = ""

	got, err := CohortRetention(fullSnapshot(rows...))
	if err != nil {
		t.Fatal(err)
	}

	if len(got.Rows) != 2 {
		t.Fatalf("expected two cohorts, got %+v", got.Rows)
	}
	jan, feb := got.Rows[0], got.Rows[1]
	if jan.Cohort != "2024-01" || jan.Size != 1 || !equalInts(jan.Counts, []int{1, 1}) {
		t.Errorf("x@example.com should be one customer retained into February, got %+v", jan)
	}
	if feb.Cohort != "2024-02" || feb.Size != 1 {
		t.Errorf("February cohort should hold only y@example.com, got %+v", feb)
	}
}

func TestCohortRetention_NoCustomerColumns(t *testing.T) {
	snap := ingest.NewSnapshot("test", []string{ingest.ColCreated}, sampleRows())
	if _, err := CohortRetention(snap); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("error = %v, want ErrDataUnavailable", err)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
