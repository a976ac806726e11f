package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCSV = `PaymentIntent ID,Customer ID,Customer Email,Description,Amount,Amount Refunded,Currency,Converted Amount,Converted Amount Refunded,Fee,Disputed Amount,Status,Captured,Card Address Country,Decline Reason,Created date (UTC)
pi_1,cus_1,a@example.com,Monthly Subscription,100,0,usd,100,0,3,,Paid,true,US,,2024-01-05 10:00:00
pi_2,cus_1,a@example.com,Ad credit,50,50,usd,50,50,1.5,,Refunded,true,US,,2024-02-20 09:00:00
pi_3,cus_2,b@example.com,Ad credit,20,0,eur,21,0,0.9,,requires_payment_method,false,DE,card_declined,2024-02-11 12:00:00
`

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payments.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--source", writeSource(t)))

	err := cmd.Execute()
	return out.String(), err
}

func TestSummary(t *testing.T) {
	out, err := run(t, "summary")
	if err != nil {
		t.Fatalf("summary error = %v", err)
	}

	for _, want := range []string{"Total payment value", "171.00", "Paid", "Failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryJSON(t *testing.T) {
	out, err := run(t, "summary", "--json")
	if err != nil {
		t.Fatal(err)
	}

	var overview map[string]any
	if err := json.Unmarshal([]byte(out), &overview); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := overview["totals"]; !ok {
		t.Error("expected totals widget")
	}
}

func TestCustomer(t *testing.T) {
	out, err := run(t, "customer", "a@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "pi_1") || !strings.Contains(out, "pi_2") {
		t.Errorf("expected both payments:\n%s", out)
	}
	if strings.Index(out, "pi_2") > strings.Index(out, "pi_1") {
		t.Error("rows should be newest first")
	}

	out, err = run(t, "customer", "nobody@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No data found for this email.") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestTransactionsFilters(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{"failed", []string{"--status", "Failed"}, []string{"pi_3"}, []string{"pi_1", "pi_2"}},
		{"captured", []string{"--captured", "Yes"}, []string{"pi_1", "pi_2"}, []string{"pi_3"}},
		{"category", []string{"--category", "subscription"}, []string{"pi_1"}, []string{"pi_2", "pi_3"}},
		{"date range", []string{"--from", "2024-02-01", "--to", "2024-02-15"}, []string{"pi_3"}, []string{"pi_1", "pi_2"}},
		{"search", []string{"-q", "cus_2"}, []string{"pi_3"}, []string{"pi_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"transactions"}, tt.args...)...)
			if err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("missing %s:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("unexpected %s:\n%s", w, out)
				}
			}
		})
	}
}

func TestTransactionsInvalidFlags(t *testing.T) {
	for _, args := range [][]string{
		{"transactions", "--captured", "maybe"},
		{"transactions", "--category", "other"},
		{"transactions", "--from", "2024-13-01"},
		{"transactions", "--from", "2024-03-01", "--to", "2024-02-01"},
	} {
		if _, err := run(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestTransactionsPerPageCap(t *testing.T) {
	t.Setenv("PAGE_SIZE_DEFAULT", "1")
	t.Setenv("PAGE_SIZE_MAX", "2")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"transactions", []string{"transactions", "--per-page", "9223372036854775807"}, "page 1 of 2 (3 rows)"},
		{"customer", []string{"customer", "a@example.com", "-n", "9223372036854775807"}, "page 1 of 1 (2 rows)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}

	for _, args := range [][]string{
		{"transactions", "--per-page", "0"},
		{"customer", "a@example.com", "--per-page", "-1"},
	} {
		if _, err := run(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if _, err := run(t, "export", "--captured", "Yes", "--columns", "PaymentIntent ID,Status", "-o", path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"PaymentIntent ID", "Status"}, {"pi_1", "Paid"}, {"pi_2", "Refunded"}}
	if len(records) != len(want) {
		t.Fatalf("records = %v, want %v", records, want)
	}
	for i := range want {
		if strings.Join(records[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("record %d = %v, want %v", i, records[i], want[i])
		}
	}
}

func TestCohorts(t *testing.T) {
	out, err := run(t, "cohorts")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"COHORT", "2024-01", "2024-02", "100%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
