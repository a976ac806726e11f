package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testHeader = "PaymentIntent ID,Customer ID,Customer Email,Description,Amount,Amount Refunded,Currency,Converted Amount,Converted Amount Refunded,Fee,Taxes On Fee,Disputed Amount,Status,Captured,Card Address Country,Decline Reason,Dispute Reason,Dispute Status,Created date (UTC),Refunded date (UTC),Dispute Date (UTC),Dispute Evidence Due (UTC)"

var testRows = []string{
	"pi_1,cus_1,a@example.com,Monthly Subscription,100.00,0,usd,100.00,0,3.20,0.10,,Paid,true,US,,,,2024-01-05 10:00:00,,,",
	"pi_2,cus_1,a@example.com,Ad credit top-up,50.00,50.00,usd,50.00,50.00,1.75,,,Refunded,true,US,,,,2024-02-10 09:30:00,2024-02-12 08:00:00,,",
	"pi_3,cus_2,b@example.com,Ad credit top-up,20.00,0,eur,21.50,0,0.90,,,requires_payment_method,false,DE,card_declined,,,2024-02-11 12:00:00,,,",
	"pi_4,cus_3,c@example.com,Annual subscription,300.00,0,usd,300.00,0,9.00,,300.00,Paid,true,GB,,fraudulent,lost,2024-03-01 00:00:00,,2024-03-15 00:00:00,2024-03-30 00:00:00",
}

func testCSV(rows ...string) string {
	return testHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payments.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestMapper(t *testing.T, policy UnmappedPolicy) *StatusMapper {
	t.Helper()
	m, err := NewStatusMapper(policy, nil)
	if err != nil {
		t.Fatal(err)
	}
	return m
}
