package ingest

import "strings"

// Source column names, as exported by the payment provider.
const (
	ColPaymentIntentID         = "PaymentIntent ID"
	ColCustomerID              = "Customer ID"
	ColCustomerEmail           = "Customer Email"
	ColDescription             = "Description"
	ColAmount                  = "Amount"
	ColAmountRefunded          = "Amount Refunded"
	ColCurrency                = "Currency"
	ColConvertedAmount         = "Converted Amount"
	ColConvertedAmountRefunded = "Converted Amount Refunded"
	ColFee                     = "Fee"
	ColTaxesOnFee              = "Taxes On Fee"
	ColGatewayCharge           = "Gateway charges in USD"
	ColDisputedAmount          = "Disputed Amount"
	ColStatus                  = "Status"
	ColCaptured                = "Captured"
	ColCardCountry             = "Card Address Country"
	ColDeclineReason           = "Decline Reason"
	ColDisputeReason           = "Dispute Reason"
	ColDisputeStatus           = "Dispute Status"
	ColSourceChannel           = "Source"
	ColCreated                 = "Created date"
	ColRefundedAt              = "Refunded date (UTC)"
	ColDisputedAt              = "Dispute Date (UTC)"
	ColEvidenceDue             = "Dispute Evidence Due (UTC)"

	// ColCategory is derived from the description and always present.
	ColCategory = "Adspends / Subscription"
)

// rawCreatedColumn is renamed to ColCreated on load.
const rawCreatedColumn = "Created date (UTC)"

// AllColumns lists every canonical column in export order.
var AllColumns = []string{
	ColPaymentIntentID,
	ColCustomerID,
	ColCustomerEmail,
	ColDescription,
	ColCategory,
	ColAmount,
	ColAmountRefunded,
	ColCurrency,
	ColConvertedAmount,
	ColConvertedAmountRefunded,
	ColFee,
	ColTaxesOnFee,
	ColGatewayCharge,
	ColDisputedAmount,
	ColStatus,
	ColCaptured,
	ColCardCountry,
	ColDeclineReason,
	ColDisputeReason,
	ColDisputeStatus,
	ColSourceChannel,
	ColCreated,
	ColRefundedAt,
	ColDisputedAt,
	ColEvidenceDue,
}

// layout maps canonical column names to record positions.
type layout struct {
	index   map[string]int
	width   int
	columns []string
}

func newLayout(header []string) layout {
	l := layout{index: make(map[string]int, len(header)), width: len(header)}

	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == rawCreatedColumn {
			name = ColCreated
		}
		if _, dup := l.index[name]; dup {
			continue
		}
		l.index[name] = i
	}

	for _, col := range AllColumns {
		if l.has(col) {
			l.columns = append(l.columns, col)
		}
	}
	return l
}

// has reports whether a column can be read. The category is derived from
// the description and the gateway charge falls back to the fee.
func (l layout) has(col string) bool {
	switch col {
	case ColCategory:
		return true
	case ColGatewayCharge:
		if _, ok := l.index[ColGatewayCharge]; ok {
			return true
		}
		_, ok := l.index[ColFee]
		return ok
	}
	_, ok := l.index[col]
	return ok
}

func (l layout) derivesGatewayCharge() bool {
	_, ok := l.index[ColGatewayCharge]
	return !ok
}

func (l layout) get(record []string, col string) string {
	i, ok := l.index[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
