package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"payments-dashboard/internal/models"
)

type UnmappedPolicy string

const (
	// PolicyPassthrough keeps the raw status string as the status.
	PolicyPassthrough UnmappedPolicy = "passthrough"
	// PolicyFailed maps unknown statuses to Failed.
	PolicyFailed UnmappedPolicy = "failed"
	// PolicyReject drops rows with an unknown status.
	PolicyReject UnmappedPolicy = "reject"
)

func ParseUnmappedPolicy(s string) (UnmappedPolicy, error) {
	switch p := UnmappedPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyPassthrough, PolicyFailed, PolicyReject:
		return p, nil
	case "":
		return PolicyPassthrough, nil
	default:
		return "", fmt.Errorf("unknown unmapped status policy %q", s)
	}
}

var defaultStatusTable = map[string]models.Status{
	"requires_payment_method": models.StatusFailed,
	"Failed":                  models.StatusFailed,
	"Pending":                 models.StatusFailed,
	"canceled":                models.StatusFailed,
	"requires_confirmation":   models.StatusFailed,
	"requires_action":         models.StatusFailed,
	"Paid":                    models.StatusPaid,
	"Refunded":                models.StatusRefunded,
	"Partial Refund":          models.StatusPartialRefund,
	"Partially Refunded":      models.StatusPartialRefund,
	"partially_refunded":      models.StatusPartialRefund,
}

type StatusMapper struct {
	table  map[string]models.Status
	policy UnmappedPolicy
}

// NewStatusMapper builds the lookup from the default table plus extra
// entries. Extra entries must target a canonical status.
func NewStatusMapper(policy UnmappedPolicy, extra map[string]string) (*StatusMapper, error) {
	table := make(map[string]models.Status, len(defaultStatusTable)+len(extra))
	for raw, status := range defaultStatusTable {
		table[raw] = status
	}

	for raw, target := range extra {
		status := models.Status(target)
		if !status.Canonical() {
			return nil, fmt.Errorf("status map entry %q targets non-canonical status %q", raw, target)
		}
		table[raw] = status
	}

	if policy == "" {
		policy = PolicyPassthrough
	}

	return &StatusMapper{table: table, policy: policy}, nil
}

// Map resolves a raw status. known is false when the raw value has no table
// entry; keep is false when the policy drops the row.
func (m *StatusMapper) Map(raw string) (status models.Status, known, keep bool) {
	if status, ok := m.table[raw]; ok {
		return status, true, true
	}

	switch m.policy {
	case PolicyFailed:
		return models.StatusFailed, false, true
	case PolicyReject:
		return "", false, false
	default:
		return models.Status(raw), false, true
	}
}

// Slash dates are month first, as in US-locale exports.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

func parseTime(s string) models.NullTime {
	if s == "" {
		return models.NullTime{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.NewNullTime(t.UTC())
		}
	}
	return models.NullTime{}
}

func parseDecimal(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func parseFlag(s string) *bool {
	var v bool
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		v = true
	case "false", "0", "no":
		v = false
	default:
		return nil
	}
	return &v
}

type rowOutcome int

const (
	rowKept rowOutcome = iota
	rowKeptUnmapped
	rowSkipped
	rowRejected
)

// normalizeRecord converts one record. A record whose cell count differs
// from the header is skipped; bad cells only degrade to missing values.
func normalizeRecord(l layout, mapper *StatusMapper, record []string) (models.Transaction, rowOutcome) {
	if len(record) != l.width {
		return models.Transaction{}, rowSkipped
	}

	raw := l.get(record, ColStatus)
	status, known, keep := mapper.Map(raw)
	if !keep {
		return models.Transaction{}, rowRejected
	}
	outcome := rowKept
	if !known {
		outcome = rowKeptUnmapped
	}

	description := l.get(record, ColDescription)
	fee := parseDecimal(l.get(record, ColFee))
	gateway := fee
	if !l.derivesGatewayCharge() {
		gateway = parseDecimal(l.get(record, ColGatewayCharge))
	}

	tx := models.Transaction{
		PaymentIntentID: l.get(record, ColPaymentIntentID),
		CustomerID:      l.get(record, ColCustomerID),
		CustomerEmail:   l.get(record, ColCustomerEmail),
		Description:     description,
		Currency:        l.get(record, ColCurrency),

		Amount:                  parseDecimal(l.get(record, ColAmount)),
		AmountRefunded:          parseDecimal(l.get(record, ColAmountRefunded)),
		ConvertedAmount:         parseDecimal(l.get(record, ColConvertedAmount)),
		ConvertedAmountRefunded: parseDecimal(l.get(record, ColConvertedAmountRefunded)),
		Fee:                     fee,
		TaxesOnFee:              parseDecimal(l.get(record, ColTaxesOnFee)),
		GatewayCharge:           gateway,
		DisputedAmount:          parseDecimal(l.get(record, ColDisputedAmount)),

		RawStatus:     raw,
		Status:        status,
		Captured:      parseFlag(l.get(record, ColCaptured)),
		Category:      models.Categorize(description),
		CardCountry:   l.get(record, ColCardCountry),
		DeclineReason: l.get(record, ColDeclineReason),
		DisputeReason: l.get(record, ColDisputeReason),
		DisputeStatus: l.get(record, ColDisputeStatus),
		SourceChannel: l.get(record, ColSourceChannel),

		Created:     parseTime(l.get(record, ColCreated)),
		RefundedAt:  parseTime(l.get(record, ColRefundedAt)),
		DisputedAt:  parseTime(l.get(record, ColDisputedAt)),
		EvidenceDue: parseTime(l.get(record, ColEvidenceDue)),
	}
	return tx, outcome
}
