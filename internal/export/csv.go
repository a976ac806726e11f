package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// WriteCSV writes rows under the canonical header for the given columns.
// Missing values become empty cells. A nil columns slice writes every
// canonical column.
func WriteCSV(w io.Writer, columns []string, rows []models.Transaction) error {
	if columns == nil {
		columns = ingest.AllColumns
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(columns))
	for _, tx := range rows {
		for i, col := range columns {
			v, err := cell(tx, col)
			if err != nil {
				return err
			}
			record[i] = v
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", tx.PaymentIntentID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func cell(tx models.Transaction, col string) (string, error) {
	switch col {
	case ingest.ColPaymentIntentID:
		return tx.PaymentIntentID, nil
	case ingest.ColCustomerID:
		return tx.CustomerID, nil
	case ingest.ColCustomerEmail:
		return tx.CustomerEmail, nil
	case ingest.ColDescription:
		return tx.Description, nil
	case ingest.ColCategory:
		return string(tx.Category), nil
	case ingest.ColAmount:
		return number(tx.Amount), nil
	case ingest.ColAmountRefunded:
		return number(tx.AmountRefunded), nil
	case ingest.ColCurrency:
		return tx.Currency, nil
	case ingest.ColConvertedAmount:
		return number(tx.ConvertedAmount), nil
	case ingest.ColConvertedAmountRefunded:
		return number(tx.ConvertedAmountRefunded), nil
	case ingest.ColFee:
		return number(tx.Fee), nil
	case ingest.ColTaxesOnFee:
		return number(tx.TaxesOnFee), nil
	case ingest.ColGatewayCharge:
		return number(tx.GatewayCharge), nil
	case ingest.ColDisputedAmount:
		return number(tx.DisputedAmount), nil
	case ingest.ColStatus:
		return string(tx.Status), nil
	case ingest.ColCaptured:
		if tx.Captured == nil {
			return "", nil
		}
		return strconv.FormatBool(*tx.Captured), nil
	case ingest.ColCardCountry:
		return tx.CardCountry, nil
	case ingest.ColDeclineReason:
		return tx.DeclineReason, nil
	case ingest.ColDisputeReason:
		return tx.DisputeReason, nil
	case ingest.ColDisputeStatus:
		return tx.DisputeStatus, nil
	case ingest.ColSourceChannel:
		return tx.SourceChannel, nil
	case ingest.ColCreated:
		return timestamp(tx.Created), nil
	case ingest.ColRefundedAt:
		return timestamp(tx.RefundedAt), nil
	case ingest.ColDisputedAt:
		return timestamp(tx.DisputedAt), nil
	case ingest.ColEvidenceDue:
		return timestamp(tx.EvidenceDue), nil
	}
	return "", fmt.Errorf("unknown column %q", col)
}

func number(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func timestamp(t models.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format(timeLayout)
}
