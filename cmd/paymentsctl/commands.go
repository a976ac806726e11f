package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"payments-dashboard/internal/export"
	"payments-dashboard/internal/models"
	"payments-dashboard/internal/services"
)

func summaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show overview totals and the status distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd, opts)
			if err != nil {
				return err
			}

			overview, err := services.BuildOverview(cmd.Context(), snap, slog.New(slog.DiscardHandler))
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), overview)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Snapshot\t%s\n", overview.SnapshotID)
			if totals, ok := overview.Totals.Data.(models.OverviewTotals); ok {
				fmt.Fprintf(tw, "Total payment value\t%s\n", totals.TotalPaymentValue.StringFixed(2))
				fmt.Fprintf(tw, "Successful\t%s\n", totals.TotalSuccessful.StringFixed(2))
				fmt.Fprintf(tw, "Failed\t%s\n", totals.TotalFailed.StringFixed(2))
				fmt.Fprintf(tw, "Refunded\t%s\n", totals.TotalRefunded.StringFixed(2))
				fmt.Fprintf(tw, "Fees\t%s\n", totals.TotalFee.StringFixed(2))
				fmt.Fprintf(tw, "Gateway charges\t%s\n", totals.TotalGatewayCharges.StringFixed(2))
			} else {
				fmt.Fprintf(tw, "Totals\t%s\n", overview.Totals.Message)
			}
			if counts, ok := overview.StatusDistribution.Data.([]models.StatusCount); ok {
				fmt.Fprintln(tw, "\nSTATUS\tCOUNT\tAMOUNT")
				for _, c := range counts {
					fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Status, c.Count, c.Amount.StringFixed(2))
				}
			}
			return tw.Flush()
		},
	}
}

func customerCmd(opts *rootOptions) *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "customer [email]",
		Short: "Show metrics and payments for one customer email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd, opts)
			if err != nil {
				return err
			}

			size, err := opts.pageSize(perPage)
			if err != nil {
				return err
			}

			report, err := services.LookupCustomer(snap, args[0], page, size)
			if handled, err := noData(cmd, err, "No data found for this email."); handled || err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), report)
			}

			m := report.Metrics
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, line := range []struct {
				label string
				value decimal.Decimal
			}{
				{"Total payments", m.TotalPayments},
				{"Successful payments", m.TotalSuccessfulPayments},
				{"Adspend transactions", m.TotalAdspendTransactions},
				{"Subscription transactions", m.TotalSubscriptionTransactions},
				{"Refunds", m.TotalRefunds},
				{"Disputes", m.TotalDisputes},
				{"Subscription total", m.TotalSubscription},
				{"Adspends total", m.TotalAdspends},
			} {
				fmt.Fprintf(tw, "%s\t%s\n", line.label, line.value.StringFixed(2))
			}
			fmt.Fprintln(tw)
			writeRows(tw, report.Rows)
			fmt.Fprintf(tw, "\npage %d of %d (%d rows)\n", report.Page.Number, report.Page.TotalPages, report.Page.TotalRows)
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVarP(&perPage, "per-page", "n", services.DefaultPageSize, "rows per page")

	return cmd
}

func transactionsCmd(opts *rootOptions) *cobra.Command {
	var (
		flags   filterFlags
		page    int
		perPage int
	)

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List transactions matching the filters",
		Long: `List transactions matching every given filter, in export order.

Examples:
  paymentsctl transactions --status Failed --captured No
  paymentsctl transactions --category Subscription --from 2024-01-01 --to 2024-01-31
  paymentsctl transactions -q cus_123 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(cmd, opts)
			if err != nil {
				return err
			}
			filter.Page = page
			if filter.PageSize, err = opts.pageSize(perPage); err != nil {
				return err
			}

			result, err := services.FilterTransactions(snap, filter)
			if handled, err := noData(cmd, err, "No transactions match these filters."); handled || err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			writeRows(tw, result.Rows)
			fmt.Fprintf(tw, "\npage %d of %d (%d rows)\n", result.Page.Number, result.Page.TotalPages, result.Page.TotalRows)
			return tw.Flush()
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVarP(&perPage, "per-page", "n", services.DefaultPageSize, "rows per page")

	return cmd
}

func exportCmd(opts *rootOptions) *cobra.Command {
	var (
		flags   filterFlags
		output  string
		columns []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}

			snap, err := loadSnapshot(cmd, opts)
			if err != nil {
				return err
			}

			// One page holding every row.
			filter.Page, filter.PageSize = 1, max(snap.Len(), 1)
			result, err := services.FilterTransactions(snap, filter)
			if handled, err := noData(cmd, err, "No transactions match these filters."); handled || err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := export.WriteCSV(w, columns, result.Rows); err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(result.Rows), output)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "columns to write (default all)")

	return cmd
}

func cohortsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cohorts",
		Short: "Show monthly customer retention by first-payment cohort",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd, opts)
			if err != nil {
				return err
			}

			matrix, err := services.CohortRetention(snap)
			if handled, err := noData(cmd, err, "No data available."); handled || err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), matrix)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			header := []string{"COHORT", "SIZE"}
			for p := range matrix.Periods {
				header = append(header, fmt.Sprintf("M%d", p))
			}
			fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
			for _, row := range matrix.Rows {
				cells := []string{row.Cohort, fmt.Sprint(row.Size)}
				for _, r := range row.Retention {
					cells = append(cells, fmt.Sprintf("%.0f%%", r*100))
				}
				fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
			}
			return tw.Flush()
		},
	}
}

func writeRows(w io.Writer, rows []models.Transaction) {
	fmt.Fprintln(w, "CREATED\tPAYMENT INTENT\tCUSTOMER\tSTATUS\tCATEGORY\tAMOUNT")
	for _, tx := range rows {
		created := "-"
		if tx.Created.Valid {
			created = tx.Created.Time.Format("2006-01-02 15:04")
		}
		amount := "-"
		if tx.ConvertedAmount.Valid {
			amount = tx.ConvertedAmount.Decimal.StringFixed(2)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			created, tx.PaymentIntentID, tx.CustomerEmail, tx.Status, tx.Category, amount)
	}
}
