package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"payments-dashboard/internal/app"
	"payments-dashboard/internal/config"
	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/models"
	"payments-dashboard/internal/observability"
	"payments-dashboard/internal/services"
)

var Version = "dev"

type rootOptions struct {
	source string
	json   bool

	// pagination is filled from config by loadSnapshot.
	pagination config.PaginationConfig
}

// pageSize validates --per-page and caps it at the configured maximum.
func (o *rootOptions) pageSize(n int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("--per-page must be a positive integer, got %d", n)
	}
	if o.pagination.MaxPageSize > 0 {
		n = min(n, o.pagination.MaxPageSize)
	}
	return n, nil
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "paymentsctl",
		Short:         "Query a payments export from the command line",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.source, "source", "", "CSV locator (URL, path, gs://, sheets://); overrides SOURCE_URL")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "output as JSON")

	rootCmd.AddCommand(summaryCmd(opts))
	rootCmd.AddCommand(customerCmd(opts))
	rootCmd.AddCommand(transactionsCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))
	rootCmd.AddCommand(cohortsCmd(opts))

	return rootCmd
}

// loadSnapshot reads the export once. Logs go to stderr so stdout stays
// clean for piping.
func loadSnapshot(cmd *cobra.Command, opts *rootOptions) (*ingest.Snapshot, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	opts.pagination = cfg.Pagination

	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), cfg.Logger)
	loader, err := app.NewLoader(cfg, opts.source, logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Source.FetchTimeout)
	defer cancel()

	return loader.Load(ctx)
}

// noData turns an empty result into a message instead of a failure.
func noData(cmd *cobra.Command, err error, message string) (bool, error) {
	if errors.Is(err, services.ErrNoData) {
		fmt.Fprintln(cmd.OutOrStdout(), message)
		return true, nil
	}
	return false, err
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

type filterFlags struct {
	statuses []string
	captured string
	category string
	from     string
	to       string
	search   string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.statuses, "status", "s", nil, "filter by status (repeatable or comma-separated)")
	cmd.Flags().StringVar(&f.captured, "captured", "All", "filter by capture (All, Yes, No)")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "filter by category (Adspends, Subscription)")
	cmd.Flags().StringVar(&f.from, "from", "", "created on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "created on or before (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.search, "query", "q", "", "substring of payment intent or customer id")
}

func (f *filterFlags) filter() (services.TransactionFilter, error) {
	var out services.TransactionFilter

	for _, s := range f.statuses {
		if s = strings.TrimSpace(s); s != "" {
			out.Statuses = append(out.Statuses, models.Status(s))
		}
	}

	captured, err := services.ParseCapturedFilter(f.captured)
	if err != nil {
		return out, err
	}
	out.Captured = captured

	if f.category != "" && !strings.EqualFold(f.category, "all") {
		c, ok := models.ParseCategory(f.category)
		if !ok {
			return out, fmt.Errorf("category must be Adspends or Subscription, got %q", f.category)
		}
		out.Category = &c
	}

	if out.Created.From, err = parseDate("from", f.from); err != nil {
		return out, err
	}
	if out.Created.To, err = parseDate("to", f.to); err != nil {
		return out, err
	}
	if out.Created.From.IsValid() && out.Created.To.IsValid() && out.Created.To.Before(out.Created.From) {
		return out, fmt.Errorf("--to %s is before --from %s", out.Created.To, out.Created.From)
	}

	out.Search = strings.TrimSpace(f.search)
	return out, nil
}

func parseDate(flag, raw string) (civil.Date, error) {
	if raw == "" {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(raw)
	if err != nil {
		return civil.Date{}, fmt.Errorf("--%s must be YYYY-MM-DD: %w", flag, err)
	}
	return d, nil
}
