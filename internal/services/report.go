package services

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/models"
)

// Widget is one report panel. Exactly one of Data, NoData or Unavailable is
// set, so a failing panel never takes the page down.
type Widget struct {
	Data        any    `json:"data,omitempty"`
	NoData      bool   `json:"no_data,omitempty"`
	Unavailable bool   `json:"unavailable,omitempty"`
	Message     string `json:"message,omitempty"`
}

func NewWidget(data any, err error) Widget {
	switch {
	case err == nil:
		return Widget{Data: data}
	case errors.Is(err, ErrNoData):
		return Widget{NoData: true, Message: "No data available."}
	default:
		return Widget{Unavailable: true, Message: err.Error()}
	}
}

type Overview struct {
	SnapshotID         string `json:"snapshot_id"`
	Totals             Widget `json:"totals"`
	StatusDistribution Widget `json:"status_distribution"`
	MonthlyRevenue     Widget `json:"monthly_revenue"`
	MonthlyOutcomes    Widget `json:"monthly_outcomes"`
	OutcomeShares      Widget `json:"outcome_shares"`
	Adspends           Widget `json:"adspends"`
	Subscription       Widget `json:"subscription"`
	Countries          Widget `json:"countries"`
	DeclineReasons     Widget `json:"decline_reasons"`
}

// BuildOverview computes every overview panel concurrently over the same
// snapshot. Only context cancellation fails the whole report.
func BuildOverview(ctx context.Context, snap *ingest.Snapshot, logger *slog.Logger) (*Overview, error) {
	o := &Overview{SnapshotID: snap.ID}

	g, gctx := errgroup.WithContext(ctx)
	run := func(name string, dst *Widget, fn func() (any, error)) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := fn()
			if err != nil && !errors.Is(err, ErrNoData) {
				logger.Warn("overview widget unavailable", "widget", name, "error", err)
			}
			*dst = NewWidget(data, err)
			return nil
		})
	}

	run("totals", &o.Totals, func() (any, error) { return OverviewTotals(snap) })
	run("status_distribution", &o.StatusDistribution, func() (any, error) { return StatusDistribution(snap) })
	run("monthly_revenue", &o.MonthlyRevenue, func() (any, error) { return MonthlyRevenue(snap) })
	run("monthly_outcomes", &o.MonthlyOutcomes, func() (any, error) { return MonthlyOutcomes(snap) })
	run("outcome_shares", &o.OutcomeShares, func() (any, error) {
		outcomes, err := MonthlyOutcomes(snap)
		if err != nil {
			return nil, err
		}
		return Percentages(outcomes), nil
	})
	run("adspends", &o.Adspends, func() (any, error) { return CategoryMonthly(snap, models.CategoryAdspends) })
	run("subscription", &o.Subscription, func() (any, error) { return CategoryMonthly(snap, models.CategorySubscription) })
	run("countries", &o.Countries, func() (any, error) { return CountryBreakdown(snap) })
	run("decline_reasons", &o.DeclineReasons, func() (any, error) { return DeclineReasons(snap, nil) })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return o, nil
}

type CategoryReport struct {
	Summary        Widget `json:"summary"`
	RevenueTrend   Widget `json:"revenue_trend"`
	MonthlyAmounts Widget `json:"monthly_amounts"`
}

func BuildCategoryReport(snap *ingest.Snapshot) *CategoryReport {
	summary, err := CategorySummary(snap)
	r := &CategoryReport{Summary: NewWidget(summary, err)}

	trend, err := CategoryRevenueTrend(snap)
	r.RevenueTrend = NewWidget(trend, err)

	monthly, err := CategoryMonthlyAmounts(snap)
	r.MonthlyAmounts = NewWidget(monthly, err)
	return r
}
