package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"payments-dashboard/internal/config"
	"payments-dashboard/internal/errors"
	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/observability"
	"payments-dashboard/internal/services"
)

const (
	version           = "1.0.0"
	noDataMessage     = "No data available."
	noCustomerMessage = "No data found for this email."
)

type APIHandlers struct {
	dashboard  *services.Dashboard
	pagination config.PaginationConfig
	logger     *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, pagination config.PaginationConfig, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard:  dashboard,
		pagination: pagination,
		logger:     logger,
	}
}

// snapshot returns the current snapshot or writes a 503.
func (h *APIHandlers) snapshot(w http.ResponseWriter, r *http.Request) (*ingest.Snapshot, bool) {
	snap, err := h.dashboard.Snapshot(r.Context())
	if err != nil {
		errors.WriteError(w, h.logger,
			errors.ServiceUnavailableWrap(err, "Payment data could not be loaded"),
			observability.GetRequestID(r.Context()))
		return nil, false
	}
	return snap, true
}

func (h *APIHandlers) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, errors.BadRequestWrap(err, err.Error()), observability.GetRequestID(r.Context()))
}

// respond maps an aggregator result onto the response envelope.
func (h *APIHandlers) respond(w http.ResponseWriter, r *http.Request, snap *ingest.Snapshot, data any, err error, emptyMessage string) {
	switch {
	case err == nil:
		errors.WriteSuccessWithHeaders(w, data, map[string]string{
			"Cache-Control": "private, max-age=60",
			"X-Snapshot-ID": snap.ID,
		})
	case stderrors.Is(err, services.ErrNoData):
		errors.WriteNoData(w, emptyMessage)
	case stderrors.Is(err, services.ErrDataUnavailable):
		errors.WriteError(w, h.logger, errors.DataUnavailable(err), observability.GetRequestID(r.Context()))
	default:
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Report failed"), observability.GetRequestID(r.Context()))
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   version,
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.Stats())
}

// HandleReload swaps in a freshly fetched snapshot. On failure the previous
// snapshot keeps serving.
func (h *APIHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dashboard.Load(r.Context())
	if err != nil {
		errors.WriteError(w, h.logger,
			errors.ServiceUnavailableWrap(err, "Reload failed"),
			observability.GetRequestID(r.Context()))
		return
	}

	h.logger.Info("snapshot reloaded",
		"snapshot_id", snap.ID,
		"rows", snap.Len(),
		"request_id", observability.GetRequestID(r.Context()),
	)
	errors.WriteSuccess(w, h.dashboard.Stats())
}

func (h *APIHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	overview, err := services.BuildOverview(r.Context(), snap, h.logger)
	h.respond(w, r, snap, overview, err, noDataMessage)
}

func (h *APIHandlers) HandleStatusDistribution(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	data, err := services.StatusDistribution(snap)
	h.respond(w, r, snap, data, err, noDataMessage)
}

func (h *APIHandlers) HandleMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	data, err := services.MonthlyRevenue(snap)
	h.respond(w, r, snap, data, err, noDataMessage)
}

func (h *APIHandlers) HandleMonthlyOutcomes(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	outcomes, err := services.MonthlyOutcomes(snap)
	if err == nil && r.URL.Query().Get("normalized") == "true" {
		h.respond(w, r, snap, services.Percentages(outcomes), nil, noDataMessage)
		return
	}
	h.respond(w, r, snap, outcomes, err, noDataMessage)
}

func (h *APIHandlers) HandleCategoryMonthly(w http.ResponseWriter, r *http.Request) {
	cat, err := category(r.PathValue("category"))
	if err != nil || cat == nil {
		if err == nil {
			err = stderrors.New("category must be Adspends or Subscription")
		}
		h.badRequest(w, r, err)
		return
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	data, err := services.CategoryMonthly(snap, *cat)
	h.respond(w, r, snap, data, err, noDataMessage)
}

func (h *APIHandlers) HandleCategorySummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	h.respond(w, r, snap, services.BuildCategoryReport(snap), nil, noDataMessage)
}

func (h *APIHandlers) HandleCountries(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	data, err := services.CountryBreakdown(snap)
	h.respond(w, r, snap, data, err, noDataMessage)
}

func (h *APIHandlers) HandleDeclineReasons(w http.ResponseWriter, r *http.Request) {
	cat, err := category(r.URL.Query().Get("category"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	data, err := services.DeclineReasons(snap, cat)
	h.respond(w, r, snap, data, err, noDataMessage)
}

func (h *APIHandlers) HandleCustomer(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		h.badRequest(w, r, stderrors.New("email is required"))
		return
	}
	page, perPage, err := pageParams(r, h.pagination)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	report, err := services.LookupCustomer(snap, email, page, perPage)
	h.respond(w, r, snap, report, err, noCustomerMessage)
}

func (h *APIHandlers) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilter(r, h.pagination)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	data, err := services.FilterTransactions(snap, filter)
	h.respond(w, r, snap, data, err, "No transactions match these filters.")
}

type refundsResponse struct {
	Summary services.Widget `json:"summary"`
	Refunds services.Widget `json:"refunds"`
}

func (h *APIHandlers) HandleRefunds(w http.ResponseWriter, r *http.Request) {
	created, err := dateRange(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	summary, err := services.RefundSummary(snap)
	resp := refundsResponse{Summary: services.NewWidget(summary, err)}
	rows, err := services.FilterRefunds(snap, services.RefundFilter{Created: created, Statuses: statuses(r)})
	resp.Refunds = services.NewWidget(rows, err)

	h.respond(w, r, snap, resp, nil, noDataMessage)
}

type disputesResponse struct {
	Summary services.Widget  `json:"summary"`
	DueBy   *services.Widget `json:"due_by,omitempty"`
}

func (h *APIHandlers) HandleDisputes(w http.ResponseWriter, r *http.Request) {
	cutoff, err := queryDate(r, "due_by")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	summary, err := services.DisputeSummary(snap)
	resp := disputesResponse{Summary: services.NewWidget(summary, err)}
	if cutoff.IsValid() {
		due := services.NewWidget(services.DisputesDueBy(snap, cutoff))
		resp.DueBy = &due
	}

	h.respond(w, r, snap, resp, nil, noDataMessage)
}

func (h *APIHandlers) HandleCohorts(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	data, err := services.CohortRetention(snap)
	h.respond(w, r, snap, data, err, noDataMessage)
}
