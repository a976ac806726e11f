package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"payments-dashboard/internal/ingest"
	"payments-dashboard/internal/services"
)

var statusTemplate = template.Must(template.New("status").Parse(
	`<div id="{{.ID}}" class="report-status {{.Class}}">{{.Message}}</div>`))

type statusData struct {
	ID      string
	Class   string
	Message string
}

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

func renderStatus(id, class, message string) (string, error) {
	var buf strings.Builder
	err := statusTemplate.Execute(&buf, statusData{ID: id, Class: class, Message: message})
	return buf.String(), err
}

// patchStatus replaces a report's status line.
func (h *SSEHandlers) patchStatus(sse *datastar.ServerSentEventGenerator, report string, w services.Widget) {
	class, message := "ready", "Updated"
	switch {
	case w.NoData:
		class, message = "no-data", w.Message
	case w.Unavailable:
		class, message = "unavailable", "Data unavailable for this report"
	}

	h.renderAndPatch(sse, report, class, message)
}

func (h *SSEHandlers) renderAndPatch(sse *datastar.ServerSentEventGenerator, report, class, message string) {
	html, err := renderStatus(report+"-status", class, message)
	if err != nil {
		h.logger.Error("render status", "report", report, "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch elements", "report", report, "error", err)
	}
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) {
	jsonData, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}
	if err := sse.PatchSignals(jsonData); err != nil {
		h.logger.Warn("patch signals", "error", err)
	}
}

// snapshot loads the snapshot for a stream. On failure it patches an
// error status onto every listed report.
func (h *SSEHandlers) snapshot(sse *datastar.ServerSentEventGenerator, r *http.Request, reports ...string) (*ingest.Snapshot, bool) {
	snap, err := h.dashboard.Snapshot(r.Context())
	if err == nil {
		return snap, true
	}

	h.logger.Error("snapshot unavailable", "error", err)
	for _, report := range reports {
		h.renderAndPatch(sse, report, "error", "Payment data could not be loaded")
	}
	return nil, false
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	defer flush(w)

	snap, ok := h.snapshot(sse, r, "overview")
	if !ok {
		return
	}

	overview, err := services.BuildOverview(r.Context(), snap, h.logger)
	if err != nil {
		h.logger.Warn("overview canceled", "error", err)
		return
	}
	h.patchSignals(sse, map[string]any{"overview": overview})
	h.patchStatus(sse, "overview", overview.Totals)
}

func (h *SSEHandlers) HandleRefunds(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	defer flush(w)

	snap, ok := h.snapshot(sse, r, "refunds")
	if !ok {
		return
	}

	refunds := services.NewWidget(services.RefundSummary(snap))
	h.patchSignals(sse, map[string]any{"refunds": refunds})
	h.patchStatus(sse, "refunds", refunds)
}

func (h *SSEHandlers) HandleDisputes(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	defer flush(w)

	snap, ok := h.snapshot(sse, r, "disputes")
	if !ok {
		return
	}

	disputes := services.NewWidget(services.DisputeSummary(snap))
	h.patchSignals(sse, map[string]any{"disputes": disputes})
	h.patchStatus(sse, "disputes", disputes)
}

func (h *SSEHandlers) HandleCohorts(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	defer flush(w)

	snap, ok := h.snapshot(sse, r, "cohorts")
	if !ok {
		return
	}

	cohorts := services.NewWidget(services.CohortRetention(snap))
	h.patchSignals(sse, map[string]any{"cohorts": cohorts})
	h.patchStatus(sse, "cohorts", cohorts)
}

// HandleRefreshAll sends every report in one signal patch.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	defer flush(w)

	reports := []string{"overview", "refunds", "disputes", "cohorts"}
	snap, ok := h.snapshot(sse, r, reports...)
	if !ok {
		return
	}

	overview, err := services.BuildOverview(r.Context(), snap, h.logger)
	if err != nil {
		h.logger.Warn("refresh canceled", "error", err)
		return
	}
	refunds := services.NewWidget(services.RefundSummary(snap))
	disputes := services.NewWidget(services.DisputeSummary(snap))
	cohorts := services.NewWidget(services.CohortRetention(snap))

	h.patchSignals(sse, map[string]any{
		"snapshotId": snap.ID,
		"overview":   overview,
		"refunds":    refunds,
		"disputes":   disputes,
		"cohorts":    cohorts,
	})

	h.patchStatus(sse, "overview", overview.Totals)
	h.patchStatus(sse, "refunds", refunds)
	h.patchStatus(sse, "disputes", disputes)
	h.patchStatus(sse, "cohorts", cohorts)
}
