package ops

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/de-tools/ops-atlas/pkg/models/api"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/services/reconcile"
	"github.com/rs/zerolog"
)

// AlertRunner reconciles alert rules for every resource matching the
// filter. Per-resource failures are reported inside the summary; the
// returned error is reserved for enumeration problems.
type AlertRunner interface {
	ReconcileAlerts(ctx context.Context, filter domain.Filter, dryRun bool) (domain.RunSummary, error)
}

type Handler struct {
	enumerator reconcile.Enumerator
	alerts     AlertRunner
}

func NewHandler(enumerator reconcile.Enumerator, alerts AlertRunner) *Handler {
	return &Handler{
		enumerator: enumerator,
		alerts:     alerts,
	}
}

func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	filter := domain.Filter{
		ResourceGroup: r.URL.Query().Get("resource_group"),
		ResourceType:  domain.ResourceType(r.URL.Query().Get("type")),
	}

	resources, err := h.enumerator.List(ctx, filter)
	if err != nil {
		logger.Error().Err(err).Msg("enumeration failed")
		http.Error(w, "enumeration failed", http.StatusBadGateway)
		return
	}

	response := make([]api.Resource, 0, len(resources))
	for _, res := range resources {
		response = append(response, api.Resource{
			ID:            res.ID,
			Name:          res.Name,
			ResourceGroup: res.ResourceGroup,
			Location:      res.Location,
			Type:          string(res.Type),
			Tags:          res.Tags,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().Err(err).Msg("failed to encode resources")
	}
}

func (h *Handler) ReconcileAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	summary, err := h.alerts.ReconcileAlerts(ctx, domain.Filter{ResourceGroup: req.ResourceGroup}, req.DryRun)
	if err != nil {
		logger.Error().Err(err).Msg("alert reconciliation failed")
		http.Error(w, "reconciliation failed", http.StatusBadGateway)
		return
	}

	// Per-resource failures are part of a successful run; the caller
	// reads them from the outcome list.
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toAPISummary(summary)); err != nil {
		logger.Error().Err(err).Msg("failed to encode run summary")
	}
}

func toAPISummary(summary domain.RunSummary) api.RunSummary {
	created, skipped, failed := summary.Counts()
	outcomes := make([]api.Outcome, 0, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		outcomes = append(outcomes, api.Outcome{
			Target: o.Target.Name,
			Status: string(o.Status),
			Detail: o.Detail,
		})
	}
	return api.RunSummary{
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
		DryRun:     summary.DryRun,
		Created:    created,
		Skipped:    skipped,
		Failed:     failed,
		Outcomes:   outcomes,
	}
}
