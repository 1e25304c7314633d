package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/monitor/azquery"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/services/insights"
	"github.com/de-tools/ops-atlas/pkg/services/notify"
	"github.com/de-tools/ops-atlas/pkg/services/reconcile"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// DeletionAuditSettings contains the configurable knobs for deletion-rate checks.
type DeletionAuditSettings struct {
	// Lookback is how far back the activity log is scanned.
	Lookback time.Duration `validate:"gt=0"`
	// ThresholdPercent is the deletion rate that counts as a breach.
	ThresholdPercent float64 `validate:"gte=0,lte=100"`
	// NotifyTo receives a breach notification; empty disables email.
	NotifyTo []string `validate:"omitempty,dive,email"`
}

// DefaultDeletionAuditSettings returns the default configuration.
func DefaultDeletionAuditSettings() DeletionAuditSettings {
	return DeletionAuditSettings{
		Lookback:         24 * time.Hour,
		ThresholdPercent: 5,
	}
}

// DeletionAuditor compares the number of delete operations in the
// activity log against the live resource count.
type DeletionAuditor struct {
	logs        insights.LogsAPI
	workspaceID string
	enumerator  reconcile.Enumerator
	mailer      notify.Mailer
}

// NewDeletionAuditor builds an auditor. The mailer may be nil when
// notification is disabled.
func NewDeletionAuditor(
	logs insights.LogsAPI,
	workspaceID string,
	enumerator reconcile.Enumerator,
	mailer notify.Mailer,
) *DeletionAuditor {
	return &DeletionAuditor{
		logs:        logs,
		workspaceID: workspaceID,
		enumerator:  enumerator,
		mailer:      mailer,
	}
}

// Run executes one deletion-rate check. Enumeration or query failure is
// fatal; a failed breach notification is logged and does not fail the run.
func (a *DeletionAuditor) Run(ctx context.Context, settings DeletionAuditSettings) (domain.DeletionAudit, error) {
	logger := zerolog.Ctx(ctx)

	if err := validator.New().Struct(settings); err != nil {
		return domain.DeletionAudit{}, fmt.Errorf("invalid deletion audit settings: %w", err)
	}

	resources, err := a.enumerator.List(ctx, domain.Filter{})
	if err != nil {
		return domain.DeletionAudit{}, fmt.Errorf("failed to count live resources: %w", err)
	}

	events, err := a.deletionEvents(ctx, settings.Lookback)
	if err != nil {
		return domain.DeletionAudit{}, err
	}

	result := domain.DeletionAudit{
		Window:           settings.Lookback,
		Deleted:          len(events),
		Total:            len(resources),
		ThresholdPercent: settings.ThresholdPercent,
		Breached:         Exceeds(len(events), len(resources), settings.ThresholdPercent),
		Events:           events,
	}

	logger.Info().
		Int("deleted", result.Deleted).
		Int("total", result.Total).
		Float64("threshold_percent", result.ThresholdPercent).
		Bool("breached", result.Breached).
		Msg("deletion audit complete")

	if result.Breached && a.mailer != nil && len(settings.NotifyTo) > 0 {
		if err := a.mailer.Send(ctx, breachMessage(result, settings.NotifyTo)); err != nil {
			logger.Error().Err(err).Msg("failed to send breach notification")
		}
	}

	return result, nil
}

func (a *DeletionAuditor) deletionEvents(ctx context.Context, lookback time.Duration) ([]domain.DeletionEvent, error) {
	query := fmt.Sprintf(`AzureActivity
| where TimeGenerated > ago(%s)
| where OperationNameValue endswith 'DELETE'
| where ActivityStatusValue == 'Success'
| project TimeGenerated, Caller, OperationNameValue, _ResourceId`, insights.KQLDuration(lookback))

	resp, err := a.logs.QueryWorkspace(ctx, a.workspaceID, azquery.Body{
		Query:    to.Ptr(query),
		Timespan: to.Ptr(azquery.NewTimeInterval(time.Now().UTC().Add(-lookback), time.Now().UTC())),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity log: %w", err)
	}

	// An empty result set means zero deletions, not an error.
	var events []domain.DeletionEvent
	for _, table := range resp.Tables {
		if table == nil {
			continue
		}
		for _, row := range table.Rows {
			events = append(events, mapDeletionRow(table, row))
		}
	}
	return events, nil
}

func mapDeletionRow(table *azquery.Table, row azquery.Row) domain.DeletionEvent {
	idx := insights.ColumnIndex(table)
	return domain.DeletionEvent{
		Time:      insights.TimeAt(row, idx.At("TimeGenerated")),
		Caller:    insights.StringAt(row, idx.At("Caller")),
		Operation: insights.StringAt(row, idx.At("OperationNameValue")),
		Resource:  insights.StringAt(row, idx.At("_ResourceId")),
	}
}

func breachMessage(result domain.DeletionAudit, to []string) notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d resources were deleted in the last %s, above the %.2f%% threshold.\n\n",
		result.Deleted, result.Total, result.Window, result.ThresholdPercent)
	for _, e := range result.Events {
		fmt.Fprintf(&b, "- %s %s by %s (%s)\n", e.Time.Format(time.RFC3339), e.Operation, e.Caller, e.Resource)
	}

	return notify.Message{
		To:      to,
		Subject: fmt.Sprintf("Resource deletion threshold exceeded: %d deletions", result.Deleted),
		Body:    b.String(),
	}
}
