package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/monitor/armmonitor"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/go-playground/validator/v10"
)

// MetricAlertsAPI is the slice of the monitor API the reconciler needs.
// Satisfied by *armmonitor.MetricAlertsClient.
type MetricAlertsAPI interface {
	Get(
		ctx context.Context,
		resourceGroupName string,
		ruleName string,
		options *armmonitor.MetricAlertsClientGetOptions,
	) (armmonitor.MetricAlertsClientGetResponse, error)
	CreateOrUpdate(
		ctx context.Context,
		resourceGroupName string,
		ruleName string,
		parameters armmonitor.MetricAlertResource,
		options *armmonitor.MetricAlertsClientCreateOrUpdateOptions,
	) (armmonitor.MetricAlertsClientCreateOrUpdateResponse, error)
}

// AlertRuleOptions configures the alert-rule reconciler. Validated at
// construction so a bad threshold never reaches the provider.
type AlertRuleOptions struct {
	Prefix              string  `validate:"required"`
	MetricName          string  `validate:"required"`
	Threshold           float64 `validate:"gte=0,lte=100"`
	Severity            int32   `validate:"gte=0,lte=4"`
	WindowSize          string  `validate:"required"`
	EvaluationFrequency string  `validate:"required"`
	ActionGroupID       string  `validate:"required"`
	Description         string
	DryRun              bool
}

// AlertRuleReconciler provisions one metric alert rule per resource,
// named Prefix + resource name. Re-running against an unchanged
// resource set is a no-op.
type AlertRuleReconciler struct {
	alerts MetricAlertsAPI
	spec   domain.AlertRuleSpec
	dryRun bool
}

// NewAlertRuleReconciler validates the options and builds a reconciler.
func NewAlertRuleReconciler(alerts MetricAlertsAPI, opts AlertRuleOptions) (*AlertRuleReconciler, error) {
	if err := validator.New().Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid alert rule options: %w", err)
	}

	return &AlertRuleReconciler{
		alerts: alerts,
		spec: domain.AlertRuleSpec{
			Prefix:              opts.Prefix,
			MetricName:          opts.MetricName,
			Threshold:           opts.Threshold,
			Severity:            opts.Severity,
			WindowSize:          opts.WindowSize,
			EvaluationFrequency: opts.EvaluationFrequency,
			ActionGroupID:       opts.ActionGroupID,
			Description:         opts.Description,
		},
		dryRun: opts.DryRun,
	}, nil
}

func (r *AlertRuleReconciler) Operation() string { return "alert-rule" }

func (r *AlertRuleReconciler) Reconcile(ctx context.Context, target domain.ResourceDescriptor) domain.ActionOutcome {
	ruleName := r.spec.RuleName(target.Name)

	_, err := r.alerts.Get(ctx, target.ResourceGroup, ruleName, nil)
	switch {
	case err == nil:
		return domain.ActionOutcome{
			Target: target,
			Status: domain.StatusSkipped,
			Detail: fmt.Sprintf("alert rule %s already exists", ruleName),
		}
	case !IsNotFound(err):
		return domain.ActionOutcome{
			Target: target,
			Status: domain.StatusFailed,
			Detail: fmt.Sprintf("failed to look up alert rule %s: %v", ruleName, err),
		}
	}

	if r.dryRun {
		return domain.ActionOutcome{
			Target: target,
			Status: domain.StatusSkipped,
			Detail: fmt.Sprintf("would create alert rule %s", ruleName),
		}
	}

	_, err = r.alerts.CreateOrUpdate(ctx, target.ResourceGroup, ruleName, r.buildRule(target), nil)
	if err != nil {
		return domain.ActionOutcome{
			Target: target,
			Status: domain.StatusFailed,
			Detail: fmt.Sprintf("failed to create alert rule %s: %v", ruleName, err),
		}
	}

	return domain.ActionOutcome{
		Target: target,
		Status: domain.StatusCreated,
		Detail: fmt.Sprintf("created alert rule %s", ruleName),
	}
}

func (r *AlertRuleReconciler) buildRule(target domain.ResourceDescriptor) armmonitor.MetricAlertResource {
	description := r.spec.Description
	if description == "" {
		description = fmt.Sprintf("%s above %.1f on %s", r.spec.MetricName, r.spec.Threshold, target.Name)
	}

	return armmonitor.MetricAlertResource{
		// Metric alert rules are a global resource type.
		Location: to.Ptr("global"),
		Properties: &armmonitor.MetricAlertProperties{
			Description:         to.Ptr(description),
			Severity:            to.Ptr(r.spec.Severity),
			Enabled:             to.Ptr(true),
			AutoMitigate:        to.Ptr(true),
			Scopes:              []*string{to.Ptr(target.ID)},
			EvaluationFrequency: to.Ptr(r.spec.EvaluationFrequency),
			WindowSize:          to.Ptr(r.spec.WindowSize),
			Criteria: &armmonitor.MetricAlertSingleResourceMultipleMetricCriteria{
				ODataType: to.Ptr(armmonitor.OdatatypeMicrosoftAzureMonitorSingleResourceMultipleMetricCriteria),
				AllOf: []*armmonitor.MetricCriteria{{
					CriterionType:   to.Ptr(armmonitor.CriterionTypeStaticThresholdCriterion),
					Name:            to.Ptr("criterion1"),
					MetricName:      to.Ptr(r.spec.MetricName),
					Operator:        to.Ptr(armmonitor.OperatorGreaterThan),
					Threshold:       to.Ptr(r.spec.Threshold),
					TimeAggregation: to.Ptr(armmonitor.AggregationTypeEnumAverage),
				}},
			},
			Actions: []*armmonitor.MetricAlertAction{{
				ActionGroupID: to.Ptr(r.spec.ActionGroupID),
			}},
		},
	}
}

// IsNotFound reports whether err is a provider 404.
func IsNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == 404
}
