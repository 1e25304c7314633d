package commands

import (
	"fmt"

	opserrors "github.com/de-tools/ops-atlas/pkg/errors"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/ops-atlas/pkg/services/azure"
	"github.com/de-tools/ops-atlas/pkg/services/inventory"
	"github.com/de-tools/ops-atlas/pkg/services/reconcile"
	"github.com/spf13/cobra"
)

type AlertsCmd struct {
	profile       *string
	resourceGroup string
	actionGroup   string
	actionGroupRG string
	prefix        string
	metric        string
	threshold     float64
	severity      int32
	windowSize    string
	evalFrequency string
	description   string
	dryRun        bool
	workers       int
	reporter      *export.Reporter
}

func NewAlertsCmd(profile *string, reporter *export.Reporter) *cobra.Command {
	ac := &AlertsCmd{profile: profile, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Provision CPU alert rules for every VM, idempotently",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.resourceGroup, "resource-group", "", "Limit to one resource group")
	cmd.Flags().StringVar(&ac.actionGroup, "action-group", "", "Action group to notify when a rule fires")
	cmd.Flags().StringVar(&ac.actionGroupRG, "action-group-rg", "", "Resource group that holds the action group")
	cmd.Flags().StringVar(&ac.prefix, "prefix", "", "Alert rule name prefix (default from tool config)")
	cmd.Flags().StringVar(&ac.metric, "metric", "Percentage CPU", "Metric the rule watches")
	cmd.Flags().Float64Var(&ac.threshold, "threshold", 80, "Threshold percentage (0-100)")
	cmd.Flags().Int32Var(&ac.severity, "severity", 3, "Alert severity (0-4)")
	cmd.Flags().StringVar(&ac.windowSize, "window-size", "PT15M", "Evaluation window (ISO 8601 duration)")
	cmd.Flags().StringVar(&ac.evalFrequency, "frequency", "PT5M", "Evaluation frequency (ISO 8601 duration)")
	cmd.Flags().StringVar(&ac.description, "description", "", "Rule description")
	cmd.Flags().BoolVar(&ac.dryRun, "dry-run", false, "Report intended actions without mutating anything")
	cmd.Flags().IntVar(&ac.workers, "workers", 1, "Reconcile this many resources concurrently")

	_ = cmd.MarkFlagRequired("action-group")
	_ = cmd.MarkFlagRequired("action-group-rg")

	return cmd
}

func (ac *AlertsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := LoadToolSettings()
	if err != nil {
		return err
	}
	prefix := ac.prefix
	if prefix == "" {
		prefix = settings.AlertPrefix
	}

	cfg, err := azure.LoadConfig(*ac.profile)
	if err != nil {
		return err
	}

	computeClient, err := cfg.NewComputeClient()
	if err != nil {
		return err
	}
	alertsClient, err := cfg.NewMetricAlertsClient()
	if err != nil {
		return err
	}
	groupsClient, err := cfg.NewActionGroupsClient()
	if err != nil {
		return err
	}

	// The action group is shared by every rule in the run, so a missing
	// one fails fast instead of producing N identical per-VM failures.
	group, err := groupsClient.Get(ctx, ac.actionGroupRG, ac.actionGroup, nil)
	if err != nil {
		return opserrors.NewSetupError("action-group",
			fmt.Errorf("action group %s not found in %s: %w", ac.actionGroup, ac.actionGroupRG, err))
	}

	rec, err := reconcile.NewAlertRuleReconciler(alertsClient, reconcile.AlertRuleOptions{
		Prefix:              prefix,
		MetricName:          ac.metric,
		Threshold:           ac.threshold,
		Severity:            ac.severity,
		WindowSize:          ac.windowSize,
		EvaluationFrequency: ac.evalFrequency,
		ActionGroupID:       *group.ID,
		Description:         ac.description,
		DryRun:              ac.dryRun,
	})
	if err != nil {
		return opserrors.NewValidationError("alerts", err.Error(), err)
	}

	summary, err := reconcile.NewEngine(ac.workers).Run(ctx,
		inventory.NewVMExplorer(computeClient), rec,
		domain.Filter{ResourceGroup: ac.resourceGroup})
	if err != nil {
		return err
	}
	summary.DryRun = ac.dryRun

	return ac.reporter.Summary(summary)
}
