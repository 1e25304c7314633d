package commands

import (
	"context"
	"fmt"
	"net"
	"os"

	opserrors "github.com/de-tools/ops-atlas/pkg/errors"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/server"
	"github.com/de-tools/ops-atlas/pkg/services/azure"
	"github.com/de-tools/ops-atlas/pkg/services/inventory"
	"github.com/de-tools/ops-atlas/pkg/services/reconcile"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type ServeCmd struct {
	profile       *string
	addr          string
	actionGroup   string
	actionGroupRG string
	metric        string
	threshold     float64
	severity      int32
	workers       int
}

func NewServeCmd(profile *string) *cobra.Command {
	sc := &ServeCmd{profile: profile}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose inventory and alert reconciliation over HTTP",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.addr, "addr", "", "Listen address (overrides SERVER_HOST/SERVER_PORT)")
	cmd.Flags().StringVar(&sc.actionGroup, "action-group", "", "Action group to notify when a rule fires")
	cmd.Flags().StringVar(&sc.actionGroupRG, "action-group-rg", "", "Resource group that holds the action group")
	cmd.Flags().StringVar(&sc.metric, "metric", "Percentage CPU", "Metric the provisioned rules watch")
	cmd.Flags().Float64Var(&sc.threshold, "threshold", 80, "Threshold percentage (0-100)")
	cmd.Flags().Int32Var(&sc.severity, "severity", 3, "Alert severity (0-4)")
	cmd.Flags().IntVar(&sc.workers, "workers", 1, "Reconcile this many resources concurrently")

	_ = cmd.MarkFlagRequired("action-group")
	_ = cmd.MarkFlagRequired("action-group-rg")

	return cmd
}

// alertRunner adapts the reconcile engine to the HTTP handler: rule
// options are fixed at startup, the filter and dry-run flag come from
// each request.
type alertRunner struct {
	engine     *reconcile.Engine
	enumerator reconcile.Enumerator
	alerts     reconcile.MetricAlertsAPI
	options    reconcile.AlertRuleOptions
}

func (r *alertRunner) ReconcileAlerts(
	ctx context.Context,
	filter domain.Filter,
	dryRun bool,
) (domain.RunSummary, error) {
	options := r.options
	options.DryRun = dryRun

	rec, err := reconcile.NewAlertRuleReconciler(r.alerts, options)
	if err != nil {
		return domain.RunSummary{}, err
	}

	summary, err := r.engine.Run(ctx, r.enumerator, rec, filter)
	if err != nil {
		return domain.RunSummary{}, err
	}
	summary.DryRun = dryRun
	return summary, nil
}

func (sc *ServeCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("failed to load .env file")
	}

	settings, err := LoadToolSettings()
	if err != nil {
		return err
	}

	cfg, err := azure.LoadConfig(*sc.profile)
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

	group, err := groupsClient.Get(ctx, sc.actionGroupRG, sc.actionGroup, nil)
	if err != nil {
		return opserrors.NewSetupError("action-group",
			fmt.Errorf("action group %s not found in %s: %w", sc.actionGroup, sc.actionGroupRG, err))
	}

	addr := sc.addr
	if addr == "" {
		host := os.Getenv("SERVER_HOST")
		port := os.Getenv("SERVER_PORT")
		if host == "" || port == "" {
			return opserrors.NewSetupError("server",
				fmt.Errorf("no listen address: pass --addr or set SERVER_HOST and SERVER_PORT"))
		}
		addr = net.JoinHostPort(host, port)
	}

	api := server.NewWebAPI(server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Enumerator: inventory.NewVMExplorer(computeClient),
			Alerts: &alertRunner{
				engine:     reconcile.NewEngine(sc.workers),
				enumerator: inventory.NewVMExplorer(computeClient),
				alerts:     alertsClient,
				options: reconcile.AlertRuleOptions{
					Prefix:              settings.AlertPrefix,
					MetricName:          sc.metric,
					Threshold:           sc.threshold,
					Severity:            sc.severity,
					WindowSize:          "PT15M",
					EvaluationFrequency: "PT5M",
					ActionGroupID:       *group.ID,
				},
			},
			Logger: *logger,
		},
	})

	return api.Start()
}
