package commands

import (
	"fmt"
	"time"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/ops-atlas/pkg/services/azure"
	"github.com/de-tools/ops-atlas/pkg/services/insights"
	"github.com/de-tools/ops-atlas/pkg/services/inventory"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type MetricsCmd struct {
	profile       *string
	resourceGroup string
	metric        string
	aggregation   string
	window        time.Duration
	interval      string
	reporter      *export.Reporter
}

func NewMetricsCmd(profile *string, reporter *export.Reporter) *cobra.Command {
	mc := &MetricsCmd{profile: profile, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Fetch a metric for every VM in the subscription",
		RunE:  mc.run,
	}

	cmd.Flags().StringVar(&mc.resourceGroup, "resource-group", "", "Limit to one resource group")
	cmd.Flags().StringVar(&mc.metric, "metric", "Percentage CPU", "Metric name to fetch")
	cmd.Flags().StringVar(&mc.aggregation, "aggregation", "Average", "Aggregation: Average, Maximum, Minimum, Total or Count")
	cmd.Flags().DurationVar(&mc.window, "window", time.Hour, "Lookback window")
	cmd.Flags().StringVar(&mc.interval, "interval", "PT5M", "Sample interval (ISO 8601 duration)")

	return cmd
}

func (mc *MetricsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	cfg, err := azure.LoadConfig(*mc.profile)
	if err != nil {
		return err
	}

	computeClient, err := cfg.NewComputeClient()
	if err != nil {
		return err
	}
	metricsClient, err := cfg.NewMetricsClient()
	if err != nil {
		return err
	}

	vms, err := inventory.NewVMExplorer(computeClient).List(ctx, domain.Filter{ResourceGroup: mc.resourceGroup})
	if err != nil {
		return fmt.Errorf("enumeration failed: %w", err)
	}

	reader := insights.NewMetricsReader(metricsClient)
	query := insights.MetricQuery{
		Metric:      mc.metric,
		Aggregation: mc.aggregation,
		Window:      mc.window,
		Interval:    mc.interval,
	}

	// One failing VM must not sink the whole sweep.
	var all []domain.MetricSample
	for _, vm := range vms {
		samples, err := reader.Fetch(ctx, vm, query)
		if err != nil {
			logger.Error().Err(err).Str("resource", vm.Name).Msg("failed to fetch metric")
			continue
		}
		all = append(all, samples...)
	}

	return mc.reporter.Metrics(all)
}
