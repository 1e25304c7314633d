package commands

import (
	"github.com/de-tools/ops-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/ops-atlas/pkg/services/azure"
	"github.com/de-tools/ops-atlas/pkg/services/cost"
	"github.com/spf13/cobra"
)

type CostsCmd struct {
	profile  *string
	days     int
	reporter *export.Reporter
}

func NewCostsCmd(profile *string, reporter *export.Reporter) *cobra.Command {
	cc := &CostsCmd{profile: profile, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "costs",
		Short: "Report actual cost for the subscription grouped by service",
		RunE:  cc.run,
	}

	cmd.Flags().IntVar(&cc.days, "days", 30, "Number of trailing days to report")

	return cmd
}

func (cc *CostsCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := azure.LoadConfig(*cc.profile)
	if err != nil {
		return err
	}

	factory, err := cfg.NewCostFactory()
	if err != nil {
		return err
	}

	report, err := cost.NewReporter(factory.NewQueryClient(), cfg.SubscriptionID).Report(cmd.Context(), cc.days)
	if err != nil {
		return err
	}

	return cc.reporter.Cost(report)
}
