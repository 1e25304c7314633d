package commands

import (
	"time"

	"github.com/de-tools/ops-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/ops-atlas/pkg/services/audit"
	"github.com/de-tools/ops-atlas/pkg/services/azure"
	"github.com/de-tools/ops-atlas/pkg/services/inventory"
	"github.com/de-tools/ops-atlas/pkg/services/notify"
	"github.com/spf13/cobra"
)

type DeletionsCmd struct {
	profile     *string
	workspaceID string
	lookback    time.Duration
	threshold   float64
	notifyTo    []string
	reporter    *export.Reporter
}

func NewDeletionsCmd(profile *string, reporter *export.Reporter) *cobra.Command {
	dc := &DeletionsCmd{profile: profile, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "deletions",
		Short: "Check the resource deletion rate against a threshold",
		RunE:  dc.run,
	}

	cmd.Flags().StringVar(&dc.workspaceID, "workspace-id", "", "Log Analytics workspace ID holding the activity log")
	cmd.Flags().DurationVar(&dc.lookback, "lookback", 24*time.Hour, "How far back to look for deletions")
	cmd.Flags().Float64Var(&dc.threshold, "threshold-percent", 5, "Deletion rate that counts as a breach (0-100)")
	cmd.Flags().StringSliceVar(&dc.notifyTo, "notify-to", nil, "Email a breach notification to these addresses")

	_ = cmd.MarkFlagRequired("workspace-id")

	return cmd
}

func (dc *DeletionsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := azure.LoadConfig(*dc.profile)
	if err != nil {
		return err
	}

	logsClient, err := cfg.NewLogsClient()
	if err != nil {
		return err
	}
	resourcesClient, err := cfg.NewResourcesClient()
	if err != nil {
		return err
	}

	var mailer notify.Mailer
	if len(dc.notifyTo) > 0 {
		settings, err := LoadToolSettings()
		if err != nil {
			return err
		}
		mailer, err = settings.Mailer()
		if err != nil {
			return err
		}
	}

	auditor := audit.NewDeletionAuditor(logsClient, dc.workspaceID,
		inventory.NewResourceExplorer(resourcesClient), mailer)

	result, err := auditor.Run(ctx, audit.DeletionAuditSettings{
		Lookback:         dc.lookback,
		ThresholdPercent: dc.threshold,
		NotifyTo:         dc.notifyTo,
	})
	if err != nil {
		return err
	}

	return dc.reporter.Deletion(result)
}
