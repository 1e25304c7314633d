package commands

import (
	"time"

	"github.com/de-tools/ops-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/ops-atlas/pkg/services/azure"
	"github.com/de-tools/ops-atlas/pkg/services/insights"
	"github.com/spf13/cobra"
)

type LoginsCmd struct {
	profile     *string
	workspaceID string
	lookback    time.Duration
	user        string
	reporter    *export.Reporter
}

func NewLoginsCmd(profile *string, reporter *export.Reporter) *cobra.Command {
	lc := &LoginsCmd{profile: profile, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "logins",
		Short: "Audit sign-in events from a Log Analytics workspace",
		RunE:  lc.run,
	}

	cmd.Flags().StringVar(&lc.workspaceID, "workspace-id", "", "Log Analytics workspace ID")
	cmd.Flags().DurationVar(&lc.lookback, "lookback", 24*time.Hour, "How far back to look")
	cmd.Flags().StringVar(&lc.user, "user", "", "Limit to one user principal name")

	_ = cmd.MarkFlagRequired("workspace-id")

	return cmd
}

func (lc *LoginsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := azure.LoadConfig(*lc.profile)
	if err != nil {
		return err
	}

	logsClient, err := cfg.NewLogsClient()
	if err != nil {
		return err
	}

	events, err := insights.NewSigninAuditor(logsClient, lc.workspaceID).ListEvents(ctx, lc.lookback, lc.user)
	if err != nil {
		return err
	}

	return lc.reporter.Signins(events)
}
