package commands

import (
	opserrors "github.com/de-tools/ops-atlas/pkg/errors"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/ops-atlas/pkg/services/azure"
	"github.com/de-tools/ops-atlas/pkg/services/provision"
	"github.com/de-tools/ops-atlas/pkg/services/reconcile"
	"github.com/spf13/cobra"
)

type UsersCmd struct {
	profile      *string
	upn          string
	displayName  string
	mailNickname string
	fromFile     string
	dryRun       bool
	reporter     *export.Reporter
}

func NewUsersCmd(profile *string, reporter *export.Reporter) *cobra.Command {
	uc := &UsersCmd{profile: profile, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Provision directory users that do not exist yet",
		RunE:  uc.run,
	}

	cmd.Flags().StringVar(&uc.upn, "upn", "", "User principal name to provision")
	cmd.Flags().StringVar(&uc.displayName, "display-name", "", "Display name for the user")
	cmd.Flags().StringVar(&uc.mailNickname, "mail-nickname", "", "Mail nickname for the user")
	cmd.Flags().StringVar(&uc.fromFile, "from-file", "", "CSV file with users: upn,displayName,mailNickname")
	cmd.Flags().BoolVar(&uc.dryRun, "dry-run", false, "Report intended actions without mutating anything")

	return cmd
}

func (uc *UsersCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	specs, err := uc.specs()
	if err != nil {
		return err
	}

	cfg, err := azure.LoadConfig(*uc.profile)
	if err != nil {
		return err
	}
	graphClient, err := cfg.NewGraphClient()
	if err != nil {
		return opserrors.NewSetupError("graph", err)
	}

	rec, err := provision.NewUserReconciler(provision.NewGraphDirectory(graphClient), specs, uc.dryRun)
	if err != nil {
		return opserrors.NewValidationError("users", err.Error(), err)
	}

	summary, err := reconcile.NewEngine(1).Run(ctx,
		reconcile.StaticEnumerator{Resources: rec.Targets()}, rec, domain.Filter{})
	if err != nil {
		return err
	}
	summary.DryRun = uc.dryRun

	return uc.reporter.Summary(summary)
}

func (uc *UsersCmd) specs() ([]domain.UserSpec, error) {
	if uc.fromFile != "" {
		specs, err := provision.LoadUserSpecs(uc.fromFile)
		if err != nil {
			return nil, opserrors.NewSetupError("from-file", err)
		}
		return specs, nil
	}

	if uc.upn == "" || uc.displayName == "" || uc.mailNickname == "" {
		return nil, opserrors.NewValidationError("users",
			"either --from-file or all of --upn, --display-name and --mail-nickname are required", nil)
	}

	return []domain.UserSpec{{
		UserPrincipalName: uc.upn,
		DisplayName:       uc.displayName,
		MailNickname:      uc.mailNickname,
	}}, nil
}
