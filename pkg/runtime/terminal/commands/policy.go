package commands

import (
	"encoding/json"
	"fmt"
	"os"

	opserrors "github.com/de-tools/ops-atlas/pkg/errors"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/ops-atlas/pkg/services/azure"
	"github.com/de-tools/ops-atlas/pkg/services/provision"
	"github.com/de-tools/ops-atlas/pkg/services/reconcile"
	"github.com/spf13/cobra"
)

type PolicyCmd struct {
	profile     *string
	name        string
	displayName string
	description string
	mode        string
	ruleFile    string
	locations   []string
	dryRun      bool
	reporter    *export.Reporter
}

func NewPolicyCmd(profile *string, reporter *export.Reporter) *cobra.Command {
	pc := &PolicyCmd{profile: profile, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Create a custom policy definition if it does not exist",
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.name, "name", "", "Policy definition name")
	cmd.Flags().StringVar(&pc.displayName, "display-name", "", "Human-readable policy name")
	cmd.Flags().StringVar(&pc.description, "description", "", "Policy description")
	cmd.Flags().StringVar(&pc.mode, "mode", "Indexed", "Policy mode: All or Indexed")
	cmd.Flags().StringVar(&pc.ruleFile, "rule-file", "", "JSON file with the policy rule (default: deny-location rule)")
	cmd.Flags().StringSliceVar(&pc.locations, "allowed-locations", nil, "Locations for the default deny-location rule")
	cmd.Flags().BoolVar(&pc.dryRun, "dry-run", false, "Report intended actions without mutating anything")

	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("display-name")

	return cmd
}

func (pc *PolicyCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rule, err := pc.rule()
	if err != nil {
		return err
	}

	cfg, err := azure.LoadConfig(*pc.profile)
	if err != nil {
		return err
	}
	definitions, err := cfg.NewPolicyDefinitionsClient()
	if err != nil {
		return err
	}

	rec, err := provision.NewPolicyReconciler(definitions, provision.PolicyOptions{
		Name:        pc.name,
		DisplayName: pc.displayName,
		Description: pc.description,
		Mode:        pc.mode,
		Rule:        rule,
		DryRun:      pc.dryRun,
	})
	if err != nil {
		return opserrors.NewValidationError("policy", err.Error(), err)
	}

	summary, err := reconcile.NewEngine(1).Run(ctx,
		reconcile.StaticEnumerator{Resources: []domain.ResourceDescriptor{rec.Descriptor()}},
		rec, domain.Filter{})
	if err != nil {
		return err
	}
	summary.DryRun = pc.dryRun

	return pc.reporter.Summary(summary)
}

func (pc *PolicyCmd) rule() (map[string]any, error) {
	if pc.ruleFile == "" {
		if len(pc.locations) == 0 {
			return nil, opserrors.NewValidationError("allowed-locations",
				"either --rule-file or --allowed-locations is required", nil)
		}
		return provision.DenyLocationRule(pc.locations), nil
	}

	raw, err := os.ReadFile(pc.ruleFile)
	if err != nil {
		return nil, opserrors.NewSetupError("rule-file", fmt.Errorf("failed to read rule file: %w", err))
	}
	var rule map[string]any
	if err := json.Unmarshal(raw, &rule); err != nil {
		return nil, opserrors.NewValidationError("rule-file", "rule file is not valid JSON", err)
	}
	return rule, nil
}
