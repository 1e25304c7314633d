package commands

import (
	"fmt"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/ops-atlas/pkg/services/azure"
	"github.com/de-tools/ops-atlas/pkg/services/inventory"
	"github.com/de-tools/ops-atlas/pkg/services/reconcile"
	"github.com/spf13/cobra"
)

type InventoryCmd struct {
	profile       *string
	resourceGroup string
	resourceType  string
	reporter      *export.Reporter
}

func NewInventoryCmd(profile *string, reporter *export.Reporter) *cobra.Command {
	ic := &InventoryCmd{profile: profile, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "List virtual machines or any resource type in the subscription",
		RunE:  ic.run,
	}

	cmd.Flags().StringVar(&ic.resourceGroup, "resource-group", "", "Limit the listing to one resource group")
	cmd.Flags().StringVar(&ic.resourceType, "type", "", "Resource type to list (default: virtual machines)")

	return cmd
}

func (ic *InventoryCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := azure.LoadConfig(*ic.profile)
	if err != nil {
		return err
	}

	var enumerator reconcile.Enumerator
	filter := domain.Filter{ResourceGroup: ic.resourceGroup}

	if ic.resourceType == "" {
		client, err := cfg.NewComputeClient()
		if err != nil {
			return err
		}
		enumerator = inventory.NewVMExplorer(client)
	} else {
		client, err := cfg.NewResourcesClient()
		if err != nil {
			return err
		}
		enumerator = inventory.NewResourceExplorer(client)
		filter.ResourceType = domain.ResourceType(ic.resourceType)
	}

	resources, err := enumerator.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("enumeration failed: %w", err)
	}

	return ic.reporter.Resources(resources)
}
