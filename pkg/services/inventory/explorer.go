package inventory

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
)

// VMExplorer enumerates virtual machines in a subscription.
type VMExplorer struct {
	client *armcompute.VirtualMachinesClient
}

func NewVMExplorer(client *armcompute.VirtualMachinesClient) *VMExplorer {
	return &VMExplorer{client: client}
}

// List returns a descriptor per VM, optionally scoped to a resource group.
func (e *VMExplorer) List(ctx context.Context, filter domain.Filter) ([]domain.ResourceDescriptor, error) {
	var out []domain.ResourceDescriptor

	appendPage := func(vms []*armcompute.VirtualMachine) error {
		for _, vm := range vms {
			if vm == nil || vm.ID == nil {
				continue
			}
			descriptor, err := describeVM(vm)
			if err != nil {
				return err
			}
			out = append(out, descriptor)
		}
		return nil
	}

	if filter.ResourceGroup != "" {
		pager := e.client.NewListPager(filter.ResourceGroup, nil)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list VMs in %s: %w", filter.ResourceGroup, err)
			}
			if err := appendPage(page.Value); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	pager := e.client.NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list VMs: %w", err)
		}
		if err := appendPage(page.Value); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func describeVM(vm *armcompute.VirtualMachine) (domain.ResourceDescriptor, error) {
	id, err := arm.ParseResourceID(*vm.ID)
	if err != nil {
		return domain.ResourceDescriptor{}, fmt.Errorf("unparseable VM resource ID %s: %w", *vm.ID, err)
	}

	descriptor := domain.ResourceDescriptor{
		ID:            *vm.ID,
		Name:          id.Name,
		ResourceGroup: id.ResourceGroupName,
		Type:          domain.ResourceTypeVM,
		Tags:          flattenTags(vm.Tags),
	}
	if vm.Location != nil {
		descriptor.Location = *vm.Location
	}
	return descriptor, nil
}

// ResourceExplorer enumerates arbitrary resources in a subscription.
type ResourceExplorer struct {
	client *armresources.Client
}

func NewResourceExplorer(client *armresources.Client) *ResourceExplorer {
	return &ResourceExplorer{client: client}
}

// List returns a descriptor per resource matching the filter.
func (e *ResourceExplorer) List(ctx context.Context, filter domain.Filter) ([]domain.ResourceDescriptor, error) {
	var odataFilter *string
	if filter.ResourceType != "" {
		odataFilter = to.Ptr(fmt.Sprintf("resourceType eq '%s'", filter.ResourceType))
	}

	var out []domain.ResourceDescriptor

	appendPage := func(resources []*armresources.GenericResourceExpanded) error {
		for _, res := range resources {
			if res == nil || res.ID == nil {
				continue
			}
			id, err := arm.ParseResourceID(*res.ID)
			if err != nil {
				return fmt.Errorf("unparseable resource ID %s: %w", *res.ID, err)
			}
			descriptor := domain.ResourceDescriptor{
				ID:            *res.ID,
				Name:          id.Name,
				ResourceGroup: id.ResourceGroupName,
				Tags:          flattenTags(res.Tags),
			}
			if res.Type != nil {
				descriptor.Type = domain.ResourceType(*res.Type)
			}
			if res.Location != nil {
				descriptor.Location = *res.Location
			}
			out = append(out, descriptor)
		}
		return nil
	}

	if filter.ResourceGroup != "" {
		pager := e.client.NewListByResourceGroupPager(filter.ResourceGroup, &armresources.ClientListByResourceGroupOptions{Filter: odataFilter})
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list resources in %s: %w", filter.ResourceGroup, err)
			}
			if err := appendPage(page.Value); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	pager := e.client.NewListPager(&armresources.ClientListOptions{Filter: odataFilter})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list resources: %w", err)
		}
		if err := appendPage(page.Value); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func flattenTags(tags map[string]*string) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		if v != nil {
			out[k] = *v
		}
	}
	return out
}
