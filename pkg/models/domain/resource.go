package domain

// ResourceType identifies the kind of cloud resource a descriptor points at.
type ResourceType string

const (
	ResourceTypeVM      ResourceType = "Microsoft.Compute/virtualMachines"
	ResourceTypeUser    ResourceType = "Microsoft.Graph/users"
	ResourceTypePolicy  ResourceType = "Microsoft.Authorization/policyDefinitions"
	ResourceTypeGeneric ResourceType = ""
)

// ResourceDescriptor identifies a single cloud-managed entity for one run.
// Descriptors are produced fresh by an enumerator and never persisted.
type ResourceDescriptor struct {
	ID            string
	Name          string
	ResourceGroup string
	Location      string
	Type          ResourceType
	Tags          map[string]string
}

// Filter narrows what an enumerator lists.
type Filter struct {
	ResourceGroup string
	ResourceType  ResourceType
}
