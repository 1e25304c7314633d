package provision

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armpolicy"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/services/reconcile"
	"github.com/go-playground/validator/v10"
)

// PolicyDefinitionsAPI is the slice of the policy API the reconciler
// needs. Satisfied by *armpolicy.DefinitionsClient.
type PolicyDefinitionsAPI interface {
	Get(
		ctx context.Context,
		policyDefinitionName string,
		options *armpolicy.DefinitionsClientGetOptions,
	) (armpolicy.DefinitionsClientGetResponse, error)
	CreateOrUpdate(
		ctx context.Context,
		policyDefinitionName string,
		parameters armpolicy.Definition,
		options *armpolicy.DefinitionsClientCreateOrUpdateOptions,
	) (armpolicy.DefinitionsClientCreateOrUpdateResponse, error)
}

// PolicyOptions configures one policy definition.
type PolicyOptions struct {
	Name        string `validate:"required"`
	DisplayName string `validate:"required"`
	Description string
	Mode        string         `validate:"required,oneof=All Indexed"`
	Rule        map[string]any `validate:"required"`
	DryRun      bool
}

// PolicyReconciler creates a custom policy definition at subscription
// scope if it does not already exist.
type PolicyReconciler struct {
	definitions PolicyDefinitionsAPI
	opts        PolicyOptions
}

// NewPolicyReconciler validates the options and builds a reconciler.
func NewPolicyReconciler(definitions PolicyDefinitionsAPI, opts PolicyOptions) (*PolicyReconciler, error) {
	if err := validator.New().Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid policy options: %w", err)
	}
	return &PolicyReconciler{definitions: definitions, opts: opts}, nil
}

func (r *PolicyReconciler) Operation() string { return "policy-definition" }

// Descriptor returns the single target this reconciler operates on, for
// use with a static enumerator.
func (r *PolicyReconciler) Descriptor() domain.ResourceDescriptor {
	return domain.ResourceDescriptor{
		ID:   r.opts.Name,
		Name: r.opts.Name,
		Type: domain.ResourceTypePolicy,
	}
}

func (r *PolicyReconciler) Reconcile(ctx context.Context, target domain.ResourceDescriptor) domain.ActionOutcome {
	_, err := r.definitions.Get(ctx, target.Name, nil)
	switch {
	case err == nil:
		return domain.ActionOutcome{
			Target: target,
			Status: domain.StatusSkipped,
			Detail: fmt.Sprintf("policy definition %s already exists", target.Name),
		}
	case !reconcile.IsNotFound(err):
		return domain.ActionOutcome{
			Target: target,
			Status: domain.StatusFailed,
			Detail: fmt.Sprintf("failed to look up policy definition %s: %v", target.Name, err),
		}
	}

	if r.opts.DryRun {
		return domain.ActionOutcome{
			Target: target,
			Status: domain.StatusSkipped,
			Detail: fmt.Sprintf("would create policy definition %s", target.Name),
		}
	}

	definition := armpolicy.Definition{
		Properties: &armpolicy.DefinitionProperties{
			DisplayName: to.Ptr(r.opts.DisplayName),
			Description: to.Ptr(r.opts.Description),
			Mode:        to.Ptr(r.opts.Mode),
			PolicyType:  to.Ptr(armpolicy.PolicyTypeCustom),
			PolicyRule:  r.opts.Rule,
		},
	}
	if _, err := r.definitions.CreateOrUpdate(ctx, target.Name, definition, nil); err != nil {
		return domain.ActionOutcome{
			Target: target,
			Status: domain.StatusFailed,
			Detail: fmt.Sprintf("failed to create policy definition %s: %v", target.Name, err),
		}
	}

	return domain.ActionOutcome{
		Target: target,
		Status: domain.StatusCreated,
		Detail: fmt.Sprintf("created policy definition %s", target.Name),
	}
}

// DenyLocationRule builds the default rule: deny resources created
// outside the allowed locations.
func DenyLocationRule(allowed []string) map[string]any {
	return map[string]any{
		"if": map[string]any{
			"not": map[string]any{
				"field": "location",
				"in":    allowed,
			},
		},
		"then": map[string]any{
			"effect": "deny",
		},
	}
}
