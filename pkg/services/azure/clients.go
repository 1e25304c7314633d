package azure

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/monitor/azquery"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/monitor/armmonitor"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armpolicy"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
)

var graphScopes = []string{"https://graph.microsoft.com/.default"}

// NewComputeClient returns a virtual machines client for the configured
// subscription.
func (c *Config) NewComputeClient() (*armcompute.VirtualMachinesClient, error) {
	client, err := armcompute.NewVirtualMachinesClient(c.SubscriptionID, c.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create compute client: %w", err)
	}
	return client, nil
}

// NewResourcesClient returns a generic resource enumeration client.
func (c *Config) NewResourcesClient() (*armresources.Client, error) {
	client, err := armresources.NewClient(c.SubscriptionID, c.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create resources client: %w", err)
	}
	return client, nil
}

// NewMetricAlertsClient returns a client for metric alert rules.
func (c *Config) NewMetricAlertsClient() (*armmonitor.MetricAlertsClient, error) {
	client, err := armmonitor.NewMetricAlertsClient(c.SubscriptionID, c.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric alerts client: %w", err)
	}
	return client, nil
}

// NewActionGroupsClient returns a client for notification action groups.
func (c *Config) NewActionGroupsClient() (*armmonitor.ActionGroupsClient, error) {
	client, err := armmonitor.NewActionGroupsClient(c.SubscriptionID, c.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create action groups client: %w", err)
	}
	return client, nil
}

// NewPolicyDefinitionsClient returns a client for policy definitions.
func (c *Config) NewPolicyDefinitionsClient() (*armpolicy.DefinitionsClient, error) {
	client, err := armpolicy.NewDefinitionsClient(c.SubscriptionID, c.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create policy definitions client: %w", err)
	}
	return client, nil
}

// NewMetricsClient returns a monitor metrics query client.
func (c *Config) NewMetricsClient() (*azquery.MetricsClient, error) {
	client, err := azquery.NewMetricsClient(c.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics query client: %w", err)
	}
	return client, nil
}

// NewLogsClient returns a Log Analytics query client.
func (c *Config) NewLogsClient() (*azquery.LogsClient, error) {
	client, err := azquery.NewLogsClient(c.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create logs query client: %w", err)
	}
	return client, nil
}

// NewCostFactory returns the cost management client factory.
func (c *Config) NewCostFactory() (*armcostmanagement.ClientFactory, error) {
	factory, err := armcostmanagement.NewClientFactory(c.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client factory: %w", err)
	}
	return factory, nil
}

// NewGraphClient returns a Microsoft Graph client for directory operations.
func (c *Config) NewGraphClient() (*msgraphsdk.GraphServiceClient, error) {
	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(c.Credentials, graphScopes)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph client: %w", err)
	}
	return client, nil
}
