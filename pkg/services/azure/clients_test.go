package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/monitor/armmonitor"
)

// The alerts and serve commands look action groups up with this exact
// signature; a rename in the SDK surfaces here instead of at their
// call sites.
var _ func(
	*armmonitor.ActionGroupsClient,
	context.Context,
	string,
	string,
	*armmonitor.ActionGroupsClientGetOptions,
) (armmonitor.ActionGroupsClientGetResponse, error) = (*armmonitor.ActionGroupsClient).Get
