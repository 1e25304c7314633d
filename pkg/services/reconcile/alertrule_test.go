package reconcile

import (
	"context"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/monitor/armmonitor"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAlertsAPI struct{ mock.Mock }

func (m *mockAlertsAPI) Get(
	ctx context.Context,
	resourceGroupName string,
	ruleName string,
	options *armmonitor.MetricAlertsClientGetOptions,
) (armmonitor.MetricAlertsClientGetResponse, error) {
	args := m.Called(ctx, resourceGroupName, ruleName, options)
	return args.Get(0).(armmonitor.MetricAlertsClientGetResponse), args.Error(1)
}

func (m *mockAlertsAPI) CreateOrUpdate(
	ctx context.Context,
	resourceGroupName string,
	ruleName string,
	parameters armmonitor.MetricAlertResource,
	options *armmonitor.MetricAlertsClientCreateOrUpdateOptions,
) (armmonitor.MetricAlertsClientCreateOrUpdateResponse, error) {
	args := m.Called(ctx, resourceGroupName, ruleName, parameters, options)
	return args.Get(0).(armmonitor.MetricAlertsClientCreateOrUpdateResponse), args.Error(1)
}

func testOptions() AlertRuleOptions {
	return AlertRuleOptions{
		Prefix:              "CPUAlert-",
		MetricName:          "Percentage CPU",
		Threshold:           80,
		Severity:            3,
		WindowSize:          "PT15M",
		EvaluationFrequency: "PT5M",
		ActionGroupID:       "/subscriptions/s/resourceGroups/rg/providers/microsoft.insights/actionGroups/ops",
	}
}

func vm(name string) domain.ResourceDescriptor {
	return descriptors(name)[0]
}

func notFound() error {
	return &azcore.ResponseError{StatusCode: 404, ErrorCode: "ResourceNotFound"}
}

func TestAlertRule_CreatesWhenAbsent(t *testing.T) {
	ctx := context.Background()
	api := new(mockAlertsAPI)
	api.On("Get", mock.Anything, "rg", "CPUAlert-vm1", mock.Anything).
		Return(armmonitor.MetricAlertsClientGetResponse{}, notFound())
	api.On("CreateOrUpdate", mock.Anything, "rg", "CPUAlert-vm1", mock.Anything, mock.Anything).
		Return(armmonitor.MetricAlertsClientCreateOrUpdateResponse{}, nil)

	rec, err := NewAlertRuleReconciler(api, testOptions())
	require.NoError(t, err)

	outcome := rec.Reconcile(ctx, vm("vm1"))
	assert.Equal(t, domain.StatusCreated, outcome.Status)
	assert.Contains(t, outcome.Detail, "CPUAlert-vm1")

	rule := api.Calls[1].Arguments.Get(3).(armmonitor.MetricAlertResource)
	require.NotNil(t, rule.Properties)
	assert.Equal(t, "global", *rule.Location)
	assert.Equal(t, vm("vm1").ID, *rule.Properties.Scopes[0])
	criteria := rule.Properties.Criteria.(*armmonitor.MetricAlertSingleResourceMultipleMetricCriteria)
	assert.Equal(t, 80.0, *criteria.AllOf[0].Threshold)
	assert.Equal(t, "Percentage CPU", *criteria.AllOf[0].MetricName)
	api.AssertExpectations(t)
}

func TestAlertRule_SkipsWhenPresent(t *testing.T) {
	ctx := context.Background()
	api := new(mockAlertsAPI)
	api.On("Get", mock.Anything, "rg", "CPUAlert-vm1", mock.Anything).
		Return(armmonitor.MetricAlertsClientGetResponse{}, nil)

	rec, err := NewAlertRuleReconciler(api, testOptions())
	require.NoError(t, err)

	outcome := rec.Reconcile(ctx, vm("vm1"))
	assert.Equal(t, domain.StatusSkipped, outcome.Status)
	api.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAlertRule_IdempotentAcrossRuns(t *testing.T) {
	ctx := context.Background()
	api := new(mockAlertsAPI)
	api.On("Get", mock.Anything, "rg", "CPUAlert-vm1", mock.Anything).
		Return(armmonitor.MetricAlertsClientGetResponse{}, notFound()).Once()
	api.On("CreateOrUpdate", mock.Anything, "rg", "CPUAlert-vm1", mock.Anything, mock.Anything).
		Return(armmonitor.MetricAlertsClientCreateOrUpdateResponse{}, nil).Once()
	// Second run: the rule now exists.
	api.On("Get", mock.Anything, "rg", "CPUAlert-vm1", mock.Anything).
		Return(armmonitor.MetricAlertsClientGetResponse{}, nil).Once()

	rec, err := NewAlertRuleReconciler(api, testOptions())
	require.NoError(t, err)

	first := rec.Reconcile(ctx, vm("vm1"))
	second := rec.Reconcile(ctx, vm("vm1"))
	assert.Equal(t, domain.StatusCreated, first.Status)
	assert.Equal(t, domain.StatusSkipped, second.Status)
	api.AssertExpectations(t)
}

func TestAlertRule_DryRunNeverMutates(t *testing.T) {
	ctx := context.Background()
	api := new(mockAlertsAPI)
	api.On("Get", mock.Anything, "rg", "CPUAlert-vm1", mock.Anything).
		Return(armmonitor.MetricAlertsClientGetResponse{}, notFound())

	opts := testOptions()
	opts.DryRun = true
	rec, err := NewAlertRuleReconciler(api, opts)
	require.NoError(t, err)

	outcome := rec.Reconcile(ctx, vm("vm1"))
	assert.Equal(t, domain.StatusSkipped, outcome.Status)
	assert.Contains(t, outcome.Detail, "would create")
	api.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAlertRule_LookupFailure(t *testing.T) {
	ctx := context.Background()
	api := new(mockAlertsAPI)
	api.On("Get", mock.Anything, "rg", "CPUAlert-vm1", mock.Anything).
		Return(armmonitor.MetricAlertsClientGetResponse{}, &azcore.ResponseError{StatusCode: 502})

	rec, err := NewAlertRuleReconciler(api, testOptions())
	require.NoError(t, err)

	outcome := rec.Reconcile(ctx, vm("vm1"))
	assert.Equal(t, domain.StatusFailed, outcome.Status)
	api.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNewAlertRuleReconciler_RejectsBadOptions(t *testing.T) {
	opts := testOptions()
	opts.Threshold = 150

	_, err := NewAlertRuleReconciler(new(mockAlertsAPI), opts)
	require.Error(t, err)

	opts = testOptions()
	opts.ActionGroupID = ""
	_, err = NewAlertRuleReconciler(new(mockAlertsAPI), opts)
	require.Error(t, err)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(notFound()))
	assert.False(t, IsNotFound(&azcore.ResponseError{StatusCode: 500}))
	assert.False(t, IsNotFound(nil))
}
