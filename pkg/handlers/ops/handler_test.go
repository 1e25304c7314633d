package ops

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockEnumerator struct {
	mock.Mock
}

func (m *mockEnumerator) List(ctx context.Context, filter domain.Filter) ([]domain.ResourceDescriptor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ResourceDescriptor), args.Error(1)
}

type mockAlertRunner struct {
	mock.Mock
}

func (m *mockAlertRunner) ReconcileAlerts(
	ctx context.Context,
	filter domain.Filter,
	dryRun bool,
) (domain.RunSummary, error) {
	args := m.Called(ctx, filter, dryRun)
	return args.Get(0).(domain.RunSummary), args.Error(1)
}

func TestReconcileAlerts_InvalidBody(t *testing.T) {
	handler := NewHandler(new(mockEnumerator), new(mockAlertRunner))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/reconcile", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.ReconcileAlerts(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListResources_PassesFilter(t *testing.T) {
	enumerator := new(mockEnumerator)
	enumerator.On("List", mock.Anything, domain.Filter{
		ResourceGroup: "rg-prod",
		ResourceType:  domain.ResourceTypeVM,
	}).Return([]domain.ResourceDescriptor{}, nil)

	handler := NewHandler(enumerator, new(mockAlertRunner))

	target := "/api/v1/resources?resource_group=rg-prod&type=Microsoft.Compute%2FvirtualMachines"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()

	handler.ListResources(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	enumerator.AssertExpectations(t)
}
