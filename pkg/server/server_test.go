package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-tools/ops-atlas/pkg/models/api"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
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

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	mockEnum := new(mockEnumerator)
	mockAlerts := new(mockAlertRunner)

	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Enumerator: mockEnum,
			Alerts:     mockAlerts,
			Logger:     logger,
		},
	}
	router := ConfigureRouter(config)
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	vm := domain.ResourceDescriptor{
		ID:            "/subscriptions/s/resourceGroups/rg-prod/providers/Microsoft.Compute/virtualMachines/vm-web-01",
		Name:          "vm-web-01",
		ResourceGroup: "rg-prod",
		Location:      "westeurope",
		Type:          domain.ResourceTypeVM,
	}

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		setupMocks     func()
		expectedStatus int
		check          func(t *testing.T, body []byte)
	}{
		{
			name:   "ListResources",
			method: http.MethodGet,
			path:   "/api/v1/resources?resource_group=rg-prod",
			setupMocks: func() {
				mockEnum.On("List", mock.Anything, domain.Filter{ResourceGroup: "rg-prod"}).
					Return([]domain.ResourceDescriptor{vm}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var resources []api.Resource
				require.NoError(t, json.Unmarshal(body, &resources))
				require.Len(t, resources, 1)
				assert.Equal(t, "vm-web-01", resources[0].Name)
				assert.Equal(t, "rg-prod", resources[0].ResourceGroup)
			},
		},
		{
			name:   "ListResources_EnumerationFailure",
			method: http.MethodGet,
			path:   "/api/v1/resources",
			setupMocks: func() {
				mockEnum.On("List", mock.Anything, domain.Filter{}).
					Return(nil, errors.New("subscription unreachable")).Once()
			},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:   "ReconcileAlerts_PartialFailureIsStillOK",
			method: http.MethodPost,
			path:   "/api/v1/alerts/reconcile",
			body:   api.ReconcileRequest{ResourceGroup: "rg-prod"},
			setupMocks: func() {
				mockAlerts.On("ReconcileAlerts", mock.Anything, domain.Filter{ResourceGroup: "rg-prod"}, false).
					Return(domain.RunSummary{
						Outcomes: []domain.ActionOutcome{
							{Target: vm, Status: domain.StatusCreated},
							{Target: vm, Status: domain.StatusFailed, Detail: "throttled"},
						},
					}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var summary api.RunSummary
				require.NoError(t, json.Unmarshal(body, &summary))
				assert.Equal(t, 1, summary.Created)
				assert.Equal(t, 1, summary.Failed)
				require.Len(t, summary.Outcomes, 2)
				assert.Equal(t, "throttled", summary.Outcomes[1].Detail)
			},
		},
		{
			name:   "ReconcileAlerts_EnumerationFailure",
			method: http.MethodPost,
			path:   "/api/v1/alerts/reconcile",
			body:   api.ReconcileRequest{DryRun: true},
			setupMocks: func() {
				mockAlerts.On("ReconcileAlerts", mock.Anything, domain.Filter{}, true).
					Return(domain.RunSummary{}, errors.New("subscription unreachable")).Once()
			},
			expectedStatus: http.StatusBadGateway,
			check: func(t *testing.T, body []byte) {
				assert.Equal(t, "reconciliation failed\n", string(body))
			},
		},
		{
			name:           "Healthz",
			method:         http.MethodGet,
			path:           "/healthz",
			setupMocks:     func() {},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Metrics",
			method:         http.MethodGet,
			path:           "/metrics",
			setupMocks:     func() {},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()

			var reqBody io.Reader
			if tc.body != nil {
				payload, err := json.Marshal(tc.body)
				require.NoError(t, err)
				reqBody = bytes.NewReader(payload)
			}

			req, err := http.NewRequest(tc.method, testServer.URL+tc.path, reqBody)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			if tc.check != nil {
				tc.check(t, body)
			}
		})
	}

	mockEnum.AssertExpectations(t)
	mockAlerts.AssertExpectations(t)
}
