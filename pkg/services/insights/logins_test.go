package insights

import (
	"context"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/monitor/azquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLogsAPI struct{ mock.Mock }

func (m *mockLogsAPI) QueryWorkspace(
	ctx context.Context,
	workspaceID string,
	body azquery.Body,
	options *azquery.LogsClientQueryWorkspaceOptions,
) (azquery.LogsClientQueryWorkspaceResponse, error) {
	args := m.Called(ctx, workspaceID, body, options)
	return args.Get(0).(azquery.LogsClientQueryWorkspaceResponse), args.Error(1)
}

func signinTable() *azquery.Table {
	return &azquery.Table{
		Columns: []*azquery.Column{
			{Name: to.Ptr("TimeGenerated")},
			{Name: to.Ptr("UserPrincipalName")},
			{Name: to.Ptr("AppDisplayName")},
			{Name: to.Ptr("IPAddress")},
			{Name: to.Ptr("ResultType")},
			{Name: to.Ptr("ResultDescription")},
		},
		Rows: []azquery.Row{
			{"2026-08-30T09:15:00Z", "alex@example.com", "Azure Portal", "203.0.113.7", "0", ""},
			{"2026-08-30T08:01:00Z", "sam@example.com", "Office 365", "198.51.100.2", "50126", "Invalid credentials"},
		},
	}
}

func TestSigninAuditor_ListEvents(t *testing.T) {
	ctx := context.Background()
	api := new(mockLogsAPI)

	var capturedQuery string
	api.On("QueryWorkspace", mock.Anything, "ws-1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			body := args.Get(2).(azquery.Body)
			capturedQuery = *body.Query
		}).
		Return(azquery.LogsClientQueryWorkspaceResponse{
			Results: azquery.Results{Tables: []*azquery.Table{signinTable()}},
		}, nil)

	events, err := NewSigninAuditor(api, "ws-1").ListEvents(ctx, 24*time.Hour, "o'brien@example.com")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "alex@example.com", events[0].User)
	assert.Equal(t, "Azure Portal", events[0].App)
	assert.Equal(t, "203.0.113.7", events[0].IP)
	assert.Equal(t, time.Date(2026, 8, 30, 9, 15, 0, 0, time.UTC), events[0].Time)
	assert.Equal(t, "50126", events[1].Status)
	assert.Equal(t, "Invalid credentials", events[1].Detail)

	assert.Contains(t, capturedQuery, "ago(24h)")
	// The user filter must be escaped, not interpolated raw.
	assert.Contains(t, capturedQuery, "o''brien@example.com")
	api.AssertExpectations(t)
}

func TestEscapeKQL(t *testing.T) {
	assert.Equal(t, "plain", EscapeKQL("plain"))
	assert.Equal(t, "o''brien", EscapeKQL("o'brien"))
	assert.Equal(t, "a''''b", EscapeKQL("a''b"))
	assert.Equal(t, "ab", EscapeKQL("a\nb"))
}

func TestKQLDuration(t *testing.T) {
	assert.Equal(t, "30m", KQLDuration(30*time.Minute))
	assert.Equal(t, "48h", KQLDuration(48*time.Hour))
	// Fractional hours must not lose the remainder.
	assert.Equal(t, "90m", KQLDuration(90*time.Minute))
	assert.Equal(t, "150m", KQLDuration(2*time.Hour+30*time.Minute))
	assert.Equal(t, "90s", KQLDuration(90*time.Second))
}
