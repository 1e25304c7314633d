package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/monitor/azquery"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
)

// LogsAPI is the slice of the Log Analytics query API used here.
// Satisfied by *azquery.LogsClient.
type LogsAPI interface {
	QueryWorkspace(
		ctx context.Context,
		workspaceID string,
		body azquery.Body,
		options *azquery.LogsClientQueryWorkspaceOptions,
	) (azquery.LogsClientQueryWorkspaceResponse, error)
}

// SigninAuditor pulls login events from a Log Analytics workspace.
type SigninAuditor struct {
	api         LogsAPI
	workspaceID string
}

func NewSigninAuditor(api LogsAPI, workspaceID string) *SigninAuditor {
	return &SigninAuditor{api: api, workspaceID: workspaceID}
}

// ListEvents returns the sign-in events in the lookback window, newest
// first, optionally filtered to one user principal name.
func (a *SigninAuditor) ListEvents(ctx context.Context, lookback time.Duration, user string) ([]domain.SigninEvent, error) {
	var b strings.Builder
	b.WriteString("SigninLogs\n")
	fmt.Fprintf(&b, "| where TimeGenerated > ago(%s)\n", KQLDuration(lookback))
	if user != "" {
		fmt.Fprintf(&b, "| where UserPrincipalName == '%s'\n", EscapeKQL(user))
	}
	b.WriteString("| project TimeGenerated, UserPrincipalName, AppDisplayName, IPAddress, ResultType, ResultDescription\n")
	b.WriteString("| order by TimeGenerated desc")

	resp, err := a.api.QueryWorkspace(ctx, a.workspaceID, azquery.Body{
		Query:    to.Ptr(b.String()),
		Timespan: to.Ptr(azquery.NewTimeInterval(time.Now().UTC().Add(-lookback), time.Now().UTC())),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query sign-in logs: %w", err)
	}

	var events []domain.SigninEvent
	for _, table := range resp.Tables {
		if table == nil {
			continue
		}
		idx := ColumnIndex(table)
		for _, row := range table.Rows {
			events = append(events, domain.SigninEvent{
				Time:   TimeAt(row, idx.At("TimeGenerated")),
				User:   StringAt(row, idx.At("UserPrincipalName")),
				App:    StringAt(row, idx.At("AppDisplayName")),
				IP:     StringAt(row, idx.At("IPAddress")),
				Status: StringAt(row, idx.At("ResultType")),
				Detail: StringAt(row, idx.At("ResultDescription")),
			})
		}
	}

	return events, nil
}

// EscapeKQL doubles single quotes so interpolated identifiers cannot
// break out of a KQL string literal. Newlines are stripped as well.
func EscapeKQL(s string) string {
	s = strings.NewReplacer("\r", "", "\n", "").Replace(s)
	return strings.ReplaceAll(s, "'", "''")
}

// KQLDuration renders a duration in the shape ago() expects, using the
// coarsest unit that loses nothing.
func KQLDuration(d time.Duration) string {
	switch {
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d%time.Minute == 0:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

// Columns maps result column names to their row index.
type Columns map[string]int

// At returns the index for name, or -1 when the column is absent.
func (c Columns) At(name string) int {
	if i, ok := c[name]; ok {
		return i
	}
	return -1
}

// ColumnIndex builds a name-to-index lookup for a result table.
func ColumnIndex(table *azquery.Table) Columns {
	idx := make(Columns, len(table.Columns))
	for i, col := range table.Columns {
		if col != nil && col.Name != nil {
			idx[*col.Name] = i
		}
	}
	return idx
}

// StringAt renders the cell at i as a string; missing cells are empty.
func StringAt(row azquery.Row, i int) string {
	if i < 0 || i >= len(row) || row[i] == nil {
		return ""
	}
	return fmt.Sprintf("%v", row[i])
}

// TimeAt parses the cell at i as a timestamp; missing cells are zero.
func TimeAt(row azquery.Row, i int) time.Time {
	if i < 0 || i >= len(row) {
		return time.Time{}
	}
	switch v := row[i].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
