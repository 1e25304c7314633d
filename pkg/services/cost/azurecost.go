package cost

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
)

// QueryAPI is the slice of the cost management API the reporter needs.
// Satisfied by *armcostmanagement.QueryClient.
type QueryAPI interface {
	Usage(
		ctx context.Context,
		scope string,
		parameters armcostmanagement.QueryDefinition,
		options *armcostmanagement.QueryClientUsageOptions,
	) (armcostmanagement.QueryClientUsageResponse, error)
}

// Reporter produces per-service spend summaries for a subscription.
type Reporter struct {
	api   QueryAPI
	scope string
}

func NewReporter(api QueryAPI, subscriptionID string) *Reporter {
	return &Reporter{
		api:   api,
		scope: fmt.Sprintf("/subscriptions/%s", subscriptionID),
	}
}

// Report returns actual spend over the last days, grouped by service.
func (r *Reporter) Report(ctx context.Context, days int) (*domain.CostReport, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", days)
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	params := armcostmanagement.QueryDefinition{
		Type:      to.Ptr(armcostmanagement.ExportTypeActualCost),
		Timeframe: to.Ptr(armcostmanagement.TimeframeTypeCustom),
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: &start,
			To:   &end,
		},
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: to.Ptr(armcostmanagement.GranularityType("None")),
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     to.Ptr("Cost"),
					Function: to.Ptr(armcostmanagement.FunctionTypeSum),
				},
			},
			Grouping: []*armcostmanagement.QueryGrouping{{
				Name: to.Ptr("ServiceName"),
				Type: to.Ptr(armcostmanagement.QueryColumnTypeDimension),
			}},
		},
	}

	result, err := r.api.Usage(ctx, r.scope, params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query costs: %w", err)
	}

	report := &domain.CostReport{
		Service:  "all",
		Start:    start,
		End:      end,
		Currency: "USD",
	}
	if result.Properties == nil {
		return report, nil
	}

	costIdx, serviceIdx, currencyIdx := columnIndexes(result.Properties.Columns)
	for _, row := range result.Properties.Rows {
		line := domain.CostLine{}
		if costIdx >= 0 && costIdx < len(row) {
			if v, ok := row[costIdx].(float64); ok {
				line.Amount = v
			}
		}
		if serviceIdx >= 0 && serviceIdx < len(row) {
			line.Name = fmt.Sprintf("%v", row[serviceIdx])
		}
		if currencyIdx >= 0 && currencyIdx < len(row) {
			report.Currency = fmt.Sprintf("%v", row[currencyIdx])
		}
		report.Lines = append(report.Lines, line)
		report.Total += line.Amount
	}

	return report, nil
}

func columnIndexes(columns []*armcostmanagement.QueryColumn) (cost, service, currency int) {
	cost, service, currency = -1, -1, -1
	for i, col := range columns {
		if col == nil || col.Name == nil {
			continue
		}
		switch *col.Name {
		case "Cost", "PreTaxCost":
			cost = i
		case "ServiceName":
			service = i
		case "Currency":
			currency = i
		}
	}
	return cost, service, currency
}
