package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/monitor/azquery"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
)

// MetricsAPI is the slice of the monitor query API the reader needs.
// Satisfied by *azquery.MetricsClient.
type MetricsAPI interface {
	QueryResource(
		ctx context.Context,
		resourceURI string,
		options *azquery.MetricsClientQueryResourceOptions,
	) (azquery.MetricsClientQueryResourceResponse, error)
}

// MetricQuery selects what to fetch for a resource.
type MetricQuery struct {
	Metric      string
	Aggregation string
	Window      time.Duration
	Interval    string // ISO 8601 duration, e.g. PT5M
}

// MetricsReader fetches aggregated metric samples per resource.
type MetricsReader struct {
	api MetricsAPI
}

func NewMetricsReader(api MetricsAPI) *MetricsReader {
	return &MetricsReader{api: api}
}

// Fetch returns the samples for one resource over the query window.
func (r *MetricsReader) Fetch(
	ctx context.Context,
	target domain.ResourceDescriptor,
	query MetricQuery,
) ([]domain.MetricSample, error) {
	aggregation, pick, err := resolveAggregation(query.Aggregation)
	if err != nil {
		return nil, err
	}

	end := time.Now().UTC()
	start := end.Add(-query.Window)

	resp, err := r.api.QueryResource(ctx, target.ID, &azquery.MetricsClientQueryResourceOptions{
		MetricNames: to.Ptr(query.Metric),
		Aggregation: []*azquery.AggregationType{to.Ptr(aggregation)},
		Timespan:    to.Ptr(azquery.NewTimeInterval(start, end)),
		Interval:    to.Ptr(query.Interval),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query metric %s for %s: %w", query.Metric, target.Name, err)
	}

	var samples []domain.MetricSample
	for _, metric := range resp.Value {
		if metric == nil {
			continue
		}
		for _, series := range metric.TimeSeries {
			if series == nil {
				continue
			}
			for _, point := range series.Data {
				if point == nil || point.TimeStamp == nil {
					continue
				}
				value := pick(point)
				if value == nil {
					continue
				}
				samples = append(samples, domain.MetricSample{
					Resource:    target,
					Metric:      query.Metric,
					Aggregation: query.Aggregation,
					Timestamp:   *point.TimeStamp,
					Value:       *value,
				})
			}
		}
	}

	return samples, nil
}

func resolveAggregation(name string) (azquery.AggregationType, func(*azquery.MetricValue) *float64, error) {
	switch name {
	case "Average", "":
		return azquery.AggregationTypeAverage, func(v *azquery.MetricValue) *float64 { return v.Average }, nil
	case "Maximum":
		return azquery.AggregationTypeMaximum, func(v *azquery.MetricValue) *float64 { return v.Maximum }, nil
	case "Minimum":
		return azquery.AggregationTypeMinimum, func(v *azquery.MetricValue) *float64 { return v.Minimum }, nil
	case "Total":
		return azquery.AggregationTypeTotal, func(v *azquery.MetricValue) *float64 { return v.Total }, nil
	case "Count":
		return azquery.AggregationTypeCount, func(v *azquery.MetricValue) *float64 { return v.Count }, nil
	default:
		return "", nil, fmt.Errorf("unsupported aggregation %q", name)
	}
}
