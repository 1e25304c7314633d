package domain

import "time"

// MetricSample is one aggregated data point for a resource metric.
type MetricSample struct {
	Resource    ResourceDescriptor
	Metric      string
	Aggregation string
	Timestamp   time.Time
	Value       float64
}

// SigninEvent is one login record pulled from the log workspace.
type SigninEvent struct {
	Time    time.Time
	User    string
	App     string
	IP      string
	Status  string
	Detail  string
}
