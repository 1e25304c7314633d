package api

import "time"

type Resource struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	ResourceGroup string            `json:"resource_group"`
	Location      string            `json:"location"`
	Type          string            `json:"type"`
	Tags          map[string]string `json:"tags,omitempty"`
}

type Outcome struct {
	Target string `json:"target"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type RunSummary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run"`
	Created    int       `json:"created"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Outcomes   []Outcome `json:"outcomes"`
}

type ReconcileRequest struct {
	ResourceGroup string `json:"resource_group,omitempty"`
	DryRun        bool   `json:"dry_run,omitempty"`
}
