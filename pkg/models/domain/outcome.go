package domain

import "time"

// ActionStatus is the result category of one reconciliation step.
type ActionStatus string

const (
	StatusCreated ActionStatus = "created"
	StatusSkipped ActionStatus = "skipped"
	StatusFailed  ActionStatus = "failed"
)

// ActionOutcome records what happened to a single resource during a run.
// Exactly one outcome exists per enumerated resource.
type ActionOutcome struct {
	Target ResourceDescriptor
	Status ActionStatus
	Detail string
}

// RunSummary aggregates the outcomes of one reconciliation run.
// Outcomes appear in enumeration order regardless of worker count.
type RunSummary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Outcomes   []ActionOutcome
}

// Counts returns the number of created, skipped and failed outcomes.
func (s RunSummary) Counts() (created, skipped, failed int) {
	for _, o := range s.Outcomes {
		switch o.Status {
		case StatusCreated:
			created++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return created, skipped, failed
}
