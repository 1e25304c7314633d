package domain

import "time"

// DeletionEvent is one delete operation found in the activity log.
type DeletionEvent struct {
	Time      time.Time
	Caller    string
	Operation string
	Resource  string
}

// DeletionAudit is the result of one deletion-rate check.
type DeletionAudit struct {
	Window           time.Duration
	Deleted          int
	Total            int
	ThresholdPercent float64
	Breached         bool
	Events           []DeletionEvent
}
