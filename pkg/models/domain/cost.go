package domain

import "time"

// CostLine is the spend attributed to one service or resource bucket.
type CostLine struct {
	Name   string
	Amount float64
	Region string
}

// CostReport summarizes subscription spend over a period.
type CostReport struct {
	Service  string
	Start    time.Time
	End      time.Time
	Lines    []CostLine
	Total    float64
	Currency string
}
