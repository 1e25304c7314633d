package domain

// AlertRuleSpec is the desired configuration for a metric alert rule.
// The rule name is derived per resource as Prefix + resource name.
type AlertRuleSpec struct {
	Prefix              string
	MetricName          string
	Threshold           float64
	Severity            int32
	WindowSize          string // ISO 8601 duration, e.g. PT15M
	EvaluationFrequency string // ISO 8601 duration, e.g. PT5M
	ActionGroupID       string
	Description         string
}

// RuleName returns the deterministic alert-rule name for a resource.
func (s AlertRuleSpec) RuleName(resourceName string) string {
	return s.Prefix + resourceName
}
