package export

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
)

// Reporter renders command results to the console in a formatted text form.
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a console reporter.
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

const summaryTmpl = `
Run finished in {{.Elapsed}}{{if .Summary.DryRun}} (dry-run){{end}}: {{.Created}} created, {{.Skipped}} skipped, {{.Failed}} failed
{{range .Summary.Outcomes}}
- [{{.Status}}] {{.Target.Name}}{{if .Detail}}: {{.Detail}}{{end}}
{{- end}}
`

// Summary prints a reconciliation run summary.
func (r *Reporter) Summary(summary domain.RunSummary) error {
	created, skipped, failed := summary.Counts()
	data := struct {
		Summary domain.RunSummary
		Elapsed string
		Created int
		Skipped int
		Failed  int
	}{
		Summary: summary,
		Elapsed: summary.FinishedAt.Sub(summary.StartedAt).Round(1e6).String(),
		Created: created,
		Skipped: skipped,
		Failed:  failed,
	}
	return r.render("summary", summaryTmpl, data)
}

const resourcesTmpl = `
{{len .}} resource(s)
{{range .}}
- {{.Name}} ({{.ResourceGroup}}, {{.Location}}){{if .Type}} [{{.Type}}]{{end}}
{{- end}}
`

// Resources prints an enumerated resource list.
func (r *Reporter) Resources(resources []domain.ResourceDescriptor) error {
	return r.render("resources", resourcesTmpl, resources)
}

const metricsTmpl = `
{{range .}}
{{.Resource.Name}} {{.Metric}} ({{.Aggregation}}) @ {{.Timestamp.Format "2006-01-02 15:04"}}: {{printf "%.2f" .Value}}
{{- end}}
`

// Metrics prints metric samples.
func (r *Reporter) Metrics(samples []domain.MetricSample) error {
	if len(samples) == 0 {
		_, err := fmt.Fprintln(r.writer, "no samples in the selected window")
		return err
	}
	return r.render("metrics", metricsTmpl, samples)
}

const signinsTmpl = `
{{len .}} sign-in event(s)
{{range .}}
{{.Time.Format "2006-01-02 15:04:05"}} {{.User}} via {{.App}} from {{.IP}} (result {{.Status}}){{if .Detail}}: {{.Detail}}{{end}}
{{- end}}
`

// Signins prints login events.
func (r *Reporter) Signins(events []domain.SigninEvent) error {
	return r.render("signins", signinsTmpl, events)
}

const deletionTmpl = `
Deletion audit over {{.Window}}: {{.Deleted}} deleted of {{.Total}} live resources (threshold {{printf "%.2f" .ThresholdPercent}}%)
Breached: {{.Breached}}
{{range .Events}}
- {{.Time.Format "2006-01-02 15:04"}} {{.Operation}} by {{.Caller}}
{{- end}}
`

// Deletion prints a deletion audit result.
func (r *Reporter) Deletion(result domain.DeletionAudit) error {
	return r.render("deletion", deletionTmpl, result)
}

const costTmpl = `
Spend {{.Start.Format "2006-01-02"}} to {{.End.Format "2006-01-02"}}: {{printf "%.2f" .Total}} {{.Currency}}
{{range .Lines}}
- {{.Name}}: {{printf "%.2f" .Amount}}
{{- end}}
`

// Cost prints a cost report.
func (r *Reporter) Cost(report *domain.CostReport) error {
	return r.render("cost", costTmpl, report)
}

func (r *Reporter) render(name, tmpl string, data any) error {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(r.writer, data)
}
