package domain

import "fmt"

// DiagnosticCode identifies a class of recoverable data-quality finding.
type DiagnosticCode string

const (
	DiagUnrecognizedFilename DiagnosticCode = "unrecognized_filename"
	DiagMalformedTimeline    DiagnosticCode = "malformed_timeline"
	DiagMissingIdentity      DiagnosticCode = "missing_identity"
	DiagInvalidFollowUpDate  DiagnosticCode = "invalid_followup_date"
	DiagDroppedTimelineEntry DiagnosticCode = "dropped_timeline_entry"
	DiagAgentMetricsFailed   DiagnosticCode = "agent_metrics_failed"
)

// Diagnostic is one non-fatal finding surfaced alongside a result, so
// callers can assert on degraded-data conditions instead of only on
// final numbers.
type Diagnostic struct {
	Code    DiagnosticCode `json:"code"`
	Subject string         `json:"subject"` // filename, agent or client id
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s]: %s", d.Code, d.Subject, d.Message)
}

// Diagnostics accumulates findings during a pipeline stage.
type Diagnostics []Diagnostic

// Add appends one finding.
func (ds *Diagnostics) Add(code DiagnosticCode, subject, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Code:    code,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	})
}

// ByCode returns the findings carrying the given code.
func (ds Diagnostics) ByCode(code DiagnosticCode) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
