package llvmir

import (
	"fmt"
)

// Reporter collects non-fatal issues discovered while reading a module.
type Reporter struct {
	reports []Report
}

// Report represents a single diagnostic entry.
type Report struct {
	Phase   ReportPhase
	Pos     Pos
	Message string
}

func (r Report) String() string {
	return fmt.Sprintf("%s: warning: %s [%s]", r.Pos, r.Message, r.Phase)
}

// ReportPhase marks the reading stage where a report was generated.
type ReportPhase int

const (
	_             ReportPhase = iota
	ReportParse               // splitting text into entities
	ReportResolve             // metadata reference resolution
)

func (p ReportPhase) String() string {
	switch p {
	case ReportParse:
		return "parse"
	case ReportResolve:
		return "resolve"
	default:
		return fmt.Sprintf("unknown-phase(%d)", p)
	}
}

// ReporterPhase binds a Reporter to a fixed phase.
type ReporterPhase struct {
	parent *Reporter
	phase  ReportPhase
}

// Phase returns a reporter that sets the given phase for all reports
// produced through it.
func (r *Reporter) Phase(p ReportPhase) *ReporterPhase {
	return &ReporterPhase{parent: r, phase: p}
}

// Report adds a new record to the reporter.
func (r *Reporter) Report(rep Report) {
	r.reports = append(r.reports, rep)
}

// Report records a new issue under the bound phase.
func (rp *ReporterPhase) Report(pos Pos, format string, a ...any) {
	rp.parent.Report(Report{
		Phase:   rp.phase,
		Pos:     pos,
		Message: fmt.Sprintf(format, a...),
	})
}

// Reports returns a snapshot of all collected records. It is safe to call on
// a nil Reporter.
func (r *Reporter) Reports() []Report {
	if r == nil {
		return nil
	}

	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}
