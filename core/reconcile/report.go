package reconcile

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultReportPath is where the comparison report lands when no path is given.
const DefaultReportPath = "comparison_report.json"

// Status signals whether a run completed or failed.
// Automation consuming the report should treat it as the authoritative signal.
type Status string

const (
	// StatusOK means the run completed and the buckets carry the results.
	StatusOK Status = "ok"
	// StatusError means a phase failed; Error carries the message and the
	// buckets are empty.
	StatusError Status = "error"
)

// Summary carries aggregate bucket counts.
type Summary struct {
	// TotalWorkbookOnly counts records present only in the workbook.
	TotalWorkbookOnly int `json:"total_workbook_only"`

	// TotalLedgerOnly counts records present only in the ledger.
	TotalLedgerOnly int `json:"total_ledger_only"`

	// TotalConflicts counts record pairs with field mismatches.
	TotalConflicts int `json:"total_conflicts"`

	// TotalMatched counts record pairs with no mismatches.
	TotalMatched int `json:"total_matched"`
}

// Report is the full comparison output for one reconciliation run.
//
// Bucket records are held by pointer so the write-back loop can flip
// AddedToLedger in place before the report is serialized. The report is not
// mutated after serialization.
type Report struct {
	// Status is "ok" or "error".
	Status Status `json:"status"`

	// Error carries the run-level failure message when Status is "error".
	Error string `json:"error,omitempty"`

	// WorkbookOnly lists records present only in the workbook.
	WorkbookOnly []*BillRecord `json:"workbook_only"`

	// LedgerOnly lists records present only in the ledger.
	LedgerOnly []*BillRecord `json:"ledger_only"`

	// Conflicts lists record pairs that violated at least one field rule.
	Conflicts []Conflict `json:"conflicts"`

	// Matched lists one representative (the workbook side) per clean pair.
	Matched []*BillRecord `json:"matched"`

	// Warnings carries non-fatal findings such as duplicate-id collisions.
	Warnings []string `json:"warnings,omitempty"`

	// Summary holds the bucket counts.
	Summary Summary `json:"summary"`
}

// NewReport returns an empty ok-status report with initialized buckets,
// so serialized output carries arrays rather than nulls.
func NewReport() *Report {
	return &Report{
		Status:       StatusOK,
		WorkbookOnly: []*BillRecord{},
		LedgerOnly:   []*BillRecord{},
		Conflicts:    []Conflict{},
		Matched:      []*BillRecord{},
	}
}

// ErrorReport builds the report written when a run phase fails.
func ErrorReport(err error) *Report {
	r := NewReport()
	r.Status = StatusError
	r.Error = err.Error()
	return r
}

// Recount refreshes the summary from the current bucket lengths.
func (r *Report) Recount() {
	r.Summary = Summary{
		TotalWorkbookOnly: len(r.WorkbookOnly),
		TotalLedgerOnly:   len(r.LedgerOnly),
		TotalConflicts:    len(r.Conflicts),
		TotalMatched:      len(r.Matched),
	}
}

// JSON serializes the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}
	return data, nil
}

// WriteFile serializes the report and writes it to path.
// An empty path falls back to DefaultReportPath.
func (r *Report) WriteFile(path string) error {
	if path == "" {
		path = DefaultReportPath
	}

	data, err := r.JSON()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

// ParseReport decodes a serialized report.
func ParseReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &r, nil
}
