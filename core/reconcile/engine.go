package reconcile

import (
	"fmt"
	"sort"
)

// Compare reconciles the workbook and ledger record lists.
//
// Both lists are indexed by record id, the union of ids is walked in sorted
// order, and every id is classified as workbook-only, ledger-only, or present
// on both sides. Pairs present on both sides run the field rules; a pair that
// violates at least one rule produces a Conflict carrying every violated rule
// label, otherwise it lands in the matched bucket. The full report is
// materialized before return.
func Compare(workbook, ledger []BillRecord) *Report {
	wbIndex, wbWarnings := buildIndex(workbook, SourceWorkbook)
	lgIndex, lgWarnings := buildIndex(ledger, SourceLedger)

	report := NewReport()
	report.Warnings = append(report.Warnings, wbWarnings...)
	report.Warnings = append(report.Warnings, lgWarnings...)

	for _, id := range unionKeys(wbIndex, lgIndex) {
		wb, inWorkbook := wbIndex[id]
		lg, inLedger := lgIndex[id]

		switch {
		case inWorkbook && !inLedger:
			report.WorkbookOnly = append(report.WorkbookOnly, wb)

		case inLedger && !inWorkbook:
			report.LedgerOnly = append(report.LedgerOnly, lg)

		default:
			reasons := compareFields(*wb, *lg)
			if len(reasons) > 0 {
				report.Conflicts = append(report.Conflicts, Conflict{
					ID:            id,
					WorkbookValue: wb.String(),
					LedgerValue:   lg.String(),
					Reasons:       reasons,
				})
			} else {
				report.Matched = append(report.Matched, wb)
			}
		}
	}

	report.Recount()
	return report
}

// buildIndex maps records by id. On duplicate ids within one source the later
// record overwrites the earlier one (last wins) and a warning is recorded, so
// the collision is visible in the report instead of silently dropped.
func buildIndex(records []BillRecord, source Source) (map[string]*BillRecord, []string) {
	index := make(map[string]*BillRecord, len(records))
	var warnings []string

	for i := range records {
		rec := records[i]
		if _, exists := index[rec.ID]; exists {
			warnings = append(warnings, fmt.Sprintf(
				"duplicate record id %q in %s source: keeping last occurrence", rec.ID, source))
		}
		index[rec.ID] = &rec
	}

	return index, warnings
}

// unionKeys returns the sorted union of ids from both indices.
// Sorting keeps report output deterministic across runs.
func unionKeys(wbIndex, lgIndex map[string]*BillRecord) []string {
	union := make(map[string]struct{}, len(wbIndex)+len(lgIndex))
	for id := range wbIndex {
		union[id] = struct{}{}
	}
	for id := range lgIndex {
		union[id] = struct{}{}
	}

	keys := make([]string, 0, len(union))
	for id := range union {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}

// compareFields evaluates every field rule independently and collects all
// violated rule labels; rules are never short-circuited.
//
// The memo rules dispatch on the record kind pair: parent memos are compared
// only between two parent records, line memos only between two line records.
// A mixed parent/line pair under the same id gets no memo-family label at all.
func compareFields(wb, lg BillRecord) []string {
	var reasons []string

	wbKind, lgKind := wb.Kind(), lg.Kind()

	if wbKind == KindParent && lgKind == KindParent && wb.Memo != lg.Memo {
		reasons = append(reasons, ReasonMemo)
	}
	if wbKind == KindLine && lgKind == KindLine && wb.LineMemo != lg.LineMemo {
		reasons = append(reasons, ReasonLineMemo)
	}
	if wb.Supplier != lg.Supplier {
		reasons = append(reasons, ReasonSupplier)
	}
	if !wb.Amount.Equal(lg.Amount) {
		reasons = append(reasons, ReasonAmount)
	}
	if wb.Account != lg.Account {
		reasons = append(reasons, ReasonAccount)
	}

	return reasons
}
