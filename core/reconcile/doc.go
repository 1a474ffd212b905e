// Package reconcile implements the comparison engine at the heart of the
// bill reconciler.
//
// Compare takes the workbook and ledger record lists, indexes each by the
// reconciliation key, and classifies every key in the union as
// workbook-only, ledger-only, conflicting, or matched. Field comparison
// follows source-specific equivalence rules: parent memos compare only
// between parent records, line memos only between line records, while
// supplier, amount, and chart account compare unconditionally. Amounts
// compare through their normalized two-decimal string form.
//
// The engine is pure: it holds no state between runs and performs no I/O.
// Report serialization lives alongside it so consumers can round-trip the
// output.
package reconcile
