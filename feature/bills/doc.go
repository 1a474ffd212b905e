// Package bills wires the bill reconciliation feature: the workbook reader
// and ledger gateway adapters, the sync runner that drives a full run, and
// the HTTP surface exposing the latest report and a run trigger.
package bills
