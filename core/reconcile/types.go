package reconcile

import (
	"fmt"

	"bill-reconciler/core/money"
)

// Source identifies which system produced a record.
type Source string

const (
	// SourceWorkbook marks records read from the spreadsheet export.
	SourceWorkbook Source = "workbook"
	// SourceLedger marks records fetched from the accounting ledger.
	SourceLedger Source = "ledger"
)

// Kind distinguishes parent bill headers from line items within a bill.
type Kind string

const (
	// KindParent is a bill header without line-item granularity.
	KindParent Kind = "parent"
	// KindLine is a line item within a parent bill, carrying its own memo.
	KindLine Kind = "line"
)

// BillRecord is a single comparable unit from either source.
//
// ID is the reconciliation key: the line-item identifier when the record is a
// line item, otherwise the parent bill identifier. A childless parent keys on
// its own id, so parent and line records never collide when a parent has lines.
type BillRecord struct {
	// ID is the reconciliation key.
	ID string `json:"id"`

	// Supplier is the vendor name.
	Supplier string `json:"supplier"`

	// Date is the transaction date as provided by the source.
	Date string `json:"date"`

	// Account is the chart-of-accounts category.
	Account string `json:"account"`

	// Amount is the invoice amount, compared in normalized two-decimal form.
	Amount money.Amount `json:"amount"`

	// Memo is the parent-level note.
	Memo string `json:"memo"`

	// LineMemo is the line-level note; empty on parent-only records.
	LineMemo string `json:"line_memo"`

	// Source is the system the record came from.
	Source Source `json:"source"`

	// AddedToLedger is set after a successful write-back.
	// It is not part of record identity or equality.
	AddedToLedger bool `json:"added_to_ledger"`
}

// Kind returns the record variant. A record with no line memo is a parent
// header; one carrying a line memo is a line item. The comparison rules
// dispatch on the kind pair rather than checking field emptiness inline.
func (r BillRecord) Kind() Kind {
	if r.LineMemo == "" {
		return KindParent
	}
	return KindLine
}

// String renders a short descriptor used in conflict entries.
func (r BillRecord) String() string {
	return fmt.Sprintf("%s %s %s (%s)", r.ID, r.Supplier, r.Amount.Norm(), r.Source)
}

// Mismatch reason labels emitted by Compare.
const (
	ReasonMemo     = "Memo mismatch"
	ReasonLineMemo = "LineMemo mismatch"
	ReasonSupplier = "Supplier/Vendor mismatch"
	ReasonAmount   = "Amount mismatch"
	ReasonAccount  = "ChartAccount mismatch"
)

// Conflict records a field-level disagreement between the two sources for a
// record id present on both sides.
type Conflict struct {
	// ID is the reconciliation key the two records share.
	ID string `json:"id"`

	// WorkbookValue is a short descriptor of the workbook-side record.
	WorkbookValue string `json:"workbook_value"`

	// LedgerValue is a short descriptor of the ledger-side record.
	LedgerValue string `json:"ledger_value"`

	// Reasons lists every rule the pair violated, in rule order.
	Reasons []string `json:"reasons"`
}
