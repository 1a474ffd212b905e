package workbook

import (
	"errors"
	"fmt"
	"strings"

	"bill-reconciler/core/money"
	"bill-reconciler/core/reconcile"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Column headers the workbook must carry. Matching is exact after trimming.
const (
	ColParentID = "Parent ID"
	ColChildID  = "Child ID"
	ColSupplier = "Supplier"
	ColComments = "Comments"
	ColAmount   = "Invoice Amount"
	ColBankDate = "Bank Date"
	ColAccount  = "Tier 2 - Chart of Account"
)

var requiredColumns = []string{
	ColParentID, ColChildID, ColSupplier, ColComments, ColAmount, ColBankDate, ColAccount,
}

// ErrEmptyWorkbook is returned when the workbook has no rows at all.
var ErrEmptyWorkbook = errors.New("workbook is empty")

// MissingColumnError reports a required header column absent from the
// workbook. It is fatal to the whole read.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column in workbook: %q", e.Column)
}

// Reader loads bill records from a spreadsheet export.
type Reader struct {
	logger *zap.Logger
}

// NewReader creates a workbook reader.
func NewReader(logger *zap.Logger) *Reader {
	return &Reader{logger: logger}
}

// Read parses the first sheet of the workbook at path into bill records.
//
// The header row is mapped by column name; all required columns must be
// present. Rows with no data in any cell are skipped, as are rows whose
// derived record id is empty. Rows that fail conversion are logged and
// skipped so one bad row never aborts the read.
func (r *Reader) Read(path string) ([]reconcile.BillRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}

	header := make(map[string]int, len(rows[0]))
	for idx, name := range rows[0] {
		header[strings.TrimSpace(name)] = idx
	}
	for _, col := range requiredColumns {
		if _, ok := header[col]; !ok {
			return nil, &MissingColumnError{Column: col}
		}
	}

	var bills []reconcile.BillRecord
	for i, row := range rows[1:] {
		if rowIsEmpty(row) {
			continue
		}

		rec, err := r.parseRow(row, header)
		if err != nil {
			r.logger.Warn("Skipping workbook row",
				zap.Int("row", i+2), // 1-based, after the header
				zap.Error(err),
			)
			continue
		}
		if rec == nil {
			// No usable record id on this row.
			continue
		}

		bills = append(bills, *rec)
	}

	r.logger.Info("Loaded workbook records",
		zap.String("path", path),
		zap.Int("count", len(bills)),
	)
	return bills, nil
}

// parseRow converts one data row. A nil record with nil error means the row
// carries no record id and is skipped silently.
func (r *Reader) parseRow(row []string, header map[string]int) (*reconcile.BillRecord, error) {
	parentID := cell(row, header, ColParentID)
	childID := cell(row, header, ColChildID)

	// The line identifier wins as the reconciliation key.
	id := childID
	if id == "" {
		id = parentID
	}
	if id == "" {
		return nil, nil
	}

	amount, err := money.Parse(cell(row, header, ColAmount))
	if err != nil {
		return nil, err
	}

	memo := cell(row, header, ColComments)

	return &reconcile.BillRecord{
		ID:       id,
		Supplier: cell(row, header, ColSupplier),
		Date:     cell(row, header, ColBankDate),
		Account:  cell(row, header, ColAccount),
		Amount:   amount,
		Memo:     memo,
		LineMemo: memo,
		Source:   reconcile.SourceWorkbook,
	}, nil
}

// cell returns the trimmed value at the named column, tolerating short rows
// (excelize drops trailing empty cells).
func cell(row []string, header map[string]int, col string) string {
	idx := header[col]
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func rowIsEmpty(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
