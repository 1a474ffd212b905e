package reconcile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bill-reconciler/core/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_JSONRoundTrip(t *testing.T) {
	workbook := []BillRecord{
		wbRecord("1"),
		wbRecord("2", func(r *BillRecord) { r.Amount = money.MustParse("$1,250.00") }),
		wbRecord("3", func(r *BillRecord) { r.Supplier = "Someone Else" }),
	}
	ledger := []BillRecord{lgRecord("3"), lgRecord("4"), lgRecord("5")}

	report := Compare(workbook, ledger)

	data, err := report.JSON()
	require.NoError(t, err)

	parsed, err := ParseReport(data)
	require.NoError(t, err)

	// Summary survives and still matches the bucket lengths.
	assert.Equal(t, report.Summary, parsed.Summary)
	assert.Equal(t, parsed.Summary.TotalWorkbookOnly, len(parsed.WorkbookOnly))
	assert.Equal(t, parsed.Summary.TotalLedgerOnly, len(parsed.LedgerOnly))
	assert.Equal(t, parsed.Summary.TotalConflicts, len(parsed.Conflicts))
	assert.Equal(t, parsed.Summary.TotalMatched, len(parsed.Matched))
	assert.Equal(t, StatusOK, parsed.Status)

	// Amounts come back in normalized form.
	assert.Equal(t, "1250.00", parsed.WorkbookOnly[1].Amount.Norm())
}

func TestReport_WriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	report := Compare([]BillRecord{wbRecord("1")}, nil)
	report.WorkbookOnly[0].AddedToLedger = true

	require.NoError(t, report.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	parsed, err := ParseReport(data)
	require.NoError(t, err)

	// In-place write-back mutation is visible in the serialized report.
	require.Len(t, parsed.WorkbookOnly, 1)
	assert.True(t, parsed.WorkbookOnly[0].AddedToLedger)
}

func TestReport_WriteFileBadPath(t *testing.T) {
	report := NewReport()
	err := report.WriteFile(filepath.Join("no", "such", "dir", "report.json"))
	assert.Error(t, err)
}

func TestErrorReport(t *testing.T) {
	report := ErrorReport(errors.New("ledger fetch failed"))

	assert.Equal(t, StatusError, report.Status)
	assert.Equal(t, "ledger fetch failed", report.Error)
	assert.Empty(t, report.WorkbookOnly)
	assert.Empty(t, report.LedgerOnly)
	assert.Empty(t, report.Conflicts)

	data, err := report.JSON()
	require.NoError(t, err)

	parsed, err := ParseReport(data)
	require.NoError(t, err)
	assert.Equal(t, StatusError, parsed.Status)
	assert.Equal(t, "ledger fetch failed", parsed.Error)
}
