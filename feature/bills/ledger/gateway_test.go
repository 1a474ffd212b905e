package ledger

import (
	"context"
	"errors"
	"testing"

	"bill-reconciler/core/money"
	"bill-reconciler/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProcessor is an in-memory RequestProcessor that records the session
// lifecycle and payloads and returns canned responses.
type fakeProcessor struct {
	response   string
	processErr error
	openErr    error

	opened     bool
	closed     bool
	began      bool
	ended      bool
	payloads   []string
	lastTicket string
}

func (f *fakeProcessor) OpenConnection(ctx context.Context, appName string) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = true
	return nil
}

func (f *fakeProcessor) BeginSession(ctx context.Context) (string, error) {
	f.began = true
	return "ticket-1", nil
}

func (f *fakeProcessor) ProcessRequest(ctx context.Context, ticket, payload string) (string, error) {
	f.lastTicket = ticket
	f.payloads = append(f.payloads, payload)
	if f.processErr != nil {
		return "", f.processErr
	}
	return f.response, nil
}

func (f *fakeProcessor) EndSession(ctx context.Context, ticket string) error {
	f.ended = true
	return nil
}

func (f *fakeProcessor) CloseConnection(ctx context.Context) error {
	f.closed = true
	return nil
}

const billQueryResponse = `<?xml version="1.0"?>
<QBXML>
  <QBXMLMsgsRs>
    <BillQueryRs statusCode="0" statusMessage="Status OK">
      <BillRet>
        <TxnID>BILL-1</TxnID>
        <VendorRef><FullName>Acme &amp; Sons</FullName></VendorRef>
        <TxnDate>2025-09-01</TxnDate>
        <DueDate>2025-09-30</DueDate>
        <AmountDue>1250.00</AmountDue>
        <Memo>office chairs</Memo>
        <ExpenseLineRet>
          <TxnLineID>LINE-1</TxnLineID>
          <AccountRef><FullName>Furniture</FullName></AccountRef>
          <Amount>250.00</Amount>
          <Memo>chair x4</Memo>
        </ExpenseLineRet>
      </BillRet>
    </BillQueryRs>
  </QBXMLMsgsRs>
</QBXML>`

const billAddOKResponse = `<?xml version="1.0"?>
<QBXML>
  <QBXMLMsgsRs>
    <BillAddRs statusCode="0" statusMessage="Status OK"/>
  </QBXMLMsgsRs>
</QBXML>`

const billAddWarningResponse = `<?xml version="1.0"?>
<QBXML>
  <QBXMLMsgsRs>
    <BillAddRs statusCode="1" statusMessage="Created with warning"/>
  </QBXMLMsgsRs>
</QBXML>`

const billAddErrorResponse = `<?xml version="1.0"?>
<QBXML>
  <QBXMLMsgsRs>
    <BillAddRs statusCode="3140" statusMessage="Invalid vendor reference"/>
  </QBXMLMsgsRs>
</QBXML>`

func TestGateway_FetchBills(t *testing.T) {
	proc := &fakeProcessor{response: billQueryResponse}
	g := NewGateway(proc, "bill-reconciler", zap.NewNop())

	bills, err := g.FetchBills(context.Background())
	require.NoError(t, err)
	require.Len(t, bills, 2)

	parent := bills[0]
	assert.Equal(t, "BILL-1", parent.ID)
	assert.Equal(t, "Acme & Sons", parent.Supplier)
	assert.Equal(t, "1250.00", parent.Amount.Norm())
	assert.Equal(t, "office chairs", parent.Memo)
	assert.Empty(t, parent.LineMemo)
	assert.Equal(t, reconcile.KindParent, parent.Kind())
	assert.Equal(t, reconcile.SourceLedger, parent.Source)

	line := bills[1]
	assert.Equal(t, "LINE-1", line.ID)
	assert.Equal(t, "Furniture", line.Account)
	assert.Equal(t, "250.00", line.Amount.Norm())
	assert.Equal(t, "chair x4", line.LineMemo)
	assert.Equal(t, "office chairs", line.Memo)
	assert.Equal(t, reconcile.KindLine, line.Kind())

	// Full session lifecycle ran.
	assert.True(t, proc.opened)
	assert.True(t, proc.began)
	assert.True(t, proc.ended)
	assert.True(t, proc.closed)
	assert.Equal(t, "ticket-1", proc.lastTicket)
}

func TestGateway_FetchBillsTransportError(t *testing.T) {
	proc := &fakeProcessor{processErr: errors.New("connection reset")}
	g := NewGateway(proc, "bill-reconciler", zap.NewNop())

	_, err := g.FetchBills(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	// Session teardown still runs after a transport failure.
	assert.True(t, proc.ended)
	assert.True(t, proc.closed)
}

func TestGateway_FetchBillsStatusError(t *testing.T) {
	proc := &fakeProcessor{response: `<QBXML><QBXMLMsgsRs>
		<BillQueryRs statusCode="500" statusMessage="Internal error"/>
	</QBXMLMsgsRs></QBXML>`}
	g := NewGateway(proc, "bill-reconciler", zap.NewNop())

	_, err := g.FetchBills(context.Background())
	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, 500, status.Code)
	assert.Equal(t, "Internal error", status.Message)
}

func TestGateway_AddBill(t *testing.T) {
	proc := &fakeProcessor{response: billAddOKResponse}
	g := NewGateway(proc, "bill-reconciler", zap.NewNop())

	rec := &reconcile.BillRecord{
		ID:       "P1",
		Supplier: "Smith & Jones <Ltd>",
		Date:     "2025-09-01 00:00:00",
		Account:  "Travel",
		Amount:   money.MustParse("99.50"),
		Memo:     "taxi",
		LineMemo: "airport run",
		Source:   reconcile.SourceWorkbook,
	}

	require.NoError(t, g.AddBill(context.Background(), rec))
	assert.True(t, rec.AddedToLedger)

	require.Len(t, proc.payloads, 1)
	payload := proc.payloads[0]
	// Metacharacters in free text are escaped on the wire.
	assert.Contains(t, payload, "Smith &amp; Jones &lt;Ltd&gt;")
	// Time-of-day suffix is dropped from the transaction date.
	assert.Contains(t, payload, "<TxnDate>2025-09-01</TxnDate>")
	assert.Contains(t, payload, "<ExpenseLineAdd>")
	assert.Contains(t, payload, "<Amount>99.50</Amount>")
}

func TestGateway_AddBillAcceptsWarningStatus(t *testing.T) {
	proc := &fakeProcessor{response: billAddWarningResponse}
	g := NewGateway(proc, "bill-reconciler", zap.NewNop())

	rec := &reconcile.BillRecord{ID: "P1", Supplier: "Acme", Amount: money.MustParse("10")}
	require.NoError(t, g.AddBill(context.Background(), rec))
	assert.True(t, rec.AddedToLedger)
}

func TestGateway_AddBillValidation(t *testing.T) {
	tests := []struct {
		name string
		rec  reconcile.BillRecord
	}{
		{"missing supplier", reconcile.BillRecord{ID: "P1", Amount: money.MustParse("10")}},
		{"zero amount", reconcile.BillRecord{ID: "P2", Supplier: "Acme"}},
		{"negative amount", reconcile.BillRecord{ID: "P3", Supplier: "Acme", Amount: money.MustParse("-5")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{response: billAddOKResponse}
			g := NewGateway(proc, "bill-reconciler", zap.NewNop())

			rec := tt.rec
			// Routine validation failures do not raise and never hit the wire.
			require.NoError(t, g.AddBill(context.Background(), &rec))
			assert.False(t, rec.AddedToLedger)
			assert.Empty(t, proc.payloads)
		})
	}
}

func TestGateway_AddBillStatusError(t *testing.T) {
	proc := &fakeProcessor{response: billAddErrorResponse}
	g := NewGateway(proc, "bill-reconciler", zap.NewNop())

	rec := &reconcile.BillRecord{ID: "P1", Supplier: "Acme", Amount: money.MustParse("10")}
	err := g.AddBill(context.Background(), rec)
	require.Error(t, err)
	assert.False(t, rec.AddedToLedger)

	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, 3140, status.Code)
}

func TestGateway_AddBillSkipsExpenseLineWithoutAccount(t *testing.T) {
	proc := &fakeProcessor{response: billAddOKResponse}
	g := NewGateway(proc, "bill-reconciler", zap.NewNop())

	rec := &reconcile.BillRecord{ID: "P1", Supplier: "Acme", Amount: money.MustParse("10")}
	require.NoError(t, g.AddBill(context.Background(), rec))

	require.Len(t, proc.payloads, 1)
	assert.NotContains(t, proc.payloads[0], "ExpenseLineAdd")
}
