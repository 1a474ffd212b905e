package ledger

import (
	"context"
	"fmt"
	"strings"

	"bill-reconciler/core/money"
	"bill-reconciler/core/reconcile"

	"go.uber.org/zap"
)

// Gateway reads and writes bills in the accounting ledger through a
// RequestProcessor. Every exchange holds its own connection and session.
type Gateway struct {
	proc    RequestProcessor
	appName string
	logger  *zap.Logger
}

// NewGateway creates a ledger gateway.
func NewGateway(proc RequestProcessor, appName string, logger *zap.Logger) *Gateway {
	return &Gateway{proc: proc, appName: appName, logger: logger}
}

// FetchBills returns every bill in the ledger as bill records, expanding each
// bill into one parent record plus one record per expense line. The line id
// takes precedence as the reconciliation key on line records.
//
// Any transport failure or non-success status aborts the fetch; a failed
// fetch is a run-level error for the caller.
func (g *Gateway) FetchBills(ctx context.Context) ([]reconcile.BillRecord, error) {
	payload, err := marshalRequest(request{
		MsgsRq: msgsRq{
			OnError:   "stopOnError",
			BillQuery: &billQueryRq{IncludeLineItems: true},
		},
	})
	if err != nil {
		return nil, err
	}

	rs, err := g.send(ctx, payload)
	if err != nil {
		return nil, err
	}
	if rs.MsgsRs.BillQuery == nil {
		return nil, fmt.Errorf("ledger response missing bill query result")
	}

	var bills []reconcile.BillRecord
	for _, ret := range rs.MsgsRs.BillQuery.Bills {
		amount, err := money.Parse(ret.AmountDue)
		if err != nil {
			return nil, fmt.Errorf("bill %s: %w", ret.TxnID, err)
		}

		bills = append(bills, reconcile.BillRecord{
			ID:       ret.TxnID,
			Supplier: ret.VendorRef.FullName,
			Date:     ret.TxnDate,
			Amount:   amount,
			Memo:     ret.Memo,
			Source:   reconcile.SourceLedger,
		})

		for _, line := range ret.ExpenseLines {
			lineAmount, err := money.Parse(line.Amount)
			if err != nil {
				return nil, fmt.Errorf("bill %s line %s: %w", ret.TxnID, line.TxnLineID, err)
			}

			bills = append(bills, reconcile.BillRecord{
				ID:       line.TxnLineID,
				Supplier: ret.VendorRef.FullName,
				Date:     ret.TxnDate,
				Account:  line.AccountRef.FullName,
				Amount:   lineAmount,
				Memo:     ret.Memo,
				LineMemo: line.Memo,
				Source:   reconcile.SourceLedger,
			})
		}
	}

	g.logger.Info("Fetched ledger bills", zap.Int("count", len(bills)))
	return bills, nil
}

// AddBill attempts to create the bill in the ledger.
//
// Validation failures (missing supplier, non-positive amount) are routine:
// they are logged, the record stays unmarked, and no error is returned.
// Transport failures are logged with the attempted payload for diagnosis and
// returned to the caller; the record stays unmarked either way. On success
// the record's AddedToLedger flag is set in place.
func (g *Gateway) AddBill(ctx context.Context, rec *reconcile.BillRecord) error {
	if rec.Supplier == "" {
		g.logger.Warn("Skipping bill write-back: missing supplier",
			zap.String("record_id", rec.ID))
		return nil
	}
	if !rec.Amount.Positive() {
		g.logger.Warn("Skipping bill write-back: amount not positive",
			zap.String("record_id", rec.ID),
			zap.String("amount", rec.Amount.Norm()))
		return nil
	}

	add := billAdd{
		VendorRef: nameRef{FullName: rec.Supplier},
		TxnDate:   txnDate(rec.Date),
		Memo:      rec.Memo,
	}
	// An expense line is only meaningful when the record carries an account.
	if rec.Account != "" {
		add.ExpenseLines = []expenseLineAdd{{
			AccountRef: nameRef{FullName: rec.Account},
			Amount:     rec.Amount.Norm(),
			Memo:       rec.LineMemo,
		}}
	}

	payload, err := marshalRequest(request{
		MsgsRq: msgsRq{
			OnError: "stopOnError",
			BillAdd: &billAddRq{BillAdd: add},
		},
	})
	if err != nil {
		return err
	}

	if _, err := g.send(ctx, payload); err != nil {
		g.logger.Error("Failed to add bill to ledger",
			zap.String("record_id", rec.ID),
			zap.String("payload", payload),
			zap.Error(err),
		)
		return err
	}

	rec.AddedToLedger = true
	g.logger.Info("Added bill to ledger", zap.String("record_id", rec.ID))
	return nil
}

// send runs one full session exchange: open connection, begin session,
// process the payload, end session, close connection.
func (g *Gateway) send(ctx context.Context, payload string) (*response, error) {
	if err := g.proc.OpenConnection(ctx, g.appName); err != nil {
		return nil, fmt.Errorf("open connection: %w", err)
	}
	defer func() {
		if err := g.proc.CloseConnection(ctx); err != nil {
			g.logger.Warn("Failed to close ledger connection", zap.Error(err))
		}
	}()

	ticket, err := g.proc.BeginSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	defer func() {
		if err := g.proc.EndSession(ctx, ticket); err != nil {
			g.logger.Warn("Failed to end ledger session", zap.Error(err))
		}
	}()

	raw, err := g.proc.ProcessRequest(ctx, ticket, payload)
	if err != nil {
		return nil, fmt.Errorf("process request: %w", err)
	}

	return parseResponse(raw)
}

// txnDate reduces a source date to the bare date token the ledger accepts,
// dropping any time-of-day suffix.
func txnDate(date string) string {
	fields := strings.Fields(date)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
