package sync

import (
	"context"
	"fmt"

	"bill-reconciler/core/reconcile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkbookReader loads bill records from the spreadsheet export.
type WorkbookReader interface {
	Read(path string) ([]reconcile.BillRecord, error)
}

// Ledger is the gateway surface the runner drives.
type Ledger interface {
	FetchBills(ctx context.Context) ([]reconcile.BillRecord, error)
	AddBill(ctx context.Context, rec *reconcile.BillRecord) error
}

// Runner drives one full reconciliation run: read the workbook, fetch the
// ledger, compare, write back workbook-only bills, and persist the report.
type Runner struct {
	workbook WorkbookReader
	ledger   Ledger
	archiver *Archiver
	cfg      Config
	logger   *zap.Logger
}

// NewRunner creates a runner. The archiver may be nil when archiving is off.
func NewRunner(workbook WorkbookReader, ledger Ledger, archiver *Archiver, cfg Config, logger *zap.Logger) *Runner {
	return &Runner{
		workbook: workbook,
		ledger:   ledger,
		archiver: archiver,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run executes one reconciliation run and always writes a report, even when
// a phase fails: phase failures surface as an error-status report, never as a
// returned error. The only error Run returns is a failure to write the report
// itself.
func (r *Runner) Run(ctx context.Context) (*reconcile.Report, error) {
	runID := uuid.NewString()
	log := r.logger.With(zap.String("run_id", runID))

	report := r.build(ctx, log)

	if err := report.WriteFile(r.cfg.ReportPath); err != nil {
		return report, err
	}
	log.Info("Wrote comparison report",
		zap.String("path", r.cfg.ReportPath),
		zap.String("status", string(report.Status)),
	)

	if r.archiver != nil {
		if err := r.archiver.Store(ctx, runID, report); err != nil {
			// Archiving is best effort; the local report already exists.
			log.Warn("Failed to archive report", zap.Error(err))
		} else {
			log.Info("Archived report", zap.String("run_id", runID))
		}
	}

	return report, nil
}

// build runs the read, fetch, compare, and write-back phases.
func (r *Runner) build(ctx context.Context, log *zap.Logger) *reconcile.Report {
	workbookBills, err := r.workbook.Read(r.cfg.WorkbookPath)
	if err != nil {
		log.Error("Workbook read failed", zap.Error(err))
		return reconcile.ErrorReport(fmt.Errorf("workbook read failed: %w", err))
	}
	log.Info("Read workbook", zap.Int("records", len(workbookBills)))

	ledgerBills, err := r.ledger.FetchBills(ctx)
	if err != nil {
		log.Error("Ledger fetch failed", zap.Error(err))
		return reconcile.ErrorReport(fmt.Errorf("ledger fetch failed: %w", err))
	}
	log.Info("Fetched ledger", zap.Int("records", len(ledgerBills)))

	report := reconcile.Compare(workbookBills, ledgerBills)
	log.Info("Comparison complete",
		zap.Int("workbook_only", report.Summary.TotalWorkbookOnly),
		zap.Int("ledger_only", report.Summary.TotalLedgerOnly),
		zap.Int("conflicts", report.Summary.TotalConflicts),
		zap.Int("matched", report.Summary.TotalMatched),
	)

	if r.cfg.DryRun {
		log.Info("Dry run: skipping write-backs",
			zap.Int("pending", len(report.WorkbookOnly)))
		return report
	}

	// Write-backs are sequential and independent: one record's failure never
	// blocks or rolls back the others.
	for _, rec := range report.WorkbookOnly {
		if err := r.ledger.AddBill(ctx, rec); err != nil {
			log.Warn("Bill write-back failed",
				zap.String("record_id", rec.ID),
				zap.Error(err),
			)
		}
	}

	return report
}
