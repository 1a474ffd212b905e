package cmd

import (
	"context"
	"fmt"

	"bill-reconciler/core/config"
	"bill-reconciler/core/logger"
	"bill-reconciler/core/reconcile"
	"bill-reconciler/core/storage"
	"bill-reconciler/feature/bills/ledger"
	billsync "bill-reconciler/feature/bills/sync"
	"bill-reconciler/feature/bills/workbook"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the reconcile command
	workbookPath string
	reportPath   string
	dryRun       bool
)

// reconcileCmd runs one full reconciliation batch.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile bills between the workbook export and the ledger",
	Long: `Reconcile bill records between a spreadsheet export and the accounting ledger.

Reports workbook-only bills, ledger-only bills, and field-level conflicts,
then syncs workbook-only bills into the ledger and writes a JSON report.

Examples:
  # Full run with configured paths
  bill-reconciler reconcile

  # Explicit workbook and report paths
  bill-reconciler reconcile --workbook bills.xlsx --report out.json

  # Compare and report only, no write-backs
  bill-reconciler reconcile --dry-run`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&workbookPath, "workbook", "", "Path to the workbook export (overrides config)")
	reconcileCmd.Flags().StringVar(&reportPath, "report", "", "Path for the comparison report (overrides config)")
	reconcileCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Skip write-backs to the ledger")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	l.Info("Starting bill reconciliation")

	runner, err := buildRunner(cfg, l)
	if err != nil {
		return err
	}

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	printReport(l, report)
	return nil
}

// buildRunner wires the workbook reader, ledger gateway, and optional report
// archiver into a runner, applying command-line flag overrides.
func buildRunner(cfg *config.Config, l *zap.Logger) (*billsync.Runner, error) {
	runCfg := cfg.Run
	if workbookPath != "" {
		runCfg.WorkbookPath = workbookPath
	}
	if reportPath != "" {
		runCfg.ReportPath = reportPath
	}
	if dryRun {
		runCfg.DryRun = true
	}

	gateway := ledger.NewGateway(ledger.NewProcessor(cfg.Ledger), cfg.Ledger.AppName, l)

	var archiver *billsync.Archiver
	if cfg.Archive.Enabled {
		client, err := storage.NewClient(cfg.Archive)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive client: %w", err)
		}
		archiver = billsync.NewArchiver(client, cfg.Archive.Bucket)
	}

	return billsync.NewRunner(workbook.NewReader(l), gateway, archiver, runCfg, l), nil
}

// printReport logs the run outcome using the structured logger.
func printReport(l *zap.Logger, report *reconcile.Report) {
	if report.Status == reconcile.StatusError {
		l.Warn("Run finished with an error report", zap.String("error", report.Error))
		return
	}

	s := report.Summary
	l.Info("Comparison report",
		zap.Int("workbook_only", s.TotalWorkbookOnly),
		zap.Int("ledger_only", s.TotalLedgerOnly),
		zap.Int("conflicts", s.TotalConflicts),
		zap.Int("matched", s.TotalMatched),
	)

	for _, warning := range report.Warnings {
		l.Warn("Reconciliation warning", zap.String("warning", warning))
	}

	added := 0
	for _, rec := range report.WorkbookOnly {
		if rec.AddedToLedger {
			added++
		}
	}
	if len(report.WorkbookOnly) > 0 {
		l.Info("Write-back results",
			zap.Int("added", added),
			zap.Int("pending", len(report.WorkbookOnly)-added),
		)
	}
}
