package bills

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"bill-reconciler/core/reconcile"
	"bill-reconciler/feature/bills/sync"

	"go.uber.org/zap"
)

// ErrNoReport is returned when no report has been produced yet.
var ErrNoReport = errors.New("no comparison report available")

// ErrRunInProgress is returned when a reconciliation run is already running.
var ErrRunInProgress = errors.New("a reconciliation run is already in progress")

// Service exposes reconciliation runs and report access to the HTTP layer.
type Service struct {
	runner     *sync.Runner
	reportPath string
	logger     *zap.Logger
	running    atomic.Bool
}

// NewService creates a bills service.
func NewService(runner *sync.Runner, reportPath string, logger *zap.Logger) *Service {
	if reportPath == "" {
		reportPath = reconcile.DefaultReportPath
	}
	return &Service{
		runner:     runner,
		reportPath: reportPath,
		logger:     logger,
	}
}

// LatestReport loads the most recently written comparison report.
func (s *Service) LatestReport() (*reconcile.Report, error) {
	data, err := os.ReadFile(s.reportPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoReport
		}
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return reconcile.ParseReport(data)
}

// TriggerRun starts a reconciliation run. Runs are serialized: at most one
// runs at a time, and a second trigger gets ErrRunInProgress.
func (s *Service) TriggerRun(ctx context.Context) (*reconcile.Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	return s.runner.Run(ctx)
}
