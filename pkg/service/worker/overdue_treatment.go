package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/utils/errutil"
	"github.com/neonzero/OpenERM/pkg/utils/logging"
)

// OverdueNotifier emits overdue events for one tenant and returns how many treatments were overdue
type OverdueNotifier interface {
	NotifyOverdue(ctx context.Context, tenantID string, now time.Time) (int, error)
}

// TenantLister returns the tenants to check on each cycle
type TenantLister func() []string

// OverdueTreatmentWorker periodically reports treatments that are past due and not verified
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Running several instances emits duplicate overdue events
type OverdueTreatmentWorker struct {
	notifier OverdueNotifier
	tenants  TenantLister
	interval time.Duration
	clock    func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewOverdueTreatmentWorker creates a new worker for checking overdue treatments
func NewOverdueTreatmentWorker(notifier OverdueNotifier, tenants TenantLister, interval time.Duration) *OverdueTreatmentWorker {
	return &OverdueTreatmentWorker{
		notifier: notifier,
		tenants:  tenants,
		interval: interval,
		clock:    time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background check loop
// - The first check runs immediately in the background goroutine
// - Does not block server startup
func (w *OverdueTreatmentWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("overdue check interval must be positive", goerr.V("interval", w.interval.String()))
	}

	logging.Default().Info("Overdue treatment worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *OverdueTreatmentWorker) Stop() {
	w.stopOnce.Do(func() {
		logging.Default().Info("Overdue treatment worker stopping")
		close(w.stopCh)
		<-w.doneCh
		logging.Default().Info("Overdue treatment worker stopped")
	})
}

// run is the main worker loop (runs in goroutine)
func (w *OverdueTreatmentWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.CheckOverdue(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.CheckOverdue(ctx)

		case <-w.stopCh:
			logging.Default().Info("Overdue treatment worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Overdue treatment worker context cancelled")
			return
		}
	}
}

// CheckOverdue runs one cycle over every tenant. A failing tenant is logged and skipped.
func (w *OverdueTreatmentWorker) CheckOverdue(ctx context.Context) int {
	startTime := w.clock()
	total := 0

	for _, tenantID := range w.tenants() {
		count, err := w.notifier.NotifyOverdue(ctx, tenantID, startTime)
		if err != nil {
			_ = errutil.Handle(ctx,
				goerr.Wrap(err, "failed to notify overdue treatments", goerr.V("tenant_id", tenantID)),
				"Overdue treatment check failed (will retry next interval)")
			continue
		}
		total += count
	}

	logging.Default().Info("Overdue treatment check completed",
		"overdue", total,
		"duration", time.Since(startTime).String())

	return total
}
