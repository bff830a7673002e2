package utils

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// ReconcileFunc checks stored certificates against the database and reports
// whether everything matched.
type ReconcileFunc func(ctx context.Context) (clean bool, err error)

// InitializeReconcileScheduler runs reconcile on the given cron schedule.
// The caller stops the returned scheduler on shutdown.
func InitializeReconcileScheduler(schedule string, reconcile ReconcileFunc) (*cron.Cron, error) {
	log.Println("[RECONCILE-SCHEDULER] Initializing certificate reconciliation scheduler...")

	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		log.Println("[RECONCILE-SCHEDULER] Running certificate reconciliation...")
		clean, err := reconcile(context.Background())
		if err != nil {
			log.Printf("[RECONCILE-SCHEDULER] Reconciliation failed: %v", err)
			return
		}
		if !clean {
			log.Println("[RECONCILE-SCHEDULER] Inconsistencies found; run scripts/reconcile for details")
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("[RECONCILE-SCHEDULER] Scheduler started - runs at %q", schedule)
	return c, nil
}
