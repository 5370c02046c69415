package cron

import (
	"context"
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
)

const JobReconcileInventory = "reconcile_inventory"

type InventoryJobs struct {
	reconciler assetrequest.Reconciler
	interval   time.Duration
	batchSize  int
}

func NewInventoryJobs(reconciler assetrequest.Reconciler, interval time.Duration, batchSize int) *InventoryJobs {
	return &InventoryJobs{
		reconciler: reconciler,
		interval:   interval,
		batchSize:  batchSize,
	}
}

func (j *InventoryJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddJob(Job{
		Name:     JobReconcileInventory,
		Interval: j.interval,
		Fn:       j.ReconcileInventory,
	})
}

// ReconcileInventory settles one batch of requests whose inventory
// adjustment did not reach the asset.
func (j *InventoryJobs) ReconcileInventory(ctx context.Context) error {
	_, err := j.reconciler.ReconcilePending(ctx, j.batchSize)
	return err
}
