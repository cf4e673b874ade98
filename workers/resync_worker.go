// workers/resync_worker.go
package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"game-catalog-sync/services"

	"github.com/go-co-op/gocron/v2"
)

// ExternalIDLister lists every Steam app id already linked to a local game.
type ExternalIDLister interface {
	ListExternalIDs(ctx context.Context) ([]int, error)
}

// BatchSyncer is satisfied by *services.SyncService.
type BatchSyncer interface {
	SyncMany(ctx context.Context, externalIDs []int) []services.BatchResult
}

// ResyncWorker periodically refreshes every linked game from the storefront.
type ResyncWorker struct {
	store    ExternalIDLister
	syncer   BatchSyncer
	interval time.Duration
}

func NewResyncWorker(store ExternalIDLister, syncer BatchSyncer, interval time.Duration) *ResyncWorker {
	return &ResyncWorker{store: store, syncer: syncer, interval: interval}
}

// Start schedules the refresh job and stops the scheduler when ctx is done.
// A zero interval disables the worker.
func (w *ResyncWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		log.Println("⏹️ [RESYNC] Interval is 0, periodic re-sync disabled")
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create resync scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			if _, err := w.RunOnce(ctx); err != nil {
				log.Printf("❌ [RESYNC] Run failed: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule resync job: %w", err)
	}

	sched.Start()
	log.Printf("🔁 [RESYNC] Re-syncing linked games every %s", w.interval)

	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Printf("⚠️ [RESYNC] Scheduler shutdown: %v", err)
		}
		log.Println("⏹️ [RESYNC] Worker stopped")
	}()
	return nil
}

// RunOnce re-syncs every linked game and returns the per-item results.
func (w *ResyncWorker) RunOnce(ctx context.Context) ([]services.BatchResult, error) {
	ids, err := w.store.ListExternalIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		log.Println("✅ [RESYNC] No linked games to refresh")
		return nil, nil
	}

	results := w.syncer.SyncMany(ctx, ids)

	failed := 0
	for _, r := range results {
		if !r.Succeeded() {
			failed++
		}
	}
	log.Printf("✅ [RESYNC] Refreshed %d game(s), %d failure(s)", len(results)-failed, failed)
	return results, nil
}
