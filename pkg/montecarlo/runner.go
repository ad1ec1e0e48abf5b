package montecarlo

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Ferrari1996gk/exchange-lob/params"
	"github.com/Ferrari1996gk/exchange-lob/pkg/sim"
	"github.com/Ferrari1996gk/exchange-lob/pkg/storage"
)

// BatchResult aggregates the outcome of one batch execution.
type BatchResult struct {
	Completed int
	Skipped   int
	Failed    int
	Summaries []sim.Summary
}

// Runner executes a batch of independent runs on a bounded worker pool.
// Completed runs are skipped on re-execution, and a run that panics is
// marked FAILED without taking the batch down.
type Runner struct {
	sim   params.SimParams
	store *storage.RunStore
	log   *zap.SugaredLogger
	feed  sim.Feed // attached to run 0 only
}

func NewRunner(simParams params.SimParams, store *storage.RunStore, logger *zap.SugaredLogger, feed sim.Feed) *Runner {
	return &Runner{sim: simParams, store: store, log: logger, feed: feed}
}

func (r *Runner) workers(nRuns int) int {
	n := r.sim.NThreads
	if nRuns < n {
		n = nRuns
	}
	if p := runtime.GOMAXPROCS(0); p < n {
		n = p
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (r *Runner) RunBatch(runs []params.RunParams) BatchResult {
	workers := r.workers(len(runs))
	r.log.Infow("batch_started", "runs", len(runs), "workers", workers)

	jobs := make(chan params.RunParams)
	var mu sync.Mutex
	var result BatchResult

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for run := range jobs {
				outcome := r.execute(run)
				mu.Lock()
				switch outcome.status {
				case storage.StatusOK:
					result.Completed++
					result.Summaries = append(result.Summaries, outcome.summary)
				case storage.StatusFailed:
					result.Failed++
				default:
					result.Skipped++
				}
				mu.Unlock()
			}
		}()
	}

	for _, run := range runs {
		jobs <- run
	}
	close(jobs)
	wg.Wait()

	r.log.Infow("batch_complete",
		"completed", result.Completed,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result
}

type runOutcome struct {
	status  string
	summary sim.Summary
}

func (r *Runner) execute(run params.RunParams) runOutcome {
	status, err := r.store.Status(run.RunID)
	if err != nil {
		r.log.Errorw("run_status_read_failed", "run_id", run.RunID, "err", err)
	}
	if status == storage.StatusOK {
		r.log.Infow("run_skipped", "run_id", run.RunID)
		return runOutcome{status: storage.StatusPending}
	}

	if err := r.store.SetStatus(run.RunID, storage.StatusRunning); err != nil {
		r.log.Errorw("run_status_write_failed", "run_id", run.RunID, "err", err)
	}

	start := time.Now()
	summary, err := r.runIsolated(run)
	if err != nil {
		r.log.Errorw("run_failed", "run_id", run.RunID, "seed", run.Seed, "err", err)
		if serr := r.store.SetStatus(run.RunID, storage.StatusFailed); serr != nil {
			r.log.Errorw("run_status_write_failed", "run_id", run.RunID, "err", serr)
		}
		return runOutcome{status: storage.StatusFailed}
	}

	if err := r.store.SaveSummary(run.RunID, summary); err != nil {
		r.log.Errorw("run_summary_write_failed", "run_id", run.RunID, "err", err)
	}
	if err := r.store.SetStatus(run.RunID, storage.StatusOK); err != nil {
		r.log.Errorw("run_status_write_failed", "run_id", run.RunID, "err", err)
	}

	r.log.Infow("run_done",
		"run_id", run.RunID,
		"seed", run.Seed,
		"elapsed", time.Since(start),
		"num_orders", summary.NumOrders,
		"num_transactions", summary.NumTransactions,
	)
	return runOutcome{status: storage.StatusOK, summary: summary}
}

// runIsolated converts a panicking run (an engine or agent invariant
// breach) into an error scoped to that run.
func (r *Runner) runIsolated(run params.RunParams) (summary sim.Summary, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("run %d aborted: %v", run.RunID, rec)
		}
	}()

	var feed sim.Feed
	if run.RunID == 0 {
		feed = r.feed
	}
	s, err := sim.New(r.sim, run, r.log, feed)
	if err != nil {
		return sim.Summary{}, err
	}
	return s.Run()
}
