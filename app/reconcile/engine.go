package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/EthanLeitch/ao3scraper/app/database"
)

// Engine runs the fetch-compare-update loop over every tracked work: bounded
// concurrent fetches, per-item classification, at-least-once persistence and
// a position-ordered outcome report.
type Engine struct {
	fetcher      Fetcher
	workRepo     database.WorkRepository
	workerCount  int
	fetchTimeout time.Duration
	pingTimeout  time.Duration
	opts         Options
}

func NewEngine(fetcher Fetcher, workRepo database.WorkRepository,
	workerCount int, fetchTimeout, pingTimeout time.Duration, opts Options) *Engine {
	if workerCount <= 0 {
		workerCount = 5
	}
	return &Engine{
		fetcher:      fetcher,
		workRepo:     workRepo,
		workerCount:  workerCount,
		fetchTimeout: fetchTimeout,
		pingTimeout:  pingTimeout,
		opts:         opts,
	}
}

// Run reconciles all tracked works. The returned outcomes are always in
// canonical store order and always one per tracked work; a single item's
// failure never aborts the run. The only fatal errors are the up-front
// reachability precondition and a store read failure before any fetch.
func (e *Engine) Run(ctx context.Context) ([]Outcome, error) {
	pingCtx, cancel := context.WithTimeout(ctx, e.pingTimeout)
	defer cancel()
	if err := e.fetcher.Ping(pingCtx); err != nil {
		return nil, err
	}

	works, err := e.workRepo.GetAllWorks()
	if err != nil {
		return nil, fmt.Errorf("failed to read tracked works: %w", err)
	}

	opts := e.opts
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	// Each worker writes only to its own outcome index. The slots are
	// pre-sized, so no lock is needed for this structure.
	outcomes := make([]Outcome, len(works))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < e.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for position := range jobs {
				outcomes[position] = e.reconcileOne(ctx, position, works[position], opts)
			}
		}()
	}

	for position := range works {
		jobs <- position
	}
	close(jobs)
	wg.Wait()

	return outcomes, nil
}

func (e *Engine) reconcileOne(ctx context.Context, position int, old database.Work, opts Options) Outcome {
	fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	snap, fetchErr := e.fetcher.Fetch(fetchCtx, old.ID)

	result := Classify(&old, snap, fetchErr, opts)

	outcome := Outcome{
		Position: position,
		ID:       old.ID,
		URL:      old.URL(),
		Class:    result.Class,
		Delta:    result.Delta,
		Err:      result.Err,
		Cells:    result.Cells,
	}

	if fetchErr != nil {
		// Only the fetch_error field changes; previously fetched fields stay.
		if err := e.workRepo.UpdateWorkFetchError(old.ID, fetchErr.Error()); err != nil {
			slog.Warn("Failed to record fetch error", "id", old.ID, "error", err)
		}
		slog.Debug("Work fetch failed", "id", old.ID, "position", position, "error", fetchErr)
		return outcome
	}

	if result.Class == ClassError {
		// Classification-level failure (bad remote data); nothing is written.
		return outcome
	}

	if err := e.workRepo.UpdateWork(old.ID, snap); err != nil {
		outcome.Class = ClassError
		outcome.Err = fmt.Sprintf("failed to save work: %s", err)
		outcome.Cells = map[string]string{"title": truncate("ERROR: "+outcome.Err, opts.MaxRowLength)}
		return outcome
	}

	outcome.Persisted = true

	slog.Debug("Work reconciled", "id", old.ID, "position", position, "class", string(result.Class), "delta", result.Delta)

	return outcome
}
