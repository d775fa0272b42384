// Package worker runs the retrieval and extraction stages as a continuous
// background loop.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/lead-harvester/internal/logger"
	"github.com/jonesrussell/lead-harvester/internal/pipeline"
)

const (
	// DefaultIdleInterval is the delay between passes when no work was
	// found, so the store and the collection service are not busy-polled.
	DefaultIdleInterval = 30 * time.Second

	// DefaultBusyInterval is the delay between passes while work remains.
	DefaultBusyInterval = 5 * time.Second
)

// Config holds worker loop tuning.
type Config struct {
	IdleInterval time.Duration
	BusyInterval time.Duration
}

// PassResult bundles the stats of one combined retrieval + extraction pass.
type PassResult struct {
	RunID    string                 `json:"run_id"`
	Retrieve *pipeline.Counters     `json:"retrieve"`
	Extract  *pipeline.ExtractStats `json:"extract"`
	Started  time.Time              `json:"started"`
	Finished time.Time              `json:"finished"`
}

// Idle reports whether the pass found nothing to do.
func (r *PassResult) Idle() bool {
	retrieved := r.Retrieve != nil && r.Retrieve.Total > 0
	extracted := r.Extract != nil && r.Extract.Rows.Total > 0
	return !retrieved && !extracted
}

// Worker drives the retrieval and extraction stages in a loop. Each pass
// leaves all state in the store, so stopping between items (or crashing)
// never loses work: the next pass picks up whatever remains unprocessed.
type Worker struct {
	retriever *pipeline.Retriever
	extractor *pipeline.Extractor
	log       logger.Logger

	idleInterval time.Duration
	busyInterval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	started  bool
}

// New creates a new worker.
func New(retriever *pipeline.Retriever, extractor *pipeline.Extractor, cfg Config, log logger.Logger) *Worker {
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = DefaultIdleInterval
	}
	if cfg.BusyInterval <= 0 {
		cfg.BusyInterval = DefaultBusyInterval
	}

	return &Worker{
		retriever:    retriever,
		extractor:    extractor,
		log:          log,
		idleInterval: cfg.IdleInterval,
		busyInterval: cfg.BusyInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.stopChan = make(chan struct{})
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	w.log.Info("Worker started",
		logger.Duration("idle_interval", w.idleInterval),
		logger.Duration("busy_interval", w.busyInterval),
	)
}

// Stop gracefully stops the worker, waiting for the in-flight pass to
// reach a durable state.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()
	w.log.Info("Worker stopped")
}

// IsRunning reports whether the worker loop is active.
func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		result := w.RunOnce(ctx)

		interval := w.busyInterval
		if result.Idle() {
			interval = w.idleInterval
		}

		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-time.After(interval):
		}
	}
}

// RunOnce executes a single retrieval pass followed by a single extraction
// pass. Pass-level errors (cancellation, store list failures) are logged
// and reflected in partial stats; they never panic out of the loop.
func (w *Worker) RunOnce(ctx context.Context) *PassResult {
	result := &PassResult{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	log := w.log.With(logger.String("run_id", result.RunID))

	retrieveStats, err := w.retriever.Run(ctx)
	if err != nil {
		log.Warn("Retrieval pass ended early", logger.Error(err))
	}
	result.Retrieve = retrieveStats

	extractStats, err := w.extractor.Run(ctx)
	if err != nil {
		log.Warn("Extraction pass ended early", logger.Error(err))
	}
	result.Extract = extractStats

	result.Finished = time.Now()

	log.Info("Pass complete",
		logger.Duration("duration", result.Finished.Sub(result.Started)),
		logger.Bool("idle", result.Idle()),
	)

	return result
}
