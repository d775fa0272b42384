package pipeline

import (
	"context"
	"time"

	"github.com/jonesrussell/lead-harvester/internal/logger"
)

// Poll defaults: 20 attempts at 30s covers the collection service's usual
// processing window (10 minutes).
const (
	DefaultPollInterval    = 30 * time.Second
	DefaultPollMaxAttempts = 20
)

// PollerConfig holds poll loop tuning.
type PollerConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// Poller bridges the gap between "submission accepted" and "the service has
// finished processing" by sampling one pending snapshot until it classifies
// valid. It is a best-effort latency optimization: if the attempt budget
// runs out, callers proceed anyway, because retrieval is idempotent and
// safe on still-processing snapshots.
type Poller struct {
	client      CollectionClient
	snapshots   SnapshotStore
	interval    time.Duration
	maxAttempts int
	log         logger.Logger
}

// NewPoller creates a new poll loop.
func NewPoller(client CollectionClient, snapshots SnapshotStore, cfg PollerConfig, log logger.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultPollMaxAttempts
	}

	return &Poller{
		client:      client,
		snapshots:   snapshots,
		interval:    cfg.Interval,
		maxAttempts: cfg.MaxAttempts,
		log:         log,
	}
}

// Wait samples one pending snapshot per attempt until one classifies valid
// or the attempt budget is exhausted. It returns true when data is ready
// and false when the budget ran out; either way the caller should proceed
// to retrieval. Cancellation is honored between attempts.
func (p *Poller) Wait(ctx context.Context) (bool, error) {
	p.log.Info("Polling for processed data",
		logger.Duration("interval", p.interval),
		logger.Int("max_attempts", p.maxAttempts),
	)

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		ready, err := p.sample(ctx)
		if err != nil {
			return false, err
		}
		if ready {
			p.log.Info("Data ready", logger.Int("attempts", attempt))
			return true, nil
		}

		if attempt == p.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(p.interval):
		}
	}

	p.log.Warn("Poll budget exhausted, proceeding with available data",
		logger.Int("attempts", p.maxAttempts),
	)

	return false, nil
}

// sample checks whether the first pending snapshot's payload classifies
// valid. Transport errors are treated as "not ready yet", never fatal.
func (p *Poller) sample(ctx context.Context) (bool, error) {
	pending, err := p.snapshots.ListUnprocessed(ctx)
	if err != nil {
		return false, err
	}

	if len(pending) == 0 {
		// Nothing left to wait for.
		return true, nil
	}

	snapshotID := pending[0].SnapshotID
	payload, fetchErr := p.client.Fetch(ctx, snapshotID)
	if fetchErr != nil {
		p.log.Debug("Poll sample fetch failed",
			logger.String("snapshot_id", snapshotID),
			logger.Error(fetchErr),
		)
		return false, nil
	}

	verdict := Classify(payload)
	if !verdict.Valid() {
		p.log.Debug("Poll sample not ready",
			logger.String("snapshot_id", snapshotID),
			logger.String("reason", verdict.Reason),
		)
		return false, nil
	}

	return true, nil
}
