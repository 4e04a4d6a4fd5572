// Package pipeline holds the reconciliation core: the idempotent per-item
// processing decision and its single-flight execution, fed by both the
// webhook path and the periodic catalog sweep.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"localizer/internal/logger"
	"localizer/internal/models"
	"localizer/internal/state"

	"github.com/google/uuid"
)

// EventKind is the change notification type from the storefront.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// eventSource distinguishes webhook deliveries from sweep passes; the
// marker-tag skip only applies to webhooks.
type eventSource int

const (
	sourceWebhook eventSource = iota
	sourceSweep
)

// ErrSweepInProgress is returned when a sweep is requested while one is
// already running.
var ErrSweepInProgress = errors.New("pipeline: sweep already in progress")

// Transformer produces the translated item for one processing attempt.
type Transformer interface {
	Transform(ctx context.Context, item *models.CatalogItem) (*models.TranslatedItem, error)
}

// Lister pages through the full catalog for sweeps. An empty cursor starts
// from the first page; an empty next cursor ends the iteration.
type Lister interface {
	ListPage(ctx context.Context, cursor string) ([]models.CatalogItem, string, error)
}

// Options tunes the reconciliation core.
type Options struct {
	// CoalesceWindow collapses rapid-fire duplicate webhooks for the same
	// item into one run.
	CoalesceWindow time.Duration
	// MarkerTag is the label the publisher writes back onto the item; its
	// presence on an incoming webhook means the event is our own write
	// echoing back.
	MarkerTag string
	// SweepDelay is the fixed pause between items during a sweep, an
	// accommodation for external rate limits.
	SweepDelay time.Duration
}

// SweepOptions controls a single sweep run.
type SweepOptions struct {
	// ForceReprocess bypasses the marker/fingerprint/coalesce checks
	// entirely.
	ForceReprocess bool
	// RunID labels the run in logs and stats; generated when empty.
	RunID string
}

// SweepStats summarizes one sweep run.
type SweepStats struct {
	RunID      string     `json:"run_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Pages      int        `json:"pages"`
	Seen       int        `json:"seen"`
	Processed  int        `json:"processed"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	Error      string     `json:"error,omitempty"`
}

// Core decides idempotently whether an item needs processing and guarantees
// at most one concurrent processing attempt per item id. Both ingress paths
// (webhook and sweep) funnel through it.
type Core struct {
	store       state.Store
	transformer Transformer
	publisher   Publisher
	lister      Lister
	logger      *logger.Logger
	opts        Options

	now func() time.Time

	mu       sync.Mutex
	inFlight map[int64]struct{}

	sweepMu   sync.Mutex
	sweeping  bool
	lastSweep *SweepStats
}

func NewCore(store state.Store, transformer Transformer, publisher Publisher, lister Lister, opts Options, logger *logger.Logger) *Core {
	if opts.CoalesceWindow <= 0 {
		opts.CoalesceWindow = 2 * time.Minute
	}
	if opts.MarkerTag == "" {
		opts.MarkerTag = "AI-Optimized"
	}
	return &Core{
		store:       store,
		transformer: transformer,
		publisher:   publisher,
		lister:      lister,
		logger:      logger,
		opts:        opts,
		now:         time.Now,
		inFlight:    make(map[int64]struct{}),
	}
}

// HandleEvent is the webhook entry point. Failures are returned for the
// caller's logs, but the webhook response must never depend on them: the
// adapter acknowledges first and calls this in the background.
func (c *Core) HandleEvent(ctx context.Context, item *models.CatalogItem, kind EventKind) error {
	switch kind {
	case EventDeleted:
		return c.handleDelete(ctx, item.ID)
	case EventCreated, EventUpdated:
		if item.Status != models.StatusActive {
			return c.handleUnavailable(ctx, item)
		}
		_, err := c.reconcile(ctx, item, sourceWebhook, false)
		return err
	default:
		return fmt.Errorf("unknown event kind %q", kind)
	}
}

// Sweep runs one full paginated pass over the catalog, strictly
// sequentially with a fixed inter-item delay. One item's failure never
// aborts the rest; only a listing failure does.
func (c *Core) Sweep(ctx context.Context, opts SweepOptions) (*SweepStats, error) {
	c.sweepMu.Lock()
	if c.sweeping {
		c.sweepMu.Unlock()
		return nil, ErrSweepInProgress
	}
	c.sweeping = true
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	// Sweep owns stats; LastSweep pollers only ever see published copies.
	stats := &SweepStats{RunID: opts.RunID, StartedAt: c.now()}
	snap := *stats
	c.lastSweep = &snap
	c.sweepMu.Unlock()

	defer func() {
		now := c.now()
		stats.FinishedAt = &now
		c.sweepMu.Lock()
		final := *stats
		c.lastSweep = &final
		c.sweeping = false
		c.sweepMu.Unlock()
	}()

	c.logger.Info("Sweep %s started (force=%v)", opts.RunID, opts.ForceReprocess)

	cursor := ""
	for {
		items, next, err := c.lister.ListPage(ctx, cursor)
		if err != nil {
			// Listing failure aborts this pass only; the next sweep starts
			// fresh from page one.
			stats.Error = err.Error()
			c.logger.Error("Sweep %s aborted on listing failure: %v", opts.RunID, err)
			return stats, fmt.Errorf("catalog listing failed: %w", err)
		}
		stats.Pages++

		for i := range items {
			item := &items[i]
			stats.Seen++

			if item.Status != models.StatusActive {
				if err := c.handleUnavailable(ctx, item); err != nil {
					c.logger.Error("Sweep %s: item %d unavailable handling failed: %v", opts.RunID, item.ID, err)
				}
				stats.Skipped++
			} else {
				processed, err := c.reconcile(ctx, item, sourceSweep, opts.ForceReprocess)
				switch {
				case err != nil:
					stats.Failed++
				case processed:
					stats.Processed++
				default:
					stats.Skipped++
				}
			}

			if c.opts.SweepDelay > 0 {
				select {
				case <-time.After(c.opts.SweepDelay):
				case <-ctx.Done():
					stats.Error = ctx.Err().Error()
					return stats, ctx.Err()
				}
			}
		}

		c.publishSweepStats(stats)

		if next == "" {
			break
		}
		cursor = next
	}

	c.logger.Info("Sweep %s finished: %d seen, %d processed, %d skipped, %d failed",
		opts.RunID, stats.Seen, stats.Processed, stats.Skipped, stats.Failed)
	return stats, nil
}

// publishSweepStats copies the running stats so pollers never observe a
// struct the sweep loop is still writing.
func (c *Core) publishSweepStats(stats *SweepStats) {
	c.sweepMu.Lock()
	snap := *stats
	c.lastSweep = &snap
	c.sweepMu.Unlock()
}

// LastSweep returns a copy of the most recent sweep's stats, or nil.
func (c *Core) LastSweep() *SweepStats {
	c.sweepMu.Lock()
	defer c.sweepMu.Unlock()
	if c.lastSweep == nil {
		return nil
	}
	out := *c.lastSweep
	return &out
}

// SweepRunning reports whether a sweep is currently in flight.
func (c *Core) SweepRunning() bool {
	c.sweepMu.Lock()
	defer c.sweepMu.Unlock()
	return c.sweeping
}

// reconcile runs the shouldProcess decision and, when it says process, the
// single-flight pipeline execution. Returns whether the pipeline actually
// ran.
func (c *Core) reconcile(ctx context.Context, item *models.CatalogItem, source eventSource, force bool) (bool, error) {
	process, reason, err := c.shouldProcess(ctx, item, source, force)
	if err != nil {
		c.logger.Error("Decision failed for item %d: %v", item.ID, err)
		return false, err
	}
	if !process {
		c.logger.Debug("Skipping item %d: %s", item.ID, reason)
		return false, nil
	}

	if !c.tryAcquire(item.ID) {
		// A pipeline run for this id is already in flight; the duplicate
		// trigger is dropped, not queued. A later webhook or sweep pass
		// gets the next attempt.
		c.logger.Info("Item %d already in flight, dropping duplicate trigger", item.ID)
		return false, nil
	}
	defer c.release(item.ID)

	if err := c.process(ctx, item); err != nil {
		// Record left unchanged so a future webhook or sweep retries.
		c.logger.Error("Processing failed for item %d: %v", item.ID, err)
		return false, err
	}
	return true, nil
}

// shouldProcess is the ordered decision table; the first matching rule
// wins.
func (c *Core) shouldProcess(ctx context.Context, item *models.CatalogItem, source eventSource, force bool) (bool, string, error) {
	rec, err := c.store.Get(ctx, item.ID)
	if err != nil {
		return false, "", fmt.Errorf("state lookup: %w", err)
	}

	// 1. Never processed before.
	if rec == nil {
		return true, "no processing record", nil
	}

	// 2. Explicit re-run bypasses every guard.
	if force {
		return true, "forced reprocess", nil
	}

	// 3. Our own write echoing back through the webhook loop.
	if source == sourceWebhook && item.HasTag(c.opts.MarkerTag) {
		return false, "marker tag present on webhook delivery", nil
	}

	// 4. Edit-storm debounce.
	if c.now().Sub(rec.LastProcessedAt) < c.opts.CoalesceWindow {
		return false, "within coalesce window", nil
	}

	// 5. Nothing relevant changed since the last run.
	if rec.ContentFingerprint == item.Fingerprint() {
		return false, "content fingerprint unchanged", nil
	}

	return true, "content changed", nil
}

// process runs the full pipeline for one item and persists the record on
// success.
func (c *Core) process(ctx context.Context, item *models.CatalogItem) error {
	c.logger.Info("Processing item %d (%s)", item.ID, item.Title)

	translated, err := c.transformer.Transform(ctx, item)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	refs, err := c.publisher.Publish(ctx, item, translated)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	rec := &models.ProcessingRecord{
		ItemID:             item.ID,
		LastProcessedAt:    c.now(),
		ContentFingerprint: item.Fingerprint(),
		ExternalRefs:       refs,
	}
	if refs.Empty() {
		// Keep earlier post ids when this run produced none, so a later
		// delete can still retract them.
		if prev, err := c.store.Get(ctx, item.ID); err == nil && prev != nil {
			rec.ExternalRefs = prev.ExternalRefs
		}
	}

	if err := c.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("record upsert: %w", err)
	}

	c.logger.Info("Item %d processed: %q -> %q", item.ID, item.Title, translated.Category)
	return nil
}

// handleDelete retracts whatever was published and drops the record. The
// source item is already gone, so retraction errors are logged, not
// propagated, and the record removal is unconditional.
func (c *Core) handleDelete(ctx context.Context, itemID int64) error {
	rec, err := c.store.Get(ctx, itemID)
	if err != nil {
		return fmt.Errorf("state lookup: %w", err)
	}
	if rec == nil {
		c.logger.Debug("Delete for unknown item %d, nothing to retract", itemID)
		return nil
	}

	if err := c.publisher.Retract(ctx, itemID, rec.ExternalRefs); err != nil {
		c.logger.Error("Retraction failed for item %d: %v", itemID, err)
	}

	if err := c.store.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("record delete: %w", err)
	}
	c.logger.Info("Item %d deleted, record removed", itemID)
	return nil
}

// handleUnavailable handles a non-active item: the availability notice goes
// out, but the record's processed markers stay untouched so a return to
// active gets a real run.
func (c *Core) handleUnavailable(ctx context.Context, item *models.CatalogItem) error {
	rec, err := c.store.Get(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("state lookup: %w", err)
	}

	var refs models.ExternalRefs
	if rec != nil {
		refs = rec.ExternalRefs
	}

	if err := c.publisher.MarkUnavailable(ctx, item, refs); err != nil {
		return fmt.Errorf("mark unavailable: %w", err)
	}

	if rec != nil && !rec.ExternalRefs.Empty() {
		rec.ExternalRefs = models.ExternalRefs{}
		if err := c.store.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("record update: %w", err)
		}
	}

	c.logger.Info("Item %d marked unavailable (status=%s)", item.ID, item.Status)
	return nil
}

func (c *Core) tryAcquire(itemID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, held := c.inFlight[itemID]; held {
		return false
	}
	c.inFlight[itemID] = struct{}{}
	return true
}

func (c *Core) release(itemID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, itemID)
}
