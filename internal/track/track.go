// Package track runs tracking cycles over the watchlist: fetch each
// item's page, extract a price, evaluate alert conditions, and record
// the observation. One broken item never stops the rest of the cycle.
package track

import (
	"context"
	"math/rand"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pricedrop/tracker-cli/internal/extract"
	"github.com/pricedrop/tracker-cli/internal/fetch"
	"github.com/pricedrop/tracker-cli/internal/journal"
	"github.com/pricedrop/tracker-cli/internal/model"
	"github.com/pricedrop/tracker-cli/internal/notify"
	"github.com/pricedrop/tracker-cli/internal/policy"
	"github.com/pricedrop/tracker-cli/internal/resilience"
)

// Options tunes a Tracker. Zero delays mean no pause between items.
type Options struct {
	Retry    resilience.RetryConfig
	DelayMin time.Duration
	DelayMax time.Duration
}

// FetchRetryPolicy returns the retry configuration used for page
// fetches: delays double from 2s with 1-3s of added jitter.
func FetchRetryPolicy(maxAttempts int) resilience.RetryConfig {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return resilience.RetryConfig{
		MaxAttempts:    maxAttempts,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     2 * time.Minute,
		Multiplier:     2.0,
		JitterMin:      1 * time.Second,
		JitterMax:      3 * time.Second,
	}
}

// Outcome summarizes one item's check within a cycle.
type Outcome struct {
	Item      model.Item
	Status    journal.CheckStatus
	Title     string
	Price     float64
	PrevPrice float64
	HasPrev   bool
	Dropped   bool
	HitTarget bool
	Err       error
}

// Tracker orchestrates tracking cycles.
type Tracker struct {
	fetcher  fetch.Getter
	registry *extract.Registry
	notifier notify.Notifier
	journal  journal.Journal
	retry    resilience.RetryConfig
	delayMin time.Duration
	delayMax time.Duration
}

// New creates a Tracker with all dependencies.
func New(fetcher fetch.Getter, registry *extract.Registry, notifier notify.Notifier, jrnl journal.Journal, opts Options) *Tracker {
	if jrnl == nil {
		jrnl = journal.Nop{}
	}
	delayMin, delayMax := opts.DelayMin, opts.DelayMax
	if delayMax < delayMin {
		delayMax = delayMin
	}
	return &Tracker{
		fetcher:  fetcher,
		registry: registry,
		notifier: notifier,
		journal:  jrnl,
		retry:    opts.Retry,
		delayMin: delayMin,
		delayMax: delayMax,
	}
}

// RunCycle checks every item once, appending new observations to h.
// The caller owns persisting h afterwards. Per-item failures are
// recorded in the outcomes, not returned: the only error conditions
// are an empty watchlist and context cancellation mid-cycle.
func (t *Tracker) RunCycle(ctx context.Context, list []model.Item, h model.History) ([]Outcome, error) {
	if len(list) == 0 {
		return nil, eris.New("track: no items to check")
	}

	log := zap.L()
	log.Info("track: starting cycle", zap.Int("items", len(list)))

	cycleID, err := t.journal.BeginCycle(ctx, len(list))
	if err != nil {
		log.Warn("track: journal begin cycle failed", zap.Error(err))
	}

	outcomes := make([]Outcome, 0, len(list))
	checked, alerted := 0, 0

	for i, item := range list {
		out := t.checkItem(ctx, cycleID, item, h)
		outcomes = append(outcomes, out)

		if out.Status == journal.CheckOK {
			checked++
		}
		if out.Dropped {
			alerted++
		}
		if out.HitTarget {
			alerted++
		}

		if i < len(list)-1 {
			if err := t.pause(ctx); err != nil {
				return outcomes, eris.Wrap(err, "track: cycle interrupted")
			}
		}
	}

	if cycleID != "" {
		if err := t.journal.FinishCycle(ctx, cycleID, checked, alerted); err != nil {
			log.Warn("track: journal finish cycle failed", zap.Error(err))
		}
	}

	log.Info("track: cycle complete",
		zap.Int("items", len(list)),
		zap.Int("checked", checked),
		zap.Int("alerts", alerted),
	)
	return outcomes, nil
}

// checkItem runs the fetch-extract-evaluate-record sequence for one item.
func (t *Tracker) checkItem(ctx context.Context, cycleID string, item model.Item, h model.History) Outcome {
	out := Outcome{Item: item, Status: journal.CheckOK}

	if item.URL == "" {
		zap.L().Warn("track: item has no url, skipping", zap.String("item", item.Name))
		out.Status = journal.CheckSkipped
		t.record(ctx, cycleID, out)
		return out
	}

	log := zap.L().With(zap.String("item", item.Name), zap.String("source", string(item.Source)))

	res, err := t.observe(ctx, item)
	if err != nil {
		log.Warn("track: check failed", zap.Error(err))
		out.Status = journal.CheckNoPrice
		out.Err = err
		t.record(ctx, cycleID, out)
		return out
	}

	out.Title = res.Title
	out.Price = res.Price

	verdict := policy.Evaluate(item, res.Price, h)
	out.Dropped = verdict.Drop
	out.HitTarget = verdict.ThresholdHit
	out.PrevPrice = verdict.PrevPrice
	out.HasPrev = verdict.HasPrev

	if verdict.Drop {
		log.Info("track: price drop",
			zap.Float64("from", verdict.PrevPrice),
			zap.Float64("to", res.Price),
		)
		t.send(ctx, notify.PriceDropAlert(item, verdict.PrevPrice, res.Price))
	}
	if verdict.ThresholdHit {
		log.Info("track: price target reached",
			zap.Float64("price", res.Price),
			zap.Float64("target", item.Threshold),
		)
		t.send(ctx, notify.ThresholdAlert(item, res.Price))
	}

	policy.Record(item.Name, res.Price, h)
	log.Info("track: recorded price", zap.Float64("price", res.Price))

	t.record(ctx, cycleID, out)
	return out
}

// observe fetches the item's page and extracts a price. Transient fetch
// failures and pages that render without a price are retried; a panic
// inside an extractor is contained and surfaces as a failed check.
func (t *Tracker) observe(ctx context.Context, item model.Item) (*extract.Result, error) {
	extractor := t.registry.For(item.Source)

	cfg := t.retry
	cfg.ShouldRetry = func(err error) bool {
		return resilience.IsTransient(err) || eris.Is(err, extract.ErrNoPrice)
	}
	cfg.OnRetry = resilience.RetryLogger(string(item.Source), "fetch_price")

	return resilience.DoVal(ctx, cfg, func(ctx context.Context) (res *extract.Result, err error) {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("track: recovered extractor panic",
					zap.String("item", item.Name),
					zap.Any("panic", r),
				)
				res = nil
				err = eris.Errorf("track: extractor panic: %v", r)
			}
		}()

		body, err := t.fetcher.Get(ctx, item.URL)
		if err != nil {
			return nil, err
		}
		return extractor.Extract(body)
	})
}

// send delivers one alert, logging delivery failures instead of
// propagating them.
func (t *Tracker) send(ctx context.Context, alert notify.Alert) {
	if t.notifier == nil {
		return
	}
	if err := t.notifier.Send(ctx, alert); err != nil {
		zap.L().Error("track: send alert failed",
			zap.String("kind", string(alert.Kind)),
			zap.String("item", alert.Item.Name),
			zap.Error(err),
		)
	}
}

// record writes the check to the journal, logging failures instead of
// propagating them.
func (t *Tracker) record(ctx context.Context, cycleID string, out Outcome) {
	c := journal.Check{
		CycleID:   cycleID,
		Item:      out.Item.Name,
		Source:    out.Item.Source,
		Status:    out.Status,
		Price:     out.Price,
		Dropped:   out.Dropped,
		HitTarget: out.HitTarget,
	}
	if out.Err != nil {
		c.Error = out.Err.Error()
	}
	if err := t.journal.RecordCheck(ctx, c); err != nil {
		zap.L().Warn("track: journal record check failed",
			zap.String("item", out.Item.Name),
			zap.Error(err),
		)
	}
}

// pause sleeps a uniform random delay in [delayMin, delayMax] between
// items. Interruptible by ctx.
func (t *Tracker) pause(ctx context.Context) error {
	if t.delayMax <= 0 {
		return nil
	}
	delay := t.delayMin
	if window := t.delayMax - t.delayMin; window > 0 {
		delay += time.Duration(rand.Int63n(int64(window) + 1))
	}
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
