package ratelimit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/ports"
)

// windowRecord is the stored per-identifier state: the request instants
// inside the current window plus when it was last written back. The store
// provides no transactions, so concurrent read-modify-write can lose
// updates; the count is a best-effort approximation, which is sufficient for
// abuse mitigation.
type windowRecord struct {
	Identifier    string  `json:"id"`
	Timestamps    []int64 `json:"ts"` // unix millis, oldest first
	LastPersisted int64   `json:"lp"` // unix millis, 0 = never persisted
}

// Options tunes the persistence cadence. Persisting on every increment would
// turn each request into a store write; instead writes are skipped unless the
// record is new, stale, or the count is approaching the limit.
type Options struct {
	// PersistInterval is the maximum age of the stored record before an
	// increment writes it back. <= 0 persists on every call.
	PersistInterval time.Duration
	// NearLimitFraction forces a write once count/max reaches this
	// fraction, so denials are grounded in reasonably fresh state.
	NearLimitFraction float64
	// TTLSlack extends the store TTL past the window so a record survives
	// slightly beyond the window it describes.
	TTLSlack time.Duration
}

// DefaultOptions mirror the production cadence: at most one write per 30s per
// identifier unless the count crosses 80% of the limit.
func DefaultOptions() Options {
	return Options{
		PersistInterval:   30 * time.Second,
		NearLimitFraction: 0.8,
		TTLSlack:          time.Minute,
	}
}

// WindowCounter implements ports.WindowCounter over a DurableStore using a
// sliding window of request timestamps.
type WindowCounter struct {
	store  ports.DurableStore
	opts   Options
	logger *logrus.Logger

	now func() time.Time
}

// NewWindowCounter creates a counter over the given store.
func NewWindowCounter(store ports.DurableStore, opts Options, logger *logrus.Logger) *WindowCounter {
	if opts.NearLimitFraction <= 0 || opts.NearLimitFraction > 1 {
		opts.NearLimitFraction = 0.8
	}
	if opts.TTLSlack <= 0 {
		opts.TTLSlack = time.Minute
	}
	return &WindowCounter{store: store, opts: opts, logger: logger, now: time.Now}
}

// IncrementAndCheck implements ports.WindowCounter. The returned count
// includes the current request. Store read/write failures are returned to the
// caller, which owns the fail-open/fail-closed policy.
func (w *WindowCounter) IncrementAndCheck(ctx context.Context, identifier string, window time.Duration, max int) (int, time.Time, error) {
	now := w.now()
	nowMs := now.UnixMilli()
	cutoff := nowMs - window.Milliseconds()

	rec := windowRecord{Identifier: identifier}
	raw, ok, err := w.store.Get(ctx, identifier)
	if err != nil {
		return 0, now.Add(window), err
	}
	if ok {
		if uerr := json.Unmarshal([]byte(raw), &rec); uerr != nil {
			// Corrupt record: start a fresh window rather than failing
			// the request.
			if w.logger != nil {
				w.logger.WithError(uerr).Warn("rate limit: discarding corrupt window record")
			}
			rec = windowRecord{Identifier: identifier}
		}
	}

	// Prune instants that slid out of the window, then append this one.
	kept := rec.Timestamps[:0]
	for _, ts := range rec.Timestamps {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	rec.Timestamps = append(kept, nowMs)
	count := len(rec.Timestamps)

	resetAt := time.UnixMilli(rec.Timestamps[0] + window.Milliseconds())

	if w.shouldPersist(&rec, nowMs, count, max) {
		rec.LastPersisted = nowMs
		b, merr := json.Marshal(&rec)
		if merr != nil {
			return count, resetAt, merr
		}
		if perr := w.store.Put(ctx, identifier, string(b), window+w.opts.TTLSlack); perr != nil {
			return count, resetAt, perr
		}
	}
	return count, resetAt, nil
}

// shouldPersist decides whether this increment is written back. Skipped
// writes mean a burst can be undercounted for a short while; that trade-off
// caps write amplification on the shared store.
func (w *WindowCounter) shouldPersist(rec *windowRecord, nowMs int64, count, max int) bool {
	if w.opts.PersistInterval <= 0 {
		return true
	}
	if rec.LastPersisted == 0 {
		return true
	}
	if nowMs-rec.LastPersisted > w.opts.PersistInterval.Milliseconds() {
		return true
	}
	if max > 0 && float64(count) >= w.opts.NearLimitFraction*float64(max) {
		return true
	}
	return false
}
