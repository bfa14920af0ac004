package pinger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	// LastPingKey is the store key holding the time of the last ping.
	LastPingKey = "lastUpdated"

	// DefaultThreshold is the minimum gap between two pings from one client.
	DefaultThreshold = time.Minute

	defaultTimeout  = 10 * time.Second
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Store persists pinger state for a single client
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Tracker notifies the tracking endpoint that a menu was opened in zone
type Tracker interface {
	Track(ctx context.Context, zone string) error
}

// Result describes the outcome of a visit. Sent is false when the ping was
// skipped because the previous one is too recent.
type Result struct {
	Sent bool
	At   time.Time
}

// ShouldPing reports whether a ping is due. A zero lastPing means the client
// has never pinged.
func ShouldPing(now, lastPing time.Time, threshold time.Duration) bool {
	if lastPing.IsZero() {
		return true
	}
	return now.Sub(lastPing) > threshold
}

// FormatTimestamp renders t the way it is persisted under LastPingKey
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses a value written by FormatTimestamp
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// Pinger throttles visit pings so that reloads within the threshold are not
// reported twice.
type Pinger struct {
	tracker   Tracker
	threshold time.Duration
	timeout   time.Duration
	now       func() time.Time
	logger    *slog.Logger

	wg sync.WaitGroup
}

// Option configures a Pinger
type Option func(*Pinger)

// WithThreshold sets the debounce window
func WithThreshold(d time.Duration) Option {
	return func(p *Pinger) { p.threshold = d }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(p *Pinger) { p.now = now }
}

// WithTimeout bounds background pings started by VisitAsync
func WithTimeout(d time.Duration) Option {
	return func(p *Pinger) { p.timeout = d }
}

// WithLogger sets the logger used for background failures
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pinger) { p.logger = logger }
}

// New creates a pinger reporting to tracker
func New(tracker Tracker, opts ...Option) *Pinger {
	p := &Pinger{
		tracker:   tracker,
		threshold: DefaultThreshold,
		timeout:   defaultTimeout,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Visit pings the tracker for zone if the last ping recorded in store is
// older than the threshold. The new timestamp is recorded before the tracker
// is called, so a failed ping still counts.
func (p *Pinger) Visit(ctx context.Context, store Store, zone string) (Result, error) {
	res, err := p.record(ctx, store)
	if err != nil || !res.Sent {
		return res, err
	}

	if err := p.tracker.Track(ctx, zone); err != nil {
		return res, fmt.Errorf("track visit: %w", err)
	}
	return res, nil
}

// VisitAsync makes the same decision as Visit and records it immediately,
// but sends the ping in the background. Failures are only logged.
func (p *Pinger) VisitAsync(ctx context.Context, store Store, zone string) Result {
	res, err := p.record(ctx, store)
	if err != nil {
		p.logger.Warn("failed to record visit", "zone", zone, "error", err)
		return res
	}
	if !res.Sent {
		return res
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		pingCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()

		if err := p.tracker.Track(pingCtx, zone); err != nil {
			p.logger.Warn("visit ping failed", "zone", zone, "error", err)
			return
		}
		p.logger.Debug("visit ping sent", "zone", zone)
	}()

	return res
}

// Wait blocks until all background pings have finished
func (p *Pinger) Wait() {
	p.wg.Wait()
}

func (p *Pinger) record(ctx context.Context, store Store) (Result, error) {
	last, err := p.lastPing(ctx, store)
	if err != nil {
		return Result{}, err
	}

	now := p.now()
	if !ShouldPing(now, last, p.threshold) {
		return Result{}, nil
	}

	if err := store.Set(ctx, LastPingKey, FormatTimestamp(now)); err != nil {
		return Result{}, fmt.Errorf("record last ping: %w", err)
	}
	return Result{Sent: true, At: now}, nil
}

// lastPing returns the zero time when nothing usable is stored
func (p *Pinger) lastPing(ctx context.Context, store Store) (time.Time, error) {
	value, ok, err := store.Get(ctx, LastPingKey)
	if err != nil {
		return time.Time{}, fmt.Errorf("read last ping: %w", err)
	}
	if !ok || value == "" {
		return time.Time{}, nil
	}

	last, err := ParseTimestamp(value)
	if err != nil {
		p.logger.Debug("ignoring malformed last ping", "value", value, "error", err)
		return time.Time{}, nil
	}
	return last, nil
}
