package bridge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/enigma2-bridge/internal/item"
)

// Default cycle periods, matching the receiver defaults.
const (
	defaultCycle     = 300 * time.Second
	defaultFastCycle = 10 * time.Second
)

// SourceBridge tags item writes and command callers originating from the
// engine's own resolution passes. Dispatch ignores intents carrying this
// tag to prevent feedback loops. It aliases the shared history source tag
// so the feedback-loop check and recorded history rows cannot drift apart.
const SourceBridge = item.HistorySourceEngine

// Logger is the logging interface used by the bridge.
// *logging.Logger and *slog.Logger both satisfy it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures a Bridge.
type Options struct {
	// Device is the receiver descriptor with its subscribed bindings.
	Device *Device

	// Cycle is the slow refresh period. Zero means 300s.
	Cycle time.Duration

	// FastCycle is the fast refresh period. Zero means 10s.
	FastCycle time.Duration

	// Logger receives cycle and dispatch diagnostics. Nil discards them.
	Logger Logger
}

// Bridge is the dual-cadence synchronization engine for one receiver.
//
// It owns the per-cycle response cache and drives the slow and fast
// refresh loops once started. Cycle methods and Dispatch are safe for
// concurrent use; the response cache tolerates interleaved cycles.
type Bridge struct {
	device *Device
	cache  *responseCache
	logger Logger

	// onCycle receives pass telemetry. Nil disables reporting.
	onCycle func(cycle string, duration time.Duration, failures int)

	cycle     time.Duration
	fastCycle time.Duration

	// running gates binding iteration: a stop halts processing before
	// the next binding, without cancelling in-flight calls.
	running atomic.Bool
	started atomic.Bool

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a bridge for the given device.
//
// The engine accepts cycle invocations and dispatches immediately; Start
// is only needed for the periodic tickers.
func New(opts Options) (*Bridge, error) {
	if opts.Device == nil {
		return nil, errors.New("bridge: device is required")
	}

	cycle := opts.Cycle
	if cycle <= 0 {
		cycle = defaultCycle
	}
	fastCycle := opts.FastCycle
	if fastCycle <= 0 {
		fastCycle = defaultFastCycle
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	b := &Bridge{
		device:    opts.Device,
		cache:     newResponseCache(),
		logger:    logger,
		cycle:     cycle,
		fastCycle: fastCycle,
		done:      make(chan struct{}),
	}
	b.running.Store(true)
	return b, nil
}

// Device returns the receiver descriptor the bridge synchronizes.
func (b *Bridge) Device() *Device { return b.device }

// Start launches the slow and fast refresh loops.
//
// Each loop runs one pass immediately and then ticks at its configured
// period until Stop is called or ctx is cancelled.
//
// Returns:
//   - error: ErrAlreadyRunning if Start was already called
func (b *Bridge) Start(ctx context.Context) error {
	if !b.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	b.logger.Info("starting sync engine",
		"device", b.device.id,
		"cycle", b.cycle.String(),
		"fast_cycle", b.fastCycle.String(),
		"bindings", b.device.BindingCount(),
	)

	b.wg.Add(2)
	go b.loop(ctx, b.cycle, b.UpdateCycle)
	go b.loop(ctx, b.fastCycle, func(ctx context.Context) {
		b.FastCycle(ctx, true)
	})
	return nil
}

// Stop halts both refresh loops and waits for in-flight passes to finish.
//
// The running flag drops first, so a pass in progress stops before its
// next binding; in-flight device calls are not cancelled.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		b.running.Store(false)
		close(b.done)
		b.wg.Wait()
		b.logger.Info("sync engine stopped", "device", b.device.id)
	})
}

// SetOnCycle registers a callback invoked after every completed refresh
// pass with the cycle name ("slow" or "fast"), the wall-clock duration of
// the pass and the number of bindings that failed to resolve.
//
// Must be called before Start.
func (b *Bridge) SetOnCycle(fn func(cycle string, duration time.Duration, failures int)) {
	b.onCycle = fn
}

// loop runs pass once immediately, then on every tick until shutdown.
func (b *Bridge) loop(ctx context.Context, period time.Duration, pass func(context.Context)) {
	defer b.wg.Done()

	pass(ctx)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pass(ctx)
		}
	}
}

// UpdateCycle runs one slow refresh pass over the slow binding registry.
//
// Each binding resolves with normal caching; a failed binding is logged
// and skipped. The response cache is cleared when the pass completes,
// whether it ran to the end or was stopped early.
func (b *Bridge) UpdateCycle(ctx context.Context) {
	defer b.cache.clear()

	b.logger.Debug("starting update cycle", "device", b.device.id)

	started := time.Now()
	failures := 0

	for _, bd := range b.device.SlowBindings() {
		if !b.running.Load() {
			return
		}
		if err := b.resolve(ctx, bd, false); err != nil {
			failures++
			b.logger.Warn("binding resolution failed",
				"device", b.device.id,
				"data_type", string(bd.DataType),
				"error", err,
			)
		}
	}

	b.reportCycle("slow", started, failures)
}

// FastCycle runs one fast refresh pass over the fast binding registry.
//
// Page-addressed bindings resolve generically, the current-event family
// resolves through the event resolver (once per pass) and volume through
// the volume resolver. When cached is false every fetch in the pass
// bypasses the response cache, forcing fresh reads. The cache is cleared
// when the pass completes.
func (b *Bridge) FastCycle(ctx context.Context, cached bool) {
	defer b.cache.clear()

	b.logger.Debug("starting fast cycle", "device", b.device.id, "cached", cached)

	bypass := !cached
	eventDone := false
	started := time.Now()
	failures := 0

	for _, bd := range b.device.FastBindings() {
		if !b.running.Load() {
			return
		}

		var err error
		switch {
		case bd.Page != "":
			err = b.resolve(ctx, bd, bypass)
		case isEventFamily(bd.DataType):
			if eventDone {
				continue
			}
			err = b.resolveEvent(ctx, bypass)
			eventDone = true
		case bd.DataType == DataTypeVolume:
			err = b.resolveVolume(ctx, bd, bypass)
		default:
			err = b.resolve(ctx, bd, bypass)
		}
		if err != nil {
			failures++
			b.logger.Warn("binding resolution failed",
				"device", b.device.id,
				"data_type", string(bd.DataType),
				"error", err,
			)
		}
	}

	b.reportCycle("fast", started, failures)
}

// reportCycle invokes the cycle telemetry callback if one is registered.
func (b *Bridge) reportCycle(cycle string, started time.Time, failures int) {
	if b.onCycle != nil {
		b.onCycle(cycle, time.Since(started), failures)
	}
}

// isEventFamily reports whether d is resolved by the event resolver.
func isEventFamily(d DataType) bool {
	_, ok := eventFamily[d]
	return ok
}
