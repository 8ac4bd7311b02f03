package formz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// DefaultDebounce is the default debounce duration for feed changes.
const DefaultDebounce = 100 * time.Millisecond

// Feed watches a source of documents, decodes each into a form value and
// replaces the value of a form registered on a Bus.
//
// A document that fails to decode or apply leaves the form untouched; the
// feed moves to FeedDegraded (or FeedEmpty if nothing was ever applied) and
// keeps watching.
type Feed struct {
	watcher        Watcher
	bus            *Bus
	formID         string
	reset          bool
	debounce       time.Duration
	startupTimeout time.Duration
	syncMode       bool
	clock          clockz.Clock
	codec          Codec
	metrics        MetricsProvider
	logger         *zap.Logger
	onStop         func(FeedState)

	state        atomic.Int32
	current      atomic.Pointer[Value]
	lastError    atomic.Pointer[error]
	errorHistory *errorRing

	mu      sync.Mutex
	started bool

	// For sync mode: channel to receive changes
	changes <-chan []byte
}

// NewFeed creates a Feed that applies documents from watcher to the form
// formID on bus.
//
// Example:
//
//	feed := formz.NewFeed(formz.NewFileWatcher("profile.yaml"), bus, "profile").
//	    Codec(formz.YAMLCodec{}).
//	    Debounce(200 * time.Millisecond)
//
//	if err := feed.Start(ctx); err != nil {
//	    log.Printf("initial value rejected: %v", err)
//	}
func NewFeed(watcher Watcher, bus *Bus, formID string) *Feed {
	f := &Feed{
		watcher:      watcher,
		bus:          bus,
		formID:       formID,
		reset:        true,
		debounce:     DefaultDebounce,
		clock:        clockz.RealClock,
		codec:        AutoCodec{},
		metrics:      NoOpMetricsProvider{},
		logger:       zap.NewNop(),
		errorHistory: newErrorRing(0),
	}
	f.state.Store(int32(FeedLoading))
	return f
}

// Debounce sets the debounce duration for change processing.
// Changes arriving within this duration are coalesced into a single update.
// Default: 100ms. Must be called before Start().
func (f *Feed) Debounce(d time.Duration) *Feed {
	f.debounce = d
	return f
}

// SyncMode enables synchronous processing for testing. Start applies only
// the initial document; use Process for the following ones.
func (f *Feed) SyncMode() *Feed {
	f.syncMode = true
	return f
}

// Clock sets a custom clock for time operations.
// Use this with clockz.FakeClock for deterministic debounce testing.
func (f *Feed) Clock(clock clockz.Clock) *Feed {
	f.clock = clock
	return f
}

// Codec sets the codec for decoding documents. Default: AutoCodec.
func (f *Feed) Codec(codec Codec) *Feed {
	f.codec = codec
	return f
}

// Reset controls whether applied documents also become the form's initial
// value. Default: true, so a freshly loaded document counts as unchanged.
func (f *Feed) Reset(reset bool) *Feed {
	f.reset = reset
	return f
}

// StartupTimeout bounds the wait for the initial document.
// Default: no timeout.
func (f *Feed) StartupTimeout(d time.Duration) *Feed {
	f.startupTimeout = d
	return f
}

// Metrics sets a metrics provider for observability integration.
func (f *Feed) Metrics(provider MetricsProvider) *Feed {
	f.metrics = provider
	return f
}

// Logger sets the structured logger. Default: no-op.
func (f *Feed) Logger(logger *zap.Logger) *Feed {
	f.logger = logger
	return f
}

// OnStop sets a callback invoked with the final state when watching stops.
func (f *Feed) OnStop(fn func(FeedState)) *Feed {
	f.onStop = fn
	return f
}

// ErrorHistorySize sets the number of recent errors to retain.
// Use 0 (default) to only retain the most recent error via LastError().
func (f *Feed) ErrorHistorySize(n int) *Feed {
	f.errorHistory = newErrorRing(n)
	return f
}

// State returns the current state of the Feed.
func (f *Feed) State() FeedState {
	return FeedState(f.state.Load())
}

// Current returns the last applied value and true, or nil and false if no
// value has been applied.
func (f *Feed) Current() (Value, bool) {
	ptr := f.current.Load()
	if ptr == nil {
		return nil, false
	}
	return *ptr, true
}

// LastError returns the last error encountered, or nil if the last document
// was applied.
func (f *Feed) LastError() error {
	ptr := f.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns the recently rejected documents' errors, oldest
// first. Returns nil if error history is not enabled.
func (f *Feed) ErrorHistory() []FeedError {
	return f.errorHistory.all()
}

// Start begins watching. It blocks until the first document is processed
// (success or failure), then continues watching asynchronously.
//
// If the initial document fails, Start returns the error but keeps watching
// in the background for a usable one.
//
// Start can only be called once. Subsequent calls return an error.
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return errors.New("feed already started")
	}
	f.started = true
	f.mu.Unlock()

	f.logger = f.logger.With(zap.String("form_id", f.formID))
	capitan.Emit(ctx, FeedStarted,
		KeyFormID.Field(f.formID),
		KeyDebounce.Field(f.debounce),
		KeyContentType.Field(f.codec.ContentType()),
	)

	changes, err := f.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	startupCtx := ctx
	if f.startupTimeout > 0 {
		var cancel context.CancelFunc
		startupCtx, cancel = f.clock.WithTimeout(ctx, f.startupTimeout)
		defer cancel()
	}

	var initialErr error
	select {
	case <-startupCtx.Done():
		if f.startupTimeout > 0 && errors.Is(startupCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("startup timeout: watcher did not emit initial value within %v", f.startupTimeout)
		}
		return startupCtx.Err()
	case raw, ok := <-changes:
		if !ok {
			return errors.New("watcher closed before emitting initial value")
		}
		f.received(ctx)
		initialErr = f.process(ctx, raw)
	}

	if f.syncMode {
		f.changes = changes
		return initialErr
	}

	go f.watch(ctx, changes)

	return initialErr
}

// Process reads and processes the next document from the watcher.
// This is only available in sync mode and is used for deterministic testing.
// Returns false if no document is available or the channel is closed.
func (f *Feed) Process(ctx context.Context) bool {
	if !f.syncMode {
		return false
	}

	select {
	case raw, ok := <-f.changes:
		if !ok {
			return false
		}
		f.received(ctx)
		_ = f.process(ctx, raw) //nolint:errcheck // Errors stored via setError
		return true
	default:
		return false
	}
}

func (f *Feed) received(ctx context.Context) {
	capitan.Emit(ctx, FeedChangeReceived,
		KeyFormID.Field(f.formID),
	)
	f.metrics.OnFeedChange()
}

// process decodes a document and applies it to the form.
func (f *Feed) process(ctx context.Context, raw []byte) error {
	oldState := f.State()

	value, err := DecodeValue(f.codec, raw)
	if err != nil {
		f.fail(ctx, oldState, err)
		capitan.Emit(ctx, FeedDecodeFailed,
			KeyFormID.Field(f.formID),
			KeyError.Field(err.Error()),
		)
		return err
	}

	issues, err := f.bus.SetFormValue(ctx, f.formID, value, f.reset)
	if err != nil {
		f.fail(ctx, oldState, err)
		capitan.Emit(ctx, FeedApplyFailed,
			KeyFormID.Field(f.formID),
			KeyError.Field(err.Error()),
		)
		return fmt.Errorf("apply failed: %w", err)
	}

	f.current.Store(&value)
	f.lastError.Store(nil)
	f.errorHistory.clear()
	f.transitionState(ctx, oldState, FeedHealthy)
	f.logger.Debug("feed value applied", zap.Int("issues", len(issues)))
	capitan.Emit(ctx, FeedApplySucceeded,
		KeyFormID.Field(f.formID),
		KeyIssueCount.Field(len(issues)),
	)
	return nil
}

func (f *Feed) fail(ctx context.Context, oldState FeedState, err error) {
	f.setError(err)
	f.transitionState(ctx, oldState, f.failureState())
	f.logger.Warn("feed document rejected", zap.Error(err))
}

// failureState returns FeedEmpty until a value has been applied, then
// FeedDegraded.
func (f *Feed) failureState() FeedState {
	if f.current.Load() == nil {
		return FeedEmpty
	}
	return FeedDegraded
}

// transitionState updates the state and emits a state change event if changed.
func (f *Feed) transitionState(ctx context.Context, oldState, newState FeedState) {
	if oldState == newState {
		return
	}
	f.state.Store(int32(newState))
	capitan.Emit(ctx, FeedStateChanged,
		KeyFormID.Field(f.formID),
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
}

// setError stores an error atomically and adds it to the error history.
func (f *Feed) setError(err error) {
	e := err
	f.lastError.Store(&e)
	f.errorHistory.push(f.clock.Now(), err)
}

// watch processes changes from the watcher channel with debouncing.
func (f *Feed) watch(ctx context.Context, changes <-chan []byte) {
	defer func() {
		finalState := f.State()
		capitan.Emit(ctx, FeedStopped,
			KeyFormID.Field(f.formID),
			KeyState.Field(finalState.String()),
		)
		if f.onStop != nil {
			f.onStop(finalState)
		}
	}()

	var (
		timer      clockz.Timer
		pending    []byte
		hasPending bool
	)

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case raw, ok := <-changes:
			if !ok {
				if hasPending {
					_ = f.process(ctx, pending) //nolint:errcheck // Errors stored via setError
				}
				return
			}

			f.received(ctx)
			pending = raw
			hasPending = true

			if timer == nil {
				timer = f.clock.NewTimer(f.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(f.debounce)
			}

		case <-timerC:
			if hasPending {
				_ = f.process(ctx, pending) //nolint:errcheck // Errors stored via setError
				hasPending = false
			}
		}
	}
}
