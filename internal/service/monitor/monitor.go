package monitor

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/andres10976/poop-monitor/internal/model"
	"github.com/andres10976/poop-monitor/internal/service/pushover"
)

var (
	ErrAlreadyRunning = errors.New("monitor already running")
	ErrNotRunning     = errors.New("monitor not running")
)

type tracker interface {
	Touch()
	Elapsed() time.Duration
}

type notifier interface {
	Send(ctx context.Context, message string) (*pushover.Delivery, error)
}

type alertRecorder interface {
	Record(ctx context.Context, evt *model.AlertEvent) error
}

// Config holds the loop timings and the alert text.
type Config struct {
	Timeout       time.Duration
	CheckInterval time.Duration
	Debounce      time.Duration
	Message       string
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, *model.AlertEvent) error { return nil }

type Monitor struct {
	tracker  tracker
	notifier notifier
	journal  alertRecorder
	cfg      Config

	state atomic.Int32

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a monitor. journal may be nil, in which case alert attempts
// are only logged.
func New(tr tracker, n notifier, journal alertRecorder, cfg Config) *Monitor {
	if journal == nil {
		journal = nopRecorder{}
	}
	if cfg.Message == "" {
		cfg.Message = pushover.DefaultMessage
	}
	return &Monitor{
		tracker:  tr,
		notifier: n,
		journal:  journal,
		cfg:      cfg,
	}
}

// Start launches the staleness loop in a background goroutine.
// The loop context derives from context.Background so it outlives ctx;
// use Stop to end it.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return ErrAlreadyRunning
	}

	monCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.state.Store(int32(StateNormal))

	go m.run(monCtx, m.done)
	return nil
}

// Stop ends the loop and waits for it to exit or for ctx to expire.
// An in-flight notification is canceled.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.cancel == nil {
		m.mu.Unlock()
		return ErrNotRunning
	}
	m.cancel()
	m.cancel = nil
	done := m.done
	m.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning returns whether the loop is active.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// State returns the loop's current debounce state.
func (m *Monitor) State() State {
	return State(m.state.Load())
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	slog.Info("monitor started",
		"timeout_secs", int64(m.cfg.Timeout.Seconds()),
		"check_interval_secs", int64(m.cfg.CheckInterval.Seconds()),
		"debounce_secs", int64(m.cfg.Debounce.Seconds()),
	)

	state := StateNormal
	for {
		if state == StateDebouncing {
			slog.Info("starting debounce after alert", "debounce_secs", int64(m.cfg.Debounce.Seconds()))
		}
		if !sleep(ctx, SleepFor(state, m.cfg.CheckInterval, m.cfg.Debounce)) {
			slog.Info("monitor stopped")
			return
		}

		state = Wake(state)
		m.state.Store(int32(state))

		state = m.check(ctx, state)
		m.state.Store(int32(state))
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// check runs one staleness check. A panic is logged and the loop carries
// on in StateNormal.
func (m *Monitor) check(ctx context.Context, state State) (next State) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("monitor check panicked", "error", r, "stack", string(debug.Stack()))
			next = StateNormal
		}
	}()

	elapsed := m.tracker.Elapsed()
	stale := IsStale(elapsed, m.cfg.Timeout)

	result := ResultNone
	if stale {
		slog.Warn("no heartbeat within timeout, sending alert",
			"elapsed_secs", int64(elapsed.Seconds()),
			"timeout_secs", int64(m.cfg.Timeout.Seconds()),
		)
		result = m.alert(ctx, elapsed)
	}

	next, action := Transition(state, stale, result)
	if action == ActionResetTracker {
		m.tracker.Touch()
	}
	return next
}

func (m *Monitor) alert(ctx context.Context, elapsed time.Duration) Result {
	evt := &model.AlertEvent{
		ID:          uuid.New().String(),
		AttemptedAt: time.Now(),
		Elapsed:     elapsed,
	}

	result := ResultDelivered
	d, err := m.notifier.Send(ctx, m.cfg.Message)
	if err != nil {
		slog.Warn("failed to send alert", "error", err)
		evt.Error = err.Error()
		result = ResultFailed
	} else {
		var request string
		if d != nil {
			evt.StatusCode = d.StatusCode
			request = d.Request
		}
		evt.Delivered = true
		slog.Info("alert sent", "status", evt.StatusCode, "request", request)
	}

	m.record(evt)
	return result
}

func (m *Monitor) record(evt *model.AlertEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.journal.Record(ctx, evt); err != nil {
		slog.Error("failed to record alert event", "error", err, "id", evt.ID)
	}
}
