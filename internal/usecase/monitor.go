package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"Manifold/internal/domain"
	"Manifold/internal/domain/models"
	domrepo "Manifold/internal/domain/repository"
	domsvc "Manifold/internal/domain/service"
	"Manifold/pkg/logger"
)

// ErrAlreadyWatching is returned when a key already has a running loop.
var ErrAlreadyWatching = errors.New("monitor already running")

// MonitorConfig configures every monitoring loop.
type MonitorConfig struct {
	Interval     time.Duration `yaml:"interval" default:"30s" validate:"gt=0"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" default:"10s" validate:"gt=0"`
	Window       int           `yaml:"window" default:"500" validate:"gte=12"`
	ProximityPct float64       `yaml:"proximity_pct" default:"0.5" validate:"gt=0"`
	MatchPct     float64       `yaml:"match_pct" default:"1" validate:"gt=0"`
	PhaseAlerts  bool          `yaml:"phase_alerts"`
}

// AlertFunc receives the alerts of one watched key.
type AlertFunc func(models.AlertEvent)

// Monitor runs one sequential polling loop per (symbol, horizon) key. Each
// loop only touches its own key in the store, so loops never contend.
type Monitor struct {
	feed     domrepo.PriceFeed
	analyzer domsvc.Analyzer
	interp   domsvc.Interpreter
	store    domrepo.SnapshotStore
	detector *TransitionDetector
	sinks    []domrepo.AlertSink
	metrics  domrepo.Metrics
	log      *logger.Logger
	cfg      MonitorConfig
	now      func() time.Time

	mu    sync.Mutex
	loops map[models.MonitorKey]*Handle
}

type MonitorOption func(*Monitor)

// WithSinks registers sinks that receive every alert of every loop.
func WithSinks(sinks ...domrepo.AlertSink) MonitorOption {
	return func(m *Monitor) {
		for _, s := range sinks {
			if s != nil {
				m.sinks = append(m.sinks, s)
			}
		}
	}
}

// WithMonitorLogger sets the monitor logger.
func WithMonitorLogger(l *logger.Logger) MonitorOption {
	return func(m *Monitor) {
		if l != nil {
			m.log = l
		}
	}
}

// WithMonitorMetrics sets the metrics recorder.
func WithMonitorMetrics(r domrepo.Metrics) MonitorOption {
	return func(m *Monitor) { m.metrics = metricsOrNop(r) }
}

// WithClock replaces time.Now for emitted timestamps.
func WithClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMonitor creates a new Monitor. The store holds the last committed state
// per key and is owned by this monitor.
func NewMonitor(
	feed domrepo.PriceFeed,
	analyzer domsvc.Analyzer,
	interp domsvc.Interpreter,
	store domrepo.SnapshotStore,
	detector *TransitionDetector,
	cfg MonitorConfig,
	opts ...MonitorOption,
) *Monitor {
	m := &Monitor{
		feed:     feed,
		analyzer: analyzer,
		interp:   interp,
		store:    store,
		detector: detector,
		metrics:  nopMetrics{},
		log:      logger.Nop(),
		cfg:      cfg,
		now:      time.Now,
		loops:    make(map[models.MonitorKey]*Handle),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.String("component", "monitor"))
	return m
}

// stateDeleteTimeout bounds the store call made when a loop exits.
const stateDeleteTimeout = 5 * time.Second

// Handle controls one running loop.
type Handle struct {
	key    models.MonitorKey
	cancel context.CancelFunc
	done   chan struct{}
}

// Key returns the watched key.
func (h *Handle) Key() models.MonitorKey { return h.key }

// Stop cancels the loop, including a poll in flight, and waits for it to
// exit. The key's stored state is discarded on exit. It is safe to call more
// than once.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Done is closed once the loop has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Watch starts polling symbol at horizon until ctx is done or the handle is
// stopped. The first poll runs immediately.
func (m *Monitor) Watch(ctx context.Context, symbol string, h models.Horizon, onAlert AlertFunc) (*Handle, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", domain.ErrMalformedInput)
	}
	if !models.IsValidHorizon(h) {
		return nil, fmt.Errorf("%w: unknown horizon %q", domain.ErrMalformedInput, h)
	}
	key := models.MonitorKey{Symbol: symbol, Horizon: h}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loops[key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyWatching, key)
	}
	loopCtx, cancel := context.WithCancel(ctx)
	handle := &Handle{key: key, cancel: cancel, done: make(chan struct{})}
	m.loops[key] = handle

	go m.run(loopCtx, handle, onAlert)
	m.log.Info("monitor started", logger.String("key", key.String()), logger.Duration("interval", m.cfg.Interval))
	return handle, nil
}

// Unwatch stops the loop for key, if any, and forgets its stored state even
// when no loop is running.
func (m *Monitor) Unwatch(ctx context.Context, key models.MonitorKey) error {
	m.mu.Lock()
	handle := m.loops[key]
	m.mu.Unlock()
	if handle != nil {
		handle.Stop()
	}
	return m.store.Delete(ctx, key)
}

// Active lists the keys with a running loop.
func (m *Monitor) Active() []models.MonitorKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]models.MonitorKey, 0, len(m.loops))
	for k := range m.loops {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a].String() < keys[b].String() })
	return keys
}

// StopAll stops every loop and waits for them to exit.
func (m *Monitor) StopAll() {
	m.mu.Lock()
	handles := make([]*Handle, 0, len(m.loops))
	for _, h := range m.loops {
		handles = append(handles, h)
	}
	m.mu.Unlock()
	for _, h := range handles {
		h.Stop()
	}
}

func (m *Monitor) run(ctx context.Context, h *Handle, onAlert AlertFunc) {
	defer func() {
		// State belongs to the loop; drop it before the key can be watched again.
		dctx, cancel := context.WithTimeout(context.Background(), stateDeleteTimeout)
		if err := m.store.Delete(dctx, h.key); err != nil {
			m.log.Warn("monitor state not discarded", logger.String("key", h.key.String()), logger.Error(err))
		}
		cancel()

		m.mu.Lock()
		if m.loops[h.key] == h {
			delete(m.loops, h.key)
		}
		m.mu.Unlock()
		close(h.done)
		m.log.Info("monitor stopped", logger.String("key", h.key.String()))
	}()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	stale := false
	for {
		if _, err := m.PollOnce(ctx, h.key, onAlert); err != nil {
			if ctx.Err() != nil {
				return
			}
			if !stale {
				stale = true
				m.deliver(ctx, onAlert, m.feedEvent(h.key, models.AlertFeedStale, models.LevelWarning, err.Error()))
			}
		} else if stale {
			stale = false
			m.deliver(ctx, onAlert, m.feedEvent(h.key, models.AlertFeedRecovered, models.LevelInfo, "feed recovered"))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// PollOnce runs one fetch-compute-compare cycle for key and returns the
// alerts it emitted. State is committed only after the whole cycle succeeds,
// so a failed or cancelled poll leaves the previous state in place.
func (m *Monitor) PollOnce(ctx context.Context, key models.MonitorKey, onAlert AlertFunc) ([]models.AlertEvent, error) {
	start := m.now()
	events, err := m.poll(ctx, key)
	if err != nil {
		m.metrics.RecordPoll(key.Symbol, key.Horizon, "error")
		if ctx.Err() == nil {
			m.log.Warn("poll failed", logger.String("key", key.String()), logger.Error(err))
		}
		return nil, err
	}
	m.metrics.RecordPoll(key.Symbol, key.Horizon, "ok")
	m.metrics.RecordLatency("poll", m.now().Sub(start).Seconds())

	m.deliver(ctx, onAlert, events...)
	return events, nil
}

func (m *Monitor) poll(ctx context.Context, key models.MonitorKey) ([]models.AlertEvent, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, m.cfg.FetchTimeout)
	points, err := m.feed.Fetch(fetchCtx, key.Symbol, key.Horizon, m.cfg.Window)
	cancel()
	if err != nil {
		m.metrics.RecordError("fetch")
		return nil, fmt.Errorf("%w: fetch %s: %w", domain.ErrUpstreamUnavailable, key, err)
	}

	snap, err := m.analyzer.Analyze(key.Symbol, key.Horizon, points)
	if err != nil {
		m.metrics.RecordError("analyze")
		return nil, fmt.Errorf("analyze %s: %w", key, err)
	}
	in, err := m.interp.Interpret(snap)
	if err != nil {
		m.metrics.RecordError("interpret")
		return nil, fmt.Errorf("interpret %s: %w", key, err)
	}
	m.metrics.RecordLastPrice(key.Symbol, snap.LastPrice())

	prev, ok, err := m.store.Load(ctx, key)
	if err != nil {
		m.metrics.RecordError("store_load")
		return nil, fmt.Errorf("load state %s: %w", key, err)
	}
	if !ok {
		prev = nil
	}
	events := m.detector.Detect(prev, snap, in)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	state := &models.MonitorState{
		SnapshotRef:    uuid.NewString(),
		Snapshot:       snap,
		Interpretation: &in,
		UpdatedAt:      m.now().UTC(),
	}
	if err := m.store.Save(ctx, key, state); err != nil {
		m.metrics.RecordError("store_save")
		return nil, fmt.Errorf("save state %s: %w", key, err)
	}

	for i := range events {
		events[i].ID = uuid.NewString()
		events[i].SnapshotRef = state.SnapshotRef
		events[i].EmittedAt = state.UpdatedAt
	}
	return events, nil
}

func (m *Monitor) feedEvent(key models.MonitorKey, kind models.AlertKind, level models.AlertLevel, msg string) models.AlertEvent {
	return models.AlertEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Level:     level,
		Symbol:    key.Symbol,
		Horizon:   key.Horizon,
		Message:   msg,
		EmittedAt: m.now().UTC(),
	}
}

// deliver hands events to the loop callback and every sink. A failing sink
// is logged and does not stop delivery to the others.
func (m *Monitor) deliver(ctx context.Context, onAlert AlertFunc, events ...models.AlertEvent) {
	for _, evt := range events {
		m.metrics.RecordAlert(evt.Kind, evt.Level)
		if onAlert != nil {
			onAlert(evt)
		}
		for _, s := range m.sinks {
			if err := s.Publish(ctx, evt); err != nil {
				m.metrics.RecordError("sink")
				m.log.Error("alert sink failed", logger.String("kind", string(evt.Kind)), logger.String("symbol", evt.Symbol), logger.Error(err))
			}
		}
	}
}
