package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"Manifold/internal/domain"
	"Manifold/internal/domain/models"
	"Manifold/internal/services/interpreter"
	"Manifold/internal/services/manifold"
)

var t0 = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

type fakeFeed struct {
	mu     sync.Mutex
	series map[models.Horizon][]models.PricePoint
	err    error
	block  bool
	calls  int
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{series: make(map[models.Horizon][]models.PricePoint)}
}

func (f *fakeFeed) set(h models.Horizon, points []models.PricePoint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.series[h] = points
}

func (f *fakeFeed) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeFeed) Fetch(ctx context.Context, _ string, h models.Horizon, limit int) ([]models.PricePoint, error) {
	f.mu.Lock()
	f.calls++
	block, err := f.block, f.err
	points, ok := f.series[h]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if !ok || len(points) == 0 {
		return nil, domain.ErrNoData
	}
	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	return append([]models.PricePoint(nil), points...), nil
}

type fakeStore struct {
	mu      sync.Mutex
	states  map[models.MonitorKey]*models.MonitorState
	saves   int
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{states: make(map[models.MonitorKey]*models.MonitorState)}
}

func (s *fakeStore) Load(_ context.Context, key models.MonitorKey) (*models.MonitorState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[key]
	return st, ok, nil
}

func (s *fakeStore) Save(_ context.Context, key models.MonitorKey, state *models.MonitorState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.states[key] = state
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key models.MonitorKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, key)
	return nil
}

func (s *fakeStore) get(key models.MonitorKey) *models.MonitorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[key]
}

type recordingSink struct {
	mu     sync.Mutex
	events []models.AlertEvent
	err    error
}

func (s *recordingSink) Publish(_ context.Context, evt models.AlertEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, evt)
	return nil
}

func (s *recordingSink) snapshot() []models.AlertEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AlertEvent(nil), s.events...)
}

func (s *recordingSink) count(kind models.AlertKind) int {
	n := 0
	for _, e := range s.snapshot() {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

var errFeedDown = errors.New("feed down")

func points(prices []float64, step time.Duration) []models.PricePoint {
	out := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = models.PricePoint{Timestamp: t0.Add(time.Duration(i) * step), Price: p}
	}
	return out
}

func flatPrices(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100
	}
	return out
}

func spikePrices(n, at int) []float64 {
	out := flatPrices(n)
	out[at] = 140
	return out
}

func pipeline() (*manifold.Engine, *interpreter.Interpreter) {
	e, err := manifold.NewEngine(manifold.DefaultConfig())
	if err != nil {
		panic(err)
	}
	in, err := interpreter.New(interpreter.DefaultThresholds())
	if err != nil {
		panic(err)
	}
	return e, in
}

func detectorConfig() DetectorConfig {
	th := interpreter.DefaultThresholds()
	return DetectorConfig{HighTension: th.HighTension, EntropySpike: th.EntropySpike, ProximityPct: 0.5, MatchPct: 1}
}
