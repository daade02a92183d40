package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Manifold/internal/domain"
	"Manifold/internal/domain/models"
	"Manifold/pkg/cache"
	pkghttp "Manifold/pkg/http"
)

var t0 = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func TestCacheSnapshotStoreRoundTrip(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	store := NewCacheSnapshotStore(mem, 0)
	ctx := context.Background()
	key := models.MonitorKey{Symbol: "BTCUSD", Horizon: models.HorizonShort}

	st, ok, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, st)

	in := &models.MonitorState{
		SnapshotRef: "ref-1",
		Snapshot: &models.MetricsSnapshot{
			Symbol:        "BTCUSD",
			Horizon:       models.HorizonShort,
			Prices:        []float64{100, 101, 102},
			Singularities: []models.Singularity{{Index: 1, Price: 101}},
		},
		Interpretation: &models.Interpretation{Phase: models.PhaseEquilibrium, Confidence: 62.5},
		UpdatedAt:      t0,
	}
	require.NoError(t, store.Save(ctx, key, in))

	st, ok, err = store.Load(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ref-1", st.SnapshotRef)
	assert.Equal(t, []float64{100, 101, 102}, st.Snapshot.Prices)
	assert.Equal(t, 1, st.Snapshot.Singularities[0].Index)
	assert.Equal(t, models.PhaseEquilibrium, st.Interpretation.Phase)
	assert.True(t, st.UpdatedAt.Equal(t0))

	other := models.MonitorKey{Symbol: "BTCUSD", Horizon: models.HorizonLong}
	_, ok, err = store.Load(ctx, other)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Delete(ctx, key))
	_, ok, err = store.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, store.Save(ctx, key, nil))
}

func TestMemorySnapshotStoreKeepsEveryKey(t *testing.T) {
	store := NewMemorySnapshotStore()
	ctx := context.Background()

	const keys = 5000
	for i := 0; i < keys; i++ {
		key := models.MonitorKey{Symbol: fmt.Sprintf("SYM%d", i), Horizon: models.HorizonShort}
		require.NoError(t, store.Save(ctx, key, &models.MonitorState{SnapshotRef: key.String()}))
	}
	assert.Equal(t, keys, store.Len())

	first := models.MonitorKey{Symbol: "SYM0", Horizon: models.HorizonShort}
	st, ok, err := store.Load(ctx, first)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.String(), st.SnapshotRef)

	st.SnapshotRef = "mutated"
	again, _, err := store.Load(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first.String(), again.SnapshotRef)

	require.NoError(t, store.Delete(ctx, first))
	_, ok, err = store.Load(ctx, first)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Error(t, store.Save(ctx, first, nil))
}

type scriptedFeed struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (f *scriptedFeed) Fetch(_ context.Context, _ string, _ models.Horizon, _ int) ([]models.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return []models.PricePoint{{Timestamp: t0, Price: 1}}, nil
}

func fastRetry() ResilientConfig {
	return ResilientConfig{
		RequestsPerSec:  1000,
		Burst:           10,
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}
}

func TestResilientFeedRetriesTransientErrors(t *testing.T) {
	inner := &scriptedFeed{errs: []error{errors.New("conn reset"), errors.New("timeout")}}
	feed := NewResilientFeed(inner, fastRetry(), nil)

	points, err := feed.Fetch(context.Background(), "ETH", models.HorizonShort, 10)
	require.NoError(t, err)
	assert.Len(t, points, 1)
	assert.Equal(t, 3, inner.calls)
}

func TestResilientFeedGivesUpAfterMaxRetries(t *testing.T) {
	boom := errors.New("down")
	inner := &scriptedFeed{errs: []error{boom, boom, boom, boom, boom}}
	feed := NewResilientFeed(inner, fastRetry(), nil)

	_, err := feed.Fetch(context.Background(), "ETH", models.HorizonShort, 10)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, inner.calls)
}

func TestResilientFeedDoesNotRetryPermanentErrors(t *testing.T) {
	for _, sentinel := range []error{domain.ErrNoData, domain.ErrRateLimited} {
		inner := &scriptedFeed{errs: []error{sentinel}}
		feed := NewResilientFeed(inner, fastRetry(), nil)

		_, err := feed.Fetch(context.Background(), "ETH", models.HorizonShort, 10)
		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, 1, inner.calls)
	}
}

func TestResilientFeedRateLimits(t *testing.T) {
	inner := &scriptedFeed{}
	cfg := fastRetry()
	cfg.RequestsPerSec = 0.001
	cfg.Burst = 1
	feed := NewResilientFeed(inner, cfg, nil)

	_, err := feed.Fetch(context.Background(), "ETH", models.HorizonShort, 10)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = feed.Fetch(ctx, "ETH", models.HorizonShort, 10)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 1, inner.calls)
}

type capturePublisher struct {
	topic string
	key   []byte
	value interface{}
}

func (p *capturePublisher) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.topic, p.key, p.value = topic, key, value
	return nil
}

func sampleAlert() models.AlertEvent {
	return models.AlertEvent{
		ID:        "a1",
		Kind:      models.AlertSingularity,
		Level:     models.LevelCritical,
		Symbol:    "BTCUSD",
		Horizon:   models.HorizonMedium,
		Price:     64000,
		Message:   "singularity at index 42",
		EmittedAt: t0,
	}
}

func TestKafkaAlertSinkKeysBySymbolAndHorizon(t *testing.T) {
	pub := &capturePublisher{}
	sink := NewKafkaAlertSink(pub, "")
	evt := sampleAlert()

	require.NoError(t, sink.Publish(context.Background(), evt))
	assert.Equal(t, DefaultAlertTopic, pub.topic)
	assert.Equal(t, "BTCUSD|medium", string(pub.key))
	assert.Equal(t, evt, pub.value)
}

func TestWebhookAlertSinkPostsJSON(t *testing.T) {
	var got models.AlertEvent
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewWebhookAlertSink(pkghttp.NewClient(pkghttp.WithTimeout(time.Second)), srv.URL,
		map[string]string{"Authorization": "Bearer t"})
	require.NoError(t, sink.Publish(context.Background(), sampleAlert()))
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, models.AlertSingularity, got.Kind)
	assert.Equal(t, "Bearer t", auth)
}

func TestWebhookAlertSinkReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down\n"))
	}))
	defer srv.Close()

	sink := NewWebhookAlertSink(nil, srv.URL, nil)
	err := sink.Publish(context.Background(), sampleAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")

	var se *pkghttp.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Equal(t, "upstream down", se.Body)
	assert.True(t, se.Temporary())
}

func TestLogAlertSinkNeverFails(t *testing.T) {
	sink := NewLogAlertSink(nil)
	for _, lvl := range []models.AlertLevel{models.LevelInfo, models.LevelWarning, models.LevelCritical} {
		evt := sampleAlert()
		evt.Level = lvl
		assert.NoError(t, sink.Publish(context.Background(), evt))
	}
}

func TestTableForHorizon(t *testing.T) {
	cases := map[models.Horizon]string{
		models.HorizonMicro:  "mf.candles_1m",
		models.HorizonShort:  "mf.candles_5m",
		models.HorizonMedium: "mf.candles_1h",
		models.HorizonLong:   "mf.candles_1d",
		models.HorizonMacro:  "mf.candles_1w",
	}
	for h, want := range cases {
		got, err := tableForHorizon("mf", h)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := tableForHorizon("mf", "hourly")
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}
