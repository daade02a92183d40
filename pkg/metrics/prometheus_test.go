package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Manifold/internal/domain/models"
	domrepo "Manifold/internal/domain/repository"
)

var _ domrepo.Metrics = (*Recorder)(nil)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordPoll("BTCUSD", models.HorizonShort, "ok")
	r.RecordPoll("BTCUSD", models.HorizonShort, "ok")
	r.RecordPoll("BTCUSD", models.HorizonShort, "feed_error")
	r.RecordAlert(models.AlertSingularity, models.LevelCritical)
	r.RecordError("sink")
	r.RecordLastPrice("BTCUSD", 64000.5)
	r.RecordLatency("analyze", 0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.polls.WithLabelValues("BTCUSD", "short", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.polls.WithLabelValues("BTCUSD", "short", "feed_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.alerts.WithLabelValues("singularity_detected", "critical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("sink")))
	assert.Equal(t, 64000.5, testutil.ToFloat64(r.lastPrice.WithLabelValues("BTCUSD")))

	n, err := testutil.GatherAndCount(reg, "manifold_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
