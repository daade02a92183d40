package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Manifold/internal/domain"
	"Manifold/internal/domain/models"
	"Manifold/internal/services/multiscale"
	"Manifold/pkg/logger"
)

func newAnalysis(t *testing.T, feed *fakeFeed) *AnalysisUseCase {
	t.Helper()
	e, in := pipeline()
	ms, err := multiscale.New(e, in, multiscale.Config{})
	require.NoError(t, err)
	return NewAnalysisUseCase(feed, e, in, ms, nil, logger.Nop(), 500, time.Second)
}

func TestAnalyzeSurfacesFeedErrors(t *testing.T) {
	u := newAnalysis(t, newFakeFeed())

	_, err := u.Analyze(context.Background(), "BTC", models.HorizonShort)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, domain.ErrNoData)

	_, err = u.Analyze(context.Background(), "BTC", models.Horizon("weekly"))
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestInterpretOneShot(t *testing.T) {
	feed := newFakeFeed()
	feed.set(models.HorizonShort, points(spikePrices(100, 70), 5*time.Minute))
	u := newAnalysis(t, feed)

	snap, in, err := u.Interpret(context.Background(), "BTC", models.HorizonShort)
	require.NoError(t, err)
	assert.Equal(t, 100, snap.Len())
	assert.Equal(t, models.PhaseSingularityAlert, in.Phase)
	assert.NotEmpty(t, in.Warning)
}

func TestMultiscaleFansOutPerHorizon(t *testing.T) {
	feed := newFakeFeed()
	for _, h := range []models.Horizon{models.HorizonMicro, models.HorizonShort, models.HorizonMedium, models.HorizonLong} {
		spec, _ := h.Spec()
		feed.set(h, points(flatPrices(60), spec.Granularity))
	}
	u := newAnalysis(t, feed)

	res, err := u.Multiscale(context.Background(), "BTC", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Scored)
	assert.Contains(t, res.Errors, models.HorizonMacro)
	assert.Equal(t, 100.0, res.FractalConsistency)

	res, err = u.Multiscale(context.Background(), "BTC", []models.Horizon{models.HorizonShort, models.HorizonLong})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Scored)
	assert.Empty(t, res.Errors)
}

func TestMultiscaleFailsOnFeedOutage(t *testing.T) {
	feed := newFakeFeed()
	feed.fail(errFeedDown)
	u := newAnalysis(t, feed)

	_, err := u.Multiscale(context.Background(), "BTC", nil)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, errFeedDown)
}
