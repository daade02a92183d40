package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Manifold/internal/domain/models"
)

func TestAlertHistoryRing(t *testing.T) {
	h := NewAlertHistory(3)
	assert.Empty(t, h.Recent("", 10))

	for i := 0; i < 5; i++ {
		sym := "BTC"
		if i%2 == 1 {
			sym = "ETH"
		}
		require.NoError(t, h.Publish(context.Background(), models.AlertEvent{ID: fmt.Sprint(i), Symbol: sym}))
	}

	assert.Equal(t, 3, h.Len())
	ids := func(evts []models.AlertEvent) []string {
		out := make([]string, len(evts))
		for i, e := range evts {
			out[i] = e.ID
		}
		return out
	}
	assert.Equal(t, []string{"4", "3", "2"}, ids(h.Recent("", 0)))
	assert.Equal(t, []string{"4", "3"}, ids(h.Recent("", 2)))
	assert.Equal(t, []string{"4", "2"}, ids(h.Recent("BTC", 10)))
	assert.Equal(t, []string{"3"}, ids(h.Recent("ETH", 10)))
}

func TestAlertHistoryDefaultSize(t *testing.T) {
	h := NewAlertHistory(0)
	for i := 0; i < DefaultHistorySize+10; i++ {
		require.NoError(t, h.Publish(context.Background(), models.AlertEvent{}))
	}
	assert.Equal(t, DefaultHistorySize, h.Len())
}
