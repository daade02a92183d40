package usecase

import (
	"context"
	"sync"

	"Manifold/internal/domain/models"
	domrepo "Manifold/internal/domain/repository"
)

// DefaultHistorySize bounds AlertHistory when no capacity is given.
const DefaultHistorySize = 1000

// AlertHistory keeps the most recent alerts in a fixed-size ring. It is an
// AlertSink so monitors can feed it like any other sink.
type AlertHistory struct {
	mu   sync.RWMutex
	buf  []models.AlertEvent
	next int
	full bool
}

func NewAlertHistory(capacity int) *AlertHistory {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &AlertHistory{buf: make([]models.AlertEvent, capacity)}
}

// Publish records evt, overwriting the oldest entry once full.
func (h *AlertHistory) Publish(_ context.Context, evt models.AlertEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf[h.next] = evt
	h.next = (h.next + 1) % len(h.buf)
	if h.next == 0 {
		h.full = true
	}
	return nil
}

// Recent returns up to limit alerts, newest first. An empty symbol matches
// every symbol; limit <= 0 means no limit.
func (h *AlertHistory) Recent(symbol string, limit int) []models.AlertEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()

	size := h.next
	if h.full {
		size = len(h.buf)
	}
	out := make([]models.AlertEvent, 0)
	for k := 0; k < size; k++ {
		i := (h.next - 1 - k + len(h.buf)) % len(h.buf)
		evt := h.buf[i]
		if symbol != "" && evt.Symbol != symbol {
			continue
		}
		out = append(out, evt)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Len returns the number of stored alerts.
func (h *AlertHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.full {
		return len(h.buf)
	}
	return h.next
}

var _ domrepo.AlertSink = (*AlertHistory)(nil)
