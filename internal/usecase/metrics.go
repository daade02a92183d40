package usecase

import (
	"Manifold/internal/domain/models"
	domrepo "Manifold/internal/domain/repository"
)

type nopMetrics struct{}

func (nopMetrics) RecordPoll(string, models.Horizon, string)       {}
func (nopMetrics) RecordAlert(models.AlertKind, models.AlertLevel) {}
func (nopMetrics) RecordError(string)                              {}
func (nopMetrics) RecordLastPrice(string, float64)                 {}
func (nopMetrics) RecordLatency(string, float64)                   {}

func metricsOrNop(m domrepo.Metrics) domrepo.Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
