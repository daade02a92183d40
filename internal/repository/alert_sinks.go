package repository

import (
	"context"
	"fmt"

	"Manifold/internal/domain/models"
	pkghttp "Manifold/pkg/http"
	applogger "Manifold/pkg/logger"
)

// DefaultAlertTopic is the Kafka topic alerts are published to.
const DefaultAlertTopic = "manifold.alerts"

// Publisher is the part of pkg/kafka.Producer the alert sink needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// KafkaAlertSink publishes alerts keyed by symbol|horizon so that one key's
// alerts stay ordered on one partition.
type KafkaAlertSink struct {
	pub   Publisher
	topic string
}

func NewKafkaAlertSink(pub Publisher, topic string) *KafkaAlertSink {
	if topic == "" {
		topic = DefaultAlertTopic
	}
	return &KafkaAlertSink{pub: pub, topic: topic}
}

func (s *KafkaAlertSink) Publish(ctx context.Context, evt models.AlertEvent) error {
	key := models.MonitorKey{Symbol: evt.Symbol, Horizon: evt.Horizon}.String()
	return s.pub.Publish(ctx, s.topic, []byte(key), evt)
}

// WebhookAlertSink POSTs each alert as JSON.
type WebhookAlertSink struct {
	client  *pkghttp.Client
	url     string
	headers map[string]string
}

func NewWebhookAlertSink(client *pkghttp.Client, url string, headers map[string]string) *WebhookAlertSink {
	if client == nil {
		client = pkghttp.NewClient()
	}
	return &WebhookAlertSink{client: client, url: url, headers: headers}
}

func (s *WebhookAlertSink) Publish(ctx context.Context, evt models.AlertEvent) error {
	if err := s.client.PostJSON(ctx, s.url, s.headers, evt); err != nil {
		return fmt.Errorf("webhook %s: %w", evt.Kind, err)
	}
	return nil
}

// LogAlertSink writes alerts to the structured log.
type LogAlertSink struct {
	l *applogger.Logger
}

func NewLogAlertSink(l *applogger.Logger) *LogAlertSink {
	if l == nil {
		l = applogger.Nop()
	}
	return &LogAlertSink{l: l.With(applogger.String("component", "alerts"))}
}

func (s *LogAlertSink) Publish(_ context.Context, evt models.AlertEvent) error {
	fields := []applogger.Field{
		applogger.String("id", evt.ID),
		applogger.String("kind", string(evt.Kind)),
		applogger.String("symbol", evt.Symbol),
		applogger.String("horizon", string(evt.Horizon)),
		applogger.Float64("price", evt.Price),
	}
	switch evt.Level {
	case models.LevelCritical:
		s.l.Error(evt.Message, fields...)
	case models.LevelWarning:
		s.l.Warn(evt.Message, fields...)
	default:
		s.l.Info(evt.Message, fields...)
	}
	return nil
}
