package notifications

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"reelsmith/internal/config"
	"reelsmith/internal/content"
	"reelsmith/internal/services"
)

// Event names a run milestone.
type Event string

const (
	EventRunCompleted Event = "run.completed"
	EventRunFailed    Event = "run.failed"
	EventTest         Event = "test"
)

// Message is the payload delivered for an event.
type Message struct {
	Event     Event           `json:"event"`
	RunID     string          `json:"run_id,omitempty"`
	Record    *content.Record `json:"record,omitempty"`
	Error     string          `json:"error,omitempty"`
	Kind      string          `json:"kind,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// RunCompleted builds the message for a successful run.
func RunCompleted(runID string, record content.Record) Message {
	return Message{Event: EventRunCompleted, RunID: runID, Record: &record, Timestamp: time.Now().UTC()}
}

// RunFailed builds the message for a failed run.
func RunFailed(runID string, err error) Message {
	msg := Message{Event: EventRunFailed, RunID: runID, Kind: services.Kind(err), Timestamp: time.Now().UTC()}
	if err != nil {
		msg.Error = strings.TrimSpace(err.Error())
	}
	return msg
}

// TestMessage builds a connectivity test message.
func TestMessage() Message {
	return Message{Event: EventTest, Timestamp: time.Now().UTC()}
}

// Service delivers messages.
type Service interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// NewService builds the configured transports. When no transport is
// configured, a noop implementation is returned.
func NewService(cfg *config.Config, logger *slog.Logger) Service {
	var targets []Service
	if topic := strings.TrimSpace(cfg.Notifications.NtfyTopic); topic != "" {
		timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
		targets = append(targets, newNtfyService(topic, timeout))
	}
	if amqpURL := strings.TrimSpace(cfg.Notifications.AMQPURL); amqpURL != "" {
		targets = append(targets, NewAMQPPublisher(AMQPConfig{
			URL:        amqpURL,
			Exchange:   cfg.Notifications.AMQPExchange,
			RoutingKey: cfg.Notifications.AMQPRoutingKey,
		}, logger))
	}
	switch len(targets) {
	case 0:
		return noopService{}
	case 1:
		return targets[0]
	default:
		return multiService(targets)
	}
}

type multiService []Service

func (m multiService) Publish(ctx context.Context, msg Message) error {
	var errs []error
	for _, svc := range m {
		if err := svc.Publish(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiService) Close() error {
	var errs []error
	for _, svc := range m {
		if err := svc.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewNoop returns a Service that discards every message.
func NewNoop() Service { return noopService{} }

type noopService struct{}

func (noopService) Publish(context.Context, Message) error { return nil }
func (noopService) Close() error                           { return nil }
