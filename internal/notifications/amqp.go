package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"reelsmith/internal/logging"
)

// AMQPConfig describes the broker target for run events.
type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// amqpChannel is the subset of *amqp.Channel the publisher needs.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// amqpDialer opens a channel plus a closer for the underlying connection.
type amqpDialer func(url string) (amqpChannel, func() error, error)

// AMQPPublisher publishes Message values as JSON to a topic exchange.
// The connection is opened lazily on first publish and reopened after
// a failed publish.
type AMQPPublisher struct {
	cfg    AMQPConfig
	logger *slog.Logger
	dial   amqpDialer

	mu        sync.Mutex
	channel   amqpChannel
	closeConn func() error
}

// NewAMQPPublisher constructs a publisher; no connection is made until the
// first Publish call.
func NewAMQPPublisher(cfg AMQPConfig, logger *slog.Logger) *AMQPPublisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AMQPPublisher{
		cfg:    cfg,
		logger: logger.With(logging.String("component", "amqp-publisher")),
		dial:   dialAMQP,
	}
}

func dialAMQP(url string) (amqpChannel, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, conn.Close, nil
}

// Publish sends msg to the configured exchange using the event name as a
// routing key suffix, e.g. "content.run.completed".
func (p *AMQPPublisher) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode amqp event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.ensureChannelLocked()
	if err != nil {
		return err
	}

	key := p.routingKey(msg.Event)
	err = ch.PublishWithContext(ctx, p.cfg.Exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.Timestamp,
		Type:         string(msg.Event),
		MessageId:    msg.RunID,
		Body:         body,
	})
	if err != nil {
		p.resetLocked()
		return fmt.Errorf("publish amqp event: %w", err)
	}
	p.logger.Debug("amqp event published",
		logging.String(logging.FieldEventType, string(msg.Event)),
		logging.String("routing_key", key),
		logging.String(logging.FieldRunID, msg.RunID),
	)
	return nil
}

func (p *AMQPPublisher) routingKey(event Event) string {
	base := strings.Trim(strings.TrimSpace(p.cfg.RoutingKey), ".")
	suffix := strings.TrimPrefix(string(event), "run.")
	if base == "" {
		return suffix
	}
	return base + "." + suffix
}

func (p *AMQPPublisher) ensureChannelLocked() (amqpChannel, error) {
	if p.channel != nil {
		return p.channel, nil
	}
	ch, closeConn, err := p.dial(p.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect amqp broker: %w", err)
	}
	if p.cfg.Exchange != "" {
		if err := ch.ExchangeDeclare(p.cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			if closeConn != nil {
				_ = closeConn()
			}
			return nil, fmt.Errorf("declare amqp exchange %q: %w", p.cfg.Exchange, err)
		}
	}
	p.channel = ch
	p.closeConn = closeConn
	return ch, nil
}

func (p *AMQPPublisher) resetLocked() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.closeConn != nil {
		_ = p.closeConn()
	}
	p.channel = nil
	p.closeConn = nil
}

// Close releases the broker connection if one is open.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.closeConn != nil {
		if cerr := p.closeConn(); cerr != nil && err == nil {
			err = cerr
		}
	}
	p.channel = nil
	p.closeConn = nil
	return err
}
