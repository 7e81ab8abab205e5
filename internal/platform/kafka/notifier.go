package kafka

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/palette-api/internal/config"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/phrazzld/palette-api/internal/platform/logger"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// EventInvitationAccepted is the type field of invitation messages.
const EventInvitationAccepted = "diary.invitation_accepted"

// MessageWriter is the subset of *kafka.Writer the notifier needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// envelope is the JSON value of every published message.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Notifier publishes diary events to a Kafka topic. Messages are keyed by
// the recipient so that all events of one user land on the same partition.
type Notifier struct {
	writer MessageWriter
	logger *slog.Logger
}

// NewNotifier creates a Notifier writing through w.
func NewNotifier(w MessageWriter, log *slog.Logger) (*Notifier, error) {
	if w == nil {
		return nil, errors.New("kafka writer cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{writer: w, logger: log.With("component", "kafka_notifier")}, nil
}

// NewWriter builds a synchronous *kafka.Writer from cfg. SASL/PLAIN over TLS
// is used when a username is configured.
func NewWriter(cfg config.KafkaConfig) (*kafka.Writer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	if cfg.Username != "" {
		w.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: cfg.Username, Password: cfg.Password},
			TLS:  &tls.Config{MinVersion: tls.VersionTLS12},
		}
	}
	return w, nil
}

// InvitationAccepted publishes the event keyed by the diary admin, or by
// the diary when it has no admin.
func (n *Notifier) InvitationAccepted(ctx context.Context, event domain.InvitationAccepted) error {
	key := event.DiaryID.String()
	if event.AdminID != nil {
		key = event.AdminID.String()
	}

	value, err := json.Marshal(envelope{Type: EventInvitationAccepted, Payload: event})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", EventInvitationAccepted, err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(EventInvitationAccepted)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", EventInvitationAccepted, err)
	}

	logger.FromContextOrDefault(ctx, n.logger).Debug("published event",
		"type", EventInvitationAccepted,
		"diary_id", event.DiaryID)
	return nil
}

// Close flushes and closes the underlying writer.
func (n *Notifier) Close() error {
	return n.writer.Close()
}
