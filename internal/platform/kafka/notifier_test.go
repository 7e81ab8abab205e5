package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/palette-api/internal/config"
	"github.com/phrazzld/palette-api/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNotifier_InvitationAccepted(t *testing.T) {
	w := &fakeWriter{}
	n, err := NewNotifier(w, nil)
	require.NoError(t, err)

	admin := uuid.New()
	event := domain.InvitationAccepted{
		DiaryID:    uuid.New(),
		DiaryTitle: "us",
		AdminID:    &admin,
		InviteeID:  uuid.New(),
		OccurredAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, n.InvitationAccepted(context.Background(), event))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, admin.String(), string(msg.Key))
	assert.Equal(t, event.OccurredAt, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, EventInvitationAccepted, string(msg.Headers[0].Value))

	var decoded struct {
		Type    string                    `json:"type"`
		Payload domain.InvitationAccepted `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, EventInvitationAccepted, decoded.Type)
	assert.Equal(t, event.DiaryID, decoded.Payload.DiaryID)
	assert.Equal(t, event.InviteeID, decoded.Payload.InviteeID)
}

func TestNotifier_KeyFallsBackToDiary(t *testing.T) {
	w := &fakeWriter{}
	n, err := NewNotifier(w, nil)
	require.NoError(t, err)

	event := domain.InvitationAccepted{DiaryID: uuid.New(), InviteeID: uuid.New()}
	require.NoError(t, n.InvitationAccepted(context.Background(), event))

	assert.Equal(t, event.DiaryID.String(), string(w.messages[0].Key))
}

func TestNotifier_WriteError(t *testing.T) {
	boom := errors.New("leader not available")
	n, err := NewNotifier(&fakeWriter{err: boom}, nil)
	require.NoError(t, err)

	err = n.InvitationAccepted(context.Background(), domain.InvitationAccepted{DiaryID: uuid.New()})
	assert.ErrorIs(t, err, boom)
}

func TestNotifier_Close(t *testing.T) {
	w := &fakeWriter{}
	n, err := NewNotifier(w, nil)
	require.NoError(t, err)

	require.NoError(t, n.Close())
	assert.True(t, w.closed)
}

func TestNewNotifier_NilWriter(t *testing.T) {
	_, err := NewNotifier(nil, nil)
	assert.Error(t, err)
}

func TestNewWriter(t *testing.T) {
	t.Run("no brokers", func(t *testing.T) {
		_, err := NewWriter(config.KafkaConfig{})
		assert.Error(t, err)
	})

	t.Run("plain", func(t *testing.T) {
		w, err := NewWriter(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "palette.events"})
		require.NoError(t, err)
		assert.Equal(t, "palette.events", w.Topic)
		assert.Nil(t, w.Transport)
	})

	t.Run("sasl", func(t *testing.T) {
		w, err := NewWriter(config.KafkaConfig{
			Brokers:  []string{"broker-1:9092", "broker-2:9092"},
			Topic:    "palette.events",
			Username: "palette",
			Password: "secret",
		})
		require.NoError(t, err)
		assert.NotNil(t, w.Transport)
		assert.NotNil(t, w.Addr)
	})
}
