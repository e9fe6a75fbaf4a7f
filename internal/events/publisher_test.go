package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"learnhub_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryPublisherDeliversEnvelope(t *testing.T) {
	pub, ch := NewMemoryPublisher("learnhub.events", zap.NewNop())
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := ch.Subscribe(ctx, "learnhub.events")
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, ProgressReset, ProgressResetPayload{UserID: 7, QuizID: 3, LessonIDs: []uint{1, 2}}))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, string(ProgressReset), msg.Metadata.Get("event_type"))

		event, raw, err := Decode(msg)
		require.NoError(t, err)
		assert.Equal(t, ProgressReset, event.Type)
		assert.Equal(t, "learnhub", event.Source)
		assert.NotEmpty(t, event.ID)

		var payload ProgressResetPayload
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, ProgressResetPayload{UserID: 7, QuizID: 3, LessonIDs: []uint{1, 2}}, payload)
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestNewPublisher(t *testing.T) {
	p, err := NewPublisher(config.EventsConfig{Publisher: "disabled"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, Disabled{}, p)

	_, err = NewPublisher(config.EventsConfig{Publisher: "kafka"}, zap.NewNop())
	assert.Error(t, err, "kafka without brokers")

	_, err = NewPublisher(config.EventsConfig{Publisher: "carrier-pigeon"}, zap.NewNop())
	assert.Error(t, err)
}
