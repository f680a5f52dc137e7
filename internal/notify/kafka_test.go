package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafkaSink_KeysBySubject(t *testing.T) {
	w := &captureWriter{}
	sink := NewKafkaSink(w)
	ev := testEvent(t, TopicAlertCreated)

	require.NoError(t, sink.Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "tourist-1", string(w.msgs[0].Key))

	var decoded Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, ev.ID, decoded.ID)
	assert.Equal(t, TopicAlertCreated, decoded.Topic)
}

func TestKafkaSink_FallsBackToTopicKey(t *testing.T) {
	w := &captureWriter{}
	sink := NewKafkaSink(w)
	ev, err := NewEvent(TopicRiskRefreshed, "", map[string]int{"cells": 3})
	require.NoError(t, err)

	require.NoError(t, sink.Publish(context.Background(), ev))
	assert.Equal(t, TopicRiskRefreshed, string(w.msgs[0].Key))
}
