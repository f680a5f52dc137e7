package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Темы событий
const (
	TopicAlertCreated      = "alert.created"
	TopicAlertAcknowledged = "alert.acknowledged"
	TopicAlertAssigned     = "alert.assigned"
	TopicAlertResolved     = "alert.resolved"
	TopicAlertClosed       = "alert.closed"
	TopicGeofenceWarning   = "geofence.warning"
	TopicRiskRefreshed     = "risk.refreshed"
)

// Event - событие для наблюдателей (сотрудников) и внешних получателей
type Event struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	SubjectID string          `json:"subject_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent сериализует payload и создает событие с новым id
func NewEvent(topic, subjectID string, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}
	return Event{
		ID:        uuid.NewString(),
		Topic:     topic,
		SubjectID: subjectID,
		Payload:   body,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Publisher - интерфейс для публикации событий
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
