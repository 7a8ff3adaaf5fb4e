package dto

import (
	"time"

	"fleet-dispatch-engine/internal/domain"
)

type EventResponse struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Seq       uint64    `json:"seq"`
	Payload   any       `json:"payload"`
}

type ListEventResponse struct {
	Events []EventResponse `json:"events"`
}

func FromEvent(e domain.Event) EventResponse {
	return EventResponse{
		EventID:   e.EventID,
		Type:      string(e.Type),
		Timestamp: e.Timestamp,
		Seq:       e.Seq,
		Payload:   e.Payload,
	}
}
