package interfaces

import (
	"context"
)

// EventType identifies a published event
type EventType string

const (
	EventSyncProgress  EventType = "sync.progress"
	EventSyncCompleted EventType = "sync.completed"
	EventNewRaceResult EventType = "race.result.new"
	EventStatusChanged EventType = "status.changed"
)

// Event is a payload published on the in-process bus
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler processes a single event
type EventHandler func(ctx context.Context, event Event) error

// EventService is an in-process pub/sub bus decoupling the sync engine
// from its transports (websocket stream, background run, nightly batch).
type EventService interface {
	Publish(ctx context.Context, event Event) error
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler) error
	Close() error
}
