package sync

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/interfaces"
)

// EventNotifier adapts the notification collaborator onto the event
// bus. Whatever actually sends email or push lives behind a subscriber
// outside this repository.
type EventNotifier struct {
	events interfaces.EventService
	logger arbor.ILogger
}

// NewEventNotifier creates an event-bus backed notifier
func NewEventNotifier(events interfaces.EventService, logger arbor.ILogger) interfaces.Notifier {
	return &EventNotifier{
		events: events,
		logger: logger,
	}
}

// NotifyNewRaceResult publishes a race.result.new event
func (n *EventNotifier) NotifyNewRaceResult(ctx context.Context, notification interfaces.RaceResultNotification) error {
	return n.events.Publish(ctx, interfaces.Event{
		Type:    interfaces.EventNewRaceResult,
		Payload: notification,
	})
}
