package services

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Publisher pushes live activity to connected feed clients.
// Implementations must not block.
type Publisher interface {
	Publish(topic, action string, payload interface{})
}

// activity records a successful mutation in the event log and on the live feed.
// Neither failure is reported to the caller; the mutation has already happened.
type activity struct {
	events    EventServiceProvider
	publisher Publisher
}

func (a activity) record(ctx context.Context, eventType, level, message, hootID, actorID string, payload interface{}) {
	if a.events != nil {
		if err := a.events.CreateEvent(ctx, eventType, level, message, &hootID, &actorID); err != nil {
			log.Warn().Err(err).Str("event_type", eventType).Str("hoot_id", hootID).Msg("Failed to record event")
		}
	}
	if a.publisher != nil {
		a.publisher.Publish(hootID, eventType, payload)
	}
}
