package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/hoot-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// EventPruner periodically deletes events older than the retention window.
type EventPruner struct {
	eventSvc  services.EventServiceProvider
	retention time.Duration
	cron      *cron.Cron
	now       func() time.Time
}

// NewEventPruner creates a pruner running on the given cron spec
// (standard five fields or descriptors such as "@daily").
func NewEventPruner(eventSvc services.EventServiceProvider, spec string, retention time.Duration) (*EventPruner, error) {
	p := &EventPruner{
		eventSvc:  eventSvc,
		retention: retention,
		cron:      cron.New(),
		now:       time.Now,
	}
	if _, err := p.cron.AddFunc(spec, func() { p.Prune(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", spec, err)
	}
	return p, nil
}

// Start runs the schedule in the background.
func (p *EventPruner) Start() {
	log.Info().Dur("retention", p.retention).Msg("Starting event pruner")
	p.cron.Start()
}

// Stop halts the schedule and waits for a running prune to finish.
func (p *EventPruner) Stop() {
	<-p.cron.Stop().Done()
	log.Info().Msg("Stopped event pruner")
}

// Prune deletes every event older than the retention window.
func (p *EventPruner) Prune(ctx context.Context) {
	cutoff := p.now().Add(-p.retention)
	n, err := p.eventSvc.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Time("cutoff", cutoff).Msg("Failed to prune events")
		return
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("Pruned old events")
	}
}
