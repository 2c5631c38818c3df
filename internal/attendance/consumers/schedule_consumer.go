package consumers

import (
	"context"

	"github.com/workpulse/workpulse-backend/internal/attendance/engine"
	"github.com/workpulse/workpulse-backend/pkg/logger"
	"github.com/workpulse/workpulse-backend/pkg/messaging"
)

// ScheduleEventConsumer consumes organization schedule events and drops the
// cached working-day resolutions they invalidate. Without it a schedule
// change would keep grading punches against stale hours for the cache TTL.
type ScheduleEventConsumer struct {
	consumer *messaging.Consumer
	resolver *engine.Resolver
	logger   *logger.Logger
}

// NewScheduleEventConsumer creates a new schedule event consumer
func NewScheduleEventConsumer(rmq *messaging.RabbitMQ, resolver *engine.Resolver, log *logger.Logger) (*ScheduleEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "attendance-service.organization-events", log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeOrganizationEvents, "organization.#"); err != nil {
		return nil, err
	}

	c := &ScheduleEventConsumer{
		consumer: consumer,
		resolver: resolver,
		logger:   log,
	}

	consumer.RegisterHandler(messaging.EventScheduleUpdated, c.handleScheduleUpdated)
	consumer.RegisterHandler(messaging.EventHolidayModeChanged, c.handleHolidayModeChanged)
	consumer.RegisterHandler(messaging.EventSpecialDateSet, c.handleSpecialDateSet)

	return c, nil
}

// Start starts consuming messages
func (c *ScheduleEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *ScheduleEventConsumer) handleScheduleUpdated(_ context.Context, event *messaging.Event) error {
	var data messaging.ScheduleUpdatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("organization_id", data.OrganizationID).
		Msg("schedule updated, invalidating cache")

	c.resolver.Invalidate(data.OrganizationID)
	return nil
}

func (c *ScheduleEventConsumer) handleHolidayModeChanged(_ context.Context, event *messaging.Event) error {
	var data messaging.HolidayModeChangedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("organization_id", data.OrganizationID).
		Bool("enabled", data.Enabled).
		Msg("holiday mode changed, invalidating cache")

	c.resolver.Invalidate(data.OrganizationID)
	return nil
}

func (c *ScheduleEventConsumer) handleSpecialDateSet(_ context.Context, event *messaging.Event) error {
	var data messaging.SpecialDateSetEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("organization_id", data.OrganizationID).
		Msg("special date set, invalidating cache")

	c.resolver.Invalidate(data.OrganizationID)
	return nil
}
