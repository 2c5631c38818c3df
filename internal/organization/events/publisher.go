package events

import (
	"context"
	"time"

	"github.com/workpulse/workpulse-backend/pkg/logger"
	"github.com/workpulse/workpulse-backend/pkg/messaging"
	"github.com/workpulse/workpulse-backend/pkg/tenant"
)

// OrganizationEventPublisher publishes organization-related events
type OrganizationEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewOrganizationEventPublisher creates a new organization event publisher
func NewOrganizationEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*OrganizationEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeOrganizationEvents, "attendance-service", log)
	if err != nil {
		return nil, err
	}

	return &OrganizationEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishScheduleUpdated publishes a schedule updated event. Tenant
// identifiers ride along so consumers can rebuild the tenant context.
func (p *OrganizationEventPublisher) PublishScheduleUpdated(ctx context.Context, organizationID, updatedBy string) {
	tenantID, _ := tenant.TenantID(ctx)
	tenantSchema, _ := tenant.TenantSchema(ctx)

	data := messaging.ScheduleUpdatedEvent{
		OrganizationID: organizationID,
		UpdatedBy:      updatedBy,
		TenantID:       tenantID,
		TenantSchema:   tenantSchema,
	}

	if err := p.publisher.Publish(ctx, messaging.EventScheduleUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("organization_id", organizationID).Msg("failed to publish schedule updated event")
	}
}

// PublishHolidayModeChanged publishes a holiday mode changed event
func (p *OrganizationEventPublisher) PublishHolidayModeChanged(ctx context.Context, organizationID string, enabled bool, until *time.Time) {
	data := messaging.HolidayModeChangedEvent{
		OrganizationID: organizationID,
		Enabled:        enabled,
		Until:          until,
	}

	if err := p.publisher.Publish(ctx, messaging.EventHolidayModeChanged, data); err != nil {
		p.logger.Error().Err(err).Str("organization_id", organizationID).Msg("failed to publish holiday mode event")
	}
}

// PublishSpecialDateSet publishes a special date set event
func (p *OrganizationEventPublisher) PublishSpecialDateSet(ctx context.Context, organizationID string, date time.Time, openTime, closeTime string) {
	data := messaging.SpecialDateSetEvent{
		OrganizationID: organizationID,
		Date:           date,
		OpenTime:       openTime,
		CloseTime:      closeTime,
	}

	if err := p.publisher.Publish(ctx, messaging.EventSpecialDateSet, data); err != nil {
		p.logger.Error().Err(err).Str("organization_id", organizationID).Msg("failed to publish special date event")
	}
}
