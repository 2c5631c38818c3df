package consumers

import (
	"context"

	"github.com/workpulse/workpulse-backend/internal/attendance/repository"
	"github.com/workpulse/workpulse-backend/pkg/logger"
	"github.com/workpulse/workpulse-backend/pkg/messaging"
	"github.com/workpulse/workpulse-backend/pkg/tenant"
)

// EmployeeEventConsumer consumes staff events and mirrors them into the
// local employees read model. Shift queries join against that table for
// display names, so the cache has to track the staff service.
type EmployeeEventConsumer struct {
	consumer  *messaging.Consumer
	cacheRepo *repository.EmployeeCacheRepository
	logger    *logger.Logger
}

// NewEmployeeEventConsumer creates a new employee event consumer
func NewEmployeeEventConsumer(rmq *messaging.RabbitMQ, cacheRepo *repository.EmployeeCacheRepository, log *logger.Logger) (*EmployeeEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "attendance-service.staff-events", log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeStaffEvents, "staff.#"); err != nil {
		return nil, err
	}

	c := &EmployeeEventConsumer{
		consumer:  consumer,
		cacheRepo: cacheRepo,
		logger:    log,
	}

	consumer.RegisterHandler(messaging.EventEmployeeCreated, c.handleEmployeeCreated)
	consumer.RegisterHandler(messaging.EventEmployeeUpdated, c.handleEmployeeUpdated)
	consumer.RegisterHandler(messaging.EventEmployeeDeleted, c.handleEmployeeDeleted)

	return c, nil
}

// Start starts consuming messages
func (c *EmployeeEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *EmployeeEventConsumer) handleEmployeeCreated(ctx context.Context, event *messaging.Event) error {
	var data messaging.EmployeeCreatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("employee_id", data.EmployeeID).
		Msg("received employee created event")

	// The event carries its own tenant; staff events arrive without headers.
	ctx = tenant.WithTenantContext(ctx, data.TenantID, data.TenantSlug, data.TenantSchema)

	return c.cacheRepo.Upsert(ctx, cachedEmployeeFrom(data.EmployeeID, data.EmployeeNumber, data.FirstName, data.LastName, data.Email, data.Status))
}

func (c *EmployeeEventConsumer) handleEmployeeUpdated(ctx context.Context, event *messaging.Event) error {
	var data messaging.EmployeeUpdatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("employee_id", data.EmployeeID).
		Msg("received employee updated event")

	ctx = tenant.WithTenantContext(ctx, data.TenantID, data.TenantSlug, data.TenantSchema)

	// Events are not ordered across restarts, so updates upsert rather than
	// assume the created event arrived first.
	return c.cacheRepo.Upsert(ctx, cachedEmployeeFrom(data.EmployeeID, data.EmployeeNumber, data.FirstName, data.LastName, data.Email, data.Status))
}

func (c *EmployeeEventConsumer) handleEmployeeDeleted(ctx context.Context, event *messaging.Event) error {
	var data messaging.EmployeeDeletedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("employee_id", data.EmployeeID).
		Msg("received employee deleted event")

	ctx = tenant.WithTenantContext(ctx, data.TenantID, data.TenantSlug, data.TenantSchema)

	return c.cacheRepo.SoftDelete(ctx, data.EmployeeID)
}

func cachedEmployeeFrom(id, number, firstName, lastName, email, status string) *repository.CachedEmployee {
	emp := &repository.CachedEmployee{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Status:    status,
	}
	if number != "" {
		emp.EmployeeNumber = &number
	}
	if email != "" {
		emp.Email = &email
	}
	if emp.Status == "" {
		emp.Status = "active"
	}
	return emp
}
