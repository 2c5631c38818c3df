package events

import (
	"context"

	"github.com/workpulse/workpulse-backend/internal/kiosk/repository"
	"github.com/workpulse/workpulse-backend/pkg/logger"
	"github.com/workpulse/workpulse-backend/pkg/messaging"
)

// KioskEventPublisher publishes kiosk terminal events
type KioskEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewKioskEventPublisher creates a new kiosk event publisher
func NewKioskEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*KioskEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeKioskEvents, "attendance-service", log)
	if err != nil {
		return nil, err
	}

	return &KioskEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishTerminalRegistered publishes a terminal registered event
func (p *KioskEventPublisher) PublishTerminalRegistered(ctx context.Context, terminal *repository.Terminal) {
	data := messaging.TerminalRegisteredEvent{
		TerminalID:     terminal.ID,
		OrganizationID: terminal.OrganizationID,
		Name:           terminal.Name,
		RegisteredBy:   terminal.RegisteredBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventTerminalRegistered, data); err != nil {
		p.logger.Error().Err(err).Str("terminal_id", terminal.ID).Msg("failed to publish terminal registered event")
	}
}

// PublishTerminalRevoked publishes a terminal revoked event
func (p *KioskEventPublisher) PublishTerminalRevoked(ctx context.Context, terminalID, revokedBy, reason string) {
	data := messaging.TerminalRevokedEvent{
		TerminalID: terminalID,
		RevokedBy:  revokedBy,
		Reason:     reason,
	}

	if err := p.publisher.Publish(ctx, messaging.EventTerminalRevoked, data); err != nil {
		p.logger.Error().Err(err).Str("terminal_id", terminalID).Msg("failed to publish terminal revoked event")
	}
}
