package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/resolvease/complaint-service/internal/config"
	"github.com/resolvease/complaint-service/internal/events"
	"github.com/resolvease/complaint-service/internal/observability"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	logger  *zap.Logger
	metrics *observability.Metrics
	cfg     config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
	}
}

// Handle routes an event to its notification channels.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	n.metrics.RecordEvent(string(event.Type))
	n.logger.Info("complaint event",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))

	switch event.Type {
	case events.EventComplaintSubmitted:
		n.sendEmailNotificationStub(ctx, event)
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventComplaintStatusChanged, events.EventComplaintReplyAdded:
		n.sendEmailNotificationStub(ctx, event)
	case events.EventComplaintAssigned:
		n.sendWebhookNotificationStub(ctx, event)
	}
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("event_type", string(event.Type)))
}
