package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/whistle-service/internal/events"
)

// NotificationService turns domain events into outbound reviewer mail. It
// is strictly decoupled from the write path: delivery runs in detached
// goroutines, makes a single attempt, and failures are logged and dropped.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     Mailer
	recipients []string
	logger     *zap.Logger
}

// NewNotificationService creates the service. A nil mailer leaves events
// logged but undelivered, which is how development environments run.
func NewNotificationService(dispatcher events.Dispatcher, mailer Mailer, recipients []string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		recipients: recipients,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventReportCreated, n.handleReportCreated)
	n.dispatcher.Subscribe(events.EventReportStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventMessageAdded, n.handleMessageAdded)
}

func (n *NotificationService) handleReportCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("report created", zap.String("protocol", event.Protocol))

	payload, _ := event.Payload.(events.ReportCreatedPayload)
	subject := fmt.Sprintf("New report %s", event.Protocol)
	body := fmt.Sprintf("A new report was submitted under protocol %s.\n\n%s", event.Protocol, payload.Body)

	for _, recipient := range n.recipients {
		go n.deliver(recipient, subject, body)
	}
	return nil
}

func (n *NotificationService) handleStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("report status changed",
		zap.String("protocol", event.Protocol),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleMessageAdded(_ context.Context, event events.Event) error {
	n.logger.Info("message added",
		zap.String("protocol", event.Protocol),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) deliver(recipient, subject, body string) {
	if n.mailer == nil {
		n.logger.Debug("mailer not configured; dropping notification",
			zap.String("recipient", recipient))
		return
	}
	if err := n.mailer.Send(recipient, subject, body); err != nil {
		n.logger.Warn("notification delivery failed",
			zap.String("recipient", recipient),
			zap.Error(err))
	}
}
