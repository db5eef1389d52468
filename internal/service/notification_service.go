package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/facilityops/facility-ops/internal/config"
	"github.com/facilityops/facility-ops/internal/events"
)

// NotificationService turns coverage events into operator alerts.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCoverageRepaired, n.handleCoverageRepaired)
	n.dispatcher.Subscribe(events.EventCoverageUnsatisfiable, n.handleCoverageUnsatisfiable)
	n.dispatcher.Subscribe(events.EventScheduleEntryDeleted, n.handleEntryDeleted)
	n.dispatcher.Subscribe(events.EventStaffBlockAssigned, n.handleBlockAssigned)
}

func (n *NotificationService) handleCoverageRepaired(ctx context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("date", event.Date)}
	if payload, ok := event.Payload.(events.CoverageRepairedPayload); ok {
		fields = append(fields, zap.Int("actions", len(payload.Actions)))
		for _, action := range payload.Actions {
			n.logger.Debug("coverage action",
				zap.String("date", event.Date),
				zap.String("kind", action.Kind),
				zap.String("invariant", action.Invariant),
				zap.String("location", string(action.Location)),
				zap.Strings("staff", action.Staff))
		}
	}
	n.logger.Info("coverage repaired", fields...)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCoverageUnsatisfiable(ctx context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("date", event.Date)}
	if payload, ok := event.Payload.(events.CoverageUnsatisfiablePayload); ok {
		fields = append(fields, zap.Strings("invariants", payload.Invariants), zap.Strings("reasons", payload.Reasons))
	}
	n.logger.Warn("coverage unsatisfiable", fields...)
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleEntryDeleted(_ context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("date", event.Date)}
	if payload, ok := event.Payload.(events.ScheduleEntryPayload); ok {
		fields = append(fields,
			zap.String("entry_id", payload.EntryID),
			zap.String("location", string(payload.Location)),
			zap.String("window", payload.StartTime+"-"+payload.EndTime))
	}
	n.logger.Info("schedule entry deleted", fields...)
	return nil
}

func (n *NotificationService) handleBlockAssigned(ctx context.Context, event events.Event) error {
	if payload, ok := event.Payload.(events.StaffBlockAssignedPayload); ok {
		n.logger.Info("staff block assigned",
			zap.String("staff_id", payload.StaffID),
			zap.String("old_block", payload.OldBlock),
			zap.String("new_block", payload.NewBlock))
	}
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("date", event.Date),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("date", event.Date),
		zap.String("event_type", string(event.Type)))
}
