package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-tripplanner-be/internal/model"
	"ai-tripplanner-be/internal/pkg/logger"
	"ai-tripplanner-be/internal/pkg/mailer"
	"ai-tripplanner-be/internal/repository"
	"ai-tripplanner-be/internal/repository/specification"
	"ai-tripplanner-be/internal/repository/unitofwork"
	"ai-tripplanner-be/pkg/events"
	pktNats "ai-tripplanner-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery pushes real-time updates, implemented by the
// websocket hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

// notificationTemplate maps an event type to a rendered notification.
// Placeholders in the message reference payload keys, {key} style.
type notificationTemplate struct {
	Title   string
	Message string
	Email   bool // Also deliver via email
}

var notificationTemplates = map[string]notificationTemplate{
	events.TypeItineraryReady: {
		Title:   "Your itinerary is ready",
		Message: "Your trip plan for {destination} is complete.",
		Email:   true,
	},
	events.TypeItineraryPartial: {
		Title:   "Your itinerary is almost ready",
		Message: "We planned most of your trip to {destination}. A few days need another try.",
		Email:   true,
	},
	events.TypeReplanRecorded: {
		Title:   "Plan adjusted",
		Message: "We adjusted your plan after a {trigger} disruption.",
	},
}

type NotificationService struct {
	repo       repository.NotificationRepository
	uowFactory unitofwork.RepositoryFactory
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewNotificationService(
	repo repository.NotificationRepository,
	uowFactory unitofwork.RepositoryFactory,
	sub *pktNats.Subscriber,
	delivery NotificationDelivery,
	emailService mailer.IEmailService,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		repo:       repo,
		uowFactory: uowFactory,
		subscriber: sub,
		delivery:   delivery,
		mailer:     emailService,
		logger:     log,
	}
}

// Start begins listening to the event bus with a durable consumer.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("trip.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "listening for trip events", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// The NATS subject carries the stream prefix, strip it back to the
	// bare event code.
	typeCode := event.EventType()
	if idx := strings.LastIndex(typeCode, "."); idx >= 0 {
		typeCode = typeCode[idx+1:]
	}

	template, ok := notificationTemplates[typeCode]
	if !ok {
		// Analytics-only events have no user-facing notification
		return nil
	}

	payload := event.Payload()
	userID, ok := payloadUUID(payload, "user_id")
	if !ok {
		s.logger.Warn("NotificationService", "event without user_id, skipping", map[string]interface{}{"type": typeCode})
		return nil
	}

	notif := s.buildNotification(userID, typeCode, template, payload)

	if err := s.repo.CreateNotification(ctx, &notif); err != nil {
		s.logger.Error("NotificationService", "failed to save notification", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return err // NATS redelivers
	}

	if s.delivery != nil {
		s.delivery.Send(userID, notif)
	}

	if template.Email {
		s.sendEmail(ctx, userID, payload)
	}
	return nil
}

func (s *NotificationService) buildNotification(userID uuid.UUID, typeCode string, template notificationTemplate, payload map[string]interface{}) model.Notification {
	msg := template.Message
	for k, v := range payload {
		msg = strings.ReplaceAll(msg, fmt.Sprintf("{%s}", k), fmt.Sprintf("%v", v))
	}

	metaMap := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		metaMap[k] = v
	}
	var entityID *uuid.UUID
	if planID, ok := payloadUUID(payload, "plan_id"); ok {
		entityID = &planID
		metaMap["action_url"] = fmt.Sprintf("/plans/%s", planID)
	}
	metaJSON, _ := json.Marshal(metaMap)

	return model.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		TypeCode:   typeCode,
		EntityType: "plan",
		EntityID:   entityID,
		Title:      template.Title,
		Message:    msg,
		Metadata:   datatypes.JSON(metaJSON),
		CreatedAt:  time.Now(),
		IsRead:     false,
	}
}

// sendEmail is best effort, a bounced mail never retries the event.
func (s *NotificationService) sendEmail(ctx context.Context, userID uuid.UUID, payload map[string]interface{}) {
	if s.mailer == nil {
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil || user == nil {
		s.logger.Warn("NotificationService", "could not resolve user for email", map[string]interface{}{"user_id": userID})
		return
	}

	destination, _ := payload["destination"].(string)
	planID := ""
	if pid, ok := payloadUUID(payload, "plan_id"); ok {
		planID = pid.String()
	}

	if err := s.mailer.SendItineraryReady(user.Email, destination, planID); err != nil {
		s.logger.Warn("NotificationService", "itinerary email failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func payloadUUID(payload map[string]interface{}, key string) (uuid.UUID, bool) {
	raw, ok := payload[key].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
