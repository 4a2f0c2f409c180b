package service

import (
	"context"
	"time"

	"ai-tripplanner-be/internal/dto"
	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/pkg/logger"
	"ai-tripplanner-be/internal/repository/unitofwork"
	"ai-tripplanner-be/pkg/events"
	pktNats "ai-tripplanner-be/pkg/nats"
	"ai-tripplanner-be/pkg/replan"

	"github.com/google/uuid"
)

type IReplanService interface {
	// Replan runs one deadline-bounded replan pass. It never fails the
	// request: every outcome, including timeout and total failure, maps to
	// a usable 200 response.
	Replan(ctx context.Context, userId uuid.UUID, req *dto.ReplanRequest) *dto.ReplanResponse
}

type replanService struct {
	engine         *replan.Engine
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewReplanService(
	engine *replan.Engine,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IReplanService {
	return &replanService{
		engine:         engine,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (s *replanService) Replan(ctx context.Context, userId uuid.UUID, req *dto.ReplanRequest) *dto.ReplanResponse {
	input := &replan.Input{
		Trigger:  req.Trigger,
		Traveler: req.TravelerState,
		TripCtx:  req.TripContext,
		Plan:     req.TripPlan,
	}

	result := s.engine.Run(ctx, input)

	s.recordEvent(ctx, userId, req, result)

	return &dto.ReplanResponse{
		Success:          true,
		PrimaryOption:    result.Primary,
		Alternatives:     result.Alternatives,
		ScoreBreakdown:   &result.Primary.Score,
		Explanation:      result.Explanation,
		Degraded:         result.Degraded,
		ProcessingTimeMs: int(result.ProcessingTime.Milliseconds()),
	}
}

// recordEvent persists the analytics row and publishes the bus event.
// Best effort on both counts, the traveler already has their answer.
func (s *replanService) recordEvent(ctx context.Context, userId uuid.UUID, req *dto.ReplanRequest, result *replan.Result) {
	event := &entity.ReplanEvent{
		Id:               uuid.New(),
		PlanId:           req.PlanId,
		UserId:           userId,
		TriggerType:      req.Trigger.Type,
		Outcome:          result.Outcome,
		Degraded:         result.Degraded,
		ProcessingTimeMs: int(result.ProcessingTime.Milliseconds()),
		PrimaryOptionId:  result.Primary.Id,
		CreatedAt:        time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ReplanEventRepository().Create(ctx, event, &result.Primary.Score); err != nil {
		s.log.Warn("ReplanService", "failed to persist replan event", map[string]interface{}{
			"plan_id": req.PlanId,
			"error":   err.Error(),
		})
	}

	if s.eventPublisher != nil {
		evt := events.NewEvent(events.TypeReplanRecorded, map[string]interface{}{
			"plan_id": req.PlanId,
			"user_id": userId,
			"trigger": string(req.Trigger.Type),
			"outcome": string(result.Outcome),
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("ReplanService", "failed to publish replan event", map[string]interface{}{
				"plan_id": req.PlanId,
				"error":   err.Error(),
			})
		}
	}
}
