package mapper

import (
	"encoding/json"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/model"

	"gorm.io/datatypes"
)

type ReplanEventMapper struct{}

func NewReplanEventMapper() *ReplanEventMapper {
	return &ReplanEventMapper{}
}

func (m *ReplanEventMapper) ToModel(e *entity.ReplanEvent, breakdown *entity.ScoreBreakdown) (*model.ReplanEvent, error) {
	if e == nil {
		return nil, nil
	}

	var raw datatypes.JSON
	if breakdown != nil {
		b, err := json.Marshal(breakdown)
		if err != nil {
			return nil, err
		}
		raw = datatypes.JSON(b)
	}

	return &model.ReplanEvent{
		Id:               e.Id,
		PlanId:           e.PlanId,
		UserId:           e.UserId,
		TriggerType:      string(e.TriggerType),
		Outcome:          string(e.Outcome),
		Degraded:         e.Degraded,
		ProcessingTimeMs: e.ProcessingTimeMs,
		PrimaryOptionId:  e.PrimaryOptionId,
		ScoreBreakdown:   raw,
		CreatedAt:        e.CreatedAt,
	}, nil
}

func (m *ReplanEventMapper) ToEntity(r *model.ReplanEvent) *entity.ReplanEvent {
	if r == nil {
		return nil
	}
	return &entity.ReplanEvent{
		Id:               r.Id,
		PlanId:           r.PlanId,
		UserId:           r.UserId,
		TriggerType:      entity.TriggerType(r.TriggerType),
		Outcome:          entity.ReplanOutcome(r.Outcome),
		Degraded:         r.Degraded,
		ProcessingTimeMs: r.ProcessingTimeMs,
		PrimaryOptionId:  r.PrimaryOptionId,
		CreatedAt:        r.CreatedAt,
	}
}
