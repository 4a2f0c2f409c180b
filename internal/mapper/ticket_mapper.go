package mapper

import (
	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/model"
)

type TicketMapper struct{}

func NewTicketMapper() *TicketMapper {
	return &TicketMapper{}
}

func (m *TicketMapper) ToEntity(t *model.GenerationTicket) *entity.GenerationTicket {
	if t == nil {
		return nil
	}
	return &entity.GenerationTicket{
		Id:             t.Id,
		UserId:         t.UserId,
		Feature:        entity.Feature(t.FeatureKey),
		GrantedCount:   t.GrantedCount,
		RemainingCount: t.RemainingCount,
		Status:         entity.TicketStatus(t.Status),
		SourceType:     t.SourceType,
		ValidUntil:     t.ValidUntil,
		CreatedAt:      t.CreatedAt,
	}
}

func (m *TicketMapper) ToModel(t *entity.GenerationTicket) *model.GenerationTicket {
	if t == nil {
		return nil
	}
	return &model.GenerationTicket{
		Id:             t.Id,
		UserId:         t.UserId,
		FeatureKey:     string(t.Feature),
		GrantedCount:   t.GrantedCount,
		RemainingCount: t.RemainingCount,
		Status:         string(t.Status),
		SourceType:     t.SourceType,
		ValidUntil:     t.ValidUntil,
		CreatedAt:      t.CreatedAt,
	}
}

func (m *TicketMapper) ToEntities(tickets []*model.GenerationTicket) []*entity.GenerationTicket {
	entities := make([]*entity.GenerationTicket, len(tickets))
	for i, t := range tickets {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
