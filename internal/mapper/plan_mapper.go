package mapper

import (
	"encoding/json"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PlanMapper struct{}

func NewPlanMapper() *PlanMapper {
	return &PlanMapper{}
}

func (m *PlanMapper) ToEntity(p *model.TripPlan) (*entity.SavedPlan, error) {
	if p == nil {
		return nil, nil
	}

	var request entity.TripRequest
	if len(p.Request) > 0 {
		if err := json.Unmarshal(p.Request, &request); err != nil {
			return nil, err
		}
	}

	var outline *entity.PlanOutline
	if len(p.Outline) > 0 {
		outline = &entity.PlanOutline{}
		if err := json.Unmarshal(p.Outline, outline); err != nil {
			return nil, err
		}
	}

	var itinerary entity.Itinerary
	if len(p.Itinerary) > 0 {
		if err := json.Unmarshal(p.Itinerary, &itinerary); err != nil {
			return nil, err
		}
	}

	return &entity.SavedPlan{
		Id:          p.Id,
		UserId:      p.UserId,
		Destination: p.Destination,
		Title:       p.Title,
		Request:     request,
		Outline:     outline,
		Itinerary:   itinerary,
		Status:      entity.PlanStatus(p.Status),
		IsPublic:    p.IsPublic,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (m *PlanMapper) ToModel(p *entity.SavedPlan) (*model.TripPlan, error) {
	if p == nil {
		return nil, nil
	}

	request, err := json.Marshal(p.Request)
	if err != nil {
		return nil, err
	}

	var outline datatypes.JSON
	if p.Outline != nil {
		raw, err := json.Marshal(p.Outline)
		if err != nil {
			return nil, err
		}
		outline = datatypes.JSON(raw)
	}

	itinerary, err := json.Marshal(p.Itinerary)
	if err != nil {
		return nil, err
	}

	return &model.TripPlan{
		Id:          p.Id,
		UserId:      p.UserId,
		Destination: p.Destination,
		Title:       p.Title,
		Status:      string(p.Status),
		Request:     datatypes.JSON(request),
		Outline:     outline,
		Itinerary:   datatypes.JSON(itinerary),
		ModelName:   p.Itinerary.Model.Name,
		IsPublic:    p.IsPublic,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		DeletedAt:   gorm.DeletedAt{},
	}, nil
}

func (m *PlanMapper) ToEntities(plans []*model.TripPlan) ([]*entity.SavedPlan, error) {
	entities := make([]*entity.SavedPlan, len(plans))
	for i, p := range plans {
		e, err := m.ToEntity(p)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}
