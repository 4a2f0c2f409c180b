package mapper

import (
	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:        u.Id,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      entity.UserRole(u.Role),
		Status:    entity.UserStatus(u.Status),
		AvatarURL: u.AvatarURL,

		PlanGenerationUsage:         u.PlanGenerationUsage,
		PlanGenerationLastReset:     u.PlanGenerationLastReset,
		TravelInfoUsage:             u.TravelInfoUsage,
		TravelInfoLastReset:         u.TravelInfoLastReset,
		PlanGenerationLimitOverride: u.PlanGenerationLimitOverride,

		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:        u.Id,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
		Status:    string(u.Status),
		AvatarURL: u.AvatarURL,

		PlanGenerationUsage:         u.PlanGenerationUsage,
		PlanGenerationLastReset:     u.PlanGenerationLastReset,
		TravelInfoUsage:             u.TravelInfoUsage,
		TravelInfoLastReset:         u.TravelInfoLastReset,
		PlanGenerationLimitOverride: u.PlanGenerationLimitOverride,

		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (m *UserMapper) ToEntities(users []*model.User) []*entity.User {
	entities := make([]*entity.User, len(users))
	for i, u := range users {
		entities[i] = m.ToEntity(u)
	}
	return entities
}
