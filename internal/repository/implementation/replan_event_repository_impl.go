package implementation

import (
	"context"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/mapper"
	"ai-tripplanner-be/internal/model"
	"ai-tripplanner-be/internal/repository/contract"
	"ai-tripplanner-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ReplanEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReplanEventMapper
}

func NewReplanEventRepository(db *gorm.DB) contract.ReplanEventRepository {
	return &ReplanEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewReplanEventMapper(),
	}
}

func (r *ReplanEventRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ReplanEventRepositoryImpl) Create(ctx context.Context, event *entity.ReplanEvent, breakdown *entity.ScoreBreakdown) error {
	m, err := r.mapper.ToModel(event, breakdown)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.ToEntity(m)
	return nil
}

func (r *ReplanEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReplanEvent, error) {
	var models []*model.ReplanEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	events := make([]*entity.ReplanEvent, len(models))
	for i, m := range models {
		events[i] = r.mapper.ToEntity(m)
	}
	return events, nil
}

func (r *ReplanEventRepositoryImpl) CountByOutcome(ctx context.Context, outcome entity.ReplanOutcome) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ReplanEvent{}).
		Where("outcome = ?", string(outcome)).
		Count(&count).Error
	return count, err
}
