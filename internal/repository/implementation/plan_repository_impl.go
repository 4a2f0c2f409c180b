package implementation

import (
	"context"
	"encoding/json"
	"errors"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/mapper"
	"ai-tripplanner-be/internal/model"
	"ai-tripplanner-be/internal/repository/contract"
	"ai-tripplanner-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PlanRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PlanMapper
}

func NewPlanRepository(db *gorm.DB) contract.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		mapper: mapper.NewPlanMapper(),
	}
}

func (r *PlanRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *entity.SavedPlan) error {
	m, err := r.mapper.ToModel(plan)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	created, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*plan = *created
	return nil
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, plan *entity.SavedPlan) error {
	m, err := r.mapper.ToModel(plan)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	updated, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*plan = *updated
	return nil
}

func (r *PlanRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.TripPlan{}, id).Error
}

func (r *PlanRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SavedPlan, error) {
	var m model.TripPlan
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *PlanRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SavedPlan, error) {
	var models []*model.TripPlan
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models)
}

func (r *PlanRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.TripPlan{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PlanRepositoryImpl) UpdateItinerary(ctx context.Context, id uuid.UUID, itinerary *entity.Itinerary, status entity.PlanStatus) error {
	raw, err := json.Marshal(itinerary)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&model.TripPlan{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"itinerary":  datatypes.JSON(raw),
			"status":     string(status),
			"model_name": itinerary.Model.Name,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PlanRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.PlanStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.TripPlan{}).
		Where("id = ?", id).
		UpdateColumn("status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
