package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/mapper"
	"ai-tripplanner-be/internal/model"
	"ai-tripplanner-be/internal/repository/contract"
	"ai-tripplanner-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	m := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, user *entity.User) error {
	m := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, id).Error
}

func (r *UserRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var m model.User
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UserRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	var models []*model.User
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *UserRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.User{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func featureColumns(feature entity.Feature) (usageCol, resetCol string, err error) {
	switch feature {
	case entity.FeaturePlanGeneration:
		return "plan_generation_usage", "plan_generation_last_reset", nil
	case entity.FeatureTravelInfo:
		return "travel_info_usage", "travel_info_last_reset", nil
	default:
		return "", "", fmt.Errorf("unknown feature: %s", feature)
	}
}

func (r *UserRepositoryImpl) ConsumeFeatureIfBelow(ctx context.Context, userId uuid.UUID, feature entity.Feature, limit int) (bool, error) {
	if limit == 0 {
		return false, nil
	}

	usageCol, _, err := featureColumns(feature)
	if err != nil {
		return false, err
	}

	// Single conditional UPDATE so concurrent requests cannot both pass the
	// check. RowsAffected == 0 means the counter already reached the limit.
	query := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userId)
	if limit > 0 {
		query = query.Where(fmt.Sprintf("%s < ?", usageCol), limit)
	}
	result := query.UpdateColumn(usageCol, gorm.Expr(fmt.Sprintf("%s + ?", usageCol), 1))

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *UserRepositoryImpl) ResetFeatureUsage(ctx context.Context, userId uuid.UUID, feature entity.Feature, at time.Time) error {
	usageCol, resetCol, err := featureColumns(feature)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userId).
		Updates(map[string]interface{}{
			usageCol: 0,
			resetCol: at,
		}).Error
}
