package implementation

import (
	"context"
	"time"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/mapper"
	"ai-tripplanner-be/internal/model"
	"ai-tripplanner-be/internal/repository/contract"
	"ai-tripplanner-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TicketMapper
}

func NewTicketRepository(db *gorm.DB) contract.TicketRepository {
	return &TicketRepositoryImpl{
		db:     db,
		mapper: mapper.NewTicketMapper(),
	}
}

func (r *TicketRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, ticket *entity.GenerationTicket) error {
	m := r.mapper.ToModel(ticket)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*ticket = *r.mapper.ToEntity(m)
	return nil
}

func (r *TicketRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationTicket, error) {
	var models []*model.GenerationTicket
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *TicketRepositoryImpl) ConsumeOne(ctx context.Context, userId uuid.UUID, feature entity.Feature) (bool, error) {
	now := time.Now()

	// Decrement the oldest consumable ticket in one statement. The subquery
	// with FOR UPDATE SKIP LOCKED keeps concurrent consumers off the same
	// row, so two requests never double-spend the last unit.
	result := r.db.WithContext(ctx).Exec(`
		UPDATE generation_tickets
		SET remaining_count = remaining_count - 1,
		    status = CASE WHEN remaining_count - 1 = 0 THEN 'exhausted' ELSE status END,
		    updated_at = ?
		WHERE id = (
			SELECT id FROM generation_tickets
			WHERE user_id = ?
			  AND feature_key = ?
			  AND status = 'active'
			  AND remaining_count > 0
			  AND (valid_until IS NULL OR valid_until > ?)
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)`, now, userId, string(feature), now)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *TicketRepositoryImpl) TotalRemaining(ctx context.Context, userId uuid.UUID, feature entity.Feature) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.GenerationTicket{}).
		Where("user_id = ? AND feature_key = ? AND status = ?", userId, string(feature), "active").
		Where("valid_until IS NULL OR valid_until > ?", time.Now()).
		Select("COALESCE(SUM(remaining_count), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *TicketRepositoryImpl) ExpireOutdated(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.GenerationTicket{}).
		Where("user_id = ? AND status = ? AND valid_until IS NOT NULL AND valid_until <= ?",
			userId, "active", time.Now()).
		UpdateColumn("status", "expired").Error
}
