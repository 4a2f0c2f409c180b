package contract

import (
	"context"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/repository/specification"
)

type ReplanEventRepository interface {
	Create(ctx context.Context, event *entity.ReplanEvent, breakdown *entity.ScoreBreakdown) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReplanEvent, error)
	CountByOutcome(ctx context.Context, outcome entity.ReplanOutcome) (int64, error)
}
