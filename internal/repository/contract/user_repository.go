package contract

import (
	"context"
	"time"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// ConsumeFeatureIfBelow atomically increments the usage counter for the
	// feature, but only while the stored counter is below limit. Returns
	// false without error when the quota is already spent. A limit of -1
	// always consumes, a limit of 0 never does.
	ConsumeFeatureIfBelow(ctx context.Context, userId uuid.UUID, feature entity.Feature, limit int) (bool, error)

	// ResetFeatureUsage zeroes the counter and stamps the reset time.
	// Called lazily on the first consume of a new period, and by the
	// external rollover scheduler.
	ResetFeatureUsage(ctx context.Context, userId uuid.UUID, feature entity.Feature, at time.Time) error
}
