package quota

import (
	"context"
	"testing"
	"time"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/repository/contract"
	"ai-tripplanner-be/internal/repository/specification"
	"ai-tripplanner-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type stubUserRepo struct {
	user       *entity.User
	limit      int
	resetCalls int
}

func (r *stubUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (r *stubUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }
func (r *stubUserRepo) Delete(ctx context.Context, id uuid.UUID) error      { return nil }
func (r *stubUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	return r.user, nil
}
func (r *stubUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	return nil, nil
}
func (r *stubUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (r *stubUserRepo) ConsumeFeatureIfBelow(ctx context.Context, userId uuid.UUID, feature entity.Feature, limit int) (bool, error) {
	if limit >= 0 && r.user.PlanGenerationUsage >= limit {
		return false, nil
	}
	r.user.PlanGenerationUsage++
	return true, nil
}

func (r *stubUserRepo) ResetFeatureUsage(ctx context.Context, userId uuid.UUID, feature entity.Feature, at time.Time) error {
	r.resetCalls++
	r.user.PlanGenerationUsage = 0
	r.user.PlanGenerationLastReset = at
	return nil
}

type stubSubRepo struct{}

func (stubSubRepo) FindActiveByUserId(ctx context.Context, userId uuid.UUID) (*entity.UserSubscription, error) {
	return nil, nil
}
func (stubSubRepo) FindPlanById(ctx context.Context, id uuid.UUID) (*entity.SubscriptionPlan, error) {
	return nil, nil
}
func (stubSubRepo) FindPlanBySlug(ctx context.Context, slug string) (*entity.SubscriptionPlan, error) {
	return nil, nil
}
func (stubSubRepo) FindAllActivePlans(ctx context.Context) ([]*entity.SubscriptionPlan, error) {
	return nil, nil
}
func (stubSubRepo) CreatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error { return nil }
func (stubSubRepo) CreateSubscription(ctx context.Context, sub *entity.UserSubscription) error {
	return nil
}

type stubTicketRepo struct {
	remaining   int
	stale       int // active units already past their validity
	expireCalls int
}

func (r *stubTicketRepo) Create(ctx context.Context, ticket *entity.GenerationTicket) error {
	return nil
}
func (r *stubTicketRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationTicket, error) {
	return nil, nil
}

func (r *stubTicketRepo) ConsumeOne(ctx context.Context, userId uuid.UUID, feature entity.Feature) (bool, error) {
	if r.remaining <= 0 {
		return false, nil
	}
	r.remaining--
	return true, nil
}

func (r *stubTicketRepo) TotalRemaining(ctx context.Context, userId uuid.UUID, feature entity.Feature) (int, error) {
	return r.remaining, nil
}

func (r *stubTicketRepo) ExpireOutdated(ctx context.Context, userId uuid.UUID) error {
	r.expireCalls++
	r.stale = 0
	return nil
}

type stubUow struct {
	users   *stubUserRepo
	tickets *stubTicketRepo
}

func (u *stubUow) Begin(ctx context.Context) error { return nil }
func (u *stubUow) Commit() error                   { return nil }
func (u *stubUow) Rollback() error                 { return nil }

func (u *stubUow) UserRepository() contract.UserRepository { return u.users }
func (u *stubUow) SubscriptionRepository() contract.SubscriptionRepository {
	return stubSubRepo{}
}
func (u *stubUow) TicketRepository() contract.TicketRepository           { return u.tickets }
func (u *stubUow) PlanRepository() contract.PlanRepository               { return nil }
func (u *stubUow) GuideRepository() contract.GuideRepository             { return nil }
func (u *stubUow) ReplanEventRepository() contract.ReplanEventRepository { return nil }

type stubUowFactory struct {
	uow *stubUow
}

func (f *stubUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func freeTierUser(usage int, lastReset time.Time) *entity.User {
	return &entity.User{
		Id:                      uuid.New(),
		PlanGenerationUsage:     usage,
		PlanGenerationLastReset: lastReset,
	}
}

func TestPeriodSourceLazyRolloverResetsStaleCounter(t *testing.T) {
	// Counter was maxed out last month and the scheduler has not run yet.
	users := &stubUserRepo{user: freeTierUser(DefaultFreeLimit, time.Now().AddDate(0, -1, 0))}
	source := NewPeriodQuotaSource(&stubUowFactory{uow: &stubUow{users: users}})

	outcome, decision, err := source.TryConsume(context.Background(), users.user.Id, entity.FeaturePlanGeneration)
	if err != nil {
		t.Fatalf("TryConsume returned error: %v", err)
	}
	if outcome != OutcomeAllowed {
		t.Fatalf("stale counter must roll over, got outcome %v", outcome)
	}
	if users.resetCalls != 1 {
		t.Errorf("expected one reset, got %d", users.resetCalls)
	}
	if decision.Used != 1 {
		t.Errorf("fresh period should report 1 used, got %d", decision.Used)
	}
}

func TestPeriodSourceKeepsCounterWithinPeriod(t *testing.T) {
	users := &stubUserRepo{user: freeTierUser(DefaultFreeLimit, time.Now())}
	source := NewPeriodQuotaSource(&stubUowFactory{uow: &stubUow{users: users}})

	outcome, _, err := source.TryConsume(context.Background(), users.user.Id, entity.FeaturePlanGeneration)
	if err != nil {
		t.Fatalf("TryConsume returned error: %v", err)
	}
	if outcome != OutcomeDenied {
		t.Fatalf("exhausted in-period counter must deny, got %v", outcome)
	}
	if users.resetCalls != 0 {
		t.Errorf("counter inside its period must not be reset, got %d resets", users.resetCalls)
	}
}

func TestTicketSourceSweepsExpiredPacksBeforeConsuming(t *testing.T) {
	tickets := &stubTicketRepo{remaining: 0, stale: 2}
	source := NewTicketSource(&stubUowFactory{uow: &stubUow{tickets: tickets}})

	outcome, _, err := source.TryConsume(context.Background(), uuid.New(), entity.FeaturePlanGeneration)
	if err != nil {
		t.Fatalf("TryConsume returned error: %v", err)
	}
	if tickets.expireCalls != 1 {
		t.Fatalf("expected the expiry sweep to run once, got %d", tickets.expireCalls)
	}
	if tickets.stale != 0 {
		t.Error("stale packs should have been expired")
	}
	if outcome != OutcomeNotApplicable {
		t.Errorf("only stale packs available, expected not-applicable, got %v", outcome)
	}
}

func TestTicketSourceConsumesAfterSweep(t *testing.T) {
	tickets := &stubTicketRepo{remaining: 1}
	source := NewTicketSource(&stubUowFactory{uow: &stubUow{tickets: tickets}})

	outcome, decision, err := source.TryConsume(context.Background(), uuid.New(), entity.FeaturePlanGeneration)
	if err != nil {
		t.Fatalf("TryConsume returned error: %v", err)
	}
	if outcome != OutcomeAllowed {
		t.Fatalf("expected allowed, got %v", outcome)
	}
	if decision.TicketsRemaining != 0 {
		t.Errorf("balance after the last unit should be 0, got %d", decision.TicketsRemaining)
	}
}
