package quota

import (
	"context"
	"time"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/repository/specification"
	"ai-tripplanner-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// DefaultFreeLimit applies to users without an active subscription.
const DefaultFreeLimit = 3

// PeriodQuotaSource consumes from the per-period usage counter on the user
// row. The effective limit resolves in order: admin override, active
// subscription plan, free tier default.
type PeriodQuotaSource struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPeriodQuotaSource(uowFactory unitofwork.RepositoryFactory) *PeriodQuotaSource {
	return &PeriodQuotaSource{uowFactory: uowFactory}
}

func (s *PeriodQuotaSource) Name() string {
	return "subscription"
}

func (s *PeriodQuotaSource) TryConsume(ctx context.Context, userId uuid.UUID, feature entity.Feature) (Outcome, *Decision, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return OutcomeDenied, nil, err
	}
	if user == nil {
		return OutcomeDenied, &Decision{}, nil
	}

	limit, periodStart, resetAt, err := s.resolveLimit(ctx, uow, user, feature)
	if err != nil {
		return OutcomeDenied, nil, err
	}

	used := featureUsage(user, feature)

	// Lazy rollover. A scheduler resets counters at the period boundary,
	// but a user arriving before it runs must not be denied on a counter
	// from the previous period.
	if used > 0 && featureLastReset(user, feature).Before(periodStart) {
		if err := uow.UserRepository().ResetFeatureUsage(ctx, userId, feature, time.Now()); err != nil {
			return OutcomeDenied, nil, err
		}
		used = 0
	}

	decision := &Decision{
		Used:    used,
		Limit:   limit,
		ResetAt: resetAt,
	}

	if limit == 0 {
		// Feature disabled on this tier, let the ticket pool decide
		return OutcomeNotApplicable, decision, nil
	}

	consumed, err := uow.UserRepository().ConsumeFeatureIfBelow(ctx, userId, feature, limit)
	if err != nil {
		return OutcomeDenied, nil, err
	}
	if !consumed {
		decision.Remaining = 0
		return OutcomeDenied, decision, nil
	}

	decision.Used = used + 1
	if limit < 0 {
		decision.Remaining = -1
	} else {
		decision.Remaining = limit - decision.Used
	}
	return OutcomeAllowed, decision, nil
}

func (s *PeriodQuotaSource) resolveLimit(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User, feature entity.Feature) (int, time.Time, time.Time, error) {
	if feature == entity.FeaturePlanGeneration && user.PlanGenerationLimitOverride != nil {
		return *user.PlanGenerationLimitOverride, monthStart(time.Now()), nextMonthStart(time.Now()), nil
	}

	sub, err := uow.SubscriptionRepository().FindActiveByUserId(ctx, user.Id)
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	if sub == nil {
		return DefaultFreeLimit, monthStart(time.Now()), nextMonthStart(time.Now()), nil
	}

	plan, err := uow.SubscriptionRepository().FindPlanById(ctx, sub.PlanId)
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	if plan == nil {
		return DefaultFreeLimit, sub.CurrentPeriodStart, sub.CurrentPeriodEnd, nil
	}

	switch feature {
	case entity.FeatureTravelInfo:
		return plan.TravelInfoLimit, sub.CurrentPeriodStart, sub.CurrentPeriodEnd, nil
	default:
		return plan.PlanGenerationLimit, sub.CurrentPeriodStart, sub.CurrentPeriodEnd, nil
	}
}

func featureUsage(user *entity.User, feature entity.Feature) int {
	if feature == entity.FeatureTravelInfo {
		return user.TravelInfoUsage
	}
	return user.PlanGenerationUsage
}

func featureLastReset(user *entity.User, feature entity.Feature) time.Time {
	if feature == entity.FeatureTravelInfo {
		return user.TravelInfoLastReset
	}
	return user.PlanGenerationLastReset
}

// monthStart and nextMonthStart bound the period for users without a
// subscription period of their own.
func monthStart(now time.Time) time.Time {
	year, month, _ := now.UTC().Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

func nextMonthStart(now time.Time) time.Time {
	return monthStart(now).AddDate(0, 1, 0)
}

// TicketSource consumes from the prepaid ticket pool. Consulted only after
// the period quota denies.
type TicketSource struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewTicketSource(uowFactory unitofwork.RepositoryFactory) *TicketSource {
	return &TicketSource{uowFactory: uowFactory}
}

func (s *TicketSource) Name() string {
	return "ticket"
}

func (s *TicketSource) TryConsume(ctx context.Context, userId uuid.UUID, feature entity.Feature) (Outcome, *Decision, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	tickets := uow.TicketRepository()

	// Sweep stale packs first so an expired ticket can never be spent and
	// the balance reported below stays truthful.
	if err := tickets.ExpireOutdated(ctx, userId); err != nil {
		return OutcomeDenied, nil, err
	}

	consumed, err := tickets.ConsumeOne(ctx, userId, feature)
	if err != nil {
		return OutcomeDenied, nil, err
	}
	if !consumed {
		return OutcomeNotApplicable, &Decision{}, nil
	}

	remaining, err := tickets.TotalRemaining(ctx, userId, feature)
	if err != nil {
		// The unit is already spent, report the grant and log nothing here,
		// balance is advisory only.
		remaining = 0
	}

	return OutcomeAllowed, &Decision{TicketsRemaining: remaining}, nil
}
