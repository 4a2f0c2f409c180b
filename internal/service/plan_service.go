package service

import (
	"context"
	"fmt"
	"time"

	"ai-tripplanner-be/internal/dto"
	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/repository/specification"
	"ai-tripplanner-be/internal/repository/unitofwork"
	"ai-tripplanner-be/pkg/quota"

	"github.com/google/uuid"
)

type IPlanService interface {
	Save(ctx context.Context, userId uuid.UUID, req *dto.SavePlanRequest) (*dto.SavePlanResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowPlanResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ListPlansResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	UsageStatus(ctx context.Context, userId uuid.UUID) (*dto.UsageStatusResponse, error)
}

type planService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPlanService(uowFactory unitofwork.RepositoryFactory) IPlanService {
	return &planService{
		uowFactory: uowFactory,
	}
}

// Save titles a generated plan and keeps it. Enforces the saved-plan cap,
// which counts storage and so never consults the ticket pool.
func (s *planService) Save(ctx context.Context, userId uuid.UUID, req *dto.SavePlanRequest) (*dto.SavePlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plan, err := uow.PlanRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("plan %s not found", req.Id)
	}

	maxSaved, err := s.resolveMaxSavedPlans(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	if maxSaved >= 0 {
		count, err := uow.PlanRepository().Count(ctx, specification.ByUserID{UserID: userId})
		if err != nil {
			return nil, err
		}
		if count >= int64(maxSaved) {
			return nil, &dto.LimitExceededError{
				Limit:     maxSaved,
				Used:      int(count),
				Remaining: 0,
			}
		}
	}

	plan.Title = req.Title
	if err := uow.PlanRepository().Update(ctx, plan); err != nil {
		return nil, err
	}

	return &dto.SavePlanResponse{Id: plan.Id}, nil
}

func (s *planService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowPlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plan, err := uow.PlanRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, nil
	}

	res := dto.ShowPlanResponse{
		Id:          plan.Id,
		Destination: plan.Destination,
		Title:       plan.Title,
		Status:      string(plan.Status),
		CreatedAt:   plan.CreatedAt,
	}
	if !plan.UpdatedAt.IsZero() {
		updatedAt := plan.UpdatedAt
		res.UpdatedAt = &updatedAt
	}
	if len(plan.Itinerary.Days) > 0 {
		itinerary := plan.Itinerary
		res.Itinerary = &itinerary
	}
	return &res, nil
}

func (s *planService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ListPlansResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plans, err := uow.PlanRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ListPlansResponse, 0, len(plans))
	for _, plan := range plans {
		item := dto.ListPlansResponse{
			Id:          plan.Id,
			Destination: plan.Destination,
			Title:       plan.Title,
			Status:      string(plan.Status),
			DayCount:    len(plan.Itinerary.Days),
			CreatedAt:   plan.CreatedAt,
		}
		if item.DayCount == 0 && plan.Outline != nil {
			item.DayCount = len(plan.Outline.Days)
		}
		if !plan.UpdatedAt.IsZero() {
			updatedAt := plan.UpdatedAt
			item.UpdatedAt = &updatedAt
		}
		res = append(res, &item)
	}
	return res, nil
}

func (s *planService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plan, err := uow.PlanRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("plan %s not found", id)
	}
	return uow.PlanRepository().Delete(ctx, id)
}

// UsageStatus assembles the full entitlement picture: subscription plan,
// period counters, storage usage, and the prepaid ticket balance.
func (s *planService) UsageStatus(ctx context.Context, userId uuid.UUID) (*dto.UsageStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", userId)
	}

	plan, planInfo, err := s.resolvePlan(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	savedCount, err := uow.PlanRepository().Count(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		return nil, err
	}

	ticketsRemaining, err := uow.TicketRepository().TotalRemaining(ctx, userId, entity.FeaturePlanGeneration)
	if err != nil {
		return nil, err
	}
	activeTickets, err := uow.TicketRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.ByFeatureKey{FeatureKey: string(entity.FeaturePlanGeneration)},
		specification.ActiveTickets{},
		specification.NotExpiredAt{Now: time.Now()},
	)
	if err != nil {
		return nil, err
	}

	generationLimit := plan.PlanGenerationLimit
	if user.PlanGenerationLimitOverride != nil {
		generationLimit = *user.PlanGenerationLimitOverride
	}

	resetsAt := nextPeriodReset(ctx, uow, userId)

	res := dto.UsageStatusResponse{
		Plan: planInfo,
		Period: dto.PeriodLimits{
			PlanGeneration: usageLimit(user.PlanGenerationUsage, generationLimit, resetsAt),
			TravelInfo:     usageLimit(user.TravelInfoUsage, plan.TravelInfoLimit, resetsAt),
		},
		Storage: dto.StorageLimits{
			SavedPlans: usageLimit(int(savedCount), plan.MaxSavedPlans, nil),
		},
		Tickets: dto.TicketBalance{
			Remaining:   ticketsRemaining,
			ActivePacks: len(activeTickets),
			NextExpiry:  nextTicketExpiry(activeTickets),
		},
		UpgradeAvailable: planInfo.Slug == "free",
	}

	// Tickets extend generation even when the period quota is spent.
	if !res.Period.PlanGeneration.CanUse && ticketsRemaining > 0 {
		res.Period.PlanGeneration.CanUse = true
	}
	return &res, nil
}

func (s *planService) resolveMaxSavedPlans(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (int, error) {
	plan, _, err := s.resolvePlan(ctx, uow, userId)
	if err != nil {
		return 0, err
	}
	return plan.MaxSavedPlans, nil
}

// resolvePlan returns the user's subscription plan, falling back to the
// built-in free tier when no subscription exists.
func (s *planService) resolvePlan(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.SubscriptionPlan, dto.PlanInfo, error) {
	sub, err := uow.SubscriptionRepository().FindActiveByUserId(ctx, userId)
	if err != nil {
		return nil, dto.PlanInfo{}, err
	}
	if sub != nil {
		plan, err := uow.SubscriptionRepository().FindPlanById(ctx, sub.PlanId)
		if err != nil {
			return nil, dto.PlanInfo{}, err
		}
		if plan != nil {
			return plan, dto.PlanInfo{Id: plan.Id, Name: plan.Name, Slug: plan.Slug}, nil
		}
	}

	free := &entity.SubscriptionPlan{
		Name:                "Free",
		Slug:                "free",
		PlanGenerationLimit: quota.DefaultFreeLimit,
		TravelInfoLimit:     quota.DefaultFreeLimit,
		MaxSavedPlans:       5,
	}
	return free, dto.PlanInfo{Name: free.Name, Slug: free.Slug}, nil
}

func nextPeriodReset(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) *time.Time {
	sub, err := uow.SubscriptionRepository().FindActiveByUserId(ctx, userId)
	if err == nil && sub != nil {
		return &sub.CurrentPeriodEnd
	}
	now := time.Now()
	reset := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return &reset
}

func usageLimit(used, limit int, resetsAt *time.Time) dto.UsageLimit {
	return dto.UsageLimit{
		Used:     used,
		Limit:    limit,
		CanUse:   limit == -1 || used < limit,
		ResetsAt: resetsAt,
	}
}

func nextTicketExpiry(tickets []*entity.GenerationTicket) *time.Time {
	var next *time.Time
	for _, ticket := range tickets {
		if ticket.ValidUntil == nil {
			continue
		}
		if next == nil || ticket.ValidUntil.Before(*next) {
			next = ticket.ValidUntil
		}
	}
	return next
}
