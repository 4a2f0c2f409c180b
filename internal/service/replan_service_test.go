package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-tripplanner-be/internal/dto"
	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/repository/specification"
	"ai-tripplanner-be/pkg/replan"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReplanEventRepo struct {
	mu     sync.Mutex
	events []*entity.ReplanEvent
}

func (r *fakeReplanEventRepo) Create(ctx context.Context, event *entity.ReplanEvent, breakdown *entity.ScoreBreakdown) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *fakeReplanEventRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReplanEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events, nil
}

func (r *fakeReplanEventRepo) CountByOutcome(ctx context.Context, outcome entity.ReplanOutcome) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.events {
		if e.Outcome == outcome {
			n++
		}
	}
	return n, nil
}

func rainReplanRequest() *dto.ReplanRequest {
	return &dto.ReplanRequest{
		PlanId: uuid.New(),
		Trigger: entity.ReplanTrigger{
			Type:   entity.TriggerRain,
			SlotId: "d2s1",
			Day:    2,
		},
		TravelerState: entity.TravelerState{
			EstimatedFatigue: 0.3,
			CurrentTime:      "13:00",
			TriggerType:      entity.TriggerRain,
		},
		TripContext: entity.TripContext{
			City:        "Bali",
			CurrentTime: "13:00",
			Weather:     &entity.WeatherInfo{Condition: entity.WeatherRainy, PrecipitationProb: 0.9},
		},
		TripPlan: entity.TripPlanState{
			Slots: []entity.PlanSlot{
				{
					Id:          "d2s1",
					Day:         2,
					SlotIndex:   0,
					Activity:    entity.Activity{Name: "Beach walk", Time: "13:00"},
					IsSkippable: true,
					Priority:    entity.SlotPriorityNice,
				},
				{
					Id:          "d2s3",
					Day:         2,
					SlotIndex:   2,
					Activity:    entity.Activity{Name: "Art museum visit", Time: "16:00"},
					IsSkippable: true,
					Priority:    entity.SlotPriorityNice,
				},
			},
		},
	}
}

func newTestReplanService(repo *fakeReplanEventRepo, budget time.Duration) IReplanService {
	engine := replan.NewEngine(
		[]replan.CandidateSource{replan.NewCatalogSource()},
		replan.NewScorer(),
		budget,
		nopLogger{},
	)
	uow := &fakeUnitOfWork{planRepo: newFakePlanRepo(), replanRepo: repo}
	return NewReplanService(engine, &fakeUowFactory{uow: uow}, nil, nopLogger{})
}

func TestReplanReturnsRankedResponse(t *testing.T) {
	repo := &fakeReplanEventRepo{}
	svc := newTestReplanService(repo, 3*time.Second)
	userId := uuid.New()
	req := rainReplanRequest()

	res := svc.Replan(context.Background(), userId, req)

	require.NotNil(t, res)
	assert.True(t, res.Success)
	require.NotNil(t, res.PrimaryOption)
	assert.False(t, res.Degraded)
	require.NotNil(t, res.ScoreBreakdown)
	assert.NotEmpty(t, res.Explanation)
	assert.LessOrEqual(t, res.ProcessingTimeMs, 3000)

	// In rain the indoor museum swap wins over anything outdoor.
	assert.Equal(t, "swap-d2s3", res.PrimaryOption.Id)
}

func TestReplanRecordsAnalyticsEvent(t *testing.T) {
	repo := &fakeReplanEventRepo{}
	svc := newTestReplanService(repo, 3*time.Second)
	userId := uuid.New()
	req := rainReplanRequest()

	res := svc.Replan(context.Background(), userId, req)
	require.NotNil(t, res)

	require.Len(t, repo.events, 1)
	event := repo.events[0]
	assert.Equal(t, req.PlanId, event.PlanId)
	assert.Equal(t, userId, event.UserId)
	assert.Equal(t, entity.TriggerRain, event.TriggerType)
	assert.Equal(t, entity.ReplanSucceeded, event.Outcome)
	assert.Equal(t, res.PrimaryOption.Id, event.PrimaryOptionId)
}

func TestReplanFallbackStillSucceeds(t *testing.T) {
	repo := &fakeReplanEventRepo{}
	svc := newTestReplanService(repo, 3*time.Second)

	// No skippable slots and a rain trigger: the catalog produces nothing,
	// so the static fallback carries the response.
	req := rainReplanRequest()
	req.TripPlan.Slots = nil

	res := svc.Replan(context.Background(), uuid.New(), req)

	require.NotNil(t, res)
	assert.True(t, res.Success)
	require.NotNil(t, res.PrimaryOption)
	assert.True(t, res.Degraded)

	require.Len(t, repo.events, 1)
	assert.Equal(t, entity.ReplanFailed, repo.events[0].Outcome)
	assert.True(t, repo.events[0].Degraded)
}
