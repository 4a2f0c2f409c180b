package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-tripplanner-be/internal/config"
	"ai-tripplanner-be/internal/dto"
	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/repository/contract"
	"ai-tripplanner-be/internal/repository/memory"
	"ai-tripplanner-be/internal/repository/specification"
	"ai-tripplanner-be/internal/repository/unitofwork"
	"ai-tripplanner-be/pkg/embedding"
	"ai-tripplanner-be/pkg/llm"
	"ai-tripplanner-be/pkg/plancache"
	"ai-tripplanner-be/pkg/progress"
	"ai-tripplanner-be/pkg/quota"
	"ai-tripplanner-be/pkg/retrieval"
	"ai-tripplanner-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeLLM routes outline and chunk prompts to scripted responses and counts
// how often the model was actually hit.
type fakeLLM struct {
	mu         sync.Mutex
	calls      int
	generateFn func(prompt string) (string, error)
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.generateFn(prompt)
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// failingEmbedding forces the retriever onto its no-context path so the
// fake unit of work never needs a guide repository.
type failingEmbedding struct{}

func (failingEmbedding) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return nil, errors.New("embedding backend down")
}

type memoryOutlineCache struct {
	mu      sync.Mutex
	entries map[string]*entity.PlanOutline
	gets    int
	sets    int
}

func newMemoryOutlineCache() *memoryOutlineCache {
	return &memoryOutlineCache{entries: map[string]*entity.PlanOutline{}}
}

func (c *memoryOutlineCache) Get(ctx context.Context, requestHash string) (*entity.PlanOutline, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	outline, ok := c.entries[requestHash]
	return outline, ok
}

func (c *memoryOutlineCache) Set(ctx context.Context, requestHash string, outline *entity.PlanOutline, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[requestHash] = outline
}

func (c *memoryOutlineCache) Delete(ctx context.Context, requestHash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, requestHash)
}

// countingQuotaSource grants until drained, then denies.
type countingQuotaSource struct {
	mu        sync.Mutex
	remaining int
	consumed  int
}

func (s *countingQuotaSource) Name() string { return "test-period" }

func (s *countingQuotaSource) TryConsume(ctx context.Context, userId uuid.UUID, feature entity.Feature) (quota.Outcome, *quota.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	decision := &quota.Decision{Limit: 5, Used: s.consumed, Remaining: s.remaining}
	if s.remaining <= 0 {
		return quota.OutcomeDenied, decision, nil
	}
	s.remaining--
	s.consumed++
	decision.Used = s.consumed
	decision.Remaining = s.remaining
	return quota.OutcomeAllowed, decision, nil
}

// fakePlanRepo keeps plans in a map and records status transitions.
type fakePlanRepo struct {
	mu          sync.Mutex
	plans       map[uuid.UUID]*entity.SavedPlan
	itineraries map[uuid.UUID]*entity.Itinerary
	statuses    []entity.PlanStatus
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{
		plans:       map[uuid.UUID]*entity.SavedPlan{},
		itineraries: map[uuid.UUID]*entity.Itinerary{},
	}
}

func (r *fakePlanRepo) Create(ctx context.Context, plan *entity.SavedPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *plan
	r.plans[plan.Id] = &stored
	return nil
}

func (r *fakePlanRepo) Update(ctx context.Context, plan *entity.SavedPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *plan
	r.plans[plan.Id] = &stored
	return nil
}

func (r *fakePlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.plans, id)
	return nil
}

func (r *fakePlanRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SavedPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			if plan, found := r.plans[byID.ID]; found {
				copied := *plan
				return &copied, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SavedPlan, error) {
	return nil, nil
}

func (r *fakePlanRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.plans)), nil
}

func (r *fakePlanRepo) UpdateItinerary(ctx context.Context, id uuid.UUID, itinerary *entity.Itinerary, status entity.PlanStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.itineraries[id] = itinerary
	r.statuses = append(r.statuses, status)
	if plan, ok := r.plans[id]; ok {
		plan.Status = status
	}
	return nil
}

func (r *fakePlanRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.PlanStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	if plan, ok := r.plans[id]; ok {
		plan.Status = status
	}
	return nil
}

type fakeUnitOfWork struct {
	planRepo   *fakePlanRepo
	replanRepo *fakeReplanEventRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository                 { return nil }
func (u *fakeUnitOfWork) SubscriptionRepository() contract.SubscriptionRepository { return nil }
func (u *fakeUnitOfWork) TicketRepository() contract.TicketRepository             { return nil }
func (u *fakeUnitOfWork) PlanRepository() contract.PlanRepository                 { return u.planRepo }
func (u *fakeUnitOfWork) GuideRepository() contract.GuideRepository               { return nil }
func (u *fakeUnitOfWork) ReplanEventRepository() contract.ReplanEventRepository {
	return u.replanRepo
}

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func testConfig() *config.Config {
	return &config.Config{
		Planner: config.PlannerConfig{
			OutlineCacheTTLHours: 168,
			ChunkWorkers:         2,
			ChunkMaxAttempts:     3,
			ReplanBudgetMs:       3000,
		},
		Ai: config.AIConfig{LLMModel: "test-model"},
	}
}

func outlineJSON(destination string, days int) string {
	type dayWire struct {
		Day     int    `json:"day"`
		Title   string `json:"title"`
		Summary string `json:"summary"`
	}
	wire := struct {
		Destination string    `json:"destination"`
		Description string    `json:"description"`
		Days        []dayWire `json:"days"`
	}{Destination: destination, Description: "A trip"}
	for d := 1; d <= days; d++ {
		wire.Days = append(wire.Days, dayWire{Day: d, Title: fmt.Sprintf("Day %d highlights", d)})
	}
	b, _ := json.Marshal(wire)
	return string(b)
}

func chunkJSON(startDay, endDay int) string {
	type activityWire struct {
		Time string `json:"time"`
		Name string `json:"name"`
	}
	type dayWire struct {
		Day        int            `json:"day"`
		Title      string         `json:"title"`
		Activities []activityWire `json:"activities"`
	}
	wire := struct {
		Days []dayWire `json:"days"`
	}{}
	for d := startDay; d <= endDay; d++ {
		wire.Days = append(wire.Days, dayWire{
			Day:   d,
			Title: fmt.Sprintf("Day %d", d),
			Activities: []activityWire{
				{Time: "09:00", Name: "Morning walk"},
				{Time: "14:00", Name: "Museum visit"},
			},
		})
	}
	b, _ := json.Marshal(wire)
	return string(b)
}

// chunkRange parses the in-chunk day markers out of a chunk prompt so the
// scripted model can answer for the right days.
func chunkRange(prompt string) (int, int) {
	start, end := 0, 0
	for day := 1; day <= 100; day++ {
		if strings.Contains(prompt, fmt.Sprintf("> Day %d:", day)) {
			if start == 0 {
				start = day
			}
			end = day
		}
	}
	return start, end
}

func newTestPlannerService(llmFn func(prompt string) (string, error), cache plancache.OutlineCache, quotaSource quota.Source, repo *fakePlanRepo) (IPlannerService, *fakeLLM) {
	llmStub := &fakeLLM{generateFn: llmFn}
	svc := NewPlannerService(
		&fakeUowFactory{uow: &fakeUnitOfWork{planRepo: repo}},
		llmStub,
		retrieval.NewRetriever(failingEmbedding{}, retrieval.DefaultConfig(), nopLogger{}),
		cache,
		quota.NewGuard(nopLogger{}, quotaSource),
		memory.NewGenerationStateRepository(),
		nil,
		testConfig(),
		nopLogger{},
	)
	return svc, llmStub
}

func scriptedModel(t *testing.T) func(prompt string) (string, error) {
	return func(prompt string) (string, error) {
		if start, end := chunkRange(prompt); start > 0 {
			return chunkJSON(start, end), nil
		}
		return outlineJSON("Kyoto", 4), nil
	}
}

func TestGenerateOutlineCacheHitSkipsQuota(t *testing.T) {
	cache := newMemoryOutlineCache()
	source := &countingQuotaSource{remaining: 5}
	repo := newFakePlanRepo()
	svc, llmStub := newTestPlannerService(scriptedModel(t), cache, source, repo)

	req := &dto.GeneratePlanRequest{
		Destinations: []string{"Kyoto"},
		Dates:        "2026-10-01..2026-10-04",
	}
	userId := uuid.New()

	first, err := svc.GenerateOutline(context.Background(), userId, req, progress.Noop())
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Len(t, first.Outline.Days, 4)
	assert.Equal(t, 1, source.consumed)

	second, err := svc.GenerateOutline(context.Background(), userId, req, progress.Noop())
	require.NoError(t, err)
	assert.True(t, second.FromCache)

	// The repeat served from cache: no extra model call, no quota spend.
	assert.Equal(t, 1, llmStub.callCount())
	assert.Equal(t, 1, source.consumed)

	// Both calls persisted their own plan row.
	assert.NotEqual(t, first.PlanId, second.PlanId)
	count, _ := repo.Count(context.Background())
	assert.EqualValues(t, 2, count)
}

func TestGenerateOutlineQuotaExhausted(t *testing.T) {
	cache := newMemoryOutlineCache()
	source := &countingQuotaSource{remaining: 0}
	svc, llmStub := newTestPlannerService(scriptedModel(t), cache, source, newFakePlanRepo())

	req := &dto.GeneratePlanRequest{
		Destinations: []string{"Kyoto"},
		Dates:        "2026-10-01..2026-10-04",
	}

	_, err := svc.GenerateOutline(context.Background(), uuid.New(), req, progress.Noop())
	require.Error(t, err)

	var limitErr *dto.LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 5, limitErr.Limit)

	// Denied requests never reach the model.
	assert.Equal(t, 0, llmStub.callCount())
}

func TestGenerateOutlineRejectsUnparseableDates(t *testing.T) {
	svc, _ := newTestPlannerService(scriptedModel(t), newMemoryOutlineCache(), &countingQuotaSource{remaining: 5}, newFakePlanRepo())

	req := &dto.GeneratePlanRequest{
		Destinations: []string{"Kyoto"},
		Dates:        "sometime next year",
	}

	_, err := svc.GenerateOutline(context.Background(), uuid.New(), req, progress.Noop())
	require.Error(t, err)
}

func TestGenerateItineraryAssemblesDaysAscending(t *testing.T) {
	cache := newMemoryOutlineCache()
	repo := newFakePlanRepo()
	svc, _ := newTestPlannerService(scriptedModel(t), cache, &countingQuotaSource{remaining: 5}, repo)

	req := &dto.GeneratePlanRequest{
		Destinations: []string{"Kyoto"},
		Dates:        "2026-10-01..2026-10-04",
	}
	userId := uuid.New()

	outlineRes, err := svc.GenerateOutline(context.Background(), userId, req, progress.Noop())
	require.NoError(t, err)

	itinRes, err := svc.GenerateItinerary(context.Background(), userId, outlineRes.PlanId, progress.Noop())
	require.NoError(t, err)
	assert.Equal(t, string(entity.PlanStatusComplete), itinRes.Status)

	require.Len(t, itinRes.Itinerary.Days, 4)
	for i, day := range itinRes.Itinerary.Days {
		assert.Equal(t, i+1, day.Day)
		assert.False(t, day.Failed)
		assert.NotEmpty(t, day.Activities)
	}

	// Lifecycle walked generating -> complete.
	require.NotEmpty(t, repo.statuses)
	assert.Equal(t, entity.PlanStatusGenerating, repo.statuses[0])
	assert.Equal(t, entity.PlanStatusComplete, repo.statuses[len(repo.statuses)-1])
}

func TestGenerateItineraryPartialOnChunkFailure(t *testing.T) {
	cache := newMemoryOutlineCache()
	repo := newFakePlanRepo()

	// Days 3-4 never parse: every attempt returns prose instead of JSON.
	model := func(prompt string) (string, error) {
		if start, end := chunkRange(prompt); start > 0 {
			if start >= 3 {
				return "I could not produce a plan for these days.", nil
			}
			return chunkJSON(start, end), nil
		}
		return outlineJSON("Kyoto", 4), nil
	}
	svc, llmStub := newTestPlannerService(model, cache, &countingQuotaSource{remaining: 5}, repo)

	req := &dto.GeneratePlanRequest{
		Destinations: []string{"Kyoto"},
		Dates:        "2026-10-01..2026-10-04",
	}
	userId := uuid.New()

	outlineRes, err := svc.GenerateOutline(context.Background(), userId, req, progress.Noop())
	require.NoError(t, err)

	itinRes, err := svc.GenerateItinerary(context.Background(), userId, outlineRes.PlanId, progress.Noop())
	require.NoError(t, err)
	assert.Equal(t, string(entity.PlanStatusPartial), itinRes.Status)

	require.Len(t, itinRes.Itinerary.Days, 4)
	assert.False(t, itinRes.Itinerary.Days[0].Failed)
	assert.False(t, itinRes.Itinerary.Days[1].Failed)
	assert.True(t, itinRes.Itinerary.Days[2].Failed)
	assert.True(t, itinRes.Itinerary.Days[3].Failed)

	// Placeholder days keep the outline titles.
	assert.Equal(t, "Day 3 highlights", itinRes.Itinerary.Days[2].Title)

	// Outline call plus one good chunk plus three attempts on the bad one.
	assert.Equal(t, 5, llmStub.callCount())
}

func TestGenerateItineraryUnknownPlan(t *testing.T) {
	svc, _ := newTestPlannerService(scriptedModel(t), newMemoryOutlineCache(), &countingQuotaSource{remaining: 5}, newFakePlanRepo())

	_, err := svc.GenerateItinerary(context.Background(), uuid.New(), uuid.New(), progress.Noop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGenerationStatusTracksProgress(t *testing.T) {
	svc, _ := newTestPlannerService(scriptedModel(t), newMemoryOutlineCache(), &countingQuotaSource{remaining: 5}, newFakePlanRepo())

	req := &dto.GeneratePlanRequest{
		Destinations: []string{"Kyoto"},
		Dates:        "2026-10-01..2026-10-04",
	}
	userId := uuid.New()

	outlineRes, err := svc.GenerateOutline(context.Background(), userId, req, progress.Noop())
	require.NoError(t, err)

	state, ok := svc.GenerationStatus(userId, outlineRes.PlanId)
	require.True(t, ok)
	assert.Equal(t, store.PhaseOutline, state.Phase)

	_, err = svc.GenerateItinerary(context.Background(), userId, outlineRes.PlanId, progress.Noop())
	require.NoError(t, err)

	state, ok = svc.GenerationStatus(userId, outlineRes.PlanId)
	require.True(t, ok)
	assert.Equal(t, store.PhaseDone, state.Phase)
	assert.Equal(t, 2, state.ChunksTotal)
	assert.Equal(t, state.ChunksTotal, state.ChunksDone)
	assert.Empty(t, state.FailedDays)

	// Another user polling the same plan learns nothing.
	_, ok = svc.GenerationStatus(uuid.New(), outlineRes.PlanId)
	assert.False(t, ok)

	_, ok = svc.GenerationStatus(userId, uuid.New())
	assert.False(t, ok)
}
