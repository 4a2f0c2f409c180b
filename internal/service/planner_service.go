package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ai-tripplanner-be/internal/config"
	"ai-tripplanner-be/internal/dto"
	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/pkg/logger"
	"ai-tripplanner-be/internal/repository/memory"
	"ai-tripplanner-be/internal/repository/specification"
	"ai-tripplanner-be/internal/repository/unitofwork"
	"ai-tripplanner-be/pkg/events"
	"ai-tripplanner-be/pkg/llm"
	pktNats "ai-tripplanner-be/pkg/nats"
	"ai-tripplanner-be/pkg/plancache"
	"ai-tripplanner-be/pkg/planner"
	"ai-tripplanner-be/pkg/progress"
	"ai-tripplanner-be/pkg/quota"
	"ai-tripplanner-be/pkg/retrieval"
	"ai-tripplanner-be/pkg/store"

	"github.com/google/uuid"
)

type IPlannerService interface {
	// GenerateOutline runs the outline stage only: cache lookup, quota
	// check on miss, guide retrieval, model call, persist.
	GenerateOutline(ctx context.Context, userId uuid.UUID, req *dto.GeneratePlanRequest, emit progress.Emitter) (*dto.GeneratePlanResponse, error)

	// GenerateItinerary expands a stored outline into the full itinerary
	// through chunked concurrent generation. Partial results are valid.
	GenerateItinerary(ctx context.Context, userId uuid.UUID, planId uuid.UUID, emit progress.Emitter) (*dto.GenerateItineraryResponse, error)

	// Generate runs the full pipeline and reports through the emitter,
	// ending with exactly one terminal event. Used by the streaming
	// endpoint.
	Generate(ctx context.Context, userId uuid.UUID, req *dto.GeneratePlanRequest, emit progress.Emitter)

	// GenerationStatus reports the in-memory progress of a generation the
	// user started. False once the state expired or never existed.
	GenerationStatus(userId uuid.UUID, planId uuid.UUID) (*store.GenerationState, bool)
}

type plannerService struct {
	uowFactory     unitofwork.RepositoryFactory
	llmProvider    llm.LLMProvider
	retriever      *retrieval.Retriever
	outlineCache   plancache.OutlineCache
	quotaGuard     *quota.Guard
	stateRepo      *memory.GenerationStateRepository
	eventPublisher *pktNats.Publisher
	cfg            *config.Config
	log            logger.ILogger
}

func NewPlannerService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	retriever *retrieval.Retriever,
	outlineCache plancache.OutlineCache,
	quotaGuard *quota.Guard,
	stateRepo *memory.GenerationStateRepository,
	eventPublisher *pktNats.Publisher,
	cfg *config.Config,
	log logger.ILogger,
) IPlannerService {
	return &plannerService{
		uowFactory:     uowFactory,
		llmProvider:    llmProvider,
		retriever:      retriever,
		outlineCache:   outlineCache,
		quotaGuard:     quotaGuard,
		stateRepo:      stateRepo,
		eventPublisher: eventPublisher,
		cfg:            cfg,
		log:            log,
	}
}

func (s *plannerService) GenerateOutline(ctx context.Context, userId uuid.UUID, req *dto.GeneratePlanRequest, emit progress.Emitter) (*dto.GeneratePlanResponse, error) {
	tripReq := toTripRequest(req)

	totalDays := planner.TotalDays(tripReq.Dates)
	if totalDays <= 0 {
		return nil, fmt.Errorf("could not resolve trip length from dates %q", tripReq.Dates)
	}

	requestHash := planner.RequestHash(tripReq)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	emit.Progress(dto.ProgressStepCacheCheck, "Checking for an existing plan")
	outline, hit := s.outlineCache.Get(ctx, requestHash)

	if !hit {
		// A cache hit never spends quota, only real generation does.
		emit.Progress(dto.ProgressStepUsageCheck, "Checking your plan allowance")
		decision, err := s.quotaGuard.CheckAndConsume(ctx, userId, entity.FeaturePlanGeneration)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return nil, &dto.LimitExceededError{
				Limit:      decision.Limit,
				Used:       decision.Used,
				Remaining:  decision.Remaining,
				ResetAfter: decision.ResetAt,
			}
		}

		outline, err = s.generateOutline(ctx, uow, tripReq, totalDays, emit)
		if err != nil {
			return nil, err
		}

		ttl := time.Duration(s.cfg.Planner.OutlineCacheTTLHours) * time.Hour
		s.outlineCache.Set(ctx, requestHash, outline, ttl)
	}

	plan := entity.SavedPlan{
		Id:          uuid.New(),
		UserId:      userId,
		Destination: outline.Destination,
		Title:       defaultPlanTitle(outline),
		Request:     *tripReq,
		Outline:     outline,
		Status:      entity.PlanStatusOutline,
		CreatedAt:   time.Now(),
	}
	if err := uow.PlanRepository().Create(ctx, &plan); err != nil {
		return nil, err
	}

	s.stateRepo.Save(&store.GenerationState{
		PlanID:    plan.Id.String(),
		UserID:    userId.String(),
		Phase:     store.PhaseOutline,
		Step:      dto.ProgressStepAiGeneration,
		StartedAt: time.Now(),
	})

	return &dto.GeneratePlanResponse{
		PlanId:    plan.Id,
		Outline:   outline,
		FromCache: hit,
	}, nil
}

func (s *plannerService) generateOutline(ctx context.Context, uow unitofwork.UnitOfWork, tripReq *entity.TripRequest, totalDays int, emit progress.Emitter) (*entity.PlanOutline, error) {
	primaryDestination := tripReq.Destinations[0]

	emit.Progress(dto.ProgressStepGuideSearch, "Finding destination guides")
	articles := s.retriever.Search(ctx, uow, primaryDestination, retrievalQuery(tripReq))

	emit.Progress(dto.ProgressStepPromptBuild, "Preparing your trip brief")
	prompt := buildOutlinePrompt(tripReq, totalDays, retrieval.BuildContext(articles))

	emit.Progress(dto.ProgressStepAiGeneration, "Drafting the trip outline")
	raw, err := s.llmProvider.Generate(ctx, prompt, llm.WithJSONOutput(), llm.WithTemperature(0.7))
	if err != nil {
		return nil, fmt.Errorf("outline generation failed: %w", err)
	}

	outline, err := parseOutline(raw, primaryDestination, totalDays)
	if err != nil {
		return nil, err
	}
	outline.Articles = dereferenceArticles(articles)
	outline.Model = entity.ModelInfo{Name: s.cfg.Ai.LLMModel, Tier: "flash"}
	return outline, nil
}

func (s *plannerService) GenerateItinerary(ctx context.Context, userId uuid.UUID, planId uuid.UUID, emit progress.Emitter) (*dto.GenerateItineraryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plan, err := uow.PlanRepository().FindOne(ctx,
		specification.ByID{ID: planId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("plan %s not found", planId)
	}
	if plan.Outline == nil || len(plan.Outline.Days) == 0 {
		return nil, fmt.Errorf("plan %s has no outline to expand", planId)
	}

	if err := uow.PlanRepository().UpdateStatus(ctx, planId, entity.PlanStatusGenerating); err != nil {
		return nil, err
	}

	guideContext := retrieval.BuildContext(outlineArticles(plan.Outline))
	chunks := planner.Split(len(plan.Outline.Days))

	state := &store.GenerationState{
		PlanID:      planId.String(),
		UserID:      userId.String(),
		Phase:       store.PhaseChunks,
		Step:        dto.ProgressStepAiGeneration,
		ChunksTotal: len(chunks),
		StartedAt:   time.Now(),
	}
	if prev, ok := s.stateRepo.Get(planId.String()); ok {
		state.StartedAt = prev.StartedAt
	}
	s.stateRepo.Save(state)

	days, failedDays := s.generateChunks(ctx, plan, chunks, guideContext, state, emit)

	status := entity.PlanStatusComplete
	if len(failedDays) > 0 {
		status = entity.PlanStatusPartial
	}

	itinerary := &entity.Itinerary{
		Id:          planId,
		Destination: plan.Outline.Destination,
		Description: plan.Outline.Description,
		Days:        days,
		References:  articleRefs(plan.Outline.Articles),
		Model:       plan.Outline.Model,
		GeneratedAt: time.Now(),
	}

	if err := uow.PlanRepository().UpdateItinerary(ctx, planId, itinerary, status); err != nil {
		return nil, err
	}

	// Partial results still count as finished, only a fully failed
	// generation lands in the failed phase.
	phase := store.PhaseDone
	if len(failedDays) == len(plan.Outline.Days) {
		phase = store.PhaseFailed
	}
	s.stateRepo.Save(&store.GenerationState{
		PlanID:      planId.String(),
		UserID:      userId.String(),
		Phase:       phase,
		Step:        dto.ProgressStepAiGeneration,
		ChunksDone:  len(chunks),
		ChunksTotal: len(chunks),
		FailedDays:  failedDays,
		StartedAt:   state.StartedAt,
	})

	s.publishItineraryEvent(ctx, plan, status, failedDays)

	return &dto.GenerateItineraryResponse{
		PlanId:    planId,
		Itinerary: itinerary,
		Status:    string(status),
	}, nil
}

// generateChunks dispatches chunk jobs to a bounded worker pool and
// assembles the results day-ascending. Failed chunks contribute
// placeholder days carrying the outline title.
func (s *plannerService) generateChunks(ctx context.Context, plan *entity.SavedPlan, chunks []planner.ChunkInfo, guideContext string, state *store.GenerationState, emit progress.Emitter) ([]entity.DayPlan, []int) {
	workers := s.cfg.Planner.ChunkWorkers
	if workers < 1 {
		workers = 1
	}

	type chunkResult struct {
		chunk planner.ChunkInfo
		days  []entity.DayPlan
		err   error
	}

	jobs := make(chan planner.ChunkInfo)
	results := make(chan chunkResult)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range jobs {
				days, err := s.generateChunk(ctx, plan, chunk, guideContext)
				results <- chunkResult{chunk: chunk, days: days, err: err}
			}
		}()
	}

	go func() {
		for _, chunk := range chunks {
			jobs <- chunk
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	byDay := make(map[int]entity.DayPlan)
	var failedDays []int
	done := 0

	for res := range results {
		done++
		if res.err != nil {
			s.log.Error("PlannerService", "chunk generation exhausted retries", map[string]interface{}{
				"plan_id":   plan.Id,
				"start_day": res.chunk.StartDay,
				"end_day":   res.chunk.EndDay,
				"error":     res.err.Error(),
			})
			for day := res.chunk.StartDay; day <= res.chunk.EndDay; day++ {
				byDay[day] = entity.DayPlan{
					Day:    day,
					Title:  outlineTitle(plan.Outline, day),
					Failed: true,
				}
				failedDays = append(failedDays, day)
			}
		} else {
			for _, day := range res.days {
				byDay[day.Day] = day
			}
		}
		// Poll readers get a fresh copy per update so nobody observes a
		// struct mid-mutation.
		snap := *state
		snap.ChunksDone = done
		snap.FailedDays = append([]int(nil), failedDays...)
		s.stateRepo.Save(&snap)

		emit.ChunkProgress(dto.ProgressStepAiGeneration,
			fmt.Sprintf("Planned days %d-%d", res.chunk.StartDay, res.chunk.EndDay),
			done, len(chunks))
	}

	days := make([]entity.DayPlan, 0, len(byDay))
	for _, day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	sort.Ints(failedDays)
	return days, failedDays
}

// generateChunk runs one chunk with the per-chunk retry budget.
func (s *plannerService) generateChunk(ctx context.Context, plan *entity.SavedPlan, chunk planner.ChunkInfo, guideContext string) ([]entity.DayPlan, error) {
	prompt := buildChunkPrompt(&plan.Request, plan.Outline, chunk, guideContext)

	maxAttempts := s.cfg.Planner.ChunkMaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		raw, err := s.llmProvider.Generate(ctx, prompt, llm.WithJSONOutput(), llm.WithTemperature(0.7))
		if err != nil {
			lastErr = err
			continue
		}

		days, err := parseChunkDays(raw, chunk, plan.Outline)
		if err != nil {
			lastErr = err
			s.log.Warn("PlannerService", "chunk response rejected, retrying", map[string]interface{}{
				"plan_id":   plan.Id,
				"start_day": chunk.StartDay,
				"attempt":   attempt,
				"error":     err.Error(),
			})
			continue
		}
		return days, nil
	}
	return nil, lastErr
}

func (s *plannerService) Generate(ctx context.Context, userId uuid.UUID, req *dto.GeneratePlanRequest, emit progress.Emitter) {
	outlineRes, err := s.GenerateOutline(ctx, userId, req, emit)
	if err != nil {
		emit.Error(err.Error())
		return
	}

	itineraryRes, err := s.GenerateItinerary(ctx, userId, outlineRes.PlanId, emit)
	if err != nil {
		emit.Error(err.Error())
		return
	}

	emit.Complete(itineraryRes)
}

func (s *plannerService) GenerationStatus(userId uuid.UUID, planId uuid.UUID) (*store.GenerationState, bool) {
	state, ok := s.stateRepo.Get(planId.String())
	if !ok || state.UserID != userId.String() {
		return nil, false
	}
	return state, true
}

func (s *plannerService) publishItineraryEvent(ctx context.Context, plan *entity.SavedPlan, status entity.PlanStatus, failedDays []int) {
	if s.eventPublisher == nil {
		return
	}

	eventType := events.TypeItineraryReady
	if status == entity.PlanStatusPartial {
		eventType = events.TypeItineraryPartial
	}
	evt := events.NewEvent(eventType, map[string]interface{}{
		"plan_id":     plan.Id,
		"user_id":     plan.UserId,
		"destination": plan.Destination,
		"title":       plan.Title,
		"failed_days": failedDays,
	})
	// Notification delivery is auxiliary, generation already succeeded.
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.log.Warn("PlannerService", "failed to publish itinerary event", map[string]interface{}{
			"plan_id": plan.Id,
			"error":   err.Error(),
		})
	}
}

// --- model response parsing ---

type outlineWire struct {
	Destination string `json:"destination"`
	Description string `json:"description"`
	Days        []struct {
		Day     int    `json:"day"`
		Title   string `json:"title"`
		Summary string `json:"summary"`
	} `json:"days"`
}

func parseOutline(raw, fallbackDestination string, totalDays int) (*entity.PlanOutline, error) {
	var wire outlineWire
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &wire); err != nil {
		return nil, fmt.Errorf("malformed outline response: %w", err)
	}
	if len(wire.Days) == 0 {
		return nil, fmt.Errorf("outline response contains no days")
	}

	outline := &entity.PlanOutline{
		Destination: wire.Destination,
		Description: wire.Description,
	}
	if outline.Destination == "" {
		outline.Destination = fallbackDestination
	}

	// Re-number sequentially: the day count is ours, not the model's.
	byDay := make(map[int]string, len(wire.Days))
	summaries := make(map[int]string, len(wire.Days))
	for _, d := range wire.Days {
		byDay[d.Day] = d.Title
		summaries[d.Day] = d.Summary
	}
	for day := 1; day <= totalDays; day++ {
		title := byDay[day]
		if title == "" {
			title = fmt.Sprintf("Day %d in %s", day, outline.Destination)
		}
		outline.Days = append(outline.Days, entity.DayTitle{
			Day:     day,
			Title:   title,
			Summary: summaries[day],
		})
	}
	return outline, nil
}

type chunkWire struct {
	Days []struct {
		Day        int    `json:"day"`
		Title      string `json:"title"`
		Activities []struct {
			Time        string  `json:"time"`
			Name        string  `json:"name"`
			Description string  `json:"description"`
			Lat         float64 `json:"lat"`
			Lng         float64 `json:"lng"`
			Citation    string  `json:"citation"`
		} `json:"activities"`
	} `json:"days"`
}

// parseChunkDays validates that the response covers exactly the chunk's day
// range. Out-of-range or missing days fail the attempt so the retry loop
// can ask again.
func parseChunkDays(raw string, chunk planner.ChunkInfo, outline *entity.PlanOutline) ([]entity.DayPlan, error) {
	var wire chunkWire
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &wire); err != nil {
		return nil, fmt.Errorf("malformed chunk response: %w", err)
	}

	seen := make(map[int]bool)
	var days []entity.DayPlan
	for _, d := range wire.Days {
		if d.Day < chunk.StartDay || d.Day > chunk.EndDay {
			return nil, fmt.Errorf("day %d outside chunk range %d-%d", d.Day, chunk.StartDay, chunk.EndDay)
		}
		if seen[d.Day] {
			return nil, fmt.Errorf("day %d returned twice", d.Day)
		}
		seen[d.Day] = true

		if len(d.Activities) == 0 {
			return nil, fmt.Errorf("day %d has no activities", d.Day)
		}

		day := entity.DayPlan{
			Day:   d.Day,
			Title: d.Title,
		}
		if day.Title == "" {
			day.Title = outlineTitle(outline, d.Day)
		}
		for _, a := range d.Activities {
			activity := entity.Activity{
				Time:        a.Time,
				Name:        a.Name,
				Description: a.Description,
				Citation:    a.Citation,
			}
			if a.Lat != 0 || a.Lng != 0 {
				activity.Location = &entity.GeoPoint{Lat: a.Lat, Lng: a.Lng}
			}
			day.Activities = append(day.Activities, activity)
		}
		days = append(days, day)
	}

	for day := chunk.StartDay; day <= chunk.EndDay; day++ {
		if !seen[day] {
			return nil, fmt.Errorf("day %d missing from chunk response", day)
		}
	}
	return days, nil
}

// --- helpers ---

func toTripRequest(req *dto.GeneratePlanRequest) *entity.TripRequest {
	return &entity.TripRequest{
		Destinations:  req.Destinations,
		Dates:         req.Dates,
		Companions:    req.Companions,
		Themes:        req.Themes,
		Budget:        req.Budget,
		Pace:          req.Pace,
		FreeText:      req.FreeText,
		FixedBookings: req.FixedBookings,
	}
}

func retrievalQuery(req *entity.TripRequest) string {
	parts := append([]string{}, req.Destinations...)
	parts = append(parts, req.Themes...)
	if req.FreeText != "" {
		parts = append(parts, req.FreeText)
	}
	return strings.Join(parts, " ")
}

func defaultPlanTitle(outline *entity.PlanOutline) string {
	return fmt.Sprintf("%d days in %s", len(outline.Days), outline.Destination)
}

func outlineTitle(outline *entity.PlanOutline, day int) string {
	for _, d := range outline.Days {
		if d.Day == day {
			return d.Title
		}
	}
	return fmt.Sprintf("Day %d", day)
}

func outlineArticles(outline *entity.PlanOutline) []*entity.GuideArticle {
	articles := make([]*entity.GuideArticle, 0, len(outline.Articles))
	for i := range outline.Articles {
		articles = append(articles, &outline.Articles[i])
	}
	return articles
}

func dereferenceArticles(articles []*entity.GuideArticle) []entity.GuideArticle {
	out := make([]entity.GuideArticle, 0, len(articles))
	for _, a := range articles {
		// Drop full content, the outline only needs citation metadata.
		ref := *a
		ref.Content = ""
		out = append(out, ref)
	}
	return out
}

func articleRefs(articles []entity.GuideArticle) []entity.ArticleRef {
	refs := make([]entity.ArticleRef, 0, len(articles))
	for _, a := range articles {
		refs = append(refs, entity.ArticleRef{
			Title:   a.Title,
			Url:     a.Url,
			Snippet: a.Snippet,
		})
	}
	return refs
}

// extractJSONObject trims any prose the model wrapped around the JSON body.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return raw
	}
	return raw[start : end+1]
}
