package replan

import (
	"context"
	"sort"
	"sync"
	"time"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/pkg/logger"
)

// Result is the outcome of one replan pass. Primary is never nil: the
// engine degrades to best-so-far on timeout and to a static fallback when
// nothing at all was produced.
type Result struct {
	Primary        *entity.RecoveryOption
	Alternatives   []*entity.RecoveryOption
	Outcome        entity.ReplanOutcome
	Degraded       bool
	Explanation    string
	ProcessingTime time.Duration
}

// Engine runs replan passes under a single hard deadline. Candidate sources
// execute concurrently; scored candidates are collected as they arrive so a
// deadline expiry still leaves a usable ranking.
type Engine struct {
	sources []CandidateSource
	scorer  *Scorer
	budget  time.Duration
	log     logger.ILogger
}

func NewEngine(sources []CandidateSource, scorer *Scorer, budget time.Duration, log logger.ILogger) *Engine {
	if budget <= 0 {
		budget = 3000 * time.Millisecond
	}
	return &Engine{
		sources: sources,
		scorer:  scorer,
		budget:  budget,
		log:     log,
	}
}

// Run executes one pass. It always returns a non-nil Result with a non-nil
// Primary and never returns an error to the caller: internal failure is a
// Failed outcome carrying the static fallback.
func (e *Engine) Run(ctx context.Context, input *Input) *Result {
	started := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, e.budget)
	defer cancel()

	scored := make(chan *entity.RecoveryOption)
	var wg sync.WaitGroup
	for _, source := range e.sources {
		wg.Add(1)
		go func(src CandidateSource) {
			defer wg.Done()
			options, err := src.Generate(runCtx, input)
			if err != nil {
				e.log.Warn("replan", "candidate source failed", map[string]interface{}{
					"source": src.Name(),
					"error":  err.Error(),
				})
				return
			}
			for _, option := range options {
				option.Score = e.scorer.Score(option, &input.Traveler, &input.TripCtx)
				select {
				case scored <- option:
				case <-runCtx.Done():
					// Late results are discarded once the pass has closed.
					return
				}
			}
		}(source)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var candidates []*entity.RecoveryOption
	timedOut := false

collect:
	for {
		select {
		case option := <-scored:
			if option.Score.HardPass {
				candidates = append(candidates, option)
			}
		case <-done:
			break collect
		case <-runCtx.Done():
			timedOut = true
			break collect
		}
	}

	elapsed := time.Since(started)

	if len(candidates) == 0 {
		fallback := StaticFallback(input.Trigger)
		fallback.Score = e.scorer.Score(fallback, &input.Traveler, &input.TripCtx)
		e.log.Warn("replan", "no viable candidates, serving static fallback", map[string]interface{}{
			"trigger":   string(input.Trigger.Type),
			"timed_out": timedOut,
			"took_ms":   elapsed.Milliseconds(),
		})
		return &Result{
			Primary:        fallback,
			Outcome:        entity.ReplanFailed,
			Degraded:       true,
			Explanation:    fallback.Explanation,
			ProcessingTime: elapsed,
		}
	}

	rank(candidates)
	primary := candidates[0]
	alternatives := candidates[1:]
	if len(alternatives) > 3 {
		alternatives = alternatives[:3]
	}

	outcome := entity.ReplanSucceeded
	explanation := primary.Explanation
	if timedOut {
		outcome = entity.ReplanTimedOut
		// A cut-off search must say so. The traveler is acting on a
		// suggestion ranked against fewer candidates than intended.
		explanation = primary.Explanation + " (Suggested under time pressure; not every option could be evaluated.)"
		e.log.Warn("replan", "deadline elapsed, returning best so far", map[string]interface{}{
			"trigger":    string(input.Trigger.Type),
			"candidates": len(candidates),
			"took_ms":    elapsed.Milliseconds(),
		})
	}

	return &Result{
		Primary:        primary,
		Alternatives:   alternatives,
		Outcome:        outcome,
		Degraded:       timedOut,
		Explanation:    explanation,
		ProcessingTime: elapsed,
	}
}

// rank orders candidates by total score descending, breaking ties on Id so
// identical inputs always return identical output order.
func rank(candidates []*entity.RecoveryOption) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score.Total != candidates[j].Score.Total {
			return candidates[i].Score.Total > candidates[j].Score.Total
		}
		return candidates[i].Id < candidates[j].Id
	})
}
