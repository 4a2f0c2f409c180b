package replan

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-tripplanner-be/internal/entity"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type stubSource struct {
	name    string
	options []*entity.RecoveryOption
	err     error
	delay   time.Duration
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Generate(ctx context.Context, input *Input) ([]*entity.RecoveryOption, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.options, s.err
}

func rainInput() *Input {
	return &Input{
		Trigger:  entity.ReplanTrigger{Type: entity.TriggerRain, Day: 2},
		Traveler: entity.TravelerState{EstimatedFatigue: 0.3, CurrentTime: "11:00"},
		TripCtx: entity.TripContext{
			City:        "Kyoto",
			CurrentTime: "11:00",
			Weather:     &entity.WeatherInfo{Condition: entity.WeatherRainy},
		},
	}
}

func namedOption(id string, category entity.RecoveryCategory) *entity.RecoveryOption {
	return &entity.RecoveryOption{
		Id:                id,
		Day:               2,
		Category:          category,
		ReplacementSlots:  []entity.PlanSlot{{Id: id + "-slot", Day: 2, Priority: entity.SlotPriorityNice, Activity: entity.Activity{Name: id}}},
		Explanation:       "option " + id,
		EstimatedDuration: "1h",
	}
}

func TestEngineRanksDeterministically(t *testing.T) {
	source := &stubSource{
		name: "stub",
		options: []*entity.RecoveryOption{
			namedOption("b-outdoor", entity.CategoryOutdoor),
			namedOption("a-museum", entity.CategoryIndoor),
			namedOption("c-gallery", entity.CategoryIndoor),
		},
	}
	engine := NewEngine([]CandidateSource{source}, NewScorer(), time.Second, nopLogger{})

	first := engine.Run(context.Background(), rainInput())
	if first.Outcome != entity.ReplanSucceeded {
		t.Fatalf("expected succeeded, got %s", first.Outcome)
	}
	if first.Degraded {
		t.Error("full run should not be degraded")
	}
	// Indoor options outrank outdoor in rain; equal scores tie-break on id.
	if first.Primary.Id != "a-museum" {
		t.Errorf("expected a-museum primary, got %s", first.Primary.Id)
	}

	for i := 0; i < 5; i++ {
		got := engine.Run(context.Background(), rainInput())
		if got.Primary.Id != first.Primary.Id {
			t.Fatalf("run %d: primary changed to %s", i, got.Primary.Id)
		}
		if len(got.Alternatives) != len(first.Alternatives) {
			t.Fatalf("run %d: alternatives count changed", i)
		}
		for j := range got.Alternatives {
			if got.Alternatives[j].Id != first.Alternatives[j].Id {
				t.Fatalf("run %d: alternative %d changed", i, j)
			}
		}
	}
}

func TestEngineDeadlineReturnsBestSoFar(t *testing.T) {
	fast := &stubSource{
		name:    "fast",
		options: []*entity.RecoveryOption{namedOption("quick", entity.CategoryIndoor)},
	}
	hanging := &stubSource{
		name:  "hanging",
		delay: 10 * time.Second,
	}
	budget := 150 * time.Millisecond
	engine := NewEngine([]CandidateSource{fast, hanging}, NewScorer(), budget, nopLogger{})

	started := time.Now()
	got := engine.Run(context.Background(), rainInput())
	elapsed := time.Since(started)

	if elapsed > budget+200*time.Millisecond {
		t.Fatalf("engine ran %v, expected close to %v budget", elapsed, budget)
	}
	if got.Outcome != entity.ReplanTimedOut {
		t.Errorf("expected timed_out, got %s", got.Outcome)
	}
	if !got.Degraded {
		t.Error("timed-out result must be marked degraded")
	}
	if got.Primary == nil || got.Primary.Id != "quick" {
		t.Errorf("expected best-so-far primary, got %+v", got.Primary)
	}
	if !strings.HasPrefix(got.Explanation, "option quick") {
		t.Errorf("explanation should keep the candidate's reasoning, got %q", got.Explanation)
	}
	if !strings.Contains(got.Explanation, "not every option could be evaluated") {
		t.Errorf("timed-out explanation must disclose the truncated search, got %q", got.Explanation)
	}
}

func TestEngineFallbackWhenNothingProduced(t *testing.T) {
	failing := &stubSource{name: "failing", err: errors.New("model unavailable")}
	engine := NewEngine([]CandidateSource{failing}, NewScorer(), time.Second, nopLogger{})

	got := engine.Run(context.Background(), rainInput())
	if got.Outcome != entity.ReplanFailed {
		t.Errorf("expected failed outcome, got %s", got.Outcome)
	}
	if got.Primary == nil {
		t.Fatal("fallback primary must never be nil")
	}
	if got.Primary.Category != entity.CategoryIndoor {
		t.Errorf("rain fallback should be indoor, got %s", got.Primary.Category)
	}
	if !got.Degraded {
		t.Error("fallback result must be marked degraded")
	}
}

func TestEngineDropsHardFailedCandidates(t *testing.T) {
	source := &stubSource{
		name: "stub",
		options: []*entity.RecoveryOption{
			func() *entity.RecoveryOption {
				o := namedOption("too-long", entity.CategoryIndoor)
				o.EstimatedDuration = "6h"
				return o
			}(),
			namedOption("fits", entity.CategoryIndoor),
		},
	}
	input := rainInput()
	input.TripCtx.Bookings = []entity.BookedItem{
		{Name: "Tea ceremony", Time: "13:00", Cancellable: false},
	}
	engine := NewEngine([]CandidateSource{source}, NewScorer(), time.Second, nopLogger{})

	got := engine.Run(context.Background(), input)
	if got.Primary.Id != "fits" {
		t.Errorf("expected fits as primary, got %s", got.Primary.Id)
	}
	for _, alt := range got.Alternatives {
		if alt.Id == "too-long" {
			t.Error("hard-failed candidate leaked into alternatives")
		}
	}
}

func TestCatalogSourceRespectsTrigger(t *testing.T) {
	input := rainInput()
	input.Plan.Slots = []entity.PlanSlot{
		{Id: "s1", Day: 2, IsSkippable: true, Activity: entity.Activity{Name: "Hike in the park"}},
		{Id: "s2", Day: 2, IsSkippable: true, Activity: entity.Activity{Name: "National museum visit"}},
		{Id: "s3", Day: 3, IsSkippable: true, Activity: entity.Activity{Name: "Art gallery"}},
	}

	options, err := NewCatalogSource().Generate(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, option := range options {
		if option.Category == entity.CategoryOutdoor {
			t.Errorf("rain trigger produced outdoor option %s", option.Id)
		}
		if option.Day != 2 {
			t.Errorf("option %s targets day %d, trigger is day 2", option.Id, option.Day)
		}
	}
	var foundMuseum bool
	for _, option := range options {
		if option.Id == "swap-s2" {
			foundMuseum = true
		}
	}
	if !foundMuseum {
		t.Error("expected museum slot swap for rain trigger")
	}
}
