package replan

import (
	"testing"

	"ai-tripplanner-be/internal/entity"
)

func indoorOption(id string) *entity.RecoveryOption {
	return &entity.RecoveryOption{
		Id:       id,
		Day:      1,
		Category: entity.CategoryIndoor,
		ReplacementSlots: []entity.PlanSlot{
			{
				Id:  id + "-slot",
				Day: 1,
				Activity: entity.Activity{
					Name: "National museum",
				},
			},
		},
		EstimatedDuration: "1h30m",
	}
}

func TestScoreDeterministic(t *testing.T) {
	scorer := NewScorer()
	traveler := entity.TravelerState{EstimatedFatigue: 0.4, CurrentTime: "14:00"}
	tripCtx := entity.TripContext{City: "Kyoto", CurrentTime: "14:00"}

	first := scorer.Score(indoorOption("a"), &traveler, &tripCtx)
	for i := 0; i < 10; i++ {
		got := scorer.Score(indoorOption("a"), &traveler, &tripCtx)
		if got != first {
			t.Fatalf("run %d: breakdown changed: %+v vs %+v", i, got, first)
		}
	}
}

func TestScoreHardConstraintBooking(t *testing.T) {
	scorer := NewScorer()
	traveler := entity.TravelerState{CurrentTime: "18:00"}
	tripCtx := entity.TripContext{
		CurrentTime: "18:00",
		Bookings: []entity.BookedItem{
			{Name: "Dinner reservation", Time: "19:00", Cancellable: false},
		},
	}

	option := indoorOption("long")
	option.EstimatedDuration = "3h"

	got := scorer.Score(option, &traveler, &tripCtx)
	if got.HardPass {
		t.Error("expected hard constraint failure for option overlapping a fixed booking")
	}
	if got.Total != -1 {
		t.Errorf("expected total -1 on hard fail, got %v", got.Total)
	}

	tripCtx.Bookings[0].Cancellable = true
	got = scorer.Score(option, &traveler, &tripCtx)
	if !got.HardPass {
		t.Error("cancellable booking should not hard-fail the option")
	}
}

func TestScoreRainFavorsIndoor(t *testing.T) {
	scorer := NewScorer()
	traveler := entity.TravelerState{CurrentTime: "11:00", TriggerType: entity.TriggerRain}
	tripCtx := entity.TripContext{
		CurrentTime: "11:00",
		Weather:     &entity.WeatherInfo{Condition: entity.WeatherRainy},
	}

	indoor := indoorOption("indoor")
	outdoor := indoorOption("outdoor")
	outdoor.Category = entity.CategoryOutdoor

	indoorScore := scorer.Score(indoor, &traveler, &tripCtx)
	outdoorScore := scorer.Score(outdoor, &traveler, &tripCtx)
	if indoorScore.StateFit <= outdoorScore.StateFit {
		t.Errorf("rain should favor indoor: indoor %v, outdoor %v", indoorScore.StateFit, outdoorScore.StateFit)
	}
}

func TestScoreFatigueFavorsRest(t *testing.T) {
	scorer := NewScorer()
	traveler := entity.TravelerState{
		EstimatedFatigue: 0.9,
		CurrentTime:      "15:00",
		TriggerType:      entity.TriggerFatigue,
	}
	tripCtx := entity.TripContext{CurrentTime: "15:00"}

	rest := indoorOption("rest")
	rest.Category = entity.CategoryRest
	culture := indoorOption("culture")
	culture.Category = entity.CategoryCulture

	restScore := scorer.Score(rest, &traveler, &tripCtx)
	cultureScore := scorer.Score(culture, &traveler, &tripCtx)
	if restScore.StateFit <= cultureScore.StateFit {
		t.Errorf("fatigue should favor rest: rest %v, culture %v", restScore.StateFit, cultureScore.StateFit)
	}
}

func TestScorePlanDeviationPenalty(t *testing.T) {
	scorer := NewScorer()
	traveler := entity.TravelerState{CurrentTime: "10:00"}
	tripCtx := entity.TripContext{CurrentTime: "10:00"}

	light := indoorOption("light")
	light.ReplacementSlots[0].Priority = entity.SlotPriorityNice

	heavy := indoorOption("heavy")
	heavy.ReplacementSlots[0].Priority = entity.SlotPriorityMust

	lightScore := scorer.Score(light, &traveler, &tripCtx)
	heavyScore := scorer.Score(heavy, &traveler, &tripCtx)
	if heavyScore.PlanDeviation <= lightScore.PlanDeviation {
		t.Errorf("replacing a must slot should cost more: must %v, nice %v",
			heavyScore.PlanDeviation, lightScore.PlanDeviation)
	}
	if heavyScore.Total >= lightScore.Total {
		t.Errorf("higher deviation should lower total: must %v, nice %v",
			heavyScore.Total, lightScore.Total)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOk bool
	}{
		{"09:30", 570, true},
		{"00:00", 0, true},
		{"23:59", 1439, true},
		{"9:5", 545, true},
		{"25:00", 0, false},
		{"nonsense", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseClock(tt.in)
		if ok != tt.wantOk || (ok && got != tt.want) {
			t.Errorf("parseClock(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOk)
		}
	}
}
