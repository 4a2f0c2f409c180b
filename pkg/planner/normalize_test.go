package planner

import (
	"testing"

	"ai-tripplanner-be/internal/entity"
)

func TestRequestHashStability(t *testing.T) {
	base := &entity.TripRequest{
		Destinations: []string{"Kyoto", "Osaka"},
		Dates:        "2026-09-01..2026-09-05",
		Companions:   "partner",
		Themes:       []string{"food", "culture"},
		Budget:       "mid",
		Pace:         "relaxed",
		FreeText:     "We love street food",
	}

	tests := []struct {
		name     string
		variant  *entity.TripRequest
		wantSame bool
	}{
		{
			name: "identical request",
			variant: &entity.TripRequest{
				Destinations: []string{"Kyoto", "Osaka"},
				Dates:        "2026-09-01..2026-09-05",
				Companions:   "partner",
				Themes:       []string{"food", "culture"},
				Budget:       "mid",
				Pace:         "relaxed",
				FreeText:     "We love street food",
			},
			wantSame: true,
		},
		{
			name: "reordered lists and shuffled case",
			variant: &entity.TripRequest{
				Destinations: []string{"osaka", "KYOTO"},
				Dates:        "2026-09-01..2026-09-05",
				Companions:   "Partner",
				Themes:       []string{"Culture", "Food"},
				Budget:       "Mid",
				Pace:         "Relaxed",
				FreeText:     "  we love STREET food  ",
			},
			wantSame: true,
		},
		{
			name: "different dates",
			variant: &entity.TripRequest{
				Destinations: []string{"Kyoto", "Osaka"},
				Dates:        "2026-09-02..2026-09-06",
				Companions:   "partner",
				Themes:       []string{"food", "culture"},
				Budget:       "mid",
				Pace:         "relaxed",
				FreeText:     "We love street food",
			},
			wantSame: false,
		},
		{
			name: "extra theme",
			variant: &entity.TripRequest{
				Destinations: []string{"Kyoto", "Osaka"},
				Dates:        "2026-09-01..2026-09-05",
				Companions:   "partner",
				Themes:       []string{"food", "culture", "nightlife"},
				Budget:       "mid",
				Pace:         "relaxed",
				FreeText:     "We love street food",
			},
			wantSame: false,
		},
	}

	baseHash := RequestHash(base)
	if baseHash == "" {
		t.Fatal("RequestHash returned empty string")
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequestHash(tt.variant)
			if (got == baseHash) != tt.wantSame {
				t.Errorf("hash match = %v, want %v", got == baseHash, tt.wantSame)
			}
		})
	}
}

func TestTotalDays(t *testing.T) {
	tests := []struct {
		name  string
		dates string
		want  int
	}{
		{"explicit range", "2026-09-01..2026-09-05", 5},
		{"single day range", "2026-09-01..2026-09-01", 1},
		{"flexible duration", "3 days", 3},
		{"duration single", "1 day", 1},
		{"duration shorthand", "7d", 7},
		{"reversed range", "2026-09-05..2026-09-01", 0},
		{"garbage", "next week sometime", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalDays(tt.dates); got != tt.want {
				t.Errorf("TotalDays(%q) = %d, want %d", tt.dates, got, tt.want)
			}
		})
	}
}
