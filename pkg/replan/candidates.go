package replan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/pkg/llm"
)

// Input is the read-only snapshot a replan pass works from.
type Input struct {
	Trigger  entity.ReplanTrigger
	Traveler entity.TravelerState
	TripCtx  entity.TripContext
	Plan     entity.TripPlanState
}

// CandidateSource produces recovery candidates for one replan pass. Sources
// run concurrently under the engine deadline; a source that cannot finish
// in time simply contributes nothing.
type CandidateSource interface {
	Name() string
	Generate(ctx context.Context, input *Input) ([]*entity.RecoveryOption, error)
}

// CatalogSource derives candidates from the plan itself without any model
// call: swap in later skippable slots, insert rests, compress the schedule.
// Deterministic and fast, it guarantees the scoring loop always has
// material to rank.
type CatalogSource struct{}

func NewCatalogSource() *CatalogSource {
	return &CatalogSource{}
}

func (s *CatalogSource) Name() string { return "catalog" }

func (s *CatalogSource) Generate(ctx context.Context, input *Input) ([]*entity.RecoveryOption, error) {
	var options []*entity.RecoveryOption

	affected := findSlot(input.Plan.Slots, input.Trigger.SlotId)

	// Pull forward later slots from the same day that suit the trigger.
	for i := range input.Plan.Slots {
		slot := input.Plan.Slots[i]
		if slot.Day != input.Trigger.Day || !slot.IsSkippable {
			continue
		}
		if affected != nil && slot.Id == affected.Id {
			continue
		}
		category := categorize(slot.Activity)
		if !categoryFitsTrigger(category, input.Trigger.Type) {
			continue
		}
		options = append(options, &entity.RecoveryOption{
			Id:                fmt.Sprintf("swap-%s", slot.Id),
			Day:               slot.Day,
			Category:          category,
			ReplacementSlots:  []entity.PlanSlot{slot},
			Explanation:       fmt.Sprintf("Swap in %s from later today.", slot.Activity.Name),
			EstimatedDuration: "1h30m",
		})
	}

	// A rest insertion is always a candidate for fatigue and delay.
	if input.Trigger.Type != entity.TriggerRain {
		options = append(options, restOption(input.Trigger))
	}

	return options, nil
}

func restOption(trigger entity.ReplanTrigger) *entity.RecoveryOption {
	return &entity.RecoveryOption{
		Id:       fmt.Sprintf("catalog-rest-day%d", trigger.Day),
		Day:      trigger.Day,
		Category: entity.CategoryRest,
		ReplacementSlots: []entity.PlanSlot{
			{
				Id:          fmt.Sprintf("catalog-rest-day%d-slot", trigger.Day),
				Day:         trigger.Day,
				Priority:    entity.SlotPriorityNice,
				IsSkippable: true,
				Activity: entity.Activity{
					Name:        "Break at a nearby cafe",
					Description: "Shorten the current block and take a seated break before the next activity.",
				},
			},
		},
		Explanation:       "Insert a break and resume the plan afterwards.",
		EstimatedDuration: "45m",
	}
}

func findSlot(slots []entity.PlanSlot, id string) *entity.PlanSlot {
	for i := range slots {
		if slots[i].Id == id {
			return &slots[i]
		}
	}
	return nil
}

// categorize infers a coarse category from the activity description. Used
// only for catalog candidates; model candidates carry their own category.
func categorize(activity entity.Activity) entity.RecoveryCategory {
	text := strings.ToLower(activity.Name + " " + activity.Description)
	switch {
	case containsAny(text, "museum", "gallery", "temple", "shrine", "cathedral", "exhibit"):
		return entity.CategoryCulture
	case containsAny(text, "restaurant", "lunch", "dinner", "cafe", "food", "market"):
		return entity.CategoryFood
	case containsAny(text, "park", "hike", "garden", "beach", "walk", "viewpoint"):
		return entity.CategoryOutdoor
	case containsAny(text, "spa", "onsen", "rest", "hotel"):
		return entity.CategoryRest
	default:
		return entity.CategoryIndoor
	}
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func categoryFitsTrigger(category entity.RecoveryCategory, trigger entity.TriggerType) bool {
	switch trigger {
	case entity.TriggerRain:
		return category != entity.CategoryOutdoor
	case entity.TriggerFatigue:
		return category == entity.CategoryRest || category == entity.CategoryFood || category == entity.CategoryCulture
	default:
		return true
	}
}

// LLMSource asks the generation model for tailored candidates under its own
// sub-deadline, leaving the engine headroom to score and respond within the
// overall budget even when the model stalls.
type LLMSource struct {
	provider    llm.LLMProvider
	subDeadline time.Duration
}

func NewLLMSource(provider llm.LLMProvider, subDeadline time.Duration) *LLMSource {
	if subDeadline <= 0 {
		subDeadline = 2000 * time.Millisecond
	}
	return &LLMSource{
		provider:    provider,
		subDeadline: subDeadline,
	}
}

func (s *LLMSource) Name() string { return "model" }

type llmCandidate struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Category          string  `json:"category"`
	EstimatedDuration string  `json:"estimated_duration"`
	Lat               float64 `json:"lat,omitempty"`
	Lng               float64 `json:"lng,omitempty"`
	Reason            string  `json:"reason"`
}

type llmCandidateList struct {
	Options []llmCandidate `json:"options"`
}

func (s *LLMSource) Generate(ctx context.Context, input *Input) ([]*entity.RecoveryOption, error) {
	subCtx, cancel := context.WithTimeout(ctx, s.subDeadline)
	defer cancel()

	prompt := buildCandidatePrompt(input)
	raw, err := s.provider.Generate(subCtx, prompt, llm.WithJSONOutput(), llm.WithTemperature(0.4))
	if err != nil {
		return nil, err
	}

	var parsed llmCandidateList
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("malformed candidate payload: %w", err)
	}

	options := make([]*entity.RecoveryOption, 0, len(parsed.Options))
	for i, c := range parsed.Options {
		if c.Name == "" {
			continue
		}
		slot := entity.PlanSlot{
			Id:          fmt.Sprintf("model-day%d-%d", input.Trigger.Day, i),
			Day:         input.Trigger.Day,
			Priority:    entity.SlotPriorityNice,
			IsSkippable: true,
			Activity: entity.Activity{
				Name:        c.Name,
				Description: c.Description,
			},
		}
		if c.Lat != 0 || c.Lng != 0 {
			slot.Activity.Location = &entity.GeoPoint{Lat: c.Lat, Lng: c.Lng}
		}
		duration := c.EstimatedDuration
		if _, err := time.ParseDuration(duration); err != nil {
			duration = "1h30m"
		}
		options = append(options, &entity.RecoveryOption{
			Id:                fmt.Sprintf("model-day%d-%d", input.Trigger.Day, i),
			Day:               input.Trigger.Day,
			Category:          parseCategory(c.Category),
			ReplacementSlots:  []entity.PlanSlot{slot},
			Explanation:       c.Reason,
			EstimatedDuration: duration,
		})
	}
	return options, nil
}

func parseCategory(raw string) entity.RecoveryCategory {
	switch entity.RecoveryCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case entity.CategoryIndoor, entity.CategoryOutdoor, entity.CategoryRest, entity.CategoryFood, entity.CategoryCulture:
		return entity.RecoveryCategory(strings.ToLower(strings.TrimSpace(raw)))
	default:
		return entity.CategoryIndoor
	}
}

func buildCandidatePrompt(input *Input) string {
	var b strings.Builder
	b.WriteString("You are adjusting a live travel itinerary after a disruption.\n")
	fmt.Fprintf(&b, "City: %s. Disruption: %s on day %d.\n", input.TripCtx.City, input.Trigger.Type, input.Trigger.Day)
	fmt.Fprintf(&b, "Traveler fatigue (0-1): %.2f, current time: %s.\n", input.Traveler.EstimatedFatigue, input.Traveler.CurrentTime)
	if input.TripCtx.Weather != nil {
		fmt.Fprintf(&b, "Weather: %s.\n", input.TripCtx.Weather.Condition)
	}
	b.WriteString("Remaining plan today:\n")
	for _, slot := range input.Plan.Slots {
		if slot.Day == input.Trigger.Day {
			fmt.Fprintf(&b, "- [%s] %s\n", slot.StartTime, slot.Activity.Name)
		}
	}
	b.WriteString(`Return JSON: {"options":[{"name","description","category","estimated_duration","lat","lng","reason"}]}. `)
	b.WriteString("Category is one of indoor, outdoor, rest, food, culture. Duration uses Go syntax like 1h30m. At most 3 options.")
	return b.String()
}

// extractJSON trims any prose around the first top-level JSON object.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return raw
	}
	return raw[start : end+1]
}
