package replan

import (
	"fmt"

	"ai-tripplanner-be/internal/entity"
)

// StaticFallback returns the deterministic per-trigger option used when no
// scored candidate exists by the deadline. It never calls the model and
// always succeeds, so a trigger can never leave the traveler without a
// suggestion.
func StaticFallback(trigger entity.ReplanTrigger) *entity.RecoveryOption {
	switch trigger.Type {
	case entity.TriggerRain:
		return &entity.RecoveryOption{
			Id:       fmt.Sprintf("fallback-rain-day%d", trigger.Day),
			Day:      trigger.Day,
			Category: entity.CategoryIndoor,
			ReplacementSlots: []entity.PlanSlot{
				{
					Id:          fmt.Sprintf("fallback-rain-day%d-slot", trigger.Day),
					Day:         trigger.Day,
					Priority:    entity.SlotPriorityNice,
					IsSkippable: true,
					Activity: entity.Activity{
						Name:        "Nearby museum or covered market",
						Description: "Head to the closest indoor attraction and wait out the rain. Check opening hours on arrival.",
					},
				},
			},
			Explanation:       "It's raining, so we suggest moving to a nearby indoor spot. This is a general suggestion; we couldn't tailor it to your exact plan right now.",
			EstimatedDuration: "1h30m",
		}

	case entity.TriggerFatigue:
		return &entity.RecoveryOption{
			Id:       fmt.Sprintf("fallback-fatigue-day%d", trigger.Day),
			Day:      trigger.Day,
			Category: entity.CategoryRest,
			ReplacementSlots: []entity.PlanSlot{
				{
					Id:          fmt.Sprintf("fallback-fatigue-day%d-slot", trigger.Day),
					Day:         trigger.Day,
					Priority:    entity.SlotPriorityNice,
					IsSkippable: true,
					Activity: entity.Activity{
						Name:        "Cafe break",
						Description: "Take a seated break at the nearest cafe for at least 45 minutes before continuing.",
					},
				},
			},
			Explanation:       "You seem tired, so we suggest a proper rest before the next activity. This is a general suggestion; we couldn't tailor it to your exact plan right now.",
			EstimatedDuration: "45m",
		}

	default: // delay and any unknown trigger
		return &entity.RecoveryOption{
			Id:       fmt.Sprintf("fallback-delay-day%d", trigger.Day),
			Day:      trigger.Day,
			Category: entity.CategoryRest,
			ReplacementSlots: []entity.PlanSlot{
				{
					Id:          fmt.Sprintf("fallback-delay-day%d-slot", trigger.Day),
					Day:         trigger.Day,
					Priority:    entity.SlotPriorityNice,
					IsSkippable: true,
					Activity: entity.Activity{
						Name:        "Skip the next optional stop",
						Description: "Drop the next skippable activity and head directly to your following commitment to recover the lost time.",
					},
				},
			},
			Explanation:       "You're running behind, so we suggest skipping the next optional stop. This is a general suggestion; we couldn't tailor it to your exact plan right now.",
			EstimatedDuration: "0m",
		}
	}
}
