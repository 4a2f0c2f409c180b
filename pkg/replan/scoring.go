package replan

import (
	"math"
	"strconv"
	"strings"
	"time"

	"ai-tripplanner-be/internal/entity"
)

// Scoring weights. The four soft signals sum to 1.0, PlanDeviation enters
// as a penalty inside its own weight.
const (
	weightProximity       = 0.30
	weightStateFit        = 0.30
	weightTimeFeasibility = 0.25
	weightPlanDeviation   = 0.15

	// Hard constraint caps
	maxWalkingKmWhenTired = 1.0
	highFatigueThreshold  = 0.7

	// Proximity normalization: anything at or beyond this distance scores 0
	maxUsefulDistanceKm = 8.0
)

// Scorer evaluates candidate options. Pure and deterministic: identical
// inputs always produce identical breakdowns.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes the full breakdown for one candidate. A violated hard
// constraint short-circuits with HardPass=false and Total=-1.
func (s *Scorer) Score(option *entity.RecoveryOption, traveler *entity.TravelerState, tripCtx *entity.TripContext) entity.ScoreBreakdown {
	if !s.passesHardConstraints(option, traveler, tripCtx) {
		return entity.ScoreBreakdown{HardPass: false, Total: -1}
	}

	proximity := s.proximityScore(option, traveler)
	stateFit := s.stateFitScore(option, traveler, tripCtx)
	timeFeas := s.timeFeasibilityScore(option, traveler, tripCtx)
	deviation := s.planDeviationPenalty(option)

	total := weightProximity*proximity +
		weightStateFit*stateFit +
		weightTimeFeasibility*timeFeas +
		weightPlanDeviation*(1.0-deviation)

	return entity.ScoreBreakdown{
		HardPass:        true,
		Proximity:       round3(proximity),
		StateFit:        round3(stateFit),
		TimeFeasibility: round3(timeFeas),
		PlanDeviation:   round3(deviation),
		Total:           round3(total),
	}
}

// passesHardConstraints rejects options that break a non-cancellable
// booking, run past the return constraint, or demand a long walk from an
// exhausted traveler.
func (s *Scorer) passesHardConstraints(option *entity.RecoveryOption, traveler *entity.TravelerState, tripCtx *entity.TripContext) bool {
	endMinute := s.optionEndMinute(option, traveler)

	for _, booking := range tripCtx.Bookings {
		if booking.Cancellable {
			continue
		}
		bookingMinute, ok := parseClock(booking.Time)
		if !ok {
			continue
		}
		if endMinute > bookingMinute {
			return false
		}
	}

	if tripCtx.ReturnConstraint != "" {
		if deadline, ok := extractClock(tripCtx.ReturnConstraint); ok && endMinute > deadline {
			return false
		}
	}

	if traveler.EstimatedFatigue >= highFatigueThreshold {
		if s.walkingDistanceKm(option, traveler) > maxWalkingKmWhenTired {
			return false
		}
	}

	return true
}

func (s *Scorer) proximityScore(option *entity.RecoveryOption, traveler *entity.TravelerState) float64 {
	if traveler.CurrentLocation == nil {
		return 0.5 // Unknown position, neutral
	}
	dist := s.walkingDistanceKm(option, traveler)
	if dist < 0 {
		return 0.5 // Option carries no location
	}
	score := 1.0 - dist/maxUsefulDistanceKm
	return clamp01(score)
}

func (s *Scorer) stateFitScore(option *entity.RecoveryOption, traveler *entity.TravelerState, tripCtx *entity.TripContext) float64 {
	score := 0.5

	raining := tripCtx.Weather != nil &&
		(tripCtx.Weather.Condition == entity.WeatherRainy ||
			tripCtx.Weather.Condition == entity.WeatherStormy ||
			tripCtx.Weather.PrecipitationProb >= 0.6)

	switch option.Category {
	case entity.CategoryIndoor, entity.CategoryCulture:
		if raining {
			score += 0.4
		}
	case entity.CategoryOutdoor:
		if raining {
			score -= 0.4
		} else {
			score += 0.2
		}
	case entity.CategoryRest, entity.CategoryFood:
		if traveler.EstimatedFatigue >= highFatigueThreshold {
			score += 0.4
		} else if traveler.EstimatedFatigue >= 0.4 {
			score += 0.2
		}
	}

	// An exhausted traveler should not be routed into more activity
	if traveler.EstimatedFatigue >= highFatigueThreshold &&
		option.Category != entity.CategoryRest && option.Category != entity.CategoryFood {
		score -= 0.2
	}

	return clamp01(score)
}

func (s *Scorer) timeFeasibilityScore(option *entity.RecoveryOption, traveler *entity.TravelerState, tripCtx *entity.TripContext) float64 {
	nowMinute, ok := parseClock(traveler.CurrentTime)
	if !ok {
		nowMinute, ok = parseClock(tripCtx.CurrentTime)
		if !ok {
			return 0.5
		}
	}

	endMinute := s.optionEndMinute(option, traveler)
	dayRemaining := 22*60 - nowMinute // Assume activities wind down by 22:00
	if dayRemaining <= 0 {
		return 0.1
	}

	needed := endMinute - nowMinute
	if needed <= 0 {
		return 0.5
	}
	slack := float64(dayRemaining-needed) / float64(dayRemaining)
	return clamp01(0.3 + slack*0.7)
}

// planDeviationPenalty grows with the number and priority of replaced
// slots: 0 = barely touches the plan, 1 = rewrites it.
func (s *Scorer) planDeviationPenalty(option *entity.RecoveryOption) float64 {
	penalty := 0.0
	for _, slot := range option.ReplacementSlots {
		switch slot.Priority {
		case entity.SlotPriorityMust:
			penalty += 0.5
		case entity.SlotPriorityShould:
			penalty += 0.3
		default:
			penalty += 0.15
		}
	}
	return clamp01(penalty)
}

// optionEndMinute estimates when the option finishes, in minutes from
// midnight, based on current time plus the option's estimated duration.
func (s *Scorer) optionEndMinute(option *entity.RecoveryOption, traveler *entity.TravelerState) int {
	start, ok := parseClock(traveler.CurrentTime)
	if !ok {
		start = 12 * 60
	}
	dur, err := time.ParseDuration(option.EstimatedDuration)
	if err != nil {
		dur = 90 * time.Minute
	}
	return start + int(dur.Minutes())
}

// walkingDistanceKm is the haversine distance from the traveler to the
// first located replacement slot. Returns -1 when no location is known.
func (s *Scorer) walkingDistanceKm(option *entity.RecoveryOption, traveler *entity.TravelerState) float64 {
	if traveler.CurrentLocation == nil {
		return -1
	}
	for _, slot := range option.ReplacementSlots {
		if slot.Activity.Location != nil {
			return haversineKm(*traveler.CurrentLocation, *slot.Activity.Location)
		}
	}
	return -1
}

func haversineKm(a, b entity.GeoPoint) float64 {
	const earthRadiusKm = 6371.0
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// parseClock parses "HH:mm" into minutes from midnight.
func parseClock(clock string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// extractClock finds the last HH:mm occurrence in free text such as
// "last train 22:30".
func extractClock(text string) (int, bool) {
	fields := strings.Fields(text)
	for i := len(fields) - 1; i >= 0; i-- {
		if minute, ok := parseClock(fields[i]); ok {
			return minute, true
		}
	}
	return 0, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
