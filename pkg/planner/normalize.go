package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"ai-tripplanner-be/internal/entity"
)

// normalizedRequest is the canonical form hashed for cache keying. Field
// names are fixed so the hash stays stable across struct changes that only
// add optional fields.
type normalizedRequest struct {
	Destinations  []string              `json:"destinations"`
	Dates         string                `json:"dates"`
	Companions    string                `json:"companions"`
	Themes        []string              `json:"themes"`
	Budget        string                `json:"budget"`
	Pace          string                `json:"pace"`
	FreeText      string                `json:"free_text"`
	FixedBookings []entity.FixedBooking `json:"fixed_bookings"`
}

// RequestHash returns a stable content hash of the trip request. Two
// requests that differ only in list ordering, whitespace, or letter case of
// free text produce the same hash, so they share one cached outline.
func RequestHash(req *entity.TripRequest) string {
	norm := normalizedRequest{
		Destinations:  normalizeList(req.Destinations),
		Dates:         strings.TrimSpace(strings.ToLower(req.Dates)),
		Companions:    strings.TrimSpace(strings.ToLower(req.Companions)),
		Themes:        normalizeList(req.Themes),
		Budget:        strings.TrimSpace(strings.ToLower(req.Budget)),
		Pace:          strings.TrimSpace(strings.ToLower(req.Pace)),
		FreeText:      strings.TrimSpace(strings.ToLower(req.FreeText)),
		FixedBookings: normalizeBookings(req.FixedBookings),
	}

	// Marshal cannot fail for this shape
	raw, _ := json.Marshal(norm)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(strings.ToLower(item))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	sort.Strings(out)
	return out
}

func normalizeBookings(bookings []entity.FixedBooking) []entity.FixedBooking {
	out := make([]entity.FixedBooking, len(bookings))
	copy(out, bookings)
	for i := range out {
		out[i].Name = strings.TrimSpace(strings.ToLower(out[i].Name))
		out[i].Location = strings.TrimSpace(strings.ToLower(out[i].Location))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].Time < out[j].Time
	})
	return out
}

// TotalDays derives the trip length in days from the request's dates field.
// Returns 0 when the field cannot be interpreted.
func TotalDays(dates string) int {
	return parseDates(dates)
}
