package service

import (
	"fmt"
	"strings"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/pkg/planner"
)

// buildOutlinePrompt renders the destination-level skeleton request. The
// model returns one titled entry per day, no activities yet.
func buildOutlinePrompt(req *entity.TripRequest, totalDays int, guideContext string) string {
	var b strings.Builder
	b.WriteString("You are a travel planner drafting the skeleton of a trip itinerary.\n")
	fmt.Fprintf(&b, "Destinations: %s.\n", strings.Join(req.Destinations, ", "))
	fmt.Fprintf(&b, "Trip length: %d days (%s).\n", totalDays, req.Dates)
	if req.Companions != "" {
		fmt.Fprintf(&b, "Traveling with: %s.\n", req.Companions)
	}
	if len(req.Themes) > 0 {
		fmt.Fprintf(&b, "Themes: %s.\n", strings.Join(req.Themes, ", "))
	}
	if req.Budget != "" {
		fmt.Fprintf(&b, "Budget: %s.\n", req.Budget)
	}
	if req.Pace != "" {
		fmt.Fprintf(&b, "Pace: %s.\n", req.Pace)
	}
	if req.FreeText != "" {
		fmt.Fprintf(&b, "Additional wishes: %s\n", req.FreeText)
	}
	writeBookings(&b, req.FixedBookings)
	if guideContext != "" {
		b.WriteString("\n")
		b.WriteString(guideContext)
	}
	fmt.Fprintf(&b, "\nReturn JSON only: {\"destination\":string,\"description\":string,\"days\":[{\"day\":int,\"title\":string,\"summary\":string}]}. ")
	fmt.Fprintf(&b, "Exactly %d day entries, numbered 1 through %d. Titles are short day themes, no activities yet.", totalDays, totalDays)
	return b.String()
}

// buildChunkPrompt expands one contiguous span of outline days into full
// activity schedules. The rest of the outline is included as context so
// chunks stay coherent without sharing generation state.
func buildChunkPrompt(req *entity.TripRequest, outline *entity.PlanOutline, chunk planner.ChunkInfo, guideContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a travel planner filling in days %d to %d of an agreed trip outline for %s.\n",
		chunk.StartDay, chunk.EndDay, outline.Destination)
	b.WriteString("Full outline for context:\n")
	for _, day := range outline.Days {
		marker := " "
		if day.Day >= chunk.StartDay && day.Day <= chunk.EndDay {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s Day %d: %s\n", marker, day.Day, day.Title)
	}
	if req.Pace != "" {
		fmt.Fprintf(&b, "Pace: %s.\n", req.Pace)
	}
	if req.Budget != "" {
		fmt.Fprintf(&b, "Budget: %s.\n", req.Budget)
	}
	writeBookings(&b, bookingsInRange(req.FixedBookings, chunk))
	if guideContext != "" {
		b.WriteString("\n")
		b.WriteString(guideContext)
	}
	fmt.Fprintf(&b, "\nReturn JSON only: {\"days\":[{\"day\":int,\"title\":string,\"activities\":[{\"time\":\"HH:mm\",\"name\":string,\"description\":string,\"lat\":number,\"lng\":number,\"citation\":string}]}]}. ")
	fmt.Fprintf(&b, "Only days %d through %d, keeping the outline titles. 3 to 6 activities per day in chronological order. ", chunk.StartDay, chunk.EndDay)
	b.WriteString("Omit lat/lng when unsure rather than guessing. Cite a guide URL in citation only when the activity came from the provided guides.")
	return b.String()
}

func writeBookings(b *strings.Builder, bookings []entity.FixedBooking) {
	if len(bookings) == 0 {
		return
	}
	b.WriteString("Fixed reservations that must stay in place:\n")
	for _, booking := range bookings {
		fmt.Fprintf(b, "- Day %d at %s: %s\n", booking.Day, booking.Time, booking.Name)
	}
}

func bookingsInRange(bookings []entity.FixedBooking, chunk planner.ChunkInfo) []entity.FixedBooking {
	var out []entity.FixedBooking
	for _, booking := range bookings {
		if booking.Day >= chunk.StartDay && booking.Day <= chunk.EndDay {
			out = append(out, booking)
		}
	}
	return out
}
