package store

import "time"

// GenerationState tracks one in-flight itinerary generation in memory.
// The planner updates it as chunks resolve; the status endpoint reads it so
// clients that lost their stream can poll.
type GenerationState struct {
	PlanID      string    `json:"plan_id"`
	UserID      string    `json:"user_id"`
	Phase       string    `json:"phase"` // "outline" | "chunks" | "done" | "failed"
	Step        string    `json:"step"`  // Current pipeline step identifier
	ChunksDone  int       `json:"chunks_done"`
	ChunksTotal int       `json:"chunks_total"`
	FailedDays  []int     `json:"failed_days,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}

const (
	PhaseOutline = "outline"
	PhaseChunks  = "chunks"
	PhaseDone    = "done"
	PhaseFailed  = "failed"
)
