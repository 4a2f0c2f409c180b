// Package planner holds the pure planning primitives of the generation
// pipeline: day chunking and request normalization.
package planner

// ChunkSize is the number of days generated per model call. Two days keeps
// each prompt small enough that the model reliably returns valid structured
// output for every day in the chunk.
const ChunkSize = 2

// ChunkInfo is a contiguous span of days generated together.
type ChunkInfo struct {
	StartDay int `json:"start_day"`
	EndDay   int `json:"end_day"`
}

// Days returns how many days the chunk covers.
func (c ChunkInfo) Days() int {
	return c.EndDay - c.StartDay + 1
}

// Split partitions 1..totalDays into ascending, contiguous, non-overlapping
// chunks of at most ChunkSize days. The final chunk may be a single day.
// Non-positive input yields an empty list. Pure and deterministic, so chunk
// generation can be dispatched concurrently and retried safely.
func Split(totalDays int) []ChunkInfo {
	if totalDays <= 0 {
		return []ChunkInfo{}
	}

	chunks := make([]ChunkInfo, 0, (totalDays+ChunkSize-1)/ChunkSize)
	for start := 1; start <= totalDays; start += ChunkSize {
		end := start + ChunkSize - 1
		if end > totalDays {
			end = totalDays
		}
		chunks = append(chunks, ChunkInfo{StartDay: start, EndDay: end})
	}
	return chunks
}
