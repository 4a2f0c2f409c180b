package planner

import (
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		totalDays int
		want      []ChunkInfo
	}{
		{
			name:      "zero days",
			totalDays: 0,
			want:      []ChunkInfo{},
		},
		{
			name:      "negative days",
			totalDays: -3,
			want:      []ChunkInfo{},
		},
		{
			name:      "single day",
			totalDays: 1,
			want:      []ChunkInfo{{1, 1}},
		},
		{
			name:      "even split",
			totalDays: 4,
			want:      []ChunkInfo{{1, 2}, {3, 4}},
		},
		{
			name:      "odd split leaves single-day tail",
			totalDays: 5,
			want:      []ChunkInfo{{1, 2}, {3, 4}, {5, 5}},
		},
		{
			name:      "long trip",
			totalDays: 14,
			want:      []ChunkInfo{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 10}, {11, 12}, {13, 14}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.totalDays)
			if len(got) != len(tt.want) {
				t.Fatalf("Split(%d) returned %d chunks, want %d", tt.totalDays, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Every valid input must produce contiguous ascending chunks covering
// exactly [1, n] with no overlap.
func TestSplitCoversAllDays(t *testing.T) {
	for n := 1; n <= 60; n++ {
		chunks := Split(n)

		expectedStart := 1
		for i, c := range chunks {
			if c.StartDay != expectedStart {
				t.Fatalf("n=%d chunk %d starts at %d, want %d", n, i, c.StartDay, expectedStart)
			}
			if c.EndDay < c.StartDay {
				t.Fatalf("n=%d chunk %d has end %d before start %d", n, i, c.EndDay, c.StartDay)
			}
			if c.Days() > ChunkSize {
				t.Fatalf("n=%d chunk %d spans %d days, max %d", n, i, c.Days(), ChunkSize)
			}
			expectedStart = c.EndDay + 1
		}

		if expectedStart != n+1 {
			t.Fatalf("n=%d chunks cover up to day %d, want %d", n, expectedStart-1, n)
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	first := Split(9)
	second := Split(9)
	if len(first) != len(second) {
		t.Fatalf("repeated Split(9) disagreed on length")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}
