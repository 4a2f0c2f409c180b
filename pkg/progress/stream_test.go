package progress

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"ai-tripplanner-be/internal/dto"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []dto.StreamEvent {
	t.Helper()
	var events []dto.StreamEvent
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var ev dto.StreamEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestStreamEmitsInOrder(t *testing.T) {
	var buf bytes.Buffer
	stream := NewStream(bufio.NewWriter(&buf))

	stream.Progress(dto.ProgressStepUsageCheck, "checking usage")
	stream.Progress(dto.ProgressStepCacheCheck, "checking cache")
	stream.ChunkProgress(dto.ProgressStepAiGeneration, "generating days", 1, 3)
	stream.Complete(&dto.GenerateItineraryResponse{Status: "complete"})

	events := decodeLines(t, &buf)
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}

	wantSteps := []string{dto.ProgressStepUsageCheck, dto.ProgressStepCacheCheck, dto.ProgressStepAiGeneration}
	for i, step := range wantSteps {
		if events[i].Type != dto.StreamEventProgress {
			t.Errorf("event %d type = %q, want progress", i, events[i].Type)
		}
		if events[i].Step != step {
			t.Errorf("event %d step = %q, want %q", i, events[i].Step, step)
		}
	}

	last := events[len(events)-1]
	if last.Type != dto.StreamEventComplete {
		t.Errorf("terminal type = %q, want complete", last.Type)
	}
	if last.Data == nil || last.Data.Status != "complete" {
		t.Errorf("terminal data = %+v, want status complete", last.Data)
	}
}

func TestStreamExactlyOneTerminalEvent(t *testing.T) {
	var buf bytes.Buffer
	stream := NewStream(bufio.NewWriter(&buf))

	stream.Progress(dto.ProgressStepAiGeneration, "working")
	stream.Complete(&dto.GenerateItineraryResponse{Status: "complete"})
	stream.Error("late failure must be dropped")
	stream.Complete(&dto.GenerateItineraryResponse{Status: "partial"})

	events := decodeLines(t, &buf)

	terminals := 0
	for _, ev := range events {
		if ev.Type == dto.StreamEventComplete || ev.Type == dto.StreamEventError {
			terminals++
		}
	}
	if terminals != 1 {
		t.Fatalf("got %d terminal events, want exactly 1", terminals)
	}
	if events[len(events)-1].Type != dto.StreamEventComplete {
		t.Errorf("surviving terminal = %q, want the first one (complete)", events[len(events)-1].Type)
	}
}

func TestStreamErrorTerminal(t *testing.T) {
	var buf bytes.Buffer
	stream := NewStream(bufio.NewWriter(&buf))

	stream.Error("model unavailable")
	stream.Progress(dto.ProgressStepAiGeneration, "should still be written")

	events := decodeLines(t, &buf)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != dto.StreamEventError || events[0].Message != "model unavailable" {
		t.Errorf("first event = %+v, want error terminal", events[0])
	}
}

// A failed write marks the stream dead: later events are dropped silently
// rather than surfacing an error to the producer.
type failingWriter struct {
	writes int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, bufio.ErrBufferFull
}

func TestStreamGoesQuietOnDisconnect(t *testing.T) {
	fw := &failingWriter{}
	// Tiny buffer so the first write hits the sink immediately
	stream := NewStream(bufio.NewWriterSize(fw, 1))

	stream.Progress(dto.ProgressStepUsageCheck, "first")
	writesAfterFirst := fw.writes
	if writesAfterFirst == 0 {
		t.Fatal("expected the first event to reach the writer")
	}

	stream.Progress(dto.ProgressStepCacheCheck, "second")
	stream.Complete(nil)

	if fw.writes != writesAfterFirst {
		t.Errorf("dead stream still writing: %d writes after first failure", fw.writes-writesAfterFirst)
	}
}
