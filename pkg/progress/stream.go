// Package progress implements the one-way generation progress stream: an
// ordered sequence of NDJSON events ending in exactly one terminal event.
package progress

import (
	"bufio"
	"encoding/json"
	"sync"

	"ai-tripplanner-be/internal/dto"
)

// Emitter is the write side handed to the generation orchestrator.
type Emitter interface {
	// Progress emits a non-terminal step event.
	Progress(step, message string)

	// ChunkProgress emits a step event carrying chunk completion counts.
	ChunkProgress(step, message string, done, total int)

	// Complete emits the terminal success event. At most one terminal
	// event is ever written, later calls are dropped.
	Complete(data *dto.GenerateItineraryResponse)

	// Error emits the terminal error event, same single-shot rule.
	Error(message string)
}

// Stream writes events to a buffered writer, flushing after every line so
// the client sees progress as it happens. A write failure means the client
// disconnected: the stream goes quiet without surfacing an error, the
// producer keeps running.
type Stream struct {
	mu       sync.Mutex
	w        *bufio.Writer
	dead     bool
	terminal sync.Once
}

var _ Emitter = &Stream{}

func NewStream(w *bufio.Writer) *Stream {
	return &Stream{w: w}
}

func (s *Stream) Progress(step, message string) {
	s.emit(dto.StreamEvent{
		Type:    dto.StreamEventProgress,
		Step:    step,
		Message: message,
	})
}

func (s *Stream) ChunkProgress(step, message string, done, total int) {
	s.emit(dto.StreamEvent{
		Type:      dto.StreamEventProgress,
		Step:      step,
		Message:   message,
		ChunkDone: done,
		ChunkSize: total,
	})
}

func (s *Stream) Complete(data *dto.GenerateItineraryResponse) {
	s.terminal.Do(func() {
		s.emit(dto.StreamEvent{
			Type: dto.StreamEventComplete,
			Data: data,
		})
	})
}

func (s *Stream) Error(message string) {
	s.terminal.Do(func() {
		s.emit(dto.StreamEvent{
			Type:    dto.StreamEventError,
			Message: message,
		})
	})
}

func (s *Stream) emit(event dto.StreamEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dead {
		return
	}

	line, err := json.Marshal(event)
	if err != nil {
		return
	}

	if _, err := s.w.Write(append(line, '\n')); err != nil {
		s.dead = true
		return
	}
	if err := s.w.Flush(); err != nil {
		s.dead = true
	}
}
