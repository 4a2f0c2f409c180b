package progress

import "ai-tripplanner-be/internal/dto"

// noopEmitter drops every event. Used by the non-streaming endpoints so
// the orchestrator never has to branch on emitter presence.
type noopEmitter struct{}

func (noopEmitter) Progress(step, message string)                       {}
func (noopEmitter) ChunkProgress(step, message string, done, total int) {}
func (noopEmitter) Complete(data *dto.GenerateItineraryResponse)        {}
func (noopEmitter) Error(message string)                                {}

// Noop returns an emitter that discards all events.
func Noop() Emitter {
	return noopEmitter{}
}
