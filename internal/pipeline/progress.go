package pipeline

import (
	"sync"

	"payfill/internal/port"
)

// Recorder is a ProgressSink that keeps every event in emission order.
// Useful for polling hosts and for tests that assert the stage sequence.
type Recorder struct {
	mu     sync.Mutex
	events []port.ProgressEvent
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish appends the event.
func (r *Recorder) Publish(event port.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events in order.
func (r *Recorder) Events() []port.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]port.ProgressEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Steps returns just the step names in emission order.
func (r *Recorder) Steps() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	steps := make([]string, len(r.events))
	for i, e := range r.events {
		steps[i] = string(e.Step)
	}
	return steps
}
