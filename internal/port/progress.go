package port

import "payfill/internal/domain"

// ProgressEvent is one stage-boundary notification. State is a reference
// to the run's live PipelineState, not a copy; sinks observing it between
// synchronous calls see the in-progress record.
type ProgressEvent struct {
	Step    domain.PipelineStep
	Message string
	State   *domain.PipelineState
}

// ProgressSink receives stage-boundary events. Publish is called
// synchronously and in order; a slow sink delays the pipeline.
type ProgressSink interface {
	Publish(event ProgressEvent)
}

// ProgressFunc adapts a plain function to a ProgressSink.
type ProgressFunc func(event ProgressEvent)

func (f ProgressFunc) Publish(event ProgressEvent) { f(event) }
