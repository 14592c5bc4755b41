package metrics

import "time"

// BuildOutcome enumerates the final state of one rebuild generation.
type BuildOutcome string

const (
	OutcomeSuccess BuildOutcome = "success"
	OutcomeWarning BuildOutcome = "warning"
	OutcomeFailed  BuildOutcome = "failed"
)

// TransformResult enumerates what the transform hook did with one module.
type TransformResult string

const (
	TransformPassThrough TransformResult = "passthrough"
	TransformPlain       TransformResult = "plain"
	TransformRefresh     TransformResult = "refresh"
	TransformFailed      TransformResult = "failed"
)

// Recorder defines observability hooks for builds, transforms and update delivery.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	IncCoalescedEvents()
	IncTransform(result TransformResult)
	SetConnectedClients(n int)
	IncBroadcast()
	IncDeliveryFailure()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)       {}
func (NoopRecorder) IncCoalescedEvents()                {}
func (NoopRecorder) IncTransform(TransformResult)       {}
func (NoopRecorder) SetConnectedClients(int)            {}
func (NoopRecorder) IncBroadcast()                      {}
func (NoopRecorder) IncDeliveryFailure()                {}
