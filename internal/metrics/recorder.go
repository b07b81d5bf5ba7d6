package metrics

import "time"

// Recorder defines observability hooks for check runs. Implementations may
// forward to Prometheus; all methods must be safe on the NoopRecorder so
// injection stays optional.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome string) // outcome: clean|issues|failed
	SetBrokenLinks(n int)
	SetOrphanDocuments(n int)
	SetDocumentCount(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncRunOutcome(string)                       {}
func (NoopRecorder) SetBrokenLinks(int)                         {}
func (NoopRecorder) SetOrphanDocuments(int)                     {}
func (NoopRecorder) SetDocumentCount(int)                       {}
