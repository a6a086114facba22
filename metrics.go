package carousel

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key rotator events.
type MetricsProvider interface {
	// OnStateChange is called when the rotator transitions between states.
	OnStateChange(from, to State)

	// OnAdvance is called whenever the active index moves.
	OnAdvance(from, to int, cause Cause)

	// OnTimerReset is called when manual navigation cancels and re-arms
	// the rotation timer.
	OnTimerReset()

	// OnSlideRejected is called for each candidate dropped by a preload.
	OnSlideRejected(index int, err error)

	// OnTransitionFailure is called when the presenter returns an error.
	// Phase is "activate" or "deactivate".
	OnTransitionFailure(phase string, err error)
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnStateChange(_, _ State)               {}
func (NoOpMetricsProvider) OnAdvance(_, _ int, _ Cause)            {}
func (NoOpMetricsProvider) OnTimerReset()                          {}
func (NoOpMetricsProvider) OnSlideRejected(_ int, _ error)         {}
func (NoOpMetricsProvider) OnTransitionFailure(_ string, _ error) {}
