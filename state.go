package carousel

// State represents the current state of a Rotator.
type State int32

const (
	// StateReady indicates the Rotator has at least one slide and is not
	// rotating. Navigation moves the index but no timer is armed.
	StateReady State = iota

	// StateRunning indicates the rotation timer is armed and the Rotator
	// advances automatically every interval.
	StateRunning

	// StateLoading indicates an asynchronous preload is in flight. The
	// Rotator must be treated as not yet active; navigation is a no-op.
	StateLoading

	// StateInert indicates the Rotator has no usable slides. No timer is
	// ever created and every navigation operation is a no-op.
	StateInert
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateLoading:
		return "loading"
	case StateInert:
		return "inert"
	default:
		return "unknown"
	}
}

// Cause records why the active index moved.
type Cause string

const (
	// CauseStart is the initial presentation performed by Start.
	CauseStart Cause = "start"
	// CauseTick is an automatic advance fired by the rotation timer.
	CauseTick Cause = "tick"
	// CauseNext is a manual advance to the following slide.
	CauseNext Cause = "next"
	// CausePrevious is a manual step back to the preceding slide.
	CausePrevious Cause = "previous"
	// CauseGoTo is a manual jump to an explicit index.
	CauseGoTo Cause = "goto"
)
