package carousel

import "github.com/zoobzio/capitan"

// Rotator lifecycle signals.
var (
	// RotatorStarted is emitted when a Rotator begins rotating.
	RotatorStarted = capitan.NewSignal(
		"carousel.rotator.started",
		"Rotator rotation started",
	)

	// RotatorStopped is emitted when a Rotator stops rotating.
	RotatorStopped = capitan.NewSignal(
		"carousel.rotator.stopped",
		"Rotator rotation stopped",
	)

	// RotatorStateChanged is emitted when a Rotator transitions between states.
	RotatorStateChanged = capitan.NewSignal(
		"carousel.rotator.state.changed",
		"Rotator state transition",
	)
)

// Slide signals.
var (
	// SlideAdvanced is emitted whenever the active index moves.
	SlideAdvanced = capitan.NewSignal(
		"carousel.slide.advanced",
		"Active slide changed",
	)

	// SlideRejected is emitted when a candidate slide fails to load.
	SlideRejected = capitan.NewSignal(
		"carousel.slide.rejected",
		"Slide source failed validation",
	)

	// LoadCompleted is emitted when a preload pass resolves.
	LoadCompleted = capitan.NewSignal(
		"carousel.load.completed",
		"Slide preload finished",
	)

	// TimerReset is emitted when the rotation timer is cancelled and re-armed.
	TimerReset = capitan.NewSignal(
		"carousel.timer.reset",
		"Rotation timer re-armed",
	)

	// TransitionFailed is emitted when the presenter returns an error.
	TransitionFailed = capitan.NewSignal(
		"carousel.transition.failed",
		"Presenter failed to apply transition",
	)
)

// Settings signals.
var (
	// SettingsReceived is emitted when raw settings arrive from a watcher.
	SettingsReceived = capitan.NewSignal(
		"carousel.settings.received",
		"Raw settings received from watcher",
	)

	// SettingsRejected is emitted when settings fail to decode, validate or apply.
	SettingsRejected = capitan.NewSignal(
		"carousel.settings.rejected",
		"Settings rejected",
	)

	// SettingsApplied is emitted when settings are successfully applied.
	SettingsApplied = capitan.NewSignal(
		"carousel.settings.applied",
		"Settings applied successfully",
	)
)
