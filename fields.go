package carousel

import "github.com/zoobzio/capitan"

// Field keys for Rotator events.
var (
	// KeyState is the current state of the Rotator.
	KeyState = capitan.NewStringKey("state")

	// KeyOldState is the previous state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the new state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyInterval is the configured rotation interval.
	KeyInterval = capitan.NewDurationKey("interval")

	// KeyFadeDelay is the configured presentation delay.
	KeyFadeDelay = capitan.NewDurationKey("fade_delay")

	// KeyFrom is the index that was active before an advance.
	KeyFrom = capitan.NewIntKey("from")

	// KeyTo is the index that is active after an advance.
	KeyTo = capitan.NewIntKey("to")

	// KeyIndex is the position of a slide in its sequence.
	KeyIndex = capitan.NewIntKey("index")

	// KeyCount is the number of slides in the effective sequence.
	KeyCount = capitan.NewIntKey("count")

	// KeyRejected is the number of candidates dropped by a preload.
	KeyRejected = capitan.NewIntKey("rejected")

	// KeyCause is why the active index moved.
	KeyCause = capitan.NewStringKey("cause")

	// KeyPhase is the step that failed: "activate" or "deactivate" for
	// transitions, "decode" or "apply" for settings.
	KeyPhase = capitan.NewStringKey("phase")

	// KeyContentType is the codec MIME type settings were decoded with.
	KeyContentType = capitan.NewStringKey("content_type")
)
