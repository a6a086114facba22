package overlay

import "github.com/zoobzio/capitan"

// Overlay signals.
var (
	PanelOpened = capitan.NewSignal("carousel.panel.opened", "Navigation panel opened")
	PanelClosed = capitan.NewSignal("carousel.panel.closed", "Navigation panel closed")
	PopupArmed  = capitan.NewSignal("carousel.popup.armed", "Popup show scheduled")
	PopupShown  = capitan.NewSignal("carousel.popup.shown", "Popup shown")
	PopupHidden = capitan.NewSignal("carousel.popup.hidden", "Popup hidden")
	LinkOpened  = capitan.NewSignal("carousel.link.opened", "Contact link opened")
)

// Field keys for overlay events.
var (
	KeyDelay = capitan.NewDurationKey("delay")
	KeyURL   = capitan.NewStringKey("url")
)
