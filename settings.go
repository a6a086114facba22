package carousel

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultInterval is the default delay between automatic advances.
	DefaultInterval = 4500 * time.Millisecond

	// DefaultFadeDelay is the default delay between deactivating the outgoing
	// slide and activating the incoming one.
	DefaultFadeDelay = 200 * time.Millisecond

	// DefaultPopupDelay is the default delay before the capture popup shows.
	DefaultPopupDelay = 4000 * time.Millisecond
)

// validate is the shared validator instance.
var validate = validator.New()

// Settings holds the tunable timing of a landing page. Values are in
// milliseconds so that YAML and JSON sources decode identically.
type Settings struct {
	IntervalMS   int  `yaml:"interval_ms" json:"interval_ms" validate:"gt=0"`
	FadeDelayMS  int  `yaml:"fade_delay_ms" json:"fade_delay_ms" validate:"gte=0,ltfield=IntervalMS"`
	Preload      bool `yaml:"preload" json:"preload"`
	PopupDelayMS int  `yaml:"popup_delay_ms" json:"popup_delay_ms" validate:"gte=0"`
}

// DefaultSettings returns the classic preset.
func DefaultSettings() Settings {
	return presets["classic"]
}

// Validate checks the struct tags and wraps any failure in ErrInvalidSettings.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// Interval returns the rotation interval as a duration.
func (s Settings) Interval() time.Duration {
	return time.Duration(s.IntervalMS) * time.Millisecond
}

// FadeDelay returns the presentation delay as a duration.
func (s Settings) FadeDelay() time.Duration {
	return time.Duration(s.FadeDelayMS) * time.Millisecond
}

// PopupDelay returns the popup auto-show delay as a duration.
func (s Settings) PopupDelay() time.Duration {
	return time.Duration(s.PopupDelayMS) * time.Millisecond
}

// presets captures the timing variants seen across deployed pages.
var presets = map[string]Settings{
	"swift":   {IntervalMS: 4000, FadeDelayMS: 180, Preload: true, PopupDelayMS: 4000},
	"classic": {IntervalMS: 4500, FadeDelayMS: 200, Preload: true, PopupDelayMS: 4000},
	"calm":    {IntervalMS: 5000, FadeDelayMS: 220, Preload: false, PopupDelayMS: 4000},
}

// Preset returns the named settings bundle.
func Preset(name string) (Settings, error) {
	s, ok := presets[name]
	if !ok {
		return Settings{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidSettings, name)
	}
	return s, nil
}

// Presets lists the available preset names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
