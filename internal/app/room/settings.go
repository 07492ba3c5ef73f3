package room

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxDurationSeconds caps a single phase at one day.
	MaxDurationSeconds = 24 * 60 * 60

	// MaxLabelLength is the longest phase label accepted, in runes.
	MaxLabelLength = 32
)

// Settings is the immutable per-room configuration, fixed at creation.
type Settings struct {
	FocusDurationSeconds int    `json:"focusDurationSeconds"`
	BreakDurationSeconds int    `json:"breakDurationSeconds"`
	StrictMode           bool   `json:"strictMode"`
	AutoPhaseChange      bool   `json:"autoPhaseChange"`
	FocusPhaseLabel      string `json:"focusPhaseLabel"`
	BreakPhaseLabel      string `json:"breakPhaseLabel"`
}

// DefaultSettings returns the built-in defaults used when no configuration overrides them.
func DefaultSettings() Settings {
	return Settings{
		FocusDurationSeconds: 25 * 60,
		BreakDurationSeconds: 5 * 60,
		StrictMode:           false,
		AutoPhaseChange:      true,
		FocusPhaseLabel:      "Focus",
		BreakPhaseLabel:      "Break",
	}
}

// SettingsInput is the create-time settings payload; nil fields take the defaults.
type SettingsInput struct {
	FocusDurationSeconds *int    `json:"focusDurationSeconds,omitempty"`
	BreakDurationSeconds *int    `json:"breakDurationSeconds,omitempty"`
	StrictMode           *bool   `json:"strictMode,omitempty"`
	AutoPhaseChange      *bool   `json:"autoPhaseChange,omitempty"`
	FocusPhaseLabel      *string `json:"focusPhaseLabel,omitempty"`
	BreakPhaseLabel      *string `json:"breakPhaseLabel,omitempty"`
}

// SettingsError describes why a settings value was rejected.
type SettingsError struct {
	Reason string
}

func (e *SettingsError) Error() string {
	return "invalid room settings: " + e.Reason
}

// Merge overlays the provided fields on defaults and validates the result.
// A nil input yields the defaults unchanged.
func (in *SettingsInput) Merge(defaults Settings) (Settings, error) {
	s := defaults
	if in != nil {
		if in.FocusDurationSeconds != nil {
			s.FocusDurationSeconds = *in.FocusDurationSeconds
		}
		if in.BreakDurationSeconds != nil {
			s.BreakDurationSeconds = *in.BreakDurationSeconds
		}
		if in.StrictMode != nil {
			s.StrictMode = *in.StrictMode
		}
		if in.AutoPhaseChange != nil {
			s.AutoPhaseChange = *in.AutoPhaseChange
		}
		if in.FocusPhaseLabel != nil {
			if label := strings.TrimSpace(*in.FocusPhaseLabel); label != "" {
				s.FocusPhaseLabel = label
			}
		}
		if in.BreakPhaseLabel != nil {
			if label := strings.TrimSpace(*in.BreakPhaseLabel); label != "" {
				s.BreakPhaseLabel = label
			}
		}
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks duration ranges and label lengths.
func (s Settings) Validate() error {
	if s.FocusDurationSeconds < 1 || s.FocusDurationSeconds > MaxDurationSeconds {
		return &SettingsError{Reason: fmt.Sprintf("focus duration must be between 1 and %d seconds", MaxDurationSeconds)}
	}
	if s.BreakDurationSeconds < 1 || s.BreakDurationSeconds > MaxDurationSeconds {
		return &SettingsError{Reason: fmt.Sprintf("break duration must be between 1 and %d seconds", MaxDurationSeconds)}
	}
	if s.FocusPhaseLabel == "" || utf8.RuneCountInString(s.FocusPhaseLabel) > MaxLabelLength {
		return &SettingsError{Reason: fmt.Sprintf("focus label must be 1 to %d characters", MaxLabelLength)}
	}
	if s.BreakPhaseLabel == "" || utf8.RuneCountInString(s.BreakPhaseLabel) > MaxLabelLength {
		return &SettingsError{Reason: fmt.Sprintf("break label must be 1 to %d characters", MaxLabelLength)}
	}
	return nil
}

// Duration returns the configured length of a phase in seconds.
func (s Settings) Duration(p Phase) int {
	if p == PhaseBreak {
		return s.BreakDurationSeconds
	}
	return s.FocusDurationSeconds
}

// Label returns the display name of a phase.
func (s Settings) Label(p Phase) string {
	if p == PhaseBreak {
		return s.BreakPhaseLabel
	}
	return s.FocusPhaseLabel
}
