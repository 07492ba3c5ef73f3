package room

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestSettingsInput_Merge(t *testing.T) {
	defaults := DefaultSettings()

	t.Run("nil input keeps defaults", func(t *testing.T) {
		var in *SettingsInput
		s, err := in.Merge(defaults)
		require.NoError(t, err)
		assert.Equal(t, defaults, s)
	})

	t.Run("partial override", func(t *testing.T) {
		in := &SettingsInput{
			FocusDurationSeconds: ptr(50 * 60),
			StrictMode:           ptr(true),
			BreakPhaseLabel:      ptr("  Stretch "),
		}
		s, err := in.Merge(defaults)
		require.NoError(t, err)
		assert.Equal(t, 3000, s.FocusDurationSeconds)
		assert.Equal(t, defaults.BreakDurationSeconds, s.BreakDurationSeconds)
		assert.True(t, s.StrictMode)
		assert.Equal(t, defaults.AutoPhaseChange, s.AutoPhaseChange)
		assert.Equal(t, "Stretch", s.BreakPhaseLabel)
		assert.Equal(t, "Focus", s.FocusPhaseLabel)
	})

	t.Run("blank label falls back", func(t *testing.T) {
		s, err := (&SettingsInput{FocusPhaseLabel: ptr("   ")}).Merge(defaults)
		require.NoError(t, err)
		assert.Equal(t, "Focus", s.FocusPhaseLabel)
	})

	t.Run("explicit false overrides true default", func(t *testing.T) {
		s, err := (&SettingsInput{AutoPhaseChange: ptr(false)}).Merge(defaults)
		require.NoError(t, err)
		assert.False(t, s.AutoPhaseChange)
	})
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		reason string
	}{
		{name: "zero focus", mutate: func(s *Settings) { s.FocusDurationSeconds = 0 }, reason: "focus duration"},
		{name: "huge break", mutate: func(s *Settings) { s.BreakDurationSeconds = MaxDurationSeconds + 1 }, reason: "break duration"},
		{name: "long focus label", mutate: func(s *Settings) { s.FocusPhaseLabel = strings.Repeat("x", MaxLabelLength+1) }, reason: "focus label"},
		{name: "empty break label", mutate: func(s *Settings) { s.BreakPhaseLabel = "" }, reason: "break label"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)

			err := s.Validate()
			var settingsErr *SettingsError
			require.True(t, errors.As(err, &settingsErr))
			assert.Contains(t, settingsErr.Reason, tt.reason)
		})
	}

	assert.NoError(t, DefaultSettings().Validate())
}

func TestSettings_DurationAndLabel(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 1500, s.Duration(PhaseFocus))
	assert.Equal(t, 300, s.Duration(PhaseBreak))
	assert.Equal(t, "Focus", s.Label(PhaseFocus))
	assert.Equal(t, "Break", s.Label(PhaseBreak))
}
