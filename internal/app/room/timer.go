package room

import "time"

// Phase is the half of the focus/break cycle a timer is in.
type Phase string

const (
	PhaseFocus Phase = "focus"
	PhaseBreak Phase = "break"
)

// Next returns the phase that follows p.
func (p Phase) Next() Phase {
	if p == PhaseFocus {
		return PhaseBreak
	}
	return PhaseFocus
}

// Timer is the per-room countdown state machine: {Focus, Break} x {Running, Paused}.
// All arithmetic is in whole seconds; fractions never reach clients.
type Timer struct {
	Phase            Phase
	IsRunning        bool
	SecondsRemaining int

	// RunningSince is the zero time while paused.
	RunningSince time.Time
}

// TickResult reports what a tick changed beyond the remaining seconds.
type TickResult struct {
	// Switched is set when the countdown hit zero and the phase flipped.
	Switched bool

	// Completed is set when the countdown hit zero without auto phase change.
	Completed bool
}

// TimerState is the wire form of a Timer.
type TimerState struct {
	Phase     Phase `json:"phase"`
	IsRunning bool  `json:"isRunning"`
	TimeLeft  int   `json:"timeLeft"`

	// LastUpdatedAt is unix milliseconds of RunningSince, nil while paused.
	LastUpdatedAt *int64 `json:"lastUpdatedAt"`
}

// NewTimer returns a paused timer at the start of the focus phase.
func NewTimer(s Settings) Timer {
	return Timer{
		Phase:            PhaseFocus,
		IsRunning:        false,
		SecondsRemaining: s.FocusDurationSeconds,
	}
}

// Start begins counting down. It is a no-op on a running timer.
func (t *Timer) Start(now time.Time) bool {
	if t.IsRunning {
		return false
	}
	t.IsRunning = true
	t.RunningSince = now
	return true
}

// Pause folds the elapsed whole seconds into the remaining time and stops.
// It is a no-op on a paused timer.
func (t *Timer) Pause(now time.Time) bool {
	if !t.IsRunning {
		return false
	}
	t.SecondsRemaining = max(0, t.SecondsRemaining-t.elapsed(now))
	t.IsRunning = false
	t.RunningSince = time.Time{}
	return true
}

// Reset always returns to a paused focus phase at full length.
func (t *Timer) Reset(s Settings) {
	*t = NewTimer(s)
}

// Tick advances a running timer. The window start moves forward by exactly the whole
// seconds consumed, so sub-second remainders carry into the next tick instead of being lost.
func (t *Timer) Tick(now time.Time, s Settings) TickResult {
	if !t.IsRunning {
		return TickResult{}
	}

	elapsed := t.elapsed(now)
	t.SecondsRemaining = max(0, t.SecondsRemaining-elapsed)
	t.RunningSince = t.RunningSince.Add(time.Duration(elapsed) * time.Second)

	if t.SecondsRemaining > 0 {
		return TickResult{}
	}

	if s.AutoPhaseChange {
		t.SwitchPhase(now, s)
		return TickResult{Switched: true}
	}

	t.IsRunning = false
	t.RunningSince = time.Time{}
	return TickResult{Completed: true}
}

// SwitchPhase flips focus and break, loading the new phase's full duration.
// A running timer keeps running from now.
func (t *Timer) SwitchPhase(now time.Time, s Settings) {
	t.Phase = t.Phase.Next()
	t.SecondsRemaining = s.Duration(t.Phase)
	if t.IsRunning {
		t.RunningSince = now
	} else {
		t.RunningSince = time.Time{}
	}
}

// State returns the wire form of the timer.
func (t Timer) State() TimerState {
	state := TimerState{
		Phase:     t.Phase,
		IsRunning: t.IsRunning,
		TimeLeft:  t.SecondsRemaining,
	}
	if t.IsRunning {
		ms := t.RunningSince.UnixMilli()
		state.LastUpdatedAt = &ms
	}
	return state
}

// elapsed is the floored whole seconds since RunningSince. A clock stepping backwards counts as zero.
func (t Timer) elapsed(now time.Time) int {
	d := now.Sub(t.RunningSince)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}
