package services

import (
	"sync"
	"time"

	"timeledger/internal/domain"
	"timeledger/internal/errors"
)

// TimerRuntime is the in-memory state machine wrapped around the persisted
// running entry. Pauses are a runtime concern only: paused stretches are
// subtracted from the elapsed display but the stored entry keeps its real
// start time, and a pause does not survive a process restart.
type TimerRuntime struct {
	mu sync.Mutex

	lifecycle LifecycleService
	clock     Clock

	userID      string
	entry       *domain.TimeEntry
	pausedAt    *time.Time
	pausedTotal time.Duration
}

// NewTimerRuntime creates a TimerRuntime for one user.
func NewTimerRuntime(lifecycle LifecycleService, userID string) *TimerRuntime {
	return NewTimerRuntimeWithClock(lifecycle, userID, time.Now)
}

// NewTimerRuntimeWithClock creates a TimerRuntime with an injected clock
// for tests.
func NewTimerRuntimeWithClock(lifecycle LifecycleService, userID string, clock Clock) *TimerRuntime {
	return &TimerRuntime{
		lifecycle: lifecycle,
		clock:     clock,
		userID:    userID,
	}
}

// Start begins tracking. Delegates persistence to the lifecycle service,
// which enforces the single-running-timer rule.
func (t *TimerRuntime) Start(opts StartOptions) (*domain.TimeEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, err := t.lifecycle.StartTimer(t.userID, opts)
	if err != nil {
		return nil, err
	}

	t.entry = entry
	t.pausedAt = nil
	t.pausedTotal = 0
	return entry, nil
}

// Resume attaches the runtime to an already-running persisted entry, e.g.
// after a process restart.
func (t *TimerRuntime) Resume() (*domain.TimeEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, err := t.lifecycle.GetRunningEntry(t.userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.NewNotFoundError("running timer", t.userID)
	}

	t.entry = entry
	t.pausedAt = nil
	t.pausedTotal = 0
	return entry, nil
}

// Pause suspends the elapsed display. No-op if already paused.
func (t *TimerRuntime) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.entry == nil {
		return errors.NewStateConflictError("no timer running")
	}
	if t.pausedAt != nil {
		return nil
	}

	now := t.clock()
	t.pausedAt = &now
	return nil
}

// Unpause resumes the elapsed display, accumulating the paused stretch.
func (t *TimerRuntime) Unpause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.entry == nil {
		return errors.NewStateConflictError("no timer running")
	}
	if t.pausedAt == nil {
		return nil
	}

	t.pausedTotal += t.clock().Sub(*t.pausedAt)
	t.pausedAt = nil
	return nil
}

// Stop ends tracking and persists the stop through the lifecycle service.
func (t *TimerRuntime) Stop(opts StopOptions) (*StopResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.entry == nil {
		return nil, errors.NewStateConflictError("no timer running")
	}

	result, err := t.lifecycle.StopTimer(t.userID, opts)
	if err != nil {
		return nil, err
	}

	t.entry = nil
	t.pausedAt = nil
	t.pausedTotal = 0
	return result, nil
}

// Elapsed returns the running time net of paused stretches. Zero when no
// timer is attached.
func (t *TimerRuntime) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.entry == nil {
		return 0
	}

	end := t.clock()
	if t.pausedAt != nil {
		end = *t.pausedAt
	}
	elapsed := end.Sub(t.entry.StartTime) - t.pausedTotal
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// IsRunning reports whether the runtime has an attached, unpaused timer.
func (t *TimerRuntime) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entry != nil && t.pausedAt == nil
}

// IsPaused reports whether the runtime is paused.
func (t *TimerRuntime) IsPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entry != nil && t.pausedAt != nil
}

// Current returns the attached entry, or nil.
func (t *TimerRuntime) Current() *domain.TimeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entry
}
