package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ligaboreal/mesa-tecnica/internal/game"
	"github.com/ligaboreal/mesa-tecnica/internal/store"
)

// clockRunner drives the countdown on the station that armed the
// clock. Only discrete clock values are persisted (pause, adjust,
// period advance, expiry); the tick stream itself is local.
type clockRunner struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// startRunnerLocked launches the ticker goroutine. Caller holds s.mu.
func (s *Session) startRunnerLocked() {
	if s.clock != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &clockRunner{cancel: cancel, done: make(chan struct{})}
	s.clock = r

	interval := s.tick
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.runnerTick(ctx, r) {
					return
				}
			}
		}
	}()
}

// runnerTick applies one tick and reports whether the runner should
// keep going.
func (s *Session) runnerTick(ctx context.Context, r *clockRunner) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock != r {
		return false
	}

	expired := s.g.Tick()
	if expired {
		// Reaching zero auto-stops; persist the stop so other
		// stations see 0:00.
		if err := s.st.SetFields(ctx, s.g.ID, store.Fields{
			store.FieldClock:   s.g.Clock,
			store.FieldRunning: false,
		}); err != nil {
			s.logger.Warn("persist clock expiry failed", "error", err)
		}
		s.appendLog(ctx, s.g.NewLogEntry(game.SideSystem, game.LogSystem,
			fmt.Sprintf("End of %s clock", game.PeriodLabel(s.g.Period))))
		s.notify(ctx, "clock")
		s.clock = nil
		return false
	}
	if !s.g.Running {
		s.clock = nil
		return false
	}
	return true
}

// stopRunnerLocked cancels the ticker goroutine. Caller holds s.mu.
func (s *Session) stopRunnerLocked() {
	if s.clock == nil {
		return
	}
	s.clock.cancel()
	s.clock = nil
}

// stopClockLocked pauses a running clock and persists the discrete
// value. A no-op when already paused. Caller holds s.mu.
func (s *Session) stopClockLocked(ctx context.Context) {
	if !s.g.Running {
		return
	}
	s.g.Running = false
	s.stopRunnerLocked()
	if err := s.st.SetFields(ctx, s.g.ID, store.Fields{
		store.FieldClock:   s.g.Clock,
		store.FieldRunning: false,
	}); err != nil {
		s.logger.Warn("persist clock pause failed", "error", err)
	}
}

// ToggleResult reports a clock toggle.
type ToggleResult struct {
	Running  bool        `json:"running"`
	Clock    int         `json:"clockTenths"`
	WentLive bool        `json:"wentLive"`
	Status   game.Status `json:"status"`
}

// ToggleClock starts or pauses the countdown. The first start of a
// scheduled game transitions it to live.
func (s *Session) ToggleClock(ctx context.Context) (ToggleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.g.Status == game.StatusFinished {
		return ToggleResult{}, game.ErrAlreadyFinished
	}
	// Starting at 0:00 would arm a runner with nothing to count down;
	// the operator adjusts the clock or advances the period instead.
	if !s.g.Running && s.g.Clock == 0 {
		return ToggleResult{}, game.ErrClockExpired
	}

	started, wentLive := s.g.ToggleClock()

	fields := store.Fields{
		store.FieldClock:   s.g.Clock,
		store.FieldRunning: s.g.Running,
	}
	if wentLive {
		fields[store.FieldStatus] = game.StatusLive
	}
	if err := s.st.SetFields(ctx, s.g.ID, fields); err != nil {
		// Roll back the local flip so a retry starts clean.
		s.g.Running = !s.g.Running
		if wentLive {
			s.g.Status = game.StatusScheduled
		}
		return ToggleResult{}, fmt.Errorf("persist clock toggle: %w", err)
	}

	if started {
		s.startRunnerLocked()
	} else {
		s.stopRunnerLocked()
	}
	if wentLive {
		s.appendLog(ctx, s.g.NewLogEntry(game.SideSystem, game.LogSystem, "Game is live"))
	}
	s.notify(ctx, "clock")

	return ToggleResult{
		Running:  s.g.Running,
		Clock:    s.g.Clock,
		WentLive: wentLive,
		Status:   s.g.Status,
	}, nil
}

// AdjustClock shifts the clock by whole minutes or seconds to match
// the venue clock. Allowed while paused or running.
func (s *Session) AdjustClock(ctx context.Context, unit game.ClockUnit, delta int) (int, error) {
	if unit.Tenths() == 0 {
		return 0, fmt.Errorf("engine: unknown clock unit %q", unit)
	}
	if delta != 1 && delta != -1 {
		return 0, fmt.Errorf("engine: clock delta must be +1 or -1, got %d", delta)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.g.Clock
	s.g.AdjustClock(unit, delta)
	if err := s.st.SetFields(ctx, s.g.ID, store.Fields{store.FieldClock: s.g.Clock}); err != nil {
		s.g.Clock = prev
		return 0, fmt.Errorf("persist clock adjust: %w", err)
	}
	// Adjusting down to 0:00 stops play; a running clock never idles
	// at zero.
	if s.g.Clock == 0 {
		s.stopClockLocked(ctx)
	}
	s.notify(ctx, "clock")
	return s.g.Clock, nil
}

// AdvancePeriod moves to the next period: fresh clock, team fouls
// cleared, timeout budgets rebalanced at the scheduled boundaries.
func (s *Session) AdvancePeriod(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.g.Status == game.StatusFinished {
		return 0, game.ErrAlreadyFinished
	}

	next := *s.g
	next.AdvancePeriod(s.rules)

	if err := s.st.SetFields(ctx, s.g.ID, store.Fields{
		store.FieldPeriod:           next.Period,
		store.FieldClock:            next.Clock,
		store.FieldRunning:          false,
		store.FieldLocalFouls:       0,
		store.FieldVisitingFouls:    0,
		store.FieldLocalTimeouts:    next.Local.Timeouts,
		store.FieldVisitingTimeouts: next.Visiting.Timeouts,
	}); err != nil {
		return 0, fmt.Errorf("persist period advance: %w", err)
	}

	s.stopRunnerLocked()
	*s.g = next
	s.appendLog(ctx, s.g.NewLogEntry(game.SideSystem, game.LogPeriod,
		fmt.Sprintf("Start of %s", game.PeriodLabel(s.g.Period))))
	s.notify(ctx, "period")
	return s.g.Period, nil
}
