package game

import "fmt"

// Rules carries the tunable game parameters. The foul-out thresholds
// are fixed basketball rules and live in rules.go; everything here is
// league policy and comes from configuration.
type Rules struct {
	// PeriodLength is the clock value a fresh period starts from, in
	// tenths of a second.
	PeriodLength int

	// CrunchPeriod and CrunchThreshold define the late-game safety
	// stop: a made basket pauses the clock automatically when
	// period >= CrunchPeriod and remaining time <= CrunchThreshold.
	CrunchPeriod    int
	CrunchThreshold int

	// Timeout budgets: at schedule time, entering period 3, and
	// entering any overtime period.
	TimeoutsInitial  int
	TimeoutsPeriod3  int
	TimeoutsOvertime int

	// LogCap bounds the play-by-play length.
	LogCap int
}

// DefaultRules returns the league defaults: 10-minute periods, a
// 12-second crunch window from the fourth period on, 2/3/1 timeouts,
// 50 log entries.
func DefaultRules() Rules {
	return Rules{
		PeriodLength:     6000,
		CrunchPeriod:     4,
		CrunchThreshold:  120,
		TimeoutsInitial:  2,
		TimeoutsPeriod3:  3,
		TimeoutsOvertime: 1,
		LogCap:           50,
	}
}

// ClockUnit selects the granularity of a manual clock adjustment.
type ClockUnit string

const (
	UnitMinute ClockUnit = "minute"
	UnitSecond ClockUnit = "second"
)

// Tenths returns the adjustment step for the unit, or 0 for an
// unknown unit.
func (u ClockUnit) Tenths() int {
	switch u {
	case UnitMinute:
		return 600
	case UnitSecond:
		return 10
	}
	return 0
}

// Tick advances the countdown by one tenth of a second. It reports
// whether the clock just expired: reaching zero stops the clock and
// the caller persists the stop. A no-op when the clock is not running.
func (g *Game) Tick() (expired bool) {
	if !g.Running || g.Clock <= 0 {
		return false
	}
	g.Clock--
	if g.Clock == 0 {
		g.Running = false
		return true
	}
	return false
}

// ToggleClock flips the running flag. The first start of the game
// moves the status from scheduled to live; the returned flag tells the
// caller a status transition happened.
func (g *Game) ToggleClock() (started, wentLive bool) {
	g.Running = !g.Running
	if g.Running && g.Status == StatusScheduled {
		g.Status = StatusLive
		return true, true
	}
	return g.Running, false
}

// AdjustClock shifts the remaining time by delta units, clamped at
// zero. No upper clamp: the table sometimes pushes the clock past the
// nominal period length to match the venue clock.
func (g *Game) AdjustClock(unit ClockUnit, delta int) {
	g.Clock += unit.Tenths() * delta
	if g.Clock < 0 {
		g.Clock = 0
	}
}

// AdvancePeriod moves to the next period: clock back to full, both
// team-foul counters to zero, and the timeout budgets rebalanced when
// entering period 3 (regulation allotment) or overtime (one each).
// Other period boundaries leave the budgets untouched.
func (g *Game) AdvancePeriod(rules Rules) {
	g.Period++
	g.Clock = rules.PeriodLength
	g.Running = false
	g.Local.Fouls = 0
	g.Visiting.Fouls = 0

	switch {
	case g.Period == 3:
		g.Local.Timeouts = rules.TimeoutsPeriod3
		g.Visiting.Timeouts = rules.TimeoutsPeriod3
	case g.Period > 4:
		g.Local.Timeouts = rules.TimeoutsOvertime
		g.Visiting.Timeouts = rules.TimeoutsOvertime
	}
}

// InCrunchTime reports whether a made basket should auto-pause the
// clock: late in regulation or overtime, inside the configured window.
func (g *Game) InCrunchTime(rules Rules) bool {
	return g.Period >= rules.CrunchPeriod && g.Clock <= rules.CrunchThreshold
}

// PeriodLabel renders the period for logs: Q1..Q4, then OT, OT2, ...
func PeriodLabel(period int) string {
	switch {
	case period <= 4:
		return fmt.Sprintf("Q%d", period)
	case period == 5:
		return "OT"
	default:
		return fmt.Sprintf("OT%d", period-4)
	}
}
