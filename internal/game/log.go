package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LogCategory tags a play-by-play entry by the action that produced it.
type LogCategory string

const (
	LogScore        LogCategory = "score"
	LogStat         LogCategory = "stat"
	LogFoul         LogCategory = "foul"
	LogSubstitution LogCategory = "substitution"
	LogPeriod       LogCategory = "period"
	LogTimeout      LogCategory = "timeout"
	LogSystem       LogCategory = "system"
)

// LogEntry is one immutable play-by-play line. Clock is the mm:ss
// stamp the entry was recorded at, taken from the game clock rather
// than wall time.
type LogEntry struct {
	ID       string      `json:"id"`
	Text     string      `json:"text"`
	Clock    string      `json:"clock"`
	Team     Side        `json:"team"`
	Category LogCategory `json:"category"`
	At       time.Time   `json:"at"`
}

// ClockStamp renders a tenths-of-a-second clock value as mm:ss.
func ClockStamp(tenths int) string {
	if tenths < 0 {
		tenths = 0
	}
	secs := tenths / 10
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// NewLogEntry builds an entry stamped with the game's current clock.
func (g *Game) NewLogEntry(team Side, category LogCategory, text string) LogEntry {
	return LogEntry{
		ID:       uuid.NewString(),
		Text:     text,
		Clock:    ClockStamp(g.Clock),
		Team:     team,
		Category: category,
		At:       time.Now().UTC(),
	}
}

// PrependLog inserts an entry at the head of the log and truncates to
// cap entries, newest first. The returned slice is the new log; the
// caller persists it as a whole-field overwrite — this read-prepend-
// write shape is the one documented lost-update race in the system
// (two stations logging at the same instant can drop one line; the
// counters the lines annotate stay correct either way).
func PrependLog(log []LogEntry, entry LogEntry, limit int) []LogEntry {
	out := make([]LogEntry, 0, len(log)+1)
	out = append(out, entry)
	out = append(out, log...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
