package game

import "encoding/json"

// Lineup is a team's match submission ("forma 5"). Two historical wire
// shapes exist: the legacy flat player array, and the current object
// with an explicit starter set and optional captain. UnmarshalJSON
// accepts both so the shape never leaks past this type.
type Lineup struct {
	Players    []Player `json:"players"`
	StarterIDs []string `json:"starterIds,omitempty"`
	CaptainID  string   `json:"captainId,omitempty"`
}

// lineupObject mirrors the current submission shape for decoding.
type lineupObject struct {
	Players    []Player `json:"players"`
	StarterIDs []string `json:"starterIds"`
	CaptainID  string   `json:"captainId"`
}

// UnmarshalJSON decodes either submission shape. A legacy flat array
// becomes a Lineup with no starter set, which Resolve turns into a
// first-five partition.
func (l *Lineup) UnmarshalJSON(data []byte) error {
	var flat []Player
	if err := json.Unmarshal(data, &flat); err == nil {
		*l = Lineup{Players: flat}
		return nil
	}

	var obj lineupObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*l = Lineup{Players: obj.Players, StarterIDs: obj.StarterIDs, CaptainID: obj.CaptainID}
	return nil
}

// Empty reports whether the submission carries no players.
func (l Lineup) Empty() bool {
	return len(l.Players) == 0
}

// Equal reports whether two submissions are the same, players in the
// same order. A session only re-derives its partitions when the stored
// submission actually changed.
func (l Lineup) Equal(o Lineup) bool {
	if len(l.Players) != len(o.Players) || len(l.StarterIDs) != len(o.StarterIDs) || l.CaptainID != o.CaptainID {
		return false
	}
	for i := range l.Players {
		if l.Players[i] != o.Players[i] {
			return false
		}
	}
	for i := range l.StarterIDs {
		if l.StarterIDs[i] != o.StarterIDs[i] {
			return false
		}
	}
	return true
}

// Roster is the derived on-court/bench partition of a lineup. It is
// rebuilt from the stored submission on every session load and never
// persisted on its own.
type Roster struct {
	OnCourt   []Player `json:"onCourt"`
	Bench     []Player `json:"bench"`
	CaptainID string   `json:"captainId,omitempty"`
}

// starterSlots is how many players take the court when the submission
// does not name starters.
const starterSlots = 5

// Resolve partitions a lineup into on-court and bench players.
//
// With a non-empty starter set, on-court is exactly the players whose
// id appears in it. Without one — or when the starter set matches no
// submitted player, which happens with malformed historical data — the
// first five players in submission order start and the rest sit. An
// empty submission resolves to an empty roster. Resolve never fails:
// upstream data comes in two historical formats and a best-effort
// partition beats rejecting a lineup at the scorer's table.
func Resolve(l Lineup) Roster {
	if l.Empty() {
		return Roster{}
	}

	r := Roster{CaptainID: l.CaptainID}

	if len(l.StarterIDs) > 0 {
		starters := make(map[string]bool, len(l.StarterIDs))
		for _, id := range l.StarterIDs {
			starters[id] = true
		}
		for _, p := range l.Players {
			if starters[p.ID] {
				r.OnCourt = append(r.OnCourt, p)
			} else {
				r.Bench = append(r.Bench, p)
			}
		}
		if len(r.OnCourt) > 0 {
			return r
		}
		// Starter ids matched nothing; fall through to first-five.
		r.Bench = nil
	}

	n := starterSlots
	if n > len(l.Players) {
		n = len(l.Players)
	}
	r.OnCourt = append([]Player(nil), l.Players[:n]...)
	r.Bench = append([]Player(nil), l.Players[n:]...)
	return r
}

// Find returns the player with the given id from either partition.
func (r Roster) Find(id string) (Player, bool) {
	for _, p := range r.OnCourt {
		if p.ID == id {
			return p, true
		}
	}
	for _, p := range r.Bench {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// OnCourtIndex returns the on-court slot of the given player, or -1.
func (r Roster) OnCourtIndex(id string) int {
	for i, p := range r.OnCourt {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// BenchIndex returns the bench slot of the given player, or -1.
func (r Roster) BenchIndex(id string) int {
	for i, p := range r.Bench {
		if p.ID == id {
			return i
		}
	}
	return -1
}
