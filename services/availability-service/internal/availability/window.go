package availability

import "time"

const secondsPerDay = 86400

// Window is the UTC span during which slots may be offered on one day.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) StartSeconds() int64 { return w.Start.Unix() }
func (w Window) EndSeconds() int64   { return w.End.Unix() }

// ResolveWorkWindow computes the work window of the civil day starting at startOfDay.
//
// Without a rule (or when work hours are ignored) the window is the whole civil day,
// ending on its last second. Otherwise the rule's offsets are applied to local
// midnight as wall-clock seconds in loc and converted back to UTC. Days off yield an
// empty window; callers are expected to have short-circuited before that.
func ResolveWorkWindow(startOfDay time.Time, rule *WorkhourRule, ignoreWorkhour bool, loc *time.Location) Window {
	if ignoreWorkhour || rule == nil {
		return Window{
			Start: startOfDay.UTC(),
			End:   startOfDay.UTC().Add((secondsPerDay - 1) * time.Second),
		}
	}
	if rule.IsDayOff {
		return Window{Start: startOfDay.UTC(), End: startOfDay.UTC()}
	}

	y, m, d := startOfDay.In(loc).Date()
	open := time.Date(y, m, d, 0, 0, int(rule.OpenInterval), 0, loc)
	closing := time.Date(y, m, d, 0, 0, int(rule.CloseInterval), 0, loc)
	return Window{Start: open.UTC(), End: closing.UTC()}
}
