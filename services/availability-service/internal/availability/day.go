package availability

import "time"

// dayPlan holds everything that stays constant across the days of one request.
type dayPlan struct {
	loc            *time.Location
	rules          Workhours
	events         []TimeInterval
	duration       int64
	interval       int64
	ignoreWorkhour bool
}

// build produces the timetable of the civil day starting at startOfDay.
func (p dayPlan) build(startOfDay time.Time, dayModifier int) DayTimetable {
	day := DayTimetable{
		StartOfDay:  startOfDay.Unix(),
		DayModifier: dayModifier,
		Timeslots:   []TimeInterval{},
	}

	var rule *WorkhourRule
	if !p.ignoreWorkhour {
		rule = p.rules.ForWeekday(WeekdayNumber(startOfDay.In(p.loc).Weekday()))
		if rule != nil && rule.IsDayOff {
			day.IsDayOff = true
			return day
		}
	}

	window := ResolveWorkWindow(startOfDay, rule, p.ignoreWorkhour, p.loc)
	candidates := GenerateSlots(window.StartSeconds(), window.EndSeconds(), p.duration, p.interval)
	if free := FilterConflicts(candidates, eventsWithin(p.events, window)); len(free) > 0 {
		day.Timeslots = free
	}
	return day
}

// eventsWithin narrows events to those that can touch the window.
func eventsWithin(events []TimeInterval, w Window) []TimeInterval {
	if len(events) == 0 {
		return nil
	}
	bounds := TimeInterval{BeginAt: w.StartSeconds(), EndAt: w.EndSeconds()}
	var out []TimeInterval
	for _, e := range events {
		if Overlaps(e, bounds) {
			out = append(out, e)
		}
	}
	return out
}
