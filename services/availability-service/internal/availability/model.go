package availability

import "time"

// TimeInterval is a half-open [BeginAt, EndAt) span in UTC epoch seconds.
type TimeInterval struct {
	BeginAt int64 `json:"begin_at" yaml:"begin_at"`
	EndAt   int64 `json:"end_at" yaml:"end_at"`
}

func (i TimeInterval) Valid() bool {
	return i.BeginAt < i.EndAt
}

// Event is an existing booking. CreatedAt and UpdatedAt are metadata only.
type Event struct {
	BeginAt   int64 `json:"begin_at" yaml:"begin_at"`
	EndAt     int64 `json:"end_at" yaml:"end_at"`
	CreatedAt int64 `json:"created_at" yaml:"created_at"`
	UpdatedAt int64 `json:"updated_at" yaml:"updated_at"`
}

func (e Event) Interval() TimeInterval {
	return TimeInterval{BeginAt: e.BeginAt, EndAt: e.EndAt}
}

// WorkhourRule configures one weekday. Weekday is 1..7 with 1 = Sunday; the
// intervals are seconds from local midnight and are ignored on days off.
type WorkhourRule struct {
	Weekday       int   `json:"weekday" yaml:"weekday"`
	IsDayOff      bool  `json:"is_day_off" yaml:"is_day_off"`
	OpenInterval  int64 `json:"open_interval" yaml:"open_interval"`
	CloseInterval int64 `json:"close_interval" yaml:"close_interval"`
}

// Workhours is the full rule set of a provider.
type Workhours []WorkhourRule

// ForWeekday returns the first rule configured for weekday, or nil.
func (w Workhours) ForWeekday(weekday int) *WorkhourRule {
	for i := range w {
		if w[i].Weekday == weekday {
			return &w[i]
		}
	}
	return nil
}

// WeekdayNumber maps time.Weekday (Sunday = 0) onto the 1..7 rule numbering.
func WeekdayNumber(d time.Weekday) int {
	return int(d) + 1
}

// DayTimetable is the result for one requested day.
type DayTimetable struct {
	StartOfDay  int64          `json:"start_of_day"`
	DayModifier int            `json:"day_modifier"`
	IsDayOff    bool           `json:"is_day_off"`
	Timeslots   []TimeInterval `json:"timeslots"`
}

// Request carries the caller's parameters. Durations are in seconds.
type Request struct {
	StartDayIdentifier string
	TimezoneIdentifier string
	ServiceDuration    int64
	Days               int
	TimeslotInterval   int64
	IgnoreSchedule     bool
	IgnoreWorkhour     bool
}

const (
	DefaultDays             = 1
	DefaultTimeslotInterval = 1800
)
