// Package timezone converts between civil dates in IANA zones and absolute instants.
package timezone

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrInvalidTimezone is returned for empty or unresolvable zone identifiers.
var ErrInvalidTimezone = errors.New("invalid timezone")

// Load resolves an IANA identifier. Unlike time.LoadLocation it rejects the empty
// string and "Local", which would silently map to UTC or the host zone.
func Load(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimezone, name, err)
	}
	return loc, nil
}

// CivilDateToInstant returns the instant of local midnight of year-month-day in loc.
// Out-of-range days normalize the way time.Date does (Oct 32 is Nov 1).
func CivilDateToInstant(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, loc).UTC()
}

// CivilDateToUTC is CivilDateToInstant for a zone given by name.
func CivilDateToUTC(year int, month time.Month, day int, name string) (time.Time, error) {
	loc, err := Load(name)
	if err != nil {
		return time.Time{}, err
	}
	return CivilDateToInstant(year, month, day, loc), nil
}

// ToZoned returns instant expressed in the named zone, for weekday extraction and display.
func ToZoned(instant time.Time, name string) (time.Time, error) {
	loc, err := Load(name)
	if err != nil {
		return time.Time{}, err
	}
	return instant.In(loc), nil
}

// LocalMidnight returns the start of the civil day containing instant in loc, as UTC.
func LocalMidnight(instant time.Time, loc *time.Location) time.Time {
	y, m, d := instant.In(loc).Date()
	return CivilDateToInstant(y, m, d, loc)
}

// Formatter renders instants for humans. Failures never propagate: the instant is
// rendered as RFC 3339 UTC instead and the failure is logged.
type Formatter struct {
	logger *slog.Logger
}

func NewFormatter(logger *slog.Logger) *Formatter {
	return &Formatter{logger: logger}
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

func (f *Formatter) FormatDate(instant time.Time, name string) string {
	return f.format(instant, name, DateLayout)
}

func (f *Formatter) FormatTime(instant time.Time, name string) string {
	return f.format(instant, name, TimeLayout)
}

func (f *Formatter) format(instant time.Time, name, layout string) string {
	zoned, err := ToZoned(instant, name)
	if err != nil {
		if f != nil && f.logger != nil {
			f.logger.Warn("timezone formatting failed; using UTC", "timezone", name, "err", err)
		}
		return instant.UTC().Format(time.RFC3339)
	}
	return zoned.Format(layout)
}
