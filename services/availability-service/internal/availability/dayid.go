package availability

import (
	"fmt"
	"time"

	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/timezone"
)

// CivilDate is a calendar date without a zone.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDayIdentifier parses a YYYYMMDD identifier into a calendar date.
func ParseDayIdentifier(id string) (CivilDate, error) {
	if len(id) != 8 {
		return CivilDate{}, fmt.Errorf("%w: %q must be 8 digits (YYYYMMDD)", ErrInvalidDateIdentifier, id)
	}
	year, ok1 := digits(id[0:4])
	month, ok2 := digits(id[4:6])
	day, ok3 := digits(id[6:8])
	if !ok1 || !ok2 || !ok3 {
		return CivilDate{}, fmt.Errorf("%w: %q is not numeric", ErrInvalidDateIdentifier, id)
	}

	d := CivilDate{Year: year, Month: time.Month(month), Day: day}
	// Reject dates that time.Date would normalize, such as 20230230.
	if y, m, dd := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Date(); y != d.Year || m != d.Month || dd != d.Day {
		return CivilDate{}, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDateIdentifier, id)
	}
	return d, nil
}

func digits(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// AddDays moves the date by n calendar days.
func (d CivilDate) AddDays(n int) CivilDate {
	y, m, dd := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC).Date()
	return CivilDate{Year: y, Month: m, Day: dd}
}

// Instant is local midnight of d in loc, as UTC.
func (d CivilDate) Instant(loc *time.Location) time.Time {
	return timezone.CivilDateToInstant(d.Year, d.Month, d.Day, loc)
}

func (d CivilDate) String() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}
