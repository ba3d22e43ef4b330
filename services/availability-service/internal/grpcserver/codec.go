package grpcserver

import (
	"fmt"
	"math"

	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/availability"
	"google.golang.org/protobuf/types/known/structpb"
)

// RequestFromStruct reads the request fields, applying the same defaults as HTTP.
func RequestFromStruct(in *structpb.Struct) (availability.Request, error) {
	req := availability.Request{
		Days:             availability.DefaultDays,
		TimeslotInterval: availability.DefaultTimeslotInterval,
	}
	fields := in.GetFields()

	var err error
	if req.TimezoneIdentifier, err = stringField(fields, "timezone_identifier", true); err != nil {
		return req, err
	}
	if req.StartDayIdentifier, err = stringField(fields, "start_day_identifier", true); err != nil {
		return req, err
	}
	if req.ServiceDuration, err = intField(fields, "service_duration", 0, true); err != nil {
		return req, err
	}
	days, err := intField(fields, "days", availability.DefaultDays, false)
	if err != nil {
		return req, err
	}
	req.Days = int(days)
	if req.TimeslotInterval, err = intField(fields, "timeslot_interval", availability.DefaultTimeslotInterval, false); err != nil {
		return req, err
	}
	if req.IgnoreSchedule, err = boolField(fields, "is_ignore_schedule"); err != nil {
		return req, err
	}
	if req.IgnoreWorkhour, err = boolField(fields, "is_ignore_workhour"); err != nil {
		return req, err
	}
	return req, nil
}

// RequestToStruct is the client side of RequestFromStruct.
func RequestToStruct(req availability.Request) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"timezone_identifier":  req.TimezoneIdentifier,
		"start_day_identifier": req.StartDayIdentifier,
		"service_duration":     req.ServiceDuration,
		"days":                 req.Days,
		"timeslot_interval":    req.TimeslotInterval,
		"is_ignore_schedule":   req.IgnoreSchedule,
		"is_ignore_workhour":   req.IgnoreWorkhour,
	})
}

// TimetablesToStruct wraps the days under "timetables"; a Struct cannot be a list.
func TimetablesToStruct(days []availability.DayTimetable) (*structpb.Struct, error) {
	list := make([]any, 0, len(days))
	for _, d := range days {
		slots := make([]any, 0, len(d.Timeslots))
		for _, s := range d.Timeslots {
			slots = append(slots, map[string]any{"begin_at": s.BeginAt, "end_at": s.EndAt})
		}
		list = append(list, map[string]any{
			"start_of_day": d.StartOfDay,
			"day_modifier": d.DayModifier,
			"is_day_off":   d.IsDayOff,
			"timeslots":    slots,
		})
	}
	return structpb.NewStruct(map[string]any{"timetables": list})
}

func TimetablesFromStruct(out *structpb.Struct) ([]availability.DayTimetable, error) {
	raw := out.GetFields()["timetables"].GetListValue().GetValues()
	days := make([]availability.DayTimetable, 0, len(raw))
	for i, v := range raw {
		f := v.GetStructValue().GetFields()
		if f == nil {
			return nil, fmt.Errorf("timetables[%d] is not an object", i)
		}
		d := availability.DayTimetable{
			StartOfDay:  int64(f["start_of_day"].GetNumberValue()),
			DayModifier: int(f["day_modifier"].GetNumberValue()),
			IsDayOff:    f["is_day_off"].GetBoolValue(),
			Timeslots:   []availability.TimeInterval{},
		}
		for _, s := range f["timeslots"].GetListValue().GetValues() {
			sf := s.GetStructValue().GetFields()
			d.Timeslots = append(d.Timeslots, availability.TimeInterval{
				BeginAt: int64(sf["begin_at"].GetNumberValue()),
				EndAt:   int64(sf["end_at"].GetNumberValue()),
			})
		}
		days = append(days, d)
	}
	return days, nil
}

func stringField(fields map[string]*structpb.Value, name string, required bool) (string, error) {
	v, ok := fields[name]
	if !ok {
		if required {
			return "", fmt.Errorf("%s is required", name)
		}
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	return s.StringValue, nil
}

func intField(fields map[string]*structpb.Value, name string, fallback int64, required bool) (int64, error) {
	v, ok := fields[name]
	if !ok {
		if required {
			return 0, fmt.Errorf("%s is required", name)
		}
		return fallback, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > 1<<53 {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return int64(n.NumberValue), nil
}

func boolField(fields map[string]*structpb.Value, name string) (bool, error) {
	v, ok := fields[name]
	if !ok {
		return false, nil
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean", name)
	}
	return b.BoolValue, nil
}
