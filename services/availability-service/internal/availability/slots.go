package availability

// GenerateSlots enumerates fixed-length candidates inside [start, end]: a slot starts
// every interval seconds from start and is kept while it ends no later than end.
func GenerateSlots(start, end, duration, interval int64) []TimeInterval {
	if duration <= 0 || interval <= 0 {
		return nil
	}
	if end-start < duration {
		return []TimeInterval{}
	}

	slots := make([]TimeInterval, 0, (end-start-duration)/interval+1)
	for t := start; t+duration <= end; t += interval {
		slots = append(slots, TimeInterval{BeginAt: t, EndAt: t + duration})
	}
	return slots
}

// FilterConflicts keeps the candidates that overlap none of the events.
// With no events the candidates are returned as is.
func FilterConflicts(candidates, events []TimeInterval) []TimeInterval {
	if len(events) == 0 {
		return candidates
	}
	free := make([]TimeInterval, 0, len(candidates))
	for _, c := range candidates {
		if !overlapsAny(c, events) {
			free = append(free, c)
		}
	}
	return free
}

// Overlaps reports whether two half-open intervals intersect. Touching ends do not overlap.
func Overlaps(a, b TimeInterval) bool {
	return a.BeginAt < b.EndAt && b.BeginAt < a.EndAt
}

func overlapsAny(slot TimeInterval, events []TimeInterval) bool {
	for _, e := range events {
		if Overlaps(slot, e) {
			return true
		}
	}
	return false
}
