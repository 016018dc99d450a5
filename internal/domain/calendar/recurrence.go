package calendar

import "time"

// DefaultOccurrenceCap bounds expansion for rules that carry no explicit
// occurrence count. Callers needing a longer horizon set Occurrences on the
// rule instead.
const DefaultOccurrenceCap = 10

// MaxOccurrences is the hard upper bound on a rule's occurrence count.
// Expansion is eager and the sequence is allocated up front, so the cap also
// bounds memory per request. A year of daily posts fits; anything past that
// is rejected as a validation error.
const MaxOccurrences = 365

// ExpandRecurrence expands a recurrence rule into the ordered occurrence
// dates, starting with start itself as element 0. The sequence is computed
// eagerly and is fully deterministic: no wall-clock reads, so two calls with
// identical inputs return identical sequences.
//
// Expansion stops once the sequence holds Occurrences elements (default
// DefaultOccurrenceCap), or when the next computed candidate falls past the
// rule's end date. The end-date bound is checked only after a candidate is
// computed; a candidate exactly equal to the end date is kept.
func ExpandRecurrence(start time.Time, rule *RecurrenceRule) ([]time.Time, error) {
	if rule == nil {
		return nil, NewValidationError("recurrence rule is required")
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	limit := DefaultOccurrenceCap
	if rule.Occurrences != nil {
		limit = *rule.Occurrences
	}

	dates := make([]time.Time, 0, limit)
	dates = append(dates, start)

	current := start
	for len(dates) < limit {
		next := nextOccurrence(current, rule)
		if rule.EndDate != nil && next.After(*rule.EndDate) {
			break
		}
		dates = append(dates, next)
		current = next
	}
	return dates, nil
}

func nextOccurrence(current time.Time, rule *RecurrenceRule) time.Time {
	switch rule.Frequency {
	case FrequencyDaily:
		return current.AddDate(0, 0, rule.Interval)
	case FrequencyWeekly:
		// DaysOfWeek is deliberately not consulted here; see RecurrenceRule.
		return current.AddDate(0, 0, rule.Interval*7)
	case FrequencyMonthly:
		return addMonthsClamped(current, rule.Interval)
	case FrequencyYearly:
		return addMonthsClamped(current, rule.Interval*12)
	}
	// Unreachable for validated rules.
	return current
}

// addMonthsClamped adds whole calendar months, keeping the day-of-month and
// clamping to the last valid day when the target month is shorter. Plain
// AddDate would normalize Jan 31 + 1 month into March.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	total := int(month) - 1 + months
	year += total / 12
	month = time.Month(total%12 + 1)

	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
