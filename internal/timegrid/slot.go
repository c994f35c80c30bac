package timegrid

import (
	"fmt"
	"time"
)

// SlotsPerDay is the number of half-hour ticks in a calendar day.
const SlotsPerDay = 48

// SlotDuration is the fixed width of one slot.
const SlotDuration = 30 * time.Minute

// Slot is one half-hour tick of a resource's local day, identified by its
// wall-clock start. Minute is always 0 or 30. Slots are derived, never
// stored; an invalid slot is a programming error and panics.
type Slot struct {
	Hour   int
	Minute int
}

// At returns the slot at the given ordinal position in the day.
func At(index int) Slot {
	if index < 0 || index >= SlotsPerDay {
		panic(fmt.Sprintf("timegrid: slot index %d out of range", index))
	}
	return Slot{Hour: index / 2, Minute: (index % 2) * 30}
}

// Index maps the slot to its ordinal position, a total injective mapping
// over the 48 canonical slots.
func (s Slot) Index() int {
	s.mustBeValid()
	return s.Hour*2 + s.Minute/30
}

func (s Slot) mustBeValid() {
	if s.Hour < 0 || s.Hour > 23 || (s.Minute != 0 && s.Minute != 30) {
		panic(fmt.Sprintf("timegrid: invalid slot %02d:%02d", s.Hour, s.Minute))
	}
}

// Label renders the slot in 12-hour clock form with no leading zero and a
// ":30" suffix only on half-hour slots: "12am", "9:30am", "12pm", "5:30pm".
func (s Slot) Label() string {
	s.mustBeValid()

	hour12 := s.Hour % 12
	if hour12 == 0 {
		hour12 = 12
	}

	suffix := "am"
	if s.Hour >= 12 {
		suffix = "pm"
	}

	if s.Minute == 30 {
		return fmt.Sprintf("%d:30%s", hour12, suffix)
	}
	return fmt.Sprintf("%d%s", hour12, suffix)
}

// Next returns the slot one tick later. Calling it on the last slot of the
// day panics.
func (s Slot) Next() Slot {
	return At(s.Index() + 1)
}

// Between returns the inclusive run from a to b in day order. The arguments
// may come in either order; callers must not assume a precedes b.
func Between(a, b Slot) []Slot {
	lo, hi := a.Index(), b.Index()
	if lo > hi {
		lo, hi = hi, lo
	}

	run := make([]Slot, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		run = append(run, At(i))
	}
	return run
}

// FromTime returns the slot containing the instant when projected into loc.
// Instants inside a slot floor to its start.
func FromTime(t time.Time, loc *time.Location) Slot {
	local := t.In(loc)
	minute := 0
	if local.Minute() >= 30 {
		minute = 30
	}
	return Slot{Hour: local.Hour(), Minute: minute}
}

// On resolves the slot to an absolute instant on the given local calendar
// day. day carries the date; its own clock time is ignored.
func (s Slot) On(day time.Time, loc *time.Location) time.Time {
	s.mustBeValid()
	return time.Date(day.Year(), day.Month(), day.Day(), s.Hour, s.Minute, 0, 0, loc)
}

// Ticks returns the half-hour boundary instants covering [starts, ends),
// floored to the slot grid of loc. These are the claim keys for the
// storage-level exclusion constraint: any two overlapping intervals on the
// same thing share at least one tick, and exactly back-to-back intervals
// share none. The grid must be the thing's local one; zones at a :15 or :45
// UTC offset put slot boundaries off the UTC half-hour grid, and flooring
// against UTC there would spill a claim into the neighboring slot. Ticks are
// returned in UTC so the keys are zone-stable.
func Ticks(starts, ends time.Time, loc *time.Location) []time.Time {
	local := starts.In(loc)
	t := FromTime(starts, loc).On(local, loc)

	var ticks []time.Time
	for ; t.Before(ends); t = t.Add(SlotDuration) {
		ticks = append(ticks, t.UTC())
	}
	return ticks
}

// ParseClock parses an "HH:MM" time-of-day string into minutes past
// midnight.
func ParseClock(s string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid time-of-day %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time-of-day %q", s)
	}
	return hour*60 + minute, nil
}

// MinuteOfDay projects an instant into loc and returns its wall-clock
// minutes past midnight. Midnight maps to 1440 when endExclusive is set, so
// an interval ending exactly at the next midnight still compares against an
// end-of-day window.
func MinuteOfDay(t time.Time, loc *time.Location, endExclusive bool) int {
	local := t.In(loc)
	minutes := local.Hour()*60 + local.Minute()
	if endExclusive && minutes == 0 {
		return 24 * 60
	}
	return minutes
}
