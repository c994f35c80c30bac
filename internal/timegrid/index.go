package timegrid

import (
	"time"

	"bookable/pkg/model"
)

// DayIndex maps each slot of one local calendar day to the reservation
// occupying it. It is a pure function of its inputs, rebuilt on every day
// change, week change, or data refresh; nothing in it mutates after Build.
type DayIndex struct {
	day       time.Time
	loc       *time.Location
	occupants [SlotsPerDay]string
}

// BuildDayIndex projects the given reservations onto the slots of the local
// day containing `day` in loc. Cancelled reservations and intervals outside
// the day contribute nothing.
func BuildDayIndex(day time.Time, loc *time.Location, reservations []*model.Reservation) *DayIndex {
	idx := &DayIndex{
		day: time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc),
		loc: loc,
	}

	for _, r := range reservations {
		if r.IsCancelled() {
			continue
		}
		for i := 0; i < SlotsPerDay; i++ {
			slotStart := At(i).On(idx.day, loc)
			slotEnd := slotStart.Add(SlotDuration)
			if slotStart.Before(r.EndsAt) && slotEnd.After(r.StartsAt) {
				idx.occupants[i] = r.ID
			}
		}
	}

	return idx
}

// Day returns local midnight of the indexed day.
func (d *DayIndex) Day() time.Time {
	return d.day
}

func (d *DayIndex) Location() *time.Location {
	return d.loc
}

// Occupant returns the reservation ID holding the slot, if any.
func (d *DayIndex) Occupant(s Slot) (string, bool) {
	id := d.occupants[s.Index()]
	return id, id != ""
}

func (d *DayIndex) Free(s Slot) bool {
	return d.occupants[s.Index()] == ""
}

// Run is a maximal display group of consecutive slots: either the slots of
// one reservation, or free slots paired within a clock hour.
type Run struct {
	StartIndex    int    `json:"start_index"`
	Length        int    `json:"length"`
	ReservationID string `json:"reservation_id,omitempty"`
}

func (r Run) Free() bool {
	return r.ReservationID == ""
}

// Runs partitions the 48 slots into display runs. Occupied slots group by
// reservation ID equality, never by booker, so two adjacent reservations
// stay visually distinct. Free slots pair up only when both halves of the
// same clock hour are free; a lone free half-hour stands alone. This is a
// derived rendering view; occupancy truth stays in Occupant.
func (d *DayIndex) Runs() []Run {
	var runs []Run

	for i := 0; i < SlotsPerDay; {
		id := d.occupants[i]

		if id != "" {
			length := 1
			for i+length < SlotsPerDay && d.occupants[i+length] == id {
				length++
			}
			runs = append(runs, Run{StartIndex: i, Length: length, ReservationID: id})
			i += length
			continue
		}

		// Free slot: pair with the other half of the hour when it is the
		// top of the hour and the next half is also free.
		if i%2 == 0 && i+1 < SlotsPerDay && d.occupants[i+1] == "" {
			runs = append(runs, Run{StartIndex: i, Length: 2})
			i += 2
			continue
		}

		runs = append(runs, Run{StartIndex: i, Length: 1})
		i++
	}

	return runs
}
