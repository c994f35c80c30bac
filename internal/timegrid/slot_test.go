package timegrid

import (
	"testing"
	"time"
)

func TestSlotIndexRoundTrip(t *testing.T) {
	for i := 0; i < SlotsPerDay; i++ {
		if got := At(i).Index(); got != i {
			t.Errorf("At(%d).Index() = %d", i, got)
		}
	}
}

func TestAtPanicsOutOfRange(t *testing.T) {
	for _, index := range []int{-1, SlotsPerDay} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("At(%d) did not panic", index)
				}
			}()
			At(index)
		}()
	}
}

func TestSlotLabel(t *testing.T) {
	tests := []struct {
		slot Slot
		want string
	}{
		{Slot{Hour: 0, Minute: 0}, "12am"},
		{Slot{Hour: 0, Minute: 30}, "12:30am"},
		{Slot{Hour: 9, Minute: 30}, "9:30am"},
		{Slot{Hour: 11, Minute: 30}, "11:30am"},
		{Slot{Hour: 12, Minute: 0}, "12pm"},
		{Slot{Hour: 12, Minute: 30}, "12:30pm"},
		{Slot{Hour: 17, Minute: 30}, "5:30pm"},
		{Slot{Hour: 23, Minute: 30}, "11:30pm"},
	}
	for _, tt := range tests {
		if got := tt.slot.Label(); got != tt.want {
			t.Errorf("Label(%02d:%02d) = %q, want %q", tt.slot.Hour, tt.slot.Minute, got, tt.want)
		}
	}
}

func TestBetweenIsOrderIndependent(t *testing.T) {
	forward := Between(At(10), At(14))
	backward := Between(At(14), At(10))

	if len(forward) != 5 || len(backward) != 5 {
		t.Fatalf("lengths = %d, %d, want 5", len(forward), len(backward))
	}
	for i := range forward {
		if forward[i] != backward[i] {
			t.Errorf("run[%d] = %v vs %v", i, forward[i], backward[i])
		}
	}
	if forward[0] != At(10) || forward[4] != At(14) {
		t.Errorf("run bounds = %v..%v, want %v..%v", forward[0], forward[4], At(10), At(14))
	}
}

func TestBetweenSingleSlot(t *testing.T) {
	run := Between(At(7), At(7))
	if len(run) != 1 || run[0] != At(7) {
		t.Fatalf("Between(same, same) = %v, want one slot", run)
	}
}

func TestFromTimeFloorsWithinSlot(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		clock string
		want  Slot
	}{
		{"09:00", Slot{Hour: 9, Minute: 0}},
		{"09:29", Slot{Hour: 9, Minute: 0}},
		{"09:30", Slot{Hour: 9, Minute: 30}},
		{"09:59", Slot{Hour: 9, Minute: 30}},
	}
	for _, tt := range tests {
		parsed, err := time.Parse("15:04", tt.clock)
		if err != nil {
			t.Fatal(err)
		}
		instant := time.Date(2026, 3, 9, parsed.Hour(), parsed.Minute(), 0, 0, loc)
		if got := FromTime(instant, loc); got != tt.want {
			t.Errorf("FromTime(%s) = %v, want %v", tt.clock, got, tt.want)
		}
	}
}

func TestOnResolvesWithinLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	day := time.Date(2026, 7, 4, 0, 0, 0, 0, loc)

	got := Slot{Hour: 9, Minute: 30}.On(day, loc)

	want := time.Date(2026, 7, 4, 9, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("On() = %v, want %v", got, want)
	}
}

func TestTicksCoverHalfOpenInterval(t *testing.T) {
	starts := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	ends := starts.Add(90 * time.Minute)

	ticks := Ticks(starts, ends, time.UTC)

	if len(ticks) != 3 {
		t.Fatalf("len(ticks) = %d, want 3", len(ticks))
	}
	for i, tick := range ticks {
		want := starts.Add(time.Duration(i) * SlotDuration)
		if !tick.Equal(want) {
			t.Errorf("tick[%d] = %v, want %v", i, tick, want)
		}
	}
}

func TestTicksOfBackToBackIntervalsAreDisjoint(t *testing.T) {
	boundary := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	before := Ticks(boundary.Add(-time.Hour), boundary, time.UTC)
	after := Ticks(boundary, boundary.Add(time.Hour), time.UTC)

	seen := map[time.Time]bool{}
	for _, tick := range before {
		seen[tick] = true
	}
	for _, tick := range after {
		if seen[tick] {
			t.Errorf("shared tick %v between adjacent intervals", tick)
		}
	}
}

func TestTicksOfOverlappingIntervalsShareATick(t *testing.T) {
	base := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	a := Ticks(base, base.Add(time.Hour), time.UTC)
	b := Ticks(base.Add(SlotDuration), base.Add(2*time.Hour), time.UTC)

	seen := map[time.Time]bool{}
	for _, tick := range a {
		seen[tick] = true
	}
	shared := false
	for _, tick := range b {
		if seen[tick] {
			shared = true
		}
	}
	if !shared {
		t.Error("overlapping intervals produced no shared tick")
	}
}

func TestTicksFollowLocalGridInQuarterOffsetZone(t *testing.T) {
	// Kathmandu is UTC+05:45, so local half-hour boundaries sit at :15 and
	// :45 UTC. Each local slot must yield exactly its own tick, not spill
	// into a neighbor via UTC flooring.
	loc, err := time.LoadLocation("Asia/Kathmandu")
	if err != nil {
		t.Fatal(err)
	}
	starts := time.Date(2026, 3, 9, 10, 0, 0, 0, loc)
	ends := time.Date(2026, 3, 9, 10, 30, 0, 0, loc)

	ticks := Ticks(starts, ends, loc)

	if len(ticks) != 1 {
		t.Fatalf("len(ticks) = %d, want 1", len(ticks))
	}
	if !ticks[0].Equal(starts) {
		t.Errorf("tick = %v, want %v", ticks[0], starts.UTC())
	}
}

func TestTicksOfBackToBackSlotsInQuarterOffsetZoneAreDisjoint(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kathmandu")
	if err != nil {
		t.Fatal(err)
	}
	boundary := time.Date(2026, 3, 9, 10, 30, 0, 0, loc)

	before := Ticks(boundary.Add(-30*time.Minute), boundary, loc)
	after := Ticks(boundary, boundary.Add(30*time.Minute), loc)

	seen := map[time.Time]bool{}
	for _, tick := range before {
		seen[tick] = true
	}
	for _, tick := range after {
		if seen[tick] {
			t.Errorf("shared tick %v between adjacent intervals", tick)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"17:30", 1050, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"morning", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMinuteOfDayMidnightEnd(t *testing.T) {
	midnight := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	if got := MinuteOfDay(midnight, time.UTC, false); got != 0 {
		t.Errorf("start-side midnight = %d, want 0", got)
	}
	if got := MinuteOfDay(midnight, time.UTC, true); got != 1440 {
		t.Errorf("end-side midnight = %d, want 1440", got)
	}
}
