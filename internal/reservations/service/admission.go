package service

import (
	"time"

	reservationserrors "bookable/internal/reservations/errors"
	"bookable/internal/timegrid"
	apperrors "bookable/pkg/errors"
	"bookable/pkg/model"
)

// admissionEnv is the snapshot of live data the checks run against. It is
// read once before the pipeline so all checks see the same world.
type admissionEnv struct {
	now time.Time

	// Non-cancelled reservations on the thing near the candidate, wide
	// enough to include any buffer violation.
	neighbors []*model.Reservation

	// The booker's non-cancelled, future-starting reservations on the
	// thing, counted by normalized email.
	activeCount int
}

// admissionCheck returns nil to pass the candidate down the pipeline. Checks
// run in a fixed order and the first rejection wins.
type admissionCheck func(thing *model.Thing, candidate *model.Reservation, env *admissionEnv) *apperrors.AppError

var admissionChecks = []admissionCheck{
	checkLength,
	checkLeadTime,
	checkWindow,
	checkConcurrency,
	checkBuffer,
}

func runAdmissionChecks(thing *model.Thing, candidate *model.Reservation, env *admissionEnv) *apperrors.AppError {
	for _, check := range admissionChecks {
		if rejection := check(thing, candidate, env); rejection != nil {
			return rejection
		}
	}
	return nil
}

// checkLength admits a candidate exactly max_length_mins long; one minute
// over is a rejection.
func checkLength(thing *model.Thing, candidate *model.Reservation, _ *admissionEnv) *apperrors.AppError {
	if candidate.DurationMins() > thing.MaxLengthMins {
		return reservationserrors.MaxLength(thing.MaxLengthMins)
	}
	return nil
}

func checkLeadTime(thing *model.Thing, candidate *model.Reservation, env *admissionEnv) *apperrors.AppError {
	horizon := time.Duration(thing.BookAheadDays) * 24 * time.Hour
	if candidate.StartsAt.Sub(env.now) > horizon {
		return reservationserrors.BookAhead()
	}
	return nil
}

// checkWindow projects both endpoints into the thing's zone. The weekend
// rule is checked before the hours rule, so a Saturday candidate at valid
// hours still reports the weekend rejection.
func checkWindow(thing *model.Thing, candidate *model.Reservation, _ *admissionEnv) *apperrors.AppError {
	loc, err := thing.Location()
	if err != nil {
		return apperrors.Internal("Failed to resolve resource timezone", err)
	}

	if !thing.AvailWeekends {
		if isWeekend(candidate.StartsAt.In(loc)) || isWeekend(candidate.EndsAt.In(loc)) {
			return reservationserrors.AvailWeekends()
		}
	}

	availStart, err := timegrid.ParseClock(thing.AvailStart)
	if err != nil {
		return apperrors.Internal("Failed to parse availability window", err)
	}
	availEnd, err := timegrid.ParseClock(thing.AvailEnd)
	if err != nil {
		return apperrors.Internal("Failed to parse availability window", err)
	}

	startMin := timegrid.MinuteOfDay(candidate.StartsAt, loc, false)
	endMin := timegrid.MinuteOfDay(candidate.EndsAt, loc, true)
	if startMin < availStart || endMin > availEnd {
		return reservationserrors.AvailHours(thing.AvailStart, thing.AvailEnd)
	}

	return nil
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// checkConcurrency caps how many active future reservations one booker can
// hold on the thing. The count must be strictly below the cap for the
// candidate to pass.
func checkConcurrency(thing *model.Thing, _ *model.Reservation, env *admissionEnv) *apperrors.AppError {
	if env.activeCount >= thing.MaxConcurrent {
		return reservationserrors.MaxConcurrent(env.activeCount)
	}
	return nil
}

// checkBuffer rejects candidates within buffer_mins of a neighbor, and with
// a zero buffer degenerates into a plain advisory overlap check. Exact
// back-to-back adjacency is always allowed. The storage constraint remains
// the authority; this check only exists to answer before the write.
func checkBuffer(thing *model.Thing, candidate *model.Reservation, env *admissionEnv) *apperrors.AppError {
	buffer := time.Duration(thing.BufferMins) * time.Minute
	paddedStart := candidate.StartsAt.Add(-buffer)
	paddedEnd := candidate.EndsAt.Add(buffer)

	for _, neighbor := range env.neighbors {
		if neighbor.IsCancelled() {
			continue
		}
		if neighbor.EndsAt.Equal(candidate.StartsAt) || neighbor.StartsAt.Equal(candidate.EndsAt) {
			continue
		}
		if neighbor.StartsAt.Before(paddedEnd) && neighbor.EndsAt.After(paddedStart) {
			return reservationserrors.Overlap()
		}
	}

	return nil
}
