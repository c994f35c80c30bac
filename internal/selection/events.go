package selection

import "bookable/internal/timegrid"

// Event is an input the host feeds the machine. Each variant carries exactly
// what the transition needs.
type Event interface{ isEvent() }

// TapSlot is a tap or click on one grid cell.
type TapSlot struct {
	Slot timegrid.Slot
}

// DwellElapsed is delivered by the host when a StartDwell timer fires. Seq
// echoes the effect's sequence so stale timers are ignored.
type DwellElapsed struct {
	Seq int
}

// IdentityProvided reports that the visitor completed identity capture after
// a RequestIdentity effect.
type IdentityProvided struct{}

// SubmitPressed is the confirm button inside the dialog.
type SubmitPressed struct{}

// SubmitSucceeded reports that the reservation call returned success.
type SubmitSucceeded struct{}

// SubmitFailed reports a rejected or errored reservation call. The host shows
// the server's message; the machine keeps the selection for a retry.
type SubmitFailed struct{}

// ConfirmCancelled is the dialog's dismiss action.
type ConfirmCancelled struct{}

// DayChanged swaps in a different day's index and discards any selection.
type DayChanged struct {
	Index *timegrid.DayIndex
	Own   map[string]bool
}

// WeekChanged is navigation to a different week; same reset semantics as
// DayChanged.
type WeekChanged struct {
	Index *timegrid.DayIndex
	Own   map[string]bool
}

// Cleared is an explicit clear (escape key, clear button).
type Cleared struct{}

func (TapSlot) isEvent()          {}
func (DwellElapsed) isEvent()     {}
func (IdentityProvided) isEvent() {}
func (SubmitPressed) isEvent()    {}
func (SubmitSucceeded) isEvent()  {}
func (SubmitFailed) isEvent()     {}
func (ConfirmCancelled) isEvent() {}
func (DayChanged) isEvent()       {}
func (WeekChanged) isEvent()      {}
func (Cleared) isEvent()          {}

// Effect is an instruction back to the host. The machine never performs I/O
// itself.
type Effect interface{ isEffect() }

// ShowNotAvailable asks the host for brief non-blocking feedback on an
// occupied or crossing tap.
type ShowNotAvailable struct{}

// StartDwell asks the host to schedule a DwellDuration timer and deliver
// DwellElapsed{Seq} when it fires.
type StartDwell struct {
	Seq int
}

// RequestIdentity asks the host to collect the visitor's name and email
// before confirmation proceeds.
type RequestIdentity struct{}

// OpenConfirm asks the host to open the confirmation dialog for the interval.
type OpenConfirm struct {
	Start, End timegrid.Slot
}

// SubmitCandidate asks the host to call the reservation endpoint for the
// interval and report back with SubmitSucceeded or SubmitFailed.
type SubmitCandidate struct {
	Start, End timegrid.Slot
}

// OfferCancel asks the host to offer cancellation of the visitor's own
// reservation.
type OfferCancel struct {
	ReservationID string
}

// RefreshDay asks the host to refetch the day and deliver DayChanged.
type RefreshDay struct{}

func (ShowNotAvailable) isEffect() {}
func (StartDwell) isEffect()      {}
func (RequestIdentity) isEffect() {}
func (OpenConfirm) isEffect()     {}
func (SubmitCandidate) isEffect() {}
func (OfferCancel) isEffect()     {}
func (RefreshDay) isEffect()      {}
