// Package selection implements the client-resident picking flow that turns
// two slot taps into a committed interval. It is a pure state machine: the
// host (a browser shell, a kiosk, a test) feeds events in and executes the
// returned effects such as timers, identity capture, and the submit call.
// Server-side admission remains authoritative; everything here is
// latency-hiding and may be wrong against stale data.
package selection

import (
	"time"

	"bookable/internal/timegrid"
)

// DwellDuration is how long a committed interval is shown before it starts
// pulsing as confirmable. Strictly positive; the host schedules it when it
// receives a StartDwell effect.
const DwellDuration = 900 * time.Millisecond

type Phase int

const (
	PhaseIdle Phase = iota
	PhasePicking
	PhaseSeen
	PhaseReady
	PhaseModal
)

// State is a tagged union over the five phases. Exactly one variant is
// current at any time.
type State interface {
	Phase() Phase
}

// Idle: no start chosen.
type Idle struct{}

// Picking: a start slot is chosen, no end yet.
type Picking struct {
	Start timegrid.Slot
}

// Seen: a committed interval showing its From/Until labels, waiting out the
// dwell.
type Seen struct {
	Start, End timegrid.Slot
	DwellSeq   int
}

// Ready: the interval pulses as confirmable. AwaitingIdentity is set while
// identity capture is interposed; confirmation resumes without a re-tap.
type Ready struct {
	Start, End       timegrid.Slot
	AwaitingIdentity bool
}

// Modal: the confirmation dialog is open. InFlight disables repeat submits
// while a request is on the wire.
type Modal struct {
	Start, End timegrid.Slot
	InFlight   bool
}

func (Idle) Phase() Phase    { return PhaseIdle }
func (Picking) Phase() Phase { return PhasePicking }
func (Seen) Phase() Phase    { return PhaseSeen }
func (Ready) Phase() Phase   { return PhaseReady }
func (Modal) Phase() Phase   { return PhaseModal }

// Machine holds the selection state for one visitor viewing one day.
type Machine struct {
	state         State
	index         *timegrid.DayIndex
	own           map[string]bool
	identityKnown bool
	dwellSeq      int
}

// New creates a machine in Idle over the given day. own holds the
// reservation IDs belonging to this visitor on this device; identityKnown
// reports whether a verified (email, name) pair is already present.
func New(index *timegrid.DayIndex, own map[string]bool, identityKnown bool) *Machine {
	if own == nil {
		own = map[string]bool{}
	}
	return &Machine{
		state:         Idle{},
		index:         index,
		own:           own,
		identityKnown: identityKnown,
	}
}

func (m *Machine) State() State {
	return m.state
}

// Handle applies one event and returns the effects the host must execute.
func (m *Machine) Handle(ev Event) []Effect {
	switch ev := ev.(type) {
	case TapSlot:
		return m.handleTap(ev.Slot)
	case DwellElapsed:
		return m.handleDwellElapsed(ev.Seq)
	case IdentityProvided:
		return m.handleIdentityProvided()
	case SubmitPressed:
		return m.handleSubmitPressed()
	case SubmitSucceeded:
		return m.handleSubmitSucceeded()
	case SubmitFailed:
		return m.handleSubmitFailed()
	case ConfirmCancelled:
		if m.state.Phase() == PhaseModal {
			m.state = Idle{}
		}
		return nil
	case DayChanged:
		m.reset(ev.Index, ev.Own)
		return nil
	case WeekChanged:
		m.reset(ev.Index, ev.Own)
		return nil
	case Cleared:
		m.reset(m.index, m.own)
		return nil
	default:
		return nil
	}
}

func (m *Machine) handleTap(slot timegrid.Slot) []Effect {
	switch st := m.state.(type) {
	case Picking:
		return m.handlePickingTap(st, slot)

	case Seen:
		if within(slot, st.Start, st.End) {
			// Dwell is still running; the tap that opens confirmation only
			// counts once the interval is Ready.
			return nil
		}
		return m.tapAsNewPick(slot)

	case Ready:
		if within(slot, st.Start, st.End) {
			if !m.identityKnown {
				st.AwaitingIdentity = true
				m.state = st
				return []Effect{RequestIdentity{}}
			}
			m.state = Modal{Start: st.Start, End: st.End}
			return []Effect{OpenConfirm{Start: st.Start, End: st.End}}
		}
		return m.tapAsNewPick(slot)

	case Modal:
		// The dialog owns input while open.
		return nil

	default: // Idle
		return m.tapAsNewPick(slot)
	}
}

// tapAsNewPick is the common first-tap handling from Idle and from a tap
// outside a committed interval.
func (m *Machine) tapAsNewPick(slot timegrid.Slot) []Effect {
	if occupant, ok := m.index.Occupant(slot); ok {
		if m.own[occupant] {
			// The visitor's own reservation: a cancel intent, never picking
			// input.
			return []Effect{OfferCancel{ReservationID: occupant}}
		}
		return []Effect{ShowNotAvailable{}}
	}

	m.dwellSeq++
	m.state = Picking{Start: slot}
	return nil
}

func (m *Machine) handlePickingTap(st Picking, slot timegrid.Slot) []Effect {
	if occupant, ok := m.index.Occupant(slot); ok {
		if m.own[occupant] {
			return []Effect{OfferCancel{ReservationID: occupant}}
		}
		// Direct tap on someone else's slot: feedback only, the chosen
		// start stays as it is.
		return []Effect{ShowNotAvailable{}}
	}

	if slot == st.Start {
		return m.commit(st.Start, st.Start)
	}

	// Either tap order is valid; reject only when the inclusive run crosses
	// someone else's reservation, and restart from the new tap rather than
	// silently clamping.
	for _, s := range timegrid.Between(st.Start, slot) {
		if occupant, ok := m.index.Occupant(s); ok && !m.own[occupant] {
			m.state = Picking{Start: slot}
			return []Effect{ShowNotAvailable{}}
		}
	}

	lo, hi := st.Start, slot
	if hi.Index() < lo.Index() {
		lo, hi = hi, lo
	}
	return m.commit(lo, hi)
}

func (m *Machine) commit(start, end timegrid.Slot) []Effect {
	m.dwellSeq++
	m.state = Seen{Start: start, End: end, DwellSeq: m.dwellSeq}
	return []Effect{StartDwell{Seq: m.dwellSeq}}
}

func (m *Machine) handleDwellElapsed(seq int) []Effect {
	st, ok := m.state.(Seen)
	if !ok || st.DwellSeq != seq {
		// Stale timer from a superseded commit; fires at most once per
		// live commit.
		return nil
	}
	m.state = Ready{Start: st.Start, End: st.End}
	return nil
}

func (m *Machine) handleIdentityProvided() []Effect {
	m.identityKnown = true
	if st, ok := m.state.(Ready); ok && st.AwaitingIdentity {
		m.state = Modal{Start: st.Start, End: st.End}
		return []Effect{OpenConfirm{Start: st.Start, End: st.End}}
	}
	return nil
}

func (m *Machine) handleSubmitPressed() []Effect {
	st, ok := m.state.(Modal)
	if !ok || st.InFlight {
		return nil
	}
	st.InFlight = true
	m.state = st
	return []Effect{SubmitCandidate{Start: st.Start, End: st.End}}
}

func (m *Machine) handleSubmitSucceeded() []Effect {
	if m.state.Phase() != PhaseModal {
		return nil
	}
	m.state = Idle{}
	return []Effect{RefreshDay{}}
}

func (m *Machine) handleSubmitFailed() []Effect {
	st, ok := m.state.(Modal)
	if !ok {
		return nil
	}
	// Selection survives a failed call so the visitor can retry without
	// re-picking; only the in-flight flag resets.
	st.InFlight = false
	m.state = st
	return nil
}

// reset is the single escape hatch reachable from every state.
func (m *Machine) reset(index *timegrid.DayIndex, own map[string]bool) {
	if own == nil {
		own = map[string]bool{}
	}
	m.dwellSeq++
	m.index = index
	m.own = own
	m.state = Idle{}
}

func within(s, start, end timegrid.Slot) bool {
	i := s.Index()
	return i >= start.Index() && i <= end.Index()
}
