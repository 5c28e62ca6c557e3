package domain

import "fmt"

// Status is the engine state. The set of implementations is closed:
// Loading, Ready and CheckingOut.
type Status interface {
	Mode() Mode
	String() string
	status()
}

// Loading is the state before the first load settles. Assumed carries the
// sticky mode from the previous session.
type Loading struct {
	Assumed Mode
}

// Ready is the steady state in either mode.
type Ready struct {
	In Mode
}

// CheckingOut is only reachable from Ready(Online), so an offline checkout
// cannot be represented.
type CheckingOut struct{}

func (s Loading) Mode() Mode     { return s.Assumed }
func (s Loading) String() string { return "loading" }
func (Loading) status()          {}

func (s Ready) Mode() Mode     { return s.In }
func (s Ready) String() string { return "ready(" + s.In.String() + ")" }
func (Ready) status()          {}

func (CheckingOut) Mode() Mode     { return Online }
func (CheckingOut) String() string { return "checking-out" }
func (CheckingOut) status()        {}

type Event int

const (
	// EventLoaded: a server fetch succeeded and replaced local state.
	EventLoaded Event = iota
	// EventLoadedLocal: state was taken from the local snapshot.
	EventLoadedLocal
	// EventWentOffline: a user-driven call failed as Unreachable.
	EventWentOffline
	// EventReconnected: a probe succeeded while offline.
	EventReconnected
	EventCheckoutStarted
	EventCheckoutFinished
	// EventLoadFailed: the initial load gave up; the cart is shown empty.
	EventLoadFailed
)

func (e Event) String() string {
	switch e {
	case EventLoaded:
		return "loaded"
	case EventLoadedLocal:
		return "loaded-local"
	case EventWentOffline:
		return "went-offline"
	case EventReconnected:
		return "reconnected"
	case EventCheckoutStarted:
		return "checkout-started"
	case EventCheckoutFinished:
		return "checkout-finished"
	case EventLoadFailed:
		return "load-failed"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// TransitionError reports an event the current status does not accept.
type TransitionError struct {
	From  Status
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s on %s", e.Event, e.From)
}

// Next is the engine's transition table. Every status handles every event,
// either with a new status or a TransitionError.
func Next(s Status, ev Event) (Status, error) {
	illegal := &TransitionError{From: s, Event: ev}

	switch cur := s.(type) {
	case Loading:
		switch ev {
		case EventLoaded:
			return Ready{In: Online}, nil
		case EventLoadedLocal, EventWentOffline:
			return Ready{In: Offline}, nil
		case EventLoadFailed:
			return Ready{In: cur.Assumed}, nil
		default:
			return s, illegal
		}

	case Ready:
		switch ev {
		case EventLoaded, EventReconnected:
			return Ready{In: Online}, nil
		case EventWentOffline:
			return Ready{In: Offline}, nil
		case EventLoadedLocal:
			return cur, nil
		case EventCheckoutStarted:
			if cur.In == Offline {
				return s, illegal
			}
			return CheckingOut{}, nil
		default:
			return s, illegal
		}

	case CheckingOut:
		switch ev {
		case EventCheckoutFinished, EventLoaded:
			return Ready{In: Online}, nil
		case EventWentOffline:
			return Ready{In: Offline}, nil
		default:
			return s, illegal
		}

	default:
		return s, fmt.Errorf("unknown status %T", s)
	}
}
