package model

import (
	"fmt"

	"dinebook/shared/failure"
)

// State is the booking state of a slot, derived from its two stored flags.
type State uint8

const (
	StateUnknown State = iota
	StateOpen
	StateBlocked
	StateReserved
)

const (
	nameOpen     = "open"
	nameBlocked  = "blocked"
	nameReserved = "reserved"
)

const (
	msgCannotBlock   = "slot is not available or already blocked"
	msgCannotUnblock = "slot is not blocked"
	msgUnavailable   = "slot is not available"
	msgAlreadyBooked = "slot has already been booked"
)

// StateOf maps the stored flags to a state. is_blocked wins over
// is_available.
func StateOf(isAvailable, isBlocked bool) State {
	switch {
	case isBlocked:
		return StateBlocked
	case isAvailable:
		return StateOpen
	default:
		return StateReserved
	}
}

// ParseState reads the public name of a state.
func ParseState(s string) (State, error) {
	switch s {
	case nameOpen:
		return StateOpen, nil
	case nameBlocked:
		return StateBlocked, nil
	case nameReserved:
		return StateReserved, nil
	default:
		return StateUnknown, fmt.Errorf("unknown slot state %q", s)
	}
}

func (s State) String() string {
	switch s {
	case StateOpen:
		return nameOpen
	case StateBlocked:
		return nameBlocked
	case StateReserved:
		return nameReserved
	case StateUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Flags returns the is_available and is_blocked values stored for s.
// Blocking keeps is_available set, so unblocking restores an open slot.
func (s State) Flags() (isAvailable, isBlocked bool) {
	switch s {
	case StateOpen:
		return true, false
	case StateBlocked:
		return true, true
	case StateReserved:
		return false, false
	case StateUnknown:
		return false, false
	default:
		return false, false
	}
}

// Block takes an open slot out of booking.
func Block(s State) (State, error) {
	if s != StateOpen {
		return s, failure.InvalidTransition(msgCannotBlock) // nolint:wrapcheck
	}

	return StateBlocked, nil
}

// Unblock returns a blocked slot to open.
func Unblock(s State) (State, error) {
	if s != StateBlocked {
		return s, failure.InvalidTransition(msgCannotUnblock) // nolint:wrapcheck
	}

	return StateOpen, nil
}

// Reserve books an open slot. booked reports whether a reservation already
// points at the slot. There is no edge from blocked to reserved.
func Reserve(s State, booked bool) (State, error) {
	switch {
	case s == StateBlocked:
		return s, failure.SlotUnavailable(msgUnavailable) // nolint:wrapcheck
	case booked:
		return s, failure.AlreadyBooked(msgAlreadyBooked) // nolint:wrapcheck
	case s != StateOpen:
		return s, failure.SlotUnavailable(msgUnavailable) // nolint:wrapcheck
	default:
		return StateReserved, nil
	}
}

// Release reopens a slot whose reservation was cancelled.
func Release(State) State {
	return StateOpen
}

// ErrAlreadyBooked is the failure reported when a concurrent booking won.
func ErrAlreadyBooked() error {
	return failure.AlreadyBooked(msgAlreadyBooked) // nolint:wrapcheck
}
