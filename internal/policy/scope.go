package policy

import "dinebook/shared/role"

// ScopeRule narrows list queries to the rows an actor may see.
type ScopeRule uint8

const (
	ScopeNone ScopeRule = iota
	ScopeAll
	ScopeOwnRestaurant
	ScopeOwnDiner
)

func (s ScopeRule) String() string {
	switch s {
	case ScopeNone:
		return "none"
	case ScopeAll:
		return "all"
	case ScopeOwnRestaurant:
		return "own_restaurant"
	case ScopeOwnDiner:
		return "own_diner"
	default:
		return "unknown"
	}
}

// Scope returns the list rule for actor over records of kind.
func Scope(actor Actor, kind Kind) ScopeRule {
	r := actor.Role
	if actor.IsAnonymous() {
		r = role.Anonymous
	}

	switch kind {
	case KindUser:
		if r == role.Admin {
			return ScopeAll
		}

		return ScopeNone
	case KindRestaurant:
		return ScopeAll
	case KindAvailability:
		if r == role.Restaurant {
			return ScopeOwnRestaurant
		}

		return ScopeAll
	case KindReservation:
		switch r {
		case role.Admin:
			return ScopeAll
		case role.Restaurant:
			return ScopeOwnRestaurant
		case role.Diner:
			return ScopeOwnDiner
		case role.Anonymous:
			return ScopeNone
		default:
			return ScopeNone
		}
	default:
		return ScopeNone
	}
}
