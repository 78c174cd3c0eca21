// Package policy decides which actor may perform which operation on which
// record. Authorize is pure: callers load the record first and describe its
// ownership in a Resource. Scope gives the matching rule for list queries.
package policy

import (
	"context"

	"dinebook/shared/constant"
	"dinebook/shared/failure"
	"dinebook/shared/role"
)

type Operation uint8

const (
	Read Operation = iota + 1
	List
	Create
	Update
	Delete
	Block
	Unblock
)

func (o Operation) String() string {
	switch o {
	case Read:
		return "read"
	case List:
		return "list"
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	case Block:
		return "block"
	case Unblock:
		return "unblock"
	default:
		return "unknown"
	}
}

type Kind uint8

const (
	KindUser Kind = iota + 1
	KindRestaurant
	KindAvailability
	KindReservation
)

// Actor is the authenticated caller. The zero value is an anonymous caller.
type Actor struct {
	UserID string
	Role   role.Role
}

func (a Actor) IsAnonymous() bool {
	return a.Role == role.Anonymous || a.UserID == ""
}

// AuditName is the value written to created_by and modified_by.
func (a Actor) AuditName() string {
	if a.UserID == "" {
		return constant.ContextGuest
	}

	return a.UserID
}

// ActorFromContext reads the identity stored by the auth middleware.
func ActorFromContext(ctx context.Context) Actor {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	userRole, _ := ctx.Value(constant.ContextKeyUserRole).(role.Role)

	if userID == "" {
		return Actor{}
	}

	return Actor{UserID: userID, Role: userRole}
}

// Resource describes the record an operation targets. OwnerID is the user
// owning the restaurant the record belongs to; DinerID is set on
// reservations only.
type Resource struct {
	Kind    Kind
	OwnerID string
	DinerID string
}

func User() Resource {
	return Resource{Kind: KindUser}
}

func Restaurant(ownerID string) Resource {
	return Resource{Kind: KindRestaurant, OwnerID: ownerID}
}

func Availability(restaurantOwnerID string) Resource {
	return Resource{Kind: KindAvailability, OwnerID: restaurantOwnerID}
}

func Reservation(restaurantOwnerID, dinerID string) Resource {
	return Resource{Kind: KindReservation, OwnerID: restaurantOwnerID, DinerID: dinerID}
}

type Decision struct {
	Allowed bool
	Reason  string
}

const (
	ReasonAdminOnly           = "only administrators can perform this action"
	ReasonNotOwner            = "you do not own this restaurant"
	ReasonNotYourReservation  = "you can only access your own reservations"
	ReasonDinerOnly           = "only diners can make reservations"
	ReasonLoginRequired       = "authentication required"
	ReasonUnsupported         = "operation is not supported on this resource"
	ReasonReservationReadOnly = "reservations cannot be edited; cancel and book again"
)

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Authorize evaluates the access table for actor performing op on res.
func Authorize(actor Actor, op Operation, res Resource) Decision {
	if actor.IsAnonymous() {
		actor.Role = role.Anonymous
	}

	switch res.Kind {
	case KindUser:
		return authorizeUser(actor)
	case KindRestaurant:
		return authorizeRestaurant(actor, op, res)
	case KindAvailability:
		return authorizeAvailability(actor, op, res)
	case KindReservation:
		return authorizeReservation(actor, op, res)
	default:
		return deny(ReasonUnsupported)
	}
}

// Enforce is Authorize returning a Forbidden failure on denial.
func Enforce(actor Actor, op Operation, res Resource) error {
	decision := Authorize(actor, op, res)
	if decision.Allowed {
		return nil
	}

	return failure.Forbidden(decision.Reason) // nolint:wrapcheck
}

func authorizeUser(actor Actor) Decision {
	switch actor.Role {
	case role.Admin:
		return allow()
	case role.Restaurant, role.Diner, role.Anonymous:
		return deny(ReasonAdminOnly)
	default:
		return deny(ReasonAdminOnly)
	}
}

func authorizeRestaurant(actor Actor, op Operation, res Resource) Decision {
	switch op {
	case Read, List:
		return allow()
	case Create:
		if actor.Role == role.Admin {
			return allow()
		}

		return deny(ReasonAdminOnly)
	case Update, Delete:
		return ownerOrAdmin(actor, res)
	case Block, Unblock:
		return deny(ReasonUnsupported)
	default:
		return deny(ReasonUnsupported)
	}
}

func authorizeAvailability(actor Actor, op Operation, res Resource) Decision {
	switch op {
	case Read, List:
		return allow()
	case Create, Update, Delete, Block, Unblock:
		return ownerOrAdmin(actor, res)
	default:
		return deny(ReasonUnsupported)
	}
}

func authorizeReservation(actor Actor, op Operation, res Resource) Decision {
	switch op {
	case Create:
		if actor.Role == role.Diner {
			return allow()
		}

		return deny(ReasonDinerOnly)
	case List:
		if actor.Role == role.Anonymous {
			return deny(ReasonLoginRequired)
		}

		return allow()
	case Read, Delete:
		return participantOrAdmin(actor, res)
	case Update:
		return deny(ReasonReservationReadOnly)
	case Block, Unblock:
		return deny(ReasonUnsupported)
	default:
		return deny(ReasonUnsupported)
	}
}

func ownerOrAdmin(actor Actor, res Resource) Decision {
	switch actor.Role {
	case role.Admin:
		return allow()
	case role.Restaurant:
		if res.OwnerID != "" && res.OwnerID == actor.UserID {
			return allow()
		}

		return deny(ReasonNotOwner)
	case role.Diner, role.Anonymous:
		return deny(ReasonNotOwner)
	default:
		return deny(ReasonNotOwner)
	}
}

func participantOrAdmin(actor Actor, res Resource) Decision {
	switch actor.Role {
	case role.Admin:
		return allow()
	case role.Restaurant:
		if res.OwnerID != "" && res.OwnerID == actor.UserID {
			return allow()
		}

		return deny(ReasonNotOwner)
	case role.Diner:
		if res.DinerID != "" && res.DinerID == actor.UserID {
			return allow()
		}

		return deny(ReasonNotYourReservation)
	case role.Anonymous:
		return deny(ReasonLoginRequired)
	default:
		return deny(ReasonLoginRequired)
	}
}
