package policy_test

import (
	"context"
	"testing"

	"dinebook/internal/policy"
	"dinebook/shared/constant"
	"dinebook/shared/failure"
	"dinebook/shared/role"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin      = policy.Actor{UserID: "admin-1", Role: role.Admin}
	owner      = policy.Actor{UserID: "rest-1", Role: role.Restaurant}
	otherOwner = policy.Actor{UserID: "rest-2", Role: role.Restaurant}
	diner      = policy.Actor{UserID: "diner-1", Role: role.Diner}
	otherDiner = policy.Actor{UserID: "diner-2", Role: role.Diner}
	anonymous  = policy.Actor{}
)

func TestAuthorize(t *testing.T) {
	restaurant := policy.Restaurant(owner.UserID)
	slot := policy.Availability(owner.UserID)
	booking := policy.Reservation(owner.UserID, diner.UserID)

	tests := []struct {
		name    string
		actor   policy.Actor
		op      policy.Operation
		res     policy.Resource
		allowed bool
	}{
		{"admin manages users", admin, policy.Update, policy.User(), true},
		{"restaurant cannot list users", owner, policy.List, policy.User(), false},
		{"diner cannot read users", diner, policy.Read, policy.User(), false},
		{"anonymous cannot read users", anonymous, policy.Read, policy.User(), false},

		{"anonymous reads restaurant", anonymous, policy.Read, restaurant, true},
		{"diner lists restaurants", diner, policy.List, restaurant, true},
		{"admin creates restaurant", admin, policy.Create, restaurant, true},
		{"restaurant cannot create restaurant", owner, policy.Create, restaurant, false},
		{"owner updates restaurant", owner, policy.Update, restaurant, true},
		{"non-owner cannot update restaurant", otherOwner, policy.Update, restaurant, false},
		{"owner deletes restaurant", owner, policy.Delete, restaurant, true},
		{"diner cannot delete restaurant", diner, policy.Delete, restaurant, false},
		{"admin deletes restaurant", admin, policy.Delete, restaurant, true},

		{"anonymous reads availability", anonymous, policy.Read, slot, true},
		{"owner creates availability", owner, policy.Create, slot, true},
		{"non-owner cannot create availability", otherOwner, policy.Create, slot, false},
		{"owner blocks", owner, policy.Block, slot, true},
		{"non-owner cannot block", otherOwner, policy.Block, slot, false},
		{"non-owner cannot unblock", otherOwner, policy.Unblock, slot, false},
		{"non-owner cannot delete", otherOwner, policy.Delete, slot, false},
		{"diner cannot block", diner, policy.Block, slot, false},
		{"admin unblocks", admin, policy.Unblock, slot, true},
		{"anonymous cannot update availability", anonymous, policy.Update, slot, false},

		{"admin reads reservation", admin, policy.Read, booking, true},
		{"owning restaurant reads reservation", owner, policy.Read, booking, true},
		{"other restaurant cannot read reservation", otherOwner, policy.Read, booking, false},
		{"diner reads own reservation", diner, policy.Read, booking, true},
		{"diner cannot read others reservation", otherDiner, policy.Read, booking, false},
		{"anonymous cannot read reservation", anonymous, policy.Read, booking, false},
		{"diner creates reservation", diner, policy.Create, booking, true},
		{"admin cannot create reservation", admin, policy.Create, booking, false},
		{"restaurant cannot create reservation", owner, policy.Create, booking, false},
		{"anonymous cannot create reservation", anonymous, policy.Create, booking, false},
		{"admin cancels", admin, policy.Delete, booking, true},
		{"owning restaurant cancels", owner, policy.Delete, booking, true},
		{"other restaurant cannot cancel", otherOwner, policy.Delete, booking, false},
		{"diner cancels own", diner, policy.Delete, booking, true},
		{"diner cannot cancel others", otherDiner, policy.Delete, booking, false},
		{"restaurant cannot edit reservation", owner, policy.Update, booking, false},
		{"anonymous cannot list reservations", anonymous, policy.List, booking, false},
		{"diner lists reservations", diner, policy.List, booking, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := policy.Authorize(tt.actor, tt.op, tt.res)

			assert.Equal(t, tt.allowed, decision.Allowed)

			if !tt.allowed {
				assert.NotEmpty(t, decision.Reason)
			}
		})
	}
}

func TestAuthorizeRoleWithoutUserIsAnonymous(t *testing.T) {
	forged := policy.Actor{Role: role.Admin}

	decision := policy.Authorize(forged, policy.Read, policy.User())

	assert.False(t, decision.Allowed)
}

func TestAuthorizeEmptyOwnerNeverMatches(t *testing.T) {
	ghost := policy.Actor{UserID: "", Role: role.Restaurant}

	decision := policy.Authorize(ghost, policy.Block, policy.Availability(""))

	assert.False(t, decision.Allowed)
}

func TestEnforce(t *testing.T) {
	err := policy.Enforce(otherOwner, policy.Block, policy.Availability(owner.UserID))

	require.Error(t, err)
	assert.True(t, failure.IsKind(err, failure.KindForbidden))
	assert.Equal(t, policy.ReasonNotOwner, err.Error())

	assert.NoError(t, policy.Enforce(owner, policy.Block, policy.Availability(owner.UserID)))
}

func TestScope(t *testing.T) {
	tests := []struct {
		name  string
		actor policy.Actor
		kind  policy.Kind
		want  policy.ScopeRule
	}{
		{"admin users", admin, policy.KindUser, policy.ScopeAll},
		{"restaurant users", owner, policy.KindUser, policy.ScopeNone},
		{"anonymous restaurants", anonymous, policy.KindRestaurant, policy.ScopeAll},
		{"restaurant availability", owner, policy.KindAvailability, policy.ScopeOwnRestaurant},
		{"diner availability", diner, policy.KindAvailability, policy.ScopeAll},
		{"anonymous availability", anonymous, policy.KindAvailability, policy.ScopeAll},
		{"admin reservations", admin, policy.KindReservation, policy.ScopeAll},
		{"restaurant reservations", owner, policy.KindReservation, policy.ScopeOwnRestaurant},
		{"diner reservations", diner, policy.KindReservation, policy.ScopeOwnDiner},
		{"anonymous reservations", anonymous, policy.KindReservation, policy.ScopeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Scope(tt.actor, tt.kind))
		})
	}
}

func TestActorFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "diner-1")
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, role.Diner)

	assert.Equal(t, diner, policy.ActorFromContext(ctx))
	assert.Equal(t, policy.Actor{}, policy.ActorFromContext(context.Background()))
	assert.True(t, policy.ActorFromContext(context.Background()).IsAnonymous())
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "block", policy.Block.String())
	assert.Equal(t, "unknown", policy.Operation(0).String())
	assert.Equal(t, "own_diner", policy.ScopeOwnDiner.String())
}
