package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorizationBoundary(t *testing.T) {
	authz := newAuthz(t)

	cases := []struct {
		name    string
		actor   Actor
		object  string
		action  string
		allowed bool
	}{
		{"admin assigns orders", adminActor, "orders", "assign", true},
		{"admin inherits gifter follow", adminActor, "orders", "follow", true},
		{"admin manages skins", adminActor, "skins", "manage", true},
		{"gifter follows orders", Actor{UserID: "g", Role: "GIFTER"}, "orders", "follow", true},
		{"gifter cannot assign", Actor{UserID: "g", Role: "GIFTER"}, "orders", "assign", false},
		{"gifter cannot refund", Actor{UserID: "g", Role: "GIFTER"}, "orders", "refund", false},
		{"gifter cannot ban", Actor{UserID: "g", Role: "GIFTER"}, "users", "ban", false},
		{"buyer can do nothing", buyerActor, "orders", "follow", false},
		{"anonymous can do nothing", anonActor, "orders", "send", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := authz.Authorize(tc.actor, tc.object, tc.action)
			if tc.allowed {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestRoleRequiredBeforeStateAccess(t *testing.T) {
	f := newFixture(t)
	f.addSlots(t, 1)

	order, err := f.orders.Create(ctx(), orderRequest(f.skin.ID, "z@example.com", "5005"))
	require.NoError(t, err)

	// A gifter cannot assign even a real order; the rejection happens at the
	// boundary, before the order is loaded.
	_, err = f.orders.Assign(ctx(), gifterActor(f.gifter), order.ID, "")
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.orders.Refund(ctx(), buyerActor, order.ID)
	require.ErrorIs(t, err, ErrForbidden)

	err = f.slots.AddSlots(ctx(), gifterActor(f.gifter), f.skin.ID, f.gifter.ID, 1)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.skins.Create(ctx(), anonActor, nil)
	require.ErrorIs(t, err, ErrForbidden)

	// State is untouched by the rejected calls.
	reloaded, err := f.orders.Get(ctx(), order.ID)
	require.NoError(t, err)
	require.Nil(t, reloaded.GifterID)

	count, err := f.slots.AvailableCount(ctx(), f.skin.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}
