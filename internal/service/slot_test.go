package service

import (
	"testing"

	"github.com/morphcute/mlbb-gifters/internal/model"

	"github.com/stretchr/testify/require"
)

func TestAddSlotsValidatesTargets(t *testing.T) {
	f := newFixture(t)

	err := f.slots.AddSlots(ctx(), adminActor, "missing-skin", f.gifter.ID, 1)
	require.ErrorIs(t, err, ErrSkinNotFound)

	err = f.slots.AddSlots(ctx(), adminActor, f.skin.ID, "missing-gifter", 1)
	require.ErrorIs(t, err, ErrUserNotFound)

	// A buyer id is not a valid slot holder even if the user exists.
	buyer := createUser(t, f.db, "buyer@example.com", model.RoleBuyer)
	err = f.slots.AddSlots(ctx(), adminActor, f.skin.ID, buyer.ID, 1)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddSlotsDefaultsQuantityToOne(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.slots.AddSlots(ctx(), adminActor, f.skin.ID, f.gifter.ID, 0))
	count, err := f.slots.AvailableCount(ctx(), f.skin.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestAddOwnSlotsUsesCallerIdentity(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.slots.AddOwnSlots(ctx(), gifterActor(f.gifter), f.skin.ID, 3))

	var slots []model.GifterSlot
	require.NoError(t, f.db.Find(&slots, "gifter_id = ?", f.gifter.ID).Error)
	require.Len(t, slots, 3)
	for _, s := range slots {
		require.False(t, s.IsUsed)
		require.Nil(t, s.OrderID)
	}
}

func TestReserveLastSlotHasOneWinner(t *testing.T) {
	f := newFixture(t)
	f.addSlots(t, 1)

	first, err := f.orders.Create(ctx(), orderRequest(f.skin.ID, "one@example.com", "1001"))
	require.NoError(t, err)
	second, err := f.orders.Create(ctx(), orderRequest(f.skin.ID, "two@example.com", "1002"))
	require.NoError(t, err)

	_, err = f.orders.Assign(ctx(), adminActor, first.ID, "")
	require.NoError(t, err)

	// The losing reservation observes the conditional update failing and
	// reports exhaustion instead of double-reserving.
	_, err = f.orders.Assign(ctx(), adminActor, second.ID, "")
	require.ErrorIs(t, err, ErrNoFreeSlots)

	var used int64
	require.NoError(t, f.db.Model(&model.GifterSlot{}).Where("is_used = ?", true).Count(&used).Error)
	require.EqualValues(t, 1, used)
}

func TestAvailableCountMatchesUnusedRows(t *testing.T) {
	f := newFixture(t)
	f.addSlots(t, 3)

	// Reserve, release, re-reserve across a few cycles: the derived count
	// always equals the unused rows, no phantom or lost slots.
	order, err := f.orders.Create(ctx(), orderRequest(f.skin.ID, "cycle@example.com", "2002"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = f.orders.Assign(ctx(), adminActor, order.ID, "")
		require.NoError(t, err)

		count, err := f.slots.AvailableCount(ctx(), f.skin.ID)
		require.NoError(t, err)
		require.Equal(t, unusedCount(t, f.db), count)
		require.EqualValues(t, 2, count)
	}
}

func TestGifterInventoryCountsOwnSlotsOnly(t *testing.T) {
	f := newFixture(t)
	other := createUser(t, f.db, "other-gifter@example.com", model.RoleGifter)
	require.NoError(t, f.slots.AddSlots(ctx(), adminActor, f.skin.ID, f.gifter.ID, 2))
	require.NoError(t, f.slots.AddSlots(ctx(), adminActor, f.skin.ID, other.ID, 5))

	inventory, err := f.slots.GifterInventory(ctx(), gifterActor(f.gifter), f.gifter.ID)
	require.NoError(t, err)
	require.Len(t, inventory, 1)
	require.Equal(t, f.skin.ID, inventory[0].Skin.ID)
	require.EqualValues(t, 2, inventory[0].FreeSlots)

	// Gifters cannot inspect each other's inventory.
	_, err = f.slots.GifterInventory(ctx(), gifterActor(f.gifter), other.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUnusedSlotsPreloadsRelations(t *testing.T) {
	f := newFixture(t)
	f.addSlots(t, 2)

	slots, err := f.slots.UnusedSlots(ctx(), adminActor)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	require.NotNil(t, slots[0].Skin)
	require.NotNil(t, slots[0].Gifter)
	require.Equal(t, f.gifter.ID, slots[0].Gifter.ID)
}
