package stashlogix

import (
	"context"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStashFixture wires a stash system to a catalog through a minimal hub, the way Init does.
func newStashFixture(t *testing.T, items map[string]*CatalogConfigItem, config *StashConfig) *NakamaStashSystem {
	t.Helper()
	catalog, err := NewNakamaCatalogSystem(&CatalogConfig{Items: items})
	require.NoError(t, err)

	stash := NewNakamaStashSystem(config)
	sl := &stashlogixImpl{
		systems: map[SystemType]System{
			SystemTypeCatalog: catalog,
			SystemTypeStash:   stash,
		},
	}
	stash.SetStashlogix(sl)
	return stash
}

func basicFoodCatalog() map[string]*CatalogConfigItem {
	return map[string]*CatalogConfigItem{
		"burger": {Category: "food", Weight: 110, Stackable: true, StackMax: 10},
		"fries":  {Category: "food", Weight: 40, Stackable: true, StackMax: 20},
		"anvil":  {Category: "gear", Weight: 5000},
	}
}

func backpackProfile() *StashConfig {
	return &StashConfig{
		Profiles: map[string]*StashConfigProfile{
			"backpack": {SlotCount: 8, MaxWeight: 10000},
			"pocket":   {SlotCount: 2, MaxWeight: 300},
		},
		DefaultProfile: "backpack",
	}
}

// Test basic system creation and config normalization
func TestNakamaStashSystem_Creation(t *testing.T) {
	system := NewNakamaStashSystem(nil)
	assert.NotNil(t, system)
	assert.Equal(t, SystemTypeStash, system.GetType())

	config, ok := system.GetConfig().(*StashConfig)
	require.True(t, ok)
	assert.Equal(t, stashStorageCollection, config.StorageCollection)
}

// Test inventory creation against capacity profiles
func TestNakamaStashSystem_CreateInventory(t *testing.T) {
	stash := newStashFixture(t, basicFoodCatalog(), backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	// Setup: default profile with an explicit identifier.
	inv, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_main", "")
	require.NoError(t, err)
	assert.Equal(t, "inv_main", inv.Id)
	assert.Equal(t, "user_1", inv.OwnerId)
	assert.Equal(t, "backpack", inv.Profile)
	assert.Equal(t, 8, inv.SlotCount)
	assert.Equal(t, int64(10000), inv.MaxWeight)
	require.Len(t, inv.Slots, 8)
	for i, slot := range inv.Slots {
		assert.Equal(t, i, slot.Index)
		assert.Nil(t, slot.Item)
	}

	// Execute: a named profile and a generated identifier.
	pocket, err := stash.CreateInventory(ctx, logger, nk, "user_1", "", "pocket")
	require.NoError(t, err)
	assert.NotEmpty(t, pocket.Id)
	assert.Equal(t, 2, pocket.SlotCount)

	// Verify: collisions and unknown profiles are rejected.
	_, err = stash.CreateInventory(ctx, logger, nk, "user_1", "inv_main", "")
	assert.ErrorIs(t, err, ErrInventoryExists)
	_, err = stash.CreateInventory(ctx, logger, nk, "user_1", "", "saddlebag")
	assert.ErrorIs(t, err, ErrBadInput)
}

// Test that a personalizer can swap the capacity profile per user
func TestNakamaStashSystem_CreateInventory_Personalized(t *testing.T) {
	catalog, err := NewNakamaCatalogSystem(&CatalogConfig{Items: basicFoodCatalog()})
	require.NoError(t, err)
	stash := NewNakamaStashSystem(backpackProfile())
	sl := &stashlogixImpl{
		personalizers: []Personalizer{&stubPersonalizer{config: &StashConfig{
			Profiles: map[string]*StashConfigProfile{
				"backpack": {SlotCount: 12, MaxWeight: 20000},
			},
		}}},
		systems: map[SystemType]System{
			SystemTypeCatalog: catalog,
			SystemTypeStash:   stash,
		},
	}
	stash.SetStashlogix(sl)

	inv, err := stash.CreateInventory(context.Background(), &mockStashLogger{}, NewTestStashNakama(t), "vip_user", "", "")
	require.NoError(t, err)
	assert.Equal(t, 12, inv.SlotCount)
	assert.Equal(t, int64(20000), inv.MaxWeight)
}

type stubPersonalizer struct {
	config *StashConfig
}

func (p *stubPersonalizer) GetValue(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, system System, identity string) (any, error) {
	if system.GetType() != SystemTypeStash {
		return nil, nil
	}
	return p.config, nil
}

// Test grant chunking across stack limits
func TestNakamaStashSystem_GrantItem_Chunking(t *testing.T) {
	stash := newStashFixture(t, basicFoodCatalog(), backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_main", "")
	require.NoError(t, err)

	// 25 burgers at a stack limit of 10 fill three slots in order.
	indexes, err := stash.GrantItem(ctx, logger, nk, "inv_main", "burger", 25)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, indexes)

	inv, err := stash.GetInventory(ctx, logger, nk, "inv_main")
	require.NoError(t, err)
	assert.Equal(t, int64(10), inv.Slots[0].Item.Count)
	assert.Equal(t, int64(10), inv.Slots[1].Item.Count)
	assert.Equal(t, int64(5), inv.Slots[2].Item.Count)
	assert.Equal(t, int64(25*110), inv.Weight)
}

// Test that non-stackable items mint one instance per unit
func TestNakamaStashSystem_GrantItem_NonStackable(t *testing.T) {
	stash := newStashFixture(t, basicFoodCatalog(), &StashConfig{
		Profiles:       map[string]*StashConfigProfile{"vault": {SlotCount: 4}},
		DefaultProfile: "vault",
	})
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_vault", "")
	require.NoError(t, err)

	indexes, err := stash.GrantItem(ctx, logger, nk, "inv_vault", "anvil", 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, indexes)

	inv, err := stash.GetInventory(ctx, logger, nk, "inv_vault")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NotNil(t, inv.Slots[i].Item)
		assert.Equal(t, int64(1), inv.Slots[i].Item.Count)
	}
	// Each instance carries its own identity.
	assert.NotEqual(t, inv.Slots[0].Item.InstanceId, inv.Slots[1].Item.InstanceId)
}

// Test deterministic merge ordering: the lowest-index compatible stack absorbs first
func TestNakamaStashSystem_MergeOrPlace_LowestIndexWins(t *testing.T) {
	stash := newStashFixture(t, basicFoodCatalog(), backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_main", "")
	require.NoError(t, err)

	// Setup: partial stacks at indexes 1 and 3, index 0 left empty.
	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_main", 1, &ItemInstance{Id: "burger", Count: 4}))
	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_main", 3, &ItemInstance{Id: "burger", Count: 2}))

	// Execute: a mergeable quantity lands on the lowest-index stack with room.
	index, err := stash.MergeOrPlace(ctx, logger, nk, "inv_main", &ItemInstance{Id: "burger", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, index)

	// A quantity no stack can absorb whole falls through to the lowest empty slot.
	index, err = stash.MergeOrPlace(ctx, logger, nk, "inv_main", &ItemInstance{Id: "burger", Count: 9})
	require.NoError(t, err)
	assert.Equal(t, 0, index)

	inv, err := stash.GetInventory(ctx, logger, nk, "inv_main")
	require.NoError(t, err)
	assert.Equal(t, int64(9), inv.Slots[0].Item.Count)
	assert.Equal(t, int64(7), inv.Slots[1].Item.Count)
	assert.Equal(t, int64(2), inv.Slots[3].Item.Count)
}

// Test that stacks with differing properties never merge
func TestNakamaStashSystem_MergeOrPlace_PropertyMismatch(t *testing.T) {
	items := map[string]*CatalogConfigItem{
		"potion": {Stackable: true, StackMax: 10},
	}
	stash := newStashFixture(t, items, backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_main", "")
	require.NoError(t, err)

	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_main", 0, &ItemInstance{
		Id: "potion", Count: 1, StringProperties: map[string]string{"grade": "fine"},
	}))

	index, err := stash.MergeOrPlace(ctx, logger, nk, "inv_main", &ItemInstance{
		Id: "potion", Count: 1, StringProperties: map[string]string{"grade": "crude"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, index)
}

// Test SetSlot validation and occupancy rules
func TestNakamaStashSystem_SetSlot(t *testing.T) {
	stash := newStashFixture(t, basicFoodCatalog(), backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_main", "")
	require.NoError(t, err)

	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_main", 0, &ItemInstance{Id: "burger", Count: 5}))

	// Occupied by a different instance.
	err = stash.SetSlot(ctx, logger, nk, "inv_main", 0, &ItemInstance{Id: "fries", Count: 1})
	assert.ErrorIs(t, err, ErrSlotOccupied)

	// Range, count and stack validation.
	err = stash.SetSlot(ctx, logger, nk, "inv_main", 99, &ItemInstance{Id: "burger", Count: 1})
	assert.ErrorIs(t, err, ErrSlotOutOfRange)
	err = stash.SetSlot(ctx, logger, nk, "inv_main", 1, &ItemInstance{Id: "burger", Count: 0})
	assert.ErrorIs(t, err, ErrBadInput)
	err = stash.SetSlot(ctx, logger, nk, "inv_main", 1, &ItemInstance{Id: "anvil", Count: 2})
	assert.ErrorIs(t, err, ErrBadInput)
	err = stash.SetSlot(ctx, logger, nk, "inv_main", 1, &ItemInstance{Id: "burger", Count: 11})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	err = stash.SetSlot(ctx, logger, nk, "inv_main", 1, &ItemInstance{Id: "mystery", Count: 1})
	assert.ErrorIs(t, err, ErrItemNotFound)

	// Clearing a slot.
	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_main", 0, nil))
	slot, err := stash.GetSlot(ctx, logger, "inv_main", 0)
	require.NoError(t, err)
	assert.Nil(t, slot.Item)
}

// Test that a write violating the weight cap leaves the inventory untouched
func TestNakamaStashSystem_WeightCap_AtomicRevert(t *testing.T) {
	stash := newStashFixture(t, basicFoodCatalog(), backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	// The pocket profile caps at 300 weight units.
	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_pocket", "pocket")
	require.NoError(t, err)

	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_pocket", 0, &ItemInstance{Id: "burger", Count: 2}))

	before, err := stash.Snapshot(ctx, logger, "inv_pocket")
	require.NoError(t, err)

	// A third burger would hit 330.
	_, err = stash.GrantItem(ctx, logger, nk, "inv_pocket", "burger", 1)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	after, err := stash.Snapshot(ctx, logger, "inv_pocket")
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	weight, err := stash.EffectiveWeight(ctx, logger, "inv_pocket")
	require.NoError(t, err)
	assert.Equal(t, int64(220), weight)
}

// Test whole-instance moves preserve identity while partial moves mint a new instance
func TestNakamaStashSystem_Move(t *testing.T) {
	stash := newStashFixture(t, basicFoodCatalog(), backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_a", "")
	require.NoError(t, err)
	_, err = stash.CreateInventory(ctx, logger, nk, "user_1", "inv_b", "")
	require.NoError(t, err)

	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_a", 2, &ItemInstance{Id: "burger", Count: 6}))
	slot, err := stash.GetSlot(ctx, logger, "inv_a", 2)
	require.NoError(t, err)
	movedID := slot.Item.InstanceId

	// Execute: a partial move carves off a new instance.
	index, err := stash.Move(ctx, logger, nk, "inv_a", 2, "inv_b", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, index)

	src, err := stash.GetSlot(ctx, logger, "inv_a", 2)
	require.NoError(t, err)
	dst, err := stash.GetSlot(ctx, logger, "inv_b", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), src.Item.Count)
	assert.Equal(t, int64(2), dst.Item.Count)
	assert.Equal(t, movedID, src.Item.InstanceId)
	assert.NotEqual(t, movedID, dst.Item.InstanceId)

	// Execute: quantity zero moves the remaining whole stack, keeping its identity. It merges
	// onto the stack already in the target.
	index, err = stash.Move(ctx, logger, nk, "inv_a", 2, "inv_b", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, index)

	src, err = stash.GetSlot(ctx, logger, "inv_a", 2)
	require.NoError(t, err)
	dst, err = stash.GetSlot(ctx, logger, "inv_b", 0)
	require.NoError(t, err)
	assert.Nil(t, src.Item)
	assert.Equal(t, int64(6), dst.Item.Count)
}

// Test that a move rejected by the target reverts both inventories
func TestNakamaStashSystem_Move_AtomicAcrossTrees(t *testing.T) {
	stash := newStashFixture(t, basicFoodCatalog(), backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_main", "")
	require.NoError(t, err)
	_, err = stash.CreateInventory(ctx, logger, nk, "user_1", "inv_pocket", "pocket")
	require.NoError(t, err)

	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_main", 0, &ItemInstance{Id: "burger", Count: 5}))

	sourceBefore, err := stash.Snapshot(ctx, logger, "inv_main")
	require.NoError(t, err)
	targetBefore, err := stash.Snapshot(ctx, logger, "inv_pocket")
	require.NoError(t, err)

	// 5 burgers weigh 550, over the pocket's 300 cap.
	_, err = stash.Move(ctx, logger, nk, "inv_main", 0, "inv_pocket", 0)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	sourceAfter, err := stash.Snapshot(ctx, logger, "inv_main")
	require.NoError(t, err)
	targetAfter, err := stash.Snapshot(ctx, logger, "inv_pocket")
	require.NoError(t, err)
	assert.Equal(t, string(sourceBefore), string(sourceAfter))
	assert.Equal(t, string(targetBefore), string(targetAfter))
}

// Test move input validation
func TestNakamaStashSystem_Move_Validation(t *testing.T) {
	stash := newStashFixture(t, basicFoodCatalog(), backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_a", "")
	require.NoError(t, err)
	_, err = stash.CreateInventory(ctx, logger, nk, "user_1", "inv_b", "")
	require.NoError(t, err)
	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_a", 0, &ItemInstance{Id: "burger", Count: 3}))

	_, err = stash.Move(ctx, logger, nk, "inv_a", 9, "inv_b", 1)
	assert.ErrorIs(t, err, ErrSlotOutOfRange)
	_, err = stash.Move(ctx, logger, nk, "inv_a", 1, "inv_b", 1)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
	_, err = stash.Move(ctx, logger, nk, "inv_a", 0, "inv_b", 4)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
	_, err = stash.Move(ctx, logger, nk, "inv_a", 0, "inv_missing", 1)
	assert.ErrorIs(t, err, ErrInventoryNotFound)
}

// Test stack splitting within an inventory
func TestNakamaStashSystem_SplitStack(t *testing.T) {
	stash := newStashFixture(t, basicFoodCatalog(), backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_main", "")
	require.NoError(t, err)
	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_main", 1, &ItemInstance{Id: "burger", Count: 7}))
	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_main", 2, &ItemInstance{Id: "anvil", Count: 1}))

	// The carved stack lands in the lowest empty slot.
	index, err := stash.SplitStack(ctx, logger, nk, "inv_main", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, index)

	inv, err := stash.GetInventory(ctx, logger, nk, "inv_main")
	require.NoError(t, err)
	assert.Equal(t, int64(3), inv.Slots[0].Item.Count)
	assert.Equal(t, int64(4), inv.Slots[1].Item.Count)
	assert.NotEqual(t, inv.Slots[1].Item.InstanceId, inv.Slots[0].Item.InstanceId)

	// Splitting the whole stack, more, zero, or a non-stackable item is invalid.
	_, err = stash.SplitStack(ctx, logger, nk, "inv_main", 1, 4)
	assert.ErrorIs(t, err, ErrBadInput)
	_, err = stash.SplitStack(ctx, logger, nk, "inv_main", 1, 0)
	assert.ErrorIs(t, err, ErrBadInput)
	_, err = stash.SplitStack(ctx, logger, nk, "inv_main", 2, 1)
	assert.ErrorIs(t, err, ErrBadInput)
	_, err = stash.SplitStack(ctx, logger, nk, "inv_main", 4, 1)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
}

// Test snapshot determinism and restore fidelity
func TestNakamaStashSystem_SnapshotRestore(t *testing.T) {
	items := basicFoodCatalog()
	items["satchel"] = &CatalogConfigItem{
		Weight:    15,
		Container: &CatalogConfigContainer{SlotCount: 4, MaxWeight: 2000},
	}
	stash := newStashFixture(t, items, backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_main", "")
	require.NoError(t, err)
	_, err = stash.GrantItem(ctx, logger, nk, "inv_main", "burger", 12)
	require.NoError(t, err)
	_, err = stash.GrantItem(ctx, logger, nk, "inv_main", "satchel", 1)
	require.NoError(t, err)

	inv, err := stash.GetInventory(ctx, logger, nk, "inv_main")
	require.NoError(t, err)
	nestedID := inv.Slots[2].Item.ContainerId
	require.NotEmpty(t, nestedID)
	_, err = stash.GrantItem(ctx, logger, nk, nestedID, "fries", 5)
	require.NoError(t, err)

	// Equal state serializes to equal bytes.
	first, err := stash.Snapshot(ctx, logger, "inv_main")
	require.NoError(t, err)
	second, err := stash.Snapshot(ctx, logger, "inv_main")
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	// A fresh system restores the tree with full fidelity.
	other := newStashFixture(t, items, backpackProfile())
	restored, err := other.Restore(ctx, logger, nk, "inv_main", first)
	require.NoError(t, err)
	assert.Equal(t, "inv_main", restored.Id)

	replay, err := other.Snapshot(ctx, logger, "inv_main")
	require.NoError(t, err)
	assert.Equal(t, string(first), string(replay))

	nested, err := other.GetInventory(ctx, logger, nk, nestedID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), nested.Slots[0].Item.Count)
}

// Test restore input validation
func TestNakamaStashSystem_Restore_Validation(t *testing.T) {
	stash := newStashFixture(t, basicFoodCatalog(), backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_main", "")
	require.NoError(t, err)
	data, err := stash.Snapshot(ctx, logger, "inv_main")
	require.NoError(t, err)

	_, err = stash.Restore(ctx, logger, nk, "inv_main", data)
	assert.ErrorIs(t, err, ErrInventoryExists)
	_, err = stash.Restore(ctx, logger, nk, "other_id", data)
	assert.ErrorIs(t, err, ErrBadInput)
	_, err = stash.Restore(ctx, logger, nk, "inv_x", []byte("{not json"))
	assert.ErrorIs(t, err, ErrPayloadDecode)
}

// Test persistence through the storage engine
func TestNakamaStashSystem_PersistAndLoad(t *testing.T) {
	config := backpackProfile()
	config.AutoPersist = true
	config.StorageCollection = "test_stash"
	stash := newStashFixture(t, basicFoodCatalog(), config)
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_main", "")
	require.NoError(t, err)
	_, err = stash.GrantItem(ctx, logger, nk, "inv_main", "burger", 3)
	require.NoError(t, err)

	// Every committed mutation lands in storage under the system user.
	stored, ok := nk.StoredValue("test_stash", "inv_main")
	require.True(t, ok)
	assert.Contains(t, stored, "burger")

	// A fresh system loads the persisted tree.
	other := newStashFixture(t, basicFoodCatalog(), config)
	loaded, err := other.LoadInventory(ctx, logger, nk, "inv_main")
	require.NoError(t, err)
	assert.Equal(t, int64(3), loaded.Slots[0].Item.Count)

	_, err = other.LoadInventory(ctx, logger, nk, "inv_missing")
	assert.ErrorIs(t, err, ErrInventoryNotFound)

	// Destroying the inventory clears the stored object.
	require.NoError(t, stash.DestroyInventory(ctx, logger, nk, "inv_main"))
	_, ok = nk.StoredValue("test_stash", "inv_main")
	assert.False(t, ok)
}

// Test destroying a root drops its nested inventories, and nested roots cannot be destroyed
func TestNakamaStashSystem_DestroyInventory(t *testing.T) {
	items := basicFoodCatalog()
	items["satchel"] = &CatalogConfigItem{
		Weight:    15,
		Container: &CatalogConfigContainer{SlotCount: 4},
	}
	stash := newStashFixture(t, items, backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_main", "")
	require.NoError(t, err)
	_, err = stash.GrantItem(ctx, logger, nk, "inv_main", "satchel", 1)
	require.NoError(t, err)

	inv, err := stash.GetInventory(ctx, logger, nk, "inv_main")
	require.NoError(t, err)
	nestedID := inv.Slots[0].Item.ContainerId

	err = stash.DestroyInventory(ctx, logger, nk, nestedID)
	assert.ErrorIs(t, err, ErrBadInput)

	require.NoError(t, stash.DestroyInventory(ctx, logger, nk, "inv_main"))
	_, err = stash.GetInventory(ctx, logger, nk, "inv_main")
	assert.ErrorIs(t, err, ErrInventoryNotFound)
	_, err = stash.GetInventory(ctx, logger, nk, nestedID)
	assert.ErrorIs(t, err, ErrInventoryNotFound)
}

// Test item watchers receive resulting totals after commit
func TestNakamaStashSystem_ItemWatchers(t *testing.T) {
	stash := newStashFixture(t, basicFoodCatalog(), backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	type watch struct {
		inventoryID string
		itemName    string
		total       int64
	}
	var added, removed []watch
	stash.SetOnItemAdded(func(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID, itemName string, totalCount int64) {
		added = append(added, watch{inventoryID, itemName, totalCount})
	})
	stash.SetOnItemRemoved(func(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID, itemName string, totalCount int64) {
		removed = append(removed, watch{inventoryID, itemName, totalCount})
	})

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_a", "")
	require.NoError(t, err)
	_, err = stash.CreateInventory(ctx, logger, nk, "user_1", "inv_b", "")
	require.NoError(t, err)

	_, err = stash.GrantItem(ctx, logger, nk, "inv_a", "burger", 5)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, watch{"inv_a", "burger", 5}, added[0])

	// A cross-inventory move lowers one side and raises the other.
	_, err = stash.Move(ctx, logger, nk, "inv_a", 0, "inv_b", 2)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, watch{"inv_a", "burger", 3}, removed[0])
	require.Len(t, added, 2)
	assert.Equal(t, watch{"inv_b", "burger", 2}, added[1])

	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_a", 0, nil))
	require.Len(t, removed, 2)
	assert.Equal(t, watch{"inv_a", "burger", 0}, removed[1])
}

// Test the degrade sweep clears expired instances and reports totals once per item
func TestNakamaStashSystem_SweepDegraded(t *testing.T) {
	items := map[string]*CatalogConfigItem{
		"ration": {Stackable: true, StackMax: 10, DegradeMinutes: 30},
		"brick":  {Weight: 100},
	}
	stash := newStashFixture(t, items, backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_main", "")
	require.NoError(t, err)

	now := time.Now().Unix()
	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_main", 0, &ItemInstance{
		Id: "ration", Count: 4, DegradeExpirySec: now - 10,
	}))
	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_main", 1, &ItemInstance{
		Id: "ration", Count: 2, DegradeExpirySec: now + 3600,
	}))
	require.NoError(t, stash.SetSlot(ctx, logger, nk, "inv_main", 2, &ItemInstance{Id: "brick", Count: 1}))

	var removed []int64
	stash.SetOnItemRemoved(func(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID, itemName string, totalCount int64) {
		removed = append(removed, totalCount)
	})

	count, err := stash.SweepDegraded(ctx, logger, nk, "inv_main", now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	inv, err := stash.GetInventory(ctx, logger, nk, "inv_main")
	require.NoError(t, err)
	assert.Nil(t, inv.Slots[0].Item)
	require.NotNil(t, inv.Slots[1].Item)
	assert.Equal(t, int64(2), inv.Slots[1].Item.Count)
	require.NotNil(t, inv.Slots[2].Item)

	// One removal event carrying the surviving total.
	require.Len(t, removed, 1)
	assert.Equal(t, int64(2), removed[0])

	// Nothing further to sweep.
	count, err = stash.SweepDegraded(ctx, logger, nk, "inv_main", now)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

// Test granted degradable items pick up their expiry from the catalog
func TestNakamaStashSystem_GrantItem_DegradeExpiry(t *testing.T) {
	items := map[string]*CatalogConfigItem{
		"ration": {Stackable: true, StackMax: 10, DegradeMinutes: 30},
	}
	stash := newStashFixture(t, items, backpackProfile())
	logger := &mockStashLogger{}
	nk := NewTestStashNakama(t)
	ctx := context.Background()

	_, err := stash.CreateInventory(ctx, logger, nk, "user_1", "inv_main", "")
	require.NoError(t, err)

	before := time.Now().Unix()
	_, err = stash.GrantItem(ctx, logger, nk, "inv_main", "ration", 2)
	require.NoError(t, err)

	slot, err := stash.GetSlot(ctx, logger, "inv_main", 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, slot.Item.DegradeExpirySec, before+30*60)
}
