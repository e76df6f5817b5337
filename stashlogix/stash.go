package stashlogix

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

var (
	ErrInventoryNotFound           = runtime.NewError("inventory not found", NOT_FOUND_ERROR_CODE)
	ErrInventoryExists             = runtime.NewError("inventory already exists", INVALID_ARGUMENT_ERROR_CODE)
	ErrInventoryAccessDenied       = runtime.NewError("inventory access denied", PERMISSION_DENIED_ERROR_CODE)
	ErrSlotOutOfRange              = runtime.NewError("slot index out of range", INVALID_ARGUMENT_ERROR_CODE)
	ErrSlotOccupied                = runtime.NewError("slot already holds another item", FAILED_PRECONDITION_ERROR_CODE)
	ErrCapacityExceeded            = runtime.NewError("inventory capacity exceeded", FAILED_PRECONDITION_ERROR_CODE)
	ErrInsufficientQuantity        = runtime.NewError("insufficient item quantity", FAILED_PRECONDITION_ERROR_CODE)
	ErrContainerConstraintViolated = runtime.NewError("container constraint violated", FAILED_PRECONDITION_ERROR_CODE)
	ErrCycleDetected               = runtime.NewError("container nesting cycle detected", FAILED_PRECONDITION_ERROR_CODE)
)

// ItemWatchFn observes committed slot mutations. It receives the resulting total quantity of the
// named item across the whole inventory, after the mutation.
type ItemWatchFn func(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID, itemName string, totalCount int64)

// The StashSystem owns every inventory: the mapping of inventory to ordered slots to item
// instances, the per-inventory weight and slot-count caps, the recursive container constraints,
// and the snapshot/restore persistence surface.
//
// All mutations of an inventory, and of any inventory nested inside one of its container items,
// are serialized through a mutual-exclusion handle keyed by the root ancestor's identifier.
// Methods on this interface acquire and release that handle themselves.
type StashSystem interface {
	System

	// CreateInventory allocates a new inventory with the capacity of the named profile, or the
	// configured default profile when profile is empty. When inventoryID is empty a new
	// identifier is generated. Registered personalizers may override the profile per user.
	CreateInventory(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID, inventoryID, profile string) (*Inventory, error)

	// GetInventory returns a point-in-time copy of the inventory.
	GetInventory(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string) (*Inventory, error)

	// DestroyInventory removes the inventory and, recursively, the nested inventories of any
	// container items it holds.
	DestroyInventory(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string) error

	// GetSlot returns a copy of a single slot.
	GetSlot(ctx context.Context, logger runtime.Logger, inventoryID string, index int) (*Slot, error)

	// SetSlot places an instance into the given slot, or clears the slot when instance is nil.
	// The write is atomic: if the resulting state would violate the inventory's weight cap, the
	// container constraints, or the slot range, nothing changes.
	SetSlot(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string, index int, instance *ItemInstance) error

	// MergeOrPlace stores the instance in the lowest-index compatible stack with room, or else
	// the lowest-index empty slot satisfying the container constraints, and reports the index
	// used. The ordering is deterministic so replays reproduce placements exactly.
	MergeOrPlace(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string, instance *ItemInstance) (int, error)

	// GrantItem mints count new units of a catalog item into the inventory and returns the slot
	// indexes used. Non-stackable items mint one instance per unit.
	GrantItem(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID, itemName string, count int64) ([]int, error)

	// Move transfers quantity units from the source slot into the target inventory, merging onto
	// an existing stack when possible. A quantity of zero or the full stack size moves the whole
	// instance, preserving its identity; a partial quantity splits off a new instance. Both
	// inventories change together or not at all.
	Move(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, sourceInventoryID string, sourceIndex int, targetInventoryID string, quantity int64) (int, error)

	// SplitStack carves quantity units off the stack at index into a new instance placed in the
	// lowest empty slot of the same inventory.
	SplitStack(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string, index int, quantity int64) (int, error)

	// CanAccept reports whether the target inventory's container constraints admit the instance:
	// the deny list is checked first and always wins, then the allow list, then cycle detection
	// over the nesting graph.
	CanAccept(ctx context.Context, logger runtime.Logger, targetInventoryID string, instance *ItemInstance) error

	// EffectiveWeight recomputes the inventory's aggregate weight from its slot contents,
	// descending into nested containers.
	EffectiveWeight(ctx context.Context, logger runtime.Logger, inventoryID string) (int64, error)

	// Snapshot serializes the inventory and its nested containers. The format is opaque beyond
	// round-trip fidelity with Restore.
	Snapshot(ctx context.Context, logger runtime.Logger, inventoryID string) ([]byte, error)

	// Restore materializes a previously snapshotted inventory under the given identifier.
	Restore(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string, data []byte) (*Inventory, error)

	// Persist writes the inventory's snapshot to the storage engine.
	Persist(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string) error

	// LoadInventory restores an inventory from the storage engine.
	LoadInventory(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string) (*Inventory, error)

	// SweepDegraded clears expired degradable instances from the inventory tree and reports how
	// many instances were removed.
	SweepDegraded(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string, nowSec int64) (int, error)

	// SetOnItemAdded sets a watcher invoked after any committed mutation that raised an item's
	// total quantity in an inventory.
	SetOnItemAdded(fn ItemWatchFn)

	// SetOnItemRemoved sets a watcher invoked after any committed mutation that lowered an
	// item's total quantity in an inventory.
	SetOnItemRemoved(fn ItemWatchFn)
}

// StashConfig is the data definition for the StashSystem type.
type StashConfig struct {
	Profiles          map[string]*StashConfigProfile `json:"profiles,omitempty"`
	DefaultProfile    string                         `json:"default_profile,omitempty"`
	AutoPersist       bool                           `json:"auto_persist,omitempty"`
	StorageCollection string                         `json:"storage_collection,omitempty"`
	DegradeSweepCron  string                         `json:"degrade_sweep_cron,omitempty"`
}

// StashConfigProfile is a named capacity shape for newly created inventories.
type StashConfigProfile struct {
	SlotCount int   `json:"slot_count,omitempty"`
	MaxWeight int64 `json:"max_weight,omitempty"`
}

// Inventory is a capacity-bounded ordered collection of slots. It belongs either to an owning
// entity (player, world stash) or, when ParentId is set, to a container item instance stored in
// another inventory.
type Inventory struct {
	Id            string  `json:"id"`
	OwnerId       string  `json:"owner_id,omitempty"`
	Profile       string  `json:"profile,omitempty"`
	SlotCount     int     `json:"slot_count"`
	MaxWeight     int64   `json:"max_weight"`
	Slots         []*Slot `json:"slots"`
	Weight        int64   `json:"weight"`
	ParentId      string  `json:"parent_id,omitempty"`
	ParentSlot    int     `json:"parent_slot,omitempty"`
	CreateTimeSec int64   `json:"create_time_sec,omitempty"`
	NextSweepSec  int64   `json:"next_sweep_sec,omitempty"`
}

// Slot is a single storage position within an inventory, holding at most one item instance.
type Slot struct {
	Index int           `json:"index"`
	Item  *ItemInstance `json:"item,omitempty"`
}

// ItemInstance is a concrete occurrence of a catalog item. A slot exclusively owns its instance:
// moves transfer the instance, never copy it, except for an explicit stack split which mints a
// new instance of the carved-off quantity.
type ItemInstance struct {
	Id               string `json:"id"`
	InstanceId       string `json:"instance_id"`
	Count            int64  `json:"count"`
	ContainerId      string `json:"container_id,omitempty"`
	DegradeExpirySec int64  `json:"degrade_expiry_sec,omitempty"`

	StringProperties  map[string]string  `json:"string_properties,omitempty"`
	NumericProperties map[string]float64 `json:"numeric_properties,omitempty"`
}
