package stashlogix

import (
	"context"
	"encoding/json"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/robfig/cron/v3"
)

const (
	stashStorageCollection = "stash_inventories"
	snapshotFormatVersion  = 1
)

// personalizerProvider is implemented by the Stashlogix instance so systems can consult the
// registered personalizers at runtime.
type personalizerProvider interface {
	Personalizers() []Personalizer
}

// watchEvent records a committed quantity change, fired to the item watchers after the tree
// handle is released.
type watchEvent struct {
	inventoryID string
	itemName    string
	total       int64
	added       bool
}

// inventorySnapshot is the serialized form of an inventory together with every inventory nested
// inside its container items. Field order and map key order are stable under encoding/json, so
// equal states produce equal bytes.
type inventorySnapshot struct {
	Format int                   `json:"format"`
	Root   *Inventory            `json:"root"`
	Nested map[string]*Inventory `json:"nested,omitempty"`
}

// NakamaStashSystem implements the StashSystem interface using Nakama as the backend.
type NakamaStashSystem struct {
	config     *StashConfig
	stashlogix Stashlogix

	arenaMu sync.RWMutex
	arena   map[string]*Inventory

	lockMu sync.Mutex
	locks  map[string]chan struct{}

	onItemAdded   ItemWatchFn
	onItemRemoved ItemWatchFn
}

// NewNakamaStashSystem creates a new instance of the stash system with the given configuration.
func NewNakamaStashSystem(config *StashConfig) *NakamaStashSystem {
	if config == nil {
		config = &StashConfig{}
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]*StashConfigProfile)
	}
	if config.StorageCollection == "" {
		config.StorageCollection = stashStorageCollection
	}

	return &NakamaStashSystem{
		config: config,
		arena:  make(map[string]*Inventory),
		locks:  make(map[string]chan struct{}),
	}
}

// GetType returns the system type for the stash system.
func (s *NakamaStashSystem) GetType() SystemType {
	return SystemTypeStash
}

// GetConfig returns the configuration for the stash system.
func (s *NakamaStashSystem) GetConfig() any {
	return s.config
}

// SetStashlogix sets the Stashlogix instance for this stash system.
func (s *NakamaStashSystem) SetStashlogix(sl Stashlogix) {
	s.stashlogix = sl
}

// SetOnItemAdded sets a watcher invoked after any committed mutation that raised an item's total.
func (s *NakamaStashSystem) SetOnItemAdded(fn ItemWatchFn) {
	s.onItemAdded = fn
}

// SetOnItemRemoved sets a watcher invoked after any committed mutation that lowered an item's total.
func (s *NakamaStashSystem) SetOnItemRemoved(fn ItemWatchFn) {
	s.onItemRemoved = fn
}

func (s *NakamaStashSystem) getCatalogSystem() (CatalogSystem, error) {
	if s.stashlogix == nil {
		return nil, ErrSystemNotAvailable
	}
	catalogSystem := s.stashlogix.GetCatalogSystem()
	if catalogSystem == nil {
		return nil, ErrSystemNotAvailable
	}
	return catalogSystem, nil
}

// lockHandle returns the mutual-exclusion handle for a root inventory, creating it on first use.
func (s *NakamaStashSystem) lockHandle(rootID string) chan struct{} {
	s.lockMu.Lock()
	handle, ok := s.locks[rootID]
	if !ok {
		handle = make(chan struct{}, 1)
		s.locks[rootID] = handle
	}
	s.lockMu.Unlock()
	return handle
}

// lockRoot serializes on the root ancestor of the inventory's tree. The returned release
// function may be called from any goroutine, which lets an action keep the handle across a
// client round trip and have either the acknowledgement or a timeout release it.
func (s *NakamaStashSystem) lockRoot(ctx context.Context, inventoryID string) (string, func(), error) {
	for {
		rootID, err := s.resolveRoot(inventoryID)
		if err != nil {
			return "", nil, err
		}
		handle := s.lockHandle(rootID)
		select {
		case handle <- struct{}{}:
		case <-ctx.Done():
			return "", nil, ctx.Err()
		}

		// The inventory may have been re-parented into another tree while waiting, so confirm
		// the handle still covers it before handing it out.
		currentID, err := s.resolveRoot(inventoryID)
		if err == nil && currentID == rootID {
			return rootID, func() { <-handle }, nil
		}
		<-handle
		if err != nil {
			return "", nil, err
		}
	}
}

// lockRoots serializes on the trees of both inventories. When the trees differ the two handles
// are always taken in lexicographic order of their root identifiers so concurrent cross-tree
// operations cannot deadlock.
func (s *NakamaStashSystem) lockRoots(ctx context.Context, firstID, secondID string) (string, string, func(), error) {
	for {
		firstRoot, err := s.resolveRoot(firstID)
		if err != nil {
			return "", "", nil, err
		}
		secondRoot, err := s.resolveRoot(secondID)
		if err != nil {
			return "", "", nil, err
		}

		if firstRoot == secondRoot {
			rootID, release, err := s.lockRoot(ctx, firstID)
			if err != nil {
				return "", "", nil, err
			}
			currentID, err := s.resolveRoot(secondID)
			if err != nil {
				release()
				return "", "", nil, err
			}
			if currentID != rootID {
				release()
				continue
			}
			return rootID, rootID, release, nil
		}

		lowID, highID := firstRoot, secondRoot
		if lowID > highID {
			lowID, highID = highID, lowID
		}
		lowHandle := s.lockHandle(lowID)
		highHandle := s.lockHandle(highID)
		select {
		case lowHandle <- struct{}{}:
		case <-ctx.Done():
			return "", "", nil, ctx.Err()
		}
		select {
		case highHandle <- struct{}{}:
		case <-ctx.Done():
			<-lowHandle
			return "", "", nil, ctx.Err()
		}

		firstCurrent, err1 := s.resolveRoot(firstID)
		secondCurrent, err2 := s.resolveRoot(secondID)
		if err1 == nil && err2 == nil && firstCurrent == firstRoot && secondCurrent == secondRoot {
			release := func() {
				<-highHandle
				<-lowHandle
			}
			return firstRoot, secondRoot, release, nil
		}
		<-highHandle
		<-lowHandle
		if err1 != nil {
			return "", "", nil, err1
		}
		if err2 != nil {
			return "", "", nil, err2
		}
	}
}

// CreateInventory allocates a new root inventory shaped by the named capacity profile.
func (s *NakamaStashSystem) CreateInventory(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID, inventoryID, profile string) (*Inventory, error) {
	profileName := profile
	if profileName == "" {
		profileName = s.config.DefaultProfile
	}
	prof := s.config.Profiles[profileName]

	// Personalizers may swap in a per-user capacity profile.
	if s.stashlogix != nil {
		if provider, ok := s.stashlogix.(personalizerProvider); ok && userID != "" {
			for _, personalizer := range provider.Personalizers() {
				value, err := personalizer.GetValue(ctx, logger, nk, s, userID)
				if err != nil {
					logger.Warn("Error requesting personalized stash config: %v", err)
					continue
				}
				if override, ok := value.(*StashConfig); ok && override != nil {
					if p, ok := override.Profiles[profileName]; ok && p != nil {
						prof = p
					}
				}
			}
		}
	}

	if prof == nil || prof.SlotCount <= 0 {
		logger.Error("Unknown or invalid stash profile: %q", profileName)
		return nil, ErrBadInput
	}

	if inventoryID == "" {
		inventoryID = uuid.New().String()
	}

	now := time.Now().Unix()
	inv := &Inventory{
		Id:            inventoryID,
		OwnerId:       userID,
		Profile:       profileName,
		SlotCount:     prof.SlotCount,
		MaxWeight:     prof.MaxWeight,
		Slots:         make([]*Slot, prof.SlotCount),
		CreateTimeSec: now,
		NextSweepSec:  s.nextSweepSec(logger, now),
	}
	for i := range inv.Slots {
		inv.Slots[i] = &Slot{Index: i}
	}

	s.arenaMu.Lock()
	if _, exists := s.arena[inventoryID]; exists {
		s.arenaMu.Unlock()
		return nil, ErrInventoryExists
	}
	s.arena[inventoryID] = inv
	s.arenaMu.Unlock()

	if s.config.AutoPersist {
		rootID, release, err := s.lockRoot(ctx, inventoryID)
		if err == nil {
			if err := s.persistLocked(ctx, logger, nk, rootID); err != nil {
				logger.Error("Failed to persist new inventory %s: %v", inventoryID, err)
			}
			release()
		}
	}

	return copyInventory(inv), nil
}

// GetInventory returns a point-in-time copy of the inventory, sweeping degraded items first when
// the sweep schedule is due.
func (s *NakamaStashSystem) GetInventory(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string) (*Inventory, error) {
	rootID, release, err := s.lockRoot(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	events := s.maybeSweepLocked(ctx, logger, nk, rootID)

	inv, ok := s.inventory(inventoryID)
	if !ok {
		release()
		return nil, ErrInventoryNotFound
	}
	snapshot := copyInventory(inv)
	release()

	s.fireWatchEvents(ctx, logger, nk, events)
	return snapshot, nil
}

// DestroyInventory removes a root inventory and every inventory nested under it.
func (s *NakamaStashSystem) DestroyInventory(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string) error {
	rootID, release, err := s.lockRoot(ctx, inventoryID)
	if err != nil {
		return err
	}
	defer release()

	inv, ok := s.inventory(inventoryID)
	if !ok {
		return ErrInventoryNotFound
	}
	if inv.ParentId != "" {
		// Nested inventories live and die with their container item. Clear the holding slot
		// instead of destroying them directly.
		return ErrBadInput
	}

	removed := make([]string, 0, 1)
	s.collectTree(inventoryID, func(tree *Inventory) {
		removed = append(removed, tree.Id)
	})

	s.arenaMu.Lock()
	for _, id := range removed {
		delete(s.arena, id)
	}
	s.arenaMu.Unlock()

	s.lockMu.Lock()
	delete(s.locks, rootID)
	s.lockMu.Unlock()

	if s.config.AutoPersist {
		if err := nk.StorageDelete(ctx, []*runtime.StorageDelete{{
			Collection: s.config.StorageCollection,
			Key:        inventoryID,
		}}); err != nil {
			logger.Error("Failed to delete persisted inventory %s: %v", inventoryID, err)
		}
	}

	return nil
}

// GetSlot returns a copy of a single slot.
func (s *NakamaStashSystem) GetSlot(ctx context.Context, logger runtime.Logger, inventoryID string, index int) (*Slot, error) {
	_, release, err := s.lockRoot(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	defer release()

	inv, ok := s.inventory(inventoryID)
	if !ok {
		return nil, ErrInventoryNotFound
	}
	if index < 0 || index >= len(inv.Slots) {
		return nil, ErrSlotOutOfRange
	}
	return copySlot(inv.Slots[index]), nil
}

// SetSlot places an instance into the given slot, or clears the slot when instance is nil.
func (s *NakamaStashSystem) SetSlot(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string, index int, instance *ItemInstance) error {
	rootID, release, err := s.lockRoot(ctx, inventoryID)
	if err != nil {
		return err
	}

	events, err := s.setSlotLocked(ctx, logger, rootID, inventoryID, index, instance)
	if err == nil {
		s.autoPersistLocked(ctx, logger, nk, rootID)
	}
	release()
	if err != nil {
		return err
	}

	s.fireWatchEvents(ctx, logger, nk, events)
	return nil
}

func (s *NakamaStashSystem) setSlotLocked(ctx context.Context, logger runtime.Logger, rootID, inventoryID string, index int, instance *ItemInstance) ([]watchEvent, error) {
	inv, ok := s.inventory(inventoryID)
	if !ok {
		return nil, ErrInventoryNotFound
	}
	if index < 0 || index >= len(inv.Slots) {
		return nil, ErrSlotOutOfRange
	}
	slot := inv.Slots[index]

	if instance == nil {
		if slot.Item == nil {
			return nil, nil
		}
		removedName := slot.Item.Id
		removedContainer := slot.Item.ContainerId
		slot.Item = nil
		if removedContainer != "" {
			s.dropNestedLocked(removedContainer)
		}
		if _, err := s.recomputeTree(ctx, logger, rootID); err != nil {
			logger.Error("Failed to recompute weights after clearing slot %d of %s: %v", index, inventoryID, err)
		}
		return []watchEvent{{inventoryID: inventoryID, itemName: removedName, total: totalCount(inv, removedName), added: false}}, nil
	}

	catalogSystem, err := s.getCatalogSystem()
	if err != nil {
		return nil, err
	}
	def, err := catalogSystem.GetItem(ctx, logger, instance.Id)
	if err != nil {
		return nil, err
	}
	if instance.Count <= 0 {
		return nil, ErrBadInput
	}
	if !def.Stackable && instance.Count != 1 {
		return nil, ErrBadInput
	}
	if def.Stackable && def.StackMax > 0 && instance.Count > def.StackMax {
		return nil, ErrCapacityExceeded
	}

	if slot.Item != nil && slot.Item.InstanceId != instance.InstanceId {
		return nil, ErrSlotOccupied
	}

	if instance.InstanceId == "" {
		instance.InstanceId = uuid.New().String()
	}

	if err := s.canAcceptLocked(ctx, logger, inv, instance); err != nil {
		return nil, err
	}

	before := totalCount(inv, instance.Id)
	previous := slot.Item
	slot.Item = instance

	var prevParentID string
	var prevParentSlot int
	var nested *Inventory
	if instance.ContainerId != "" {
		if nested, ok = s.inventory(instance.ContainerId); !ok {
			slot.Item = previous
			return nil, ErrInventoryNotFound
		}
		prevParentID, prevParentSlot = nested.ParentId, nested.ParentSlot
		nested.ParentId, nested.ParentSlot = inv.Id, index
	}

	if _, err := s.recomputeTree(ctx, logger, rootID); err != nil {
		slot.Item = previous
		if nested != nil {
			nested.ParentId, nested.ParentSlot = prevParentID, prevParentSlot
		}
		if _, rerr := s.recomputeTree(ctx, logger, rootID); rerr != nil {
			logger.Error("Failed to recompute weights after reverting slot %d of %s: %v", index, inventoryID, rerr)
		}
		return nil, err
	}
	if nested != nil {
		s.adoptSubtreeLocked(nested.Id, rootID)
	}

	return diffEvents(inventoryID, instance.Id, before, totalCount(inv, instance.Id)), nil
}

// MergeOrPlace stores the instance in the lowest-index compatible stack or empty slot.
func (s *NakamaStashSystem) MergeOrPlace(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string, instance *ItemInstance) (int, error) {
	rootID, release, err := s.lockRoot(ctx, inventoryID)
	if err != nil {
		return -1, err
	}

	index, events, err := s.mergeOrPlaceLocked(ctx, logger, rootID, inventoryID, instance)
	if err == nil {
		s.autoPersistLocked(ctx, logger, nk, rootID)
	}
	release()
	if err != nil {
		return -1, err
	}

	s.fireWatchEvents(ctx, logger, nk, events)
	return index, nil
}

// mergeOrPlaceLocked implements the deterministic placement rule: merge into the lowest-index
// stack able to absorb the whole quantity, otherwise place into the lowest-index empty slot.
// The mutation is atomic, a failed revalidation leaves the tree untouched.
func (s *NakamaStashSystem) mergeOrPlaceLocked(ctx context.Context, logger runtime.Logger, rootID, inventoryID string, instance *ItemInstance) (int, []watchEvent, error) {
	if instance == nil || instance.Count <= 0 {
		return -1, nil, ErrBadInput
	}
	inv, ok := s.inventory(inventoryID)
	if !ok {
		return -1, nil, ErrInventoryNotFound
	}
	catalogSystem, err := s.getCatalogSystem()
	if err != nil {
		return -1, nil, err
	}
	def, err := catalogSystem.GetItem(ctx, logger, instance.Id)
	if err != nil {
		return -1, nil, err
	}
	if !def.Stackable && instance.Count != 1 {
		return -1, nil, ErrBadInput
	}
	if def.Stackable && def.StackMax > 0 && instance.Count > def.StackMax {
		return -1, nil, ErrCapacityExceeded
	}
	if instance.InstanceId == "" {
		instance.InstanceId = uuid.New().String()
	}

	if err := s.canAcceptLocked(ctx, logger, inv, instance); err != nil {
		return -1, nil, err
	}

	before := totalCount(inv, instance.Id)

	if def.Stackable {
		for _, slot := range inv.Slots {
			held := slot.Item
			if held == nil || !sameStack(held, instance) {
				continue
			}
			if def.StackMax > 0 && held.Count+instance.Count > def.StackMax {
				continue
			}

			previousCount := held.Count
			held.Count += instance.Count
			if _, err := s.recomputeTree(ctx, logger, rootID); err != nil {
				held.Count = previousCount
				if _, rerr := s.recomputeTree(ctx, logger, rootID); rerr != nil {
					logger.Error("Failed to recompute weights after reverting merge in %s: %v", inventoryID, rerr)
				}
				return -1, nil, err
			}
			return slot.Index, diffEvents(inventoryID, instance.Id, before, totalCount(inv, instance.Id)), nil
		}
	}

	for _, slot := range inv.Slots {
		if slot.Item != nil {
			continue
		}

		slot.Item = instance
		var prevParentID string
		var prevParentSlot int
		var nested *Inventory
		if instance.ContainerId != "" {
			if nested, ok = s.inventory(instance.ContainerId); !ok {
				slot.Item = nil
				return -1, nil, ErrInventoryNotFound
			}
			prevParentID, prevParentSlot = nested.ParentId, nested.ParentSlot
			nested.ParentId, nested.ParentSlot = inv.Id, slot.Index
		}

		if _, err := s.recomputeTree(ctx, logger, rootID); err != nil {
			slot.Item = nil
			if nested != nil {
				nested.ParentId, nested.ParentSlot = prevParentID, prevParentSlot
			}
			if _, rerr := s.recomputeTree(ctx, logger, rootID); rerr != nil {
				logger.Error("Failed to recompute weights after reverting placement in %s: %v", inventoryID, rerr)
			}
			return -1, nil, err
		}
		if nested != nil {
			s.adoptSubtreeLocked(nested.Id, rootID)
		}
		return slot.Index, diffEvents(inventoryID, instance.Id, before, totalCount(inv, instance.Id)), nil
	}

	return -1, nil, ErrCapacityExceeded
}

// adoptSubtreeLocked stamps the root's owner onto a nested inventory and everything inside it.
// A nested tree changes hands with its container item.
func (s *NakamaStashSystem) adoptSubtreeLocked(nestedID, rootID string) {
	root, ok := s.inventory(rootID)
	if !ok {
		return
	}
	s.collectTree(nestedID, func(inv *Inventory) {
		inv.OwnerId = root.OwnerId
	})
}

// GrantItem mints count new units of a catalog item into the inventory.
func (s *NakamaStashSystem) GrantItem(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID, itemName string, count int64) ([]int, error) {
	if count <= 0 {
		return nil, ErrBadInput
	}

	rootID, release, err := s.lockRoot(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	indexes, events, err := s.grantItemLocked(ctx, logger, rootID, inventoryID, itemName, count)
	if err == nil {
		s.autoPersistLocked(ctx, logger, nk, rootID)
	}
	release()
	if err != nil {
		return nil, err
	}

	s.fireWatchEvents(ctx, logger, nk, events)
	return indexes, nil
}

func (s *NakamaStashSystem) grantItemLocked(ctx context.Context, logger runtime.Logger, rootID, inventoryID, itemName string, count int64) ([]int, []watchEvent, error) {
	inv, ok := s.inventory(inventoryID)
	if !ok {
		return nil, nil, ErrInventoryNotFound
	}
	catalogSystem, err := s.getCatalogSystem()
	if err != nil {
		return nil, nil, err
	}
	def, err := catalogSystem.GetItem(ctx, logger, itemName)
	if err != nil {
		return nil, nil, err
	}

	before := totalCount(inv, itemName)
	restore := s.saveTree(rootID)
	createdIDs := make([]string, 0, 1)

	revert := func() {
		restore()
		s.arenaMu.Lock()
		for _, id := range createdIDs {
			delete(s.arena, id)
		}
		s.arenaMu.Unlock()
	}

	indexes := make([]int, 0, 1)
	remaining := count
	for remaining > 0 {
		chunk := remaining
		if !def.Stackable {
			chunk = 1
		} else if def.StackMax > 0 && chunk > def.StackMax {
			chunk = def.StackMax
		}

		instance := s.mintInstance(def, chunk)
		if def.Container != nil {
			nestedID := s.createNestedLocked(def)
			createdIDs = append(createdIDs, nestedID)
			instance.ContainerId = nestedID
		}

		index, _, err := s.mergeOrPlaceLocked(ctx, logger, rootID, inventoryID, instance)
		if err != nil {
			revert()
			return nil, nil, err
		}
		indexes = append(indexes, index)
		remaining -= chunk
	}

	return indexes, diffEvents(inventoryID, itemName, before, totalCount(inv, itemName)), nil
}

// mintInstance builds a fresh instance of the definition, seeding its properties and degrade
// deadline from the catalog.
func (s *NakamaStashSystem) mintInstance(def *CatalogConfigItem, count int64) *ItemInstance {
	instance := &ItemInstance{
		Id:         def.Name,
		InstanceId: uuid.New().String(),
		Count:      count,
	}
	if len(def.StringProperties) > 0 {
		instance.StringProperties = maps.Clone(def.StringProperties)
	}
	if len(def.NumericProperties) > 0 {
		instance.NumericProperties = maps.Clone(def.NumericProperties)
	}
	if def.DegradeMinutes > 0 {
		instance.DegradeExpirySec = time.Now().Unix() + def.DegradeMinutes*60
	}
	return instance
}

// createNestedLocked allocates the nested inventory backing a new container item instance.
func (s *NakamaStashSystem) createNestedLocked(def *CatalogConfigItem) string {
	nestedID := uuid.New().String()
	nested := &Inventory{
		Id:            nestedID,
		Profile:       def.Name,
		SlotCount:     def.Container.SlotCount,
		MaxWeight:     def.Container.MaxWeight,
		Slots:         make([]*Slot, def.Container.SlotCount),
		CreateTimeSec: time.Now().Unix(),
	}
	for i := range nested.Slots {
		nested.Slots[i] = &Slot{Index: i}
	}

	s.arenaMu.Lock()
	s.arena[nestedID] = nested
	s.arenaMu.Unlock()
	return nestedID
}

// consumeLocked removes count units of the instance held at the slot, clearing the slot and
// dropping any nested inventory when the stack is exhausted. Returns the resulting total of the
// item across the inventory. The caller must hold the tree's root handle.
func (s *NakamaStashSystem) consumeLocked(ctx context.Context, logger runtime.Logger, rootID, inventoryID string, index int, count int64) (string, int64, []watchEvent, error) {
	inv, ok := s.inventory(inventoryID)
	if !ok {
		return "", 0, nil, ErrInventoryNotFound
	}
	if index < 0 || index >= len(inv.Slots) {
		return "", 0, nil, ErrSlotOutOfRange
	}
	slot := inv.Slots[index]
	if slot.Item == nil {
		return "", 0, nil, ErrInsufficientQuantity
	}
	held := slot.Item
	if count <= 0 || held.Count < count {
		return held.Id, 0, nil, ErrInsufficientQuantity
	}

	itemName := held.Id
	before := totalCount(inv, itemName)
	held.Count -= count
	if held.Count == 0 {
		containerID := held.ContainerId
		slot.Item = nil
		if containerID != "" {
			s.dropNestedLocked(containerID)
		}
	}
	if _, err := s.recomputeTree(ctx, logger, rootID); err != nil {
		logger.Error("Failed to recompute weights after consuming from %s: %v", inventoryID, err)
	}

	remaining := totalCount(inv, itemName)
	return itemName, remaining, diffEvents(inventoryID, itemName, before, remaining), nil
}

// Move transfers quantity units from the source slot into the target inventory.
func (s *NakamaStashSystem) Move(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, sourceInventoryID string, sourceIndex int, targetInventoryID string, quantity int64) (int, error) {
	sourceRoot, targetRoot, release, err := s.lockRoots(ctx, sourceInventoryID, targetInventoryID)
	if err != nil {
		return -1, err
	}

	index, events, err := s.moveLocked(ctx, logger, sourceRoot, targetRoot, sourceInventoryID, sourceIndex, targetInventoryID, quantity)
	if err == nil {
		s.autoPersistLocked(ctx, logger, nk, sourceRoot)
		if targetRoot != sourceRoot {
			s.autoPersistLocked(ctx, logger, nk, targetRoot)
		}
	}
	release()
	if err != nil {
		return -1, err
	}

	s.fireWatchEvents(ctx, logger, nk, events)
	return index, nil
}

// moveLocked moves a whole instance, preserving its identity, or splits off a partial quantity
// as a new instance. Source and target change together or not at all.
func (s *NakamaStashSystem) moveLocked(ctx context.Context, logger runtime.Logger, sourceRoot, targetRoot, sourceInventoryID string, sourceIndex int, targetInventoryID string, quantity int64) (int, []watchEvent, error) {
	source, ok := s.inventory(sourceInventoryID)
	if !ok {
		return -1, nil, ErrInventoryNotFound
	}
	target, ok := s.inventory(targetInventoryID)
	if !ok {
		return -1, nil, ErrInventoryNotFound
	}
	if sourceIndex < 0 || sourceIndex >= len(source.Slots) {
		return -1, nil, ErrSlotOutOfRange
	}
	slot := source.Slots[sourceIndex]
	if slot.Item == nil {
		return -1, nil, ErrInsufficientQuantity
	}
	held := slot.Item
	if quantity < 0 || quantity > held.Count {
		return -1, nil, ErrInsufficientQuantity
	}
	if sourceInventoryID == targetInventoryID && quantity == 0 {
		return sourceIndex, nil, nil
	}

	itemName := held.Id
	sourceBefore := totalCount(source, itemName)
	targetBefore := totalCount(target, itemName)

	restore := s.saveTree(sourceRoot)
	var restoreTarget func()
	if targetRoot != sourceRoot {
		restoreTarget = s.saveTree(targetRoot)
	}
	revert := func() {
		restore()
		if restoreTarget != nil {
			restoreTarget()
		}
	}

	moved := held
	if quantity > 0 && quantity < held.Count {
		// Partial move carves off a new instance, the remainder keeps its identity.
		moved = copyInstance(held)
		moved.InstanceId = uuid.New().String()
		moved.Count = quantity
		held.Count -= quantity
	} else {
		slot.Item = nil
	}

	index, _, err := s.mergeOrPlaceLocked(ctx, logger, targetRoot, targetInventoryID, moved)
	if err != nil {
		revert()
		return -1, nil, err
	}

	if _, err := s.recomputeTree(ctx, logger, sourceRoot); err != nil {
		revert()
		if _, rerr := s.recomputeTree(ctx, logger, sourceRoot); rerr != nil {
			logger.Error("Failed to recompute weights after reverting move from %s: %v", sourceInventoryID, rerr)
		}
		return -1, nil, err
	}

	events := diffEvents(sourceInventoryID, itemName, sourceBefore, totalCount(source, itemName))
	if targetInventoryID != sourceInventoryID {
		events = append(events, diffEvents(targetInventoryID, itemName, targetBefore, totalCount(target, itemName))...)
	}
	return index, events, nil
}

// SplitStack carves quantity units off the stack at index into the lowest empty slot.
func (s *NakamaStashSystem) SplitStack(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string, index int, quantity int64) (int, error) {
	rootID, release, err := s.lockRoot(ctx, inventoryID)
	if err != nil {
		return -1, err
	}
	defer release()

	inv, ok := s.inventory(inventoryID)
	if !ok {
		return -1, ErrInventoryNotFound
	}
	if index < 0 || index >= len(inv.Slots) {
		return -1, ErrSlotOutOfRange
	}
	slot := inv.Slots[index]
	if slot.Item == nil {
		return -1, ErrInsufficientQuantity
	}
	held := slot.Item

	catalogSystem, err := s.getCatalogSystem()
	if err != nil {
		return -1, err
	}
	def, err := catalogSystem.GetItem(ctx, logger, held.Id)
	if err != nil {
		return -1, err
	}
	if !def.Stackable {
		return -1, ErrBadInput
	}
	if quantity <= 0 || quantity >= held.Count {
		return -1, ErrBadInput
	}

	for _, target := range inv.Slots {
		if target.Item != nil {
			continue
		}
		carved := copyInstance(held)
		carved.InstanceId = uuid.New().String()
		carved.Count = quantity
		held.Count -= quantity
		target.Item = carved

		// Total weight is unchanged but the caches still need the per-slot refresh.
		if _, err := s.recomputeTree(ctx, logger, rootID); err != nil {
			logger.Error("Failed to recompute weights after splitting stack in %s: %v", inventoryID, err)
		}
		s.autoPersistLocked(ctx, logger, nk, rootID)
		return target.Index, nil
	}

	return -1, ErrCapacityExceeded
}

// CanAccept reports whether the target inventory's container constraints admit the instance.
func (s *NakamaStashSystem) CanAccept(ctx context.Context, logger runtime.Logger, targetInventoryID string, instance *ItemInstance) error {
	_, release, err := s.lockRoot(ctx, targetInventoryID)
	if err != nil {
		return err
	}
	defer release()

	target, ok := s.inventory(targetInventoryID)
	if !ok {
		return ErrInventoryNotFound
	}
	return s.canAcceptLocked(ctx, logger, target, instance)
}

// EffectiveWeight recomputes the inventory's aggregate weight from its slot contents.
func (s *NakamaStashSystem) EffectiveWeight(ctx context.Context, logger runtime.Logger, inventoryID string) (int64, error) {
	_, release, err := s.lockRoot(ctx, inventoryID)
	if err != nil {
		return 0, err
	}
	defer release()

	weight, err := s.recomputeTree(ctx, logger, inventoryID)
	if err != nil && err != ErrCapacityExceeded {
		return 0, err
	}
	return weight, nil
}

// Snapshot serializes the inventory and its nested containers deterministically.
func (s *NakamaStashSystem) Snapshot(ctx context.Context, logger runtime.Logger, inventoryID string) ([]byte, error) {
	_, release, err := s.lockRoot(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.snapshotLocked(inventoryID)
}

func (s *NakamaStashSystem) snapshotLocked(inventoryID string) ([]byte, error) {
	inv, ok := s.inventory(inventoryID)
	if !ok {
		return nil, ErrInventoryNotFound
	}

	snapshot := &inventorySnapshot{
		Format: snapshotFormatVersion,
		Root:   inv,
	}
	s.collectTree(inventoryID, func(tree *Inventory) {
		if tree.Id == inventoryID {
			return
		}
		if snapshot.Nested == nil {
			snapshot.Nested = make(map[string]*Inventory)
		}
		snapshot.Nested[tree.Id] = tree
	})

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, ErrPayloadEncode
	}
	return data, nil
}

// Restore materializes a previously snapshotted root inventory under the given identifier.
func (s *NakamaStashSystem) Restore(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string, data []byte) (*Inventory, error) {
	snapshot := &inventorySnapshot{}
	if err := json.Unmarshal(data, snapshot); err != nil {
		logger.Error("Failed to decode inventory snapshot: %v", err)
		return nil, ErrPayloadDecode
	}
	if snapshot.Root == nil || snapshot.Root.Id == "" {
		return nil, ErrBadInput
	}
	if inventoryID != "" && snapshot.Root.Id != inventoryID {
		return nil, ErrBadInput
	}
	if snapshot.Root.ParentId != "" {
		// Only whole trees restore, a nested subtree cannot stand alone.
		return nil, ErrBadInput
	}

	normalizeRestored(snapshot.Root)
	for _, nested := range snapshot.Nested {
		normalizeRestored(nested)
	}

	s.arenaMu.Lock()
	if _, exists := s.arena[snapshot.Root.Id]; exists {
		s.arenaMu.Unlock()
		return nil, ErrInventoryExists
	}
	for id := range snapshot.Nested {
		if _, exists := s.arena[id]; exists {
			s.arenaMu.Unlock()
			return nil, ErrInventoryExists
		}
	}
	s.arena[snapshot.Root.Id] = snapshot.Root
	for id, nested := range snapshot.Nested {
		s.arena[id] = nested
	}
	s.arenaMu.Unlock()

	rootID, release, err := s.lockRoot(ctx, snapshot.Root.Id)
	if err != nil {
		return nil, err
	}
	defer release()
	if _, err := s.recomputeTree(ctx, logger, rootID); err != nil && err != ErrCapacityExceeded {
		logger.Error("Failed to recompute weights for restored inventory %s: %v", rootID, err)
	}

	return copyInventory(snapshot.Root), nil
}

// Persist writes the inventory tree's snapshot to the storage engine under the system user.
func (s *NakamaStashSystem) Persist(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string) error {
	_, release, err := s.lockRoot(ctx, inventoryID)
	if err != nil {
		return err
	}
	defer release()

	return s.persistLocked(ctx, logger, nk, inventoryID)
}

func (s *NakamaStashSystem) persistLocked(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string) error {
	data, err := s.snapshotLocked(inventoryID)
	if err != nil {
		return err
	}

	if _, err := nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      s.config.StorageCollection,
		Key:             inventoryID,
		Value:           string(data),
		PermissionRead:  0,
		PermissionWrite: 0,
	}}); err != nil {
		logger.Error("Failed to write inventory %s to storage: %v", inventoryID, err)
		return ErrInternal
	}
	return nil
}

func (s *NakamaStashSystem) autoPersistLocked(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, rootID string) {
	if !s.config.AutoPersist {
		return
	}
	if err := s.persistLocked(ctx, logger, nk, rootID); err != nil {
		logger.Error("Failed to auto-persist inventory %s: %v", rootID, err)
	}
}

// LoadInventory restores an inventory tree from the storage engine.
func (s *NakamaStashSystem) LoadInventory(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string) (*Inventory, error) {
	objects, err := nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: s.config.StorageCollection,
		Key:        inventoryID,
	}})
	if err != nil {
		logger.Error("Failed to read inventory %s from storage: %v", inventoryID, err)
		return nil, ErrInternal
	}
	if len(objects) == 0 {
		return nil, ErrInventoryNotFound
	}

	return s.Restore(ctx, logger, nk, inventoryID, []byte(objects[0].Value))
}

// SweepDegraded clears expired degradable instances from the inventory tree.
func (s *NakamaStashSystem) SweepDegraded(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, inventoryID string, nowSec int64) (int, error) {
	rootID, release, err := s.lockRoot(ctx, inventoryID)
	if err != nil {
		return 0, err
	}

	removed, events := s.sweepTreeLocked(ctx, logger, inventoryID, nowSec)
	if root, ok := s.inventory(rootID); ok && root.NextSweepSec != 0 {
		root.NextSweepSec = s.nextSweepSec(logger, nowSec)
	}
	if removed > 0 {
		s.autoPersistLocked(ctx, logger, nk, rootID)
	}
	release()

	s.fireWatchEvents(ctx, logger, nk, events)
	return removed, nil
}

// maybeSweepLocked runs a due scheduled sweep over the tree and returns the watch events to fire
// after release.
func (s *NakamaStashSystem) maybeSweepLocked(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, rootID string) []watchEvent {
	if s.config.DegradeSweepCron == "" {
		return nil
	}
	root, ok := s.inventory(rootID)
	if !ok {
		return nil
	}
	now := time.Now().Unix()
	if root.NextSweepSec == 0 {
		root.NextSweepSec = s.nextSweepSec(logger, now)
		return nil
	}
	if now < root.NextSweepSec {
		return nil
	}

	removed, events := s.sweepTreeLocked(ctx, logger, rootID, now)
	root.NextSweepSec = s.nextSweepSec(logger, now)
	if removed > 0 {
		s.autoPersistLocked(ctx, logger, nk, rootID)
	}
	return events
}

func (s *NakamaStashSystem) sweepTreeLocked(ctx context.Context, logger runtime.Logger, inventoryID string, nowSec int64) (int, []watchEvent) {
	removed := 0
	touched := make(map[string][]string)

	s.collectTree(inventoryID, func(inv *Inventory) {
		for _, slot := range inv.Slots {
			item := slot.Item
			if item == nil || item.DegradeExpirySec == 0 || item.DegradeExpirySec > nowSec {
				continue
			}
			removed++
			touched[inv.Id] = append(touched[inv.Id], item.Id)
			if item.ContainerId != "" {
				removed += s.dropNestedLocked(item.ContainerId)
			}
			slot.Item = nil
		}
	})

	if removed == 0 {
		return 0, nil
	}
	if _, err := s.recomputeTree(ctx, logger, inventoryID); err != nil {
		logger.Error("Failed to recompute weights after degrade sweep of %s: %v", inventoryID, err)
	}

	events := make([]watchEvent, 0, len(touched))
	for invID, names := range touched {
		inv, ok := s.inventory(invID)
		if !ok {
			continue
		}
		seen := make(map[string]bool, len(names))
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			events = append(events, watchEvent{inventoryID: invID, itemName: name, total: totalCount(inv, name), added: false})
		}
	}
	return removed, events
}

// dropNestedLocked removes a nested inventory subtree from the arena and reports how many item
// instances vanished with it.
func (s *NakamaStashSystem) dropNestedLocked(inventoryID string) int {
	dropped := 0
	ids := make([]string, 0, 1)
	s.collectTree(inventoryID, func(inv *Inventory) {
		ids = append(ids, inv.Id)
		for _, slot := range inv.Slots {
			if slot.Item != nil {
				dropped++
			}
		}
	})
	s.arenaMu.Lock()
	for _, id := range ids {
		delete(s.arena, id)
	}
	s.arenaMu.Unlock()
	return dropped
}

// nextSweepSec computes the next scheduled sweep time from the configured cron expression.
func (s *NakamaStashSystem) nextSweepSec(logger runtime.Logger, nowSec int64) int64 {
	if s.config.DegradeSweepCron == "" {
		return 0
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(s.config.DegradeSweepCron)
	if err != nil {
		logger.Error("Failed to parse degrade sweep cron expression %q: %v", s.config.DegradeSweepCron, err)
		return 0
	}
	return schedule.Next(time.Unix(nowSec, 0).UTC()).Unix()
}

// saveTree deep-copies every inventory in the tree and returns a function that puts the copies
// back, undoing any in-place mutation made after the save.
func (s *NakamaStashSystem) saveTree(rootID string) func() {
	saved := make(map[string]*Inventory)
	s.collectTree(rootID, func(inv *Inventory) {
		saved[inv.Id] = copyInventory(inv)
	})
	return func() {
		s.arenaMu.Lock()
		for id, inv := range saved {
			s.arena[id] = inv
		}
		s.arenaMu.Unlock()
	}
}

func (s *NakamaStashSystem) fireWatchEvents(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, events []watchEvent) {
	for _, event := range events {
		if event.added {
			if s.onItemAdded != nil {
				s.onItemAdded(ctx, logger, nk, event.inventoryID, event.itemName, event.total)
			}
		} else if s.onItemRemoved != nil {
			s.onItemRemoved(ctx, logger, nk, event.inventoryID, event.itemName, event.total)
		}
	}
}

// sameStack reports whether two instances are equivalent for stacking: same item, same degrade
// deadline and equal instance properties.
func sameStack(a, b *ItemInstance) bool {
	if a.Id != b.Id || a.ContainerId != "" || b.ContainerId != "" {
		return false
	}
	if a.DegradeExpirySec != b.DegradeExpirySec {
		return false
	}
	return maps.Equal(a.StringProperties, b.StringProperties) && maps.Equal(a.NumericProperties, b.NumericProperties)
}

// totalCount sums the quantity of the named item across the inventory's own slots.
func totalCount(inv *Inventory, itemName string) int64 {
	var total int64
	for _, slot := range inv.Slots {
		if slot.Item != nil && slot.Item.Id == itemName {
			total += slot.Item.Count
		}
	}
	return total
}

func diffEvents(inventoryID, itemName string, before, after int64) []watchEvent {
	if after > before {
		return []watchEvent{{inventoryID: inventoryID, itemName: itemName, total: after, added: true}}
	}
	if after < before {
		return []watchEvent{{inventoryID: inventoryID, itemName: itemName, total: after, added: false}}
	}
	return nil
}

// normalizeRestored repairs the slot layout of a deserialized inventory.
func normalizeRestored(inv *Inventory) {
	if inv.SlotCount <= 0 {
		inv.SlotCount = len(inv.Slots)
	}
	slots := make([]*Slot, inv.SlotCount)
	for i := range slots {
		if i < len(inv.Slots) && inv.Slots[i] != nil {
			slots[i] = inv.Slots[i]
		} else {
			slots[i] = &Slot{}
		}
		slots[i].Index = i
	}
	inv.Slots = slots
}

func copyInventory(inv *Inventory) *Inventory {
	dup := *inv
	dup.Slots = make([]*Slot, len(inv.Slots))
	for i, slot := range inv.Slots {
		dup.Slots[i] = copySlot(slot)
	}
	return &dup
}

func copySlot(slot *Slot) *Slot {
	if slot == nil {
		return nil
	}
	dup := *slot
	dup.Item = copyInstance(slot.Item)
	return &dup
}

func copyInstance(instance *ItemInstance) *ItemInstance {
	if instance == nil {
		return nil
	}
	dup := *instance
	if instance.StringProperties != nil {
		dup.StringProperties = maps.Clone(instance.StringProperties)
	}
	if instance.NumericProperties != nil {
		dup.NumericProperties = maps.Clone(instance.NumericProperties)
	}
	return &dup
}
