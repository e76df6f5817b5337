package stashlogix

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

// inventory fetches a live inventory from the arena.
func (s *NakamaStashSystem) inventory(inventoryID string) (*Inventory, bool) {
	s.arenaMu.RLock()
	inv, ok := s.arena[inventoryID]
	s.arenaMu.RUnlock()
	return inv, ok
}

// resolveRoot follows parent links up to the top-level ancestor of the inventory. The root
// identifier is the key every mutation of the tree serializes on.
func (s *NakamaStashSystem) resolveRoot(inventoryID string) (string, error) {
	seen := make(map[string]bool)
	currentID := inventoryID
	for {
		if seen[currentID] {
			return "", ErrCycleDetected
		}
		seen[currentID] = true

		inv, ok := s.inventory(currentID)
		if !ok {
			return "", ErrInventoryNotFound
		}
		if inv.ParentId == "" {
			return inv.Id, nil
		}
		currentID = inv.ParentId
	}
}

// collectTree visits the inventory and every inventory nested inside its container items. The
// caller must hold the tree's root handle.
func (s *NakamaStashSystem) collectTree(inventoryID string, visit func(inv *Inventory)) {
	inv, ok := s.inventory(inventoryID)
	if !ok {
		return
	}
	visit(inv)
	for _, slot := range inv.Slots {
		if slot.Item != nil && slot.Item.ContainerId != "" {
			s.collectTree(slot.Item.ContainerId, visit)
		}
	}
}

// canAcceptLocked checks the container constraints for placing the instance into the target
// inventory. The deny list of each enclosing container is checked before its allow list and a
// deny always wins, then the nesting graph is checked for cycles. Capacity is not considered
// here; weight and slot caps are enforced when the mutation is revalidated.
func (s *NakamaStashSystem) canAcceptLocked(ctx context.Context, logger runtime.Logger, target *Inventory, instance *ItemInstance) error {
	if instance == nil {
		return ErrBadInput
	}

	names := s.subtreeItemNames(instance)

	// Walk the enclosing containers from the innermost outward. An item stored in a nested
	// container is also inside every ancestor, so each ancestor's lists apply to the candidate
	// and to everything packed inside it.
	catalogSystem, err := s.getCatalogSystem()
	if err != nil {
		return err
	}
	current := target
	seen := make(map[string]bool)
	for {
		if seen[current.Id] {
			return ErrCycleDetected
		}
		seen[current.Id] = true

		if current.ParentId == "" {
			break
		}
		parent, ok := s.inventory(current.ParentId)
		if !ok {
			logger.Error("Inventory %s has dangling parent link %s", current.Id, current.ParentId)
			return ErrInternal
		}
		if current.ParentSlot < 0 || current.ParentSlot >= len(parent.Slots) || parent.Slots[current.ParentSlot].Item == nil {
			// The holding slot can be transiently empty while its instance is mid-move. The
			// cycle check below still rejects a container placed into its own contents.
			current = parent
			continue
		}

		holder := parent.Slots[current.ParentSlot].Item
		def, err := catalogSystem.GetItem(ctx, logger, holder.Id)
		if err != nil {
			logger.Warn("Container item %s has no catalog definition, constraints not applied", holder.Id)
		} else if def.Container != nil {
			for _, name := range names {
				if def.Container.Denies(name) {
					return ErrContainerConstraintViolated
				}
				if !def.Container.Allows(name) {
					return ErrContainerConstraintViolated
				}
			}
		}

		current = parent
	}

	// A container cannot end up inside its own contents. Placing the instance makes the target
	// chain the instance's ancestor chain, so any appearance of the instance's own nested
	// inventory on that chain is a cycle.
	if instance.ContainerId != "" {
		if target.Id == instance.ContainerId {
			return ErrCycleDetected
		}
		current = target
		for current.ParentId != "" {
			if current.ParentId == instance.ContainerId {
				return ErrCycleDetected
			}
			next, ok := s.inventory(current.ParentId)
			if !ok {
				break
			}
			current = next
		}
	}

	return nil
}

// subtreeItemNames returns the candidate's item name followed by the names of everything nested
// inside it, deterministically ordered, without duplicates.
func (s *NakamaStashSystem) subtreeItemNames(instance *ItemInstance) []string {
	names := make([]string, 0, 1)
	seen := make(map[string]bool)

	var walk func(inst *ItemInstance)
	walk = func(inst *ItemInstance) {
		if !seen[inst.Id] {
			seen[inst.Id] = true
			names = append(names, inst.Id)
		}
		if inst.ContainerId == "" {
			return
		}
		nested, ok := s.inventory(inst.ContainerId)
		if !ok {
			return
		}
		for _, slot := range nested.Slots {
			if slot.Item != nil {
				walk(slot.Item)
			}
		}
	}
	walk(instance)

	return names
}

// recomputeTree refreshes the cached aggregate weight of the inventory and every nested
// inventory, bottom up, and enforces each inventory's weight cap along the way. A weight cap of
// zero is unlimited. The caller must hold the tree's root handle.
func (s *NakamaStashSystem) recomputeTree(ctx context.Context, logger runtime.Logger, inventoryID string) (int64, error) {
	inv, ok := s.inventory(inventoryID)
	if !ok {
		return 0, ErrInventoryNotFound
	}
	catalogSystem, err := s.getCatalogSystem()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, slot := range inv.Slots {
		item := slot.Item
		if item == nil {
			continue
		}

		def, err := catalogSystem.GetItem(ctx, logger, item.Id)
		if err != nil {
			logger.Warn("Item %s in inventory %s has no catalog definition, weight counted as zero", item.Id, inv.Id)
		} else {
			total += def.Weight * item.Count
		}

		if item.ContainerId != "" {
			nested, err := s.recomputeTree(ctx, logger, item.ContainerId)
			if err != nil {
				return 0, err
			}
			total += nested
		}
	}

	inv.Weight = total
	if inv.MaxWeight > 0 && total > inv.MaxWeight {
		return total, ErrCapacityExceeded
	}
	return total, nil
}
