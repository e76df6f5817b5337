package stashlogix

import (
	"context"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaCatalogSystem implements the CatalogSystem interface over a validated in-memory item table.
type NakamaCatalogSystem struct {
	config *CatalogConfig
}

// NewNakamaCatalogSystem creates a new instance of the CatalogSystem implementation. The configured
// definitions are normalized and validated up front so the rest of the engine can rely on them
// without re-checking.
func NewNakamaCatalogSystem(config *CatalogConfig) (*NakamaCatalogSystem, error) {
	if config == nil {
		config = &CatalogConfig{}
	}
	if config.Items == nil {
		config.Items = make(map[string]*CatalogConfigItem)
	}

	for name, item := range config.Items {
		if item == nil {
			return nil, fmt.Errorf("item %q: %w", name, ErrItemCatalogInvalid)
		}
		item.Name = name

		if item.Weight < 0 {
			return nil, fmt.Errorf("item %q has negative weight: %w", name, ErrItemCatalogInvalid)
		}
		if item.ConsumeCount <= 0 {
			item.ConsumeCount = 1
		}
		if item.StackMax < 0 {
			return nil, fmt.Errorf("item %q has negative stack_max: %w", name, ErrItemCatalogInvalid)
		}
		if !item.Stackable && item.StackMax > 1 {
			return nil, fmt.Errorf("item %q is not stackable but declares stack_max: %w", name, ErrItemCatalogInvalid)
		}

		if container := item.Container; container != nil {
			if item.Stackable {
				return nil, fmt.Errorf("container item %q cannot be stackable: %w", name, ErrItemCatalogInvalid)
			}
			if container.SlotCount <= 0 {
				return nil, fmt.Errorf("container item %q must declare a positive slot_count: %w", name, ErrItemCatalogInvalid)
			}
			if container.MaxWeight < 0 {
				return nil, fmt.Errorf("container item %q has negative max_weight: %w", name, ErrItemCatalogInvalid)
			}

			// Precompute the constraint sets so nesting checks stay cheap.
			if len(container.DenyItems) > 0 {
				container.denySet = make(map[string]bool, len(container.DenyItems))
				for _, deny := range container.DenyItems {
					container.denySet[deny] = true
				}
			}
			if len(container.AllowItems) > 0 {
				container.allowSet = make(map[string]bool, len(container.AllowItems))
				for _, allow := range container.AllowItems {
					container.allowSet[allow] = true
				}
			}
		}
	}

	return &NakamaCatalogSystem{config: config}, nil
}

// GetType provides the runtime type of the gameplay system.
func (c *NakamaCatalogSystem) GetType() SystemType {
	return SystemTypeCatalog
}

// GetConfig returns the configuration type of the gameplay system.
func (c *NakamaCatalogSystem) GetConfig() any {
	return c.config
}

// GetItem returns the item definition registered under the given name.
func (c *NakamaCatalogSystem) GetItem(ctx context.Context, logger runtime.Logger, name string) (*CatalogConfigItem, error) {
	item, ok := c.config.Items[name]
	if !ok || item.Disabled {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// ListItems returns all enabled item definitions, optionally filtered by category.
func (c *NakamaCatalogSystem) ListItems(ctx context.Context, logger runtime.Logger, category string) (map[string]*CatalogConfigItem, error) {
	items := make(map[string]*CatalogConfigItem, len(c.config.Items))
	for name, item := range c.config.Items {
		if item.Disabled {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		items[name] = item
	}
	return items, nil
}
