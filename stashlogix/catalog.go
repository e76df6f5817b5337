package stashlogix

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

var (
	ErrItemNotFound       = runtime.NewError("item definition not found", NOT_FOUND_ERROR_CODE)
	ErrItemCatalogInvalid = runtime.NewError("item catalog config invalid", INVALID_ARGUMENT_ERROR_CODE)
)

// The CatalogSystem is the read-only table of item definitions shared by every inventory.
// Definitions are loaded and validated once at startup and never mutated afterwards, so
// lookups require no locking.
type CatalogSystem interface {
	System

	// GetItem returns the item definition registered under the given name.
	GetItem(ctx context.Context, logger runtime.Logger, name string) (*CatalogConfigItem, error)

	// ListItems returns all enabled item definitions, optionally filtered by category.
	ListItems(ctx context.Context, logger runtime.Logger, category string) (map[string]*CatalogConfigItem, error)
}

// CatalogConfig is the data definition for the CatalogSystem type.
type CatalogConfig struct {
	Items map[string]*CatalogConfigItem `json:"items,omitempty"`
}

// CatalogConfigItem describes a single item definition.
type CatalogConfigItem struct {
	Label           string `json:"label,omitempty"`
	Category        string `json:"category,omitempty"`
	Weight          int64  `json:"weight,omitempty"`
	Stackable       bool   `json:"stackable,omitempty"`
	StackMax        int64  `json:"stack_max,omitempty"`
	ConsumeCount    int64  `json:"consume_count,omitempty"`
	DegradeMinutes  int64  `json:"degrade_minutes,omitempty"`
	AllowWhileArmed bool   `json:"allow_while_armed,omitempty"`
	UseTimeMs       int64  `json:"use_time_ms,omitempty"`
	ClientHook      string `json:"client_hook,omitempty"`
	ServerHook      string `json:"server_hook,omitempty"`
	Disabled        bool   `json:"disabled,omitempty"`

	Container *CatalogConfigContainer `json:"container,omitempty"`

	StringProperties     map[string]string      `json:"string_properties,omitempty"`
	NumericProperties    map[string]float64     `json:"numeric_properties,omitempty"`
	AdditionalProperties map[string]interface{} `json:"additional_properties,omitempty"`

	// Name is the key the definition was registered under, set when the catalog loads.
	Name string `json:"-"`
}

// CatalogConfigContainer declares that instances of an item each own a nested inventory.
type CatalogConfigContainer struct {
	SlotCount  int      `json:"slot_count,omitempty"`
	MaxWeight  int64    `json:"max_weight,omitempty"`
	AllowItems []string `json:"allow_items,omitempty"`
	DenyItems  []string `json:"deny_items,omitempty"`

	allowSet map[string]bool
	denySet  map[string]bool
}

// Denies returns true if the container refuses items with the given name. The deny list is
// evaluated before the allow list and always wins.
func (c *CatalogConfigContainer) Denies(name string) bool {
	if c.denySet != nil {
		return c.denySet[name]
	}
	for _, deny := range c.DenyItems {
		if deny == name {
			return true
		}
	}
	return false
}

// Allows returns true if the container accepts items with the given name. An empty allow list
// accepts everything not denied.
func (c *CatalogConfigContainer) Allows(name string) bool {
	if len(c.AllowItems) == 0 {
		return true
	}
	if c.allowSet != nil {
		return c.allowSet[name]
	}
	for _, allow := range c.AllowItems {
		if allow == name {
			return true
		}
	}
	return false
}
