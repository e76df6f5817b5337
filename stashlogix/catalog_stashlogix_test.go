package stashlogix

import (
	"context"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock logger for tests
type mockStashLogger struct{}

func (l *mockStashLogger) Debug(format string, v ...interface{})                   {}
func (l *mockStashLogger) Info(format string, v ...interface{})                    {}
func (l *mockStashLogger) Warn(format string, v ...interface{})                    {}
func (l *mockStashLogger) Error(format string, v ...interface{})                   {}
func (l *mockStashLogger) WithField(key string, value interface{}) runtime.Logger  { return l }
func (l *mockStashLogger) WithFields(fields map[string]interface{}) runtime.Logger { return l }
func (l *mockStashLogger) Fields() map[string]interface{}                          { return map[string]interface{}{} }

// Test basic system creation and definition normalization
func TestNakamaCatalogSystem_Creation(t *testing.T) {
	config := &CatalogConfig{
		Items: map[string]*CatalogConfigItem{
			"burger": {
				Label:        "Burger",
				Category:     "food",
				Weight:       120,
				Stackable:    true,
				StackMax:     10,
				ConsumeCount: 1,
			},
			"paperbag": {
				Label:  "Paper Bag",
				Weight: 10,
				Container: &CatalogConfigContainer{
					SlotCount: 5,
					MaxWeight: 1000,
					DenyItems: []string{"anvil"},
				},
			},
		},
	}

	system, err := NewNakamaCatalogSystem(config)
	require.NoError(t, err)
	assert.Equal(t, SystemTypeCatalog, system.GetType())
	assert.Equal(t, config, system.GetConfig())

	// The registered key is backfilled onto each definition.
	assert.Equal(t, "burger", config.Items["burger"].Name)
	assert.Equal(t, "paperbag", config.Items["paperbag"].Name)
}

// Test that a zero consume count defaults to one unit per use
func TestNakamaCatalogSystem_ConsumeCountDefault(t *testing.T) {
	config := &CatalogConfig{
		Items: map[string]*CatalogConfigItem{
			"potion": {Stackable: true, StackMax: 5},
		},
	}

	_, err := NewNakamaCatalogSystem(config)
	require.NoError(t, err)
	assert.Equal(t, int64(1), config.Items["potion"].ConsumeCount)
}

// Test validation failures
func TestNakamaCatalogSystem_InvalidDefinitions(t *testing.T) {
	tests := []struct {
		name string
		item *CatalogConfigItem
	}{
		{"negative weight", &CatalogConfigItem{Weight: -1}},
		{"negative stack max", &CatalogConfigItem{Stackable: true, StackMax: -2}},
		{"stack max without stackable", &CatalogConfigItem{StackMax: 5}},
		{"stackable container", &CatalogConfigItem{
			Stackable: true,
			Container: &CatalogConfigContainer{SlotCount: 3},
		}},
		{"container without slots", &CatalogConfigItem{
			Container: &CatalogConfigContainer{SlotCount: 0},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewNakamaCatalogSystem(&CatalogConfig{
				Items: map[string]*CatalogConfigItem{"bad": tc.item},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrItemCatalogInvalid)
		})
	}
}

// Test GetItem lookup behavior
func TestNakamaCatalogSystem_GetItem(t *testing.T) {
	system, err := NewNakamaCatalogSystem(&CatalogConfig{
		Items: map[string]*CatalogConfigItem{
			"burger": {Stackable: true, StackMax: 10},
			"secret": {Disabled: true},
		},
	})
	require.NoError(t, err)
	logger := &mockStashLogger{}
	ctx := context.Background()

	item, err := system.GetItem(ctx, logger, "burger")
	require.NoError(t, err)
	assert.Equal(t, "burger", item.Name)

	// Unknown and disabled definitions are indistinguishable to callers.
	_, err = system.GetItem(ctx, logger, "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = system.GetItem(ctx, logger, "secret")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

// Test ListItems category filtering
func TestNakamaCatalogSystem_ListItems(t *testing.T) {
	system, err := NewNakamaCatalogSystem(&CatalogConfig{
		Items: map[string]*CatalogConfigItem{
			"burger": {Category: "food", Stackable: true, StackMax: 10},
			"fries":  {Category: "food", Stackable: true, StackMax: 20},
			"pistol": {Category: "weapon"},
			"legacy": {Category: "food", Disabled: true},
		},
	})
	require.NoError(t, err)
	logger := &mockStashLogger{}
	ctx := context.Background()

	all, err := system.ListItems(ctx, logger, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.NotContains(t, all, "legacy")

	food, err := system.ListItems(ctx, logger, "food")
	require.NoError(t, err)
	assert.Len(t, food, 2)
	assert.Contains(t, food, "burger")
	assert.Contains(t, food, "fries")
}

// Test deny list evaluation order against the allow list
func TestCatalogConfigContainer_DenyWinsOverAllow(t *testing.T) {
	config := &CatalogConfig{
		Items: map[string]*CatalogConfigItem{
			"pouch": {
				Container: &CatalogConfigContainer{
					SlotCount:  3,
					AllowItems: []string{"coin", "gem"},
					DenyItems:  []string{"coin"},
				},
			},
		},
	}
	_, err := NewNakamaCatalogSystem(config)
	require.NoError(t, err)

	container := config.Items["pouch"].Container
	assert.True(t, container.Denies("coin"))
	assert.True(t, container.Allows("coin")) // allow alone would admit it
	assert.False(t, container.Denies("gem"))
	assert.True(t, container.Allows("gem"))
	assert.False(t, container.Allows("rock"))
}
