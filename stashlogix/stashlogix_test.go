package stashlogix

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConfigFile writes a config file to a temp dir and arranges the mocked module to serve it.
func stubConfigFile(t *testing.T, nk *MockNakamaModule, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)
	nk.On("ReadFile", path).Return(file, nil)
	return path
}

const (
	initCatalogJSON = `{"items":{"burger":{"weight":110,"stackable":true,"stack_max":10}}}`
	initStashJSON   = `{"profiles":{"backpack":{"slot_count":8,"max_weight":10000}},"default_profile":"backpack"}`
	initActionJSON  = `{"ack_timeout_sec":10,"max_pending_per_user":2}`
)

// Test that Init builds every configured system and wires the cross-system references.
func TestInit_WiresAllSystems(t *testing.T) {
	ctx := context.Background()
	logger := &mockStashLogger{}
	nk := NewMockNakama(t)

	catalogPath := stubConfigFile(t, nk, "catalog.json", initCatalogJSON)
	stashPath := stubConfigFile(t, nk, "stash.json", initStashJSON)
	actionPath := stubConfigFile(t, nk, "actions.json", initActionJSON)

	sl, err := Init(ctx, logger, nk, nil,
		WithCatalogSystem(catalogPath, false),
		WithStashSystem(stashPath, false),
		WithActionSystem(actionPath, false),
	)
	require.NoError(t, err)
	require.NotNil(t, sl)

	require.NotNil(t, sl.GetCatalogSystem())
	require.NotNil(t, sl.GetStashSystem())
	require.NotNil(t, sl.GetActionSystem())

	// The stash must resolve item definitions through the shared catalog.
	inventory, err := sl.GetStashSystem().CreateInventory(ctx, logger, nk, "user_1", "inv_wired", "")
	require.NoError(t, err)
	assert.Equal(t, 8, inventory.SlotCount)

	_, err = sl.GetStashSystem().GrantItem(ctx, logger, nk, "inv_wired", "burger", 3)
	require.NoError(t, err)

	weight, err := sl.GetStashSystem().EffectiveWeight(ctx, logger, "inv_wired")
	require.NoError(t, err)
	assert.Equal(t, int64(330), weight)

	nk.AssertExpectations(t)
}

// Test that a stash system without a catalog fails fast at startup.
func TestInit_StashRequiresCatalog(t *testing.T) {
	ctx := context.Background()
	logger := &mockStashLogger{}
	nk := NewMockNakama(t)

	stashPath := stubConfigFile(t, nk, "stash.json", initStashJSON)

	sl, err := Init(ctx, logger, nk, nil, WithStashSystem(stashPath, false))
	assert.ErrorIs(t, err, ErrSystemNotFound)
	assert.Nil(t, sl)
}

// Test that an action system without a stash fails fast at startup.
func TestInit_ActionRequiresStash(t *testing.T) {
	ctx := context.Background()
	logger := &mockStashLogger{}
	nk := NewMockNakama(t)

	catalogPath := stubConfigFile(t, nk, "catalog.json", initCatalogJSON)
	actionPath := stubConfigFile(t, nk, "actions.json", initActionJSON)

	sl, err := Init(ctx, logger, nk, nil,
		WithCatalogSystem(catalogPath, false),
		WithActionSystem(actionPath, false),
	)
	assert.ErrorIs(t, err, ErrSystemNotFound)
	assert.Nil(t, sl)
}

// Test that an invalid item definition aborts initialization.
func TestInit_BadItemDefinition(t *testing.T) {
	ctx := context.Background()
	logger := &mockStashLogger{}
	nk := NewMockNakama(t)

	catalogPath := stubConfigFile(t, nk, "catalog.json", `{"items":{"brick":{"weight":-5}}}`)

	sl, err := Init(ctx, logger, nk, nil, WithCatalogSystem(catalogPath, false))
	assert.ErrorIs(t, err, ErrItemCatalogInvalid)
	assert.Nil(t, sl)
}

// Test that a missing config file aborts initialization.
func TestInit_ConfigFileMissing(t *testing.T) {
	ctx := context.Background()
	logger := &mockStashLogger{}
	nk := NewMockNakama(t)
	nk.On("ReadFile", "missing.json").Return((*os.File)(nil), os.ErrNotExist)

	sl, err := Init(ctx, logger, nk, nil, WithCatalogSystem("missing.json", false))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, sl)
}

// Test that an armed source passed through the config reaches the action system.
func TestInit_ArmedSourceWiring(t *testing.T) {
	ctx := context.Background()
	logger := &mockStashLogger{}
	nk := NewMockNakama(t)

	catalogPath := stubConfigFile(t, nk, "catalog.json", initCatalogJSON)
	stashPath := stubConfigFile(t, nk, "stash.json", initStashJSON)
	actionPath := stubConfigFile(t, nk, "actions.json", initActionJSON)

	armedFn := func(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string) (string, error) {
		return "rifle", nil
	}

	sl, err := Init(ctx, logger, nk, nil,
		WithCatalogSystem(catalogPath, false),
		WithStashSystem(stashPath, false),
		WithActionSystem(actionPath, false, armedFn),
	)
	require.NoError(t, err)

	actionSystem, ok := sl.GetActionSystem().(*NakamaActionSystem)
	require.True(t, ok)
	assert.NotNil(t, actionSystem.armedSource)
}

// Test that outcome events fan out to every registered publisher in order.
func TestStashlogix_PublisherFanout(t *testing.T) {
	ctx := context.Background()
	logger := &mockStashLogger{}
	nk := NewMockNakama(t)

	sl := &stashlogixImpl{
		publishers: make([]Publisher, 0),
		systems:    make(map[SystemType]System),
	}

	first := &recordingPublisher{}
	second := &recordingPublisher{}
	sl.AddPublisher(first)
	sl.AddPublisher(second)

	events := []*OutcomeEvent{
		{Kind: OutcomeCommitted, Token: "tok_1", ItemName: "burger"},
		{Kind: OutcomeAborted, Token: "tok_2", Reason: "cancelled by client"},
	}
	sl.SendOutcomeEvents(ctx, logger, nk, "user_1", events)

	require.Len(t, first.events, 2)
	require.Len(t, second.events, 2)
	assert.Equal(t, "tok_1", first.events[0].Token)
	assert.Equal(t, OutcomeAborted, second.events[1].Kind)

	// No events means no publisher calls at all.
	sl.SendOutcomeEvents(ctx, logger, nk, "user_1", nil)
	assert.Len(t, first.events, 2)
}
