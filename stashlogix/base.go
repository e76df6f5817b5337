package stashlogix

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

var (
	ErrInternal           = runtime.NewError("internal error occurred", INTERNAL_ERROR_CODE)
	ErrBadInput           = runtime.NewError("bad input", INVALID_ARGUMENT_ERROR_CODE)
	ErrNoSessionUser      = runtime.NewError("no user ID in session", INVALID_ARGUMENT_ERROR_CODE)
	ErrNoSessionID        = runtime.NewError("no session ID in session", INVALID_ARGUMENT_ERROR_CODE)
	ErrPayloadDecode      = runtime.NewError("cannot decode json", INTERNAL_ERROR_CODE)
	ErrPayloadEmpty       = runtime.NewError("payload should not be empty", INVALID_ARGUMENT_ERROR_CODE)
	ErrPayloadEncode      = runtime.NewError("cannot encode json", INTERNAL_ERROR_CODE)
	ErrSystemNotAvailable = runtime.NewError("system not available", INTERNAL_ERROR_CODE)
	ErrSystemNotFound     = runtime.NewError("system not found", INTERNAL_ERROR_CODE)
)

// Stashlogix combines the inventory engine's gameplay systems behind a single hub.
type Stashlogix interface {
	// AddPersonalizer appends a personalizer to the chain consulted when per-user
	// configuration values are resolved, such as inventory capacity profiles.
	AddPersonalizer(personalizer Personalizer)

	// AddPublisher appends a publisher which receives the structured outcome events
	// emitted after every terminal action resolution.
	AddPublisher(publisher Publisher)

	GetCatalogSystem() CatalogSystem
	GetStashSystem() StashSystem
	GetActionSystem() ActionSystem

	// SendOutcomeEvents fans the given events out to all registered publishers.
	// Delivery is fire-and-forget and never part of a commit.
	SendOutcomeEvents(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, events []*OutcomeEvent)
}

// The SystemType identifies each of the gameplay systems.
type SystemType uint

const (
	SystemTypeUnknown SystemType = iota
	SystemTypeCatalog
	SystemTypeStash
	SystemTypeAction
)

// A System is a base type for a gameplay system.
type System interface {
	// GetType provides the runtime type of the gameplay system.
	GetType() SystemType

	// GetConfig returns the configuration type of the gameplay system.
	GetConfig() any
}

// The SystemConfig describes the configuration that each gameplay system must use to configure itself.
type SystemConfig interface {
	// GetType returns the runtime type of the gameplay system.
	GetType() SystemType

	// GetConfigFile returns the configuration file used for the data definitions in the gameplay system.
	GetConfigFile() string

	// GetRegister returns true if the gameplay system's RPCs should be registered with the game server.
	GetRegister() bool

	// GetExtra returns the extra parameter used to configure the gameplay system.
	GetExtra() any
}

var _ SystemConfig = &systemConfig{}

type systemConfig struct {
	systemType SystemType
	configFile string
	register   bool

	extra any
}

func (sc *systemConfig) GetType() SystemType {
	return sc.systemType
}
func (sc *systemConfig) GetConfigFile() string {
	return sc.configFile
}
func (sc *systemConfig) GetRegister() bool {
	return sc.register
}
func (sc *systemConfig) GetExtra() any {
	return sc.extra
}

// WithCatalogSystem configures a CatalogSystem type and optionally registers its RPCs with the game server.
func WithCatalogSystem(configFile string, register bool) SystemConfig {
	return &systemConfig{
		systemType: SystemTypeCatalog,
		configFile: configFile,
		register:   register,
	}
}

// WithStashSystem configures a StashSystem type and optionally registers its RPCs with the game server.
func WithStashSystem(configFile string, register bool) SystemConfig {
	return &systemConfig{
		systemType: SystemTypeStash,
		configFile: configFile,
		register:   register,
	}
}

// WithActionSystem configures an ActionSystem type and optionally registers its RPCs with the game server.
// An optional ArmedSourceFn may be supplied to report the actor's armed state for items which
// cannot be used while armed.
func WithActionSystem(configFile string, register bool, armedSource ...ArmedSourceFn) SystemConfig {
	return &systemConfig{
		systemType: SystemTypeAction,
		configFile: configFile,
		register:   register,

		extra: armedSource,
	}
}

// RpcId identifies an RPC endpoint registered by one of the gameplay systems.
type RpcId string

func (r RpcId) String() string {
	return string(r)
}

const (
	RpcIdCatalogList RpcId = "catalog_list"
	RpcIdCatalogGet  RpcId = "catalog_get"

	RpcIdStashGet    RpcId = "stash_get"
	RpcIdStashCreate RpcId = "stash_create"
	RpcIdStashGrant  RpcId = "stash_grant"
	RpcIdStashSplit  RpcId = "stash_split"
	RpcIdStashWeight RpcId = "stash_weight"

	RpcIdActionRequest RpcId = "action_request"
	RpcIdActionAck     RpcId = "action_ack"
	RpcIdActionCancel  RpcId = "action_cancel"
	RpcIdActionStatus  RpcId = "action_status"
)
