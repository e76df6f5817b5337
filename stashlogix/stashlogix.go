package stashlogix

import (
	"context"
	"encoding/json"
	"io"

	"github.com/heroiclabs/nakama-common/runtime"
)

// stashlogixImpl implements the Stashlogix interface.
type stashlogixImpl struct {
	personalizers []Personalizer
	publishers    []Publisher

	systems map[SystemType]System
}

// Init initializes a Stashlogix type with the configurations provided.
func Init(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, initializer runtime.Initializer, configs ...SystemConfig) (Stashlogix, error) {
	sl := &stashlogixImpl{
		personalizers: make([]Personalizer, 0),
		publishers:    make([]Publisher, 0),
		systems:       make(map[SystemType]System),
	}

	for _, config := range configs {
		if err := sl.initSystem(ctx, logger, nk, initializer, config); err != nil {
			return nil, err
		}
	}

	// The stash system resolves item definitions through the catalog, and the action system
	// drives both. Catch missing wiring at startup rather than on the first request.
	if _, ok := sl.systems[SystemTypeStash]; ok && sl.GetCatalogSystem() == nil {
		logger.Error("Stash system requires the catalog system")
		return nil, ErrSystemNotFound
	}
	if _, ok := sl.systems[SystemTypeAction]; ok {
		if sl.GetCatalogSystem() == nil || sl.GetStashSystem() == nil {
			logger.Error("Action system requires the catalog and stash systems")
			return nil, ErrSystemNotFound
		}
	}

	return sl, nil
}

// initSystem initializes a specific system based on its type.
func (p *stashlogixImpl) initSystem(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, initializer runtime.Initializer, config SystemConfig) error {
	logger.Info("Initializing system type: %v, config file: %s", config.GetType(), config.GetConfigFile())

	configData, err := nk.ReadFile(config.GetConfigFile())
	if err != nil {
		logger.Error("Failed to read config file %s: %v", config.GetConfigFile(), err)
		return err
	}
	defer configData.Close()

	configBytes, err := io.ReadAll(configData)
	if err != nil {
		logger.Error("Failed to read config file contents: %v", err)
		return err
	}

	var system System

	switch config.GetType() {
	case SystemTypeCatalog:
		catalogConfig := &CatalogConfig{}
		if err := json.Unmarshal(configBytes, catalogConfig); err != nil {
			logger.Error("Failed to parse Catalog system config: %v", err)
			return err
		}
		catalogSystem, err := NewNakamaCatalogSystem(catalogConfig)
		if err != nil {
			logger.Error("Failed to validate Catalog system config: %v", err)
			return err
		}
		system = catalogSystem

	case SystemTypeStash:
		stashConfig := &StashConfig{}
		if err := json.Unmarshal(configBytes, stashConfig); err != nil {
			logger.Error("Failed to parse Stash system config: %v", err)
			return err
		}
		system = NewNakamaStashSystem(stashConfig)

	case SystemTypeAction:
		actionConfig := &ActionConfig{}
		if err := json.Unmarshal(configBytes, actionConfig); err != nil {
			logger.Error("Failed to parse Action system config: %v", err)
			return err
		}
		actionSystem := NewNakamaActionSystem(actionConfig)

		// Set the armed state lookup if provided.
		if extra := config.GetExtra(); extra != nil {
			if armedSources, ok := extra.([]ArmedSourceFn); ok && len(armedSources) > 0 {
				actionSystem.SetArmedSource(armedSources[0])
				logger.Info("Set armed source lookup for action system")
			}
		}

		system = actionSystem

	default:
		logger.Error("Unknown system type: %v", config.GetType())
		return runtime.NewError("unknown system type", INVALID_ARGUMENT_ERROR_CODE)
	}

	p.systems[config.GetType()] = system

	// Set the Stashlogix reference to enable cross-system communication.
	if stashSystem, ok := system.(*NakamaStashSystem); ok {
		stashSystem.SetStashlogix(p)
	}
	if actionSystem, ok := system.(*NakamaActionSystem); ok {
		actionSystem.SetStashlogix(p)
	}

	if config.GetRegister() {
		if err := p.registerSystemRpcs(initializer, config.GetType()); err != nil {
			return err
		}
	}

	return nil
}

// registerSystemRpcs registers the appropriate RPCs for a given system type.
func (p *stashlogixImpl) registerSystemRpcs(initializer runtime.Initializer, systemType SystemType) error {
	switch systemType {
	case SystemTypeCatalog:
		if err := initializer.RegisterRpc(RpcIdCatalogList.String(), rpcCatalogList(p)); err != nil {
			return err
		}
		if err := initializer.RegisterRpc(RpcIdCatalogGet.String(), rpcCatalogGet(p)); err != nil {
			return err
		}

	case SystemTypeStash:
		if err := initializer.RegisterRpc(RpcIdStashGet.String(), rpcStashGet(p)); err != nil {
			return err
		}
		if err := initializer.RegisterRpc(RpcIdStashCreate.String(), rpcStashCreate(p)); err != nil {
			return err
		}
		if err := initializer.RegisterRpc(RpcIdStashGrant.String(), rpcStashGrant(p)); err != nil {
			return err
		}
		if err := initializer.RegisterRpc(RpcIdStashSplit.String(), rpcStashSplit(p)); err != nil {
			return err
		}
		if err := initializer.RegisterRpc(RpcIdStashWeight.String(), rpcStashWeight(p)); err != nil {
			return err
		}

	case SystemTypeAction:
		if err := initializer.RegisterRpc(RpcIdActionRequest.String(), rpcActionRequest(p)); err != nil {
			return err
		}
		if err := initializer.RegisterRpc(RpcIdActionAck.String(), rpcActionAck(p)); err != nil {
			return err
		}
		if err := initializer.RegisterRpc(RpcIdActionCancel.String(), rpcActionCancel(p)); err != nil {
			return err
		}
		if err := initializer.RegisterRpc(RpcIdActionStatus.String(), rpcActionStatus(p)); err != nil {
			return err
		}
	}

	return nil
}

// AddPersonalizer appends a personalizer to the chain consulted for per-user configuration.
func (p *stashlogixImpl) AddPersonalizer(personalizer Personalizer) {
	p.personalizers = append(p.personalizers, personalizer)
}

// Personalizers returns the registered personalizer chain in registration order.
func (p *stashlogixImpl) Personalizers() []Personalizer {
	return p.personalizers
}

// AddPublisher appends a publisher receiving the outcome events of terminal action resolutions.
func (p *stashlogixImpl) AddPublisher(publisher Publisher) {
	p.publishers = append(p.publishers, publisher)
}

func (p *stashlogixImpl) GetCatalogSystem() CatalogSystem {
	if system, ok := p.systems[SystemTypeCatalog].(CatalogSystem); ok {
		return system
	}
	return nil
}

func (p *stashlogixImpl) GetStashSystem() StashSystem {
	if system, ok := p.systems[SystemTypeStash].(StashSystem); ok {
		return system
	}
	return nil
}

func (p *stashlogixImpl) GetActionSystem() ActionSystem {
	if system, ok := p.systems[SystemTypeAction].(ActionSystem); ok {
		return system
	}
	return nil
}

// SendOutcomeEvents fans the events out to all registered publishers in registration order.
func (p *stashlogixImpl) SendOutcomeEvents(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, events []*OutcomeEvent) {
	if len(events) == 0 {
		return
	}
	for _, publisher := range p.publishers {
		publisher.Send(ctx, logger, nk, userID, events)
	}
}
