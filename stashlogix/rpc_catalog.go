package stashlogix

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

func rpcCatalogList(p *stashlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		catalogSystem := p.GetCatalogSystem()
		if catalogSystem == nil {
			return "", ErrSystemNotAvailable
		}

		var request struct {
			Category string `json:"category,omitempty"`
		}
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), &request); err != nil {
				logger.Error("Failed to unmarshal CatalogListRequest: %v", err)
				return "", ErrPayloadDecode
			}
		}

		items, err := catalogSystem.ListItems(ctx, logger, request.Category)
		if err != nil {
			logger.Error("Error listing catalog items: %v", err)
			return "", err
		}

		response := struct {
			Items map[string]*CatalogConfigItem `json:"items"`
		}{
			Items: items,
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			logger.Error("Failed to marshal response: %v", err)
			return "", ErrPayloadEncode
		}

		return string(responseData), nil
	}
}

func rpcCatalogGet(p *stashlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		catalogSystem := p.GetCatalogSystem()
		if catalogSystem == nil {
			return "", ErrSystemNotAvailable
		}

		if payload == "" {
			return "", ErrPayloadEmpty
		}
		var request struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal CatalogGetRequest: %v", err)
			return "", ErrPayloadDecode
		}

		item, err := catalogSystem.GetItem(ctx, logger, request.Name)
		if err != nil {
			return "", err
		}

		responseData, err := json.Marshal(item)
		if err != nil {
			logger.Error("Failed to marshal response: %v", err)
			return "", ErrPayloadEncode
		}

		return string(responseData), nil
	}
}
