package stashlogix

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

func rpcStashGet(p *stashlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		stashSystem := p.GetStashSystem()
		if stashSystem == nil {
			return "", ErrSystemNotAvailable
		}

		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok || userID == "" {
			return "", ErrNoSessionUser
		}

		if payload == "" {
			return "", ErrPayloadEmpty
		}
		var request struct {
			InventoryId string `json:"inventory_id"`
		}
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal StashGetRequest: %v", err)
			return "", ErrPayloadDecode
		}

		inventory, err := stashSystem.GetInventory(ctx, logger, nk, request.InventoryId)
		if err != nil {
			return "", err
		}
		if inventory.OwnerId != "" && inventory.OwnerId != userID {
			return "", ErrInventoryAccessDenied
		}

		responseData, err := json.Marshal(inventory)
		if err != nil {
			logger.Error("Failed to marshal response: %v", err)
			return "", ErrPayloadEncode
		}

		return string(responseData), nil
	}
}

func rpcStashCreate(p *stashlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		stashSystem := p.GetStashSystem()
		if stashSystem == nil {
			return "", ErrSystemNotAvailable
		}

		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok || userID == "" {
			return "", ErrNoSessionUser
		}

		var request struct {
			InventoryId string `json:"inventory_id,omitempty"`
			Profile     string `json:"profile,omitempty"`
		}
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), &request); err != nil {
				logger.Error("Failed to unmarshal StashCreateRequest: %v", err)
				return "", ErrPayloadDecode
			}
		}

		inventory, err := stashSystem.CreateInventory(ctx, logger, nk, userID, request.InventoryId, request.Profile)
		if err != nil {
			logger.Error("Error creating inventory: %v", err)
			return "", err
		}

		responseData, err := json.Marshal(inventory)
		if err != nil {
			logger.Error("Failed to marshal response: %v", err)
			return "", ErrPayloadEncode
		}

		return string(responseData), nil
	}
}

func rpcStashGrant(p *stashlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		stashSystem := p.GetStashSystem()
		if stashSystem == nil {
			return "", ErrSystemNotAvailable
		}

		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok || userID == "" {
			return "", ErrNoSessionUser
		}

		if payload == "" {
			return "", ErrPayloadEmpty
		}
		var request struct {
			InventoryId string `json:"inventory_id"`
			ItemName    string `json:"item_name"`
			Count       int64  `json:"count"`
		}
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal StashGrantRequest: %v", err)
			return "", ErrPayloadDecode
		}

		inventory, err := stashSystem.GetInventory(ctx, logger, nk, request.InventoryId)
		if err != nil {
			return "", err
		}
		if inventory.OwnerId != "" && inventory.OwnerId != userID {
			return "", ErrInventoryAccessDenied
		}

		indexes, err := stashSystem.GrantItem(ctx, logger, nk, request.InventoryId, request.ItemName, request.Count)
		if err != nil {
			logger.Error("Error granting item: %v", err)
			return "", err
		}

		response := struct {
			Indexes []int `json:"indexes"`
		}{
			Indexes: indexes,
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			logger.Error("Failed to marshal response: %v", err)
			return "", ErrPayloadEncode
		}

		return string(responseData), nil
	}
}

func rpcStashSplit(p *stashlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		stashSystem := p.GetStashSystem()
		if stashSystem == nil {
			return "", ErrSystemNotAvailable
		}

		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok || userID == "" {
			return "", ErrNoSessionUser
		}

		if payload == "" {
			return "", ErrPayloadEmpty
		}
		var request struct {
			InventoryId string `json:"inventory_id"`
			SlotIndex   int    `json:"slot_index"`
			Quantity    int64  `json:"quantity"`
		}
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal StashSplitRequest: %v", err)
			return "", ErrPayloadDecode
		}

		inventory, err := stashSystem.GetInventory(ctx, logger, nk, request.InventoryId)
		if err != nil {
			return "", err
		}
		if inventory.OwnerId != "" && inventory.OwnerId != userID {
			return "", ErrInventoryAccessDenied
		}

		index, err := stashSystem.SplitStack(ctx, logger, nk, request.InventoryId, request.SlotIndex, request.Quantity)
		if err != nil {
			logger.Error("Error splitting stack: %v", err)
			return "", err
		}

		response := struct {
			Index int `json:"index"`
		}{
			Index: index,
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			logger.Error("Failed to marshal response: %v", err)
			return "", ErrPayloadEncode
		}

		return string(responseData), nil
	}
}

func rpcStashWeight(p *stashlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		stashSystem := p.GetStashSystem()
		if stashSystem == nil {
			return "", ErrSystemNotAvailable
		}

		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok || userID == "" {
			return "", ErrNoSessionUser
		}

		if payload == "" {
			return "", ErrPayloadEmpty
		}
		var request struct {
			InventoryId string `json:"inventory_id"`
		}
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal StashWeightRequest: %v", err)
			return "", ErrPayloadDecode
		}

		inventory, err := stashSystem.GetInventory(ctx, logger, nk, request.InventoryId)
		if err != nil {
			return "", err
		}
		if inventory.OwnerId != "" && inventory.OwnerId != userID {
			return "", ErrInventoryAccessDenied
		}

		weight, err := stashSystem.EffectiveWeight(ctx, logger, request.InventoryId)
		if err != nil {
			logger.Error("Error computing effective weight: %v", err)
			return "", err
		}

		response := struct {
			Weight int64 `json:"weight"`
		}{
			Weight: weight,
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			logger.Error("Failed to marshal response: %v", err)
			return "", ErrPayloadEncode
		}

		return string(responseData), nil
	}
}
