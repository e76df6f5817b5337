package stashlogix

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

func rpcActionRequest(p *stashlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		actionSystem := p.GetActionSystem()
		if actionSystem == nil {
			return "", ErrSystemNotAvailable
		}

		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok || userID == "" {
			return "", ErrNoSessionUser
		}

		if payload == "" {
			return "", ErrPayloadEmpty
		}
		request := &ActionRequest{}
		if err := json.Unmarshal([]byte(payload), request); err != nil {
			logger.Error("Failed to unmarshal ActionRequest: %v", err)
			return "", ErrPayloadDecode
		}

		outcome, err := actionSystem.RequestAction(ctx, logger, nk, userID, request)
		if err != nil {
			return "", err
		}

		responseData, err := json.Marshal(outcome)
		if err != nil {
			logger.Error("Failed to marshal response: %v", err)
			return "", ErrPayloadEncode
		}

		return string(responseData), nil
	}
}

func rpcActionAck(p *stashlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		actionSystem := p.GetActionSystem()
		if actionSystem == nil {
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
			Token string `json:"token"`
		}
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal ActionAckRequest: %v", err)
			return "", ErrPayloadDecode
		}

		outcome, err := actionSystem.OnClientAck(ctx, logger, nk, userID, request.Token)
		if err != nil {
			return "", err
		}

		responseData, err := json.Marshal(outcome)
		if err != nil {
			logger.Error("Failed to marshal response: %v", err)
			return "", ErrPayloadEncode
		}

		return string(responseData), nil
	}
}

func rpcActionCancel(p *stashlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		actionSystem := p.GetActionSystem()
		if actionSystem == nil {
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
			Token string `json:"token"`
		}
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal ActionCancelRequest: %v", err)
			return "", ErrPayloadDecode
		}

		outcome, err := actionSystem.OnClientCancel(ctx, logger, nk, userID, request.Token)
		if err != nil {
			return "", err
		}

		responseData, err := json.Marshal(outcome)
		if err != nil {
			logger.Error("Failed to marshal response: %v", err)
			return "", ErrPayloadEncode
		}

		return string(responseData), nil
	}
}

func rpcActionStatus(p *stashlogixImpl) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		actionSystem := p.GetActionSystem()
		if actionSystem == nil {
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
			Token string `json:"token"`
		}
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			logger.Error("Failed to unmarshal ActionStatusRequest: %v", err)
			return "", ErrPayloadDecode
		}

		outcome, err := actionSystem.GetActionStatus(ctx, logger, userID, request.Token)
		if err != nil {
			return "", err
		}

		responseData, err := json.Marshal(outcome)
		if err != nil {
			logger.Error("Failed to marshal response: %v", err)
			return "", ErrPayloadEncode
		}

		return string(responseData), nil
	}
}
