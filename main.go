package main

import (
	"context"
	"database/sql"
	"time"

	"stashforge/stashlogix"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// noinspection GoUnusedExportedFunction
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	initStart := time.Now()

	logger.Info("Loading Stashforge Nakama plugin...")

	sl, err := stashlogix.Init(ctx, logger, nk, initializer,
		stashlogix.WithCatalogSystem("stashlogix-catalog.json", true),
		stashlogix.WithStashSystem("stashlogix-stash.json", true),
		stashlogix.WithActionSystem("stashlogix-actions.json", true),
	)
	if err != nil {
		logger.Error("Failed to initialize Stashlogix systems: %v", err)
		return err
	}

	sl.AddPublisher(&stashlogix.NotificationOutcomePublisher{})

	actionSystem := sl.GetActionSystem()
	actionSystem.SetPresenter(&stashlogix.NotificationActionPresenter{})

	// A dropped session aborts any action still waiting on the client, so its tree handles are
	// not held for a prompt nobody will answer.
	err = initializer.RegisterEventSessionEnd(func(ctx context.Context, logger runtime.Logger, evt *api.Event) {
		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok || userID == "" {
			return
		}
		actionSystem.HandleSessionEnd(ctx, logger, nk, userID)
	})
	if err != nil {
		logger.Error("Failed to register session end handler: %v", err)
		return err
	}

	logger.Info("Stashforge Nakama plugin loaded in '%d' msec.", time.Now().Sub(initStart).Milliseconds())
	return nil
}

// main is never called: Nakama loads this package as a plugin and invokes
// InitModule. It exists so the package also links under the default buildmode.
func main() {}
