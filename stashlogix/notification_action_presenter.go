package stashlogix

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

const notificationCodeActionPrompt = 2000

// NotificationActionPresenter delivers acknowledgement prompts as Nakama notifications. The
// prompt is not persisted, a prompt that outlives its deadline is just noise.
type NotificationActionPresenter struct{}

func (p *NotificationActionPresenter) Present(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, outcome *ActionOutcome) error {
	content := map[string]interface{}{
		"token":        outcome.Token,
		"action":       string(outcome.Type),
		"item_name":    outcome.ItemName,
		"deadline_sec": outcome.DeadlineSec,
		"type":         "stash_action_prompt",
	}
	return nk.NotificationSend(ctx, userID, "Action awaiting confirmation", content, notificationCodeActionPrompt, "", false)
}
