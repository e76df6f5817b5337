package stashlogix

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	notificationCodeActionCommitted = 2001
	notificationCodeActionRejected  = 2002
	notificationCodeActionAborted   = 2003
)

// NotificationOutcomePublisher pushes terminal action outcomes to the acting user as Nakama
// notifications, so clients learn about timeouts and disconnect aborts they never acknowledged.
type NotificationOutcomePublisher struct {
	// SkipRejections suppresses rejection pushes. Commits and aborts are always sent.
	SkipRejections bool
}

func (p *NotificationOutcomePublisher) Send(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, events []*OutcomeEvent) {
	for _, event := range events {
		var subject string
		var code int
		switch event.Kind {
		case OutcomeCommitted:
			subject = "Action committed"
			code = notificationCodeActionCommitted
		case OutcomeRejected:
			if p.SkipRejections {
				continue
			}
			subject = "Action rejected"
			code = notificationCodeActionRejected
		case OutcomeAborted:
			subject = "Action aborted"
			code = notificationCodeActionAborted
		default:
			continue
		}

		content := map[string]interface{}{
			"token":        event.Token,
			"inventory_id": event.InventoryId,
			"slot_index":   event.SlotIndex,
			"item_name":    event.ItemName,
			"reason":       event.Reason,
			"type":         "stash_action_outcome",
		}
		if err := nk.NotificationSend(ctx, userID, subject, content, code, "", true); err != nil {
			logger.Error("Failed to send action outcome notification to user %s: %v", userID, err)
		}
	}
}
