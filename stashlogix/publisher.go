package stashlogix

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeAborted   = "aborted"
)

// OutcomeEvent describes the terminal resolution of an inventory action.
type OutcomeEvent struct {
	Kind        string            `json:"kind"`
	Token       string            `json:"token,omitempty"`
	InventoryId string            `json:"inventory_id,omitempty"`
	SlotIndex   int               `json:"slot_index"`
	ItemName    string            `json:"item_name,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	Timestamp   int64             `json:"timestamp,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Value       string            `json:"value,omitempty"`

	// The system that generated this event.
	System System `json:"-"`
}

// The Publisher describes a service or similar target implementation that wishes to receive and
// process the outcome events generated server-side as actions resolve.
//
// Each Publisher may choose to process or ignore each event as it sees fit. It may also choose to
// buffer events for batch processing at its discretion.
//
// Publisher implementations must safely handle concurrent calls.
//
// Implementations must handle any errors or retries internally, callers will not repeat calls in
// case of errors and delivery is never part of an action's commit contract.
type Publisher interface {
	// Send is called when there are one or more events generated.
	Send(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, events []*OutcomeEvent)
}
