package stashlogix

import (
	"context"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

var (
	ErrPreconditionFailed = runtime.NewError("action precondition failed", FAILED_PRECONDITION_ERROR_CODE)
	ErrHookDenied         = runtime.NewError("action denied by item hook", PERMISSION_DENIED_ERROR_CODE)
	ErrActionTimeout      = runtime.NewError("action acknowledgement timed out", DEADLINE_EXCEEDED_ERROR_CODE)
	ErrActionDisconnected = runtime.NewError("session ended before acknowledgement", ABORTED_ERROR_CODE)
	ErrTokenNotFound      = runtime.NewError("action token not found", NOT_FOUND_ERROR_CODE)
	ErrTooManyPending     = runtime.NewError("too many pending actions", RESOURCE_EXHAUSTED_ERROR_CODE)
)

// ActionType names a server-authoritative item action.
type ActionType string

const (
	ActionTypeUse  ActionType = "use"
	ActionTypeBuy  ActionType = "buy"
	ActionTypeMove ActionType = "move"
)

// ActionState tracks an action through its lifecycle. Commit, rejection and abort are terminal,
// a resolved token never changes state again.
type ActionState int

const (
	ActionStateIdle ActionState = iota
	ActionStateRequested
	ActionStateValidating
	ActionStateAwaitingClientAck
	ActionStateExecuting
	ActionStateCommitted
	ActionStateRejected
	ActionStateAborted
)

// String returns the wire name of the action state.
func (s ActionState) String() string {
	switch s {
	case ActionStateRequested:
		return "requested"
	case ActionStateValidating:
		return "validating"
	case ActionStateAwaitingClientAck:
		return "awaiting_client_ack"
	case ActionStateExecuting:
		return "executing"
	case ActionStateCommitted:
		return "committed"
	case ActionStateRejected:
		return "rejected"
	case ActionStateAborted:
		return "aborted"
	default:
		return "idle"
	}
}

func actionStateFromString(name string) ActionState {
	switch name {
	case "requested":
		return ActionStateRequested
	case "validating":
		return ActionStateValidating
	case "awaiting_client_ack":
		return ActionStateAwaitingClientAck
	case "executing":
		return ActionStateExecuting
	case "committed":
		return ActionStateCommitted
	case "rejected":
		return ActionStateRejected
	case "aborted":
		return ActionStateAborted
	default:
		return ActionStateIdle
	}
}

// MarshalJSON encodes the state by its wire name.
func (s ActionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the state from its wire name.
func (s *ActionState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*s = actionStateFromString(name)
	return nil
}

// ActionRequest describes the action a client wants performed. Placement in the target inventory
// is never client-controlled, the engine picks the slot deterministically.
type ActionRequest struct {
	Type              ActionType     `json:"type"`
	ActorInventoryId  string         `json:"actor_inventory_id"`
	SlotIndex         int            `json:"slot_index"`
	TargetInventoryId string         `json:"target_inventory_id,omitempty"`
	Quantity          int64          `json:"quantity,omitempty"`
	RequestData       map[string]any `json:"request_data,omitempty"`
}

// ActionOutcome is the authoritative view of an action. PlacedIndex is -1 unless the action
// stored an item somewhere.
type ActionOutcome struct {
	Token          string      `json:"token"`
	Type           ActionType  `json:"type"`
	State          ActionState `json:"state"`
	Reason         string      `json:"reason,omitempty"`
	ItemName       string      `json:"item_name,omitempty"`
	PlacedIndex    int         `json:"placed_index"`
	RemainingCount int64       `json:"remaining_count,omitempty"`
	DeadlineSec    int64       `json:"deadline_sec,omitempty"`
	CreateTimeSec  int64       `json:"create_time_sec,omitempty"`
	UpdateTimeSec  int64       `json:"update_time_sec,omitempty"`
}

// ItemHooks extends item behavior with server-side callbacks. OnUsing and OnBuying run before
// the mutation and an error from either denies the action. OnUsed runs after commit with the
// actor's resulting total quantity of the item, errors from it are logged only.
//
// Hooks run while the action holds the affected tree handles. They must not mutate the same
// trees through the StashSystem or they will deadlock.
type ItemHooks struct {
	OnUsing  func(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, request *ActionRequest, item *ItemInstance, def *CatalogConfigItem) error
	OnUsed   func(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, request *ActionRequest, itemName string, remainingCount int64) error
	OnBuying func(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, request *ActionRequest, def *CatalogConfigItem) error
}

// ActionPresenter pushes the acknowledgement prompt for a held action to the client. A presenter
// failure aborts the action, holding a tree handle for a client that never saw the prompt helps
// nobody.
type ActionPresenter interface {
	Present(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, outcome *ActionOutcome) error
}

// ArmedSourceFn reports the item the user currently has armed, or an empty string when unarmed.
type ArmedSourceFn func(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string) (string, error)

// The ActionSystem coordinates the request, validation, client acknowledgement and execution of
// item actions. It owns the token table and drives the StashSystem under the tree handles it
// holds for the whole exchange.
type ActionSystem interface {
	System

	// RequestAction validates and either commits the action immediately or parks it awaiting the
	// client's acknowledgement. On rejection both the terminal outcome and the matching error
	// are returned.
	RequestAction(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, request *ActionRequest) (*ActionOutcome, error)

	// OnClientAck executes an action awaiting acknowledgement. Re-delivery of a resolved token
	// returns the memoized outcome unchanged.
	OnClientAck(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID, token string) (*ActionOutcome, error)

	// OnClientCancel aborts an action awaiting acknowledgement, leaving state untouched.
	OnClientCancel(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID, token string) (*ActionOutcome, error)

	// GetActionStatus reports the current view of a token without changing it.
	GetActionStatus(ctx context.Context, logger runtime.Logger, userID, token string) (*ActionOutcome, error)

	// HandleSessionEnd aborts every action the user has awaiting acknowledgement.
	HandleSessionEnd(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string)

	// ExpireDue aborts every pending action whose acknowledgement deadline has passed and prunes
	// memoized outcomes past their retention. Returns the number of actions aborted.
	ExpireDue(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, nowSec int64) int

	// RegisterItemHooks binds hooks to a catalog item name. Call during module init only.
	RegisterItemHooks(itemName string, hooks *ItemHooks)

	// SetPresenter sets the acknowledgement prompt transport.
	SetPresenter(presenter ActionPresenter)

	// SetArmedSource sets the lookup consulted for use preconditions on items that are not
	// allowed while armed.
	SetArmedSource(fn ArmedSourceFn)
}

// ActionConfig is the data definition for the ActionSystem type.
type ActionConfig struct {
	AckTimeoutSec        int64 `json:"ack_timeout_sec,omitempty"`
	AckTimeoutMarginSec  int64 `json:"ack_timeout_margin_sec,omitempty"`
	ResolvedRetentionSec int64 `json:"resolved_retention_sec,omitempty"`
	MaxPendingPerUser    int   `json:"max_pending_per_user,omitempty"`
}
