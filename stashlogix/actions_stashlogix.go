package stashlogix

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// pendingAction is an action parked in AwaitingClientAck. It keeps the tree handles it acquired
// at request time, the timer that aborts it at the deadline, and the module handles the timer
// needs to finalize without a live request context.
type pendingAction struct {
	token    string
	userID   string
	request  *ActionRequest
	outcome  *ActionOutcome
	itemName string
	def      *CatalogConfigItem
	roots    []string
	release  func()
	timer    *time.Timer
	logger   runtime.Logger
	nk       runtime.NakamaModule
}

// resolvedAction memoizes a terminal outcome so re-delivered acknowledgements resolve
// idempotently.
type resolvedAction struct {
	userID        string
	outcome       *ActionOutcome
	resolvedAtSec int64
}

// NakamaActionSystem implements the ActionSystem interface using Nakama as the backend.
type NakamaActionSystem struct {
	config      *ActionConfig
	stashlogix  Stashlogix
	presenter   ActionPresenter
	armedSource ArmedSourceFn
	hooks       map[string]*ItemHooks

	pendingMu sync.Mutex
	pending   map[string]*pendingAction
	resolved  map[string]*resolvedAction
	byUser    map[string]map[string]*pendingAction
}

// NewNakamaActionSystem creates a new instance of the action system with the given configuration.
func NewNakamaActionSystem(config *ActionConfig) *NakamaActionSystem {
	if config == nil {
		config = &ActionConfig{}
	}
	if config.AckTimeoutSec <= 0 {
		config.AckTimeoutSec = 30
	}
	if config.AckTimeoutMarginSec <= 0 {
		config.AckTimeoutMarginSec = 5
	}
	if config.ResolvedRetentionSec <= 0 {
		config.ResolvedRetentionSec = 3600
	}

	return &NakamaActionSystem{
		config:   config,
		hooks:    make(map[string]*ItemHooks),
		pending:  make(map[string]*pendingAction),
		resolved: make(map[string]*resolvedAction),
		byUser:   make(map[string]map[string]*pendingAction),
	}
}

// GetType returns the system type for the action system.
func (a *NakamaActionSystem) GetType() SystemType {
	return SystemTypeAction
}

// GetConfig returns the configuration for the action system.
func (a *NakamaActionSystem) GetConfig() any {
	return a.config
}

// SetStashlogix sets the Stashlogix instance for this action system.
func (a *NakamaActionSystem) SetStashlogix(sl Stashlogix) {
	a.stashlogix = sl
}

// SetPresenter sets the acknowledgement prompt transport.
func (a *NakamaActionSystem) SetPresenter(presenter ActionPresenter) {
	a.presenter = presenter
}

// SetArmedSource sets the lookup consulted for use preconditions.
func (a *NakamaActionSystem) SetArmedSource(fn ArmedSourceFn) {
	a.armedSource = fn
}

// RegisterItemHooks binds hooks to a catalog item name. Call during module init only.
func (a *NakamaActionSystem) RegisterItemHooks(itemName string, hooks *ItemHooks) {
	if itemName == "" || hooks == nil {
		return
	}
	a.hooks[itemName] = hooks
}

// hooksFor resolves the hook handle for a definition. A definition may point several items at one
// shared registration through server_hook, otherwise hooks bind by item name.
func (a *NakamaActionSystem) hooksFor(def *CatalogConfigItem) *ItemHooks {
	if def == nil {
		return nil
	}
	if def.ServerHook != "" {
		if hooks := a.hooks[def.ServerHook]; hooks != nil {
			return hooks
		}
	}
	return a.hooks[def.Name]
}

func (a *NakamaActionSystem) stashSystem() (*NakamaStashSystem, error) {
	if a.stashlogix == nil {
		return nil, ErrSystemNotAvailable
	}
	stash, ok := a.stashlogix.GetStashSystem().(*NakamaStashSystem)
	if !ok || stash == nil {
		return nil, ErrSystemNotAvailable
	}
	return stash, nil
}

func (a *NakamaActionSystem) catalogSystem() (CatalogSystem, error) {
	if a.stashlogix == nil {
		return nil, ErrSystemNotAvailable
	}
	catalogSystem := a.stashlogix.GetCatalogSystem()
	if catalogSystem == nil {
		return nil, ErrSystemNotAvailable
	}
	return catalogSystem, nil
}

// RequestAction validates the request and either commits it immediately or parks it awaiting the
// client's acknowledgement, holding the affected tree handles for the whole exchange.
func (a *NakamaActionSystem) RequestAction(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, request *ActionRequest) (*ActionOutcome, error) {
	if request == nil || request.ActorInventoryId == "" || request.Quantity < 0 {
		return nil, ErrBadInput
	}
	switch request.Type {
	case ActionTypeUse:
	case ActionTypeBuy, ActionTypeMove:
		if request.TargetInventoryId == "" {
			return nil, ErrBadInput
		}
	default:
		return nil, ErrBadInput
	}

	stash, err := a.stashSystem()
	if err != nil {
		return nil, err
	}

	if a.config.MaxPendingPerUser > 0 {
		a.pendingMu.Lock()
		count := len(a.byUser[userID])
		a.pendingMu.Unlock()
		if count >= a.config.MaxPendingPerUser {
			return nil, ErrTooManyPending
		}
	}

	var roots []string
	var release func()
	if request.Type == ActionTypeUse {
		rootID, rel, lerr := stash.lockRoot(ctx, request.ActorInventoryId)
		if lerr != nil {
			return nil, lockWaitError(lerr)
		}
		roots, release = []string{rootID}, rel
	} else {
		actorRoot, targetRoot, rel, lerr := stash.lockRoots(ctx, request.ActorInventoryId, request.TargetInventoryId)
		if lerr != nil {
			return nil, lockWaitError(lerr)
		}
		roots, release = []string{actorRoot, targetRoot}, rel
	}

	now := time.Now().Unix()
	outcome := &ActionOutcome{
		Token:         uuid.New().String(),
		Type:          request.Type,
		State:         ActionStateValidating,
		PlacedIndex:   -1,
		CreateTimeSec: now,
		UpdateTimeSec: now,
	}

	def, itemName, reason, verr := a.validate(ctx, logger, nk, stash, userID, request)
	outcome.ItemName = itemName
	if verr != nil {
		return a.resolveTerminal(ctx, logger, nk, userID, request, outcome, release, ActionStateRejected, reason, verr)
	}

	if !needsAck(request.Type, def) {
		outcome.State = ActionStateExecuting
		placed, remaining, events, xerr := a.execute(ctx, logger, nk, stash, userID, request, roots)
		if xerr != nil {
			return a.resolveTerminal(ctx, logger, nk, userID, request, outcome, release, ActionStateRejected, "", xerr)
		}
		outcome.State = ActionStateCommitted
		outcome.PlacedIndex = placed
		outcome.RemainingCount = remaining
		outcome.UpdateTimeSec = time.Now().Unix()
		for _, rootID := range dedupeRoots(roots) {
			stash.autoPersistLocked(ctx, logger, nk, rootID)
		}
		a.memoize(userID, outcome)
		release()
		stash.fireWatchEvents(ctx, logger, nk, events)
		a.emitOutcome(ctx, logger, nk, userID, request, outcome)
		a.firePostHooks(ctx, logger, nk, userID, request, def, outcome)
		return copyOutcome(outcome), nil
	}

	deadline := now + a.ackDeadlineSec(def)
	outcome.State = ActionStateAwaitingClientAck
	outcome.DeadlineSec = deadline
	entry := &pendingAction{
		token:    outcome.Token,
		userID:   userID,
		request:  request,
		outcome:  outcome,
		itemName: itemName,
		def:      def,
		roots:    roots,
		release:  release,
		logger:   logger,
		nk:       nk,
	}
	a.pendingMu.Lock()
	a.pending[entry.token] = entry
	if a.byUser[userID] == nil {
		a.byUser[userID] = make(map[string]*pendingAction)
	}
	a.byUser[userID][entry.token] = entry
	entry.timer = time.AfterFunc(time.Duration(deadline-now)*time.Second, func() {
		a.expireToken(entry.token)
	})
	a.pendingMu.Unlock()

	if a.presenter != nil {
		if perr := a.presenter.Present(ctx, logger, nk, userID, copyOutcome(outcome)); perr != nil {
			logger.Warn("Action presenter failed for token %s: %v", entry.token, perr)
			if taken, ok := a.takePending(entry.token, userID); ok {
				a.finishAbort(ctx, logger, nk, taken, "acknowledgement prompt undeliverable")
			}
			return a.statusOf(userID, entry.token), ErrActionDisconnected
		}
	}

	return copyOutcome(outcome), nil
}

// validate checks the action's preconditions under the held tree handles. The returned reason
// carries hook failure details for the outcome record.
func (a *NakamaActionSystem) validate(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, stash *NakamaStashSystem, userID string, request *ActionRequest) (*CatalogConfigItem, string, string, error) {
	catalogSystem, err := a.catalogSystem()
	if err != nil {
		return nil, "", "", err
	}

	// Actors may only act through their own inventories, shared world inventories carry no
	// owner. Move targets follow the same rule.
	actor, ok := stash.inventory(request.ActorInventoryId)
	if !ok {
		return nil, "", "", ErrInventoryNotFound
	}
	if actor.OwnerId != "" && actor.OwnerId != userID {
		return nil, "", "", ErrInventoryAccessDenied
	}
	if request.Type == ActionTypeMove {
		target, ok := stash.inventory(request.TargetInventoryId)
		if !ok {
			return nil, "", "", ErrInventoryNotFound
		}
		if target.OwnerId != "" && target.OwnerId != userID {
			return nil, "", "", ErrInventoryAccessDenied
		}
	}

	sourceID := request.ActorInventoryId
	if request.Type == ActionTypeBuy {
		sourceID = request.TargetInventoryId
	}
	source, ok := stash.inventory(sourceID)
	if !ok {
		return nil, "", "", ErrInventoryNotFound
	}
	if request.SlotIndex < 0 || request.SlotIndex >= len(source.Slots) {
		return nil, "", "", ErrSlotOutOfRange
	}
	held := source.Slots[request.SlotIndex].Item
	if held == nil {
		return nil, "", "", ErrInsufficientQuantity
	}
	itemName := held.Id

	def, err := catalogSystem.GetItem(ctx, logger, itemName)
	if err != nil {
		return nil, itemName, "", err
	}

	switch request.Type {
	case ActionTypeUse:
		units := request.Quantity
		if units == 0 {
			units = 1
		}
		if held.Count < units*def.ConsumeCount {
			return def, itemName, "", ErrInsufficientQuantity
		}
		if !def.AllowWhileArmed && a.armedSource != nil {
			armed, aerr := a.armedSource(ctx, logger, nk, userID)
			if aerr != nil {
				// Fail closed, an unknown armed state must not let a restricted use through.
				logger.Warn("Armed state lookup failed for user %s: %v", userID, aerr)
				return def, itemName, "armed state unavailable", ErrPreconditionFailed
			}
			if armed != "" {
				return def, itemName, "item cannot be used while armed", ErrPreconditionFailed
			}
		}
		if hooks := a.hooksFor(def); hooks != nil && hooks.OnUsing != nil {
			if herr := hooks.OnUsing(ctx, logger, nk, userID, request, copyInstance(held), def); herr != nil {
				return def, itemName, herr.Error(), ErrHookDenied
			}
		}

	case ActionTypeBuy:
		units := request.Quantity
		if units == 0 {
			units = 1
		}
		if held.Count < units {
			return def, itemName, "", ErrInsufficientQuantity
		}
		if hooks := a.hooksFor(def); hooks != nil && hooks.OnBuying != nil {
			if herr := hooks.OnBuying(ctx, logger, nk, userID, request, def); herr != nil {
				return def, itemName, herr.Error(), ErrHookDenied
			}
		}

	case ActionTypeMove:
		if request.Quantity > held.Count {
			return def, itemName, "", ErrInsufficientQuantity
		}
	}

	return def, itemName, "", nil
}

// execute performs the committed mutation under the held tree handles.
func (a *NakamaActionSystem) execute(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, stash *NakamaStashSystem, userID string, request *ActionRequest, roots []string) (int, int64, []watchEvent, error) {
	switch request.Type {
	case ActionTypeUse:
		units := request.Quantity
		if units == 0 {
			units = 1
		}
		catalogSystem, err := a.catalogSystem()
		if err != nil {
			return -1, 0, nil, err
		}
		def, err := catalogSystem.GetItem(ctx, logger, itemNameAt(stash, request.ActorInventoryId, request.SlotIndex))
		if err != nil {
			return -1, 0, nil, err
		}
		_, remaining, events, cerr := stash.consumeLocked(ctx, logger, roots[0], request.ActorInventoryId, request.SlotIndex, units*def.ConsumeCount)
		return -1, remaining, events, cerr

	case ActionTypeBuy:
		units := request.Quantity
		if units == 0 {
			units = 1
		}
		index, events, merr := stash.moveLocked(ctx, logger, roots[1], roots[0], request.TargetInventoryId, request.SlotIndex, request.ActorInventoryId, units)
		if merr != nil {
			return -1, 0, nil, merr
		}
		return index, actorTotal(stash, request.ActorInventoryId, itemNameAt(stash, request.ActorInventoryId, index)), events, nil

	case ActionTypeMove:
		sourceName := itemNameAt(stash, request.ActorInventoryId, request.SlotIndex)
		index, events, merr := stash.moveLocked(ctx, logger, roots[0], roots[1], request.ActorInventoryId, request.SlotIndex, request.TargetInventoryId, request.Quantity)
		if merr != nil {
			return -1, 0, nil, merr
		}
		return index, actorTotal(stash, request.ActorInventoryId, sourceName), events, nil
	}
	return -1, 0, nil, ErrBadInput
}

// OnClientAck executes an action awaiting acknowledgement. Re-delivered tokens resolve to their
// memoized outcome.
func (a *NakamaActionSystem) OnClientAck(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID, token string) (*ActionOutcome, error) {
	if outcome := a.resolvedOutcome(userID, token); outcome != nil {
		return outcome, nil
	}
	entry, ok := a.takePending(token, userID)
	if !ok {
		return nil, ErrTokenNotFound
	}

	stash, err := a.stashSystem()
	if err != nil {
		return a.resolveTerminal(ctx, logger, nk, userID, entry.request, entry.outcome, entry.release, ActionStateRejected, "", err)
	}

	entry.outcome.State = ActionStateExecuting
	placed, remaining, events, xerr := a.execute(ctx, logger, nk, stash, userID, entry.request, entry.roots)
	if xerr != nil {
		return a.resolveTerminal(ctx, logger, nk, userID, entry.request, entry.outcome, entry.release, ActionStateRejected, "", xerr)
	}

	entry.outcome.State = ActionStateCommitted
	entry.outcome.PlacedIndex = placed
	entry.outcome.RemainingCount = remaining
	entry.outcome.UpdateTimeSec = time.Now().Unix()
	for _, rootID := range dedupeRoots(entry.roots) {
		stash.autoPersistLocked(ctx, logger, nk, rootID)
	}
	a.memoize(userID, entry.outcome)
	entry.release()
	stash.fireWatchEvents(ctx, logger, nk, events)
	a.emitOutcome(ctx, logger, nk, userID, entry.request, entry.outcome)
	a.firePostHooks(ctx, logger, nk, userID, entry.request, entry.def, entry.outcome)
	return copyOutcome(entry.outcome), nil
}

// OnClientCancel aborts an action awaiting acknowledgement without touching state.
func (a *NakamaActionSystem) OnClientCancel(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID, token string) (*ActionOutcome, error) {
	if outcome := a.resolvedOutcome(userID, token); outcome != nil {
		return outcome, nil
	}
	entry, ok := a.takePending(token, userID)
	if !ok {
		return nil, ErrTokenNotFound
	}
	a.finishAbort(ctx, logger, nk, entry, "cancelled by client")
	return copyOutcome(entry.outcome), nil
}

// GetActionStatus reports the current view of a token without changing it.
func (a *NakamaActionSystem) GetActionStatus(ctx context.Context, logger runtime.Logger, userID, token string) (*ActionOutcome, error) {
	outcome := a.statusOf(userID, token)
	if outcome == nil {
		return nil, ErrTokenNotFound
	}
	return outcome, nil
}

// HandleSessionEnd aborts every action the user has awaiting acknowledgement. Wire it to the
// session end event so disconnects release their tree handles promptly.
func (a *NakamaActionSystem) HandleSessionEnd(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string) {
	a.pendingMu.Lock()
	entries := make([]*pendingAction, 0, len(a.byUser[userID]))
	for token, entry := range a.byUser[userID] {
		entries = append(entries, entry)
		delete(a.pending, token)
	}
	delete(a.byUser, userID)
	a.pendingMu.Unlock()

	for _, entry := range entries {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		a.finishAbort(ctx, logger, nk, entry, "session ended")
	}
}

// ExpireDue aborts every pending action whose deadline has passed and prunes memoized outcomes
// past their retention. The deadline timers make this a safety net, and tests drive it directly.
func (a *NakamaActionSystem) ExpireDue(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, nowSec int64) int {
	a.pendingMu.Lock()
	due := make([]*pendingAction, 0)
	for token, entry := range a.pending {
		if entry.outcome.DeadlineSec <= nowSec {
			due = append(due, entry)
			delete(a.pending, token)
			delete(a.byUser[entry.userID], token)
			if len(a.byUser[entry.userID]) == 0 {
				delete(a.byUser, entry.userID)
			}
		}
	}
	for token, record := range a.resolved {
		if record.resolvedAtSec+a.config.ResolvedRetentionSec <= nowSec {
			delete(a.resolved, token)
		}
	}
	a.pendingMu.Unlock()

	for _, entry := range due {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		a.finishAbort(ctx, logger, nk, entry, "acknowledgement deadline exceeded")
	}
	return len(due)
}

// expireToken is the deadline timer callback.
func (a *NakamaActionSystem) expireToken(token string) {
	a.pendingMu.Lock()
	entry, ok := a.pending[token]
	if ok {
		delete(a.pending, token)
		delete(a.byUser[entry.userID], token)
		if len(a.byUser[entry.userID]) == 0 {
			delete(a.byUser, entry.userID)
		}
	}
	a.pendingMu.Unlock()
	if !ok {
		return
	}
	a.finishAbort(context.Background(), entry.logger, entry.nk, entry, "acknowledgement deadline exceeded")
}

// takePending removes and returns the pending entry for the token when it belongs to the user.
// Exactly one caller wins a token, later callers fall through to the memoized outcome.
func (a *NakamaActionSystem) takePending(token, userID string) (*pendingAction, bool) {
	a.pendingMu.Lock()
	entry, ok := a.pending[token]
	if !ok || entry.userID != userID {
		a.pendingMu.Unlock()
		return nil, false
	}
	delete(a.pending, token)
	delete(a.byUser[userID], token)
	if len(a.byUser[userID]) == 0 {
		delete(a.byUser, userID)
	}
	a.pendingMu.Unlock()

	if entry.timer != nil {
		entry.timer.Stop()
	}
	return entry, true
}

func (a *NakamaActionSystem) resolvedOutcome(userID, token string) *ActionOutcome {
	a.pendingMu.Lock()
	defer a.pendingMu.Unlock()
	if record, ok := a.resolved[token]; ok && record.userID == userID {
		return copyOutcome(record.outcome)
	}
	return nil
}

func (a *NakamaActionSystem) statusOf(userID, token string) *ActionOutcome {
	a.pendingMu.Lock()
	defer a.pendingMu.Unlock()
	if record, ok := a.resolved[token]; ok && record.userID == userID {
		return copyOutcome(record.outcome)
	}
	if entry, ok := a.pending[token]; ok && entry.userID == userID {
		return copyOutcome(entry.outcome)
	}
	return nil
}

func (a *NakamaActionSystem) memoize(userID string, outcome *ActionOutcome) {
	a.pendingMu.Lock()
	a.resolved[outcome.Token] = &resolvedAction{
		userID:        userID,
		outcome:       outcome,
		resolvedAtSec: outcome.UpdateTimeSec,
	}
	a.pendingMu.Unlock()
}

// resolveTerminal records a rejection, releases the held handles and reports both the terminal
// outcome and the matching error.
func (a *NakamaActionSystem) resolveTerminal(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, request *ActionRequest, outcome *ActionOutcome, release func(), state ActionState, reason string, cause error) (*ActionOutcome, error) {
	outcome.State = state
	if reason == "" && cause != nil {
		reason = cause.Error()
	}
	outcome.Reason = reason
	outcome.UpdateTimeSec = time.Now().Unix()
	a.memoize(userID, outcome)
	if release != nil {
		release()
	}
	a.emitOutcome(ctx, logger, nk, userID, request, outcome)
	return copyOutcome(outcome), cause
}

// finishAbort resolves a pending entry as aborted and releases its tree handles. Nothing was
// mutated while the action waited, so state is untouched by construction.
func (a *NakamaActionSystem) finishAbort(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, entry *pendingAction, reason string) {
	entry.outcome.State = ActionStateAborted
	entry.outcome.Reason = reason
	entry.outcome.UpdateTimeSec = time.Now().Unix()
	a.memoize(entry.userID, entry.outcome)
	if entry.release != nil {
		entry.release()
	}
	a.emitOutcome(ctx, logger, nk, entry.userID, entry.request, entry.outcome)
}

func (a *NakamaActionSystem) emitOutcome(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, request *ActionRequest, outcome *ActionOutcome) {
	if a.stashlogix == nil {
		return
	}
	var kind string
	switch outcome.State {
	case ActionStateCommitted:
		kind = OutcomeCommitted
	case ActionStateRejected:
		kind = OutcomeRejected
	case ActionStateAborted:
		kind = OutcomeAborted
	default:
		return
	}

	event := &OutcomeEvent{
		Kind:        kind,
		Token:       outcome.Token,
		InventoryId: request.ActorInventoryId,
		SlotIndex:   request.SlotIndex,
		ItemName:    outcome.ItemName,
		Reason:      outcome.Reason,
		Timestamp:   outcome.UpdateTimeSec,
		Metadata: map[string]string{
			"action":  string(request.Type),
			"user_id": userID,
		},
		Value:  canonicalRequestData(logger, request.RequestData),
		System: a,
	}
	a.stashlogix.SendOutcomeEvents(ctx, logger, nk, userID, []*OutcomeEvent{event})
}

func (a *NakamaActionSystem) firePostHooks(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, userID string, request *ActionRequest, def *CatalogConfigItem, outcome *ActionOutcome) {
	if outcome.State != ActionStateCommitted || request.Type != ActionTypeUse {
		return
	}
	if hooks := a.hooksFor(def); hooks != nil && hooks.OnUsed != nil {
		if herr := hooks.OnUsed(ctx, logger, nk, userID, request, outcome.ItemName, outcome.RemainingCount); herr != nil {
			logger.Warn("Post-use hook failed for item %s: %v", outcome.ItemName, herr)
		}
	}
}

// canonicalRequestData renders the client's free-form payload as JSON with sorted keys so event
// consumers get a stable structure.
func canonicalRequestData(logger runtime.Logger, data map[string]any) string {
	if len(data) == 0 {
		return ""
	}
	value, err := structpb.NewStruct(data)
	if err != nil {
		logger.Warn("Failed to canonicalize action request data: %v", err)
		return ""
	}
	encoded, err := protojson.Marshal(value)
	if err != nil {
		logger.Warn("Failed to encode action request data: %v", err)
		return ""
	}
	return string(encoded)
}

// needsAck reports whether the action must wait for the client before executing. Items with a
// use time or a client hook confirm through the acknowledgement round trip, everything else
// commits immediately.
func needsAck(actionType ActionType, def *CatalogConfigItem) bool {
	switch actionType {
	case ActionTypeUse:
		return def.UseTimeMs > 0 || def.ClientHook != ""
	case ActionTypeBuy:
		return def.ClientHook != ""
	default:
		return false
	}
}

func (a *NakamaActionSystem) ackDeadlineSec(def *CatalogConfigItem) int64 {
	if def.UseTimeMs > 0 {
		return (def.UseTimeMs+999)/1000 + a.config.AckTimeoutMarginSec
	}
	return a.config.AckTimeoutSec
}

func itemNameAt(stash *NakamaStashSystem, inventoryID string, index int) string {
	inv, ok := stash.inventory(inventoryID)
	if !ok || index < 0 || index >= len(inv.Slots) || inv.Slots[index].Item == nil {
		return ""
	}
	return inv.Slots[index].Item.Id
}

func actorTotal(stash *NakamaStashSystem, inventoryID, itemName string) int64 {
	inv, ok := stash.inventory(inventoryID)
	if !ok || itemName == "" {
		return 0
	}
	return totalCount(inv, itemName)
}

// lockWaitError maps a failed wait for a tree handle onto the action error taxonomy. Another
// action holding the handle past the caller's deadline is a timeout, a vanished caller is a
// disconnect.
func lockWaitError(err error) error {
	switch err {
	case context.DeadlineExceeded:
		return ErrActionTimeout
	case context.Canceled:
		return ErrActionDisconnected
	default:
		return err
	}
}

func dedupeRoots(roots []string) []string {
	if len(roots) == 2 && roots[0] == roots[1] {
		return roots[:1]
	}
	return roots
}

func copyOutcome(outcome *ActionOutcome) *ActionOutcome {
	dup := *outcome
	return &dup
}
