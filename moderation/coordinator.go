package moderation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"warden-bot/model"
	"warden-bot/utils"
)

const (
	defaultGatewayTimeout = 10 * time.Second
	defaultStorageTimeout = 5 * time.Second
	defaultLedgerRetries  = 3

	ledgerRetryBackoff = 200 * time.Millisecond
)

// Request is one incoming moderation request. Actor and Target are
// snapshots taken by the caller at request time; Roles is the guild's role
// table from the same snapshot.
type Request struct {
	Actor    model.Member
	Target   model.Member
	Roles    map[string]model.Role
	Kind     model.ActionKind
	Reason   string
	Duration time.Duration // required positive for mute/ban, ignored otherwise

	// LiftAbsentIsNoOp makes a lifting request whose restriction is already
	// gone return a zero action instead of auditing "nothing to lift". Set
	// by the expiry sweeper, whose work may be raced away by a manual lift.
	LiftAbsentIsNoOp bool
}

// Coordinator orchestrates a moderation request: authorize, apply the
// external effect, commit the ledger. The same path serves live commands
// and the expiry scheduler.
type Coordinator struct {
	ledger  Ledger
	gateway ExternalActionGateway
	locks   *utils.KeyedLock

	gatewayTimeout time.Duration
	storageTimeout time.Duration
	ledgerRetries  int

	now func() time.Time
}

// CoordinatorOption tunes a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithTimeouts bounds every gateway and storage call.
func WithTimeouts(gateway, storage time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if gateway > 0 {
			c.gatewayTimeout = gateway
		}
		if storage > 0 {
			c.storageTimeout = storage
		}
	}
}

// WithLedgerRetries bounds the post-effect commit retry count.
func WithLedgerRetries(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.ledgerRetries = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator creates a Coordinator over the given ledger and gateway.
func NewCoordinator(ledger Ledger, gateway ExternalActionGateway, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		ledger:         ledger,
		gateway:        gateway,
		locks:          utils.NewKeyedLock(),
		gatewayTimeout: defaultGatewayTimeout,
		storageTimeout: defaultStorageTimeout,
		ledgerRetries:  defaultLedgerRetries,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs one moderation request end to end and returns the committed
// audit record. All mutations of the same restriction key are serialized
// here, whether they come from a live command or the scheduler.
func (c *Coordinator) Execute(ctx context.Context, req Request) (model.ModerationAction, error) {
	if err := validate(req); err != nil {
		return model.ModerationAction{}, err
	}

	if allowed, reason := CanModerate(req.Actor, req.Target, req.Roles, req.Kind); !allowed {
		return model.ModerationAction{}, &NotAuthorizedError{Reason: reason}
	}

	action := model.ModerationAction{
		GuildID:   req.Target.GuildID,
		IssuerID:  req.Actor.UserID,
		TargetID:  req.Target.UserID,
		Kind:      req.Kind,
		Reason:    req.Reason,
		Timestamp: c.now().Unix(),
	}
	if req.Kind.Temporary() {
		action.DurationSeconds = int64(req.Duration / time.Second)
	}

	// Mutations of one (subject, guild, kind) key must not interleave:
	// two racing mutes, or a manual unmute racing the sweep.
	if restrictionKind, keyed := req.Kind.RestrictionKind(); keyed {
		key := model.RestrictionKey{
			UserID:  req.Target.UserID,
			GuildID: req.Target.GuildID,
			Kind:    restrictionKind,
		}
		if err := c.locks.Lock(ctx, key.String()); err != nil {
			return model.ModerationAction{}, fmt.Errorf("acquiring restriction lock: %w", err)
		}
		defer c.locks.Unlock(key.String())
	}

	op, skipGateway, err := c.resolveOp(ctx, action, req)
	if err != nil {
		return model.ModerationAction{}, err
	}
	if op == OpNone && req.Kind.Lifting() && req.LiftAbsentIsNoOp {
		return model.ModerationAction{}, nil
	}

	if !skipGateway {
		if err := c.applyEffect(ctx, action); err != nil {
			return model.ModerationAction{}, err
		}
	}

	return c.commit(ctx, action, op, skipGateway)
}

// resolveOp picks the ledger mutation for the action and decides whether the
// gateway call is skipped. A lifting kind with nothing to lift still gets
// audited (an explicit "there was nothing to lift" is itself worth
// recording) but must not reach the gateway.
func (c *Coordinator) resolveOp(ctx context.Context, action model.ModerationAction, req Request) (op CommitOp, skipGateway bool, err error) {
	switch req.Kind {
	case model.ActionMute, model.ActionBan:
		return OpCreateRestriction, false, nil
	case model.ActionWarn:
		return OpRecordWarning, false, nil
	case model.ActionKick:
		return OpNone, false, nil
	case model.ActionUnmute, model.ActionUnban:
		restrictionKind, _ := req.Kind.RestrictionKind()
		key := model.RestrictionKey{UserID: action.TargetID, GuildID: action.GuildID, Kind: restrictionKind}
		active, err := c.hasActiveRestriction(ctx, key)
		if err != nil {
			return OpNone, false, err
		}
		if !active {
			return OpNone, true, nil
		}
		return OpLiftRestriction, false, nil
	case model.ActionPardon:
		count, err := c.activeWarningCount(ctx, action.GuildID, action.TargetID)
		if err != nil {
			return OpNone, false, err
		}
		if count == 0 {
			return OpNone, true, nil
		}
		return OpPardonWarnings, false, nil
	}
	return OpNone, false, &InvalidRequestError{Detail: fmt.Sprintf("unknown action kind %q", req.Kind)}
}

func (c *Coordinator) hasActiveRestriction(ctx context.Context, key model.RestrictionKey) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.storageTimeout)
	defer cancel()
	active, err := c.ledger.HasActiveRestriction(ctx, key)
	if err != nil {
		return false, fmt.Errorf("checking restriction %s: %w", key, err)
	}
	return active, nil
}

func (c *Coordinator) activeWarningCount(ctx context.Context, guildID, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.storageTimeout)
	defer cancel()
	count, err := c.ledger.ActiveWarningCount(ctx, guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("counting active warnings for %s: %w", userID, err)
	}
	return count, nil
}

// applyEffect invokes the gateway under its timeout. A timeout is treated
// identically to a failure: no partial effect is assumed and the ledger is
// not touched, so the audit log never claims an action happened that did
// not.
func (c *Coordinator) applyEffect(ctx context.Context, action model.ModerationAction) error {
	ctx, cancel := context.WithTimeout(ctx, c.gatewayTimeout)
	defer cancel()

	err := c.gateway.Apply(ctx, action.Kind, action.GuildID, action.TargetID, action.Reason)
	if err == nil || errors.Is(err, ErrAlreadyInDesiredState) {
		return nil
	}
	return fmt.Errorf("%w: %s on %s: %w", ErrExternalEffect, action.Kind, action.TargetID, err)
}

// commit writes the audit record plus the matching restriction or warning
// mutation in one transaction. Once the external effect has succeeded the
// commit is retried a bounded number of times against the ledger only; the
// effect is never re-applied. Exhausting retries is the one place genuine
// data loss can occur.
func (c *Coordinator) commit(ctx context.Context, action model.ModerationAction, op CommitOp, effectSkipped bool) (model.ModerationAction, error) {
	var lastErr error
	for attempt := 1; attempt <= c.ledgerRetries; attempt++ {
		commitCtx, cancel := context.WithTimeout(ctx, c.storageTimeout)
		result, err := c.ledger.CommitAction(commitCtx, action, op)
		cancel()
		if err == nil {
			return result.Action, nil
		}
		if errors.Is(err, ErrRestrictionActive) {
			// Conflict, not a storage fault: the key already carries a
			// restriction and the caller must lift it first.
			return model.ModerationAction{}, err
		}
		lastErr = err
		if effectSkipped && op == OpNone {
			// Nothing external happened; the caller may retry the whole
			// operation from scratch.
			return model.ModerationAction{}, fmt.Errorf("appending audit record: %w", err)
		}
		log.Printf("Ledger commit attempt %d/%d failed for %s on %s: %v", attempt, c.ledgerRetries, action.Kind, action.TargetID, err)
		select {
		case <-time.After(ledgerRetryBackoff):
		case <-ctx.Done():
			return model.ModerationAction{}, fmt.Errorf("%w: %w", ErrLedgerWrite, ctx.Err())
		}
	}
	return model.ModerationAction{}, fmt.Errorf("%w after %d attempts: %w", ErrLedgerWrite, c.ledgerRetries, lastErr)
}

func validate(req Request) error {
	if !req.Kind.Valid() {
		return &InvalidRequestError{Detail: fmt.Sprintf("unknown action kind %q", req.Kind)}
	}
	switch req.Kind {
	case model.ActionKick, model.ActionBan, model.ActionMute, model.ActionWarn:
		if req.Actor.UserID == req.Target.UserID {
			return &InvalidRequestError{Detail: "cannot target yourself"}
		}
	}
	if req.Kind.Temporary() && req.Duration <= 0 {
		return &InvalidRequestError{Detail: fmt.Sprintf("%s requires a positive duration", req.Kind)}
	}
	return nil
}
