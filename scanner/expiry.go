package scanner

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"warden-bot/model"
	"warden-bot/moderation"
)

// Alerter raises an operational alarm outside the normal log stream.
type Alerter func(component, operation, detail string)

// ExpirySweeper lifts restrictions whose expiry has passed. Each lift goes
// through the coordinator as the SYSTEM actor, so scheduled revocations
// follow the exact same authorize, effect, ledger path as live commands.
//
// Per restriction the sweeper is a small state machine: Active, Expiring,
// then Lifted on success or back to Active on transient failure. A
// restriction is never dropped from the active set because lifting kept
// failing; it is simply retried next tick.
type ExpirySweeper struct {
	coordinator *moderation.Coordinator
	ledger      moderation.Ledger

	// alarmThreshold is how many consecutive failed ticks a single
	// restriction survives before the alerter fires.
	alarmThreshold int
	alert          Alerter

	mu       sync.Mutex
	failures map[model.RestrictionKey]int
}

// NewExpirySweeper creates a sweeper. alert may be nil.
func NewExpirySweeper(coordinator *moderation.Coordinator, ledger moderation.Ledger, alarmThreshold int, alert Alerter) *ExpirySweeper {
	if alarmThreshold <= 0 {
		alarmThreshold = 5
	}
	return &ExpirySweeper{
		coordinator:    coordinator,
		ledger:         ledger,
		alarmThreshold: alarmThreshold,
		alert:          alert,
		failures:       make(map[model.RestrictionKey]int),
	}
}

// Sweep runs one expiry pass. It abandons the rest of the batch cleanly
// when ctx is cancelled; whatever was not processed is picked up by the
// next tick.
func (w *ExpirySweeper) Sweep(ctx context.Context, now time.Time) {
	expired, err := w.ledger.ListExpired(ctx, now)
	if err != nil {
		log.Printf("Error listing expired restrictions: %v", err)
		return
	}

	for _, restriction := range expired {
		if ctx.Err() != nil {
			return
		}
		w.liftOne(ctx, restriction)
	}
}

func (w *ExpirySweeper) liftOne(ctx context.Context, restriction model.ActiveRestriction) {
	key := restriction.Key()
	action, err := w.coordinator.Execute(ctx, moderation.Request{
		Actor:            model.SystemMember(restriction.GuildID),
		Target:           model.Member{UserID: restriction.UserID, GuildID: restriction.GuildID},
		Kind:             model.LiftKind(restriction.Kind),
		Reason:           "expired",
		LiftAbsentIsNoOp: true,
	})

	switch {
	case err == nil:
		w.clearFailures(key)
		if action.ActionID != 0 {
			log.Printf("Lifted expired %s for user %s in guild %s (action ID: %d)",
				restriction.Kind, restriction.UserID, restriction.GuildID, action.ActionID)
		}
		// A zero action means a manual lift won the race for this key,
		// which is a benign no-op.
	case errors.Is(err, moderation.ErrRestrictionActive):
		// Impossible by construction (the sweep only acts on keys it found
		// active), but equivalent to success if it somehow occurs.
		w.clearFailures(key)
	case errors.Is(err, moderation.ErrLedgerWrite):
		log.Printf("Ledger write failed lifting %s for user %s in guild %s: %v",
			restriction.Kind, restriction.UserID, restriction.GuildID, err)
		w.raise("ExpirySweeper", "lift "+string(restriction.Kind),
			"ledger write failed for "+key.String()+"; manual reconciliation required: "+err.Error())
	case errors.Is(err, moderation.ErrExternalEffect):
		count := w.bumpFailures(key)
		log.Printf("Failed to lift expired %s for user %s in guild %s (consecutive failures: %d): %v",
			restriction.Kind, restriction.UserID, restriction.GuildID, count, err)
		if count%w.alarmThreshold == 0 {
			w.raise("ExpirySweeper", "lift "+string(restriction.Kind),
				key.String()+" has failed "+strconv.Itoa(count)+" consecutive ticks")
		}
	default:
		log.Printf("Error lifting expired %s for user %s in guild %s: %v",
			restriction.Kind, restriction.UserID, restriction.GuildID, err)
	}
}

func (w *ExpirySweeper) bumpFailures(key model.RestrictionKey) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures[key]++
	return w.failures[key]
}

func (w *ExpirySweeper) clearFailures(key model.RestrictionKey) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.failures, key)
}

func (w *ExpirySweeper) raise(component, operation, detail string) {
	if w.alert != nil {
		w.alert(component, operation, detail)
	}
}

