package moderation_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden-bot/model"
	"warden-bot/moderation"
	"warden-bot/utils/database/ledger"
)

type fakeGateway struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (g *fakeGateway) Apply(ctx context.Context, kind model.ActionKind, guildID, targetID, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, string(kind)+":"+targetID)
	return g.err
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *fakeGateway) setErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

func newTestEngine(t *testing.T) (*moderation.Coordinator, *ledger.Store, *fakeGateway) {
	t.Helper()
	db, err := ledger.Init(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := ledger.New(db)
	gw := &fakeGateway{}
	eng := moderation.NewCoordinator(store, gw, moderation.WithLedgerRetries(2))
	return eng, store, gw
}

func roleTable() map[string]model.Role {
	return map[string]model.Role{
		"mod":    {ID: "mod", Rank: 5},
		"member": {ID: "member", Rank: 2},
	}
}

func caps() map[model.ActionKind]bool {
	m := make(map[model.ActionKind]bool)
	for _, k := range []model.ActionKind{
		model.ActionKick, model.ActionBan, model.ActionMute, model.ActionWarn,
		model.ActionUnmute, model.ActionUnban, model.ActionPardon,
	} {
		m[k] = true
	}
	return m
}

func moderator(id string) model.Member {
	return model.Member{UserID: id, GuildID: "g1", RoleIDs: []string{"mod"}, BaseCapabilities: caps()}
}

func subject(id string) model.Member {
	return model.Member{UserID: id, GuildID: "g1", RoleIDs: []string{"member"}}
}

func muteRequest(actorID, targetID string) moderation.Request {
	return moderation.Request{
		Actor:    moderator(actorID),
		Target:   subject(targetID),
		Roles:    roleTable(),
		Kind:     model.ActionMute,
		Reason:   "spam",
		Duration: time.Hour,
	}
}

func auditCount(t *testing.T, store *ledger.Store, guildID string) int {
	t.Helper()
	actions, err := store.ListAuditTrail(context.Background(), guildID, "", 0)
	require.NoError(t, err)
	return len(actions)
}

func TestMuteCreatesRestrictionAndAuditTogether(t *testing.T) {
	assert := assert.New(t)
	eng, store, gw := newTestEngine(t)
	ctx := context.Background()

	action, err := eng.Execute(ctx, muteRequest("mod1", "user1"))
	assert.NoError(err)
	assert.Equal(model.ActionMute, action.Kind)
	assert.Equal(int64(1), action.ActionID)
	assert.Equal(int64(3600), action.DurationSeconds)
	assert.Equal(1, gw.callCount())

	restrictions, err := store.ListActiveRestrictions(ctx, "g1")
	assert.NoError(err)
	if assert.Len(restrictions, 1) {
		assert.Equal("user1", restrictions[0].UserID)
		assert.Equal(model.RestrictionMute, restrictions[0].Kind)
		assert.Equal(action.Timestamp+3600, restrictions[0].ExpiresAt)
		assert.Equal(action.ActionID, restrictions[0].ActionID)
	}
	assert.Equal(1, auditCount(t, store, "g1"))
}

func TestConcurrentMutesOnlyOneWins(t *testing.T) {
	assert := assert.New(t)
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for n := 0; n < 2; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, results[n] = eng.Execute(ctx, muteRequest("mod1", "user1"))
		}(n)
	}
	wg.Wait()

	var conflicts, successes int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, moderation.ErrRestrictionActive):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(1, successes)
	assert.Equal(1, conflicts)

	// The loser left zero ledger side effects.
	restrictions, err := store.ListActiveRestrictions(ctx, "g1")
	assert.NoError(err)
	assert.Len(restrictions, 1)
	assert.Equal(1, auditCount(t, store, "g1"))
}

func TestGatewayFailureLeavesLedgerUntouched(t *testing.T) {
	assert := assert.New(t)
	eng, store, gw := newTestEngine(t)
	ctx := context.Background()
	gw.setErr(errors.New("connection timed out"))

	req := muteRequest("mod1", "user1")
	req.Kind = model.ActionBan
	_, err := eng.Execute(ctx, req)
	assert.ErrorIs(err, moderation.ErrExternalEffect)

	assert.Equal(0, auditCount(t, store, "g1"))
	restrictions, listErr := store.ListActiveRestrictions(ctx, "g1")
	assert.NoError(listErr)
	assert.Empty(restrictions)
}

func TestSelfTargetIsInvalidNotDenied(t *testing.T) {
	assert := assert.New(t)
	eng, store, gw := newTestEngine(t)

	req := muteRequest("mod1", "mod1")
	req.Target = moderator("mod1")
	_, err := eng.Execute(context.Background(), req)
	assert.ErrorIs(err, moderation.ErrInvalidRequest)
	assert.NotErrorIs(err, moderation.ErrNotAuthorized)
	assert.Equal(0, gw.callCount())
	assert.Equal(0, auditCount(t, store, "g1"))
}

func TestTemporaryKindRequiresDuration(t *testing.T) {
	assert := assert.New(t)
	eng, _, gw := newTestEngine(t)

	req := muteRequest("mod1", "user1")
	req.Duration = 0
	_, err := eng.Execute(context.Background(), req)
	assert.ErrorIs(err, moderation.ErrInvalidRequest)
	assert.Equal(0, gw.callCount())
}

func TestDenialCarriesReasonAndTouchesNothing(t *testing.T) {
	assert := assert.New(t)
	eng, store, gw := newTestEngine(t)

	req := muteRequest("user2", "user1")
	req.Actor = subject("user2") // same rank as target
	req.Kind = model.ActionBan
	_, err := eng.Execute(context.Background(), req)

	assert.ErrorIs(err, moderation.ErrNotAuthorized)
	var denial *moderation.NotAuthorizedError
	if assert.ErrorAs(err, &denial) {
		assert.Equal(moderation.DenialEqualRank, denial.Reason)
	}
	assert.Equal(0, gw.callCount())
	assert.Equal(0, auditCount(t, store, "g1"))
}

func TestUnmuteLiftsAndAuditUnchanged(t *testing.T) {
	assert := assert.New(t)
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	muteAction, err := eng.Execute(ctx, muteRequest("mod1", "user1"))
	assert.NoError(err)

	req := muteRequest("mod1", "user1")
	req.Kind = model.ActionUnmute
	req.Duration = 0
	unmuteAction, err := eng.Execute(ctx, req)
	assert.NoError(err)
	assert.Equal(model.ActionUnmute, unmuteAction.Kind)
	assert.Equal(int64(2), unmuteAction.ActionID)

	restrictions, err := store.ListActiveRestrictions(ctx, "g1")
	assert.NoError(err)
	assert.Empty(restrictions)

	// Prior audit rows are immutable: the original mute row reads back
	// exactly as committed.
	actions, err := store.ListAuditTrail(ctx, "g1", "", 0)
	assert.NoError(err)
	if assert.Len(actions, 2) {
		assert.Equal(muteAction, actions[1]) // newest first
	}
}

func TestLiftWithNothingToLiftStillAudits(t *testing.T) {
	assert := assert.New(t)
	eng, store, gw := newTestEngine(t)

	req := muteRequest("mod1", "user1")
	req.Kind = model.ActionUnban
	req.Duration = 0
	action, err := eng.Execute(context.Background(), req)
	assert.NoError(err)
	assert.Equal(model.ActionUnban, action.Kind)
	assert.Equal(0, gw.callCount(), "gateway must be skipped when there is nothing to lift")
	assert.Equal(1, auditCount(t, store, "g1"))
}

func TestLiftAbsentNoOpSkipsAudit(t *testing.T) {
	assert := assert.New(t)
	eng, store, gw := newTestEngine(t)

	req := muteRequest("mod1", "user1")
	req.Kind = model.ActionUnmute
	req.Duration = 0
	req.LiftAbsentIsNoOp = true
	action, err := eng.Execute(context.Background(), req)
	assert.NoError(err)
	assert.Zero(action.ActionID)
	assert.Equal(0, gw.callCount())
	assert.Equal(0, auditCount(t, store, "g1"))
}

func TestWarnAndPardonLifecycle(t *testing.T) {
	assert := assert.New(t)
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	warnReq := muteRequest("mod1", "user1")
	warnReq.Kind = model.ActionWarn
	warnReq.Duration = 0
	_, err := eng.Execute(ctx, warnReq)
	assert.NoError(err)

	count, err := store.ActiveWarningCount(ctx, "g1", "user1")
	assert.NoError(err)
	assert.Equal(1, count)

	pardonReq := muteRequest("mod1", "user1")
	pardonReq.Kind = model.ActionPardon
	pardonReq.Duration = 0
	_, err = eng.Execute(ctx, pardonReq)
	assert.NoError(err)

	count, err = store.ActiveWarningCount(ctx, "g1", "user1")
	assert.NoError(err)
	assert.Zero(count)

	// Warning rows survive the pardon; only the flag flips.
	warnings, err := store.ListWarnings(ctx, "g1", "user1")
	assert.NoError(err)
	if assert.Len(warnings, 1) {
		assert.False(warnings[0].Active)
	}
	assert.Equal(2, auditCount(t, store, "g1"))
}

func TestAlreadyInDesiredStateIsSuccess(t *testing.T) {
	assert := assert.New(t)
	eng, store, gw := newTestEngine(t)
	gw.setErr(moderation.ErrAlreadyInDesiredState)

	_, err := eng.Execute(context.Background(), muteRequest("mod1", "user1"))
	assert.NoError(err)
	assert.Equal(1, auditCount(t, store, "g1"))
}

type failingLedger struct {
	moderation.Ledger
	mu      sync.Mutex
	commits int
}

func (l *failingLedger) CommitAction(ctx context.Context, action model.ModerationAction, op moderation.CommitOp) (moderation.CommitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.commits++
	return moderation.CommitResult{}, errors.New("disk full")
}

func (l *failingLedger) commitCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commits
}

func TestLedgerWriteFailedAfterBoundedRetries(t *testing.T) {
	assert := assert.New(t)
	db, err := ledger.Init(filepath.Join(t.TempDir(), "ledger.db"))
	assert.NoError(err)
	defer db.Close()

	failing := &failingLedger{Ledger: ledger.New(db)}
	gw := &fakeGateway{}
	eng := moderation.NewCoordinator(failing, gw, moderation.WithLedgerRetries(3))

	_, err = eng.Execute(context.Background(), muteRequest("mod1", "user1"))
	assert.ErrorIs(err, moderation.ErrLedgerWrite)
	assert.Equal(1, gw.callCount(), "the external effect is never re-applied")
	assert.Equal(3, failing.commitCount())
}
