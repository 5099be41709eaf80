package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden-bot/model"
	"warden-bot/moderation"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Init(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func muteAction(guildID, targetID string, at int64, durationSeconds int64) model.ModerationAction {
	return model.ModerationAction{
		GuildID:         guildID,
		IssuerID:        "mod1",
		TargetID:        targetID,
		Kind:            model.ActionMute,
		Reason:          "spam",
		DurationSeconds: durationSeconds,
		Timestamp:       at,
	}
}

func TestActionIDsMonotonicPerGuild(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	for n := 1; n <= 3; n++ {
		result, err := store.CommitAction(ctx, model.ModerationAction{
			GuildID: "g1", IssuerID: "mod1", TargetID: "u1",
			Kind: model.ActionWarn, Timestamp: 100,
		}, moderation.OpRecordWarning)
		assert.NoError(err)
		assert.Equal(int64(n), result.Action.ActionID)
	}

	// Counters are independent per guild.
	result, err := store.CommitAction(ctx, model.ModerationAction{
		GuildID: "g2", IssuerID: "mod1", TargetID: "u1",
		Kind: model.ActionKick, Timestamp: 100,
	}, moderation.OpNone)
	assert.NoError(err)
	assert.Equal(int64(1), result.Action.ActionID)
}

func TestRestrictionUniquenessRollsBackWholeCommit(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CommitAction(ctx, muteAction("g1", "u1", 100, 3600), moderation.OpCreateRestriction)
	assert.NoError(err)

	_, err = store.CommitAction(ctx, muteAction("g1", "u1", 200, 7200), moderation.OpCreateRestriction)
	assert.ErrorIs(err, moderation.ErrRestrictionActive)

	// The conflicting commit left no audit record behind.
	actions, err := store.ListAuditTrail(ctx, "g1", "", 0)
	assert.NoError(err)
	assert.Len(actions, 1)

	restrictions, err := store.ListActiveRestrictions(ctx, "g1")
	assert.NoError(err)
	if assert.Len(restrictions, 1) {
		assert.Equal(int64(3700), restrictions[0].ExpiresAt)
	}
}

func TestDifferentKindsShareASubject(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CommitAction(ctx, muteAction("g1", "u1", 100, 3600), moderation.OpCreateRestriction)
	assert.NoError(err)

	ban := muteAction("g1", "u1", 100, 3600)
	ban.Kind = model.ActionBan
	_, err = store.CommitAction(ctx, ban, moderation.OpCreateRestriction)
	assert.NoError(err)

	restrictions, err := store.ListActiveRestrictions(ctx, "g1")
	assert.NoError(err)
	assert.Len(restrictions, 2)
}

func TestLiftIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CommitAction(ctx, muteAction("g1", "u1", 100, 3600), moderation.OpCreateRestriction)
	assert.NoError(err)

	unmute := model.ModerationAction{
		GuildID: "g1", IssuerID: "mod1", TargetID: "u1",
		Kind: model.ActionUnmute, Timestamp: 200,
	}
	result, err := store.CommitAction(ctx, unmute, moderation.OpLiftRestriction)
	assert.NoError(err)
	assert.True(result.Removed)

	// A second lift finds nothing, which is expected and not an error.
	result, err = store.CommitAction(ctx, unmute, moderation.OpLiftRestriction)
	assert.NoError(err)
	assert.False(result.Removed)
}

func TestListExpiredOrderedOldestFirst(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	// Three restrictions expiring at 150, 250, 350.
	for n, target := range []string{"u1", "u2", "u3"} {
		_, err := store.CommitAction(ctx, muteAction("g1", target, 100, int64(50+n*100)), moderation.OpCreateRestriction)
		assert.NoError(err)
	}

	expired, err := store.ListExpired(ctx, time.Unix(250, 0))
	assert.NoError(err)
	if assert.Len(expired, 2) {
		assert.Equal("u1", expired[0].UserID)
		assert.Equal("u2", expired[1].UserID)
	}

	none, err := store.ListExpired(ctx, time.Unix(149, 0))
	assert.NoError(err)
	assert.Empty(none)
}

func TestHasActiveRestriction(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	key := model.RestrictionKey{UserID: "u1", GuildID: "g1", Kind: model.RestrictionMute}
	active, err := store.HasActiveRestriction(ctx, key)
	assert.NoError(err)
	assert.False(active)

	_, err = store.CommitAction(ctx, muteAction("g1", "u1", 100, 3600), moderation.OpCreateRestriction)
	assert.NoError(err)

	active, err = store.HasActiveRestriction(ctx, key)
	assert.NoError(err)
	assert.True(active)
}

func TestWarningRetentionSweepIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	old := model.ModerationAction{GuildID: "g1", IssuerID: "mod1", TargetID: "u1", Kind: model.ActionWarn, Timestamp: 100}
	recent := model.ModerationAction{GuildID: "g1", IssuerID: "mod1", TargetID: "u1", Kind: model.ActionWarn, Timestamp: 5000}
	_, err := store.CommitAction(ctx, old, moderation.OpRecordWarning)
	assert.NoError(err)
	_, err = store.CommitAction(ctx, recent, moderation.OpRecordWarning)
	assert.NoError(err)

	flipped, err := store.ExpireWarningsOlderThan(ctx, "g1", time.Unix(1000, 0))
	assert.NoError(err)
	assert.Equal(1, flipped)

	count, err := store.ActiveWarningCount(ctx, "g1", "u1")
	assert.NoError(err)
	assert.Equal(1, count)

	flipped, err = store.ExpireWarningsOlderThan(ctx, "g1", time.Unix(1000, 0))
	assert.NoError(err)
	assert.Zero(flipped)
}

func TestAuditTrailFilterAndLimit(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	for _, target := range []string{"u1", "u2", "u1", "u3", "u1"} {
		_, err := store.CommitAction(ctx, model.ModerationAction{
			GuildID: "g1", IssuerID: "mod1", TargetID: target,
			Kind: model.ActionKick, Timestamp: 100,
		}, moderation.OpNone)
		assert.NoError(err)
	}

	all, err := store.ListAuditTrail(ctx, "g1", "", 0)
	assert.NoError(err)
	assert.Len(all, 5)
	// Newest first.
	assert.Equal(int64(5), all[0].ActionID)

	filtered, err := store.ListAuditTrail(ctx, "g1", "u1", 2)
	assert.NoError(err)
	if assert.Len(filtered, 2) {
		assert.Equal(int64(5), filtered[0].ActionID)
		assert.Equal(int64(3), filtered[1].ActionID)
	}
}

func TestIssuerActionStats(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	for _, issuer := range []string{"mod1", "mod1", "mod2"} {
		_, err := store.CommitAction(ctx, model.ModerationAction{
			GuildID: "g1", IssuerID: issuer, TargetID: "u1",
			Kind: model.ActionKick, Timestamp: 500,
		}, moderation.OpNone)
		assert.NoError(err)
	}

	stats, err := store.IssuerActionStats(ctx, "g1", time.Unix(0, 0))
	assert.NoError(err)
	assert.Equal(map[string]int{"mod1": 2, "mod2": 1}, stats)

	total, err := store.TotalActionCount(ctx, "g1", time.Unix(0, 0))
	assert.NoError(err)
	assert.Equal(3, total)
}
