package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"warden-bot/model"
)

func testRoles() map[string]model.Role {
	return map[string]model.Role{
		"r2":    {ID: "r2", Rank: 2},
		"r3":    {ID: "r3", Rank: 3},
		"r5":    {ID: "r5", Rank: 5},
		"admin": {ID: "admin", Rank: 1, AdministratorOverride: true},
	}
}

func allCapabilities() map[model.ActionKind]bool {
	caps := make(map[model.ActionKind]bool)
	for _, k := range []model.ActionKind{
		model.ActionKick, model.ActionBan, model.ActionMute, model.ActionWarn,
		model.ActionUnmute, model.ActionUnban, model.ActionPardon,
	} {
		caps[k] = true
	}
	return caps
}

func testMember(userID string, roleIDs ...string) model.Member {
	return model.Member{
		UserID:           userID,
		GuildID:          "g1",
		RoleIDs:          roleIDs,
		BaseCapabilities: allCapabilities(),
	}
}

func TestEqualRankAlwaysDenied(t *testing.T) {
	assert := assert.New(t)
	roles := testRoles()
	actor := testMember("a", "r3")
	target := testMember("b", "r3")

	for _, kind := range []model.ActionKind{
		model.ActionKick, model.ActionBan, model.ActionMute, model.ActionWarn,
		model.ActionUnmute, model.ActionUnban, model.ActionPardon,
	} {
		allowed, reason := CanModerate(actor, target, roles, kind)
		assert.False(allowed, "kind %s", kind)
		assert.Equal(DenialEqualRank, reason, "kind %s", kind)
	}
}

func TestOwnerTargetImmune(t *testing.T) {
	assert := assert.New(t)
	roles := testRoles()

	owner := testMember("owner", "r5")
	owner.IsOwner = true

	cases := []struct {
		name  string
		actor model.Member
	}{
		{"high rank actor", testMember("a", "r5")},
		{"administrator override", testMember("a", "admin")},
		{"another owner", func() model.Member {
			m := testMember("a", "r5")
			m.IsOwner = true
			return m
		}()},
		{"owner acting on themself", owner},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allowed, reason := CanModerate(tc.actor, owner, roles, model.ActionBan)
			assert.False(allowed)
			assert.Equal(DenialTargetIsOwner, reason)
		})
	}
}

func TestOwnerActorAllowed(t *testing.T) {
	assert := assert.New(t)
	roles := testRoles()

	actor := testMember("a")
	actor.IsOwner = true
	actor.BaseCapabilities = nil // owners bypass capability checks

	target := testMember("b", "r5")

	allowed, _ := CanModerate(actor, target, roles, model.ActionBan)
	assert.True(allowed)
}

func TestAdministratorOverrideAllowed(t *testing.T) {
	assert := assert.New(t)
	roles := testRoles()

	// Override role outranked by the target; the override still wins.
	actor := testMember("a", "admin")
	actor.BaseCapabilities = nil
	target := testMember("b", "r5")

	allowed, _ := CanModerate(actor, target, roles, model.ActionMute)
	assert.True(allowed)
}

func TestStrictRankComparison(t *testing.T) {
	assert := assert.New(t)
	roles := testRoles()

	higher := testMember("a", "r5")
	lower := testMember("b", "r2")

	allowed, _ := CanModerate(higher, lower, roles, model.ActionMute)
	assert.True(allowed)

	allowed, reason := CanModerate(lower, higher, roles, model.ActionMute)
	assert.False(allowed)
	assert.Equal(DenialLowerRank, reason)
}

func TestMissingBaseCapabilityDenied(t *testing.T) {
	assert := assert.New(t)
	roles := testRoles()

	actor := testMember("a", "r5")
	actor.BaseCapabilities = map[model.ActionKind]bool{model.ActionKick: true}
	target := testMember("b", "r2")

	allowed, reason := CanModerate(actor, target, roles, model.ActionBan)
	assert.False(allowed)
	assert.Equal(DenialMissingBasePermission, reason)

	allowed, _ = CanModerate(actor, target, roles, model.ActionKick)
	assert.True(allowed)
}

func TestSystemActorLiftsWithoutClearance(t *testing.T) {
	assert := assert.New(t)
	roles := testRoles()

	system := model.SystemMember("g1")
	target := testMember("b", "r5")

	for _, kind := range []model.ActionKind{model.ActionUnmute, model.ActionUnban, model.ActionPardon} {
		allowed, _ := CanModerate(system, target, roles, kind)
		assert.True(allowed, "kind %s", kind)
	}

	// The system actor gets no free pass on restriction-creating kinds.
	allowed, _ := CanModerate(system, target, roles, model.ActionMute)
	assert.False(allowed)
}

func TestMemberWithNoRankedRoles(t *testing.T) {
	assert := assert.New(t)
	roles := testRoles()

	actor := testMember("a", "r2")
	target := testMember("b") // no roles at all

	allowed, _ := CanModerate(actor, target, roles, model.ActionWarn)
	assert.True(allowed)
}
