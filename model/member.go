package model

// SystemActorID is the issuer recorded for scheduler-driven actions.
const SystemActorID = "SYSTEM"

// Member is a read-only snapshot of a user's standing in a guild, taken at
// request time. The engine never mutates it and tolerates it being stale.
type Member struct {
	UserID  string
	GuildID string
	RoleIDs []string
	IsOwner bool
	// BaseCapabilities reports whether the member holds the platform
	// permission bit each action kind requires. Filled by the snapshot
	// provider; the engine does not know the platform's bit layout.
	BaseCapabilities map[ActionKind]bool
}

// Role is one entry of a guild's role table. Higher Rank means more
// authority.
type Role struct {
	ID                    string
	Rank                  int
	AdministratorOverride bool
}

// SystemMember returns the synthetic actor used by the expiry scheduler.
func SystemMember(guildID string) Member {
	return Member{UserID: SystemActorID, GuildID: guildID}
}

// IsSystem reports whether the member is the scheduler's synthetic actor.
func (m Member) IsSystem() bool {
	return m.UserID == SystemActorID
}

// MaxRank resolves the member's highest role rank against the guild role
// table. A member with no ranked roles resolves to -1 so that any ranked
// member outranks them.
func (m Member) MaxRank(roles map[string]Role) int {
	max := -1
	for _, id := range m.RoleIDs {
		if r, ok := roles[id]; ok && r.Rank > max {
			max = r.Rank
		}
	}
	return max
}

// HasAdministratorOverride reports whether any of the member's roles carries
// the administrator override.
func (m Member) HasAdministratorOverride(roles map[string]Role) bool {
	for _, id := range m.RoleIDs {
		if r, ok := roles[id]; ok && r.AdministratorOverride {
			return true
		}
	}
	return false
}

// HasBaseCapability reports whether the snapshot carries the platform
// permission bit for the given action kind.
func (m Member) HasBaseCapability(kind ActionKind) bool {
	return m.BaseCapabilities[kind]
}
