package model

import "fmt"

// RestrictionKind is the kind of time-bounded enforcement tracked while
// active.
type RestrictionKind string

const (
	RestrictionMute RestrictionKind = "mute"
	RestrictionBan  RestrictionKind = "ban"
)

// RestrictionKey identifies at most one active restriction. All ledger
// mutations touching the same key are serialized by the coordinator.
type RestrictionKey struct {
	UserID  string
	GuildID string
	Kind    RestrictionKind
}

// String renders the key in a stable form usable for lock keying.
func (k RestrictionKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.GuildID, k.UserID, k.Kind)
}

// ActiveRestriction is one row of the active restriction set. Its existence
// always corresponds to exactly one antecedent ModerationAction of the
// matching kind.
type ActiveRestriction struct {
	UserID    string          `db:"user_id"`
	GuildID   string          `db:"guild_id"`
	Kind      RestrictionKind `db:"kind"`
	ExpiresAt int64           `db:"expires_at"` // unix seconds
	ActionID  int64           `db:"action_id"`  // the causing audit record
}

// Key returns the restriction's composite key.
func (r ActiveRestriction) Key() RestrictionKey {
	return RestrictionKey{UserID: r.UserID, GuildID: r.GuildID, Kind: r.Kind}
}
