package model

// ActionKind identifies a moderation action in the audit log.
type ActionKind string

const (
	ActionKick   ActionKind = "kick"
	ActionBan    ActionKind = "ban"
	ActionMute   ActionKind = "mute"
	ActionWarn   ActionKind = "warn"
	ActionUnmute ActionKind = "unmute"
	ActionUnban  ActionKind = "unban"
	ActionPardon ActionKind = "pardon"
)

// Valid reports whether the kind is one of the known action kinds.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionKick, ActionBan, ActionMute, ActionWarn, ActionUnmute, ActionUnban, ActionPardon:
		return true
	}
	return false
}

// Temporary reports whether the kind creates a time-bounded restriction and
// therefore requires a positive duration.
func (k ActionKind) Temporary() bool {
	return k == ActionMute || k == ActionBan
}

// Lifting reports whether the kind removes a prior restriction or warning.
func (k ActionKind) Lifting() bool {
	return k == ActionUnmute || k == ActionUnban || k == ActionPardon
}

// RestrictionKind maps a restriction-creating or restriction-lifting action
// to the restriction it concerns. The second return is false for kinds that
// do not touch the restriction set (kick, warn, pardon).
func (k ActionKind) RestrictionKind() (RestrictionKind, bool) {
	switch k {
	case ActionMute, ActionUnmute:
		return RestrictionMute, true
	case ActionBan, ActionUnban:
		return RestrictionBan, true
	}
	return "", false
}

// LiftKind returns the action kind that lifts the given restriction.
func LiftKind(k RestrictionKind) ActionKind {
	if k == RestrictionBan {
		return ActionUnban
	}
	return ActionUnmute
}

// ModerationAction is one permanent entry of a guild's audit log. Rows are
// append-only: no code path in this engine updates or deletes them.
type ModerationAction struct {
	ActionID        int64      `db:"action_id"` // monotonic within a guild
	GuildID         string     `db:"guild_id"`
	IssuerID        string     `db:"issuer_id"` // SystemActorID for scheduler-driven actions
	TargetID        string     `db:"target_id"`
	Kind            ActionKind `db:"kind"`
	Reason          string     `db:"reason"`
	DurationSeconds int64      `db:"duration_seconds"` // 0 for non-temporary kinds
	Timestamp       int64      `db:"timestamp"`        // unix seconds
}
