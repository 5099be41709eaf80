package moderation

import (
	"context"
	"errors"

	"warden-bot/model"
)

// ErrAlreadyInDesiredState is returned by a gateway when the remote platform
// is already where the action would put it (revoking a lifted ban, muting an
// already-muted member). It is distinguishable from genuine failure and
// treated as success.
var ErrAlreadyInDesiredState = errors.New("already in desired state")

// ExternalActionGateway applies or revokes the real-world effect of a
// moderation action on the remote platform. The engine treats it as a
// fallible black box; implementations must make lifting kinds idempotent and
// report an already-lifted subject as ErrAlreadyInDesiredState.
type ExternalActionGateway interface {
	Apply(ctx context.Context, kind model.ActionKind, guildID, targetID, reason string) error
}

// MemberSnapshotProvider supplies read-only, possibly stale member and role
// views taken at request time.
type MemberSnapshotProvider interface {
	Roles(ctx context.Context, guildID string) (map[string]model.Role, error)
	Member(ctx context.Context, guildID, userID string, roles map[string]model.Role) (model.Member, error)
}
