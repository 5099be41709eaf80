package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"warden-bot/model"
)

// SnapshotProvider reads member and role snapshots from Discord. Views are
// taken at request time and may be stale by the time the engine acts on
// them; the engine tolerates that.
type SnapshotProvider struct {
	session *discordgo.Session
}

// NewSnapshotProvider wraps a session.
func NewSnapshotProvider(session *discordgo.Session) *SnapshotProvider {
	return &SnapshotProvider{session: session}
}

// Roles returns the guild's role table keyed by role id. Rank is the role's
// position; the administrator permission bit maps to the override flag.
func (p *SnapshotProvider) Roles(ctx context.Context, guildID string) (map[string]model.Role, error) {
	guildRoles, err := p.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching roles for guild %s: %w", guildID, err)
	}

	roles := make(map[string]model.Role, len(guildRoles))
	for _, r := range guildRoles {
		roles[r.ID] = model.Role{
			ID:                    r.ID,
			Rank:                  r.Position,
			AdministratorOverride: r.Permissions&discordgo.PermissionAdministrator != 0,
		}
	}
	return roles, nil
}

// Member returns a member snapshot with capability bits resolved from the
// member's role permissions. roles must come from a Roles call on the same
// guild.
func (p *SnapshotProvider) Member(ctx context.Context, guildID, userID string, roles map[string]model.Role) (model.Member, error) {
	opt := discordgo.WithContext(ctx)

	guildMember, err := p.session.GuildMember(guildID, userID, opt)
	if err != nil {
		return model.Member{}, fmt.Errorf("fetching member %s in guild %s: %w", userID, guildID, err)
	}

	guild, err := p.session.Guild(guildID, opt)
	if err != nil {
		return model.Member{}, fmt.Errorf("fetching guild %s: %w", guildID, err)
	}

	perms := p.memberPermissions(guildID, guildMember)
	return model.Member{
		UserID:           userID,
		GuildID:          guildID,
		RoleIDs:          guildMember.Roles,
		IsOwner:          guild.OwnerID == userID,
		BaseCapabilities: baseCapabilities(perms),
	}, nil
}

// memberPermissions ORs the permission bits of the member's roles plus the
// guild's @everyone role.
func (p *SnapshotProvider) memberPermissions(guildID string, member *discordgo.Member) int64 {
	guildRoles, err := p.session.GuildRoles(guildID)
	if err != nil {
		return 0
	}

	byID := make(map[string]*discordgo.Role, len(guildRoles))
	for _, r := range guildRoles {
		byID[r.ID] = r
	}

	var perms int64
	if everyone, ok := byID[guildID]; ok {
		perms |= everyone.Permissions
	}
	for _, id := range member.Roles {
		if r, ok := byID[id]; ok {
			perms |= r.Permissions
		}
	}
	return perms
}

func baseCapabilities(perms int64) map[model.ActionKind]bool {
	return map[model.ActionKind]bool{
		model.ActionKick:   perms&discordgo.PermissionKickMembers != 0,
		model.ActionBan:    perms&discordgo.PermissionBanMembers != 0,
		model.ActionUnban:  perms&discordgo.PermissionBanMembers != 0,
		model.ActionMute:   perms&discordgo.PermissionManageRoles != 0,
		model.ActionUnmute: perms&discordgo.PermissionManageRoles != 0,
		model.ActionWarn:   perms&discordgo.PermissionModerateMembers != 0,
		model.ActionPardon: perms&discordgo.PermissionModerateMembers != 0,
	}
}
