package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"warden-bot/model"
	"warden-bot/moderation"
)

// DiscordGateway applies moderation effects through the Discord REST API.
// Lifting kinds are idempotent: an already-lifted subject reports
// ErrAlreadyInDesiredState, never failure.
type DiscordGateway struct {
	session *discordgo.Session
	guilds  map[string]model.GuildConfig
}

// NewDiscordGateway wraps a session. guilds supplies the per-guild mute
// role.
func NewDiscordGateway(session *discordgo.Session, guilds map[string]model.GuildConfig) *DiscordGateway {
	return &DiscordGateway{session: session, guilds: guilds}
}

func (g *DiscordGateway) Apply(ctx context.Context, kind model.ActionKind, guildID, targetID, reason string) error {
	opt := discordgo.WithContext(ctx)

	switch kind {
	case model.ActionKick:
		return g.session.GuildMemberDeleteWithReason(guildID, targetID, reason, opt)
	case model.ActionBan:
		return g.session.GuildBanCreateWithReason(guildID, targetID, reason, 0, opt)
	case model.ActionUnban:
		err := g.session.GuildBanDelete(guildID, targetID, opt)
		if isRESTErrorCode(err, discordgo.ErrCodeUnknownBan) {
			return moderation.ErrAlreadyInDesiredState
		}
		return err
	case model.ActionMute:
		muteRole, err := g.muteRole(guildID)
		if err != nil {
			return err
		}
		return g.session.GuildMemberRoleAdd(guildID, targetID, muteRole, opt)
	case model.ActionUnmute:
		muteRole, err := g.muteRole(guildID)
		if err != nil {
			return err
		}
		err = g.session.GuildMemberRoleRemove(guildID, targetID, muteRole, opt)
		if isRESTErrorCode(err, discordgo.ErrCodeUnknownMember) {
			// The member left the guild; there is no role left to remove.
			return moderation.ErrAlreadyInDesiredState
		}
		return err
	case model.ActionWarn, model.ActionPardon:
		// No platform-side effect; the record is the action.
		return nil
	}
	return fmt.Errorf("unsupported action kind %q", kind)
}

func (g *DiscordGateway) muteRole(guildID string) (string, error) {
	guildCfg, ok := g.guilds[guildID]
	if !ok || guildCfg.MuteRoleID == "" {
		return "", fmt.Errorf("no mute role configured for guild %s", guildID)
	}
	return guildCfg.MuteRoleID, nil
}

func isRESTErrorCode(err error, code int) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		return restErr.Message != nil && restErr.Message.Code == code
	}
	return false
}
