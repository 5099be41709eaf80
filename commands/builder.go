package commands

import (
	"github.com/bwmarrin/discordgo"

	"warden-bot/commands/defs"
)

// GenerateCommands returns the full slash command set registered per guild.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Mute,
		defs.Ban,
		defs.Kick,
		defs.Warn,
		defs.Unmute,
		defs.Unban,
		defs.Pardon,
		defs.Warnings,
		defs.ModLog,
		defs.Restrictions,
		defs.ModStats,
		defs.SysInfo,
	}
}
