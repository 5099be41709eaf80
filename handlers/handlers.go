package handlers

import (
	"github.com/bwmarrin/discordgo"

	"warden-bot/bot"
)

// Register wires every slash command to its handler and installs the
// interaction dispatcher on the session.
func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)

	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if handler, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			handler(s, i)
		}
	})
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	moderate := func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		HandleModerationCommand(s, i, b)
	}

	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"mute":   moderate,
		"ban":    moderate,
		"kick":   moderate,
		"warn":   moderate,
		"unmute": moderate,
		"unban":  moderate,
		"pardon": moderate,
		"warnings": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleWarningsCommand(s, i, b)
		},
		"modlog": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleModLogCommand(s, i, b)
		},
		"restrictions": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleRestrictionsCommand(s, i, b)
		},
		"modstats": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleModStatsCommand(s, i, b)
		},
		"sysinfo": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleSystemInfoCommand(s, i, b)
		},
	}
}
