package defs

import "github.com/bwmarrin/discordgo"

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

func reasonOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Reason for the action",
		Required:    required,
	}
}

var Mute = &discordgo.ApplicationCommand{
	Name:        "mute",
	Description: "Temporarily mute a member",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to mute"),
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "How long the mute lasts, e.g. 30m, 2h, 7d",
			Required:    true,
		},
		reasonOption(true),
	},
}

var Ban = &discordgo.ApplicationCommand{
	Name:        "ban",
	Description: "Temporarily ban a member",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to ban"),
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "How long the ban lasts, e.g. 2h, 7d, 4w",
			Required:    true,
		},
		reasonOption(true),
	},
}

var Kick = &discordgo.ApplicationCommand{
	Name:        "kick",
	Description: "Kick a member from the server",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to kick"),
		reasonOption(true),
	},
}

var Warn = &discordgo.ApplicationCommand{
	Name:        "warn",
	Description: "Record a warning against a member",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to warn"),
		reasonOption(true),
	},
}

var Unmute = &discordgo.ApplicationCommand{
	Name:        "unmute",
	Description: "Lift a member's mute early",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to unmute"),
		reasonOption(false),
	},
}

var Unban = &discordgo.ApplicationCommand{
	Name:        "unban",
	Description: "Lift a user's ban early",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "user_id",
			Description: "ID of the banned user",
			Required:    true,
		},
		reasonOption(false),
	},
}

var Pardon = &discordgo.ApplicationCommand{
	Name:        "pardon",
	Description: "Pardon a member's active warnings",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to pardon"),
		reasonOption(false),
	},
}

var Warnings = &discordgo.ApplicationCommand{
	Name:        "warnings",
	Description: "List a member's warnings",
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to look up"),
	},
}

var ModLog = &discordgo.ApplicationCommand{
	Name:        "modlog",
	Description: "Show the guild's moderation audit trail",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Filter by target member",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "limit",
			Description: "Number of entries to show (default 10)",
			Required:    false,
		},
	},
}

var Restrictions = &discordgo.ApplicationCommand{
	Name:        "restrictions",
	Description: "List the guild's active mutes and bans",
}

var ModStats = &discordgo.ApplicationCommand{
	Name:        "modstats",
	Description: "Show per-moderator action counts",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "days",
			Description: "Window in days (default 7)",
			Required:    false,
		},
	},
}

var SysInfo = &discordgo.ApplicationCommand{
	Name:        "sysinfo",
	Description: "Show host and engine status",
}
