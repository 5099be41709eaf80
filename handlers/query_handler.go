package handlers

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"warden-bot/bot"
	"warden-bot/utils"
)

// HandleWarningsCommand lists a member's warnings.
func HandleWarningsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	opts := optionMap(i.ApplicationCommandData().Options)
	target := opts["user"].UserValue(s)

	warnings, err := b.GetLedger().ListWarnings(ctx, i.GuildID, target.ID)
	if err != nil {
		log.Printf("Error listing warnings: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Could not read warnings.")
		return
	}
	if len(warnings) == 0 {
		utils.SendFollowUp(s, i.Interaction, "No warnings on record for <@"+target.ID+">.")
		return
	}

	var sb strings.Builder
	active := 0
	for _, w := range warnings {
		state := "expired"
		if w.Active {
			state = "active"
			active++
		}
		fmt.Fprintf(&sb, "`#%d` <t:%d:d> by <@%s> (%s): %s\n", w.WarningID, w.Timestamp, w.IssuerID, state, w.Reason)
	}

	utils.SendFollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Warnings for %s (%d active)", target.Username, active),
		Description: sb.String(),
		Color:       0xFAA61A,
	})
}

// HandleModLogCommand shows the guild's audit trail, optionally filtered by
// target.
func HandleModLogCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	opts := optionMap(i.ApplicationCommandData().Options)
	var targetID string
	if opt, ok := opts["user"]; ok {
		targetID = opt.UserValue(s).ID
	}
	limit := intOption(opts, "limit", 10)

	actions, err := b.GetLedger().ListAuditTrail(ctx, i.GuildID, targetID, limit)
	if err != nil {
		log.Printf("Error listing audit trail: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Could not read the audit trail.")
		return
	}
	if len(actions) == 0 {
		utils.SendFollowUp(s, i.Interaction, "No moderation actions recorded.")
		return
	}

	var sb strings.Builder
	for _, a := range actions {
		issuer := "<@" + a.IssuerID + ">"
		if a.IssuerID == "SYSTEM" {
			issuer = "system"
		}
		fmt.Fprintf(&sb, "`#%d` <t:%d:d> **%s** <@%s> by %s", a.ActionID, a.Timestamp, a.Kind, a.TargetID, issuer)
		if a.Reason != "" {
			fmt.Fprintf(&sb, " — %s", a.Reason)
		}
		sb.WriteString("\n")
	}

	utils.SendFollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
		Title:       "Moderation log",
		Description: sb.String(),
		Color:       0x5865F2,
	})
}

// HandleRestrictionsCommand lists the guild's active mutes and bans.
func HandleRestrictionsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	restrictions, err := b.GetLedger().ListActiveRestrictions(ctx, i.GuildID)
	if err != nil {
		log.Printf("Error listing restrictions: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Could not read active restrictions.")
		return
	}
	if len(restrictions) == 0 {
		utils.SendFollowUp(s, i.Interaction, "No active restrictions.")
		return
	}

	var sb strings.Builder
	for _, r := range restrictions {
		fmt.Fprintf(&sb, "**%s** <@%s> expires <t:%d:R> (case #%d)\n", r.Kind, r.UserID, r.ExpiresAt, r.ActionID)
	}

	utils.SendFollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
		Title:       "Active restrictions",
		Description: sb.String(),
		Color:       0xED4245,
	})
}

// HandleModStatsCommand shows per-moderator action counts over a window.
func HandleModStatsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	days := intOption(optionMap(i.ApplicationCommandData().Options), "days", 7)
	since := time.Now().AddDate(0, 0, -days)

	stats, err := b.GetLedger().IssuerActionStats(ctx, i.GuildID, since)
	if err != nil {
		log.Printf("Error reading moderator stats: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Could not read moderator stats.")
		return
	}

	total, err := b.GetLedger().TotalActionCount(ctx, i.GuildID, since)
	if err != nil {
		log.Printf("Error reading total action count: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Could not read moderator stats.")
		return
	}

	type row struct {
		issuer string
		count  int
	}
	rows := make([]row, 0, len(stats))
	for issuer, count := range stats {
		rows = append(rows, row{issuer, count})
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a].count > rows[b].count })

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d actions in the last %d days\n\n", total, days)
	for _, r := range rows {
		issuer := "<@" + r.issuer + ">"
		if r.issuer == "SYSTEM" {
			issuer = "system"
		}
		fmt.Fprintf(&sb, "%s — %d\n", issuer, r.count)
	}

	utils.SendFollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
		Title:       "Moderator activity",
		Description: sb.String(),
		Color:       0x57F287,
	})
}
