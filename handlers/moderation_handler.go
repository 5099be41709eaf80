package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"warden-bot/bot"
	"warden-bot/model"
	"warden-bot/moderation"
	"warden-bot/utils"
)

const interactionTimeout = 30 * time.Second

var commandKinds = map[string]model.ActionKind{
	"mute":   model.ActionMute,
	"ban":    model.ActionBan,
	"kick":   model.ActionKick,
	"warn":   model.ActionWarn,
	"unmute": model.ActionUnmute,
	"unban":  model.ActionUnban,
	"pardon": model.ActionPardon,
}

// HandleModerationCommand parses a moderation slash command, takes the
// actor/target snapshots, and drives the engine. All user-facing text lives
// here; the engine only returns structured errors.
func HandleModerationCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	data := i.ApplicationCommandData()
	kind, ok := commandKinds[data.Name]
	if !ok {
		utils.SendFollowUpError(s, i.Interaction, "Unknown command.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	opts := optionMap(data.Options)

	roles, err := b.GetSnapshots().Roles(ctx, i.GuildID)
	if err != nil {
		log.Printf("Error fetching role snapshot: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Could not read the guild's roles.")
		return
	}

	actor, err := b.GetSnapshots().Member(ctx, i.GuildID, i.Member.User.ID, roles)
	if err != nil {
		log.Printf("Error fetching actor snapshot: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Could not read your member details.")
		return
	}

	target, targetID, err := resolveTarget(ctx, s, i, b, kind, opts, roles)
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, err.Error())
		return
	}

	var duration time.Duration
	if kind.Temporary() {
		duration, err = utils.ParseDuration(stringOption(opts, "duration"))
		if err != nil {
			utils.SendFollowUpError(s, i.Interaction, "Invalid duration. Use forms like 30m, 2h, 7d.")
			return
		}
	}

	action, err := b.GetEngine().Execute(ctx, moderation.Request{
		Actor:    actor,
		Target:   target,
		Roles:    roles,
		Kind:     kind,
		Reason:   stringOption(opts, "reason"),
		Duration: duration,
	})
	if err != nil {
		respondExecuteError(s, i, b, kind, targetID, err)
		return
	}

	utils.SendFollowUpEmbed(s, i.Interaction, actionEmbed(action))
}

// resolveTarget builds the target snapshot. Lifting kinds tolerate a target
// that is no longer a guild member (a banned user, or someone who left
// while muted) by falling back to a bare identity.
func resolveTarget(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, kind model.ActionKind, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, roles map[string]model.Role) (model.Member, string, error) {
	var targetID string
	if opt, ok := opts["user"]; ok {
		targetID = opt.UserValue(s).ID
	} else {
		targetID = stringOption(opts, "user_id")
	}
	if targetID == "" {
		return model.Member{}, "", fmt.Errorf("No target user given.")
	}

	target, err := b.GetSnapshots().Member(ctx, i.GuildID, targetID, roles)
	if err != nil {
		if kind.Lifting() {
			return model.Member{UserID: targetID, GuildID: i.GuildID}, targetID, nil
		}
		log.Printf("Error fetching target snapshot: %v", err)
		return model.Member{}, "", fmt.Errorf("Could not retrieve member details.")
	}
	return target, targetID, nil
}

func respondExecuteError(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, kind model.ActionKind, targetID string, err error) {
	var notAuthorized *moderation.NotAuthorizedError
	var invalid *moderation.InvalidRequestError

	switch {
	case errors.As(err, &notAuthorized):
		utils.SendFollowUpError(s, i.Interaction, denialMessage(notAuthorized.Reason))
	case errors.As(err, &invalid):
		utils.SendFollowUpError(s, i.Interaction, invalid.Detail)
	case errors.Is(err, moderation.ErrRestrictionActive):
		utils.SendFollowUpError(s, i.Interaction, "That user already has an active "+string(kind)+". Lift it first.")
	case errors.Is(err, moderation.ErrExternalEffect):
		log.Printf("Gateway failure for %s on %s: %v", kind, targetID, err)
		utils.SendFollowUpError(s, i.Interaction, "Discord rejected the action. Nothing was recorded; try again.")
	case errors.Is(err, moderation.ErrLedgerWrite):
		// The effect happened but the record did not. The one condition
		// that demands operator attention.
		log.Printf("LEDGER WRITE FAILED for %s on %s: %v", kind, targetID, err)
		if webhook := b.GetConfig().AlertWebhookURL; webhook != "" {
			if alertErr := utils.AlertError(webhook, "Coordinator", string(kind),
				fmt.Sprintf("effect applied to %s but audit record lost: %v", targetID, err)); alertErr != nil {
				log.Printf("Failed to send ledger alert: %v", alertErr)
			}
		}
		utils.SendFollowUpError(s, i.Interaction, "The action was applied but could not be recorded. Staff have been alerted.")
	default:
		log.Printf("Error executing %s on %s: %v", kind, targetID, err)
		utils.SendFollowUpError(s, i.Interaction, "Something went wrong executing the action.")
	}
}

func denialMessage(reason moderation.DenialReason) string {
	switch reason {
	case moderation.DenialTargetIsOwner:
		return "The server owner cannot be targeted."
	case moderation.DenialEqualRank:
		return "You cannot act on a member of equal rank."
	case moderation.DenialLowerRank:
		return "You cannot act on a member who outranks you."
	case moderation.DenialMissingBasePermission:
		return "You lack the permission required for this action."
	}
	return "You are not allowed to do that."
}

func actionEmbed(action model.ModerationAction) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Action", Value: string(action.Kind), Inline: true},
		{Name: "Target", Value: "<@" + action.TargetID + ">", Inline: true},
		{Name: "Case", Value: fmt.Sprintf("#%d", action.ActionID), Inline: true},
	}
	if action.Reason != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Reason", Value: action.Reason})
	}
	if action.DurationSeconds > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Expires",
			Value:  fmt.Sprintf("<t:%d:R>", action.Timestamp+action.DurationSeconds),
			Inline: true,
		})
	}
	return &discordgo.MessageEmbed{
		Title:  "Moderation action recorded",
		Color:  0x5865F2, // Discord Blurple
		Fields: fields,
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func intOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string, fallback int) int {
	if opt, ok := opts[name]; ok {
		return int(opt.IntValue())
	}
	return fallback
}
