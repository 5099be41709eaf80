package handlers

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"warden-bot/bot"
	"warden-bot/utils"
)

// HandleSystemInfoCommand reports host health and engine counters.
func HandleSystemInfoCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	cpuCount, _ := cpu.Counts(true)
	cpuPercent, _ := cpu.Percent(0, false)
	vm, _ := mem.VirtualMemory()
	hostInfo, _ := host.Info()

	var cpuUsage float64
	if len(cpuPercent) > 0 {
		cpuUsage = cpuPercent[0]
	}

	restrictions, err := b.GetLedger().ListActiveRestrictions(ctx, i.GuildID)
	if err != nil {
		log.Printf("Error counting restrictions: %v", err)
	}
	totalActions, err := b.GetLedger().TotalActionCount(ctx, i.GuildID, time.Unix(0, 0))
	if err != nil {
		log.Printf("Error counting actions: %v", err)
	}

	embed := &discordgo.MessageEmbed{
		Title: "System information",
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Host", Value: fmt.Sprintf("%s (%s)", hostInfo.Hostname, hostInfo.Platform), Inline: true},
			{Name: "CPU", Value: fmt.Sprintf("%d cores, %.1f%%", cpuCount, cpuUsage), Inline: true},
			{Name: "Memory", Value: fmt.Sprintf("%.1f%% of %d MB", vm.UsedPercent, vm.Total/1024/1024), Inline: true},
			{Name: "Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "Uptime", Value: time.Since(b.StartedAt()).Round(time.Second).String(), Inline: true},
			{Name: "Guilds", Value: fmt.Sprintf("%d", len(s.State.Guilds)), Inline: true},
			{Name: "Active restrictions", Value: fmt.Sprintf("%d", len(restrictions)), Inline: true},
			{Name: "Audit records", Value: fmt.Sprintf("%d", totalActions), Inline: true},
		},
	}

	utils.SendFollowUpEmbed(s, i.Interaction, embed)
}
