package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"warden-bot/utils"
)

func (b *Bot) Run() {
	err := b.Session.Open()
	if err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	log.Println("Registering commands for enabled guilds...")
	b.RegisteredCommands = nil
	for guildID, guildCfg := range b.GetConfig().GuildConfigs {
		if guildCfg.Enable {
			b.RefreshCommands(guildID)
		}
	}

	b.GetScheduler().Start()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	if webhook := b.GetConfig().AlertWebhookURL; webhook != "" {
		if err := utils.AlertInfo(webhook, "System", "Startup", "Moderation engine started."); err != nil {
			log.Printf("Failed to send startup alert: %v", err)
		}
	}
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
