package bot

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"warden-bot/commands"
	"warden-bot/model"
	"warden-bot/moderation"
	"warden-bot/utils/database/ledger"
)

// Bot owns the Discord session and the moderation engine wired into it.
type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	config    atomic.Value // *model.Config
	ledger    *ledger.Store
	engine    *moderation.Coordinator
	snapshots moderation.MemberSnapshotProvider
	scheduler *Scheduler
	startedAt time.Time
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func (b *Bot) GetLedger() *ledger.Store {
	return b.ledger
}

func (b *Bot) GetEngine() *moderation.Coordinator {
	return b.engine
}

func (b *Bot) GetSnapshots() moderation.MemberSnapshotProvider {
	return b.snapshots
}

func (b *Bot) StartedAt() time.Time {
	return b.startedAt
}

// New builds the session and assembles the engine: ledger store, discord
// gateway, snapshot provider, coordinator, scheduler.
func New(cfg *model.Config, store *ledger.Store) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentGuildModeration
	dg.StateEnabled = true

	b := &Bot{
		Session:   dg,
		ledger:    store,
		snapshots: NewSnapshotProvider(dg),
		startedAt: time.Now(),
	}
	b.config.Store(cfg)

	gateway := NewDiscordGateway(dg, cfg.GuildConfigs)
	b.engine = moderation.NewCoordinator(store, gateway,
		moderation.WithTimeouts(cfg.GatewayTimeout, cfg.StorageTimeout),
		moderation.WithLedgerRetries(cfg.LedgerRetryCount),
	)
	b.scheduler = NewScheduler(b)
	return b, nil
}

// GetScheduler returns the background scheduler.
func (b *Bot) GetScheduler() *Scheduler {
	return b.scheduler
}

// Close shuts down the scheduler and the session.
func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	b.Session.Close()
}

// RefreshCommands overwrites the guild's slash commands with the current
// set.
func (b *Bot) RefreshCommands(guildID string) {
	cmds := commands.GenerateCommands()
	log.Printf("Registering %d commands for guild %s...", len(cmds), guildID)
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.GetConfig().AppID, guildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", guildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}
