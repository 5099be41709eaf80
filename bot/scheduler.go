package bot

import (
	"context"
	"log"
	"sync"
	"time"

	"warden-bot/model"
	"warden-bot/moderation"
	"warden-bot/scanner"
	"warden-bot/utils"
	"warden-bot/utils/database/ledger"
)

const warningSweepInterval = 1 * time.Hour

// BotProvider defines the methods the scheduler needs from the Bot.
type BotProvider interface {
	GetConfig() *model.Config
	GetEngine() *moderation.Coordinator
	GetLedger() *ledger.Store
}

// Scheduler runs the engine's background loops: the restriction expiry
// sweep and the warning retention sweep.
type Scheduler struct {
	bot  BotProvider
	done chan struct{}
	wg   sync.WaitGroup
}

// NewScheduler creates a new scheduler.
func NewScheduler(bot BotProvider) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.runExpirySweeps()
	go s.runWarningSweeps()
}

// Stop terminates all scheduled tasks gracefully. In-flight per-key locks
// are released through context cancellation, so the next start never
// deadlocks.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) runExpirySweeps() {
	defer s.wg.Done()

	cfg := s.bot.GetConfig()
	sweeper := scanner.NewExpirySweeper(
		s.bot.GetEngine(),
		s.bot.GetLedger(),
		cfg.FailureAlarmThreshold,
		s.alerter(cfg),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.done
		cancel()
	}()

	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// One pass at startup so restrictions that expired while the process
	// was down are not left waiting for the first tick.
	sweeper.Sweep(ctx, time.Now())

	for {
		select {
		case <-ticker.C:
			sweeper.Sweep(ctx, time.Now())
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) runWarningSweeps() {
	defer s.wg.Done()

	cfg := s.bot.GetConfig()
	retention := time.Duration(cfg.WarningRetentionDays) * 24 * time.Hour
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.done
		cancel()
	}()

	ticker := time.NewTicker(warningSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			scanner.SweepWarnings(ctx, s.bot.GetLedger(), s.guildIDs(), retention, time.Now())
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) guildIDs() []string {
	cfg := s.bot.GetConfig()
	ids := make([]string, 0, len(cfg.GuildConfigs))
	for id := range cfg.GuildConfigs {
		ids = append(ids, id)
	}
	return ids
}

func (s *Scheduler) alerter(cfg *model.Config) scanner.Alerter {
	if cfg.AlertWebhookURL == "" {
		return nil
	}
	return func(component, operation, detail string) {
		if err := utils.AlertError(cfg.AlertWebhookURL, component, operation, detail); err != nil {
			log.Printf("Failed to send operational alert: %v", err)
		}
	}
}
