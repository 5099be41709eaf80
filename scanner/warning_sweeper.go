package scanner

import (
	"context"
	"log"
	"time"

	"warden-bot/moderation"
)

// SweepWarnings deactivates warnings older than each guild's retention
// window. A pure ledger mutation: no external effect, no authorization
// step, and idempotent, so it needs no locking.
func SweepWarnings(ctx context.Context, ledger moderation.Ledger, guildIDs []string, retention time.Duration, now time.Time) {
	cutoff := now.Add(-retention)
	for _, guildID := range guildIDs {
		if ctx.Err() != nil {
			return
		}
		expired, err := ledger.ExpireWarningsOlderThan(ctx, guildID, cutoff)
		if err != nil {
			log.Printf("Error expiring warnings for guild %s: %v", guildID, err)
			continue
		}
		if expired > 0 {
			log.Printf("Expired %d warnings in guild %s", expired, guildID)
		}
	}
}
