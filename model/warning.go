package model

// Warning is a mutable warning record. Expiry and pardon flip Active to
// false; rows are never physically deleted by this engine.
type Warning struct {
	WarningID int64  `db:"warning_id"` // Primary Key, Auto-increment
	UserID    string `db:"user_id"`
	GuildID   string `db:"guild_id"`
	IssuerID  string `db:"issuer_id"`
	Reason    string `db:"reason"`
	Timestamp int64  `db:"timestamp"` // unix seconds
	Active    bool   `db:"active"`
}
