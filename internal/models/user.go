package models

import (
	"time"
)

// BotUser is a chat the bot has seen at least once. Tracked in memory only,
// for the admin user list and broadcast.
type BotUser struct {
	ChatID    int64     `json:"chat_id"`
	FirstSeen time.Time `json:"first_seen"`
}
