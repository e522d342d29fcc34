// internal/models/command.go
package models

import "time"

// CommandRecord is one executed command kept in the recent-command history.
type CommandRecord struct {
	Text       string    `json:"text"`
	Source     string    `json:"source"` // "text" or "voice"
	Intent     string    `json:"intent"`
	Type       string    `json:"type"`
	Success    bool      `json:"success"`
	ExecutedAt time.Time `json:"executedAt"`
}
