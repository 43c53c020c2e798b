package models

import "time"

// Event represents a recorded action on a hoot or comment.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "hoot.create", "comment.delete"
	Level     string    `json:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message"`
	HootID    *string   `json:"hootId,omitempty"` // Nullable once the hoot is gone
	ActorID   *string   `json:"actorId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
