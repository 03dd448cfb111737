package model

import "time"

// Message represents a single entry in a conversation
type Message struct {
	Role      string
	Content   string
	Rendered  string // Cached rendered markdown (assistant messages only)
	Timestamp time.Time
}
