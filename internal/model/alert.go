package model

import "time"

// AlertEvent is one attempt to notify that heartbeats stopped.
type AlertEvent struct {
	ID          string        `json:"id"`
	AttemptedAt time.Time     `json:"attempted_at"`
	Elapsed     time.Duration `json:"elapsed"`
	Delivered   bool          `json:"delivered"`
	StatusCode  int           `json:"status_code,omitempty"`
	Error       string        `json:"error,omitempty"`
}
