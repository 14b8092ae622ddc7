package idempotency

import (
	"context"
	"encoding/json"
	"time"
)

// Entry statuses.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// Entry is what we keep per idempotency key.
type Entry struct {
	Status          string          `json:"status"`
	RequestBodyHash string          `json:"request_body_hash"`
	StatusCode      int             `json:"status_code,omitempty"`
	Response        json.RawMessage `json:"response,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Store persists entries with an expiry.
type Store interface {
	// Reserve saves entry under key if the key is free. When the key is taken it
	// returns the stored entry and false.
	Reserve(ctx context.Context, key string, entry Entry, ttl time.Duration) (*Entry, bool, error)
	// Complete overwrites the entry for key.
	Complete(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
