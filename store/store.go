// Package store persists the per-user snapshot of form configuration and
// feedback history. Writes are last-write-wins; there is no versioning.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"ai_email_copywriter/generator"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrMissingUserID = errors.New("user id is required")
	ErrMissingURL    = errors.New("store connection url is required")
	ErrCorrupt       = errors.New("stored snapshot cannot be decoded")
)

// Config selects and configures the backend.
type Config struct {
	Driver      string `json:"driver,omitempty" env:"COPYWRITER_STORE_DRIVER"`
	PostgresURL string `json:"postgres_url,omitempty" env:"COPYWRITER_PG_URL"`
	RedisURL    string `json:"redis_url,omitempty" env:"COPYWRITER_REDIS_URL"`
}

// Snapshot is what is stored for one user. JSON names follow the
// user-data endpoint payload.
type Snapshot struct {
	PromptData      generator.Configuration `json:"promptData"`
	FeedbackHistory []generator.Feedback    `json:"feedbackHistory"`
}

// Store is a key-value store keyed by user identity.
type Store interface {
	// Load returns false when nothing has been saved for userID.
	Load(ctx context.Context, userID string) (Snapshot, bool, error)
	Save(ctx context.Context, userID string, snap Snapshot) error
	Close() error
}

// Open connects the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverPostgres:
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("%w: postgres_url", ErrMissingURL)
		}
		return OpenPostgres(ctx, cfg.PostgresURL)
	case DriverRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("%w: redis_url", ErrMissingURL)
		}
		return OpenRedis(ctx, cfg.RedisURL)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}

func checkUserID(userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	return nil
}

// MapHTTPStatus maps store errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrMissingUserID) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
